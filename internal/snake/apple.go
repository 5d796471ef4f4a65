package snake

import "github.com/vovakirdan/snek/internal/core"

// Collectible is anything the snake can eat. OnCollect reports how many
// segments the snake grows by; removal and respawn are up to the caller.
type Collectible interface {
	OnCollect() int
}

// AppleKind distinguishes the apple variants. They share geometry and
// behaviour and differ only in look and yield.
type AppleKind int

const (
	StandardApple AppleKind = iota
	SuperApple
)

func (k AppleKind) String() string {
	if k == SuperApple {
		return "super"
	}
	return "standard"
}

// Apple is the single collectible on the board. It is relocated, never
// recreated, when eaten.
type Apple struct {
	pos  core.Point
	grow int
	kind AppleKind
}

// NewStandardApple creates a red apple. A grow amount below 1 is raised to 1.
func NewStandardApple(pos core.Point, grow int) *Apple {
	return newApple(StandardApple, pos, grow)
}

// NewSuperApple creates a golden apple. A grow amount below 1 is raised to 1.
func NewSuperApple(pos core.Point, grow int) *Apple {
	return newApple(SuperApple, pos, grow)
}

func newApple(kind AppleKind, pos core.Point, grow int) *Apple {
	return &Apple{
		pos:  pos,
		grow: max(grow, 1),
		kind: kind,
	}
}

// Position returns where the apple currently sits.
func (a *Apple) Position() core.Point {
	return a.pos
}

// Relocate moves the apple. The grow amount is unchanged.
func (a *Apple) Relocate(p core.Point) {
	a.pos = p
}

// OnCollect returns the apple's grow amount.
func (a *Apple) OnCollect() int {
	return a.grow
}

// Kind returns the apple variant.
func (a *Apple) Kind() AppleKind {
	return a.kind
}

var _ Collectible = (*Apple)(nil)
