package snake

import "github.com/vovakirdan/snek/internal/core"

// Direction is one of the four axis-aligned headings. The zero value is Right.
type Direction int

const (
	Right Direction = iota
	Left
	Up
	Down
)

// IsPerpendicularTo reports whether d and other lie on different axes.
// Only perpendicular turns are accepted while the snake is moving.
func (d Direction) IsPerpendicularTo(other Direction) bool {
	return d.horizontal() != other.horizontal()
}

func (d Direction) horizontal() bool {
	return d == Right || d == Left
}

// Opposite returns the direction on the same axis pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case Right:
		return Left
	case Left:
		return Right
	case Up:
		return Down
	default:
		return Up
	}
}

// Delta returns the unit step for the direction. Y grows downwards.
func (d Direction) Delta() core.Point {
	switch d {
	case Right:
		return core.Point{X: 1}
	case Left:
		return core.Point{X: -1}
	case Up:
		return core.Point{Y: -1}
	default:
		return core.Point{Y: 1}
	}
}

func (d Direction) String() string {
	switch d {
	case Right:
		return "right"
	case Left:
		return "left"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ParseDirection converts the String form back into a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "right":
		return Right, true
	case "left":
		return Left, true
	case "up":
		return Up, true
	case "down":
		return Down, true
	}
	return Right, false
}
