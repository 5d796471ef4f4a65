// Package snake holds the game-state simulation for snek: the snake body,
// its movement and growth rules, collision queries and the apple it eats.
//
// Nothing in this package is safe for concurrent use. The game loop owns
// every Snake and Apple and is the only goroutine that touches them.
package snake

import (
	"slices"

	"github.com/vovakirdan/snek/internal/core"
)

// Segment is one grid cell occupied by the snake.
type Segment struct {
	Pos core.Point
	// Padding is the inset of the inner square when drawn. Display only.
	Padding int
}

// Bounds is a half-open rectangle: MinX <= x < MaxX, MinY <= y < MaxY.
type Bounds struct {
	MinX, MaxX int
	MinY, MaxY int
}

// Contains reports whether p lies inside the bounds.
func (b Bounds) Contains(p core.Point) bool {
	return p.X >= b.MinX && p.X < b.MaxX && p.Y >= b.MinY && p.Y < b.MaxY
}

// Snake is an ordered run of segments. Index 0 is the tail, the last index
// is the head. Segments are only ever added, so the body is never empty.
type Snake struct {
	segments  []Segment
	blockSize int
	padding   int
	dir       Direction
	alive     bool
}

// New builds a straight horizontal snake of the given length on row y.
// Segment i sits at x = blockSize*i, so the head is rightmost, and the
// snake starts alive heading Right.
//
// New panics if length < 1 or blockSize <= 0.
func New(length, blockSize, y, padding int) *Snake {
	if length < 1 {
		panic("snake: length must be at least 1")
	}
	if blockSize <= 0 {
		panic("snake: block size must be positive")
	}

	segments := make([]Segment, length)
	for i := range segments {
		segments[i] = Segment{
			Pos:     core.Point{X: blockSize * i, Y: y},
			Padding: padding,
		}
	}

	return &Snake{
		segments:  segments,
		blockSize: blockSize,
		padding:   padding,
		dir:       Right,
		alive:     true,
	}
}

// SetDirection turns the snake when it is alive and d is perpendicular to
// the current heading. Anything else, including a reversal, is ignored.
// Reports whether the heading changed.
func (s *Snake) SetDirection(d Direction) bool {
	if !s.alive || !d.IsPerpendicularTo(s.dir) {
		return false
	}
	s.dir = d
	return true
}

// Direction returns the current heading.
func (s *Snake) Direction() Direction {
	return s.dir
}

// Advance moves the snake one block along its heading. Every segment takes
// the position its head-ward neighbour held before the move and the old
// tail position is dropped. Dead snakes do not move.
func (s *Snake) Advance() {
	if len(s.segments) == 0 {
		panic("snake: advance on empty body")
	}
	if !s.alive {
		return
	}

	last := len(s.segments) - 1
	next := s.segments[last].Pos.Add(s.dir.Delta().Scale(s.blockSize))
	for i := 0; i < last; i++ {
		s.segments[i].Pos = s.segments[i+1].Pos
	}
	s.segments[last].Pos = next
}

// Grow adds count segments at the tail. Each new segment is placed one block
// to the left of the current tail, whatever the heading; the body catches up
// as the snake moves.
func (s *Snake) Grow(count int) {
	for range count {
		tail := s.segments[0].Pos
		seg := Segment{
			Pos:     core.Point{X: tail.X - s.blockSize, Y: tail.Y},
			Padding: s.padding,
		}
		s.segments = slices.Insert(s.segments, 0, seg)
	}
}

// Head returns the position of the head segment.
func (s *Snake) Head() core.Point {
	return s.segments[len(s.segments)-1].Pos
}

// IsHeadAt reports whether the head is exactly at p.
func (s *Snake) IsHeadAt(p core.Point) bool {
	return s.Head() == p
}

// IsHeadCollidingWithBody reports whether the head shares a position with
// any other segment.
func (s *Snake) IsHeadCollidingWithBody() bool {
	head := s.Head()
	for _, seg := range s.segments[:len(s.segments)-1] {
		if seg.Pos == head {
			return true
		}
	}
	return false
}

// IsHeadInBounds reports whether the head lies inside b.
func (s *Snake) IsHeadInBounds(b Bounds) bool {
	return b.Contains(s.Head())
}

// Occupies reports whether any segment, head included, is at p.
func (s *Snake) Occupies(p core.Point) bool {
	for _, seg := range s.segments {
		if seg.Pos == p {
			return true
		}
	}
	return false
}

// Die kills the snake. There is no way back within a session.
func (s *Snake) Die() {
	s.alive = false
}

// IsDead reports whether Die has been called.
func (s *Snake) IsDead() bool {
	return !s.alive
}

// Len returns the number of segments.
func (s *Snake) Len() int {
	return len(s.segments)
}

// BlockSize returns the edge length of one block in arena units.
func (s *Snake) BlockSize() int {
	return s.blockSize
}

// Segments returns a copy of the body, tail first.
func (s *Snake) Segments() []Segment {
	return slices.Clone(s.segments)
}
