package snek

import (
	"fmt"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/snake"
)

// hudHeight is the number of rows above the arena.
const hudHeight = 2

// Render draws the HUD and the arena, one block per terminal cell.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	g.renderHUD(dst)

	arena, ok := g.arenaRect(dst)
	if !ok {
		g.renderOverlay(dst, "Window too small",
			fmt.Sprintf("Need %dx%d", arena.W, arena.H+hudHeight))
		return
	}

	dst.DrawBox(arena, core.ColorGray)

	// Apple first so the head covers it on the tick it is eaten
	if c, ok := g.cellOf(g.apple.Position()); ok {
		if g.apple.Kind() == snake.SuperApple {
			dst.SetColored(arena.X+1+c.X, arena.Y+1+c.Y, '$', core.ColorBrightYellow)
		} else {
			dst.SetColored(arena.X+1+c.X, arena.Y+1+c.Y, '*', core.ColorRed)
		}
	}

	segments := g.snake.Segments()
	for i, seg := range segments {
		c, ok := g.cellOf(seg.Pos)
		if !ok {
			continue
		}
		ch := 'o'
		if i == len(segments)-1 {
			ch = '@'
		}
		dst.SetColored(arena.X+1+c.X, arena.Y+1+c.Y, ch, g.color)
	}

	switch {
	case g.snake.IsDead():
		g.renderOverlay(dst, g.deathMessage(),
			fmt.Sprintf("Length %d  Apples %d  R: restart", g.snake.Len(), g.apples))
	case g.paused:
		g.renderOverlay(dst, "Paused", "P: resume")
	}
}

func (g *Game) deathMessage() string {
	switch g.cause {
	case CauseSelf:
		return "Game Over: bit yourself"
	case CauseWall:
		return "Game Over: hit the wall"
	default:
		return "Game Over"
	}
}

// renderHUD draws the top status bar.
func (g *Game) renderHUD(dst *core.Screen) {
	title := "SNEK"
	if g.mode == ModeGolden {
		title = "SNEK golden"
	}
	if g.script != nil {
		title += " (replay)"
	}
	hud := fmt.Sprintf(" %s  Length: %d  Apples: %d  Tick: %d", title, g.snake.Len(), g.apples, g.ticks)
	dst.DrawText(0, 0, hud)
	dst.DrawHLine(0, 1, dst.Width(), '─')
}

// arenaRect returns the bordered arena centered below the HUD, and whether
// it fits on dst.
func (g *Game) arenaRect(dst *core.Screen) (core.Rect, bool) {
	w := g.cfg.Arena.Cols + 2
	h := g.cfg.Arena.Rows + 2
	r := core.NewRect((dst.Width()-w)/2, hudHeight, w, h)
	return r, dst.Width() >= w && dst.Height() >= h+hudHeight
}

// cellOf maps an arena position to its grid cell. Positions outside the
// arena, such as a freshly grown tail, have no cell.
func (g *Game) cellOf(p core.Point) (core.Point, bool) {
	if !g.bounds.Contains(p) {
		return core.Point{}, false
	}
	bs := g.cfg.Arena.BlockSize
	return core.Point{X: (p.X - g.bounds.MinX) / bs, Y: (p.Y - g.bounds.MinY) / bs}, true
}

// renderOverlay draws a centered two-line message box.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	w := max(len([]rune(line1)), len([]rune(line2))) + 4
	h := 5
	box := core.NewRect((dst.Width()-w)/2, (dst.Height()-h)/2, w, h)

	dst.DrawRect(core.NewRect(box.X+1, box.Y+1, box.W-2, box.H-2), ' ')
	dst.DrawBox(box, core.ColorWhite)
	dst.DrawTextCentered(box.Y+1, line1)
	dst.DrawTextCentered(box.Y+3, line2)
}
