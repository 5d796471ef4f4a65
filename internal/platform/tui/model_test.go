package tui

import (
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snek/internal/config"
	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/games/snek"
	"github.com/vovakirdan/snek/internal/snake"
	"github.com/vovakirdan/snek/internal/storage"
)

type fakeRecorder struct {
	mu    sync.Mutex
	runs  []storage.Run
	moves [][]storage.Move
}

func (r *fakeRecorder) Record(run storage.Run, moves []storage.Move) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	r.moves = append(r.moves, moves)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGameKeyMap(t *testing.T) {
	keys := DefaultGameKeyMap()

	tests := []struct {
		msg      tea.KeyMsg
		expected core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp},
		{keyRunes("w"), core.ActionUp},
		{tea.KeyMsg{Type: tea.KeyDown}, core.ActionDown},
		{keyRunes("a"), core.ActionLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight},
		{keyRunes("p"), core.ActionPause},
		{keyRunes("r"), core.ActionRestart},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack},
		{keyRunes("q"), core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{keyRunes("z"), core.ActionNone},
	}

	for _, tc := range tests {
		if got := keys.MapKey(tc.msg); got != tc.expected {
			t.Errorf("MapKey(%q) = %v, expected %v", tc.msg.String(), got, tc.expected)
		}
	}
}

func TestMenuKeyMap(t *testing.T) {
	keys := DefaultMenuKeyMap()

	if keys.MapKey(tea.KeyMsg{Type: tea.KeyEnter}) != MenuActionSelect {
		t.Error("enter should select")
	}
	if keys.MapKey(tea.KeyMsg{Type: tea.KeyTab}) != MenuActionRuns {
		t.Error("tab should open runs")
	}
	if keys.MapKey(keyRunes("j")) != MenuActionDown {
		t.Error("j should move down")
	}
}

func TestEncodeDecodeRun(t *testing.T) {
	cfg := config.DefaultSnekConfig()
	cfg.Arena.Cols = 25
	g := snek.New(snek.ModeGolden, cfg)
	g.Reset(core.RuntimeConfig{Seed: 77, ScreenW: 80, ScreenH: 24})
	defer g.Close()

	in := core.NewInputFrame()
	in.Set(core.ActionDown)
	g.Step(in)

	run, moves, err := EncodeRun(g, "quit")
	if err != nil {
		t.Fatalf("EncodeRun() failed: %v", err)
	}
	if run.Mode != "snek_golden" || run.Seed != 77 || run.Cause != "quit" {
		t.Errorf("EncodeRun() run = %+v", run)
	}
	if len(moves) != 1 || moves[0] != (storage.Move{Tick: 0, Direction: "down"}) {
		t.Errorf("EncodeRun() moves = %+v", moves)
	}

	decoded, err := DecodeRun(run, moves)
	if err != nil {
		t.Fatalf("DecodeRun() failed: %v", err)
	}
	if decoded.Mode != snek.ModeGolden || decoded.Seed != 77 || decoded.Config != cfg {
		t.Errorf("DecodeRun() = %+v", decoded)
	}
	if len(decoded.Moves) != 1 || decoded.Moves[0] != (snek.Move{Tick: 0, Dir: snake.Down}) {
		t.Errorf("DecodeRun() moves = %+v", decoded.Moves)
	}
}

func TestDecodeRunRejectsBadRows(t *testing.T) {
	good, _ := config.Marshal(config.DefaultSnekConfig())

	tests := []struct {
		name  string
		run   storage.Run
		moves []storage.Move
	}{
		{"unknown mode", storage.Run{Mode: "tron", Config: string(good)}, nil},
		{"bad config", storage.Run{Mode: "snek", Config: "arena: [1"}, nil},
		{"bad direction", storage.Run{Mode: "snek", Config: string(good)}, []storage.Move{{Tick: 1, Direction: "sideways"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeRun(tc.run, tc.moves); err == nil {
				t.Error("DecodeRun() should fail")
			}
		})
	}
}

func TestModelRecordsRunOnDeath(t *testing.T) {
	cfg := config.DefaultSnekConfig()
	cfg.Arena.Cols = 5
	cfg.Arena.Rows = 3
	cfg.Snake.StartLength = 2
	cfg.Tick.Interval = time.Millisecond

	game := snek.New(snek.ModeClassic, cfg)
	defer game.Close()
	rec := &fakeRecorder{}

	var model tea.Model = NewModel(game, rec, quietLogger(), core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 9})
	model.Init()

	deadline := time.Now().Add(2 * time.Second)
	for !game.State().GameOver && time.Now().Before(deadline) {
		model, _ = model.Update(FrameMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
	if !game.State().GameOver {
		t.Fatal("snake never hit the wall")
	}

	// More frames after death must not record twice
	model, _ = model.Update(FrameMsg(time.Now()))
	model, _ = model.Update(FrameMsg(time.Now()))

	if len(rec.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(rec.runs))
	}
	run := rec.runs[0]
	if run.Mode != "snek" || run.Seed != 9 || run.Cause != "wall" || run.Ticks != game.Ticks() {
		t.Errorf("recorded run = %+v", run)
	}

	// Restart, then quit mid-run. Ticks only advance inside Update.
	model, _ = model.Update(keyRunes("r"))
	model, _ = model.Update(FrameMsg(time.Now()))
	if game.State().GameOver {
		t.Fatal("restart did not start a new run")
	}
	for game.Ticks() == 0 && time.Now().Before(deadline.Add(time.Second)) {
		model, _ = model.Update(FrameMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
	if game.Ticks() == 0 || game.State().GameOver {
		t.Fatalf("expected the second run in progress, ticks=%d", game.Ticks())
	}
	model.Update(keyRunes("q"))

	if len(rec.runs) != 2 || rec.runs[1].Cause != "quit" {
		t.Errorf("expected a quit run, got %+v", rec.runs)
	}
}

func TestModelSkipsReplays(t *testing.T) {
	cfg := config.DefaultSnekConfig()
	cfg.Tick.Interval = time.Millisecond

	game, err := snek.NewReplay(snek.ModeClassic, cfg, 3, nil)
	if err != nil {
		t.Fatalf("NewReplay() failed: %v", err)
	}
	defer game.Close()
	rec := &fakeRecorder{}

	var model tea.Model = NewModel(game, rec, quietLogger(), core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60})
	model.Init()
	deadline := time.Now().Add(2 * time.Second)
	for game.Ticks() == 0 && time.Now().Before(deadline) {
		model, _ = model.Update(FrameMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
	model.Update(keyRunes("q"))

	if len(rec.runs) != 0 {
		t.Errorf("replays should not be journaled, got %+v", rec.runs)
	}
}

func TestSessionMenuToGameAndBack(t *testing.T) {
	rec := &fakeRecorder{}
	var m tea.Model = NewSessionModel(nil, rec, quietLogger(), core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60})
	m.Init()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	s := m.(SessionModel)
	if s.screen != screenGame || s.game == nil {
		t.Fatal("enter should start the highlighted mode")
	}
	if s.game.game.ID() != "snek" {
		t.Errorf("started %q, expected snek", s.game.game.ID())
	}

	// Back is only honored once paused
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(SessionModel).screen != screenGame {
		t.Fatal("esc mid-run should not leave the game")
	}
	m, _ = m.Update(keyRunes("p"))
	m, _ = m.Update(FrameMsg(time.Now()))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	s = m.(SessionModel)
	if s.screen != screenMenu || s.game != nil {
		t.Error("esc while paused should return to the menu")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(SessionModel).screen != screenRuns {
		t.Error("tab should open the run journal")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(SessionModel).screen != screenMenu {
		t.Error("esc should leave the run journal")
	}

	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Error("q in the menu should quit the session")
	}
}

func TestGameSlotCloses(t *testing.T) {
	game := snek.New(snek.ModeClassic, config.DefaultSnekConfig())
	game.Reset(core.RuntimeConfig{Seed: 1, ScreenW: 80, ScreenH: 24})

	slot := &gameSlot{}
	slot.set(game)
	slot.close()
	slot.close()

	var nilSlot *gameSlot
	nilSlot.set(game)
	nilSlot.close()
}
