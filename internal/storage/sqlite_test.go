package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreSaveAndLoadRun(t *testing.T) {
	store := openTestStore(t)

	moves := []Move{
		{Tick: 3, Direction: "down"},
		{Tick: 7, Direction: "left"},
		{Tick: 7, Direction: "up"},
	}
	id, err := store.SaveRun(Run{
		Mode:   "snek",
		Seed:   42,
		Config: "arena:\n  cols: 30\n",
		Apples: 2,
		Length: 10,
		Ticks:  31,
		Cause:  "wall",
	}, moves)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected a UUID run id, got %q", id)
	}

	run, err := store.Run(id)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if run == nil {
		t.Fatal("Run() returned nil for a saved run")
	}
	if run.Mode != "snek" || run.Seed != 42 || run.Apples != 2 || run.Length != 10 || run.Ticks != 31 || run.Cause != "wall" {
		t.Errorf("Run() = %+v", run)
	}
	if run.Config != "arena:\n  cols: 30\n" {
		t.Errorf("Config = %q", run.Config)
	}

	got, err := store.Moves(id)
	if err != nil {
		t.Fatalf("Moves() failed: %v", err)
	}
	if len(got) != len(moves) {
		t.Fatalf("Moves() returned %d moves, expected %d", len(got), len(moves))
	}
	for i := range moves {
		if got[i] != moves[i] {
			t.Errorf("move %d = %+v, expected %+v", i, got[i], moves[i])
		}
	}
}

func TestStoreKeepsExplicitID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveRun(Run{ID: "fixed-id", Mode: "snek", Config: "{}"}, nil)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if id != "fixed-id" {
		t.Errorf("SaveRun() id = %q, expected fixed-id", id)
	}

	if _, err := store.SaveRun(Run{ID: "fixed-id", Mode: "snek", Config: "{}"}, nil); err == nil {
		t.Error("saving a duplicate id should fail")
	}
}

func TestStoreMissingRun(t *testing.T) {
	store := openTestStore(t)

	run, err := store.Run("nope")
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil for a missing run, got %+v", run)
	}

	moves, err := store.Moves("nope")
	if err != nil {
		t.Fatalf("Moves() failed: %v", err)
	}
	if len(moves) != 0 {
		t.Errorf("expected no moves, got %d", len(moves))
	}
}

func TestStoreRecentRuns(t *testing.T) {
	store := openTestStore(t)

	for i, mode := range []string{"snek", "snek_golden", "snek", "snek"} {
		if _, err := store.SaveRun(Run{Mode: mode, Config: "{}", Ticks: i}, nil); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	all, err := store.RecentRuns("", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(all))
	}
	// Newest first
	for i, r := range all {
		if r.Ticks != 3-i {
			t.Errorf("run %d has ticks %d, expected %d", i, r.Ticks, 3-i)
		}
	}

	classic, err := store.RecentRuns("snek", 2)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(classic) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(classic))
	}
	for _, r := range classic {
		if r.Mode != "snek" {
			t.Errorf("mode filter leaked %q", r.Mode)
		}
	}
}

func TestStoreFindRun(t *testing.T) {
	store := openTestStore(t)

	for _, id := range []string{"abc-1", "abd-2"} {
		if _, err := store.SaveRun(Run{ID: id, Mode: "snek", Config: "{}"}, nil); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	run, err := store.FindRun("abc")
	if err != nil {
		t.Fatalf("FindRun() failed: %v", err)
	}
	if run == nil || run.ID != "abc-1" {
		t.Errorf("FindRun(abc) = %+v", run)
	}

	if _, err := store.FindRun("ab"); !errors.Is(err, ErrAmbiguousRun) {
		t.Errorf("FindRun(ab) error = %v, expected ErrAmbiguousRun", err)
	}

	run, err = store.FindRun("zzz")
	if err != nil || run != nil {
		t.Errorf("FindRun(zzz) = %+v, %v", run, err)
	}
}

func TestStoreDeleteRun(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveRun(Run{Mode: "snek", Config: "{}"}, []Move{{Tick: 1, Direction: "up"}})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	keep, err := store.SaveRun(Run{Mode: "snek", Config: "{}"}, []Move{{Tick: 2, Direction: "down"}})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	if err := store.DeleteRun(id); err != nil {
		t.Fatalf("DeleteRun() failed: %v", err)
	}

	if run, _ := store.Run(id); run != nil {
		t.Error("deleted run still present")
	}
	if moves, _ := store.Moves(id); len(moves) != 0 {
		t.Error("deleted run still has moves")
	}
	if moves, _ := store.Moves(keep); len(moves) != 1 {
		t.Error("other runs should keep their moves")
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(Run{Mode: "snek", Config: "{}", Apples: 3, Length: 11, Ticks: 40}, nil)
	store.SaveRun(Run{Mode: "snek", Config: "{}", Apples: 5, Length: 13, Ticks: 60}, nil)
	store.SaveRun(Run{Mode: "snek_golden", Config: "{}", Apples: 1, Length: 11, Ticks: 10}, nil)

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	classic := stats["snek"]
	if classic == nil {
		t.Fatal("missing stats for snek")
	}
	if classic.Runs != 2 || classic.MostApples != 5 || classic.Longest != 13 || classic.TotalTicks != 100 {
		t.Errorf("snek stats = %+v", classic)
	}
	if stats["snek_golden"] == nil || stats["snek_golden"].Runs != 1 {
		t.Errorf("snek_golden stats = %+v", stats["snek_golden"])
	}
}

func TestRecorderFlushesOnClose(t *testing.T) {
	store := openTestStore(t)
	logger := log.New(io.Discard)

	rec := NewRecorder(store, logger)
	for i := range 5 {
		rec.Record(Run{Mode: "snek", Config: "{}", Ticks: i}, []Move{{Tick: 0, Direction: "up"}})
	}
	rec.Close()
	rec.Close()

	runs, err := store.RecentRuns("", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 5 {
		t.Errorf("expected 5 recorded runs, got %d", len(runs))
	}

	// Recording after close is a no-op
	rec.Record(Run{Mode: "snek", Config: "{}"}, nil)
}

func TestRecorderWithoutStore(t *testing.T) {
	var buf strings.Builder
	rec := NewRecorder(nil, log.New(&buf))
	rec.Record(Run{Mode: "snek"}, nil)
	rec.Close()

	if strings.Contains(buf.String(), "could not save") {
		t.Errorf("nil store should discard silently, logged %q", buf.String())
	}
}
