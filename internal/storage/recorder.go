package storage

import (
	"sync"

	"github.com/charmbracelet/log"
)

// recorderBuffer is how many finished runs may wait for the writer.
const recorderBuffer = 64

type pendingRun struct {
	run   Run
	moves []Move
}

// Recorder saves finished runs on a background goroutine so the game loop
// never waits on the database. Safe for concurrent use; the SSH server
// shares one Recorder between all sessions.
type Recorder struct {
	store  *Store
	logger *log.Logger
	queue  chan pendingRun
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewRecorder starts a recorder writing to store. A nil store yields a
// recorder that accepts and discards runs.
func NewRecorder(store *Store, logger *log.Logger) *Recorder {
	r := &Recorder{
		store:  store,
		logger: logger,
		queue:  make(chan pendingRun, recorderBuffer),
	}

	r.wg.Add(1)
	go r.writeLoop()

	return r
}

// Record queues a run for saving. Non-blocking: the run is dropped, with a
// warning, when the queue is full or the recorder is closed.
func (r *Recorder) Record(run Run, moves []Move) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	select {
	case r.queue <- pendingRun{run: run, moves: moves}:
	default:
		r.logger.Warn("run journal backlog full, dropping run", "mode", run.Mode, "ticks", run.Ticks)
	}
}

// Close flushes queued runs and stops the writer. Safe to call twice.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) writeLoop() {
	defer r.wg.Done()

	for p := range r.queue {
		if r.store == nil {
			continue
		}
		id, err := r.store.SaveRun(p.run, p.moves)
		if err != nil {
			r.logger.Error("could not save run", "mode", p.run.Mode, "error", err)
			continue
		}
		r.logger.Debug("run saved", "id", id, "mode", p.run.Mode, "apples", p.run.Apples, "moves", len(p.moves))
	}
}
