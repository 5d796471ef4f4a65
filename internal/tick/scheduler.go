// Package tick provides the fixed-interval pulse source that paces the
// simulation independently of the render loop.
package tick

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize is how many undelivered pulses are kept before new ones
// are dropped.
const DefaultQueueSize = 16

// Scheduler posts one pulse per interval onto a queue that the game loop
// drains with PollTick. One goroutine produces, one consumes.
type Scheduler struct {
	interval time.Duration
	pulses   chan struct{}

	// stopped is read by the timer goroutine on every firing.
	stopped atomic.Bool
	running atomic.Bool

	mu   sync.Mutex // serializes Start and Stop
	done chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithQueueSize sets the pulse queue capacity. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(s *Scheduler) {
		if n >= 1 {
			s.pulses = make(chan struct{}, n)
		}
	}
}

// New creates a stopped scheduler. It panics if interval is not positive.
func New(interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		panic("tick: interval must be positive")
	}
	s := &Scheduler{
		interval: interval,
		pulses:   make(chan struct{}, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.stopped.Store(true)
	return s
}

// Interval returns the pulse period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Running reports whether the timer is armed.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Start arms the repeating timer. It is a no-op if already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.stopped.Store(false)
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.loop(s.done)
}

// Stop disarms the timer and discards pulses that were not yet polled.
// A firing already in flight may still enqueue one pulse after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.stopped.Store(true)
	close(s.done)
	s.drain()
	s.wg.Wait()
}

// PollTick consumes one pending pulse if there is one. It never blocks.
func (s *Scheduler) PollTick() bool {
	select {
	case <-s.pulses:
		return true
	default:
		return false
	}
}

func (s *Scheduler) loop(done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if s.stopped.Load() {
				return
			}
			select {
			case s.pulses <- struct{}{}:
			default:
				// Consumer is behind; the queued pulses already cover this one.
			}
		}
	}
}

func (s *Scheduler) drain() {
	for {
		select {
		case <-s.pulses:
		default:
			return
		}
	}
}
