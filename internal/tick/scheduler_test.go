package tick

import (
	"testing"
	"time"
)

// waitForTick polls until a pulse arrives or the deadline passes.
func waitForTick(s *Scheduler, within time.Duration) bool {
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if s.PollTick() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestNewIsStopped(t *testing.T) {
	s := New(5 * time.Millisecond)

	if s.Running() {
		t.Error("New scheduler should not be running")
	}
	time.Sleep(20 * time.Millisecond)
	if s.PollTick() {
		t.Error("Stopped scheduler should not produce pulses")
	}
	if s.Interval() != 5*time.Millisecond {
		t.Errorf("Interval() = %v, expected 5ms", s.Interval())
	}
}

func TestNewPanicsOnBadInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(0) should panic")
		}
	}()
	New(0)
}

func TestStartProducesPulses(t *testing.T) {
	s := New(2 * time.Millisecond)
	s.Start()
	defer s.Stop()

	for i := 0; i < 3; i++ {
		if !waitForTick(s, time.Second) {
			t.Fatalf("pulse %d did not arrive", i)
		}
	}
}

func TestPollTickNeverBlocks(t *testing.T) {
	s := New(time.Hour)
	s.Start()
	defer s.Stop()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if s.PollTick() {
			t.Fatal("No pulse should be due yet")
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("PollTick took %v for 100 calls", elapsed)
	}
}

func TestStopAllowsAtMostOneStrayPulse(t *testing.T) {
	s := New(150 * time.Millisecond)
	s.Start()
	if !waitForTick(s, 2*time.Second) {
		t.Fatal("first pulse did not arrive")
	}
	s.Stop()

	if s.Running() {
		t.Error("Running() should be false after Stop")
	}

	stray := 0
	for i := 0; i < 5; i++ {
		time.Sleep(100 * time.Millisecond)
		for s.PollTick() {
			stray++
		}
	}
	if stray > 1 {
		t.Errorf("got %d pulses after Stop, expected at most 1", stray)
	}
}

func TestStopDiscardsQueuedPulses(t *testing.T) {
	s := New(time.Millisecond, WithQueueSize(8))
	s.Start()
	time.Sleep(30 * time.Millisecond) // let the queue fill
	s.Stop()

	stray := 0
	for s.PollTick() {
		stray++
	}
	if stray > 1 {
		t.Errorf("got %d queued pulses after Stop, expected at most 1", stray)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	s := New(time.Millisecond)
	s.Start()
	s.Start()
	s.Start()
	defer s.Stop()

	if !s.Running() {
		t.Fatal("Running() should be true")
	}
	s.Stop()
	s.Stop() // second Stop is a no-op
	if s.Running() {
		t.Error("Running() should be false after Stop")
	}
}

func TestRestartAfterStop(t *testing.T) {
	s := New(2 * time.Millisecond)
	s.Start()
	if !waitForTick(s, time.Second) {
		t.Fatal("first run produced no pulse")
	}
	s.Stop()
	for s.PollTick() {
	}

	s.Start()
	defer s.Stop()
	if !waitForTick(s, time.Second) {
		t.Error("restarted scheduler produced no pulse")
	}
}

func TestQueueOverflowDrops(t *testing.T) {
	s := New(time.Millisecond, WithQueueSize(2))
	s.Start()

	deadline := time.Now().Add(time.Second)
	for len(s.pulses) < cap(s.pulses) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if len(s.pulses) != 2 {
		t.Fatalf("queue holds %d pulses, expected it to fill to 2", len(s.pulses))
	}

	// A full queue must not wedge the producer.
	time.Sleep(10 * time.Millisecond)
	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a full queue")
	}
}
