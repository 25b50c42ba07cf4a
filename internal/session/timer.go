package session

import (
	"fmt"
	"sync"
	"time"
)

// Timer is a cancellable one-second countdown owned by exactly one exam
// session. Tick callbacks receive strictly decreasing remaining-seconds
// values; zero is delivered as a tick before the expiry callback fires.
// Expiry fires at most once, and Stop is idempotent and safe to call
// after expiry or after the session already completed.
type Timer struct {
	mu        sync.Mutex
	remaining int
	paused    bool
	stopped   bool
	quit      chan struct{}

	interval time.Duration
	onTick   func(remaining int)
	onExpire func()
}

// StartTimer begins a countdown of the given whole-second duration.
func StartTimer(seconds int, onTick func(int), onExpire func()) (*Timer, error) {
	return startTimer(seconds, time.Second, onTick, onExpire)
}

func startTimer(seconds int, interval time.Duration, onTick func(int), onExpire func()) (*Timer, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("timer duration must be positive, got %d", seconds)
	}
	t := &Timer{
		remaining: seconds,
		quit:      make(chan struct{}),
		interval:  interval,
		onTick:    onTick,
		onExpire:  onExpire,
	}
	go t.run()
	return t, nil
}

func (t *Timer) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.quit:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stopped || t.paused {
				t.mu.Unlock()
				continue
			}
			t.remaining--
			remaining := t.remaining
			expired := remaining <= 0
			if expired {
				// Mark stopped before the callbacks so a concurrent
				// Stop cannot race a second expiry.
				t.stopped = true
			}
			t.mu.Unlock()

			// Callbacks run without the timer lock held; the session
			// guards itself against late events by status checks.
			if t.onTick != nil {
				t.onTick(remaining)
			}
			if expired {
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
		}
	}
}

// Pause suspends the countdown without releasing the timer.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.paused = true
	}
}

// Resume continues a paused countdown.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.paused = false
	}
}

// Stop cancels the countdown. No tick or expiry callback will start after
// Stop returns. Calling Stop on an expired or already-stopped timer is a
// no-op.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.quit)
}

// Remaining reports the seconds left on the countdown.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}
