package session

import (
	"sync"
	"testing"
	"time"
)

const testTickInterval = 5 * time.Millisecond

// tickRecorder collects tick and expiry callbacks for assertions.
type tickRecorder struct {
	mu      sync.Mutex
	ticks   []int
	expires int
	done    chan struct{}
}

func newTickRecorder() *tickRecorder {
	return &tickRecorder{done: make(chan struct{})}
}

func (r *tickRecorder) onTick(remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, remaining)
}

func (r *tickRecorder) onExpire() {
	r.mu.Lock()
	r.expires++
	expires := r.expires
	r.mu.Unlock()
	if expires == 1 {
		close(r.done)
	}
}

func (r *tickRecorder) snapshot() ([]int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.ticks...), r.expires
}

func waitFor(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not expire in time")
	}
}

func TestTimerRejectsNonPositiveDuration(t *testing.T) {
	for _, seconds := range []int{0, -1} {
		if _, err := startTimer(seconds, testTickInterval, nil, nil); err == nil {
			t.Errorf("startTimer(%d) expected error", seconds)
		}
	}
}

func TestTimerCountsDownToZeroThenExpires(t *testing.T) {
	rec := newTickRecorder()
	_, err := startTimer(3, testTickInterval, rec.onTick, rec.onExpire)
	if err != nil {
		t.Fatalf("startTimer() error = %v", err)
	}
	waitFor(t, rec.done)

	ticks, expires := rec.snapshot()
	want := []int{2, 1, 0}
	if len(ticks) != len(want) {
		t.Fatalf("ticks = %v, want %v", ticks, want)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("tick %d = %d, want %d", i, ticks[i], want[i])
		}
	}
	if expires != 1 {
		t.Errorf("expiry fired %d times, want 1", expires)
	}
}

func TestTimerExpiresAtMostOnce(t *testing.T) {
	rec := newTickRecorder()
	timer, err := startTimer(1, testTickInterval, rec.onTick, rec.onExpire)
	if err != nil {
		t.Fatalf("startTimer() error = %v", err)
	}
	waitFor(t, rec.done)

	// Give the run loop time to misbehave if it were going to.
	time.Sleep(5 * testTickInterval)
	_, expires := rec.snapshot()
	if expires != 1 {
		t.Errorf("expiry fired %d times, want 1", expires)
	}
	timer.Stop() // stop after expiry must be a no-op
	timer.Stop()
}

func TestTimerStopPreventsExpiry(t *testing.T) {
	rec := newTickRecorder()
	timer, err := startTimer(1000, testTickInterval, rec.onTick, rec.onExpire)
	if err != nil {
		t.Fatalf("startTimer() error = %v", err)
	}
	time.Sleep(3 * testTickInterval)
	timer.Stop()
	timer.Stop() // idempotent

	ticksAtStop, _ := rec.snapshot()
	time.Sleep(5 * testTickInterval)
	ticks, expires := rec.snapshot()
	if len(ticks) != len(ticksAtStop) {
		t.Errorf("ticks continued after Stop: %d then %d", len(ticksAtStop), len(ticks))
	}
	if expires != 0 {
		t.Errorf("expiry fired %d times after Stop, want 0", expires)
	}
}

func TestTimerPauseAndResume(t *testing.T) {
	rec := newTickRecorder()
	timer, err := startTimer(1000, testTickInterval, rec.onTick, rec.onExpire)
	if err != nil {
		t.Fatalf("startTimer() error = %v", err)
	}
	defer timer.Stop()

	timer.Pause()
	time.Sleep(2 * testTickInterval) // let any in-flight tick land
	frozen := timer.Remaining()
	time.Sleep(5 * testTickInterval)
	if got := timer.Remaining(); got != frozen {
		t.Errorf("remaining moved while paused: %d then %d", frozen, got)
	}

	timer.Resume()
	time.Sleep(5 * testTickInterval)
	if got := timer.Remaining(); got >= frozen {
		t.Errorf("remaining = %d after resume, want < %d", got, frozen)
	}
}

func TestTimerTicksStrictlyDecrease(t *testing.T) {
	rec := newTickRecorder()
	timer, err := startTimer(50, testTickInterval, rec.onTick, rec.onExpire)
	if err != nil {
		t.Fatalf("startTimer() error = %v", err)
	}
	time.Sleep(20 * testTickInterval)
	timer.Stop()

	ticks, _ := rec.snapshot()
	if len(ticks) < 2 {
		t.Fatalf("observed %d ticks, want at least 2", len(ticks))
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] != ticks[i-1]-1 {
			t.Errorf("tick %d = %d after %d, want strictly decreasing by one", i, ticks[i], ticks[i-1])
		}
	}
}
