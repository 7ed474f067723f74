package game

import (
	"sync"
	"time"
)

// PhaseTimer is a cancellable per-room countdown. It ticks once per interval,
// reporting the remaining whole seconds, and fires onComplete either when the
// count reaches zero or when Complete is called early. Cancel discards the
// countdown without firing onComplete. Both Cancel and Complete are idempotent
// and safe to call after the timer has already finished.
type PhaseTimer struct {
	mu       sync.Mutex
	stopped  bool
	cancel   chan struct{}
	complete chan struct{}
}

// NewPhaseTimer builds a timer without starting it, so callers can hand the
// timer's own identity to its callbacks before any tick can fire.
func NewPhaseTimer() *PhaseTimer {
	return &PhaseTimer{
		cancel:   make(chan struct{}),
		complete: make(chan struct{}),
	}
}

// Start launches the countdown goroutine. onTick and onComplete are invoked
// from that goroutine, never concurrently with each other. Call once.
func (t *PhaseTimer) Start(seconds int, interval time.Duration, onTick func(remaining int), onComplete func()) {
	go t.run(seconds, interval, onTick, onComplete)
}

// StartPhaseTimer builds and immediately starts a timer.
func StartPhaseTimer(seconds int, interval time.Duration, onTick func(remaining int), onComplete func()) *PhaseTimer {
	t := NewPhaseTimer()
	t.Start(seconds, interval, onTick, onComplete)
	return t
}

func (t *PhaseTimer) run(seconds int, interval time.Duration, onTick func(int), onComplete func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	remaining := seconds
	for {
		select {
		case <-ticker.C:
			remaining--
			onTick(remaining)
			if remaining <= 0 {
				if t.markStopped() {
					onComplete()
					return
				}
				// Lost the race with Cancel or Complete at the final tick.
				// Complete still owes the callback a run; Cancel does not.
				select {
				case <-t.complete:
					onComplete()
				default:
				}
				return
			}
		case <-t.complete:
			onComplete()
			return
		case <-t.cancel:
			return
		}
	}
}

// Cancel stops the countdown without running the completion callback.
func (t *PhaseTimer) Cancel() {
	if t.markStopped() {
		close(t.cancel)
	}
}

// Complete stops the countdown and runs the completion callback immediately.
// Used when all players act before the clock runs out.
func (t *PhaseTimer) Complete() {
	if t.markStopped() {
		close(t.complete)
	}
}

// markStopped reports whether the caller won the race to stop the timer.
func (t *PhaseTimer) markStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}
