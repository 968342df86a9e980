package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTick is the timer recompute interval. The interaction loop polls
// timer state at a similar cadence, so timeout and pause accounting are
// observed with sub-second latency.
const DefaultTick = 100 * time.Millisecond

// Timer tracks elapsed exam time in the background for the lifetime of one
// attempt. Elapsed fields are written only by the timer goroutine; the
// paused flag is written only by the foreground loop. The timeout latch is
// terminal: once set it never clears for the rest of the attempt.
type Timer struct {
	tick    time.Duration
	allowed time.Duration
	begin   time.Time

	globalNanos atomic.Int64
	examNanos   atomic.Int64
	pausedNanos atomic.Int64
	paused      atomic.Bool
	timedOut    atomic.Bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewTimer creates a timer for one attempt. allowed is the total exam time
// budget; tick <= 0 selects DefaultTick.
func NewTimer(allowed, tick time.Duration) *Timer {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Timer{
		tick:    tick,
		allowed: allowed,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins timing. Must be paired with Stop.
func (t *Timer) Start() {
	t.begin = time.Now()
	go t.run()
}

func (t *Timer) run() {
	defer close(t.done)

	slog.Debug("exam timer started", "allowed", t.allowed, "tick", t.tick)
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			slog.Debug("exam timer stopped")
			return
		case <-ticker.C:
			global := int64(time.Since(t.begin))
			t.globalNanos.Store(global)

			if t.paused.Load() {
				// Freeze exam time by growing the paused
				// accumulator at the rate time passes.
				t.pausedNanos.Store(global - t.examNanos.Load())
				continue
			}

			exam := global - t.pausedNanos.Load()
			t.examNanos.Store(exam)
			if t.allowed > 0 && exam > int64(t.allowed) {
				t.timedOut.Store(true)
				slog.Debug("exam time expired", "elapsed", time.Duration(exam))
				return
			}
		}
	}
}

// Stop terminates the timer loop and waits for it to exit. Safe to call
// more than once, and safe after the loop already ended on timeout.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}

// Pause freezes exam-relevant elapsed time.
func (t *Timer) Pause() { t.paused.Store(true) }

// Resume unfreezes exam-relevant elapsed time.
func (t *Timer) Resume() { t.paused.Store(false) }

// Paused reports whether the timer is currently paused.
func (t *Timer) Paused() bool { return t.paused.Load() }

// GlobalElapsed is wall-clock time since Start, including paused intervals.
func (t *Timer) GlobalElapsed() time.Duration {
	return time.Duration(t.globalNanos.Load())
}

// ExamElapsed is global elapsed time minus time spent paused.
func (t *Timer) ExamElapsed() time.Duration {
	return time.Duration(t.examNanos.Load())
}

// PausedElapsed is the accumulated time spent paused.
func (t *Timer) PausedElapsed() time.Duration {
	return time.Duration(t.pausedNanos.Load())
}

// TimedOut reports whether the exam time budget was exceeded.
func (t *Timer) TimedOut() bool { return t.timedOut.Load() }
