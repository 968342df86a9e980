package session

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestTimerElapsedAdvances(t *testing.T) {
	tm := NewTimer(time.Hour, 2*time.Millisecond)
	tm.Start()
	defer tm.Stop()

	waitFor(t, time.Second, func() bool { return tm.ExamElapsed() > 20*time.Millisecond })

	if tm.GlobalElapsed() < tm.ExamElapsed() {
		t.Errorf("global elapsed %v should be >= exam elapsed %v", tm.GlobalElapsed(), tm.ExamElapsed())
	}
	if tm.TimedOut() {
		t.Error("timer should not have timed out")
	}
}

func TestTimerPauseFreezesExamTime(t *testing.T) {
	tm := NewTimer(time.Hour, 2*time.Millisecond)
	tm.Start()
	defer tm.Stop()

	waitFor(t, time.Second, func() bool { return tm.ExamElapsed() > 30*time.Millisecond })

	tm.Pause()
	// Let a paused tick run so the accumulator takes over.
	time.Sleep(10 * time.Millisecond)
	frozen := tm.ExamElapsed()
	globalAtPause := tm.GlobalElapsed()

	time.Sleep(80 * time.Millisecond)

	// Exam time is frozen within one tick's tolerance while global time
	// keeps advancing.
	if drift := tm.ExamElapsed() - frozen; drift > 10*time.Millisecond {
		t.Errorf("exam elapsed advanced %v while paused", drift)
	}
	if tm.GlobalElapsed()-globalAtPause < 50*time.Millisecond {
		t.Errorf("global elapsed should keep advancing while paused")
	}
	if tm.PausedElapsed() < 50*time.Millisecond {
		t.Errorf("paused accumulator = %v, want >= 50ms", tm.PausedElapsed())
	}

	tm.Resume()
	waitFor(t, time.Second, func() bool { return tm.ExamElapsed() > frozen+20*time.Millisecond })
}

func TestTimerTimeoutIsTerminal(t *testing.T) {
	tm := NewTimer(30*time.Millisecond, 2*time.Millisecond)
	tm.Start()

	waitFor(t, time.Second, func() bool { return tm.TimedOut() })

	// The loop has ended; Stop must still return promptly.
	done := make(chan struct{})
	go func() {
		tm.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after timeout")
	}

	if !tm.TimedOut() {
		t.Error("timeout flag must never revert")
	}
	if tm.ExamElapsed() < 30*time.Millisecond {
		t.Errorf("exam elapsed %v below allowed time at timeout", tm.ExamElapsed())
	}
}

func TestTimerStopIdempotent(t *testing.T) {
	tm := NewTimer(time.Hour, 2*time.Millisecond)
	tm.Start()
	tm.Stop()
	tm.Stop()
}
