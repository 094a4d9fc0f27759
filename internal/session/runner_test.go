package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeTimer struct {
	delay     time.Duration
	onFire    func()
	cancelled bool
}

func (f *fakeTimer) Cancel() { f.cancelled = true }

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (f *fakeScheduler) ScheduleAdvance(after time.Duration, onFire func()) TimerHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	timer := &fakeTimer{delay: after, onFire: onFire}
	f.timers = append(f.timers, timer)
	return timer
}

func (f *fakeScheduler) last(t *testing.T) *fakeTimer {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.timers) == 0 {
		t.Fatalf("no timer was scheduled")
	}
	return f.timers[len(f.timers)-1]
}

func waitForPhase(t *testing.T, snapshots <-chan Snapshot, phase Phase) Snapshot {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-snapshots:
			if snap.Phase == phase {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for phase %v", phase)
		}
	}
}

func startRunner(t *testing.T, questionCount int, evaluate Evaluator) (*Runner, *fakeScheduler, <-chan Snapshot, <-chan Outcome) {
	t.Helper()

	engine, err := NewEngine(makeQuestions(questionCount), Config{})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}

	scheduler := &fakeScheduler{}
	snapshots := make(chan Snapshot, 64)
	runner := NewRunner(engine, NewGrader(evaluate), scheduler, func(snap Snapshot) {
		snapshots <- snap
	}, zerolog.Nop())

	outcomes := make(chan Outcome, 1)
	go func() {
		outcomes <- runner.Run(context.Background())
	}()

	return runner, scheduler, snapshots, outcomes
}

func TestRunnerHappyPathWithTimerAdvance(t *testing.T) {
	runner, scheduler, snapshots, outcomes := startRunner(t, 1, nil)

	runner.Dispatch(Commit{Answer: "answer"})
	snap := waitForPhase(t, snapshots, PhaseFeedback)
	if snap.Evaluation == nil || !snap.Evaluation.IsCorrect {
		t.Fatalf("expected correct evaluation, got %+v", snap.Evaluation)
	}
	if snap.Score != 1 {
		t.Fatalf("score = %d, want 1", snap.Score)
	}

	// Fire the scheduled auto-advance by hand.
	scheduler.last(t).onFire()
	waitForPhase(t, snapshots, PhaseSummary)

	runner.Dispatch(Finish{})
	outcome := <-outcomes
	if !outcome.Completed || outcome.Score != 1 || outcome.Total != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	select {
	case <-runner.Done():
	default:
		t.Fatalf("runner must be done after the outcome is returned")
	}
}

func TestRunnerManualAdvanceCancelsScheduledTimer(t *testing.T) {
	runner, scheduler, snapshots, outcomes := startRunner(t, 2, nil)

	runner.Dispatch(Commit{Answer: "answer"})
	waitForPhase(t, snapshots, PhaseFeedback)

	// Advance by hand before the timer fires.
	runner.Dispatch(Commit{Answer: ""})
	snap := waitForPhase(t, snapshots, PhaseAwaitingAnswer)
	if snap.Position != 2 {
		t.Fatalf("expected question 2, got %d", snap.Position)
	}

	timer := scheduler.last(t)
	if !timer.cancelled {
		t.Fatalf("manual advance must cancel the outstanding timer")
	}

	runner.Dispatch(End{})
	outcome := <-outcomes
	if outcome.Completed {
		t.Fatalf("early exit reported as completed: %+v", outcome)
	}
}

func TestRunnerRemoteIncorrectFlow(t *testing.T) {
	evaluate := func(_ context.Context, _, _, _ string) (EvalResult, error) {
		return EvalResult{IsCorrect: false, Explanation: "Not quite."}, nil
	}
	runner, scheduler, snapshots, outcomes := startRunner(t, 1, evaluate)

	runner.Dispatch(Commit{Answer: "wrong"})
	snap := waitForPhase(t, snapshots, PhaseFeedback)
	if snap.Evaluation == nil || snap.Evaluation.IsCorrect {
		t.Fatalf("expected incorrect evaluation, got %+v", snap.Evaluation)
	}
	if snap.WrongCount != 1 {
		t.Fatalf("wrong queue = %d, want 1", snap.WrongCount)
	}

	scheduler.mu.Lock()
	scheduled := len(scheduler.timers)
	scheduler.mu.Unlock()
	if scheduled != 0 {
		t.Fatalf("incorrect verdict must not schedule an auto-advance")
	}

	// Manual advance is required; the pool is exhausted so this is summary.
	runner.Dispatch(Commit{Answer: ""})
	waitForPhase(t, snapshots, PhaseSummary)

	runner.Dispatch(Finish{})
	outcome := <-outcomes
	if outcome.Score != 0 || outcome.WrongCount != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestRunnerContextCancellationEndsSession(t *testing.T) {
	engine, err := NewEngine(makeQuestions(1), Config{})
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}
	runner := NewRunner(engine, NewGrader(nil), &fakeScheduler{}, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	outcomes := make(chan Outcome, 1)
	go func() {
		outcomes <- runner.Run(ctx)
	}()

	cancel()
	select {
	case outcome := <-outcomes:
		if outcome.Completed {
			t.Fatalf("cancelled session reported as completed")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runner did not stop on context cancellation")
	}

	// Dispatch after the end must not block.
	runner.Dispatch(Commit{Answer: "late"})
}
