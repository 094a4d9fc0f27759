package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RenderFunc is called with a fresh snapshot after every applied event.
type RenderFunc func(Snapshot)

// Runner owns the engine and drives it on a single goroutine. Events may be
// dispatched from any goroutine; once the session has ended they are dropped,
// which is what detaches the keyboard binding.
type Runner struct {
	engine    *Engine
	grader    *Grader
	scheduler Scheduler
	render    RenderFunc
	log       zerolog.Logger

	inbox  chan Event
	done   chan struct{}
	timers map[uuid.UUID]TimerHandle

	ctx     context.Context
	outcome Outcome
}

func NewRunner(engine *Engine, grader *Grader, scheduler Scheduler, render RenderFunc, log zerolog.Logger) *Runner {
	if render == nil {
		render = func(Snapshot) {}
	}
	return &Runner{
		engine:    engine,
		grader:    grader,
		scheduler: scheduler,
		render:    render,
		log:       log,
		inbox:     make(chan Event, 16),
		done:      make(chan struct{}),
		timers:    make(map[uuid.UUID]TimerHandle),
	}
}

// Dispatch posts an event to the session loop. It never blocks on an ended
// session.
func (r *Runner) Dispatch(ev Event) {
	select {
	case <-r.done:
	case r.inbox <- ev:
	}
}

// Done is closed when the session has ended.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Run processes events until the session ends or ctx is cancelled, then
// returns the final outcome. It must be called exactly once.
func (r *Runner) Run(ctx context.Context) Outcome {
	r.ctx = ctx
	r.render(r.engine.Snapshot())

	for {
		select {
		case <-ctx.Done():
			r.apply(End{})
			return r.outcome
		case ev := <-r.inbox:
			if r.apply(ev) {
				return r.outcome
			}
		}
	}
}

func (r *Runner) apply(ev Event) (ended bool) {
	if fired, ok := ev.(TimerFired); ok {
		// The handle is spent once its timer fires.
		delete(r.timers, fired.Token)
	}

	for _, effect := range r.engine.Handle(ev) {
		switch eff := effect.(type) {
		case GradeEffect:
			go r.grade(eff)
		case ScheduleEffect:
			token := eff.Token
			r.timers[token] = r.scheduler.ScheduleAdvance(eff.Delay, func() {
				r.Dispatch(TimerFired{Token: token})
			})
		case CancelTimerEffect:
			if handle, ok := r.timers[eff.Token]; ok {
				handle.Cancel()
				delete(r.timers, eff.Token)
			}
		case EndedEffect:
			r.outcome = eff.Outcome
			ended = true
		}
	}

	if ended {
		for token, handle := range r.timers {
			handle.Cancel()
			delete(r.timers, token)
		}
		close(r.done)
	}
	r.render(r.engine.Snapshot())
	return ended
}

func (r *Runner) grade(eff GradeEffect) {
	verdict, err := r.grader.Submit(r.ctx, eff.Question, eff.Answer)
	if err != nil {
		r.log.Debug().
			Err(err).
			Int64("question_id", eff.Question.ID).
			Msg("answer evaluation failed")
	}
	r.Dispatch(GradeResult{Token: eff.Token, Verdict: verdict, Err: err})
}
