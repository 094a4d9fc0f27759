package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Phase is the submission phase of the session controller. All transitions
// go through Engine.Handle, the single mutation entry point.
type Phase int

const (
	PhaseAwaitingAnswer Phase = iota
	PhaseSubmitting
	PhaseFeedback
	PhaseSummary
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingAnswer:
		return "awaiting_answer"
	case PhaseSubmitting:
		return "submitting"
	case PhaseFeedback:
		return "feedback"
	case PhaseSummary:
		return "summary"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Mode distinguishes the primary pass over the full pool from the review pass
// over the questions missed during it.
type Mode int

const (
	ModePrimary Mode = iota
	ModeReview
)

func (m Mode) String() string {
	if m == ModeReview {
		return "review"
	}
	return "primary"
}

// Event is an input to the state machine. Commits come from the keyboard
// binding; grade results and timer fires re-enter through the runner's inbox
// carrying the identity token of the call that produced them.
type Event interface{ isEvent() }

// Commit is the Enter-key event. While awaiting an answer it submits; while
// feedback is shown it advances; on the summary it finishes the session.
type Commit struct{ Answer string }

// GradeResult delivers a grading outcome for the submission identified by
// Token. Results for a submission that is no longer current are discarded.
type GradeResult struct {
	Token   uuid.UUID
	Verdict Verdict
	Err     error
}

// TimerFired delivers an auto-advance for the timer identified by Token.
type TimerFired struct{ Token uuid.UUID }

// StartReview re-enters the session over the wrong-answer queue.
type StartReview struct{}

// Finish leaves the summary and ends the session.
type Finish struct{}

// End ends the session from any state (explicit exit, EOF, unmount).
type End struct{}

func (Commit) isEvent()      {}
func (GradeResult) isEvent() {}
func (TimerFired) isEvent()  {}
func (StartReview) isEvent() {}
func (Finish) isEvent()      {}
func (End) isEvent()         {}

// Effect is a side effect requested by a transition. The engine itself never
// performs I/O or scheduling; the runner executes effects.
type Effect interface{ isEffect() }

// GradeEffect asks for the answer to be graded off the event loop.
type GradeEffect struct {
	Token    uuid.UUID
	Question QuestionRecord
	Answer   string
}

// ScheduleEffect asks for an auto-advance timer.
type ScheduleEffect struct {
	Token uuid.UUID
	Delay time.Duration
}

// CancelTimerEffect cancels an outstanding auto-advance timer.
type CancelTimerEffect struct{ Token uuid.UUID }

// EndedEffect signals that the session is over.
type EndedEffect struct{ Outcome Outcome }

func (GradeEffect) isEffect()       {}
func (ScheduleEffect) isEffect()    {}
func (CancelTimerEffect) isEffect() {}
func (EndedEffect) isEffect()       {}

// Outcome is the final result handed back to the caller when the session ends.
type Outcome struct {
	SetID      int64
	Mode       Mode
	Score      int
	Total      int
	WrongCount int
	Completed  bool
}

// Config carries the auto-advance delays. A correct exact-match verdict
// advances after FastAdvance; a correct remote verdict waits RemoteAdvance so
// the generated explanation can be read. Incorrect verdicts never schedule.
type Config struct {
	FastAdvance   time.Duration
	RemoteAdvance time.Duration
}

const (
	defaultFastAdvance   = 2 * time.Second
	defaultRemoteAdvance = 5 * time.Second
)

func (c Config) withDefaults() Config {
	if c.FastAdvance <= 0 {
		c.FastAdvance = defaultFastAdvance
	}
	if c.RemoteAdvance <= 0 {
		c.RemoteAdvance = defaultRemoteAdvance
	}
	return c
}

// Engine is the session controller. It owns the question cursor, score,
// wrong-answer queue and phase, and is driven exclusively through Handle.
// It is not safe for concurrent use; one runner goroutine owns it.
type Engine struct {
	cfg Config

	pool       []QuestionRecord
	cursor     int
	score      int
	wrongQueue []QuestionRecord
	mode       Mode
	phase      Phase

	evaluation *Verdict
	lastAnswer string
	failure    string

	// Identity tokens for the current in-flight submission and scheduled
	// timer. Stale completions are detected by token mismatch.
	gradeToken uuid.UUID
	timerToken uuid.UUID
}

var ErrEmptyPool = errors.New("question pool is empty")

// NewEngine creates a session over a non-empty ordered question pool.
func NewEngine(pool []QuestionRecord, cfg Config) (*Engine, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	questions := make([]QuestionRecord, len(pool))
	copy(questions, pool)
	return &Engine{
		cfg:   cfg.withDefaults(),
		pool:  questions,
		mode:  ModePrimary,
		phase: PhaseAwaitingAnswer,
	}, nil
}

// Handle applies one event and returns the effects the transition requires.
func (e *Engine) Handle(ev Event) []Effect {
	if e.phase == PhaseEnded {
		return nil
	}

	switch ev := ev.(type) {
	case Commit:
		return e.handleCommit(ev.Answer)
	case GradeResult:
		return e.handleGradeResult(ev)
	case TimerFired:
		return e.handleTimerFired(ev.Token)
	case StartReview:
		return e.handleStartReview()
	case Finish:
		if e.phase != PhaseSummary {
			return nil
		}
		return e.end(true)
	case End:
		return e.end(e.phase == PhaseSummary)
	default:
		return nil
	}
}

func (e *Engine) handleCommit(answer string) []Effect {
	switch e.phase {
	case PhaseSubmitting:
		// One submission at a time; Enter is ignored until it resolves.
		return nil
	case PhaseFeedback:
		// Enter during feedback always advances, never re-submits.
		return e.advance()
	case PhaseSummary:
		return e.end(true)
	case PhaseAwaitingAnswer:
		if strings.TrimSpace(answer) == "" {
			// An empty commit after a grading failure retries the
			// preserved answer; otherwise it is rejected locally.
			if e.failure == "" || e.lastAnswer == "" {
				return nil
			}
			answer = e.lastAnswer
		}
		e.failure = ""
		e.lastAnswer = answer
		e.phase = PhaseSubmitting
		e.gradeToken = uuid.New()
		return []Effect{GradeEffect{
			Token:    e.gradeToken,
			Question: e.current(),
			Answer:   answer,
		}}
	default:
		return nil
	}
}

func (e *Engine) handleGradeResult(res GradeResult) []Effect {
	if e.phase != PhaseSubmitting || res.Token != e.gradeToken {
		// The question changed or the session moved on while the call was
		// in flight; its result must not mutate state.
		return nil
	}
	e.gradeToken = uuid.Nil

	if res.Err != nil {
		// Recoverable: the answer is preserved and input re-enabled.
		e.phase = PhaseAwaitingAnswer
		e.failure = res.Err.Error()
		return nil
	}

	verdict := res.Verdict
	e.evaluation = &verdict
	e.phase = PhaseFeedback

	if !verdict.IsCorrect {
		if e.mode == ModePrimary {
			e.wrongQueue = append(e.wrongQueue, e.current())
		}
		// The question stays on screen until a manual advance.
		return nil
	}

	e.score++
	delay := e.cfg.FastAdvance
	if verdict.Source == SourceRemote {
		delay = e.cfg.RemoteAdvance
	}
	e.timerToken = uuid.New()
	return []Effect{ScheduleEffect{Token: e.timerToken, Delay: delay}}
}

func (e *Engine) handleTimerFired(token uuid.UUID) []Effect {
	if e.phase != PhaseFeedback || token != e.timerToken {
		return nil
	}
	e.timerToken = uuid.Nil
	return e.advance()
}

// advance cancels any outstanding timer, clears the per-question state and
// moves the cursor, transitioning to the summary when the pool is exhausted.
func (e *Engine) advance() []Effect {
	var effects []Effect
	if e.timerToken != uuid.Nil {
		effects = append(effects, CancelTimerEffect{Token: e.timerToken})
		e.timerToken = uuid.Nil
	}

	e.evaluation = nil
	e.lastAnswer = ""
	e.failure = ""

	e.cursor++
	if e.cursor >= len(e.pool) {
		e.phase = PhaseSummary
	} else {
		e.phase = PhaseAwaitingAnswer
	}
	return effects
}

func (e *Engine) handleStartReview() []Effect {
	if e.phase != PhaseSummary || e.mode != ModePrimary || len(e.wrongQueue) == 0 {
		return nil
	}

	e.pool = e.wrongQueue
	e.wrongQueue = nil
	e.cursor = 0
	e.score = 0
	e.mode = ModeReview
	e.phase = PhaseAwaitingAnswer
	e.evaluation = nil
	e.lastAnswer = ""
	e.failure = ""
	return nil
}

func (e *Engine) end(completed bool) []Effect {
	var effects []Effect
	if e.timerToken != uuid.Nil {
		effects = append(effects, CancelTimerEffect{Token: e.timerToken})
		e.timerToken = uuid.Nil
	}
	// A remote call still in flight is allowed to complete; invalidating the
	// token makes its eventual result a no-op.
	e.gradeToken = uuid.Nil
	e.phase = PhaseEnded

	return append(effects, EndedEffect{Outcome: Outcome{
		SetID:      e.pool[0].SetID,
		Mode:       e.mode,
		Score:      e.score,
		Total:      len(e.pool),
		WrongCount: len(e.wrongQueue),
		Completed:  completed,
	}})
}

func (e *Engine) current() QuestionRecord {
	return e.pool[e.cursor]
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	Phase      Phase
	Mode       Mode
	Question   QuestionRecord
	Position   int
	PoolSize   int
	Score      int
	WrongCount int
	Evaluation *Verdict
	LastAnswer string
	Failure    string
}

// Snapshot copies the state relevant to rendering. The Question field is the
// zero value once the pool is exhausted.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:      e.phase,
		Mode:       e.mode,
		Position:   e.cursor + 1,
		PoolSize:   len(e.pool),
		Score:      e.score,
		WrongCount: len(e.wrongQueue),
		LastAnswer: e.lastAnswer,
		Failure:    e.failure,
	}
	if e.cursor < len(e.pool) {
		snap.Question = e.pool[e.cursor]
	}
	if e.evaluation != nil {
		verdict := *e.evaluation
		snap.Evaluation = &verdict
	}
	return snap
}
