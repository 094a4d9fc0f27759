package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"studyquiz/internal/api"
	"studyquiz/internal/history"
	"studyquiz/internal/session"
)

// Deps wires the collaborators a session run needs. History may be nil.
type Deps struct {
	Client  *api.Client
	History *history.Store
	Log     zerolog.Logger

	FastAdvance   time.Duration
	RemoteAdvance time.Duration
}

// Run fetches the quiz set, notifies the view counter and drives one
// interactive session over in/out until the user finishes or exits.
func Run(ctx context.Context, in io.Reader, out io.Writer, setID int64, deps Deps) error {
	questions, err := deps.Client.GetQuestions(ctx, setID)
	if err != nil {
		return fmt.Errorf("fetch quiz set %d: %w", setID, err)
	}
	if len(questions) == 0 {
		return errors.New("quiz set has no questions")
	}

	// View-count telemetry is best effort; the session starts regardless.
	if err := deps.Client.IncrementViewCount(ctx, setID); err != nil {
		deps.Log.Warn().Err(err).Int64("set_id", setID).Msg("view count increment failed")
	}

	engine, err := session.NewEngine(poolFromQuestions(questions), session.Config{
		FastAdvance:   deps.FastAdvance,
		RemoteAdvance: deps.RemoteAdvance,
	})
	if err != nil {
		return err
	}

	grader := session.NewGrader(func(ctx context.Context, question, expectedAnswer, userAnswer string) (session.EvalResult, error) {
		evaluation, err := deps.Client.EvaluateAnswer(ctx, question, expectedAnswer, userAnswer)
		if err != nil {
			return session.EvalResult{}, err
		}
		return session.EvalResult{
			IsCorrect:   evaluation.IsCorrect,
			Explanation: evaluation.Explanation,
		}, nil
	})

	view := newRenderer(out)
	runner := session.NewRunner(engine, grader, session.NewScheduler(), view.render, deps.Log)

	go readCommits(runner, in)

	outcome := runner.Run(ctx)
	recordOutcome(deps, outcome)
	return nil
}

func poolFromQuestions(questions []api.QuestionItem) []session.QuestionRecord {
	pool := make([]session.QuestionRecord, 0, len(questions))
	for _, item := range questions {
		pool = append(pool, session.QuestionRecord{
			ID:      item.ID,
			Ordinal: item.No,
			Prompt:  item.Question,
			Answer:  item.Answer,
			SetID:   item.QuizSetID,
		})
	}
	return pool
}

func recordOutcome(deps Deps, outcome session.Outcome) {
	if deps.History == nil {
		return
	}

	// The session context may already be cancelled on an interrupt; give the
	// write its own short deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := deps.History.RecordOutcome(ctx, history.Outcome{
		SetID:      outcome.SetID,
		Mode:       outcome.Mode.String(),
		Score:      outcome.Score,
		Total:      outcome.Total,
		WrongCount: outcome.WrongCount,
		Completed:  outcome.Completed,
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		deps.Log.Warn().Err(err).Msg("failed to record session outcome")
	}
}
