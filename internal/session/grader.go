package session

import (
	"context"
	"errors"
	"strings"
)

const exactMatchExplanation = "Exact match with the expected answer."

// VerdictSource records which grading tier produced a verdict. The controller
// uses it to pick the auto-advance delay.
type VerdictSource int

const (
	SourceExactMatch VerdictSource = iota
	SourceRemote
)

// Verdict is the outcome of grading a single answer.
type Verdict struct {
	IsCorrect     bool
	Explanation   string
	CorrectAnswer string
	Source        VerdictSource
}

// EvalResult is the remote evaluator's response. Some backend versions echo
// the expected answer alongside it; that echo is dropped at the API boundary
// because the locally known answer is authoritative for display.
type EvalResult struct {
	IsCorrect   bool
	Explanation string
}

// Evaluator is the remote semantic-grading collaborator. The expected answer
// and the user's raw, unnormalized input are both transmitted.
type Evaluator func(ctx context.Context, question, expectedAnswer, userAnswer string) (EvalResult, error)

var (
	ErrEmptyAnswer = errors.New("answer is empty")
	ErrNoEvaluator = errors.New("remote evaluator is not configured")
)

// Grader grades one answer at a time. It never mutates session state; it only
// returns a verdict. Callers must not submit again for the same question while
// a prior call is outstanding; the session controller enforces this through
// its Submitting phase.
type Grader struct {
	evaluate Evaluator
}

func NewGrader(evaluate Evaluator) *Grader {
	return &Grader{evaluate: evaluate}
}

// Submit grades userAnswer against question. When the normalized forms match,
// the verdict is produced synchronously with no network involved. Otherwise
// exactly one remote evaluation call is issued; its failure is recoverable and
// leaves the question unresolved so the user can retry.
func (g *Grader) Submit(ctx context.Context, question QuestionRecord, userAnswer string) (Verdict, error) {
	if strings.TrimSpace(userAnswer) == "" {
		return Verdict{}, ErrEmptyAnswer
	}

	if Normalize(userAnswer) == Normalize(question.Answer) {
		return Verdict{
			IsCorrect:     true,
			Explanation:   exactMatchExplanation,
			CorrectAnswer: question.Answer,
			Source:        SourceExactMatch,
		}, nil
	}

	if g.evaluate == nil {
		return Verdict{}, ErrNoEvaluator
	}

	result, err := g.evaluate(ctx, question.Prompt, question.Answer, userAnswer)
	if err != nil {
		return Verdict{}, err
	}

	return Verdict{
		IsCorrect:     result.IsCorrect,
		Explanation:   result.Explanation,
		CorrectAnswer: question.Answer,
		Source:        SourceRemote,
	}, nil
}
