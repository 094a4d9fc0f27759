package cli

import (
	"fmt"
	"io"

	"studyquiz/internal/session"
)

// renderer prints the session to out. Snapshots arrive after every applied
// event, including ignored ones, so identical consecutive views are skipped.
type renderer struct {
	out     io.Writer
	lastKey string
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out}
}

func (r *renderer) render(snap session.Snapshot) {
	key := snapshotKey(snap)
	if key == r.lastKey {
		return
	}
	r.lastKey = key

	switch snap.Phase {
	case session.PhaseAwaitingAnswer:
		r.renderQuestion(snap)
	case session.PhaseSubmitting:
		fmt.Fprintln(r.out, "Checking your answer...")
	case session.PhaseFeedback:
		r.renderFeedback(snap)
	case session.PhaseSummary:
		r.renderSummary(snap)
	case session.PhaseEnded:
		fmt.Fprintf(r.out, "\nSession over. Final score: %d/%d\n", snap.Score, snap.PoolSize)
	}
}

func (r *renderer) renderQuestion(snap session.Snapshot) {
	header := fmt.Sprintf("Question %d", snap.Question.Ordinal)
	if snap.Mode == session.ModeReview {
		header = "[Review] " + header
	}

	fmt.Fprintf(r.out, "\n%s  (%d/%d)\n\n", header, snap.Position, snap.PoolSize)
	fmt.Fprintln(r.out, snap.Question.Prompt)

	if snap.Failure != "" {
		fmt.Fprintf(r.out, "\nCould not evaluate your answer: %s\n", snap.Failure)
		fmt.Fprintf(r.out, "Press Enter to retry %q or type a new answer.\n", snap.LastAnswer)
	}
	fmt.Fprint(r.out, "\n> ")
}

func (r *renderer) renderFeedback(snap session.Snapshot) {
	evaluation := snap.Evaluation
	if evaluation == nil {
		return
	}

	fmt.Fprintln(r.out)
	if evaluation.IsCorrect {
		fmt.Fprintln(r.out, "Correct!")
	} else {
		fmt.Fprintln(r.out, "Incorrect.")
		fmt.Fprintf(r.out, "Expected answer: %s\n", evaluation.CorrectAnswer)
	}
	if evaluation.Explanation != "" {
		fmt.Fprintln(r.out, evaluation.Explanation)
	}

	if evaluation.IsCorrect {
		fmt.Fprintln(r.out, "Moving on shortly; press Enter to continue now.")
	} else {
		fmt.Fprintln(r.out, "Press Enter to continue.")
	}
}

func (r *renderer) renderSummary(snap session.Snapshot) {
	fmt.Fprintf(r.out, "\nYou answered %d of %d questions correctly.\n", snap.Score, snap.PoolSize)
	if snap.Mode == session.ModePrimary && snap.WrongCount > 0 {
		fmt.Fprintf(r.out, "Type %s to retry the %d you missed, or press Enter to finish.\n", reviewCommand, snap.WrongCount)
	} else {
		fmt.Fprintln(r.out, "Press Enter to finish.")
	}
}

func snapshotKey(snap session.Snapshot) string {
	evaluated := snap.Evaluation != nil
	return fmt.Sprintf("%s|%s|%d|%d|%t|%s", snap.Phase, snap.Mode, snap.Position, snap.Score, evaluated, snap.Failure)
}
