package session

import (
	"strings"
	"unicode"
)

// QuestionRecord is one question of a quiz set, borrowed read-only from the
// backend for the duration of a session.
type QuestionRecord struct {
	ID      int64
	Ordinal int
	Prompt  string
	Answer  string
	SetID   int64
}

// Normalize canonicalizes an answer for the exact-match fast path: lower-case
// with every whitespace character removed. It is only used for comparison;
// the answer sent to the remote evaluator is the user's original input.
func Normalize(answer string) string {
	var builder strings.Builder
	builder.Grow(len(answer))
	for _, r := range strings.ToLower(answer) {
		if unicode.IsSpace(r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
