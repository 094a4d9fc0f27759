package cli

import (
	"strings"
	"testing"

	"studyquiz/internal/session"
)

type recordingDispatcher struct {
	events []session.Event
}

func (r *recordingDispatcher) Dispatch(ev session.Event) {
	r.events = append(r.events, ev)
}

func TestReadCommitsMapsLinesToEvents(t *testing.T) {
	input := strings.NewReader("4\n\n  /review  \nParis is nice\n/quit\nignored\n")
	target := &recordingDispatcher{}

	readCommits(target, input)

	want := []session.Event{
		session.Commit{Answer: "4"},
		session.Commit{Answer: ""},
		session.StartReview{},
		session.Commit{Answer: "Paris is nice"},
		session.End{},
	}
	if len(target.events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(target.events), target.events)
	}
	for idx, ev := range want {
		if target.events[idx] != ev {
			t.Fatalf("event %d = %+v, want %+v", idx, target.events[idx], ev)
		}
	}
}

func TestReadCommitsEndsSessionOnEOF(t *testing.T) {
	target := &recordingDispatcher{}

	readCommits(target, strings.NewReader("last answer\n"))

	if len(target.events) != 2 {
		t.Fatalf("expected commit + end, got %+v", target.events)
	}
	if _, ok := target.events[1].(session.End); !ok {
		t.Fatalf("expected End on EOF, got %+v", target.events[1])
	}
}

func TestReadCommitsPreservesInnerWhitespace(t *testing.T) {
	target := &recordingDispatcher{}

	readCommits(target, strings.NewReader("New  York\r\n"))

	commit, ok := target.events[0].(session.Commit)
	if !ok {
		t.Fatalf("expected Commit, got %+v", target.events[0])
	}
	if commit.Answer != "New  York" {
		t.Fatalf("answer = %q, want %q", commit.Answer, "New  York")
	}
}
