package cli

import (
	"bufio"
	"io"
	"strings"

	"studyquiz/internal/session"
)

const (
	quitCommand   = "/quit"
	reviewCommand = "/review"
)

type dispatcher interface {
	Dispatch(session.Event)
}

// readCommits turns input lines into session events: Enter commits the typed
// line, /review starts the review pass, /quit ends the session. Once the
// session has ended dispatched events are dropped, so the binding is
// effectively detached.
func readCommits(target dispatcher, in io.Reader) {
	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// EOF or a closed input stream ends the session.
			target.Dispatch(session.End{})
			return
		}

		switch strings.TrimSpace(line) {
		case quitCommand:
			target.Dispatch(session.End{})
			return
		case reviewCommand:
			target.Dispatch(session.StartReview{})
		default:
			target.Dispatch(session.Commit{Answer: strings.TrimRight(line, "\r\n")})
		}
	}
}
