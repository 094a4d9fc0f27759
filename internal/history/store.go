package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Outcome is one finished session, as recorded locally. In-session progress
// is never persisted; only the final result of a pass is.
type Outcome struct {
	SetID      int64
	Mode       string
	Score      int
	Total      int
	WrongCount int
	Completed  bool
	FinishedAt time.Time
}

// Store keeps a local log of finished sessions in sqlite.
type Store struct {
	db *sql.DB
}

var ErrNoPath = errors.New("history database path is empty")

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS session_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			set_id INTEGER NOT NULL,
			mode TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			wrong_count INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			finished_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_session_results_finished_at ON session_results(finished_at_unix DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordOutcome appends one finished session.
func (s *Store) RecordOutcome(ctx context.Context, outcome Outcome) error {
	finishedAt := outcome.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}

	completed := 0
	if outcome.Completed {
		completed = 1
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO session_results (set_id, mode, score, total, wrong_count, completed, finished_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		outcome.SetID,
		outcome.Mode,
		outcome.Score,
		outcome.Total,
		outcome.WrongCount,
		completed,
		finishedAt.UnixNano(),
	)
	return err
}

// ListRecent returns the newest outcomes first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT set_id, mode, score, total, wrong_count, completed, finished_at_unix
		 FROM session_results
		 ORDER BY finished_at_unix DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outcomes := make([]Outcome, 0, limit)
	for rows.Next() {
		var (
			outcome      Outcome
			completed    int
			finishedAtNs int64
		)
		if err := rows.Scan(
			&outcome.SetID,
			&outcome.Mode,
			&outcome.Score,
			&outcome.Total,
			&outcome.WrongCount,
			&completed,
			&finishedAtNs,
		); err != nil {
			return nil, err
		}
		outcome.Completed = completed != 0
		outcome.FinishedAt = time.Unix(0, finishedAtNs).UTC()
		outcomes = append(outcomes, outcome)
	}

	return outcomes, rows.Err()
}
