// Package sqlite writes workspace operation events to a local SQLite
// database (modernc.org/sqlite driver, CGO-free).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/restage/restage/internal/history"
)

type Sink struct {
	db *sql.DB
}

func New(path string) (*Sink, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	s := &Sink{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS workspace_history(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		workspace TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL,
		applied INTEGER NOT NULL,
		partial INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		took_ms INTEGER NOT NULL,
		error TEXT NULL
	);`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	var errStr sql.NullString
	if e.Error != "" {
		errStr = sql.NullString{String: e.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workspace_history(type, workspace, occurred_at, applied, partial, failed, took_ms, error)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?);`,
		string(e.Type), e.Workspace, e.OccurredAt.UTC(),
		e.Applied, e.Partial, e.Failed, e.Took.Milliseconds(), errStr)
	return err
}

func (s *Sink) Close() error { return s.db.Close() }

var _ history.Sink = (*Sink)(nil)
