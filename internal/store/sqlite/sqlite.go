// Package sqlite implements the snapshot store on SQLite
// (modernc.org/sqlite driver, CGO-free).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/restage/restage/internal/store"
	"github.com/restage/restage/internal/workspace"
)

type Store struct {
	db *sql.DB
}

// New opens a SQLite database at path. Use ":memory:" for in-memory.
func New(path string) (*Store, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	s := &Store{db: d}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = d.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workspaces(
			name TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_workspaces_created ON workspaces(created_at);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context, snap *workspace.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if !store.ValidName(snap.Name) {
		return fmt.Errorf("invalid workspace name %q", snap.Name)
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workspaces(name, created_at, data, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			created_at=excluded.created_at,
			data=excluded.data,
			updated_at=excluded.updated_at;`,
		snap.Name, snap.CreatedAt.UTC(), string(data), time.Now().UTC())
	return err
}

func (s *Store) Load(ctx context.Context, name string) (*workspace.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM workspaces WHERE name=?;`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	var snap workspace.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("decode workspace %s: %w", name, err)
	}
	return &snap, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM workspaces ORDER BY created_at DESC, name ASC;`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE name=?;`, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

var _ store.Store = (*Store)(nil)
