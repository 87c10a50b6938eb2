// Package file implements the snapshot store as one JSON file per
// workspace under a directory, written atomically via rename.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/restage/restage/internal/store"
	"github.com/restage/restage/internal/workspace"
)

type Store struct {
	dir string
}

// New opens (creating if needed) a directory-backed snapshot store.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("empty workspaces directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspaces dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) Save(_ context.Context, snap *workspace.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if !store.ValidName(snap.Name) {
		return fmt.Errorf("invalid workspace name %q", snap.Name)
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	// Write-then-rename keeps saves atomic on the same filesystem.
	tmp, err := os.CreateTemp(s.dir, "."+snap.Name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path(snap.Name)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *Store) Load(_ context.Context, name string) (*workspace.Snapshot, error) {
	if !store.ValidName(name) {
		return nil, fmt.Errorf("invalid workspace name %q", name)
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, name)
		}
		return nil, err
	}
	var snap workspace.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode workspace %s: %w", name, err)
	}
	return &snap, nil
}

func (s *Store) List(_ context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	type entry struct {
		name    string
		created time.Time
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".json")
		e := entry{name: name}
		// Best effort: unreadable files still list, sorted last.
		if data, err := os.ReadFile(m); err == nil {
			var snap workspace.Snapshot
			if json.Unmarshal(data, &snap) == nil {
				e.created = snap.CreatedAt
			}
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].created.After(entries[j].created)
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names, nil
}

func (s *Store) Delete(_ context.Context, name string) error {
	if !store.ValidName(name) {
		return fmt.Errorf("invalid workspace name %q", name)
	}
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", store.ErrNotFound, name)
		}
		return err
	}
	return nil
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
