package store

import (
	"context"
	"errors"
	"regexp"

	"github.com/restage/restage/internal/workspace"
)

// ErrNotFound is returned when the named workspace does not exist.
var ErrNotFound = errors.New("workspace not found")

// Store persists named snapshots. Save replaces the whole snapshot
// atomically: no reader ever observes a half-written workspace.
// List returns workspace names ordered newest first.
type Store interface {
	Save(ctx context.Context, snap *workspace.Snapshot) error
	Load(ctx context.Context, name string) (*workspace.Snapshot, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

var nameRe = regexp.MustCompile(`^[A-Za-z0-9._ -]+$`)

// ValidName reports whether name is a usable workspace name: no path
// separators, no traversal, non-empty.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return nameRe.MatchString(name)
}
