package factory

import (
	"errors"
	"strings"

	"github.com/restage/restage/internal/store"
	fs "github.com/restage/restage/internal/store/file"
	pg "github.com/restage/restage/internal/store/postgres"
	sq "github.com/restage/restage/internal/store/sqlite"
)

// NewFromDSN selects a snapshot store implementation based on DSN.
// Supported:
//   - file:     "file://<dir>" or a bare directory path (the default)
//   - sqlite:   "sqlite://<path>"
//   - postgres: DSN starting with "postgres://" or "postgresql://"
func NewFromDSN(dsn string) (store.Store, error) {
	d := strings.TrimSpace(dsn)
	ld := strings.ToLower(d)
	if ld == "" {
		return nil, errors.New("empty DSN")
	}
	if strings.HasPrefix(ld, "postgres://") || strings.HasPrefix(ld, "postgresql://") {
		return pg.New(d)
	}
	if strings.HasPrefix(ld, "sqlite://") {
		return sq.New(strings.TrimPrefix(d, "sqlite://"))
	}
	if strings.HasPrefix(ld, "file://") {
		return fs.New(strings.TrimPrefix(d, "file://"))
	}
	// default to a workspaces directory
	return fs.New(d)
}
