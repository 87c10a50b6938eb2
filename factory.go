package restage

import (
	"os"
	"path/filepath"

	hfactory "github.com/restage/restage/internal/history/factory"
	sfactory "github.com/restage/restage/internal/store/factory"
)

// NewStore selects a snapshot store from a DSN: a bare directory path
// or "file://" for the JSON file store, "sqlite://" or "postgres://"
// for the database backends.
func NewStore(dsn string) (Store, error) { return sfactory.NewFromDSN(dsn) }

// NewHistorySink selects an operation-history sink from a DSN:
// "sqlite://", "postgres://" or "clickhouse://".
func NewHistorySink(dsn string) (HistorySink, error) { return hfactory.NewSinkFromDSN(dsn) }

// DefaultWorkspacesDir is where snapshots land when no store DSN is
// configured.
func DefaultWorkspacesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "saved_workspaces"
	}
	return filepath.Join(home, ".restage", "workspaces")
}
