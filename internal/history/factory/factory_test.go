package factory

import (
	"path/filepath"
	"testing"

	"github.com/restage/restage/internal/history/sqlite"
)

func TestNewSinkFromDSNSQLite(t *testing.T) {
	for _, dsn := range []string{
		"sqlite://" + filepath.Join(t.TempDir(), "history.db"),
		filepath.Join(t.TempDir(), "bare-path.db"),
	} {
		sink, err := NewSinkFromDSN(dsn)
		if err != nil {
			t.Fatalf("NewSinkFromDSN(%q): %v", dsn, err)
		}
		s, ok := sink.(*sqlite.Sink)
		if !ok {
			t.Fatalf("NewSinkFromDSN(%q) = %T, want sqlite sink", dsn, sink)
		}
		_ = s.Close()
	}
}

func TestNewSinkFromDSNErrors(t *testing.T) {
	if _, err := NewSinkFromDSN(""); err == nil {
		t.Fatal("empty DSN must be rejected")
	}
	if _, err := NewSinkFromDSN("redis://localhost:6379"); err == nil {
		t.Fatal("unsupported scheme must be rejected")
	}
}
