package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/restage/restage/internal/history"
)

// startPostgresContainer starts a PostgreSQL container for tests. It
// skips the test if Docker is unavailable.
func startPostgresContainer(t *testing.T) (dsn string, terminate func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
	)
	if err != nil {
		cancel()
		t.Skipf("Failed to start PostgreSQL container: %v", err)
		return "", nil
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		cancel()
		t.Skipf("Failed to get host info: %v", err)
		return "", nil
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		cancel()
		t.Skipf("Failed to get mapped port: %v", err)
		return "", nil
	}

	dsn = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	terminate = func() {
		_ = container.Terminate(ctx)
		cancel()
	}
	return dsn, terminate
}

func waitForPostgres(t *testing.T, dsn string) {
	deadline := time.Now().Add(45 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		db, err := sql.Open("pgx", dsn)
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				_ = db.Close()
				cancel()
				return
			}
			_ = db.Close()
		}
		cancel()
		if time.Now().After(deadline) {
			t.Fatalf("postgres not ready in time: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func TestPostgresSink(t *testing.T) {
	dsn, terminate := startPostgresContainer(t)
	waitForPostgres(t, dsn)
	defer func() {
		if terminate != nil {
			terminate()
		}
	}()

	sink, err := New(dsn)
	if err != nil {
		t.Fatalf("pg open: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })
	ctx := context.Background()

	events := []history.Event{
		{Type: history.EventCapture, Workspace: "work", OccurredAt: time.Now().UTC(),
			Applied: 5, Took: 2 * time.Second},
		{Type: history.EventRestore, Workspace: "work", OccurredAt: time.Now().UTC(),
			Applied: 4, Failed: 1, Took: 9 * time.Second, Error: ""},
	}
	for _, e := range events {
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	var count int
	if err := sink.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workspace_history WHERE workspace=$1;`, "work").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("rows = %d, want 2", count)
	}

	var tookMS int64
	if err := sink.db.QueryRowContext(ctx,
		`SELECT took_ms FROM workspace_history WHERE type='restore';`).Scan(&tookMS); err != nil {
		t.Fatalf("query: %v", err)
	}
	if tookMS != 9000 {
		t.Fatalf("took_ms = %d", tookMS)
	}
}
