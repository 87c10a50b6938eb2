// Package clickhouse exports workspace operation events to ClickHouse
// using the official Go client.
package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/restage/restage/internal/history"
)

type Sink struct {
	conn  driver.Conn
	table string
}

func New(addr, table string) (*Sink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: "default",
			Password: "",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return &Sink{conn: conn, table: table}, nil
}

// EnsureSchema creates the events table when it does not exist yet.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		type String,
		workspace String,
		occurred_at DateTime64(3),
		applied Int32,
		partial Int32,
		failed Int32,
		took_ms Int64,
		error String
	) ENGINE = MergeTree() ORDER BY occurred_at`, s.table)
	return s.conn.Exec(ctx, query)
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	query := fmt.Sprintf(`INSERT INTO %s (type, workspace, occurred_at, applied, partial, failed, took_ms, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	err := s.conn.Exec(ctx, query,
		string(e.Type),
		e.Workspace,
		e.OccurredAt,
		int32(e.Applied),
		int32(e.Partial),
		int32(e.Failed),
		e.Took.Milliseconds(),
		e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event into ClickHouse: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

var _ history.Sink = (*Sink)(nil)
