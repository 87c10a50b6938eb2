package history

import (
	"context"
	"time"
)

// EventType defines the kind of workspace operation.
type EventType string

const (
	EventCapture EventType = "capture"
	EventRestore EventType = "restore"
)

// Event is one completed capture/restore operation to be exported to
// external systems.
type Event struct {
	Type       EventType     `json:"type"`
	Workspace  string        `json:"workspace"`
	OccurredAt time.Time     `json:"occurred_at"`
	Applied    int           `json:"applied"`
	Partial    int           `json:"partial"`
	Failed     int           `json:"failed"`
	Took       time.Duration `json:"took"`
	Error      string        `json:"error,omitempty"`
}

// Sink is a destination for operation events (analytics/statistics
// systems). Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}
