package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/restage/restage/internal/workspace"
)

// Failure taxonomy for automation calls. Implementations wrap these so
// callers can classify with errors.Is.
var (
	ErrPermissionDenied = errors.New("automation permission denied")
	ErrProcessNotFound  = errors.New("process not found")
	ErrTimeout          = errors.New("automation call timed out")
	ErrUnsupported      = errors.New("operation not supported")
)

// ProcessHandle is an opaque, non-owned reference to a running
// application process. Handles are not assumed to stay valid across a
// readiness wait; callers re-resolve before use.
type ProcessHandle struct {
	AppID string
	Name  string
	PID   int
}

// Bridge is the OS-level automation surface used to query and command
// application processes. Every call may block and may fail with one of
// the taxonomy errors above. Implementations need not be safe for more
// than one in-flight call per target process; wrap with Serialized to
// enforce that.
type Bridge interface {
	// ListRunning enumerates visible running applications.
	ListRunning(ctx context.Context) ([]ProcessHandle, error)
	// Launch starts the application and returns a handle to it.
	Launch(ctx context.Context, appID string) (ProcessHandle, error)
	// IsReady reports whether the process accepts automation commands.
	IsReady(ctx context.Context, h ProcessHandle) (bool, error)
	// QueryWindows returns the process's window frames, front first.
	QueryWindows(ctx context.Context, h ProcessHandle) ([]workspace.WindowGeometry, error)
	// QueryCapability fetches the semantic payload of the given kind.
	QueryCapability(ctx context.Context, h ProcessHandle, kind workspace.Capability) (workspace.Payload, error)
	// ApplyGeometry moves/resizes one window. win is 1-based, front first.
	ApplyGeometry(ctx context.Context, h ProcessHandle, win int, g workspace.WindowGeometry) error
	// ApplyCapability replays a semantic payload against the process.
	ApplyCapability(ctx context.Context, h ProcessHandle, p workspace.Payload) error
}

// OpError annotates a bridge failure with the operation and target.
type OpError struct {
	Op    string
	AppID string
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("bridge %s %s: %v", e.Op, e.AppID, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
