package adapter

import (
	"context"

	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/workspace"
)

// Generic handles applications with no registered family: geometry
// only, capability none.
type Generic struct{}

func (Generic) Capability() workspace.Capability { return workspace.CapabilityNone }

func (Generic) Capture(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle) (workspace.AppState, workspace.Outcome) {
	geoms, reason := captureWindows(ctx, br, h)
	st := baseState(h, geoms)
	if reason != "" {
		return st, workspace.Outcome{Kind: workspace.OutcomeFailed, Reasons: []string{reason}}
	}
	return st, workspace.Applied()
}

func (Generic) Restore(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle, st workspace.AppState) workspace.Outcome {
	applied, reasons := restoreGeometry(ctx, br, h, st)
	if len(reasons) == 0 && applied == 0 {
		// Nothing stored and nothing to do still counts as applied.
		return workspace.Applied()
	}
	return outcomeFor(applied, reasons)
}

var _ Adapter = Generic{}
