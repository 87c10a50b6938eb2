// Package adapter holds the per-application-family capture/restore
// strategies and the registry that resolves an application identifier
// to one of them. Each variant owns only the semantics it understands;
// the coordinators treat all variants uniformly.
package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/workspace"
)

// Adapter captures and restores one application family's state through
// the automation bridge. Implementations must be safe for concurrent
// use across distinct processes.
type Adapter interface {
	// Capability identifies the semantic payload variant this adapter
	// understands; CapabilityNone for the generic adapter.
	Capability() workspace.Capability
	// Capture queries the process and returns its state together with
	// an outcome. Partial bridge data degrades the outcome, it never
	// aborts the capture: missing fields are simply omitted.
	Capture(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle) (workspace.AppState, workspace.Outcome)
	// Restore repositions windows and replays the semantic payload.
	Restore(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle, st workspace.AppState) workspace.Outcome
}

// captureWindows fetches window frames, tolerating failure by omitting
// geometry. It returns the frames plus a reason when the query failed.
func captureWindows(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle) ([]workspace.WindowGeometry, string) {
	geoms, err := br.QueryWindows(ctx, h)
	if err != nil {
		return nil, fmt.Sprintf("query windows: %v", err)
	}
	return geoms, ""
}

// baseState assembles identity and geometry fields shared by all
// variants.
func baseState(h bridge.ProcessHandle, geoms []workspace.WindowGeometry) workspace.AppState {
	st := workspace.AppState{
		AppID:       h.AppID,
		DisplayName: h.Name,
		Capability:  workspace.CapabilityNone,
		Windows:     geoms,
	}
	if len(geoms) > 0 {
		g := geoms[0]
		st.Geometry = &g
	}
	return st
}

// restoreGeometry applies stored window frames to however many windows
// the process actually has now, front window first. It returns the
// reasons for any window that could not be placed.
func restoreGeometry(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle, st workspace.AppState) (applied int, reasons []string) {
	frames := st.Windows
	if len(frames) == 0 && st.Geometry != nil {
		frames = []workspace.WindowGeometry{*st.Geometry}
	}
	if len(frames) == 0 {
		return 0, nil
	}
	current, err := br.QueryWindows(ctx, h)
	if err != nil {
		return 0, []string{fmt.Sprintf("query windows: %v", err)}
	}
	for i, g := range frames {
		if i >= len(current) {
			break // never position windows that do not exist
		}
		if err := br.ApplyGeometry(ctx, h, i+1, g); err != nil {
			reasons = append(reasons, fmt.Sprintf("window %d: %v", i+1, err))
			continue
		}
		applied++
	}
	return applied, reasons
}

// outcomeFor folds step results into a single per-entry outcome.
func outcomeFor(applied int, reasons []string) workspace.Outcome {
	switch {
	case len(reasons) == 0:
		return workspace.Applied()
	case applied > 0:
		return workspace.PartiallyApplied(reasons...)
	default:
		return workspace.Outcome{Kind: workspace.OutcomeFailed, Reasons: reasons}
	}
}

// isSoft reports whether a capability failure downgrades to
// geometry-only handling rather than failing the entry.
func isSoft(err error) bool {
	return errors.Is(err, bridge.ErrUnsupported)
}
