package adapter

import (
	"context"
	"fmt"

	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/workspace"
)

// LayoutAdapter handles applications whose state is a named layout
// selection (Logos-like): geometry plus the active layout name.
type LayoutAdapter struct{}

func (LayoutAdapter) Capability() workspace.Capability { return workspace.CapabilityLayout }

func (LayoutAdapter) Capture(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle) (workspace.AppState, workspace.Outcome) {
	geoms, geomReason := captureWindows(ctx, br, h)
	st := baseState(h, geoms)

	var reasons []string
	if geomReason != "" {
		reasons = append(reasons, geomReason)
	}
	p, err := br.QueryCapability(ctx, h, workspace.CapabilityLayout)
	switch {
	case err == nil:
		if l, ok := p.(*workspace.LayoutPayload); ok && l.LayoutName != "" {
			if l.Geometry.Validate() != nil && st.Geometry != nil {
				l.Geometry = *st.Geometry
			}
			st.SetPayload(l)
		}
	case isSoft(err):
		reasons = append(reasons, fmt.Sprintf("layout unsupported, geometry only: %v", err))
	default:
		reasons = append(reasons, fmt.Sprintf("query layout: %v", err))
	}

	if len(reasons) == 0 {
		return st, workspace.Applied()
	}
	if st.Geometry != nil || st.Payload() != nil {
		return st, workspace.PartiallyApplied(reasons...)
	}
	return st, workspace.Outcome{Kind: workspace.OutcomeFailed, Reasons: reasons}
}

func (LayoutAdapter) Restore(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle, st workspace.AppState) workspace.Outcome {
	applied := 0
	var reasons []string
	if st.Layout != nil {
		if err := br.ApplyCapability(ctx, h, st.Layout); err != nil {
			if isSoft(err) {
				reasons = append(reasons, fmt.Sprintf("layout unsupported, geometry only: %v", err))
			} else {
				reasons = append(reasons, fmt.Sprintf("select layout: %v", err))
			}
		} else {
			applied++
		}
	}
	gApplied, gReasons := restoreGeometry(ctx, br, h, st)
	applied += gApplied
	reasons = append(reasons, gReasons...)

	if len(reasons) == 0 {
		return workspace.Applied()
	}
	return outcomeFor(applied, reasons)
}

var _ Adapter = LayoutAdapter{}
