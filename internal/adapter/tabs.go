package adapter

import (
	"context"
	"fmt"

	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/workspace"
)

// TabAdapter handles Safari-like tab-bearing applications: geometry
// plus the per-window tab set.
type TabAdapter struct{}

func (TabAdapter) Capability() workspace.Capability { return workspace.CapabilityTabs }

func (TabAdapter) Capture(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle) (workspace.AppState, workspace.Outcome) {
	geoms, geomReason := captureWindows(ctx, br, h)
	st := baseState(h, geoms)

	var reasons []string
	if geomReason != "" {
		reasons = append(reasons, geomReason)
	}
	p, err := br.QueryCapability(ctx, h, workspace.CapabilityTabs)
	switch {
	case err == nil:
		if tabs, ok := p.(*workspace.TabSetPayload); ok && len(tabs.Windows) > 0 {
			st.SetPayload(tabs)
		}
	case isSoft(err):
		reasons = append(reasons, fmt.Sprintf("tabs unsupported, geometry only: %v", err))
	default:
		reasons = append(reasons, fmt.Sprintf("query tabs: %v", err))
	}

	if len(reasons) == 0 {
		return st, workspace.Applied()
	}
	if st.Geometry != nil || st.Payload() != nil {
		return st, workspace.PartiallyApplied(reasons...)
	}
	return st, workspace.Outcome{Kind: workspace.OutcomeFailed, Reasons: reasons}
}

func (TabAdapter) Restore(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle, st workspace.AppState) workspace.Outcome {
	applied := 0
	var reasons []string
	if st.Tabs != nil {
		if err := br.ApplyCapability(ctx, h, st.Tabs); err != nil {
			if isSoft(err) {
				reasons = append(reasons, fmt.Sprintf("tabs unsupported, geometry only: %v", err))
			} else {
				reasons = append(reasons, fmt.Sprintf("reopen tabs: %v", err))
			}
		} else {
			applied++
		}
	}
	// Geometry after tabs so freshly created windows get positioned too.
	gApplied, gReasons := restoreGeometry(ctx, br, h, st)
	applied += gApplied
	reasons = append(reasons, gReasons...)

	if len(reasons) == 0 {
		return workspace.Applied()
	}
	return outcomeFor(applied, reasons)
}

var _ Adapter = TabAdapter{}
