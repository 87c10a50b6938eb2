package adapter

import (
	"context"
	"fmt"

	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/workspace"
)

// DocumentAdapter handles editor applications that expose their open
// documents: geometry plus the set of saved document paths.
type DocumentAdapter struct{}

func (DocumentAdapter) Capability() workspace.Capability { return workspace.CapabilityDocuments }

func (DocumentAdapter) Capture(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle) (workspace.AppState, workspace.Outcome) {
	geoms, geomReason := captureWindows(ctx, br, h)
	st := baseState(h, geoms)

	var reasons []string
	if geomReason != "" {
		reasons = append(reasons, geomReason)
	}
	p, err := br.QueryCapability(ctx, h, workspace.CapabilityDocuments)
	switch {
	case err == nil:
		if docs, ok := p.(*workspace.DocumentSetPayload); ok && len(docs.Documents) > 0 {
			st.SetPayload(docs)
		}
	case isSoft(err):
		reasons = append(reasons, fmt.Sprintf("documents unsupported, geometry only: %v", err))
	default:
		reasons = append(reasons, fmt.Sprintf("query documents: %v", err))
	}

	if len(reasons) == 0 {
		return st, workspace.Applied()
	}
	if st.Geometry != nil || st.Payload() != nil {
		return st, workspace.PartiallyApplied(reasons...)
	}
	return st, workspace.Outcome{Kind: workspace.OutcomeFailed, Reasons: reasons}
}

func (DocumentAdapter) Restore(ctx context.Context, br bridge.Bridge, h bridge.ProcessHandle, st workspace.AppState) workspace.Outcome {
	applied := 0
	var reasons []string
	if st.Documents != nil {
		if err := br.ApplyCapability(ctx, h, st.Documents); err != nil {
			if isSoft(err) {
				reasons = append(reasons, fmt.Sprintf("documents unsupported, geometry only: %v", err))
			} else {
				reasons = append(reasons, fmt.Sprintf("reopen documents: %v", err))
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

var _ Adapter = DocumentAdapter{}
