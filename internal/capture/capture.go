// Package capture implements the capture coordinator: it enumerates
// running applications, fans capture work out to their adapters and
// joins the results into a single snapshot in enumeration order.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/restage/restage/internal/adapter"
	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/metrics"
	"github.com/restage/restage/internal/workspace"
)

const DefaultConcurrency = 4

// Coordinator captures workspaces. Per-application bridge calls run on
// a bounded worker pool; everything else is cheap bookkeeping.
type Coordinator struct {
	Bridge      bridge.Bridge
	Registry    *adapter.Registry
	Concurrency int
	Logger      *slog.Logger
}

func New(br bridge.Bridge, reg *adapter.Registry) *Coordinator {
	return &Coordinator{
		Bridge:      br,
		Registry:    reg,
		Concurrency: DefaultConcurrency,
		Logger:      slog.Default(),
	}
}

// Capture enumerates running applications and builds a snapshot named
// name. A single adapter's failure is recorded as a zero-information
// entry and never aborts the remaining applications. Each invocation
// produces an independent snapshot with a fresh creation time.
func (c *Coordinator) Capture(ctx context.Context, name string) (*workspace.Snapshot, *workspace.Report, error) {
	started := time.Now()
	handles, err := c.Bridge.ListRunning(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("enumerate running applications: %w", err)
	}

	entries := make([]workspace.AppState, len(handles))
	outcomes := make([]workspace.Outcome, len(handles))

	sem := make(chan struct{}, c.concurrency())
	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, h bridge.ProcessHandle) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			entries[i], outcomes[i] = c.captureOne(ctx, h)
		}(i, h)
	}
	wg.Wait()

	snap := &workspace.Snapshot{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Entries:   entries,
	}
	report := &workspace.Report{Workspace: name, Took: time.Since(started)}
	for i, h := range handles {
		report.Results = append(report.Results, workspace.EntryResult{AppID: h.AppID, Outcome: outcomes[i]})
		metrics.ObserveCaptureEntry(string(outcomes[i].Kind))
	}
	return snap, report, nil
}

func (c *Coordinator) captureOne(ctx context.Context, h bridge.ProcessHandle) (workspace.AppState, workspace.Outcome) {
	ad := c.Registry.Resolve(h.AppID)
	st, out := ad.Capture(ctx, c.Bridge, h)
	if out.Kind == workspace.OutcomeFailed {
		// Zero-information entry: identity survives, geometry and
		// payload are absent, the reason lands in the report and log.
		st = workspace.AppState{
			AppID:       h.AppID,
			DisplayName: h.Name,
			Capability:  workspace.CapabilityNone,
		}
		c.logger().Warn("capture failed", "app", h.AppID, "reasons", out.Reasons)
	} else if out.Kind == workspace.OutcomePartiallyApplied {
		c.logger().Info("partial capture", "app", h.AppID, "reasons", out.Reasons)
	}
	return st, out
}

func (c *Coordinator) concurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return DefaultConcurrency
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
