// Package restore implements the restore coordinator: for each stored
// entry it launches the application if needed, waits for interactive
// readiness with bounded exponential backoff, then hands the entry to
// its adapter. Entries fail independently; the report keeps snapshot
// order regardless of completion order.
package restore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/restage/restage/internal/adapter"
	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/metrics"
	"github.com/restage/restage/internal/workspace"
)

const (
	DefaultConcurrency  = 4
	DefaultReadyInitial = 500 * time.Millisecond
	DefaultReadyMax     = 4 * time.Second
	DefaultReadyBudget  = 12 * time.Second
)

// Coordinator restores snapshots.
type Coordinator struct {
	Bridge      bridge.Bridge
	Registry    *adapter.Registry
	Concurrency int
	Logger      *slog.Logger

	// Readiness wait tuning: poll starts at ReadyInitial, doubles up to
	// ReadyMax, gives up after ReadyBudget per application.
	ReadyInitial time.Duration
	ReadyMax     time.Duration
	ReadyBudget  time.Duration
}

func New(br bridge.Bridge, reg *adapter.Registry) *Coordinator {
	return &Coordinator{
		Bridge:       br,
		Registry:     reg,
		Concurrency:  DefaultConcurrency,
		Logger:       slog.Default(),
		ReadyInitial: DefaultReadyInitial,
		ReadyMax:     DefaultReadyMax,
		ReadyBudget:  DefaultReadyBudget,
	}
}

// Restore replays snap entry by entry. Entries are dispatched in
// stored order and the report is joined by index, so the result order
// always matches the snapshot regardless of completion order. The
// caller's context is the overall deadline: entries still in flight
// when it expires report Failed with a timeout reason.
func (c *Coordinator) Restore(ctx context.Context, snap *workspace.Snapshot) (*workspace.Report, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	started := time.Now()
	results := make([]workspace.Outcome, len(snap.Entries))

	sem := make(chan struct{}, c.concurrency())
	var wg sync.WaitGroup
	for i := range snap.Entries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = c.restoreOne(ctx, snap.Entries[i])
		}(i)
	}
	wg.Wait()

	report := &workspace.Report{Workspace: snap.Name, Took: time.Since(started)}
	for i := range snap.Entries {
		report.Results = append(report.Results, workspace.EntryResult{
			AppID:   snap.Entries[i].AppID,
			Outcome: results[i],
		})
		metrics.ObserveRestoreEntry(string(results[i].Kind))
	}
	return report, nil
}

func (c *Coordinator) restoreOne(ctx context.Context, st workspace.AppState) workspace.Outcome {
	log := c.logger().With("app", st.AppID)

	h, running, err := c.findRunning(ctx, st.AppID)
	if err != nil {
		return workspace.Failed(fmt.Sprintf("enumerate running applications: %v", err))
	}
	if !running {
		h, err = c.Bridge.Launch(ctx, st.AppID)
		if err != nil {
			log.Warn("launch failed", "error", err)
			return workspace.Failed(fmt.Sprintf("launch: %v", err))
		}
	}

	if err := c.waitReady(ctx, h); err != nil {
		log.Warn("application not ready", "error", err)
		return workspace.Failed(fmt.Sprintf("not ready: %v", err))
	}

	// Handles are weak references: re-resolve after the wait so the
	// adapter commands a live process, not a stale handle.
	if fresh, ok, err := c.findRunning(ctx, st.AppID); err == nil && ok {
		h = fresh
	}

	ad := c.Registry.Resolve(st.AppID)
	out := ad.Restore(ctx, c.Bridge, h, st)
	if out.Kind != workspace.OutcomeApplied {
		log.Info("restore degraded", "outcome", out.Kind, "reasons", out.Reasons)
	}
	return out
}

func (c *Coordinator) findRunning(ctx context.Context, appID string) (bridge.ProcessHandle, bool, error) {
	handles, err := c.Bridge.ListRunning(ctx)
	if err != nil {
		return bridge.ProcessHandle{}, false, err
	}
	for _, h := range handles {
		if h.AppID == appID {
			return h, true, nil
		}
	}
	return bridge.ProcessHandle{}, false, nil
}

// waitReady polls IsReady with exponential backoff. Only readiness is
// retried here: it is about process startup latency. Definitive
// adapter failures downstream are never retried.
func (c *Coordinator) waitReady(ctx context.Context, h bridge.ProcessHandle) error {
	budget := c.ReadyBudget
	if budget <= 0 {
		budget = DefaultReadyBudget
	}
	delay := c.ReadyInitial
	if delay <= 0 {
		delay = DefaultReadyInitial
	}
	maxDelay := c.ReadyMax
	if maxDelay <= 0 {
		maxDelay = DefaultReadyMax
	}

	waitStart := time.Now()
	deadline := waitStart.Add(budget)
	defer func() {
		metrics.ObserveReadinessWait(time.Since(waitStart))
	}()

	for {
		ok, err := c.Bridge.IsReady(ctx, h)
		if ok {
			return nil
		}
		if err != nil && errors.Is(err, bridge.ErrPermissionDenied) {
			return err // fatal for this application, no point polling
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: not ready after %s", bridge.ErrTimeout, budget)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", bridge.ErrTimeout, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
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
