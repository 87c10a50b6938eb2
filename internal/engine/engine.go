// Package engine ties the coordinators, the snapshot store and the
// adapter registry into the front-end surface: capture, restore, list,
// delete. It owns the per-workspace-name locks.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/restage/restage/internal/adapter"
	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/capture"
	"github.com/restage/restage/internal/history"
	"github.com/restage/restage/internal/metrics"
	"github.com/restage/restage/internal/restore"
	"github.com/restage/restage/internal/store"
	"github.com/restage/restage/internal/workspace"
)

// ErrBusy is returned when another capture or restore is already
// running against the same workspace name.
var ErrBusy = errors.New("workspace operation already in progress")

const DefaultOverallTimeout = 2 * time.Minute

// Options configures a new Engine. Bridge, Registry and Store are
// required; the rest defaults.
type Options struct {
	Bridge   bridge.Bridge
	Registry *adapter.Registry
	Store    store.Store
	Logger   *slog.Logger

	CaptureConcurrency int
	RestoreConcurrency int
	ReadyInitial       time.Duration
	ReadyMax           time.Duration
	ReadyBudget        time.Duration
	// OverallTimeout bounds one whole restore operation.
	OverallTimeout time.Duration
}

// Engine is the workspace capture/restore orchestrator.
type Engine struct {
	mu        sync.RWMutex
	st        store.Store
	histSinks []history.Sink

	cap     *capture.Coordinator
	res     *restore.Coordinator
	overall time.Duration
	logger  *slog.Logger

	// Per-workspace-name locks, created lazily and reclaimed on
	// release. Only one capture or restore may target a name at a time.
	locks sync.Map // name -> *sync.Mutex
}

func New(opts Options) (*Engine, error) {
	if opts.Bridge == nil {
		return nil, errors.New("engine: bridge required")
	}
	if opts.Store == nil {
		return nil, errors.New("engine: store required")
	}
	reg := opts.Registry
	if reg == nil {
		reg = adapter.NewRegistry()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	// The bridge tolerates one in-flight call per process; serialize so
	// concurrent coordinator work can never violate that.
	br := bridge.Serialize(opts.Bridge)

	capc := capture.New(br, reg)
	capc.Logger = log
	if opts.CaptureConcurrency > 0 {
		capc.Concurrency = opts.CaptureConcurrency
	}
	resc := restore.New(br, reg)
	resc.Logger = log
	if opts.RestoreConcurrency > 0 {
		resc.Concurrency = opts.RestoreConcurrency
	}
	if opts.ReadyInitial > 0 {
		resc.ReadyInitial = opts.ReadyInitial
	}
	if opts.ReadyMax > 0 {
		resc.ReadyMax = opts.ReadyMax
	}
	if opts.ReadyBudget > 0 {
		resc.ReadyBudget = opts.ReadyBudget
	}
	overall := opts.OverallTimeout
	if overall <= 0 {
		overall = DefaultOverallTimeout
	}
	return &Engine{
		st:      opts.Store,
		cap:     capc,
		res:     resc,
		overall: overall,
		logger:  log,
	}, nil
}

// SetHistorySinks configures external sinks receiving operation events.
// Passing no sinks clears the list.
func (e *Engine) SetHistorySinks(sinks ...history.Sink) {
	e.mu.Lock()
	e.histSinks = append([]history.Sink(nil), sinks...)
	e.mu.Unlock()
}

// CaptureWorkspace captures the current workspace under name and
// persists it, replacing any previous snapshot with that name.
func (e *Engine) CaptureWorkspace(ctx context.Context, name string) (*workspace.Report, error) {
	if !store.ValidName(name) {
		return nil, fmt.Errorf("invalid workspace name %q", name)
	}
	unlock, err := e.lockName(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	started := time.Now()
	snap, report, err := e.cap.Capture(ctx, name)
	if err != nil {
		metrics.ObserveCapture("error", time.Since(started))
		e.record(history.EventCapture, name, nil, started, err)
		return nil, err
	}
	// Storage failures abort the whole operation; the snapshot must
	// never be silently lost.
	if err := e.st.Save(ctx, snap); err != nil {
		metrics.ObserveCapture("error", time.Since(started))
		e.record(history.EventCapture, name, report, started, err)
		return report, fmt.Errorf("save workspace %s: %w", name, err)
	}
	metrics.ObserveCapture(resultLabel(report), time.Since(started))
	e.record(history.EventCapture, name, report, started, nil)
	e.logger.Info("workspace captured", "name", name, "entries", len(snap.Entries), "took", report.Took)
	return report, nil
}

// RestoreWorkspace loads the named snapshot and replays it. A missing
// workspace is fatal (store.ErrNotFound); per-entry failures are not.
func (e *Engine) RestoreWorkspace(ctx context.Context, name string) (*workspace.Report, error) {
	if !store.ValidName(name) {
		return nil, fmt.Errorf("invalid workspace name %q", name)
	}
	unlock, err := e.lockName(name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	started := time.Now()
	snap, err := e.st.Load(ctx, name)
	if err != nil {
		metrics.ObserveRestore("error", time.Since(started))
		e.record(history.EventRestore, name, nil, started, err)
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, e.overall)
	defer cancel()
	report, err := e.res.Restore(ctx, snap)
	if err != nil {
		metrics.ObserveRestore("error", time.Since(started))
		e.record(history.EventRestore, name, nil, started, err)
		return nil, err
	}
	metrics.ObserveRestore(resultLabel(report), time.Since(started))
	e.record(history.EventRestore, name, report, started, nil)
	e.logger.Info("workspace restored", "name", name, "entries", len(report.Results), "took", report.Took)
	return report, nil
}

// ListWorkspaces returns stored workspace names, newest first.
func (e *Engine) ListWorkspaces(ctx context.Context) ([]string, error) {
	return e.st.List(ctx)
}

// GetWorkspace returns the stored snapshot for inspection.
func (e *Engine) GetWorkspace(ctx context.Context, name string) (*workspace.Snapshot, error) {
	if !store.ValidName(name) {
		return nil, fmt.Errorf("invalid workspace name %q", name)
	}
	return e.st.Load(ctx, name)
}

// DeleteWorkspace removes the named snapshot.
func (e *Engine) DeleteWorkspace(ctx context.Context, name string) error {
	if !store.ValidName(name) {
		return fmt.Errorf("invalid workspace name %q", name)
	}
	unlock, err := e.lockName(name)
	if err != nil {
		return err
	}
	defer unlock()
	return e.st.Delete(ctx, name)
}

// Close releases the store.
func (e *Engine) Close() error { return e.st.Close() }

// lockName acquires the per-name lock without blocking: a concurrent
// operation on the same name is rejected with ErrBusy. Lock entries
// are reclaimed on release so the registry stays bounded.
func (e *Engine) lockName(name string) (func(), error) {
	for {
		v, _ := e.locks.LoadOrStore(name, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		if !mu.TryLock() {
			return nil, fmt.Errorf("%w: %s", ErrBusy, name)
		}
		// Make sure the entry was not reclaimed between LoadOrStore and
		// TryLock; retry against the current entry if it was.
		if cur, ok := e.locks.Load(name); !ok || cur != v {
			mu.Unlock()
			continue
		}
		return func() {
			e.locks.Delete(name)
			mu.Unlock()
		}, nil
	}
}

func (e *Engine) record(t history.EventType, name string, report *workspace.Report, started time.Time, opErr error) {
	e.mu.RLock()
	sinks := append([]history.Sink(nil), e.histSinks...)
	e.mu.RUnlock()
	if len(sinks) == 0 {
		return
	}
	evt := history.Event{
		Type:       t,
		Workspace:  name,
		OccurredAt: time.Now().UTC(),
		Took:       time.Since(started),
	}
	if report != nil {
		evt.Applied, evt.Partial, evt.Failed = report.Counts()
	}
	if opErr != nil {
		evt.Error = opErr.Error()
	}
	for _, s := range sinks {
		if err := s.Send(context.Background(), evt); err != nil {
			e.logger.Warn("history sink send failed", "error", err)
		}
	}
}

func resultLabel(r *workspace.Report) string {
	switch {
	case len(r.Results) == 0:
		return "empty"
	case !r.Partial():
		return "success"
	case r.Succeeded():
		return "partial"
	default:
		return "failed"
	}
}
