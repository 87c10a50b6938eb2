package restage

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/restage/restage/internal/adapter"
	"github.com/restage/restage/internal/bridge"
	cfg "github.com/restage/restage/internal/config"
	ngn "github.com/restage/restage/internal/engine"
	"github.com/restage/restage/internal/history"
	"github.com/restage/restage/internal/metrics"
	iapi "github.com/restage/restage/internal/server"
	"github.com/restage/restage/internal/store"
	"github.com/restage/restage/internal/workspace"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Snapshot = workspace.Snapshot

type AppState = workspace.AppState

type WindowGeometry = workspace.WindowGeometry

type Report = workspace.Report

type Store = store.Store

type HistorySink = history.Sink

type FileConfig = cfg.FileConfig

// Sentinel results of the front-end surface.
var (
	ErrNotFound         = store.ErrNotFound
	ErrBusy             = ngn.ErrBusy
	ErrPermissionDenied = bridge.ErrPermissionDenied
)

// Engine is a thin facade over internal/engine.Engine.
// It provides a stable public API for embedding.
type Engine struct{ inner *ngn.Engine }

// Options mirrors internal engine options with public types.
type Options = ngn.Options

// New builds an engine from explicit options.
func New(opts Options) (*Engine, error) {
	inner, err := ngn.New(opts)
	if err != nil {
		return nil, err
	}
	return &Engine{inner: inner}, nil
}

// NewFromConfig wires an engine from a loaded config file: osascript
// bridge, configured registry, store and history sinks.
func NewFromConfig(fc *cfg.FileConfig) (*Engine, error) {
	reg, err := fc.BuildRegistry()
	if err != nil {
		return nil, err
	}
	dsn := fc.Store.DSN
	if dsn == "" {
		dsn = DefaultWorkspacesDir()
	}
	st, err := NewStore(dsn)
	if err != nil {
		return nil, err
	}
	eng, err := ngn.New(ngn.Options{
		Bridge:             bridge.NewOsascript(fc.Bridge.Timeout, fc.Bridge.Exclude),
		Registry:           reg,
		Store:              st,
		Logger:             fc.LoggerConfig().New(),
		CaptureConcurrency: fc.Capture.Concurrency,
		RestoreConcurrency: fc.Restore.Concurrency,
		ReadyInitial:       fc.Restore.ReadyInitial,
		ReadyMax:           fc.Restore.ReadyMax,
		ReadyBudget:        fc.Restore.ReadyTimeout,
		OverallTimeout:     fc.Restore.OverallTimeout,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	sinks := make([]history.Sink, 0, len(fc.History))
	for _, h := range fc.History {
		s, err := NewHistorySink(h.DSN)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) > 0 {
		eng.SetHistorySinks(sinks...)
	}
	return &Engine{inner: eng}, nil
}

func (e *Engine) CaptureWorkspace(ctx context.Context, name string) (*Report, error) {
	return e.inner.CaptureWorkspace(ctx, name)
}

func (e *Engine) RestoreWorkspace(ctx context.Context, name string) (*Report, error) {
	return e.inner.RestoreWorkspace(ctx, name)
}

func (e *Engine) ListWorkspaces(ctx context.Context) ([]string, error) {
	return e.inner.ListWorkspaces(ctx)
}

func (e *Engine) GetWorkspace(ctx context.Context, name string) (*Snapshot, error) {
	return e.inner.GetWorkspace(ctx, name)
}

func (e *Engine) DeleteWorkspace(ctx context.Context, name string) error {
	return e.inner.DeleteWorkspace(ctx, name)
}

func (e *Engine) SetHistorySinks(sinks ...HistorySink) { e.inner.SetHistorySinks(sinks...) }

func (e *Engine) Close() error { return e.inner.Close() }

// LoadConfig reads a TOML config file.
func LoadConfig(path string) (*cfg.FileConfig, error) { return cfg.LoadConfig(path) }

// NewRegistry returns the built-in adapter registry.
func NewRegistry() *adapter.Registry { return adapter.NewRegistry() }

// NewHTTPServer starts an HTTP server exposing the workspace API using
// the given engine.
func NewHTTPServer(addr, basePath string, e *Engine) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, e.inner)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using
// the default registry. It returns any immediate listen error;
// otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
