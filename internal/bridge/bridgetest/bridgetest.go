// Package bridgetest provides a scriptable in-memory Bridge for tests.
package bridgetest

import (
	"context"
	"sync"

	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/workspace"
)

// App is the simulated state of one application the fake knows about.
type App struct {
	Handle  bridge.ProcessHandle
	Running bool
	// ReadyAfter is how many IsReady polls return false before true.
	// Negative means never ready.
	ReadyAfter int
	Windows    []workspace.WindowGeometry
	Payload    workspace.Payload

	// Per-operation error injection.
	WindowsErr    error
	CapabilityErr error
	GeometryErr   error
	ApplyErr      error
	LaunchErr     error
}

// Call records one bridge invocation for order assertions.
type Call struct {
	Op    string
	AppID string
}

// Fake is a Bridge whose behavior is driven by the Apps table. It is
// safe for concurrent use and records every call.
type Fake struct {
	mu    sync.Mutex
	apps  map[string]*App
	order []string // enumeration order for ListRunning
	calls []Call

	readyPolls map[string]int
	inflight   map[string]int
	maxPerApp  map[string]int
}

func New(apps ...*App) *Fake {
	f := &Fake{
		apps:       make(map[string]*App),
		readyPolls: make(map[string]int),
		inflight:   make(map[string]int),
		maxPerApp:  make(map[string]int),
	}
	for _, a := range apps {
		f.apps[a.Handle.AppID] = a
		f.order = append(f.order, a.Handle.AppID)
	}
	return f
}

func (f *Fake) App(appID string) *App {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apps[appID]
}

// Calls returns a copy of the recorded call sequence.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsFor returns the recorded operations against one application.
func (f *Fake) CallsFor(appID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ops []string
	for _, c := range f.calls {
		if c.AppID == appID {
			ops = append(ops, c.Op)
		}
	}
	return ops
}

// MaxInFlight returns the highest number of concurrent calls observed
// against the given application.
func (f *Fake) MaxInFlight(appID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxPerApp[appID]
}

func (f *Fake) record(op, appID string) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Op: op, AppID: appID})
	f.inflight[appID]++
	if f.inflight[appID] > f.maxPerApp[appID] {
		f.maxPerApp[appID] = f.inflight[appID]
	}
	f.mu.Unlock()
}

func (f *Fake) done(appID string) {
	f.mu.Lock()
	f.inflight[appID]--
	f.mu.Unlock()
}

func (f *Fake) ListRunning(_ context.Context) ([]bridge.ProcessHandle, error) {
	f.record("list", "")
	defer f.done("")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bridge.ProcessHandle
	for _, id := range f.order {
		if a := f.apps[id]; a.Running {
			out = append(out, a.Handle)
		}
	}
	return out, nil
}

func (f *Fake) Launch(_ context.Context, appID string) (bridge.ProcessHandle, error) {
	f.record("launch", appID)
	defer f.done(appID)
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.apps[appID]
	if a == nil {
		return bridge.ProcessHandle{}, bridge.ErrProcessNotFound
	}
	if a.LaunchErr != nil {
		return bridge.ProcessHandle{}, a.LaunchErr
	}
	a.Running = true
	return a.Handle, nil
}

func (f *Fake) IsReady(_ context.Context, h bridge.ProcessHandle) (bool, error) {
	f.record("is_ready", h.AppID)
	defer f.done(h.AppID)
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.apps[h.AppID]
	if a == nil || !a.Running {
		return false, bridge.ErrProcessNotFound
	}
	if a.ReadyAfter < 0 {
		return false, nil
	}
	f.readyPolls[h.AppID]++
	return f.readyPolls[h.AppID] > a.ReadyAfter, nil
}

func (f *Fake) QueryWindows(_ context.Context, h bridge.ProcessHandle) ([]workspace.WindowGeometry, error) {
	f.record("query_windows", h.AppID)
	defer f.done(h.AppID)
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.apps[h.AppID]
	if a == nil || !a.Running {
		return nil, bridge.ErrProcessNotFound
	}
	if a.WindowsErr != nil {
		return nil, a.WindowsErr
	}
	return append([]workspace.WindowGeometry(nil), a.Windows...), nil
}

func (f *Fake) QueryCapability(_ context.Context, h bridge.ProcessHandle, kind workspace.Capability) (workspace.Payload, error) {
	f.record("query_capability", h.AppID)
	defer f.done(h.AppID)
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.apps[h.AppID]
	if a == nil || !a.Running {
		return nil, bridge.ErrProcessNotFound
	}
	if a.CapabilityErr != nil {
		return nil, a.CapabilityErr
	}
	if a.Payload == nil || a.Payload.Kind() != kind {
		return nil, bridge.ErrUnsupported
	}
	return a.Payload, nil
}

func (f *Fake) ApplyGeometry(_ context.Context, h bridge.ProcessHandle, win int, g workspace.WindowGeometry) error {
	f.record("apply_geometry", h.AppID)
	defer f.done(h.AppID)
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.apps[h.AppID]
	if a == nil || !a.Running {
		return bridge.ErrProcessNotFound
	}
	if a.GeometryErr != nil {
		return a.GeometryErr
	}
	for win > len(a.Windows) {
		a.Windows = append(a.Windows, workspace.WindowGeometry{Width: 1, Height: 1})
	}
	a.Windows[win-1] = g
	return nil
}

func (f *Fake) ApplyCapability(_ context.Context, h bridge.ProcessHandle, p workspace.Payload) error {
	f.record("apply_capability", h.AppID)
	defer f.done(h.AppID)
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.apps[h.AppID]
	if a == nil || !a.Running {
		return bridge.ErrProcessNotFound
	}
	if a.ApplyErr != nil {
		return a.ApplyErr
	}
	a.Payload = p
	return nil
}

var _ bridge.Bridge = (*Fake)(nil)
