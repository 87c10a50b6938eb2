package restage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/bridge/bridgetest"
	"github.com/restage/restage/internal/workspace"
)

func fakeApps() *bridgetest.Fake {
	win := []workspace.WindowGeometry{{X: 0, Y: 0, Width: 1280, Height: 800}}
	return bridgetest.New(
		&bridgetest.App{Handle: bridge.ProcessHandle{AppID: "Safari", Name: "Safari"}, Running: true,
			Windows: win,
			Payload: &workspace.TabSetPayload{Windows: []workspace.TabWindow{
				{Tabs: []workspace.Tab{{URL: "https://a.example"}}},
			}}},
		&bridgetest.App{Handle: bridge.ProcessHandle{AppID: "Terminal", Name: "Terminal"}, Running: true,
			Windows: win},
	)
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(Options{
		Bridge:       fakeApps(),
		Store:        st,
		ReadyInitial: time.Millisecond,
		ReadyMax:     4 * time.Millisecond,
		ReadyBudget:  50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEngineFacadeLifecycle(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	report, err := e.CaptureWorkspace(ctx, "work")
	if err != nil {
		t.Fatal(err)
	}
	if report.Workspace != "work" || report.Partial() {
		t.Fatalf("report = %+v", report)
	}

	names, err := e.ListWorkspaces(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "work" {
		t.Fatalf("names = %v", names)
	}

	snap, err := e.GetWorkspace(ctx, "work")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}

	if _, err := e.RestoreWorkspace(ctx, "work"); err != nil {
		t.Fatal(err)
	}

	if err := e.DeleteWorkspace(ctx, "work"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.GetWorkspace(ctx, "work"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNewRequiresBridgeAndStore(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("missing bridge must be rejected")
	}
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = st.Close() }()
	if _, err := New(Options{Store: st}); err == nil {
		t.Fatal("missing bridge must be rejected")
	}
	if _, err := New(Options{Bridge: fakeApps()}); err == nil {
		t.Fatal("missing store must be rejected")
	}
}

func TestNewStoreSelectsBackend(t *testing.T) {
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = st.Close()
	if _, err := NewStore(""); err == nil {
		t.Fatal("empty DSN must be rejected")
	}
}

func TestDefaultWorkspacesDir(t *testing.T) {
	dir := DefaultWorkspacesDir()
	if dir == "" {
		t.Fatal("empty default workspaces dir")
	}
}
