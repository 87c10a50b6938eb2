package capture

import (
	"context"
	"strings"
	"testing"

	"github.com/restage/restage/internal/adapter"
	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/bridge/bridgetest"
	"github.com/restage/restage/internal/workspace"
)

func handle(id string) bridge.ProcessHandle {
	return bridge.ProcessHandle{AppID: id, Name: id}
}

func window() []workspace.WindowGeometry {
	return []workspace.WindowGeometry{{X: 0, Y: 0, Width: 1024, Height: 768}}
}

func TestCaptureBuildsSnapshotInEnumerationOrder(t *testing.T) {
	fake := bridgetest.New(
		&bridgetest.App{Handle: handle("Safari"), Running: true, Windows: window(),
			Payload: &workspace.TabSetPayload{Windows: []workspace.TabWindow{
				{Tabs: []workspace.Tab{{URL: "https://a.example"}}},
			}}},
		&bridgetest.App{Handle: handle("Terminal"), Running: true, Windows: window()},
		&bridgetest.App{Handle: handle("Mail"), Running: true, Windows: window()},
	)
	c := New(fake, adapter.NewRegistry())

	snap, report, err := c.Capture(context.Background(), "work")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Name != "work" || snap.CreatedAt.IsZero() {
		t.Fatalf("snapshot identity: %+v", snap)
	}
	want := []string{"Safari", "Terminal", "Mail"}
	if len(snap.Entries) != len(want) {
		t.Fatalf("entries = %d, want %d", len(snap.Entries), len(want))
	}
	for i, id := range want {
		if snap.Entries[i].AppID != id {
			t.Fatalf("entry %d = %s, want %s (enumeration order)", i, snap.Entries[i].AppID, id)
		}
		if report.Results[i].AppID != id {
			t.Fatalf("report %d = %s, want %s", i, report.Results[i].AppID, id)
		}
	}
	if snap.Entries[0].Capability != workspace.CapabilityTabs {
		t.Fatalf("Safari entry = %+v", snap.Entries[0])
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("captured snapshot invalid: %v", err)
	}
	if report.Partial() {
		t.Fatalf("clean capture must not be partial: %+v", report.Results)
	}
}

func TestCaptureIsolatesEntryFailure(t *testing.T) {
	fake := bridgetest.New(
		&bridgetest.App{Handle: handle("Safari"), Running: true, Windows: window(),
			Payload: &workspace.TabSetPayload{Windows: []workspace.TabWindow{
				{Tabs: []workspace.Tab{{URL: "https://a.example"}}},
			}}},
		&bridgetest.App{Handle: handle("Broken"), Running: true,
			WindowsErr: bridge.ErrPermissionDenied},
		&bridgetest.App{Handle: handle("Mail"), Running: true, Windows: window()},
	)
	c := New(fake, adapter.NewRegistry())

	snap, report, err := c.Capture(context.Background(), "work")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Entries) != 3 {
		t.Fatalf("failed entry must not drop from the snapshot: %d entries", len(snap.Entries))
	}

	// The broken app collapses to a zero-information entry.
	broken := snap.Entries[1]
	if broken.AppID != "Broken" {
		t.Fatalf("order broken: %+v", broken)
	}
	if broken.Geometry != nil || len(broken.Windows) != 0 || broken.Payload() != nil {
		t.Fatalf("zero-information entry still carries data: %+v", broken)
	}
	if broken.Capability != workspace.CapabilityNone {
		t.Fatalf("capability = %s", broken.Capability)
	}

	out := report.Results[1].Outcome
	if out.Kind != workspace.OutcomeFailed || len(out.Reasons) == 0 {
		t.Fatalf("outcome = %+v", out)
	}
	if !strings.Contains(out.Reasons[0], "permission denied") {
		t.Fatalf("reason = %q", out.Reasons[0])
	}
	for _, i := range []int{0, 2} {
		if report.Results[i].Outcome.Kind != workspace.OutcomeApplied {
			t.Fatalf("neighbor %d degraded: %+v", i, report.Results[i])
		}
	}
}

func TestCaptureEnumerationFailureAborts(t *testing.T) {
	c := New(listFailBridge{}, adapter.NewRegistry())
	_, _, err := c.Capture(context.Background(), "work")
	if err == nil {
		t.Fatal("enumeration failure must abort the capture")
	}
}

func TestCaptureRepeatedRunsAreIndependent(t *testing.T) {
	fake := bridgetest.New(
		&bridgetest.App{Handle: handle("Terminal"), Running: true, Windows: window()},
	)
	c := New(fake, adapter.NewRegistry())

	first, _, err := c.Capture(context.Background(), "work")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := c.Capture(context.Background(), "work")
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Entries) != len(second.Entries) {
		t.Fatalf("entries differ: %d vs %d", len(first.Entries), len(second.Entries))
	}
	for i := range first.Entries {
		a, b := first.Entries[i], second.Entries[i]
		if a.AppID != b.AppID || a.Capability != b.Capability {
			t.Fatalf("entry %d drifted between runs: %+v vs %+v", i, a, b)
		}
	}
}

func TestCaptureConcurrencyDefaults(t *testing.T) {
	c := &Coordinator{}
	if c.concurrency() != DefaultConcurrency {
		t.Fatalf("concurrency = %d", c.concurrency())
	}
	c.Concurrency = 2
	if c.concurrency() != 2 {
		t.Fatalf("concurrency = %d", c.concurrency())
	}
}

// listFailBridge fails enumeration and nothing else is reachable.
type listFailBridge struct{ bridge.Bridge }

func (listFailBridge) ListRunning(context.Context) ([]bridge.ProcessHandle, error) {
	return nil, bridge.ErrPermissionDenied
}
