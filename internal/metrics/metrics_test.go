package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterIsIdempotent(t *testing.T) {
	r := prometheus.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatal(err)
	}
	// Re-registering on the same registry must tolerate duplicates.
	if err := Register(r); err != nil {
		t.Fatal(err)
	}
	if !Registered() {
		t.Fatal("Registered() = false after Register")
	}
}

func TestObserveHelpers(t *testing.T) {
	r := prometheus.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatal(err)
	}
	ObserveCapture("success", 120*time.Millisecond)
	ObserveRestore("partial", 3*time.Second)
	ObserveCaptureEntry("applied")
	ObserveRestoreEntry("failed")
	ObserveReadinessWait(750 * time.Millisecond)

	mfs, err := r.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := map[string]bool{}
	for _, mf := range mfs {
		found[mf.GetName()] = true
	}
	for _, name := range []string{
		"restage_workspace_captures_total",
		"restage_workspace_restores_total",
		"restage_workspace_capture_entries_total",
		"restage_workspace_restore_entries_total",
		"restage_workspace_capture_duration_seconds",
		"restage_workspace_restore_duration_seconds",
		"restage_workspace_readiness_wait_seconds",
	} {
		if !found[name] {
			t.Errorf("metric %s missing from registry", name)
		}
	}
}
