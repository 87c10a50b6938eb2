package workspace

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAppStatePayloadRoundTrip(t *testing.T) {
	var st AppState
	st.AppID = "Safari"
	st.SetPayload(&TabSetPayload{Windows: []TabWindow{{Tabs: []Tab{{URL: "https://example.com"}}}}})
	if st.Capability != CapabilityTabs {
		t.Fatalf("capability = %s, want tabs", st.Capability)
	}
	p := st.Payload()
	tabs, ok := p.(*TabSetPayload)
	if !ok || len(tabs.Windows) != 1 {
		t.Fatalf("payload = %#v", p)
	}

	st.SetPayload(&DocumentSetPayload{Documents: []Document{{FilePath: "/tmp/a.docx"}}})
	if st.Capability != CapabilityDocuments {
		t.Fatalf("capability = %s, want documents", st.Capability)
	}
	if st.Tabs != nil {
		t.Fatal("tabs variant must be cleared when payload changes")
	}

	st.SetPayload(nil)
	if st.Capability != CapabilityNone || st.Payload() != nil {
		t.Fatalf("clearing payload: capability=%s payload=%v", st.Capability, st.Payload())
	}
}

func TestAppStateValidateConsistency(t *testing.T) {
	cases := []struct {
		name    string
		st      AppState
		wantErr bool
	}{
		{"none without payload", AppState{AppID: "a", Capability: CapabilityNone}, false},
		{"empty capability", AppState{AppID: "a"}, false},
		{"missing app id", AppState{Capability: CapabilityNone}, true},
		{"tabs without payload", AppState{AppID: "a", Capability: CapabilityTabs}, true},
		{"none with payload", AppState{AppID: "a", Capability: CapabilityNone, Tabs: &TabSetPayload{}}, true},
		{"unknown capability", AppState{AppID: "a", Capability: "windows"}, true},
		{"tabs with payload", AppState{AppID: "a", Capability: CapabilityTabs, Tabs: &TabSetPayload{}}, false},
		{"layout with payload", AppState{AppID: "a", Capability: CapabilityLayout, Layout: &LayoutPayload{LayoutName: "Study"}}, false},
		{"bad geometry", AppState{AppID: "a", Capability: CapabilityNone, Geometry: &WindowGeometry{Width: 0, Height: 100}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.st.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestWindowGeometryValidate(t *testing.T) {
	if err := (WindowGeometry{X: -100, Y: 20, Width: 1280, Height: 720}).Validate(); err != nil {
		t.Fatalf("negative origin must be valid (multi-display): %v", err)
	}
	if err := (WindowGeometry{Width: 0, Height: 720}).Validate(); err == nil {
		t.Fatal("zero width must be rejected")
	}
	if err := (WindowGeometry{Width: 800, Height: -1}).Validate(); err == nil {
		t.Fatal("negative height must be rejected")
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	geo := WindowGeometry{X: 10, Y: 20, Width: 800, Height: 600}
	snap := Snapshot{
		Name:      "work",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Entries: []AppState{
			{
				AppID:       "Safari",
				DisplayName: "Safari",
				Geometry:    &geo,
				Windows:     []WindowGeometry{geo},
				Capability:  CapabilityTabs,
				Tabs: &TabSetPayload{Windows: []TabWindow{
					{Tabs: []Tab{{URL: "https://a.example"}, {URL: "https://b.example"}}},
				}},
			},
			{AppID: "Terminal", DisplayName: "Terminal", Capability: CapabilityNone},
		},
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}

	data, err := json.Marshal(&snap)
	if err != nil {
		t.Fatal(err)
	}
	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Name != snap.Name || !back.CreatedAt.Equal(snap.CreatedAt) {
		t.Fatalf("identity changed: %+v", back)
	}
	if len(back.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(back.Entries))
	}
	if back.Entries[0].Payload() == nil {
		t.Fatal("tab payload lost in round trip")
	}
	got := back.Entries[0].Tabs.Windows[0].Tabs
	if len(got) != 2 || got[0].URL != "https://a.example" {
		t.Fatalf("tabs = %+v", got)
	}
	if back.Entries[1].Payload() != nil {
		t.Fatal("generic entry must have no payload")
	}
}

func TestSnapshotValidatePropagatesEntryErrors(t *testing.T) {
	snap := Snapshot{Name: "w", Entries: []AppState{{AppID: "a", Capability: CapabilityTabs}}}
	if err := snap.Validate(); err == nil {
		t.Fatal("entry inconsistency must fail snapshot validation")
	}
	snap = Snapshot{Entries: nil}
	if err := snap.Validate(); err == nil {
		t.Fatal("empty name must be rejected")
	}
}

func TestReportCountsAndPredicates(t *testing.T) {
	r := Report{Workspace: "w", Results: []EntryResult{
		{AppID: "a", Outcome: Applied()},
		{AppID: "b", Outcome: PartiallyApplied("window 2: boom")},
		{AppID: "c", Outcome: Failed("launch: nope")},
	}}
	applied, partial, failed := r.Counts()
	if applied != 1 || partial != 1 || failed != 1 {
		t.Fatalf("counts = %d/%d/%d", applied, partial, failed)
	}
	if !r.Succeeded() || !r.Partial() {
		t.Fatalf("Succeeded=%v Partial=%v", r.Succeeded(), r.Partial())
	}

	clean := Report{Results: []EntryResult{{Outcome: Applied()}}}
	if clean.Partial() {
		t.Fatal("all-applied report must not be partial")
	}
}
