package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/restage/restage/internal/bridge"
	"github.com/restage/restage/internal/bridge/bridgetest"
	"github.com/restage/restage/internal/engine"
	fstore "github.com/restage/restage/internal/store/file"
	"github.com/restage/restage/internal/workspace"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	win := []workspace.WindowGeometry{{X: 0, Y: 0, Width: 1280, Height: 800}}
	fake := bridgetest.New(
		&bridgetest.App{Handle: bridge.ProcessHandle{AppID: "Safari", Name: "Safari"}, Running: true,
			Windows: win,
			Payload: &workspace.TabSetPayload{Windows: []workspace.TabWindow{
				{Tabs: []workspace.Tab{{URL: "https://a.example"}}},
			}}},
		&bridgetest.App{Handle: bridge.ProcessHandle{AppID: "Terminal", Name: "Terminal"}, Running: true,
			Windows: win},
	)
	st, err := fstore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	eng, err := engine.New(engine.Options{
		Bridge:       fake,
		Store:        st,
		ReadyInitial: time.Millisecond,
		ReadyMax:     4 * time.Millisecond,
		ReadyBudget:  50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = eng.Close() })

	srv := httptest.NewServer(NewRouter(eng, "/api").Handler())
	t.Cleanup(srv.Close)
	return srv
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestCaptureRestoreEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/capture?name=work", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("capture status = %d", resp.StatusCode)
	}
	report := decode[workspace.Report](t, resp)
	if report.Workspace != "work" || len(report.Results) != 2 {
		t.Fatalf("report = %+v", report)
	}

	resp, err = http.Post(srv.URL+"/api/restore?name=work", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restore status = %d", resp.StatusCode)
	}
	report = decode[workspace.Report](t, resp)
	for _, r := range report.Results {
		if r.Outcome.Kind != workspace.OutcomeApplied {
			t.Fatalf("entry %s = %+v", r.AppID, r.Outcome)
		}
	}
}

func TestWorkspaceCRUDEndpoints(t *testing.T) {
	srv := newTestServer(t)

	if resp, err := http.Post(srv.URL+"/api/capture?name=work", "", nil); err != nil {
		t.Fatal(err)
	} else {
		_ = resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/workspaces")
	if err != nil {
		t.Fatal(err)
	}
	list := decode[map[string][]string](t, resp)
	if names := list["workspaces"]; len(names) != 1 || names[0] != "work" {
		t.Fatalf("workspaces = %v", list)
	}

	resp, err = http.Get(srv.URL + "/api/workspaces/work")
	if err != nil {
		t.Fatal(err)
	}
	snap := decode[workspace.Snapshot](t, resp)
	if snap.Name != "work" || len(snap.Entries) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/workspaces/work", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/workspaces/work")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status after delete = %d", resp.StatusCode)
	}
}

func TestRestoreMissingIs404(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/restore?name=nope", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	body := decode[map[string]string](t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["error"] == "" {
		t.Fatal("error body missing")
	}
}

func TestInvalidNameIs400(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{
		"/api/capture?name=..",
		"/api/capture",
		"/api/restore?name=a%2Fb",
	} {
		resp, err := http.Post(srv.URL+path, "", nil)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s status = %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func TestSanitizeBase(t *testing.T) {
	for in, want := range map[string]string{
		"":      "",
		"/api":  "/api",
		"api":   "/api",
		"/api/": "/api",
		" /v1 ": "/v1",
	} {
		if got := sanitizeBase(in); got != want {
			t.Fatalf("sanitizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}
