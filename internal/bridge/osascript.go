package bridge

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/restage/restage/internal/workspace"
)

// AppleScript list delimiters used when flattening nested results into a
// single return string. Chosen to be unlikely in URLs and file paths.
const (
	windowSep = "|||"
	itemSep   = ":::"
)

// DefaultExcluded are processes that are never part of a workspace.
var DefaultExcluded = []string{"Finder", "System Events"}

// Osascript is a Bridge backed by the macOS osascript(1) binary. Each
// call runs one AppleScript program against the target process. The
// zero value is not usable; use NewOsascript.
type Osascript struct {
	timeout time.Duration
	exclude map[string]bool

	// run executes a script and returns trimmed stdout. Overridable in
	// tests to avoid spawning osascript.
	run func(ctx context.Context, script string) (string, error)
}

// NewOsascript returns an osascript-backed bridge. timeout bounds each
// individual script invocation; zero means 30s.
func NewOsascript(timeout time.Duration, exclude []string) *Osascript {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if exclude == nil {
		exclude = DefaultExcluded
	}
	ex := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		ex[name] = true
	}
	o := &Osascript{timeout: timeout, exclude: ex}
	o.run = o.execScript
	return o
}

func (o *Osascript) execScript(ctx context.Context, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return "", classifyScriptErr(ctx, string(out), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// classifyScriptErr maps osascript failures onto the bridge taxonomy.
func classifyScriptErr(ctx context.Context, out string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
	low := strings.ToLower(out)
	switch {
	case strings.Contains(low, "not authorized") || strings.Contains(out, "-1743"):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, strings.TrimSpace(out))
	case strings.Contains(low, "isn't running") || strings.Contains(low, "doesn't exist") || strings.Contains(out, "-600"):
		return fmt.Errorf("%w: %s", ErrProcessNotFound, strings.TrimSpace(out))
	case strings.Contains(low, "doesn't understand") || strings.Contains(out, "-1708"):
		return fmt.Errorf("%w: %s", ErrUnsupported, strings.TrimSpace(out))
	}
	return fmt.Errorf("osascript: %v: %s", err, strings.TrimSpace(out))
}

func (o *Osascript) ListRunning(ctx context.Context) ([]ProcessHandle, error) {
	const script = `tell application "System Events"
	set appList to name of every application process whose visible is true
end tell
return appList`
	out, err := o.run(ctx, script)
	if err != nil {
		return nil, &OpError{Op: "list", Err: err}
	}
	var handles []ProcessHandle
	for _, name := range parseAppList(out) {
		if o.exclude[name] {
			continue
		}
		handles = append(handles, ProcessHandle{AppID: name, Name: name})
	}
	return handles, nil
}

func (o *Osascript) Launch(ctx context.Context, appID string) (ProcessHandle, error) {
	script := fmt.Sprintf(`tell application "System Events"
	if not (exists process %q) then
		tell application %q to launch
	end if
end tell
tell application %q to activate`, appID, appID, appID)
	if _, err := o.run(ctx, script); err != nil {
		return ProcessHandle{}, &OpError{Op: "launch", AppID: appID, Err: err}
	}
	return ProcessHandle{AppID: appID, Name: appID}, nil
}

func (o *Osascript) IsReady(ctx context.Context, h ProcessHandle) (bool, error) {
	// A process is interactively ready once System Events can address it
	// and enumerate its windows without error.
	script := fmt.Sprintf(`tell application "System Events"
	if not (exists process %q) then return "absent"
	tell process %q
		try
			count of windows
			return "ready"
		on error
			return "busy"
		end try
	end tell
end tell`, h.Name, h.Name)
	out, err := o.run(ctx, script)
	if err != nil {
		return false, &OpError{Op: "is_ready", AppID: h.AppID, Err: err}
	}
	return out == "ready", nil
}

func (o *Osascript) QueryWindows(ctx context.Context, h ProcessHandle) ([]workspace.WindowGeometry, error) {
	countScript := fmt.Sprintf(`tell application "System Events"
	tell process %q
		try
			return count of windows
		on error
			return 0
		end try
	end tell
end tell`, h.Name)
	out, err := o.run(ctx, countScript)
	if err != nil {
		return nil, &OpError{Op: "query_windows", AppID: h.AppID, Err: err}
	}
	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return nil, &OpError{Op: "query_windows", AppID: h.AppID, Err: fmt.Errorf("bad window count %q", out)}
	}
	var geoms []workspace.WindowGeometry
	for i := 1; i <= count; i++ {
		script := fmt.Sprintf(`tell application "System Events"
	tell process %q
		set pos to position of window %d
		set siz to size of window %d
		return (item 1 of pos as text) & "," & (item 2 of pos as text) & "," & (item 1 of siz as text) & "," & (item 2 of siz as text)
	end tell
end tell`, h.Name, i, i)
		out, err := o.run(ctx, script)
		if err != nil {
			// One bad window does not abort the rest.
			continue
		}
		g, perr := parseGeometry(out)
		if perr != nil {
			continue
		}
		geoms = append(geoms, g)
	}
	return geoms, nil
}

func (o *Osascript) QueryCapability(ctx context.Context, h ProcessHandle, kind workspace.Capability) (workspace.Payload, error) {
	switch kind {
	case workspace.CapabilityTabs:
		return o.queryTabs(ctx, h)
	case workspace.CapabilityDocuments:
		return o.queryDocuments(ctx, h)
	case workspace.CapabilityLayout:
		return o.queryLayout(ctx, h)
	}
	return nil, &OpError{Op: "query_capability", AppID: h.AppID, Err: fmt.Errorf("%w: %s", ErrUnsupported, kind)}
}

func (o *Osascript) queryTabs(ctx context.Context, h ProcessHandle) (workspace.Payload, error) {
	script := fmt.Sprintf(`set tabData to {}
tell application %q
	repeat with w from 1 to count of windows
		set windowTabs to {}
		repeat with t from 1 to count of tabs in window w
			set end of windowTabs to URL of tab t in window w
		end repeat
		set AppleScript's text item delimiters to "%s"
		set end of tabData to windowTabs as string
	end repeat
end tell
set AppleScript's text item delimiters to "%s"
set finalResult to tabData as string
set AppleScript's text item delimiters to ""
return finalResult`, h.Name, itemSep, windowSep)
	out, err := o.run(ctx, script)
	if err != nil {
		return nil, &OpError{Op: "query_tabs", AppID: h.AppID, Err: err}
	}
	return parseTabSet(out), nil
}

func (o *Osascript) queryDocuments(ctx context.Context, h ProcessHandle) (workspace.Payload, error) {
	// Only documents that are saved to disk can be reopened later.
	script := fmt.Sprintf(`tell application %q
	set docList to {}
	repeat with i from 1 to count of documents
		set doc to document i
		if saved of doc is true then
			try
				set end of docList to POSIX path of (full name of doc)
			end try
		end if
	end repeat
	set AppleScript's text item delimiters to "%s"
	set docResult to docList as string
	set AppleScript's text item delimiters to ""
	return docResult
end tell`, h.Name, windowSep)
	out, err := o.run(ctx, script)
	if err != nil {
		return nil, &OpError{Op: "query_documents", AppID: h.AppID, Err: err}
	}
	return parseDocumentSet(out), nil
}

func (o *Osascript) queryLayout(ctx context.Context, h ProcessHandle) (workspace.Payload, error) {
	script := fmt.Sprintf(`tell application "System Events"
	tell process %q
		try
			return name of menu item 1 of menu "Layouts" of menu bar 1
		on error
			return ""
		end try
	end tell
end tell`, h.Name)
	out, err := o.run(ctx, script)
	if err != nil {
		return nil, &OpError{Op: "query_layout", AppID: h.AppID, Err: err}
	}
	if out == "" {
		return nil, &OpError{Op: "query_layout", AppID: h.AppID, Err: fmt.Errorf("%w: no layout menu", ErrUnsupported)}
	}
	geoms, _ := o.QueryWindows(ctx, h)
	p := &workspace.LayoutPayload{LayoutName: out}
	if len(geoms) > 0 {
		p.Geometry = geoms[0]
	}
	return p, nil
}

func (o *Osascript) ApplyGeometry(ctx context.Context, h ProcessHandle, win int, g workspace.WindowGeometry) error {
	if win < 1 {
		win = 1
	}
	// Position first, then size; the small delay lets the window server
	// settle before the resize.
	script := fmt.Sprintf(`tell application "System Events"
	tell process %q
		set targetWindow to window %d
		set position of targetWindow to {%d, %d}
		delay 0.1
		set size of targetWindow to {%d, %d}
	end tell
end tell`, h.Name, win, g.X, g.Y, g.Width, g.Height)
	if _, err := o.run(ctx, script); err != nil {
		return &OpError{Op: "apply_geometry", AppID: h.AppID, Err: err}
	}
	return nil
}

func (o *Osascript) ApplyCapability(ctx context.Context, h ProcessHandle, p workspace.Payload) error {
	switch v := p.(type) {
	case *workspace.TabSetPayload:
		return o.applyTabs(ctx, h, v)
	case *workspace.DocumentSetPayload:
		return o.applyDocuments(ctx, h, v)
	case *workspace.LayoutPayload:
		return o.applyLayout(ctx, h, v)
	}
	return &OpError{Op: "apply_capability", AppID: h.AppID, Err: ErrUnsupported}
}

func (o *Osascript) applyTabs(ctx context.Context, h ProcessHandle, p *workspace.TabSetPayload) error {
	var firstErr error
	for _, w := range p.Windows {
		if len(w.Tabs) == 0 {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "tell application %q\n", h.Name)
		fmt.Fprintf(&b, "\tmake new document with properties {URL:%q}\n", w.Tabs[0].URL)
		b.WriteString("\tset currentWindow to front window\n")
		for _, t := range w.Tabs[1:] {
			fmt.Fprintf(&b, "\tmake new tab at end of tabs of currentWindow with properties {URL:%q}\n", t.URL)
		}
		b.WriteString("end tell")
		if _, err := o.run(ctx, b.String()); err != nil && firstErr == nil {
			firstErr = &OpError{Op: "apply_tabs", AppID: h.AppID, Err: err}
		}
	}
	return firstErr
}

func (o *Osascript) applyDocuments(ctx context.Context, h ProcessHandle, p *workspace.DocumentSetPayload) error {
	var firstErr error
	for _, d := range p.Documents {
		if d.FilePath == "" {
			continue
		}
		script := fmt.Sprintf(`tell application %q
	activate
	open POSIX file %q
end tell`, h.Name, d.FilePath)
		if _, err := o.run(ctx, script); err != nil && firstErr == nil {
			firstErr = &OpError{Op: "apply_documents", AppID: h.AppID, Err: err}
		}
	}
	return firstErr
}

func (o *Osascript) applyLayout(ctx context.Context, h ProcessHandle, p *workspace.LayoutPayload) error {
	if p.LayoutName == "" {
		return nil
	}
	script := fmt.Sprintf(`tell application "System Events"
	tell process %q
		click menu item %q of menu "Layouts" of menu bar 1
	end tell
end tell`, h.Name, p.LayoutName)
	if _, err := o.run(ctx, script); err != nil {
		return &OpError{Op: "apply_layout", AppID: h.AppID, Err: err}
	}
	return nil
}

// --- result parsing ---

// parseAppList splits an AppleScript list like {Safari, Mail} or the
// comma-joined form osascript prints.
func parseAppList(out string) []string {
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "{")
	out = strings.TrimSuffix(out, "}")
	if out == "" {
		return nil
	}
	parts := strings.Split(out, ", ")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

// parseGeometry parses "x,y,width,height" allowing the stray spaces and
// doubled commas System Events sometimes emits.
func parseGeometry(out string) (workspace.WindowGeometry, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(out), ",,", ",")
	parts := strings.Split(clean, ",")
	coords := make([]int, 0, 4)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return workspace.WindowGeometry{}, fmt.Errorf("bad coordinate %q in %q", p, out)
		}
		coords = append(coords, n)
	}
	if len(coords) != 4 {
		return workspace.WindowGeometry{}, fmt.Errorf("expected 4 coordinates in %q, got %d", out, len(coords))
	}
	g := workspace.WindowGeometry{X: coords[0], Y: coords[1], Width: coords[2], Height: coords[3]}
	if err := g.Validate(); err != nil {
		return workspace.WindowGeometry{}, err
	}
	return g, nil
}

func parseTabSet(out string) *workspace.TabSetPayload {
	p := &workspace.TabSetPayload{}
	for _, windowData := range strings.Split(out, windowSep) {
		if strings.TrimSpace(windowData) == "" {
			continue
		}
		var w workspace.TabWindow
		for _, url := range strings.Split(windowData, itemSep) {
			url = strings.TrimSpace(url)
			if url != "" {
				w.Tabs = append(w.Tabs, workspace.Tab{URL: url})
			}
		}
		if len(w.Tabs) > 0 {
			p.Windows = append(p.Windows, w)
		}
	}
	return p
}

func parseDocumentSet(out string) *workspace.DocumentSetPayload {
	p := &workspace.DocumentSetPayload{}
	for _, path := range strings.Split(out, windowSep) {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		p.Documents = append(p.Documents, workspace.Document{FilePath: path})
	}
	return p
}

var _ Bridge = (*Osascript)(nil)
