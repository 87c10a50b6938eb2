package workspace

import (
	"errors"
	"fmt"
	"time"
)

// Capability identifies which semantic payload variant an AppState carries.
type Capability string

const (
	CapabilityNone      Capability = "none"
	CapabilityTabs      Capability = "tabs"
	CapabilityDocuments Capability = "documents"
	CapabilityLayout    Capability = "layout"
)

// WindowGeometry is a window frame in screen-space coordinates.
// ScreenID is optional; empty means the main display.
type WindowGeometry struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ScreenID string `json:"screen_id,omitempty"`
}

func (g WindowGeometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("window geometry %dx%d: width and height must be positive", g.Width, g.Height)
	}
	return nil
}

// AppState is the captured state of one application: identity, window
// geometry and an optional capability payload. Geometry is the front
// window; Windows holds every window in front-to-back order, so
// Geometry equals Windows[0] whenever both are present.
type AppState struct {
	AppID       string           `json:"app_id"`
	DisplayName string           `json:"display_name"`
	Geometry    *WindowGeometry  `json:"geometry,omitempty"`
	Windows     []WindowGeometry `json:"windows,omitempty"`
	Capability  Capability       `json:"capability"`

	// Exactly one of the following is set, matching Capability.
	Tabs      *TabSetPayload      `json:"tabs,omitempty"`
	Documents *DocumentSetPayload `json:"documents,omitempty"`
	Layout    *LayoutPayload      `json:"layout,omitempty"`
}

// Payload returns the semantic payload matching the capability tag,
// or nil when Capability is none.
func (a *AppState) Payload() Payload {
	switch a.Capability {
	case CapabilityTabs:
		if a.Tabs != nil {
			return a.Tabs
		}
	case CapabilityDocuments:
		if a.Documents != nil {
			return a.Documents
		}
	case CapabilityLayout:
		if a.Layout != nil {
			return a.Layout
		}
	}
	return nil
}

// SetPayload stores p and updates the capability tag to match.
// A nil payload clears all variants and tags the state as none.
func (a *AppState) SetPayload(p Payload) {
	a.Tabs, a.Documents, a.Layout = nil, nil, nil
	if p == nil {
		a.Capability = CapabilityNone
		return
	}
	a.Capability = p.Kind()
	switch v := p.(type) {
	case *TabSetPayload:
		a.Tabs = v
	case *DocumentSetPayload:
		a.Documents = v
	case *LayoutPayload:
		a.Layout = v
	}
}

func (a *AppState) Validate() error {
	if a.AppID == "" {
		return errors.New("app state: app_id required")
	}
	switch a.Capability {
	case "", CapabilityNone:
		if a.Tabs != nil || a.Documents != nil || a.Layout != nil {
			return fmt.Errorf("app state %s: capability none but payload present", a.AppID)
		}
	case CapabilityTabs, CapabilityDocuments, CapabilityLayout:
		if a.Payload() == nil {
			return fmt.Errorf("app state %s: capability %s but payload absent", a.AppID, a.Capability)
		}
	default:
		return fmt.Errorf("app state %s: unknown capability %q", a.AppID, a.Capability)
	}
	if a.Geometry != nil {
		if err := a.Geometry.Validate(); err != nil {
			return fmt.Errorf("app state %s: %w", a.AppID, err)
		}
	}
	for _, w := range a.Windows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("app state %s: %w", a.AppID, err)
		}
	}
	return nil
}

// Snapshot is one named workspace: the ordered set of captured
// application states. Entries keep capture order; restore replays them
// in the same order. Name is immutable once assigned and a save always
// replaces the whole snapshot.
type Snapshot struct {
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	Entries   []AppState `json:"entries"`
}

func (s *Snapshot) Validate() error {
	if s.Name == "" {
		return errors.New("snapshot: name required")
	}
	for i := range s.Entries {
		if err := s.Entries[i].Validate(); err != nil {
			return fmt.Errorf("snapshot %s entry %d: %w", s.Name, i, err)
		}
	}
	return nil
}
