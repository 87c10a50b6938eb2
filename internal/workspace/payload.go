package workspace

// Payload is a capability-specific semantic payload. Each variant is a
// closed data type tagged with the capability it belongs to, so
// coordinators can pass payloads around without knowing the variant.
type Payload interface {
	Kind() Capability
}

// Tab is one open browser tab.
type Tab struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// TabWindow groups the tabs of one browser window in tab order.
type TabWindow struct {
	Tabs []Tab `json:"tabs"`
}

// TabSetPayload is the open tab set of a tab-bearing application,
// grouped by window index.
type TabSetPayload struct {
	Windows []TabWindow `json:"windows"`
}

func (p *TabSetPayload) Kind() Capability { return CapabilityTabs }

// Document is one open document of an editor application.
type Document struct {
	FilePath string          `json:"file_path"`
	Geometry *WindowGeometry `json:"geometry,omitempty"`
}

// DocumentSetPayload is the ordered set of open documents.
type DocumentSetPayload struct {
	Documents []Document `json:"documents"`
}

func (p *DocumentSetPayload) Kind() Capability { return CapabilityDocuments }

// LayoutPayload names the active layout of a layout-based application.
type LayoutPayload struct {
	LayoutName string         `json:"layout_name"`
	Geometry   WindowGeometry `json:"geometry"`
}

func (p *LayoutPayload) Kind() Capability { return CapabilityLayout }
