package adapter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/restage/restage/internal/workspace"
)

// Registry resolves an application identifier to its adapter: exact
// matches first, then the longest matching prefix (family) rule, else
// the generic adapter. Resolution is a pure lookup and never fails.
type Registry struct {
	mu       sync.RWMutex
	exact    map[string]Adapter
	prefixes []prefixRule
	generic  Adapter
}

type prefixRule struct {
	prefix  string
	adapter Adapter
}

// NewRegistry returns a registry preloaded with the built-in families.
func NewRegistry() *Registry {
	r := &Registry{
		exact:   make(map[string]Adapter),
		generic: Generic{},
	}
	// Built-in table mirroring the stock application families.
	r.Register("Safari", TabAdapter{})
	r.Register("com.apple.Safari", TabAdapter{})
	r.Register("Microsoft Word", DocumentAdapter{})
	r.RegisterPrefix("com.microsoft.", DocumentAdapter{})
	r.Register("Logos", LayoutAdapter{})
	return r
}

// NewEmptyRegistry returns a registry with only the generic fallback.
func NewEmptyRegistry() *Registry {
	return &Registry{exact: make(map[string]Adapter), generic: Generic{}}
}

// Register binds an exact application identifier to an adapter.
func (r *Registry) Register(appID string, a Adapter) {
	r.mu.Lock()
	r.exact[appID] = a
	r.mu.Unlock()
}

// RegisterPrefix binds an identifier prefix (application family) to an
// adapter. Longer prefixes win over shorter ones.
func (r *Registry) RegisterPrefix(prefix string, a Adapter) {
	r.mu.Lock()
	r.prefixes = append(r.prefixes, prefixRule{prefix: prefix, adapter: a})
	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
	})
	r.mu.Unlock()
}

// RegisterFamily binds an identifier (or prefix when it ends with a
// dot) to a named adapter family from configuration.
func (r *Registry) RegisterFamily(match, family string) error {
	a, err := ForFamily(family)
	if err != nil {
		return err
	}
	if strings.HasSuffix(match, ".") {
		r.RegisterPrefix(match, a)
	} else {
		r.Register(match, a)
	}
	return nil
}

// Resolve returns the adapter for appID. It always returns a valid
// adapter, falling back to the generic one.
func (r *Registry) Resolve(appID string) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.exact[appID]; ok {
		return a
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(appID, p.prefix) {
			return p.adapter
		}
	}
	return r.generic
}

// ForFamily maps a configuration family name to its adapter variant.
func ForFamily(family string) (Adapter, error) {
	switch workspace.Capability(strings.ToLower(strings.TrimSpace(family))) {
	case workspace.CapabilityTabs:
		return TabAdapter{}, nil
	case workspace.CapabilityDocuments:
		return DocumentAdapter{}, nil
	case workspace.CapabilityLayout:
		return LayoutAdapter{}, nil
	case workspace.CapabilityNone, "generic", "":
		return Generic{}, nil
	}
	return nil, fmt.Errorf("unknown adapter family %q", family)
}
