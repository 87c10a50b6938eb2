package bridge

import (
	"context"
	"sync"

	"github.com/restage/restage/internal/workspace"
)

// Serialized wraps a Bridge so that at most one call is in flight per
// target process. The underlying automation surface is shared state
// with no thread-safety guarantee beyond that, so coordinators fan out
// across applications but never against the same one.
type Serialized struct {
	inner Bridge
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func Serialize(b Bridge) *Serialized {
	return &Serialized{inner: b, locks: make(map[string]*sync.Mutex)}
}

func (s *Serialized) lockFor(appID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.locks[appID]
	if l == nil {
		l = &sync.Mutex{}
		s.locks[appID] = l
	}
	return l
}

func (s *Serialized) ListRunning(ctx context.Context) ([]ProcessHandle, error) {
	return s.inner.ListRunning(ctx)
}

func (s *Serialized) Launch(ctx context.Context, appID string) (ProcessHandle, error) {
	l := s.lockFor(appID)
	l.Lock()
	defer l.Unlock()
	return s.inner.Launch(ctx, appID)
}

func (s *Serialized) IsReady(ctx context.Context, h ProcessHandle) (bool, error) {
	l := s.lockFor(h.AppID)
	l.Lock()
	defer l.Unlock()
	return s.inner.IsReady(ctx, h)
}

func (s *Serialized) QueryWindows(ctx context.Context, h ProcessHandle) ([]workspace.WindowGeometry, error) {
	l := s.lockFor(h.AppID)
	l.Lock()
	defer l.Unlock()
	return s.inner.QueryWindows(ctx, h)
}

func (s *Serialized) QueryCapability(ctx context.Context, h ProcessHandle, kind workspace.Capability) (workspace.Payload, error) {
	l := s.lockFor(h.AppID)
	l.Lock()
	defer l.Unlock()
	return s.inner.QueryCapability(ctx, h, kind)
}

func (s *Serialized) ApplyGeometry(ctx context.Context, h ProcessHandle, win int, g workspace.WindowGeometry) error {
	l := s.lockFor(h.AppID)
	l.Lock()
	defer l.Unlock()
	return s.inner.ApplyGeometry(ctx, h, win, g)
}

func (s *Serialized) ApplyCapability(ctx context.Context, h ProcessHandle, p workspace.Payload) error {
	l := s.lockFor(h.AppID)
	l.Lock()
	defer l.Unlock()
	return s.inner.ApplyCapability(ctx, h, p)
}

var _ Bridge = (*Serialized)(nil)
