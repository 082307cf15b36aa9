// Package location abstracts the source of the user's coordinate.
package location

import (
	"sync"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/channel"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

// PermissionStatus is the tri-state outcome of a location permission check.
type PermissionStatus int

const (
	// PermissionUnknown means no determination has been made yet.
	PermissionUnknown PermissionStatus = iota
	// PermissionGranted means a usable coordinate is available.
	PermissionGranted
	// PermissionDenied means the user refused or the platform blocked access.
	PermissionDenied
)

func (p PermissionStatus) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Provider exposes the current user coordinate and pushes updates.
type Provider interface {
	// Current returns the latest known coordinate, or nil when none exists.
	Current() *core.UserCoordinate
	// Permission reports the current permission state.
	Permission() PermissionStatus
	// Updates delivers coordinate changes. Slow consumers miss updates
	// rather than blocking the producer.
	Updates() channel.Receiver[core.UserCoordinate]
	// Close releases the update stream.
	Close()
}

// Static is a Provider fed by explicit Set calls. The demo loop and tests
// drive it; a platform bridge would wrap the same surface.
type Static struct {
	mu         sync.RWMutex
	current    *core.UserCoordinate
	permission PermissionStatus
	updates    channel.Channel[core.UserCoordinate]
	closed     bool
}

// NewStatic creates a provider with no coordinate and unknown permission.
func NewStatic() *Static {
	return &Static{
		permission: PermissionUnknown,
		updates:    channel.New[core.UserCoordinate](16),
	}
}

// Set stores a coordinate, marks permission granted and pushes an update.
func (s *Static) Set(c core.UserCoordinate) {
	s.mu.Lock()
	s.current = &c
	s.permission = PermissionGranted
	closed := s.closed
	s.mu.Unlock()

	if !closed {
		channel.TrySend(s.updates, c)
	}
}

// Deny clears the coordinate and marks permission denied.
func (s *Static) Deny() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.permission = PermissionDenied
}

// Current implements Provider.
func (s *Static) Current() *core.UserCoordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// Permission implements Provider.
func (s *Static) Permission() PermissionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission
}

// Updates implements Provider.
func (s *Static) Updates() channel.Receiver[core.UserCoordinate] {
	return s.updates
}

// Close implements Provider.
func (s *Static) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.updates.Close()
}
