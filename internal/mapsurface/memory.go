package mapsurface

import (
	"fmt"
	"sync"

	geom "github.com/peterstace/simplefeatures/geom"
)

// MemorySurface is a fully functional in-memory Surface. The demo binary
// renders against it, and tests use it to observe marker and viewport state.
// Hidden markers and center drift can be injected to simulate host-map
// misbehavior.
type MemorySurface struct {
	mu      sync.Mutex
	nextID  MarkerID
	markers map[MarkerID]*memoryMarker

	center geom.XY
	zoom   float64
	width  int

	overlayOpen   bool
	overlayMarker MarkerID
	overlayBody   string

	// drift is added to the reported center, simulating the host map
	// recentering during zoom changes.
	drift geom.XY

	panCount  int
	zoomCount int
}

type memoryMarker struct {
	opts    MarkerOptions
	visible bool
	anim    Animation
}

// NewMemorySurface creates a surface with a desktop-sized viewport.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{
		nextID:  1,
		markers: make(map[MarkerID]*memoryMarker),
		zoom:    11,
		width:   1280,
	}
}

// AddMarker attaches a new visible marker.
func (s *MemorySurface) AddMarker(opts MarkerOptions) (MarkerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.markers[id] = &memoryMarker{opts: opts, visible: true}
	return id, nil
}

// RemoveMarker detaches a marker. Removing an unknown marker is an error.
func (s *MemorySurface) RemoveMarker(id MarkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[id]; !ok {
		return fmt.Errorf("remove: unknown marker %d", id)
	}
	delete(s.markers, id)
	if s.overlayOpen && s.overlayMarker == id {
		s.overlayOpen = false
	}
	return nil
}

// SetMarkerIcon updates a marker's styling.
func (s *MemorySurface) SetMarkerIcon(id MarkerID, icon Icon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	if !ok {
		return fmt.Errorf("set icon: unknown marker %d", id)
	}
	m.opts.Icon = icon
	return nil
}

// SetMarkerAnimation sets or clears a marker's transient effect.
func (s *MemorySurface) SetMarkerAnimation(id MarkerID, anim Animation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	if !ok {
		return fmt.Errorf("set animation: unknown marker %d", id)
	}
	m.anim = anim
	return nil
}

// MarkerVisible reports attachment state.
func (s *MemorySurface) MarkerVisible(id MarkerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	return ok && m.visible
}

// PanTo recenters the viewport.
func (s *MemorySurface) PanTo(p geom.XY) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = p
	s.panCount++
	return nil
}

// SetZoom changes the zoom level, applying any configured center drift.
func (s *MemorySurface) SetZoom(zoom float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = zoom
	s.zoomCount++
	s.center = geom.XY{X: s.center.X + s.drift.X, Y: s.center.Y + s.drift.Y}
	return nil
}

// Center returns the current viewport center.
func (s *MemorySurface) Center() (geom.XY, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center, nil
}

// Zoom returns the current zoom level.
func (s *MemorySurface) Zoom() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom, nil
}

// ViewportWidthPx returns the configured viewport width.
func (s *MemorySurface) ViewportWidthPx() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// OpenOverlay opens the single overlay on the given marker.
func (s *MemorySurface) OpenOverlay(id MarkerID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[id]; !ok {
		return fmt.Errorf("open overlay: unknown marker %d", id)
	}
	s.overlayOpen = true
	s.overlayMarker = id
	s.overlayBody = content
	return nil
}

// CloseOverlay closes the overlay if one is open.
func (s *MemorySurface) CloseOverlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlayOpen = false
	return nil
}

// Test and demo helpers below.

// SetViewportWidth overrides the viewport width for device-class tests.
func (s *MemorySurface) SetViewportWidth(px int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = px
}

// SetDrift makes every SetZoom shift the reported center by the given
// offset, exercising the centering-verify corrective pan.
func (s *MemorySurface) SetDrift(d geom.XY) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drift = d
}

// HideMarker marks a marker as attached-but-invisible, simulating host-map
// drift for the watchdog.
func (s *MemorySurface) HideMarker(id MarkerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.markers[id]; ok {
		m.visible = false
	}
}

// Click simulates a user clicking a marker.
func (s *MemorySurface) Click(id MarkerID) {
	s.mu.Lock()
	m, ok := s.markers[id]
	var fn func()
	if ok {
		fn = m.opts.OnSelect
	}
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// MarkerCount returns the number of attached markers.
func (s *MemorySurface) MarkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

// MarkerIcon returns a marker's current icon.
func (s *MemorySurface) MarkerIcon(id MarkerID) (Icon, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	if !ok {
		return Icon{}, false
	}
	return m.opts.Icon, true
}

// MarkerAnimation returns a marker's current transient effect.
func (s *MemorySurface) MarkerAnimation(id MarkerID) (Animation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	if !ok {
		return AnimationNone, false
	}
	return m.anim, true
}

// Overlay reports the overlay state: open flag, anchor marker, content.
func (s *MemorySurface) Overlay() (bool, MarkerID, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlayOpen, s.overlayMarker, s.overlayBody
}

// PanCount returns how many pans have been issued.
func (s *MemorySurface) PanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panCount
}

// ZoomCount returns how many zoom changes have been issued.
func (s *MemorySurface) ZoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoomCount
}
