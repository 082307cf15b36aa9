// Package mapsurface defines the capability interface the engine needs from
// a host map, plus an in-memory implementation used by the demo binary and
// the marker/focus tests.
//
// The surface works in Web Mercator (EPSG:3857); callers project WGS84
// entity coordinates with geomath.WebMercator before talking to it.
package mapsurface

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrUnavailable is returned by surface-backed operations when the host map
// never initialized. Callers short-circuit to no-ops on it.
var ErrUnavailable = errors.New("map surface unavailable")

// MarkerID identifies one visual marker on the surface.
type MarkerID uint64

// Icon describes a marker's visual styling.
type Icon struct {
	// Kind names the icon asset, e.g. "pin-open", "pin-closed",
	// "pin-highlight", "pin-temp".
	Kind string
	// Scale is the render size multiplier; highlighted markers use a larger
	// scale.
	Scale float64
}

// Animation is a transient marker effect.
type Animation string

const (
	// AnimationNone clears any running effect.
	AnimationNone Animation = ""
	// AnimationBounce is the highlight attention effect.
	AnimationBounce Animation = "bounce"
)

// MarkerOptions configures marker creation.
type MarkerOptions struct {
	Position geom.XY
	Title    string
	Icon     Icon
	// OnSelect fires when the user clicks the marker.
	OnSelect func()
}

// Surface is the host map capability object.
type Surface interface {
	AddMarker(opts MarkerOptions) (MarkerID, error)
	RemoveMarker(id MarkerID) error
	SetMarkerIcon(id MarkerID, icon Icon) error
	SetMarkerAnimation(id MarkerID, anim Animation) error
	// MarkerVisible reports whether the marker is currently attached and
	// rendered. The watchdog compares this against the registry.
	MarkerVisible(id MarkerID) bool

	PanTo(p geom.XY) error
	SetZoom(zoom float64) error
	Center() (geom.XY, error)
	Zoom() (float64, error)
	// ViewportWidthPx feeds the device-class zoom heuristics.
	ViewportWidthPx() int

	// OpenOverlay anchors the single informational overlay to a marker,
	// replacing any overlay already open. CloseOverlay is a no-op when none
	// is open.
	OpenOverlay(id MarkerID, content string) error
	CloseOverlay() error
}
