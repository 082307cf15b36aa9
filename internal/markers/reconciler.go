// Package markers maintains the visual marker layer: one marker per center,
// reconciled incrementally against each evaluation pass.
package markers

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/geomath"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/mapsurface"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/queue"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

// ErrInvalidCoordinate is returned when a center's coordinate fails range or
// finiteness validation.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// VisualState is a marker's current styling.
type VisualState int

const (
	// StateNormalOpen styles a center operating today.
	StateNormalOpen VisualState = iota
	// StateNormalClosed styles a center not operating today.
	StateNormalClosed
	// StateHighlighted styles the single active marker.
	StateHighlighted
	// StateTemporary styles a synthesized stand-in marker.
	StateTemporary
)

// Marker associates one center with one visual element. Snapshot is the
// center as of marker creation, kept for display and callbacks.
type Marker struct {
	Snapshot core.Center
	Handle   mapsurface.MarkerID
	State    VisualState
	Position geom.XY
}

// SelectFunc is invoked when the user clicks a marker.
type SelectFunc func(core.Center)

// Reconciler owns the id→marker registry. All mutation goes through it; the
// highlight controller reads the registry but routes visual changes through
// marker state here.
type Reconciler struct {
	mu       sync.RWMutex
	surface  mapsurface.Surface
	logger   *slog.Logger
	onSelect SelectFunc

	registry   map[string]*Marker
	lastTarget []core.Center

	suspended bool
	deferred  *queue.Queue[[]core.Center]

	lastAdded   int
	lastRemoved int
}

// New creates a Reconciler. surface may be nil, in which case every marker
// operation is a no-op and the result list stays usable on its own.
func New(surface mapsurface.Surface, logger *slog.Logger, onSelect SelectFunc) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		surface:  surface,
		logger:   logger,
		onSelect: onSelect,
		registry: make(map[string]*Marker),
		deferred: queue.New[[]core.Center](),
	}
}

// Reconcile applies the minimal add/remove delta between the target list and
// the live registry. Markers for centers present in both survive untouched,
// along with any overlay anchored to them.
//
// While suspended, the pass is deferred; the most recent deferred target is
// applied when Resume is called.
func (r *Reconciler) Reconcile(target []core.Center) error {
	r.mu.Lock()
	if r.suspended {
		r.deferred.Push(target)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	return r.reconcile(target)
}

func (r *Reconciler) reconcile(target []core.Center) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastTarget = target
	if r.surface == nil {
		return nil
	}

	targetByID := make(map[string]core.Center, len(target))
	for _, c := range target {
		targetByID[c.ID] = c
	}

	var toRemove []string
	for id := range r.registry {
		if _, ok := targetByID[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	var toAdd []core.Center
	for _, c := range target {
		if _, ok := r.registry[c.ID]; !ok {
			toAdd = append(toAdd, c)
		}
	}

	r.lastAdded = len(toAdd)
	r.lastRemoved = len(toRemove)

	// Explicit no-op: unchanged markers are never detached and recreated.
	if len(toRemove) == 0 && len(toAdd) == 0 {
		return nil
	}

	for _, id := range toRemove {
		m := r.registry[id]
		if err := r.surface.RemoveMarker(m.Handle); err != nil {
			r.logger.Warn("failed to detach marker", "center", id, "error", err)
		}
		delete(r.registry, id)
	}

	for _, c := range toAdd {
		if err := r.addMarker(c); err != nil {
			if !errors.Is(err, ErrInvalidCoordinate) {
				r.logger.Warn("failed to create marker", "center", c.ID, "error", err)
			}
		}
	}
	return nil
}

// addMarker creates and registers one marker. Caller holds the lock.
func (r *Reconciler) addMarker(c core.Center) error {
	pos, err := resolvePosition(c)
	if err != nil {
		return err
	}

	state := StateNormalClosed
	if c.OpenToday {
		state = StateNormalOpen
	}

	snapshot := c
	id, err := r.surface.AddMarker(mapsurface.MarkerOptions{
		Position: pos,
		Title:    c.Name,
		Icon:     IconFor(state),
		OnSelect: func() {
			if r.onSelect != nil {
				r.onSelect(snapshot)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("add marker for %s: %w", c.ID, err)
	}

	r.registry[c.ID] = &Marker{
		Snapshot: snapshot,
		Handle:   id,
		State:    state,
		Position: pos,
	}
	return nil
}

// ForceRebuild detaches every registered marker and rebuilds from scratch.
// Recovery path only; Reconcile is the default.
func (r *Reconciler) ForceRebuild(target []core.Center) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastTarget = target
	if r.surface == nil {
		return nil
	}

	r.lastRemoved = len(r.registry)
	for id, m := range r.registry {
		if err := r.surface.RemoveMarker(m.Handle); err != nil {
			r.logger.Warn("failed to detach marker during rebuild", "center", id, "error", err)
		}
		delete(r.registry, id)
	}

	for _, c := range target {
		if err := r.addMarker(c); err != nil {
			if !errors.Is(err, ErrInvalidCoordinate) {
				r.logger.Warn("failed to recreate marker", "center", c.ID, "error", err)
			}
		}
	}
	r.lastAdded = len(r.registry)
	return nil
}

// Rebuild re-runs ForceRebuild against the last target list.
func (r *Reconciler) Rebuild() error {
	r.mu.RLock()
	target := r.lastTarget
	r.mu.RUnlock()
	return r.ForceRebuild(target)
}

// Suspend defers reconciliation passes until Resume. Used while a focus
// animation is in flight to avoid visual flicker.
func (r *Reconciler) Suspend() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspended = true
}

// Resume clears the suspend flag and applies the most recent deferred pass,
// if any arrived while suspended.
func (r *Reconciler) Resume() error {
	r.mu.Lock()
	r.suspended = false
	deferred := r.deferred.GetAndEmpty()
	r.mu.Unlock()

	if len(deferred) == 0 {
		return nil
	}
	return r.reconcile(deferred[len(deferred)-1])
}

// Suspended reports the suspend flag.
func (r *Reconciler) Suspended() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.suspended
}

// Get returns the marker registered for a center id.
func (r *Reconciler) Get(id string) (*Marker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.registry[id]
	return m, ok
}

// Lookup falls back to matching the stored snapshots by id, then by name.
// Used by the highlight controller when the primary id lookup misses.
func (r *Reconciler) Lookup(c core.Center) (*Marker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.registry[c.ID]; ok {
		return m, true
	}
	for _, m := range r.registry {
		if m.Snapshot.ID == c.ID || (c.Name != "" && m.Snapshot.Name == c.Name) {
			return m, true
		}
	}
	return nil, false
}

// Adopt registers an externally synthesized marker (the highlight
// controller's temporary stand-in) so future reconciliation passes own it.
func (r *Reconciler) Adopt(m *Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry[m.Snapshot.ID] = m
}

// SetState updates a registered marker's visual state and icon.
func (r *Reconciler) SetState(id string, state VisualState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.registry[id]
	if !ok {
		return fmt.Errorf("set state: no marker for center %s", id)
	}
	m.State = state
	if r.surface == nil {
		return nil
	}
	return r.surface.SetMarkerIcon(m.Handle, IconFor(state))
}

// LastDelta reports the add/remove counts of the most recent incremental
// reconcile pass.
func (r *Reconciler) LastDelta() (added, removed int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastAdded, r.lastRemoved
}

// Count returns the registry size.
func (r *Reconciler) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registry)
}

// VisibleCount returns how many registered markers the surface still reports
// attached and visible.
func (r *Reconciler) VisibleCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.surface == nil {
		return 0
	}
	n := 0
	for _, m := range r.registry {
		if r.surface.MarkerVisible(m.Handle) {
			n++
		}
	}
	return n
}

// ExpectedCount is the number of centers in the last target list that can
// produce a marker (those with a resolvable coordinate).
func (r *Reconciler) ExpectedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.lastTarget {
		if _, err := resolvePosition(c); err == nil {
			n++
		}
	}
	return n
}

// Reset detaches everything. Called on view teardown.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.surface != nil {
		for _, m := range r.registry {
			if err := r.surface.RemoveMarker(m.Handle); err != nil {
				r.logger.Warn("failed to detach marker during reset", "center", m.Snapshot.ID, "error", err)
			}
		}
	}
	r.registry = make(map[string]*Marker)
	r.lastTarget = nil
}

// resolvePosition validates a center's coordinate and projects it for the
// surface.
func resolvePosition(c core.Center) (geom.XY, error) {
	if c.Location == nil {
		return geom.XY{}, fmt.Errorf("%w: center %s has no coordinate", ErrInvalidCoordinate, c.ID)
	}
	if !geomath.ValidCoordinate(c.Location.Lat, c.Location.Lng) {
		return geom.XY{}, fmt.Errorf("%w: center %s at (%f, %f)", ErrInvalidCoordinate, c.ID, c.Location.Lat, c.Location.Lng)
	}
	return geomath.WebMercator(c.Location.Lat, c.Location.Lng), nil
}

// ResolvePosition is the exported form used by the focus orchestrator, which
// applies the same coordinate priority and validation as marker creation.
func ResolvePosition(c core.Center) (geom.XY, error) {
	return resolvePosition(c)
}

// IconFor maps a visual state to its icon styling.
func IconFor(state VisualState) mapsurface.Icon {
	switch state {
	case StateNormalOpen:
		return mapsurface.Icon{Kind: "pin-open", Scale: 1.0}
	case StateNormalClosed:
		return mapsurface.Icon{Kind: "pin-closed", Scale: 1.0}
	case StateHighlighted:
		return mapsurface.Icon{Kind: "pin-highlight", Scale: 1.4}
	case StateTemporary:
		return mapsurface.Icon{Kind: "pin-temp", Scale: 1.2}
	default:
		return mapsurface.Icon{Kind: "pin-open", Scale: 1.0}
	}
}
