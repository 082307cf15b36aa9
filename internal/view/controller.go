// Package view ties the engine together: it owns the catalog snapshot, the
// active filter options and the user's last known coordinate, and pushes
// every evaluation pass through the marker reconciler. All cross-component
// state lives here rather than in package-level variables.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/focus"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/geomath"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/highlight"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/influx"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/location"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/mapsurface"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/markers"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/proximity"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/timing"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

// DefaultEpsilonMeters is the minimum movement before a location update
// triggers re-evaluation.
const DefaultEpsilonMeters = 100.0

// CatalogSource supplies the normalized center directory.
type CatalogSource interface {
	ReadAll() ([]core.Center, error)
}

// Dependencies holds everything the controller needs.
type Dependencies struct {
	Surface     mapsurface.Surface
	Catalog     CatalogSource
	Filter      *proximity.Filter
	Reconciler  *markers.Reconciler
	Highlighter *highlight.Controller
	Location    location.Provider
	Scheduler   timing.Scheduler
	Tuning      focus.Tuning
	Logger      *slog.Logger
	Metrics     *influx.Manager

	// EpsilonMeters overrides DefaultEpsilonMeters when positive.
	EpsilonMeters float64
}

// Controller is the engine's single coordination point.
type Controller struct {
	deps  Dependencies
	focus *focus.Orchestrator

	mu       sync.RWMutex
	catalog  []core.Center
	results  []core.Center
	mode     proximity.Mode
	search   string
	filters  proximity.Filters
	lastUser *core.UserCoordinate

	isRunning bool
	runMu     sync.Mutex
	stopChan  chan struct{}
}

// New creates a Controller and its focus orchestrator.
func New(deps Dependencies) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = timing.Real{}
	}
	if deps.EpsilonMeters <= 0 {
		deps.EpsilonMeters = DefaultEpsilonMeters
	}
	c := &Controller{
		deps: deps,
		mode: proximity.ModeNearby,
	}
	c.focus = focus.New(deps.Surface, deps.Reconciler, deps.Highlighter,
		deps.Scheduler, deps.Logger, deps.Tuning, c.ForceRefresh)
	if deps.Metrics != nil {
		c.focus.SetObserver(func(outcome string, d time.Duration) {
			point := influx.FocusPoint(outcome, d)
			if err := deps.Metrics.WritePoint(context.Background(), influx.BucketEngine, point); err != nil {
				deps.Logger.Debug("failed to write focus telemetry", "error", err)
			}
		})
	}
	return c
}

// Focus exposes the orchestrator, mainly for state inspection.
func (c *Controller) Focus() *focus.Orchestrator {
	return c.focus
}

// Start loads the catalog, runs the first evaluation pass and begins
// consuming location updates.
func (c *Controller) Start() error {
	if err := c.ReloadCatalog(); err != nil {
		return err
	}

	if c.deps.Location != nil {
		if u := c.deps.Location.Current(); u != nil {
			c.mu.Lock()
			c.lastUser = u
			c.mu.Unlock()
		}
	}
	c.Evaluate()

	if c.deps.Location == nil {
		return nil
	}

	c.runMu.Lock()
	if c.isRunning {
		c.runMu.Unlock()
		return nil
	}
	c.isRunning = true
	c.stopChan = make(chan struct{})
	stop := c.stopChan
	c.runMu.Unlock()

	go func() {
		defer func() {
			c.runMu.Lock()
			c.isRunning = false
			c.runMu.Unlock()
		}()
		updates := c.deps.Location.Updates().Receive()
		for {
			select {
			case <-stop:
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				c.UpdateLocation(u)
			}
		}
	}()
	return nil
}

// Stop halts the location consumer and clears the highlight.
func (c *Controller) Stop() {
	c.runMu.Lock()
	if c.isRunning {
		close(c.stopChan)
	}
	c.runMu.Unlock()

	if c.deps.Highlighter != nil {
		c.deps.Highlighter.Clear()
	}
}

// ReloadCatalog re-reads the center directory and re-evaluates.
func (c *Controller) ReloadCatalog() error {
	centers, err := c.deps.Catalog.ReadAll()
	if err != nil {
		return fmt.Errorf("reload catalog: %w", err)
	}
	c.mu.Lock()
	c.catalog = centers
	c.mu.Unlock()

	c.deps.Logger.Info("catalog loaded", "centers", len(centers))
	c.Evaluate()
	return nil
}

// SetMode switches between nearby and all, then re-evaluates.
func (c *Controller) SetMode(mode proximity.Mode) {
	c.mu.Lock()
	changed := c.mode != mode
	c.mode = mode
	c.mu.Unlock()
	if changed {
		c.Evaluate()
	}
}

// Mode returns the active display mode.
func (c *Controller) Mode() proximity.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// SetSearch updates the free-text search and re-evaluates.
func (c *Controller) SetSearch(query string) {
	c.mu.Lock()
	changed := c.search != query
	c.search = query
	c.mu.Unlock()
	if changed {
		c.Evaluate()
	}
}

// SetFilters replaces the structured filters and re-evaluates.
func (c *Controller) SetFilters(f proximity.Filters) {
	c.mu.Lock()
	c.filters = f
	c.mu.Unlock()
	c.Evaluate()
}

// UpdateLocation feeds a new user coordinate in. Movement below the epsilon
// threshold is ignored to avoid churning the marker layer on GPS jitter.
func (c *Controller) UpdateLocation(u core.UserCoordinate) {
	c.mu.Lock()
	if c.lastUser != nil {
		moved := geomath.DistanceMeters(c.lastUser.Lat, c.lastUser.Lng, u.Lat, u.Lng)
		if moved < c.deps.EpsilonMeters {
			c.mu.Unlock()
			return
		}
	}
	c.lastUser = &u
	c.mu.Unlock()

	c.deps.Logger.Debug("user location updated", "lat", u.Lat, "lng", u.Lng)
	c.Evaluate()
}

// Evaluate runs one filtering pass and reconciles the marker layer.
func (c *Controller) Evaluate() {
	c.evaluate(false)
}

// ForceRefresh runs one filtering pass and rebuilds every marker from
// scratch. The focus orchestrator calls this at the end of every session.
func (c *Controller) ForceRefresh() {
	c.evaluate(true)
}

func (c *Controller) evaluate(rebuild bool) {
	c.mu.Lock()
	catalog := c.catalog
	user := c.lastUser
	opts := proximity.Options{
		Mode:    c.mode,
		Search:  c.search,
		Filters: c.filters,
	}
	c.mu.Unlock()

	started := time.Now()
	results := c.deps.Filter.Evaluate(catalog, user, opts)

	c.mu.Lock()
	c.results = results
	c.mu.Unlock()

	var err error
	if rebuild {
		err = c.deps.Reconciler.ForceRebuild(results)
	} else {
		err = c.deps.Reconciler.Reconcile(results)
	}
	if err != nil {
		c.deps.Logger.Warn("marker reconciliation failed", "error", err)
	}

	c.writeEvaluationPoint(string(opts.Mode), len(catalog), len(results), time.Since(started))
	if c.deps.Metrics != nil {
		added, removed := c.deps.Reconciler.LastDelta()
		point := influx.ReconcilePoint(added, removed, c.deps.Reconciler.Count())
		if err := c.deps.Metrics.WritePoint(context.Background(), influx.BucketEngine, point); err != nil {
			c.deps.Logger.Debug("failed to write reconcile telemetry", "error", err)
		}
	}
}

// Results returns the most recent evaluation output.
func (c *Controller) Results() []core.Center {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Center, len(c.results))
	copy(out, c.results)
	return out
}

// Select starts a focus session for the center with the given id. The center
// is looked up in the current results first, then in the full catalog, so a
// center filtered off the map can still be focused from an external caller.
func (c *Controller) Select(id string) error {
	center, ok := c.lookup(id)
	if !ok {
		return fmt.Errorf("select: unknown center %q", id)
	}
	return c.focus.Focus(center)
}

// SelectCenter starts a focus session for an already-resolved center. Marker
// click callbacks land here.
func (c *Controller) SelectCenter(center core.Center) {
	if err := c.focus.Focus(center); err != nil {
		c.deps.Logger.Warn("focus failed", "center", center.ID, "error", err)
	}
}

func (c *Controller) lookup(id string) (core.Center, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.results {
		if r.ID == id {
			return r, true
		}
	}
	for _, r := range c.catalog {
		if r.ID == id {
			return r, true
		}
	}
	return core.Center{}, false
}

func (c *Controller) writeEvaluationPoint(mode string, catalogSize, resultCount int, d time.Duration) {
	if c.deps.Metrics == nil {
		return
	}
	point := influx.EvaluationPoint(mode, catalogSize, resultCount, d)
	if err := c.deps.Metrics.WritePoint(context.Background(), influx.BucketEngine, point); err != nil {
		c.deps.Logger.Debug("failed to write evaluation telemetry", "error", err)
	}
}
