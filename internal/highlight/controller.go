// Package highlight manages the single active marker: icon swap, bounce
// animation and the detail overlay.
package highlight

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/mapsurface"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/markers"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/timing"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

// DefaultBounceDuration is how long a newly highlighted marker bounces.
const DefaultBounceDuration = 2 * time.Second

// Controller highlights at most one marker at a time. Activating a new
// center reverts the previous one first; at most one overlay is ever open.
type Controller struct {
	surface    mapsurface.Surface
	reconciler *markers.Reconciler
	scheduler  timing.Scheduler
	logger     *slog.Logger
	bounce     time.Duration

	mu           sync.Mutex
	busy         bool
	activeID     string
	bounceSeq    uint64
	cancelBounce func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithBounceDuration overrides the bounce animation length.
func WithBounceDuration(d time.Duration) Option {
	return func(c *Controller) { c.bounce = d }
}

// New creates a Controller. surface may be nil; Activate then returns
// mapsurface.ErrUnavailable.
func New(surface mapsurface.Surface, reconciler *markers.Reconciler, scheduler timing.Scheduler, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if scheduler == nil {
		scheduler = timing.Real{}
	}
	c := &Controller{
		surface:    surface,
		reconciler: reconciler,
		scheduler:  scheduler,
		logger:     logger,
		bounce:     DefaultBounceDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activate highlights the given center. A call arriving while a previous
// activation is still processing is dropped. The guard clears on every exit
// path, success or failure.
func (c *Controller) Activate(center core.Center) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		c.logger.Debug("highlight activation dropped, already processing", "center", center.ID)
		return nil
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if c.surface == nil {
		return mapsurface.ErrUnavailable
	}

	c.revertActive()

	m, ok := c.reconciler.Get(center.ID)
	if !ok {
		m, ok = c.reconciler.Lookup(center)
	}
	if !ok {
		var err error
		m, err = c.synthesize(center)
		if err != nil {
			return fmt.Errorf("highlight %s: %w", center.ID, err)
		}
	}

	if err := c.reconciler.SetState(m.Snapshot.ID, markers.StateHighlighted); err != nil {
		return fmt.Errorf("highlight %s: %w", center.ID, err)
	}
	if err := c.surface.SetMarkerAnimation(m.Handle, mapsurface.AnimationBounce); err != nil {
		c.logger.Warn("failed to start bounce", "center", center.ID, "error", err)
	}

	c.mu.Lock()
	c.activeID = m.Snapshot.ID
	c.bounceSeq++
	seq := c.bounceSeq
	handle := m.Handle
	c.mu.Unlock()

	cancel := c.scheduler.AfterFunc(c.bounce, func() {
		c.stopBounce(seq, handle)
	})
	c.mu.Lock()
	c.cancelBounce = cancel
	c.mu.Unlock()

	if err := c.surface.CloseOverlay(); err != nil {
		c.logger.Warn("failed to close previous overlay", "error", err)
	}
	if err := c.surface.OpenOverlay(m.Handle, overlayContent(m.Snapshot)); err != nil {
		return fmt.Errorf("highlight %s: open overlay: %w", center.ID, err)
	}
	return nil
}

// stopBounce ends the animation if no newer highlight has taken over since
// the timer was armed.
func (c *Controller) stopBounce(seq uint64, handle mapsurface.MarkerID) {
	c.mu.Lock()
	stale := seq != c.bounceSeq
	c.mu.Unlock()
	if stale {
		return
	}
	if err := c.surface.SetMarkerAnimation(handle, mapsurface.AnimationNone); err != nil {
		c.logger.Warn("failed to stop bounce", "error", err)
	}
}

// synthesize creates a temporary stand-in marker for a center the registry
// does not know, and hands it to the reconciler so later passes own it.
func (c *Controller) synthesize(center core.Center) (*markers.Marker, error) {
	pos, err := markers.ResolvePosition(center)
	if err != nil {
		return nil, err
	}
	handle, err := c.surface.AddMarker(mapsurface.MarkerOptions{
		Position: pos,
		Title:    center.Name,
		Icon:     markers.IconFor(markers.StateTemporary),
	})
	if err != nil {
		return nil, err
	}
	m := &markers.Marker{
		Snapshot: center,
		Handle:   handle,
		State:    markers.StateTemporary,
		Position: pos,
	}
	c.reconciler.Adopt(m)
	c.logger.Debug("synthesized temporary marker", "center", center.ID)
	return m, nil
}

// revertActive restores the previously highlighted marker, if any.
func (c *Controller) revertActive() {
	c.mu.Lock()
	prev := c.activeID
	c.activeID = ""
	if c.cancelBounce != nil {
		c.cancelBounce()
		c.cancelBounce = nil
	}
	c.bounceSeq++
	c.mu.Unlock()

	if prev == "" {
		return
	}
	m, ok := c.reconciler.Get(prev)
	if !ok {
		return
	}
	if err := c.surface.SetMarkerAnimation(m.Handle, mapsurface.AnimationNone); err != nil {
		c.logger.Warn("failed to stop previous bounce", "center", prev, "error", err)
	}
	state := markers.StateNormalClosed
	if m.Snapshot.OpenToday {
		state = markers.StateNormalOpen
	}
	if m.State == markers.StateTemporary {
		state = markers.StateTemporary
	}
	if err := c.reconciler.SetState(prev, state); err != nil {
		c.logger.Warn("failed to revert previous highlight", "center", prev, "error", err)
	}
}

// Clear reverts the active highlight and closes the overlay.
func (c *Controller) Clear() {
	if c.surface == nil {
		return
	}
	c.revertActive()
	if err := c.surface.CloseOverlay(); err != nil {
		c.logger.Warn("failed to close overlay", "error", err)
	}
}

// ActiveID returns the currently highlighted center id, or empty.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// overlayContent renders the detail card shown above the active marker.
func overlayContent(c core.Center) string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.Address != "" {
		b.WriteString("\n")
		b.WriteString(c.Address)
	}
	if c.DistanceText != "" {
		b.WriteString("\n")
		b.WriteString(c.DistanceText)
	}
	if c.Hours != "" {
		b.WriteString("\n")
		b.WriteString(c.Hours)
	}
	if c.Phone != "" {
		b.WriteString("\n")
		b.WriteString(c.Phone)
	}
	return b.String()
}
