// Package focus drives the camera sequence that brings one center into
// view: pan, zoom, verify centering, highlight, settle.
package focus

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/highlight"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/mapsurface"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/markers"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/timing"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

// State is the orchestrator's position in the focus pipeline.
type State int

const (
	StateIdle State = iota
	StatePanning
	StateZoomSettling
	StateCenteringVerify
	StateHighlighting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePanning:
		return "panning"
	case StateZoomSettling:
		return "zoom-settling"
	case StateCenteringVerify:
		return "centering-verify"
	case StateHighlighting:
		return "highlighting"
	default:
		return "unknown"
	}
}

// Tuning holds the pipeline's delays and camera targets.
type Tuning struct {
	PanSettle   time.Duration
	ZoomSettle  time.Duration
	FinalSettle time.Duration

	TargetZoom       float64
	IntermediateZoom float64
	// Viewports at least this wide get an intermediate zoom step before the
	// target zoom, which keeps wide maps from jumping.
	WideViewportPx int

	// CenterTolerance is the maximum projected-unit drift between the
	// requested and observed map center before a corrective pan is issued.
	CenterTolerance float64
}

// DefaultTuning returns the production pipeline parameters.
func DefaultTuning() Tuning {
	return Tuning{
		PanSettle:        400 * time.Millisecond,
		ZoomSettle:       400 * time.Millisecond,
		FinalSettle:      1500 * time.Millisecond,
		TargetZoom:       15,
		IntermediateZoom: 13,
		WideViewportPx:   1024,
		CenterTolerance:  50,
	}
}

// RefreshFunc is invoked once when a focus session ends, on every outcome,
// so the owner can force a full marker rebuild.
type RefreshFunc func()

// Orchestrator runs at most one focus session at a time. A new Focus call
// supersedes any in-flight session: the old session's pending step is
// cancelled and its remaining callbacks become no-ops.
type Orchestrator struct {
	surface     mapsurface.Surface
	reconciler  *markers.Reconciler
	highlighter *highlight.Controller
	scheduler   timing.Scheduler
	logger      *slog.Logger
	tuning      Tuning
	refresh     RefreshFunc

	mu      sync.Mutex
	state   State
	seq     uint64
	cancel  func()
	started time.Time

	observer func(outcome string, d time.Duration)
}

// New creates an Orchestrator. surface may be nil; Focus then aborts with
// mapsurface.ErrUnavailable and the result list stays usable on its own.
func New(surface mapsurface.Surface, reconciler *markers.Reconciler, highlighter *highlight.Controller, scheduler timing.Scheduler, logger *slog.Logger, tuning Tuning, refresh RefreshFunc) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if scheduler == nil {
		scheduler = timing.Real{}
	}
	return &Orchestrator{
		surface:     surface,
		reconciler:  reconciler,
		highlighter: highlighter,
		scheduler:   scheduler,
		logger:      logger,
		tuning:      tuning,
		refresh:     refresh,
	}
}

// SetObserver registers a callback invoked once per owned session end with
// the outcome ("completed" or "failed") and the session duration.
func (o *Orchestrator) SetObserver(fn func(outcome string, d time.Duration)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observer = fn
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Focus starts a session for the given center. Returns immediately after the
// initial pan; the remaining steps run on the scheduler.
func (o *Orchestrator) Focus(center core.Center) error {
	if o.surface == nil {
		o.logger.Warn("focus aborted, map surface unavailable", "center", center.ID)
		if o.refresh != nil {
			o.refresh()
		}
		return mapsurface.ErrUnavailable
	}

	o.mu.Lock()
	o.seq++
	sid := o.seq
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	superseded := o.state != StateIdle
	o.state = StatePanning
	o.started = time.Now()
	o.mu.Unlock()

	if superseded {
		o.logger.Debug("focus session superseded", "center", center.ID, "session", sid)
	}

	o.reconciler.Suspend()

	pos, err := markers.ResolvePosition(center)
	if err != nil {
		o.finish(sid, err)
		return fmt.Errorf("focus %s: %w", center.ID, err)
	}
	if err := o.surface.PanTo(pos); err != nil {
		o.finish(sid, err)
		return fmt.Errorf("focus %s: pan: %w", center.ID, err)
	}

	o.after(sid, o.tuning.PanSettle, func() {
		o.zoomStep(sid, center, pos)
	})
	return nil
}

// after arms the next pipeline step. The callback checks session currency
// before running, so a superseded session's steps fall through silently.
func (o *Orchestrator) after(sid uint64, d time.Duration, fn func()) {
	cancel := o.scheduler.AfterFunc(d, func() {
		if !o.current(sid) {
			return
		}
		fn()
	})
	o.mu.Lock()
	if sid == o.seq {
		o.cancel = cancel
		cancel = nil
	}
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) current(sid uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return sid == o.seq
}

func (o *Orchestrator) setState(sid uint64, s State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if sid != o.seq {
		return false
	}
	o.state = s
	return true
}

func (o *Orchestrator) zoomStep(sid uint64, center core.Center, pos geom.XY) {
	if !o.setState(sid, StateZoomSettling) {
		return
	}
	if o.surface.ViewportWidthPx() >= o.tuning.WideViewportPx {
		if err := o.surface.SetZoom(o.tuning.IntermediateZoom); err != nil {
			o.finish(sid, err)
			return
		}
		o.after(sid, o.tuning.ZoomSettle, func() {
			o.finalZoomStep(sid, center, pos)
		})
		return
	}
	if err := o.surface.SetZoom(o.tuning.TargetZoom); err != nil {
		o.finish(sid, err)
		return
	}
	o.after(sid, o.tuning.ZoomSettle, func() {
		o.verifyStep(sid, center, pos)
	})
}

func (o *Orchestrator) finalZoomStep(sid uint64, center core.Center, pos geom.XY) {
	if !o.current(sid) {
		return
	}
	if err := o.surface.SetZoom(o.tuning.TargetZoom); err != nil {
		o.finish(sid, err)
		return
	}
	o.after(sid, o.tuning.ZoomSettle, func() {
		o.verifyStep(sid, center, pos)
	})
}

// verifyStep compares the observed map center against the requested position
// and issues one corrective pan when zoom animation left the camera off
// target.
func (o *Orchestrator) verifyStep(sid uint64, center core.Center, pos geom.XY) {
	if !o.setState(sid, StateCenteringVerify) {
		return
	}
	got, err := o.surface.Center()
	if err != nil {
		o.finish(sid, err)
		return
	}
	if math.Hypot(got.X-pos.X, got.Y-pos.Y) > o.tuning.CenterTolerance {
		o.logger.Debug("map center drifted, correcting", "center", center.ID)
		if err := o.surface.PanTo(pos); err != nil {
			o.finish(sid, err)
			return
		}
		o.after(sid, o.tuning.PanSettle, func() {
			o.highlightStep(sid, center)
		})
		return
	}
	o.highlightStep(sid, center)
}

func (o *Orchestrator) highlightStep(sid uint64, center core.Center) {
	if !o.setState(sid, StateHighlighting) {
		return
	}
	if err := o.highlighter.Activate(center); err != nil {
		o.finish(sid, err)
		return
	}
	o.after(sid, o.tuning.FinalSettle, func() {
		o.finish(sid, nil)
	})
}

// finish ends a session: reconciliation resumes, the state machine returns
// to idle and the forced refresh runs. Runs at most once per session; a
// superseded session's finish is a no-op.
func (o *Orchestrator) finish(sid uint64, err error) {
	o.mu.Lock()
	if sid != o.seq {
		o.mu.Unlock()
		return
	}
	o.state = StateIdle
	o.cancel = nil
	observer := o.observer
	elapsed := time.Since(o.started)
	o.mu.Unlock()

	if observer != nil {
		outcome := "completed"
		if err != nil {
			outcome = "failed"
		}
		observer(outcome, elapsed)
	}
	if err != nil {
		o.logger.Warn("focus session failed", "session", sid, "error", err)
	}
	if rErr := o.reconciler.Resume(); rErr != nil {
		o.logger.Warn("failed to resume reconciliation", "error", rErr)
	}
	if o.refresh != nil {
		o.refresh()
	}
}
