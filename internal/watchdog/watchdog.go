// Package watchdog periodically verifies that every expected marker is still
// attached to the map surface and rebuilds the layer when drift is detected.
package watchdog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/markers"
)

// DefaultInterval is how often the integrity check runs.
const DefaultInterval = 5 * time.Second

// Dependencies holds everything the watchdog needs.
type Dependencies struct {
	Reconciler *markers.Reconciler
	Logger     *slog.Logger
	Interval   time.Duration
}

// Service runs the periodic marker integrity check.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}

	rebuilds metric.Int64Counter
	checks   metric.Int64Counter
}

// NewService creates a watchdog. Interval defaults to DefaultInterval.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}

	meter := otel.GetMeterProvider().Meter("bloodmap-watchdog")
	rebuilds, _ := meter.Int64Counter("bloodmap.watchdog.rebuilds",
		metric.WithDescription("Marker layer rebuilds triggered by drift detection"))
	checks, _ := meter.Int64Counter("bloodmap.watchdog.checks",
		metric.WithDescription("Marker integrity checks performed"))

	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
		rebuilds: rebuilds,
		checks:   checks,
	}
}

// IsRunning returns whether the watchdog goroutine is active.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// CheckNow runs one integrity pass. Returns true when a rebuild was
// triggered. No rebuild happens while reconciliation is suspended or when no
// markers are expected.
func (s *Service) CheckNow() bool {
	s.checks.Add(context.Background(), 1)

	if s.deps.Reconciler.Suspended() {
		return false
	}
	expected := s.deps.Reconciler.ExpectedCount()
	if expected == 0 {
		return false
	}
	visible := s.deps.Reconciler.VisibleCount()
	if visible >= expected {
		return false
	}

	s.deps.Logger.Warn("marker drift detected, rebuilding layer",
		"visible", visible, "expected", expected)
	s.rebuilds.Add(context.Background(), 1)
	if err := s.deps.Reconciler.Rebuild(); err != nil {
		s.deps.Logger.Error("marker rebuild failed", "error", err)
	}
	return true
}

// Start launches the periodic check goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("starting marker watchdog", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.CheckNow()
			}
		}
	}()
	return nil
}

// Stop terminates the watchdog goroutine.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	close(s.stopChan)
}
