// Command bloodmapd runs the blood donation center map engine: it loads the
// center catalog, evaluates proximity against the user's location and keeps
// the map marker layer in sync. The `seed` subcommand populates the catalog
// with sample data and `demo` drives a scripted session through the command
// dispatcher.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/catalog"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/config"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/dispatcher"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/focus"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/highlight"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/influx"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/location"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/logging"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/mapsurface"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/markers"
	intOtel "github.com/IrishLince/bloodbank-frontend-sub003/internal/otel"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/proximity"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/timing"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/view"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/watchdog"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

var (
	Version   string = "0.1.0"
	BuildDate string = "unknown"

	AppName string = "bloodmapd"
)

// global managers, wired in setup and torn down in shutdown
var (
	SessionStartTime time.Time = time.Now()

	SlogManager *logging.SlogManager
	Logger      *slog.Logger
	GelfOutput  *logging.GelfHandler

	OTelProvider *intOtel.Provider

	CatalogManager *catalog.Manager
	InfluxManager  *influx.Manager

	logFile     *os.File
	otelLogFile *os.File
)

func main() {
	configDir := "."
	args := os.Args[1:]
	if len(args) >= 2 && args[0] == "-config" {
		configDir = args[1]
		args = args[2:]
	}

	if err := config.Load(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
	}
	if err := setupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer shutdown()

	Logger.Info("starting",
		"app", AppName,
		"version", Version,
		"buildDate", BuildDate,
	)

	if err := setupDatabase(); err != nil {
		Logger.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	setupMetrics()

	command := "run"
	if len(args) > 0 {
		command = args[0]
	}

	var err error
	switch command {
	case "run":
		err = runEngine(nil)
	case "seed":
		err = seedCatalog()
	case "demo":
		err = runEngine(demoScript)
	default:
		err = fmt.Errorf("unknown command %q (expected run, seed or demo)", command)
	}
	if err != nil {
		Logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

// setupLogging builds the slog fan-out: file, optional OTel bridge and
// optional GELF output for Graylog.
func setupLogging() error {
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}

	var err error
	logPath := logging.LogFilePath(logsDir, AppName, SessionStartTime)
	logFile, err = os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	var logProvider *sdklog.LoggerProvider
	if viper.GetBool("otel.enabled") {
		otelLogFile, err = os.OpenFile(
			filepath.Join(logsDir, "otel.jsonl"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open otel log file: %w", err)
		}
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      true,
			ServiceName:  viper.GetString("otel.serviceName"),
			BatchTimeout: viper.GetDuration("otel.batchTimeout"),
			LogWriter:    otelLogFile,
			Endpoint:     viper.GetString("otel.endpoint"),
			Insecure:     viper.GetBool("otel.insecure"),
		})
		if err != nil {
			return fmt.Errorf("otel provider: %w", err)
		}
		logProvider = OTelProvider.LoggerProvider()
	}

	var extra []slog.Handler
	if viper.GetBool("graylog.enabled") {
		GelfOutput, err = logging.NewGelfHandler(
			viper.GetString("graylog.address"), slog.LevelInfo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog unavailable, continuing without it: %v\n", err)
		} else {
			extra = append(extra, GelfOutput)
		}
	}

	SlogManager = logging.NewSlogManager()
	SlogManager.Context = func() []slog.Attr {
		attrs := []slog.Attr{slog.String("app", AppName)}
		if CatalogManager != nil {
			attrs = append(attrs, slog.Bool("localDb", CatalogManager.UsingLocal))
		}
		return attrs
	}
	SlogManager.Setup(logFile, viper.GetString("logLevel"), logProvider, extra...)
	Logger = SlogManager.Logger()
	return nil
}

func setupDatabase() error {
	CatalogManager = catalog.NewManager(zerologFor("catalog"))
	if err := CatalogManager.Connect(); err != nil {
		return err
	}
	return CatalogManager.Setup()
}

func setupMetrics() {
	backupPath := filepath.Join(viper.GetString("logsDir"), "influx_backup.gz")
	InfluxManager = influx.NewManager(zerologFor("influx"), backupPath)
	if err := InfluxManager.Connect(); err != nil {
		Logger.Info("metrics disabled", "reason", err)
		InfluxManager = nil
	}
}

func zerologFor(component string) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).With().Timestamp().Str("component", component).Logger()
}

// buildEngine wires the full stack against the given surface and returns the
// controller plus its dispatcher.
func buildEngine(surface mapsurface.Surface, provider location.Provider) (*view.Controller, *dispatcher.Dispatcher, *watchdog.Service, error) {
	var ctrl *view.Controller
	reconciler := markers.New(surface, Logger, func(c core.Center) {
		if ctrl != nil {
			ctrl.SelectCenter(c)
		}
	})

	highlighter := highlight.New(surface, reconciler, timing.Real{}, Logger,
		highlight.WithBounceDuration(viper.GetDuration("highlight.bounceDuration")))

	filter := proximity.New(Logger,
		proximity.WithRadius(viper.GetFloat64("proximity.radiusMeters")))

	ctrl = view.New(view.Dependencies{
		Surface:       surface,
		Catalog:       CatalogManager,
		Filter:        filter,
		Reconciler:    reconciler,
		Highlighter:   highlighter,
		Location:      provider,
		Scheduler:     timing.Real{},
		Tuning:        tuningFromConfig(),
		Logger:        Logger,
		Metrics:       InfluxManager,
		EpsilonMeters: viper.GetFloat64("proximity.locationEpsilonMeters"),
	})

	d, err := dispatcher.New(logging.NewDispatcherLogger(zerologFor("dispatcher")))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dispatcher: %w", err)
	}
	ctrl.RegisterHandlers(d)

	dog := watchdog.NewService(watchdog.Dependencies{
		Reconciler: reconciler,
		Logger:     Logger,
		Interval:   viper.GetDuration("watchdog.interval"),
	})

	return ctrl, d, dog, nil
}

func tuningFromConfig() focus.Tuning {
	t := focus.DefaultTuning()
	if d := viper.GetDuration("focus.panSettle"); d > 0 {
		t.PanSettle = d
	}
	if d := viper.GetDuration("focus.zoomSettle"); d > 0 {
		t.ZoomSettle = d
	}
	if d := viper.GetDuration("focus.finalSettle"); d > 0 {
		t.FinalSettle = d
	}
	if z := viper.GetFloat64("focus.targetZoom"); z > 0 {
		t.TargetZoom = z
	}
	if z := viper.GetFloat64("focus.intermediateZoom"); z > 0 {
		t.IntermediateZoom = z
	}
	if px := viper.GetInt("focus.wideViewportPx"); px > 0 {
		t.WideViewportPx = px
	}
	if tol := viper.GetFloat64("focus.centerTolerance"); tol > 0 {
		t.CenterTolerance = tol
	}
	return t
}

// runEngine starts the engine against an in-process surface and blocks until
// SIGINT or SIGTERM. When script is non-nil it runs after startup instead of
// waiting for a signal.
func runEngine(script func(*view.Controller, *dispatcher.Dispatcher, location.Provider) error) error {
	surface := mapsurface.NewMemorySurface()
	provider := location.NewStatic()
	defer provider.Close()

	ctrl, d, dog, err := buildEngine(surface, provider)
	if err != nil {
		return err
	}
	if err := ctrl.Start(); err != nil {
		return err
	}
	defer ctrl.Stop()

	if err := dog.Start(); err != nil {
		Logger.Warn("watchdog failed to start", "error", err)
	}
	defer dog.Stop()

	if script != nil {
		return script(ctrl, d, provider)
	}

	Logger.Info("engine running", "centers", len(ctrl.Results()))
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	Logger.Info("shutting down", "signal", s.String())
	return nil
}

// demoScript drives a scripted session through the dispatcher the way the
// map view layer would.
func demoScript(ctrl *view.Controller, d *dispatcher.Dispatcher, provider location.Provider) error {
	// Quezon City Memorial Circle
	provider.(*location.Static).Set(core.UserCoordinate{Lat: 14.6515, Lng: 121.0493})
	time.Sleep(100 * time.Millisecond)

	steps := []dispatcher.Event{
		{Command: ":SET:MODE:", Args: []string{"nearby"}, Timestamp: time.Now()},
		{Command: ":SET:SEARCH:", Args: []string{"red cross"}, Timestamp: time.Now()},
		{Command: ":SET:SEARCH:", Args: []string{""}, Timestamp: time.Now()},
		{Command: ":SET:FILTERS:", Args: []string{"bloodtype=O-"}, Timestamp: time.Now()},
		{Command: ":SET:FILTERS:", Timestamp: time.Now()},
		{Command: ":SET:MODE:", Args: []string{"all"}, Timestamp: time.Now()},
	}
	for _, e := range steps {
		if result, err := d.Dispatch(e); err != nil {
			Logger.Warn("demo step failed", "command", e.Command, "error", err)
		} else {
			Logger.Info("demo step", "command", e.Command, "result", result)
		}
	}

	results := ctrl.Results()
	for _, c := range results {
		Logger.Info("center", "id", c.ID, "name", c.Name, "distance", c.DistanceText)
	}
	if len(results) > 0 {
		if _, err := d.Dispatch(dispatcher.Event{
			Command:   ":SELECT:CENTER:",
			Args:      []string{results[0].ID},
			Timestamp: time.Now(),
		}); err != nil {
			return err
		}
		// let the focus session settle
		time.Sleep(3 * time.Second)
	}
	Logger.Info("demo complete", "centers", len(results))
	return nil
}

func shutdown() {
	if InfluxManager != nil {
		InfluxManager.Close()
	}
	if CatalogManager != nil {
		if err := CatalogManager.Close(); err != nil {
			Logger.Warn("closing database", "error", err)
		}
	}
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Flush(ctx); err != nil {
			Logger.Warn("flushing telemetry", "error", err)
		}
		_ = OTelProvider.Shutdown(ctx)
	}
	if GelfOutput != nil {
		_ = GelfOutput.Close()
	}
	if otelLogFile != nil {
		_ = otelLogFile.Close()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}
