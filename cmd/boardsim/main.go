package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/OCAP2/boarding/internal/api"
	"github.com/OCAP2/boarding/internal/board"
	"github.com/OCAP2/boarding/internal/cache"
	"github.com/OCAP2/boarding/internal/config"
	"github.com/OCAP2/boarding/internal/dispatcher"
	"github.com/OCAP2/boarding/internal/geo"
	"github.com/OCAP2/boarding/internal/handlers"
	"github.com/OCAP2/boarding/internal/influx"
	"github.com/OCAP2/boarding/internal/logging"
	"github.com/OCAP2/boarding/internal/monitor"
	intOtel "github.com/OCAP2/boarding/internal/otel"
	"github.com/OCAP2/boarding/internal/parser"
	"github.com/OCAP2/boarding/internal/scenario"
	"github.com/OCAP2/boarding/internal/storage"
	"github.com/OCAP2/boarding/internal/worker"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "0.0.1"
	BuildDate               string = "unknown"

	AppName string = "boardsim"
)

// app holds everything one run of the simulator wires together.
type app struct {
	runStart time.Time

	slogManager *logging.SlogManager
	logger      *slog.Logger
	logFile     *os.File
	otel        *intOtel.Provider
	influx      *influx.Manager

	scenario   *scenario.Context
	entities   *cache.EntityCache
	outfits    *cache.OutfitCache
	dispatcher *dispatcher.Dispatcher
	worker     *worker.Manager
	handlers   *handlers.Service
	monitor    *monitor.Service
	backend    storage.Backend
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "boardsim:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	configDir := fs.String("config", ".", "directory containing "+config.FileName)
	fs.String("script", "", "scenario script to replay")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("storage", "memory", "storage backend (memory, sqlite, postgres, websocket)")
	fs.Uint64("seed", 0, "random seed, 0 for time-based")
	fs.Bool("otel-enabled", false, "export logs and metrics through OpenTelemetry")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.Load(*configDir); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config, using defaults:", err)
	}
	if err := config.BindFlags(fs); err != nil {
		return err
	}

	if rest := fs.Args(); len(rest) > 0 && rest[0] == "report" {
		return runReport(os.Stdout, rest[1:])
	}

	a := &app{runStart: time.Now()}
	if err := a.init(); err != nil {
		return err
	}
	defer a.shutdown()

	scriptFile := config.GetSimConfig().ScriptFile
	if scriptFile == "" {
		return errors.New("no scenario script given, use --script or sim.scriptFile")
	}
	script, err := LoadScript(scriptFile)
	if err != nil {
		return err
	}
	return NewRunner(a.dispatcher, a.logger).Run(script)
}

func (a *app) init() error {
	a.slogManager = logging.NewSlogManager()
	a.slogManager.Setup(nil, viper.GetString("logLevel"), nil)
	a.logger = a.slogManager.Logger()

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}
	logPath := logging.LogFilePath(logsDir, AppName, a.runStart)
	var err error
	a.logFile, err = os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		a.logger.Error("Failed to create/open log file!", "error", err, "path", logPath)
	}

	var out io.Writer
	if a.logFile != nil {
		out = a.logFile
	}

	otelCfg := config.GetOTelConfig()
	a.otel, err = intOtel.New(intOtel.Config{
		Enabled:         otelCfg.Enabled,
		ServiceName:     otelCfg.ServiceName,
		BatchTimeout:    otelCfg.BatchTimeout,
		MetricsInterval: otelCfg.MetricsInterval,
		LogWriter:       out,
		MetricWriter:    out,
		Endpoint:        otelCfg.Endpoint,
		Insecure:        otelCfg.Insecure,
	})
	if err != nil {
		a.logger.Error("Failed to initialize OTel provider", "error", err)
		a.otel, _ = intOtel.New(intOtel.Config{})
	}

	if viper.GetBool("graylog.enabled") {
		if err := a.slogManager.EnableGraylog(viper.GetString("graylog.address")); err != nil {
			a.logger.Warn("Graylog disabled", "error", err)
		}
	}

	a.scenario = scenario.NewContext()
	a.entities = cache.NewEntityCache()
	a.outfits = cache.NewOutfitCache()
	a.slogManager.SetContext(logging.SimContext(a.scenario))

	var provider *sdklog.LoggerProvider
	if a.otel.Enabled() {
		provider = a.otel.LoggerProvider()
	}
	a.slogManager.Setup(out, viper.GetString("logLevel"), provider)
	a.logger = a.slogManager.Logger()
	a.logger.Info("Starting up", "version", CurrentExtensionVersion, "build", BuildDate, "log", logPath)

	a.initInflux(logsDir)

	a.dispatcher, err = dispatcher.New(a.slogManager.DispatcherLogger())
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	a.backend, err = createStorageBackend(config.GetStorageConfig(), a.projector(), a.slogManager)
	if err != nil {
		return err
	}
	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}

	simCfg := config.GetSimConfig()
	parserService := parser.NewParser(a.logger, CurrentExtensionVersion, BuildDate)

	a.worker, err = worker.NewManager(worker.Dependencies{
		EntityCache:   a.entities,
		OutfitCache:   a.outfits,
		LogManager:    a.slogManager,
		ParserService: parserService,
		Scenario:      a.scenario,
		Influx:        a.influx,
		TickInterval:  simCfg.TickInterval,
		Params:        board.ParamsFromConfig(config.GetBoardConfig()),
		Rand:          newRand(simCfg.Seed),
	}, a.backend)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	a.worker.RegisterHandlers(a.dispatcher)

	var uploader handlers.Uploader
	if key := viper.GetString("api.apiKey"); key != "" {
		client := api.New(viper.GetString("api.serverUrl"), key)
		if err := client.Healthcheck(); err != nil {
			a.logger.Warn("Report server unreachable, reports stay on disk", "error", err)
		} else {
			uploader = client
		}
	}

	a.handlers, err = handlers.NewService(handlers.Dependencies{
		LogManager:       a.slogManager,
		ParserService:    parserService,
		Scenario:         a.scenario,
		EntityCache:      a.entities,
		Board:            a.worker.Board(),
		Influx:           a.influx,
		Uploader:         uploader,
		Flusher:          a.otel,
		ExtensionVersion: CurrentExtensionVersion,
		BuildDate:        BuildDate,
		DefaultTag:       viper.GetString("defaultTag"),
		TickInterval:     simCfg.TickInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to create handlers: %w", err)
	}
	a.handlers.SetBackend(a.backend)
	a.handlers.RegisterHandlers(a.dispatcher)

	a.monitor = monitor.NewService(monitor.Dependencies{
		LogManager:  a.slogManager,
		Scenario:    a.scenario,
		EntityCache: a.entities,
		Writes:      a.worker,
		Influx:      a.influx,
		StatusDir:   logsDir,
	})
	a.monitor.SetBackend(a.backend)
	if err := a.monitor.Start(); err != nil {
		a.logger.Warn("Status monitor not started", "error", err)
	}

	a.logger.Info("Ready", "commands", len(a.dispatcher.Commands()), "storage", config.GetStorageConfig().Type)
	return nil
}

func (a *app) initInflux(logsDir string) {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return
	}
	zl := zerolog.New(a.logOutput()).With().Timestamp().Str("component", "influx").Logger()
	backup := filepath.Join(logsDir, fmt.Sprintf("influx_backup_%s.lp.gz", a.runStart.Format("20060102_150405")))
	m := influx.NewManager(zl, cfg, backup)
	if err := m.Connect(); err != nil {
		a.logger.Error("Failed to set up InfluxDB", "error", err)
		return
	}
	a.influx = m
}

func (a *app) logOutput() io.Writer {
	if a.logFile != nil {
		return a.logFile
	}
	return os.Stderr
}

func (a *app) projector() *geo.Projector {
	g := config.GetGeoConfig()
	return geo.NewProjector(g.AnchorLon, g.AnchorLat, g.Scale)
}

func newRand(seed uint64) board.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>1))
}

func (a *app) shutdown() {
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	if a.scenario != nil && a.scenario.Loaded() {
		if _, err := a.dispatcher.Dispatch(dispatcher.Event{Command: ":SCENARIO:END:"}); err != nil {
			a.logger.Error("Failed to end scenario on shutdown", "error", err)
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.logger.Error("Failed to close InfluxDB", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			a.logger.Error("Failed to shut down OTel", "error", err)
		}
	}
	if err := a.slogManager.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "log flush failed:", err)
	}
	a.logger.Info("Shut down")
	_ = a.slogManager.Close()
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
