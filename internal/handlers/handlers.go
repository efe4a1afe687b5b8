// Package handlers serves the lifecycle commands: scenario start and end,
// version, host logging and ad-hoc metrics.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OCAP2/boarding/internal/board"
	"github.com/OCAP2/boarding/internal/cache"
	"github.com/OCAP2/boarding/internal/dispatcher"
	"github.com/OCAP2/boarding/internal/influx"
	"github.com/OCAP2/boarding/internal/logging"
	"github.com/OCAP2/boarding/internal/parser"
	"github.com/OCAP2/boarding/internal/scenario"
	"github.com/OCAP2/boarding/internal/storage"
	"github.com/OCAP2/boarding/internal/util"
	"github.com/OCAP2/boarding/pkg/core"
)

// ErrNoScenario is returned by :SCENARIO:END: when nothing is running.
var ErrNoScenario = errors.New("no scenario loaded")

// Uploader sends an exported report to the report server.
type Uploader interface {
	Upload(filePath string, meta core.ReportMetadata) error
}

// Flusher pushes buffered telemetry out, e.g. the OTel provider.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	LogManager       *logging.SlogManager
	ParserService    *parser.Parser
	Scenario         *scenario.Context
	EntityCache      *cache.EntityCache
	Board            *board.Manager
	Influx           *influx.Manager // optional
	Uploader         Uploader        // optional
	Flusher          Flusher         // optional
	ExtensionVersion string
	BuildDate        string
	DefaultTag       string
	TickInterval     time.Duration // used when :SCENARIO:START: names none
	FlushTimeout     time.Duration
}

// Service handles the scenario lifecycle around the boarding simulation.
type Service struct {
	deps Dependencies

	mu         sync.RWMutex
	backend    storage.Backend
	dispatcher *dispatcher.Dispatcher
}

// NewService creates a new handler service
func NewService(deps Dependencies) (*Service, error) {
	if deps.Scenario == nil || deps.ParserService == nil || deps.Board == nil || deps.EntityCache == nil {
		return nil, errors.New("handlers: scenario, parser, board and entity cache are required")
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.FlushTimeout <= 0 {
		deps.FlushTimeout = 5 * time.Second
	}
	return &Service{deps: deps}, nil
}

// SetBackend sets the storage backend for the service
func (s *Service) SetBackend(b storage.Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backend = b
}

func (s *Service) getBackend() storage.Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

func (s *Service) log() *slog.Logger {
	return s.deps.LogManager.Logger()
}

// RegisterHandlers registers the lifecycle commands with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	s.mu.Lock()
	s.dispatcher = d
	s.mu.Unlock()

	d.Register(":VERSION:", s.handleVersion)
	d.Register(":SCENARIO:START:", s.handleScenarioStart, dispatcher.Logged())
	d.Register(":SCENARIO:END:", s.handleScenarioEnd, dispatcher.Logged())
	d.Register(":LOG:", s.handleLog)
	d.Register(":METRIC:", s.handleMetric, dispatcher.Buffered(1000))
}

func (s *Service) handleVersion(dispatcher.Event) (any, error) {
	return []string{s.deps.ExtensionVersion, s.deps.BuildDate}, nil
}

// handleScenarioStart begins a new scenario. One still running is ended first.
func (s *Service) handleScenarioStart(e dispatcher.Event) (any, error) {
	sc, err := s.deps.ParserService.ParseScenario(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if sc.Tag == "" {
		sc.Tag = s.deps.DefaultTag
	}
	if sc.TickInterval <= 0 {
		sc.TickInterval = s.deps.TickInterval
	}

	if s.deps.Scenario.Loaded() {
		s.log().Warn("scenario started while another is running, ending it",
			"previous", s.deps.Scenario.ScenarioName(),
			"next", sc.Name)
		if err := s.endScenario(); err != nil {
			s.log().Error("failed to end previous scenario", "error", err)
		}
	}

	s.deps.Board.Reset()
	s.deps.EntityCache.Reset()
	s.deps.Scenario.SetScenario(&sc)

	if b := s.getBackend(); b != nil {
		if err := b.StartScenario(&sc); err != nil {
			return nil, fmt.Errorf("failed to start scenario in storage: %w", err)
		}
	}

	s.log().Info("scenario started",
		"scenarioName", sc.Name,
		"author", sc.Author,
		"tag", sc.Tag,
		"tickInterval", sc.TickInterval)
	return sc.Name, nil
}

func (s *Service) handleScenarioEnd(dispatcher.Event) (any, error) {
	if !s.deps.Scenario.Loaded() {
		return nil, ErrNoScenario
	}
	name := s.deps.Scenario.ScenarioName()
	if err := s.endScenario(); err != nil {
		return nil, err
	}
	return name, nil
}

// endScenario drains the recording queues, closes the scenario in storage,
// uploads the report if the backend made one and flushes telemetry.
func (s *Service) endScenario() error {
	s.mu.RLock()
	d := s.dispatcher
	s.mu.RUnlock()
	if d != nil {
		d.Wait()
	}

	name := s.deps.Scenario.ScenarioName()
	s.deps.Board.Reset()

	var endErr error
	if b := s.getBackend(); b != nil {
		if err := b.EndScenario(); err != nil {
			endErr = fmt.Errorf("failed to end scenario in storage: %w", err)
		} else {
			s.upload(b)
		}
	}

	if s.deps.Flusher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.deps.FlushTimeout)
		if err := s.deps.Flusher.Flush(ctx); err != nil {
			s.log().Warn("failed to flush telemetry", "error", err)
		}
		cancel()
	}

	s.deps.Scenario.Clear()
	s.log().Info("scenario ended", "scenarioName", name)
	return endErr
}

func (s *Service) upload(b storage.Backend) {
	u, ok := b.(storage.Uploadable)
	if !ok || s.deps.Uploader == nil {
		return
	}
	path := u.GetExportedFilePath()
	if path == "" {
		return
	}
	meta := u.GetExportMetadata()
	if err := s.deps.Uploader.Upload(path, meta); err != nil {
		s.log().Error("failed to upload report, kept on disk", "path", path, "error", err)
		return
	}
	s.log().Info("report uploaded", "path", path, "scenarioName", meta.ScenarioName)
}

// handleLog writes a host-side log line.
// Args: source, message[, level]
func (s *Service) handleLog(e dispatcher.Event) (any, error) {
	if len(e.Args) < 2 {
		return nil, fmt.Errorf("%w: :LOG: needs source and message", parser.ErrInvalidArgs)
	}
	util.CleanArgs(e.Args)
	level := "INFO"
	if len(e.Args) > 2 {
		level = e.Args[2]
	}
	s.deps.LogManager.WriteLog(e.Args[0], e.Args[1], level)
	return nil, nil
}

// handleMetric writes an ad-hoc point to InfluxDB.
func (s *Service) handleMetric(e dispatcher.Event) (any, error) {
	if s.deps.Influx == nil || !s.deps.Influx.Enabled() {
		return nil, nil
	}
	bucket, point, err := influx.ProcessMetricData(e.Args, util.FixEscapeQuotes, util.TrimQuotes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metric: %w", err)
	}
	if name := s.deps.Scenario.ScenarioName(); name != "" {
		point.AddTag("scenario", name)
	}
	if err := s.deps.Influx.WritePoint(context.Background(), bucket, point); err != nil {
		return nil, fmt.Errorf("failed to write metric: %w", err)
	}
	return nil, nil
}
