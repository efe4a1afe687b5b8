// Package monitor periodically samples simulator health and publishes it to a
// status file, InfluxDB and the storage backend.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/OCAP2/boarding/internal/cache"
	"github.com/OCAP2/boarding/internal/influx"
	"github.com/OCAP2/boarding/internal/logging"
	"github.com/OCAP2/boarding/internal/scenario"
	"github.com/OCAP2/boarding/internal/storage"
	"github.com/OCAP2/boarding/pkg/core"
)

// WriteStats reports on the storage backend's write path.
type WriteStats interface {
	LastWriteDuration() time.Duration
	PendingWrites() int
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager  *logging.SlogManager
	Scenario    *scenario.Context
	EntityCache *cache.EntityCache
	Writes      WriteStats      // optional
	Influx      *influx.Manager // optional
	StatusDir   string          // no status file when empty
	Interval    time.Duration
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	backend   storage.Backend
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{deps: deps}
}

// SetBackend sets the backend snapshots are recorded to, if it keeps them.
func (s *Service) SetBackend(b storage.Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backend = b
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Snapshot samples the simulator now.
func (s *Service) Snapshot() core.Performance {
	p := core.Performance{
		Time:           s.deps.Scenario.Now(),
		Tick:           s.deps.Scenario.Tick(),
		ActiveSessions: s.deps.Scenario.ActiveSessions(),
	}
	if s.deps.EntityCache != nil {
		p.Vehicles = s.deps.EntityCache.Len()
	}
	if s.deps.Writes != nil {
		p.NoticeQueue = s.deps.Writes.PendingWrites()
		p.LastWriteDuration = s.deps.Writes.LastWriteDuration()
	}
	return p
}

type status struct {
	Scenario       string  `json:"scenario"`
	Tick           uint64  `json:"tick"`
	Vehicles       int     `json:"vehicles"`
	ActiveSessions int64   `json:"activeSessions"`
	PendingWrites  int     `json:"pendingWrites"`
	LastWriteMs    float64 `json:"lastWriteMs"`
}

// Status renders a snapshot as indented JSON for the status file.
func (s *Service) Status(p core.Performance) string {
	out, err := json.MarshalIndent(status{
		Scenario:       s.deps.Scenario.ScenarioName(),
		Tick:           p.Tick,
		Vehicles:       p.Vehicles,
		ActiveSessions: p.ActiveSessions,
		PendingWrites:  p.NoticeQueue,
		LastWriteMs:    float64(p.LastWriteDuration.Microseconds()) / 1000,
	}, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "%s"}`, err)
	}
	return string(out)
}

// Publish writes one snapshot to every configured sink.
func (s *Service) Publish(p core.Performance) {
	logger := s.deps.LogManager.Logger()

	if s.deps.StatusDir != "" {
		path := filepath.Join(s.deps.StatusDir, "status.json")
		if err := os.WriteFile(path, []byte(s.Status(p)+"\n"), 0o644); err != nil {
			logger.Error("Error writing status file", "path", path, "error", err)
		}
	}

	if s.deps.Influx != nil && s.deps.Influx.Enabled() {
		point := influx.PerformancePoint(s.deps.Scenario.ScenarioName(), p)
		if err := s.deps.Influx.WritePoint(context.Background(), influx.BucketPerformance, point); err != nil {
			logger.Warn("Error writing performance point", "error", err)
		}
	}

	s.mu.RLock()
	b := s.backend
	s.mu.RUnlock()
	if r, ok := b.(storage.PerformanceRecorder); ok {
		if err := r.RecordPerformance(p); err != nil {
			logger.Error("Error recording performance", "error", err)
		}
	}
}

// Start starts the status monitor goroutine. Snapshots are only taken while a
// scenario is loaded.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if s.deps.StatusDir != "" {
		if err := os.MkdirAll(s.deps.StatusDir, 0o755); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to create status dir: %w", err)
		}
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !s.deps.Scenario.Loaded() {
					continue
				}
				s.Publish(s.Snapshot())
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for its goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.isRunning = false
	s.mu.Unlock()
	<-done
}
