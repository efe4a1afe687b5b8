// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the SQLite-specific concerns are creating the
// in-memory DB and dumping it to disk.
package sqlitestorage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/OCAP2/boarding/internal/database"
	"github.com/OCAP2/boarding/internal/geo"
	"github.com/OCAP2/boarding/internal/logging"
	gormstorage "github.com/OCAP2/boarding/internal/storage/gorm"
	"github.com/OCAP2/boarding/pkg/core"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	OutputDir    string
	DumpInterval time.Duration
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db  *gorm.DB
	cfg Config
	log *logging.SlogManager

	mu       sync.Mutex
	dumpPath string
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new SQLite storage backend.
func New(cfg Config, proj *geo.Projector, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.OpenSqlite("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:         db,
			Projector:  proj,
			LogManager: logManager,
		}),
		db:  db,
		cfg: cfg,
		log: logManager,
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	b.stopChan = make(chan struct{})
	if b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}
	return nil
}

// Close stops the dump goroutine, flushes the GORM backend and writes a last dump.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		b.wg.Wait()
		b.stopChan = nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	return b.dump()
}

// StartScenario records the scenario and picks the file it is dumped to.
func (b *Backend) StartScenario(s *core.Scenario) error {
	if err := b.Backend.StartScenario(s); err != nil {
		return err
	}

	b.mu.Lock()
	b.dumpPath = b.filePath(s)
	b.mu.Unlock()
	return nil
}

// EndScenario flushes the scenario and dumps it to disk.
func (b *Backend) EndScenario() error {
	if err := b.Backend.EndScenario(); err != nil {
		return err
	}
	return b.dump()
}

// DumpPath returns the file the current scenario is dumped to.
func (b *Backend) DumpPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dumpPath
}

// filePath builds <outputDir>/<name>_<yyyymmdd_hhmmss>.db.
func (b *Backend) filePath(s *core.Scenario) string {
	name := strings.ReplaceAll(s.Name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	return filepath.Join(b.cfg.OutputDir, fmt.Sprintf("%s_%s.db", name, s.StartTime.Format("20060102_150405")))
}

// dump snapshots the in-memory DB to the scenario's file. A no-op before the
// first scenario.
func (b *Backend) dump() error {
	path := b.DumpPath()
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	start := time.Now()
	if err := database.DumpToDisk(b.db, path); err != nil {
		b.log.WriteLog("sqlite:dump", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
		return err
	}
	b.log.WriteLog("sqlite:dump", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Flush()
			_ = b.dump()
		}
	}
}
