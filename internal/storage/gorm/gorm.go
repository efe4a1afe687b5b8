// Package gormstorage implements the storage.Backend interface using GORM with
// internal queues and a background DB writer goroutine. It serves both the
// postgres backend and, through sqlitestorage, the embedded SQLite backend.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OCAP2/boarding/internal/config"
	"github.com/OCAP2/boarding/internal/database"
	"github.com/OCAP2/boarding/internal/geo"
	"github.com/OCAP2/boarding/internal/logging"
	"github.com/OCAP2/boarding/internal/model"
	"github.com/OCAP2/boarding/internal/model/convert"
	"github.com/OCAP2/boarding/internal/queue"
	"github.com/OCAP2/boarding/pkg/core"
)

const defaultFlushInterval = time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB        // opened from DBConfig when nil
	DBConfig      config.DBConfig // postgres connection used when DB is nil
	Projector     *geo.Projector
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Vehicles    *queue.Queue[model.Vehicle]
	Notices     *queue.Queue[model.BoardingNotice]
	HitEvents   *queue.Queue[model.HitEvent]
	Performance *queue.Queue[model.Performance]
}

func newQueues() *queues {
	return &queues{
		Vehicles:    queue.New[model.Vehicle](),
		Notices:     queue.New[model.BoardingNotice](),
		HitEvents:   queue.New[model.HitEvent](),
		Performance: queue.New[model.Performance](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps       Dependencies
	queues     *queues
	scenarioID atomic.Uint64
	lastWrite  atomic.Int64 // nanoseconds spent in the last flush

	flushMu  sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Projector == nil {
		deps.Projector = geo.NewProjector(0, 0, 1)
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init runs schema migration and starts the DB writer goroutine.
// If no DB was injected via Dependencies, it opens its own postgres connection.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.OpenPostgres(b.deps.DBConfig)
		if err != nil {
			return err
		}
		b.deps.DB = db
	}

	b.deps.LogManager.WriteLog("setupDB", "Migrating schema", "INFO")
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.wg.Add(1)
	go b.writeLoop()
	return nil
}

// Close stops the DB writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	b.wg.Wait()
	b.stopChan = nil
	return b.Flush()
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// ScenarioID returns the database ID of the scenario being recorded, or 0.
func (b *Backend) ScenarioID() uint {
	return uint(b.scenarioID.Load())
}

// LastWriteDuration reports how long the last flush took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWrite.Load())
}

// QueueLen returns the number of rows waiting to be written.
func (b *Backend) QueueLen() int {
	return b.queues.Vehicles.Len() + b.queues.Notices.Len() +
		b.queues.HitEvents.Len() + b.queues.Performance.Len()
}

// StartScenario inserts the scenario row synchronously so that queued rows can
// reference it, and assigns the DB-generated ID back to s.
func (b *Backend) StartScenario(s *core.Scenario) error {
	if b.deps.DB == nil {
		return nil
	}

	row := convert.CoreToScenario(*s)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new scenario: %w", err)
	}
	s.ID = row.ID
	b.scenarioID.Store(uint64(row.ID))
	return nil
}

// EndScenario writes everything queued for the scenario, then detaches from it.
func (b *Backend) EndScenario() error {
	err := b.Flush()
	b.scenarioID.Store(0)
	return err
}

// AddVehicle converts a core vehicle to GORM and pushes to the write queue.
func (b *Backend) AddVehicle(v *core.Vehicle, tick uint64, at time.Time) error {
	b.queues.Vehicles.Push(convert.CoreToVehicle(*v, tick, at))
	return nil
}

// RecordNotice converts and queues a boarding notice.
func (b *Backend) RecordNotice(n *core.Notice) error {
	b.queues.Notices.Push(convert.CoreToNotice(*n, b.deps.Projector))
	return nil
}

// RecordHitEvent converts and queues a hit event.
func (b *Backend) RecordHitEvent(h *core.HitEvent) error {
	b.queues.HitEvents.Push(convert.CoreToHitEvent(*h))
	return nil
}

// RecordPerformance converts and queues a status snapshot.
func (b *Backend) RecordPerformance(p core.Performance) error {
	b.queues.Performance.Push(convert.CoreToPerformance(p))
	return nil
}

// Flush writes all queued rows for the current scenario. Rows stay queued
// while no scenario is open.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	scenarioID := uint(b.scenarioID.Load())
	if b.deps.DB == nil || scenarioID == 0 {
		return nil
	}

	start := time.Now()
	db := b.deps.DB
	log := b.deps.LogManager.WriteLog

	// vehicles first, notices and hits reference them by ID
	err := errors.Join(
		writeQueue(db, b.queues.Vehicles, "vehicles", log, func(r *model.Vehicle) { r.ScenarioID = scenarioID }, clause.OnConflict{DoNothing: true}),
		writeQueue(db, b.queues.Notices, "boarding notices", log, func(r *model.BoardingNotice) { r.ScenarioID = scenarioID }),
		writeQueue(db, b.queues.HitEvents, "hit events", log, func(r *model.HitEvent) { r.ScenarioID = scenarioID }),
		writeQueue(db, b.queues.Performance, "performance", log, func(r *model.Performance) { r.ScenarioID = scenarioID }),
	)
	b.lastWrite.Store(int64(time.Since(start)))
	return err
}

// writeQueue writes all items from a queue to the database in a transaction.
// A failed batch is put back at the front of the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string), stamp func(*T), conds ...clause.Expression) error {
	items := q.Take(0)
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		stamp(&items[i])
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if len(conds) > 0 {
			tx = tx.Clauses(conds...)
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		q.Requeue(items...)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// writeLoop periodically drains the queues into the DB until Close.
func (b *Backend) writeLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			_ = b.Flush()
		}
	}
}
