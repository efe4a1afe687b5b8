package worker

import (
	"context"
	"errors"
	"log/slog"
	"slices"
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
	"github.com/OCAP2/boarding/pkg/core"
)

// ErrUnknownVehicle is returned when a command names a vehicle that was never
// registered or has been removed.
var ErrUnknownVehicle = errors.New("unknown vehicle")

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	EntityCache   *cache.EntityCache
	OutfitCache   *cache.OutfitCache
	LogManager    *logging.SlogManager
	ParserService *parser.Parser
	Scenario      *scenario.Context
	Influx        *influx.Manager // optional
	TickInterval  time.Duration   // dt of a :TICK: without argument
	Params        board.Params
	Rand          board.Rand // optional
}

// Manager runs the simulation-side command handlers. It owns the boarding core and
// serves as its notification sink and damage pipeline.
type Manager struct {
	deps  Dependencies
	board *board.Manager

	mu         sync.RWMutex
	backend    storage.Backend
	dispatcher *dispatcher.Dispatcher
}

// NewManager creates a new worker manager. backend may be nil, in which case
// nothing is recorded.
func NewManager(deps Dependencies, backend storage.Backend) (*Manager, error) {
	if deps.EntityCache == nil || deps.OutfitCache == nil || deps.Scenario == nil || deps.ParserService == nil {
		return nil, errors.New("worker: caches, scenario and parser are required")
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}

	m := &Manager{deps: deps, backend: backend}

	var err error
	m.board, err = board.NewManager(board.Dependencies{
		Registry: deps.EntityCache,
		Damage:   m,
		Rand:     deps.Rand,
		Notifier: m,
		Clock:    deps.Scenario,
		Logger:   deps.LogManager.Logger(),
	}, deps.Params)
	if err != nil {
		return nil, err
	}
	deps.Scenario.CountSessions(func() int64 { return int64(m.board.Active()) })
	return m, nil
}

// Board returns the boarding core.
func (m *Manager) Board() *board.Manager {
	return m.board
}

// SetBackend swaps the storage backend.
func (m *Manager) SetBackend(b storage.Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backend = b
}

func (m *Manager) getBackend() storage.Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backend
}

func (m *Manager) getDispatcher() *dispatcher.Dispatcher {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dispatcher
}

func (m *Manager) log() *slog.Logger {
	return m.deps.LogManager.Logger()
}

// Notify receives the boarding core's notices. With a dispatcher registered they
// are queued on :NOTICE: and recorded in order off the simulation goroutine.
func (m *Manager) Notify(n core.Notice) {
	d := m.getDispatcher()
	if d == nil {
		m.recordNotice(n)
		return
	}
	if _, err := d.Dispatch(dispatcher.Event{
		Command:   ":NOTICE:",
		Payload:   n,
		Tick:      n.Tick,
		Timestamp: n.Time,
	}); err != nil {
		m.log().Error("failed to queue notice", "kind", n.Kind, "boarder", n.Boarder, "error", err)
	}
}

// ApplyDamage is the damage pipeline. Penetration is the share of the damage that
// bypasses the shield; the shield absorbs what it can of the rest and armour takes
// the remainder. Only a hit carrying disable damage can take armour to zero and
// disable the vehicle; any other hit leaves at least the armour floor. The hit is
// recorded.
func (m *Manager) ApplyDamage(target *core.Vehicle, shooter core.VehicleID, dmg core.Damage) {
	if target == nil {
		return
	}
	absorb(target, dmg, m.deps.Params.ArmourFloor)

	hit := core.HitEvent{
		Tick:    m.deps.Scenario.Tick(),
		Time:    m.deps.Scenario.Now(),
		Victim:  target.ID,
		Shooter: shooter,
		Damage:  dmg,
	}
	m.log().Info("damage applied",
		"victim", target.ID,
		"shooter", shooter,
		"amount", dmg.Amount,
		"armour", target.Armour)

	d := m.getDispatcher()
	if d == nil {
		m.recordHit(hit)
		return
	}
	if _, err := d.Dispatch(dispatcher.Event{Command: ":HIT:", Payload: hit, Tick: hit.Tick, Timestamp: hit.Time}); err != nil {
		m.log().Error("failed to queue hit", "victim", target.ID, "error", err)
	}
}

func absorb(v *core.Vehicle, dmg core.Damage, floor float64) {
	pen := min(max(dmg.Penetration, 0), 1)
	direct := dmg.Amount * pen
	shielded := dmg.Amount - direct

	blocked := min(v.Shield, shielded)
	v.Shield -= blocked
	armour := v.Armour - (direct + shielded - blocked)

	if dmg.Disable <= 0 {
		v.Armour = max(armour, min(floor, v.Armour))
		return
	}
	v.Armour = max(armour, 0)
	if v.Armour == 0 {
		v.Set(core.FlagDisabled)
	}
}

func (m *Manager) recordNotice(n core.Notice) {
	if b := m.getBackend(); b != nil {
		if err := b.RecordNotice(&n); err != nil {
			m.log().Error("failed to record notice", "kind", n.Kind, "error", err)
		}
	}
	m.writePoint(influx.BucketBoarding, func(name string) error {
		return m.deps.Influx.WritePoint(context.Background(), influx.BucketBoarding, influx.NoticePoint(name, n))
	})
}

func (m *Manager) recordHit(h core.HitEvent) {
	if b := m.getBackend(); b != nil {
		if err := b.RecordHitEvent(&h); err != nil {
			m.log().Error("failed to record hit", "victim", h.Victim, "error", err)
		}
	}
	m.writePoint(influx.BucketBoarding, func(name string) error {
		return m.deps.Influx.WritePoint(context.Background(), influx.BucketBoarding, influx.HitPoint(name, h))
	})
}

func (m *Manager) writePoint(bucket string, write func(scenarioName string) error) {
	if m.deps.Influx == nil || !m.deps.Influx.Enabled() {
		return
	}
	if err := write(m.deps.Scenario.ScenarioName()); err != nil {
		m.log().Warn("failed to write influx point", "bucket", bucket, "error", err)
	}
}

// writeDurationProvider is implemented by backends that batch their writes.
type writeDurationProvider interface {
	LastWriteDuration() time.Duration
}

type queueLenProvider interface {
	QueueLen() int
}

// LastWriteDuration returns the duration of the backend's last write cycle, or 0
// when the backend does not batch.
func (m *Manager) LastWriteDuration() time.Duration {
	if p, ok := m.getBackend().(writeDurationProvider); ok {
		return p.LastWriteDuration()
	}
	return 0
}

// PendingWrites returns the number of rows the backend has yet to write.
func (m *Manager) PendingWrites() int {
	if p, ok := m.getBackend().(queueLenProvider); ok {
		return p.QueueLen()
	}
	return 0
}

// snapshot copies v so a backend can hold it while the live vehicle keeps changing.
func snapshot(v *core.Vehicle) *core.Vehicle {
	c := *v
	c.Cargo = slices.Clone(v.Cargo)
	c.Outfits = slices.Clone(v.Outfits)
	return &c
}
