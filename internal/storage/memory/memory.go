// Package memory keeps a scenario's boarding telemetry in memory and exports
// it as a v1 JSON report when the scenario ends.
package memory

import (
	"sync"
	"time"

	"github.com/OCAP2/boarding/internal/config"
	"github.com/OCAP2/boarding/pkg/core"
)

// VehicleRecord is a vehicle as first seen by the recorder
type VehicleRecord struct {
	Vehicle  core.Vehicle
	JoinTick uint64
	JoinTime time.Time
}

// Backend stores scenario data in memory and exports to JSON
type Backend struct {
	cfg      config.MemoryConfig
	scenario *core.Scenario

	vehicles map[core.VehicleID]*VehicleRecord
	order    []core.VehicleID // registration order
	notices  []core.Notice
	hits     []core.HitEvent

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		vehicles: make(map[core.VehicleID]*VehicleRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartScenario begins recording a new scenario
func (b *Backend) StartScenario(s *core.Scenario) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.scenario = s
	b.vehicles = make(map[core.VehicleID]*VehicleRecord)
	b.order = nil
	b.notices = nil
	b.hits = nil
	b.lastExportPath = ""

	return nil
}

// EndScenario finalizes and exports the scenario data
func (b *Backend) EndScenario() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.scenario == nil {
		return nil
	}
	return b.exportJSON()
}

// AddVehicle registers a vehicle. A vehicle re-added under the same ID keeps
// its original join tick.
func (b *Backend) AddVehicle(v *core.Vehicle, tick uint64, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if rec, ok := b.vehicles[v.ID]; ok {
		rec.Vehicle = *v
		return nil
	}
	b.vehicles[v.ID] = &VehicleRecord{Vehicle: *v, JoinTick: tick, JoinTime: at}
	b.order = append(b.order, v.ID)
	return nil
}

// RecordNotice appends a boarding notice
func (b *Backend) RecordNotice(n *core.Notice) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.notices = append(b.notices, *n)
	return nil
}

// RecordHitEvent appends a hit event, numbering it within the scenario
func (b *Backend) RecordHitEvent(h *core.HitEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h.ID = uint(len(b.hits) + 1)
	b.hits = append(b.hits, *h)
	return nil
}

// Vehicle returns a copy of the recorded vehicle.
func (b *Backend) Vehicle(id core.VehicleID) (VehicleRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.vehicles[id]
	if !ok {
		return VehicleRecord{}, false
	}
	return *rec, true
}

// Notices returns a copy of the recorded notices.
func (b *Backend) Notices() []core.Notice {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.Notice(nil), b.notices...)
}

// HitEvents returns a copy of the recorded hit events.
func (b *Backend) HitEvents() []core.HitEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.HitEvent(nil), b.hits...)
}

// GetExportedFilePath returns the path of the last export, or "" before one.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata returns upload metadata for the current scenario.
// Duration is the simulated time up to the last recorded tick.
func (b *Backend) GetExportMetadata() core.ReportMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.scenario == nil {
		return core.ReportMetadata{}
	}

	var endTick uint64
	sessions := 0
	for _, n := range b.notices {
		endTick = max(endTick, n.Tick)
		if n.Kind == core.NoticeStarted {
			sessions++
		}
	}
	for _, h := range b.hits {
		endTick = max(endTick, h.Tick)
	}
	for _, rec := range b.vehicles {
		endTick = max(endTick, rec.JoinTick)
	}

	return core.ReportMetadata{
		ScenarioName: b.scenario.Name,
		Tag:          b.scenario.Tag,
		Duration:     float64(endTick) * b.scenario.TickInterval.Seconds(),
		Sessions:     sessions,
	}
}
