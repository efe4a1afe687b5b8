// Package storage defines the recording backends for boarding telemetry.
package storage

import (
	"time"

	"github.com/OCAP2/boarding/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Scenario management
	StartScenario(s *core.Scenario) error
	EndScenario() error

	// Vehicle registration, as first seen at tick
	AddVehicle(v *core.Vehicle, tick uint64, at time.Time) error

	// Event recording
	RecordNotice(n *core.Notice) error
	RecordHitEvent(h *core.HitEvent) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the report server.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.ReportMetadata
}

// PerformanceRecorder is an optional interface for backends that keep the
// status monitor's periodic snapshots.
type PerformanceRecorder interface {
	RecordPerformance(p core.Performance) error
}
