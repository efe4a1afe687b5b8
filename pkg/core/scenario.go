// pkg/core/scenario.go
package core

import "time"

// Scenario is one simulation run; the unit everything is recorded against.
type Scenario struct {
	ID               uint
	Name             string
	Author           string
	StartTime        time.Time
	TickInterval     time.Duration
	Tag              string
	ExtensionVersion string
	ExtensionBuild   string
}

// ReportMetadata holds the fields sent along with an uploaded scenario report.
type ReportMetadata struct {
	ScenarioName string
	Tag          string
	Duration     float64 // seconds of simulated time
	Sessions     int
}

// Performance is a periodic health snapshot taken by the status monitor.
type Performance struct {
	Time              time.Time
	Tick              uint64
	Vehicles          int
	ActiveSessions    int64
	NoticeQueue       int
	LastWriteDuration time.Duration
}
