package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Scenario{},
	&Vehicle{},
	&BoardingNotice{},
	&HitEvent{},
	&Performance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// Performance is a periodic snapshot of simulator health, written by the status monitor
type Performance struct {
	Time                time.Time `json:"time" gorm:"index:idx_time"`
	ScenarioID          uint      `json:"scenarioId" gorm:"index:idx_performance_scenario_id"`
	Scenario            Scenario  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:ScenarioID;"`
	Tick                uint64    `json:"tick"`
	Vehicles            int       `json:"vehicles"`
	ActiveSessions      int64     `json:"activeSessions"`
	NoticeQueue         int       `json:"noticeQueue"`
	LastWriteDurationMs float32   `json:"lastWriteDurationMs"`
}

func (*Performance) TableName() string {
	return "performances"
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Scenario is one simulation run
type Scenario struct {
	gorm.Model
	Name             string    `json:"name" gorm:"size:200"`
	Author           string    `json:"author" gorm:"size:200"`
	StartTime        time.Time `json:"scenarioStart" gorm:"index:idx_scenario_start"`
	TickInterval     float32   `json:"tickInterval" gorm:"default:0.1"` // seconds
	Tag              string    `json:"tag" gorm:"size:127"`
	ExtensionVersion string    `json:"extensionVersion" gorm:"size:64"`
	ExtensionBuild   string    `json:"extensionBuild" gorm:"size:64"`

	Vehicles        []Vehicle
	BoardingNotices []BoardingNotice
	HitEvents       []HitEvent
}

func (*Scenario) TableName() string {
	return "scenarios"
}

// Vehicle is a ship as first seen by the simulator.
// Uses composite primary key (ScenarioID, ObjectID)
//
// Command: :NEW:VEHICLE:
type Vehicle struct {
	ScenarioID    uint           `json:"scenarioId" gorm:"primaryKey;autoIncrement:false"`
	ObjectID      uint32         `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Scenario      Scenario       `gorm:"foreignkey:ScenarioID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     time.Time      `json:"createdAt"`
	JoinTime      time.Time      `json:"joinTime" gorm:"NOT NULL;index:idx_vehicle_join_time"`
	JoinTick      uint64         `json:"joinTick"`
	Name          string         `json:"name" gorm:"size:64"`
	IsPlayer      bool           `json:"isPlayer" gorm:"default:false"`
	Crew          int            `json:"crew"`
	Credits       int64          `json:"credits"`
	Worth         int64          `json:"worth"`
	FuelMax       float64        `json:"fuelMax"`
	CargoCapacity int            `json:"cargoCapacity"`
	HalfWidth     float32        `json:"halfWidth"`
	BaseMass      float64        `json:"baseMass"`
	Flags         uint16         `json:"flags"`
	Cargo         datatypes.JSON `json:"cargo" gorm:"type:jsonb;default:'[]'"`
	Outfits       datatypes.JSON `json:"outfits" gorm:"type:jsonb;default:'[]'"`
}

func (*Vehicle) TableName() string {
	return "vehicles"
}

// BoardingNotice is one notification raised by the boarding core: a start,
// cancel, completion, steal outcome or per-category loot result.
//
// Command: :NOTICE: (raised internally)
type BoardingNotice struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time `json:"time"`
	ScenarioID uint      `json:"scenarioId" gorm:"index:idx_boardingnotice_scenario_id"`
	Scenario   Scenario  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:ScenarioID;"`
	Tick       uint64    `json:"tick" gorm:"index:idx_boardingnotice_tick"`

	Kind      string     `json:"kind" gorm:"size:32;index:idx_boardingnotice_kind"`
	BoarderID uint32     `json:"boarder" gorm:"index:idx_boardingnotice_boarder"`
	TargetID  uint32     `json:"target"`
	Code      string     `json:"code" gorm:"size:32"`
	Category  string     `json:"category" gorm:"size:16"`
	Item      string     `json:"item" gorm:"size:64"`
	Amount    float64    `json:"amount"`
	Remaining float32    `json:"remaining"`
	Crewed    bool       `json:"crewed"`
	Position  geom.Point `json:"position"` // boarder position, EPSG:3857
}

func (*BoardingNotice) TableName() string {
	return "boarding_notices"
}

// HitEvent is a damage event routed through the damage pipeline; currently only
// steal retaliation produces them.
//
// Command: :HIT: (raised internally)
type HitEvent struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time `json:"time"`
	ScenarioID uint      `json:"scenarioId" gorm:"index:idx_hitevent_scenario_id"`
	Scenario   Scenario  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:ScenarioID;"`
	Tick       uint64    `json:"tick" gorm:"index:idx_hitevent_tick;"`

	VictimID    uint32  `json:"victim" gorm:"index:idx_hitevent_victim"`
	ShooterID   uint32  `json:"shooter" gorm:"index:idx_hitevent_shooter"`
	DamageType  string  `json:"damageType" gorm:"size:32"`
	Amount      float64 `json:"amount"`
	Penetration float64 `json:"penetration"`
	Disable     float64 `json:"disable"`
}

func (*HitEvent) TableName() string {
	return "hit_events"
}

// OutcomeCount is one row of the per-kind notice summary.
type OutcomeCount struct {
	Kind  string `json:"kind"`
	Code  string `json:"code"`
	Count int64  `json:"count"`
}

// OutcomeSummary tallies notices of a scenario by kind and code.
func OutcomeSummary(db *gorm.DB, scenarioID uint) ([]OutcomeCount, error) {
	var out []OutcomeCount
	err := db.Model(&BoardingNotice{}).
		Select("kind, code, count(*) as count").
		Where("scenario_id = ?", scenarioID).
		Group("kind, code").
		Order("kind, code").
		Scan(&out).Error
	return out, err
}

// LatestScenario returns the most recently started scenario.
func LatestScenario(db *gorm.DB) (Scenario, error) {
	var s Scenario
	err := db.Order("start_time DESC").First(&s).Error
	return s, err
}
