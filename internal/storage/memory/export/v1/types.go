// Package v1 contains the v1 export format for recorded boarding scenarios.
package v1

import "time"

// FormatVersion is written into every v1 export.
const FormatVersion = 1

// Export is the root JSON structure for v1 format
type Export struct {
	FormatVersion    int       `json:"formatVersion"`
	ExtensionVersion string    `json:"extensionVersion"`
	ExtensionBuild   string    `json:"extensionBuild"`
	ScenarioName     string    `json:"scenarioName"`
	Author           string    `json:"author"`
	Tag              string    `json:"tag"`
	StartTime        time.Time `json:"startTime"`
	TickInterval     float64   `json:"tickInterval"` // seconds
	EndTick          uint64    `json:"endTick"`
	Vehicles         []Vehicle `json:"vehicles"`
	Sessions         []Session `json:"sessions"`
	Notices          [][]any   `json:"notices"`
	Hits             [][]any   `json:"hits"`
	Summary          Summary   `json:"summary"`
}

// Vehicle is a vehicle as first seen during the scenario.
type Vehicle struct {
	ID            uint32   `json:"id"`
	Name          string   `json:"name"`
	IsPlayer      int      `json:"isPlayer"`
	Parent        uint32   `json:"parent,omitempty"`
	JoinTick      uint64   `json:"joinTick"`
	Crew          int      `json:"crew"`
	Credits       int64    `json:"credits"`
	Worth         int64    `json:"worth"`
	FuelMax       float64  `json:"fuelMax"`
	CargoCapacity int      `json:"cargoCapacity"`
	Outfits       []string `json:"outfits"`
}

// Session is one boarding attempt, rebuilt from its notices.
type Session struct {
	Boarder   uint32     `json:"boarder"`
	Target    uint32     `json:"target"`
	StartTick uint64     `json:"startTick"`
	EndTick   uint64     `json:"endTick,omitempty"`
	BoardTime float64    `json:"boardTime"`
	Outcome   string     `json:"outcome"`          // open, completed or cancelled
	Code      string     `json:"code,omitempty"`   // cancellation reason
	Steal     string     `json:"steal,omitempty"`  // skim, success, failure or retaliation
	Skimmed   float64    `json:"skimmed,omitempty"`
	Loot      []LootLine `json:"loot,omitempty"`
}

// LootLine is one loot result of a completed session.
type LootLine struct {
	Category string  `json:"category"`
	Result   string  `json:"result"`
	Item     string  `json:"item,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
}

// Summary aggregates the scenario's boarding outcomes.
type Summary struct {
	Started   int                `json:"started"`
	Completed int                `json:"completed"`
	Cancelled int                `json:"cancelled"`
	Rejected  int                `json:"rejected"`
	Recovered int                `json:"recovered"`
	ByCode    map[string]int     `json:"byCode"`
	Looted    map[string]float64 `json:"looted"`
	Skimmed   float64            `json:"skimmed"`
}
