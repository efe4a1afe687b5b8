// Package board implements the boarding protocol: eligibility, the timed boarding
// session, steal resolution and loot transfer.
//
// The package is driven by the simulation loop from a single goroutine. Vehicles are
// never held across calls; every access resolves them by ID through the Registry,
// since a target may be destroyed or claimed by someone else between ticks.
package board

import (
	"log/slog"
	"time"

	"github.com/OCAP2/boarding/internal/config"
	"github.com/OCAP2/boarding/pkg/core"
)

// Params tunes the boarding protocol.
type Params struct {
	MinTime          float64 // seconds
	MaxTime          float64 // seconds
	ProximityFactor  float64 // multiplied by the target's half-width
	MaxRelativeSpeed float64
	SkimFraction     float64 // share of the target's worth taken by a flat skim
	StunDuration     float64 // seconds the boarder is stunned when the target flees

	RetaliationChance float64
	RetaliationDamage core.Damage
	ArmourFloor       float64
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		MinTime:          2,
		MaxTime:          15,
		ProximityFactor:  0.8,
		MaxRelativeSpeed: 25,
		SkimFraction:     0.1,
		StunDuration:     1,

		RetaliationChance: 0.4,
		RetaliationDamage: core.Damage{
			Type:        "normal",
			Amount:      100,
			Penetration: 1,
			Disable:     0,
		},
		ArmourFloor: 1,
	}
}

// ParamsFromConfig builds Params from the board section of the config. Zero time
// bounds keep the stock values.
func ParamsFromConfig(cfg config.BoardConfig) Params {
	p := DefaultParams()
	if cfg.MinTime > 0 {
		p.MinTime = cfg.MinTime
	}
	if cfg.MaxTime > 0 {
		p.MaxTime = cfg.MaxTime
	}
	p.ProximityFactor = cfg.ProximityFactor
	p.MaxRelativeSpeed = cfg.MaxRelativeSpeed
	p.SkimFraction = cfg.SkimFraction
	p.StunDuration = cfg.StunDuration
	p.RetaliationChance = cfg.Retaliation.Chance
	p.RetaliationDamage = core.Damage{
		Type:        cfg.Retaliation.DamageType,
		Amount:      cfg.Retaliation.Damage,
		Penetration: cfg.Retaliation.Penetration,
	}
	p.ArmourFloor = cfg.Retaliation.ArmourFloor
	return p
}

// Registry resolves vehicles by ID.
type Registry interface {
	Get(id core.VehicleID) (*core.Vehicle, bool)
	// Refresh recomputes a vehicle's mass and weapon caches after its loadout changed.
	Refresh(v *core.Vehicle)
	// Remove drops a vehicle from the simulation, e.g. an escort docked by its owner.
	Remove(id core.VehicleID) bool
}

// DamageApplier is the damage pipeline.
type DamageApplier interface {
	ApplyDamage(target *core.Vehicle, shooter core.VehicleID, dmg core.Damage)
}

// Rand is a uniform source in [0,1). *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Notifier receives user-feedback notices.
type Notifier interface {
	Notify(n core.Notice)
}

// Clock stamps notices with the simulation tick and wall time.
type Clock interface {
	Tick() uint64
	Now() time.Time
}

// WorthFunc values a vehicle for the flat skim.
type WorthFunc func(v *core.Vehicle) int64

// Dependencies holds the collaborators of a Manager. Only Registry is required.
type Dependencies struct {
	Registry Registry
	Damage   DamageApplier
	Rand     Rand
	Notifier Notifier
	Worth    WorthFunc
	Clock    Clock
	Logger   *slog.Logger
}

// VehicleWorth is the default WorthFunc: the vehicle's own Worth field.
func VehicleWorth(v *core.Vehicle) int64 {
	return v.Worth
}

type discardNotifier struct{}

func (discardNotifier) Notify(core.Notice) {}

type wallClock struct{}

func (wallClock) Tick() uint64   { return 0 }
func (wallClock) Now() time.Time { return time.Now() }
