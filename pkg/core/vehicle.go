// pkg/core/vehicle.go
package core

import "math"

// VehicleID is the simulation's identifier for a vehicle. Zero means "none".
type VehicleID uint32

// VehicleFlags is a bitmask of vehicle status flags.
type VehicleFlags uint16

const (
	FlagDisabled  VehicleFlags = 1 << iota // systems knocked out
	FlagNoBoard                            // can never be boarded
	FlagBoardable                          // can be boarded while still active
	FlagBoarded                            // already looted by someone
	FlagBoarding                           // currently boarding another vehicle
	FlagCooldown                           // running an active cooldown
)

// cargoUnitMass is the mass of one unit of any commodity.
const cargoUnitMass = 1.0

// CargoLine is one entry of a cargo manifest.
type CargoLine struct {
	Commodity string `json:"commodity"`
	Quantity  int    `json:"quantity"`
}

// Vehicle is a ship in the simulation. The registry owns it; everything else refers
// to it by ID.
type Vehicle struct {
	ID       VehicleID `json:"id"`
	Name     string    `json:"name"`
	IsPlayer bool      `json:"isPlayer"`
	ParentID VehicleID `json:"parentId"`
	TargetID VehicleID `json:"targetId"`

	Crew    int   `json:"crew"`
	Credits int64 `json:"credits"`
	Worth   int64 `json:"worth"`

	Fuel    float64 `json:"fuel"`
	FuelMax float64 `json:"fuelMax"`

	CargoCapacity int          `json:"cargoCapacity"`
	Cargo         []CargoLine  `json:"cargo"`
	Outfits       []OutfitSlot `json:"outfits"`

	Flags     VehicleFlags `json:"flags"`
	BoardedBy VehicleID    `json:"boardedBy"`

	Position  Vec2    `json:"position"`
	Velocity  Vec2    `json:"velocity"`
	HalfWidth float64 `json:"halfWidth"`

	Shield       float64 `json:"shield"`
	Armour       float64 `json:"armour"`
	DisableTimer float64 `json:"disableTimer"`

	BaseMass float64 `json:"baseMass"`

	// caches, see RecomputeMass and RecomputeWeapons
	Mass       float64 `json:"mass"`
	ArmedSlots int     `json:"armedSlots"`
}

// Has reports whether all bits of f are set.
func (v *Vehicle) Has(f VehicleFlags) bool {
	return v.Flags&f == f
}

// Set sets the flag bits.
func (v *Vehicle) Set(f VehicleFlags) {
	v.Flags |= f
}

// Clear clears the flag bits.
func (v *Vehicle) Clear(f VehicleFlags) {
	v.Flags &^= f
}

// IsDisabled reports whether the vehicle is disabled.
func (v *Vehicle) IsDisabled() bool {
	return v.Has(FlagDisabled)
}

// Stun disables the vehicle for the given number of seconds.
func (v *Vehicle) Stun(seconds float64) {
	v.Set(FlagDisabled)
	v.DisableTimer = seconds
}

// Tick advances the vehicle by dt seconds: moves it along its velocity and counts
// down a stun. A disable without a timer (combat disable) is left alone. A
// non-positive or non-finite dt is ignored.
func (v *Vehicle) Tick(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return
	}
	v.Position = v.Position.Add(v.Velocity.Scale(dt))
	if v.DisableTimer > 0 {
		v.DisableTimer -= dt
		if v.DisableTimer <= 0 {
			v.DisableTimer = 0
			v.Clear(FlagDisabled)
		}
	}
}

// CargoUsed returns the number of cargo units on board.
func (v *Vehicle) CargoUsed() int {
	used := 0
	for _, c := range v.Cargo {
		used += c.Quantity
	}
	return used
}

// CargoFree returns the remaining cargo space.
func (v *Vehicle) CargoFree() int {
	free := v.CargoCapacity - v.CargoUsed()
	if free < 0 {
		return 0
	}
	return free
}

// AddCargo adds up to qty units of commodity, bounded by free space.
// Returns the amount actually added.
func (v *Vehicle) AddCargo(commodity string, qty int) int {
	if qty <= 0 {
		return 0
	}
	q := min(qty, v.CargoFree())
	if q == 0 {
		return 0
	}
	for i := range v.Cargo {
		if v.Cargo[i].Commodity == commodity {
			v.Cargo[i].Quantity += q
			return q
		}
	}
	v.Cargo = append(v.Cargo, CargoLine{Commodity: commodity, Quantity: q})
	return q
}

// RemoveCargo removes up to qty units of commodity. Emptied lines are dropped from the
// manifest. Returns the amount actually removed.
func (v *Vehicle) RemoveCargo(commodity string, qty int) int {
	if qty <= 0 {
		return 0
	}
	for i := range v.Cargo {
		if v.Cargo[i].Commodity != commodity {
			continue
		}
		q := min(qty, v.Cargo[i].Quantity)
		v.Cargo[i].Quantity -= q
		if v.Cargo[i].Quantity <= 0 {
			v.Cargo = append(v.Cargo[:i], v.Cargo[i+1:]...)
		}
		return q
	}
	return 0
}

// AmmoCount returns the ammunition loaded across all launchers.
func (v *Vehicle) AmmoCount() int {
	n := 0
	for _, s := range v.Outfits {
		if s.IsLauncher() {
			n += s.Ammo
		}
	}
	return n
}

// MaxAmmo returns the aggregate ammunition capacity of all launchers.
func (v *Vehicle) MaxAmmo() int {
	n := 0
	for _, s := range v.Outfits {
		if s.IsLauncher() {
			n += s.Outfit.AmmoCapacity
		}
	}
	return n
}

// RecomputeMass refreshes the cached total mass from hull, outfits, ammo and cargo.
func (v *Vehicle) RecomputeMass() {
	m := v.BaseMass
	for _, s := range v.Outfits {
		if s.Outfit == nil {
			continue
		}
		m += s.Outfit.Mass + float64(s.Ammo)*s.Outfit.AmmoMass
	}
	m += float64(v.CargoUsed()) * cargoUnitMass
	v.Mass = m
}

// RecomputeWeapons refreshes the cached count of slots able to fire.
// Launchers only count while loaded.
func (v *Vehicle) RecomputeWeapons() {
	n := 0
	for _, s := range v.Outfits {
		if s.Outfit == nil {
			continue
		}
		switch s.Outfit.Kind {
		case OutfitBolt:
			n++
		case OutfitLauncher:
			if s.Ammo > 0 {
				n++
			}
		}
	}
	v.ArmedSlots = n
}
