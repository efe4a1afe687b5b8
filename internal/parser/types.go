package parser

import "github.com/OCAP2/boarding/pkg/core"

// OutfitRef names a catalogued outfit mounted on a vehicle, with its loaded ammo.
// The worker layer resolves the name through the OutfitCache.
type OutfitRef struct {
	Name string
	Ammo int
}

// ParsedVehicle holds a new vehicle whose outfits still need resolving.
type ParsedVehicle struct {
	Vehicle core.Vehicle
	Outfits []OutfitRef
}

// ParsedVehicleState is a per-tick kinematic and status update for one vehicle.
type ParsedVehicleState struct {
	ID       core.VehicleID
	Position core.Vec2
	Velocity core.Vec2
	Shield   float64
	Armour   float64
	Fuel     float64
	Disabled bool
}

// ParsedStart is a request to start boarding the boarder's current target.
type ParsedStart struct {
	Boarder core.VehicleID
	Loot    []string
}

// ParsedCancel is an external cancellation of a boarding session.
type ParsedCancel struct {
	Boarder core.VehicleID
	Reason  core.OutcomeCode
}
