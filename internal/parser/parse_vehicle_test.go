package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/boarding/pkg/core"
)

func vehicleArgs() []string {
	return []string{
		`"12"`, `"Mule"`, "false", "6.00", "1500", "42000",
		"80", "400", "60", "25.5", "120", "300", "450",
		`["disabled","Boardable","hyperdrive"]`,
		`[["Food",10],["Ore",5.0]]`,
		`[["Banshee Launcher",20],["Laser Cannon",0]]`,
	}
}

func TestParseVehicle(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseVehicle(vehicleArgs())
	require.NoError(t, err)

	v := got.Vehicle
	assert.Equal(t, core.VehicleID(12), v.ID)
	assert.Equal(t, "Mule", v.Name)
	assert.False(t, v.IsPlayer)
	assert.Equal(t, 6, v.Crew)
	assert.Equal(t, int64(1500), v.Credits)
	assert.Equal(t, int64(42000), v.Worth)
	assert.Equal(t, 80.0, v.Fuel)
	assert.Equal(t, 400.0, v.FuelMax)
	assert.Equal(t, 60, v.CargoCapacity)
	assert.Equal(t, 25.5, v.HalfWidth)
	assert.Equal(t, 120.0, v.BaseMass)
	assert.Equal(t, 300.0, v.Shield)
	assert.Equal(t, 450.0, v.Armour)
	assert.True(t, v.Has(core.FlagDisabled|core.FlagBoardable))
	assert.False(t, v.Has(core.FlagNoBoard))
	assert.Equal(t, []core.CargoLine{{Commodity: "Food", Quantity: 10}, {Commodity: "Ore", Quantity: 5}}, v.Cargo)
	assert.Equal(t, []OutfitRef{{Name: "Banshee Launcher", Ammo: 20}, {Name: "Laser Cannon", Ammo: 0}}, got.Outfits)
}

func TestParseVehicle_Parent(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseVehicle(append(vehicleArgs(), `"3"`))
	require.NoError(t, err)
	assert.Equal(t, core.VehicleID(3), got.Vehicle.ParentID)

	got, err = p.ParseVehicle(append(vehicleArgs(), ""))
	require.NoError(t, err)
	assert.Zero(t, got.Vehicle.ParentID)

	_, err = p.ParseVehicle(append(vehicleArgs(), "12"))
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = p.ParseVehicle(append(vehicleArgs(), "fleet"))
	assert.ErrorContains(t, err, "parentId")
}

func TestParseVehicle_MinimalArgs(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseVehicle(vehicleArgs()[:13])
	require.NoError(t, err)

	assert.Equal(t, core.VehicleFlags(0), got.Vehicle.Flags)
	assert.Empty(t, got.Vehicle.Cargo)
	assert.Empty(t, got.Outfits)
}

func TestParseVehicle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(args []string) []string
	}{
		{"too few args", func(a []string) []string { return a[:5] }},
		{"zero id", func(a []string) []string { a[0] = "0"; return a }},
		{"bad player flag", func(a []string) []string { a[2] = "maybe"; return a }},
		{"fractional crew", func(a []string) []string { a[3] = "2.5"; return a }},
		{"bad fuel", func(a []string) []string { a[6] = "lots"; return a }},
		{"bad cargo", func(a []string) []string { a[14] = `[["Food"]]`; return a }},
		{"negative ammo", func(a []string) []string { a[15] = `[["Launcher",-1]]`; return a }},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseVehicle(tt.mutate(vehicleArgs()))
			assert.Error(t, err)
		})
	}
}

func TestParseOutfit(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseOutfit([]string{`"Banshee Launcher"`, "Launcher", "8", `"Banshee Rocket"`, "40.0", "0.25"})
	require.NoError(t, err)

	assert.Equal(t, core.Outfit{
		Name:         "Banshee Launcher",
		Kind:         core.OutfitLauncher,
		Mass:         8,
		AmmoType:     "Banshee Rocket",
		AmmoCapacity: 40,
		AmmoMass:     0.25,
	}, got)
}

func TestParseOutfit_Bolt(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseOutfit([]string{"Laser Cannon", "bolt", "4"})
	require.NoError(t, err)

	assert.Equal(t, core.OutfitBolt, got.Kind)
	assert.Empty(t, got.AmmoType)

	_, err = p.ParseOutfit([]string{"", "bolt", "4"})
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestParseVehicleState(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseVehicleState([]string{"12", "100.5", "-20", "3", "4", "0", "12.5", "70", "true"})
	require.NoError(t, err)

	assert.Equal(t, ParsedVehicleState{
		ID:       12,
		Position: core.Vec2{X: 100.5, Y: -20},
		Velocity: core.Vec2{X: 3, Y: 4},
		Shield:   0,
		Armour:   12.5,
		Fuel:     70,
		Disabled: true,
	}, got)

	_, err = p.ParseVehicleState([]string{"12", "x", "0", "0", "0", "0", "0", "0", "false"})
	assert.Error(t, err)
}

func TestParseTarget(t *testing.T) {
	p := newTestParser()

	v, tg, err := p.ParseTarget([]string{"1", "2.00"})
	require.NoError(t, err)
	assert.Equal(t, core.VehicleID(1), v)
	assert.Equal(t, core.VehicleID(2), tg)

	_, _, err = p.ParseTarget([]string{"1"})
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestParseID(t *testing.T) {
	p := newTestParser()

	id, err := p.ParseID([]string{`"7"`})
	require.NoError(t, err)
	assert.Equal(t, core.VehicleID(7), id)

	_, err = p.ParseID(nil)
	assert.ErrorIs(t, err, ErrInvalidArgs)
}
