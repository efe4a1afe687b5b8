package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/boarding/pkg/core"
)

func TestLoot_Credits(t *testing.T) {
	b, tg := newPair()
	b.Credits = 100
	tg.Credits = 750

	res := Loot(core.LootCredits, b, tg, nil)

	assert.Equal(t, core.NoticeLootTaken, res.Status)
	assert.Equal(t, core.LootCredits, res.Category)
	assert.Equal(t, 750.0, res.Total())
	assert.Equal(t, int64(850), b.Credits)
	assert.Equal(t, int64(0), tg.Credits)
}

func TestLoot_CreditsEmpty(t *testing.T) {
	b, tg := newPair()
	b.Credits = 100

	res := Loot(core.LootCredits, b, tg, nil)

	assert.Equal(t, core.NoticeLootEmpty, res.Status)
	assert.Equal(t, int64(100), b.Credits)
}

func TestLoot_CargoBoundedByFreeSpace(t *testing.T) {
	b, tg := newPair()
	b.CargoCapacity = 10
	tg.CargoCapacity = 50
	tg.Cargo = []core.CargoLine{
		{Commodity: "Food", Quantity: 6},
		{Commodity: "Ore", Quantity: 8},
	}

	res := Loot(core.LootCargo, b, tg, nil)

	assert.Equal(t, core.NoticeLootTaken, res.Status)
	assert.Equal(t, []Transfer{{Item: "Food", Amount: 6}, {Item: "Ore", Amount: 4}}, res.Transfers)
	assert.Equal(t, 0, b.CargoFree())
	assert.Equal(t, []core.CargoLine{{Commodity: "Ore", Quantity: 4}}, tg.Cargo)
}

func TestLoot_CargoRefreshesMass(t *testing.T) {
	b, tg := newPair()
	b.CargoCapacity = 10
	tg.CargoCapacity = 10
	tg.Cargo = []core.CargoLine{{Commodity: "Ore", Quantity: 6}}
	b.RecomputeMass()
	tg.RecomputeMass()
	before := b.Mass
	reg := newTestRegistry(b, tg)

	Loot(core.LootCargo, b, tg, reg)

	assert.ElementsMatch(t, []core.VehicleID{b.ID, tg.ID}, reg.refreshed)
	assert.Greater(t, b.Mass, before)
	assert.Equal(t, tg.BaseMass, tg.Mass)
}

func TestLoot_CargoMergesExistingLine(t *testing.T) {
	b, tg := newPair()
	b.CargoCapacity = 20
	b.Cargo = []core.CargoLine{{Commodity: "Food", Quantity: 2}}
	tg.Cargo = []core.CargoLine{{Commodity: "Food", Quantity: 5}}
	tg.CargoCapacity = 5

	res := Loot(core.LootCargo, b, tg, nil)

	assert.Equal(t, 5.0, res.Total())
	assert.Equal(t, []core.CargoLine{{Commodity: "Food", Quantity: 7}}, b.Cargo)
	assert.Empty(t, tg.Cargo)
}

func TestLoot_CargoNoRoom(t *testing.T) {
	b, tg := newPair()
	b.CargoCapacity = 3
	b.Cargo = []core.CargoLine{{Commodity: "Ore", Quantity: 3}}
	tg.CargoCapacity = 5
	tg.Cargo = []core.CargoLine{{Commodity: "Food", Quantity: 5}}

	res := Loot(core.LootCargo, b, tg, nil)

	assert.Equal(t, core.NoticeLootNoRoom, res.Status)
	assert.Equal(t, 5, tg.CargoUsed())
}

func TestLoot_CargoEmpty(t *testing.T) {
	b, tg := newPair()
	b.CargoCapacity = 3

	assert.Equal(t, core.NoticeLootEmpty, Loot(core.LootCargo, b, tg, nil).Status)
}

func TestLoot_FuelRemainderStaysWithTarget(t *testing.T) {
	b, tg := newPair()
	b.Fuel, b.FuelMax = 90, 100
	tg.Fuel, tg.FuelMax = 50, 200

	res := Loot(core.LootFuel, b, tg, nil)

	assert.Equal(t, core.NoticeLootTaken, res.Status)
	assert.Equal(t, 100.0, b.Fuel)
	assert.Equal(t, 40.0, tg.Fuel)
	assert.Equal(t, 10.0, res.Total())
}

func TestLoot_FuelNoOps(t *testing.T) {
	b, tg := newPair()
	b.Fuel, b.FuelMax = 100, 100
	tg.Fuel = 50

	assert.Equal(t, core.NoticeLootAtCapacity, Loot(core.LootFuel, b, tg, nil).Status)

	b.Fuel = 10
	tg.Fuel = 0
	assert.Equal(t, core.NoticeLootEmpty, Loot(core.LootFuel, b, tg, nil).Status)
}

func TestLoot_AmmoNeverExceedsAggregateCeiling(t *testing.T) {
	b, tg := newPair()
	b.Outfits = []core.OutfitSlot{
		{Outfit: launcher("missile", 10), Ammo: 5},
		{Outfit: launcher("torpedo", 10), Ammo: 5},
	}
	tg.Outfits = []core.OutfitSlot{
		{Outfit: launcher("missile", 40), Ammo: 30},
		{Outfit: launcher("torpedo", 40), Ammo: 30},
	}
	reg := newTestRegistry(b, tg)

	res := Loot(core.LootAmmo, b, tg, reg)

	assert.Equal(t, core.NoticeLootTaken, res.Status)
	assert.Equal(t, 10.0, res.Total())
	assert.Equal(t, b.MaxAmmo(), b.AmmoCount())
	assert.Equal(t, 50, tg.AmmoCount())
	assert.ElementsMatch(t, []core.VehicleID{b.ID, tg.ID}, reg.refreshed)
}

func TestLoot_AmmoBoundedBySlotCapacity(t *testing.T) {
	b, tg := newPair()
	b.Outfits = []core.OutfitSlot{
		{Outfit: launcher("missile", 10), Ammo: 5},
		{Outfit: launcher("torpedo", 10)},
	}
	tg.Outfits = []core.OutfitSlot{{Outfit: launcher("missile", 40), Ammo: 30}}

	res := Loot(core.LootAmmo, b, tg, nil)

	assert.Equal(t, core.NoticeLootTaken, res.Status)
	assert.Equal(t, []Transfer{{Item: "missile", Amount: 5}}, res.Transfers)
	assert.Equal(t, 10, b.Outfits[0].Ammo)
	assert.Equal(t, 0, b.Outfits[1].Ammo)
	assert.Equal(t, 25, tg.AmmoCount())
}

func TestLoot_AmmoMatchingSlotFull(t *testing.T) {
	b, tg := newPair()
	b.Outfits = []core.OutfitSlot{
		{Outfit: launcher("missile", 10), Ammo: 10},
		{Outfit: launcher("torpedo", 10)},
	}
	tg.Outfits = []core.OutfitSlot{{Outfit: launcher("missile", 10), Ammo: 6}}

	res := Loot(core.LootAmmo, b, tg, nil)

	assert.Equal(t, core.NoticeLootIncompatible, res.Status)
	assert.Equal(t, 10, b.Outfits[0].Ammo)
	assert.Equal(t, 6, tg.AmmoCount())
}

func TestLoot_AmmoAcrossSlots(t *testing.T) {
	b, tg := newPair()
	b.Outfits = []core.OutfitSlot{
		{Outfit: launcher("missile", 10)},
		{Outfit: &core.Outfit{Name: "laser", Kind: core.OutfitBolt}},
		{Outfit: launcher("missile", 10)},
	}
	tg.Outfits = []core.OutfitSlot{
		{Outfit: launcher("missile", 10), Ammo: 4},
		{Outfit: launcher("missile", 10), Ammo: 6},
	}

	res := Loot(core.LootAmmo, b, tg, nil)

	assert.Equal(t, []Transfer{{Item: "missile", Amount: 10}}, res.Transfers)
	assert.Equal(t, 10, b.AmmoCount())
	assert.Equal(t, 0, tg.AmmoCount())
	// bolt plus the loaded launcher
	assert.Equal(t, 2, b.ArmedSlots)
	assert.Equal(t, 0, tg.ArmedSlots)
}

func TestLoot_AmmoIncompatible(t *testing.T) {
	b, tg := newPair()
	b.Outfits = []core.OutfitSlot{{Outfit: launcher("missile", 10)}}
	tg.Outfits = []core.OutfitSlot{{Outfit: launcher("torpedo", 10), Ammo: 8}}

	res := Loot(core.LootAmmo, b, tg, nil)

	assert.Equal(t, core.NoticeLootIncompatible, res.Status)
	assert.Equal(t, 8, tg.AmmoCount())
}

func TestLoot_AmmoNoOps(t *testing.T) {
	b, tg := newPair()
	b.Outfits = []core.OutfitSlot{{Outfit: launcher("missile", 10), Ammo: 10}}
	tg.Outfits = []core.OutfitSlot{{Outfit: launcher("missile", 10)}}

	assert.Equal(t, core.NoticeLootEmpty, Loot(core.LootAmmo, b, tg, nil).Status)

	tg.Outfits[0].Ammo = 3
	assert.Equal(t, core.NoticeLootAtCapacity, Loot(core.LootAmmo, b, tg, nil).Status)
}

func TestLootable(t *testing.T) {
	_, tg := newPair()
	assert.Empty(t, Lootable(tg))

	tg.Credits = 1
	tg.Fuel = 3
	tg.Outfits = []core.OutfitSlot{{Outfit: launcher("missile", 10), Ammo: 1}}

	assert.Equal(t, []core.LootCategory{core.LootCredits, core.LootFuel, core.LootAmmo}, Lootable(tg))
	assert.Nil(t, Lootable(nil))
}

func TestSkim(t *testing.T) {
	b, tg := newPair()
	tg.Credits = 500

	got := Skim(b, tg, func(*core.Vehicle) int64 { return 2000 }, 0.1)

	assert.Equal(t, int64(200), got)
	assert.Equal(t, int64(200), b.Credits)
	assert.Equal(t, int64(300), tg.Credits)
}

func TestSkim_BoundedByBalance(t *testing.T) {
	b, tg := newPair()
	tg.Credits = 50
	tg.Worth = 2000

	got := Skim(b, tg, nil, 0.1)

	require.Equal(t, int64(50), got)
	assert.Equal(t, int64(0), tg.Credits)
}
