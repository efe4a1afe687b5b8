package board

import (
	"github.com/OCAP2/boarding/pkg/core"
)

// Transfer is one movement of goods from the target to the boarder.
type Transfer struct {
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

// LootResult is the outcome of looting one category. Status is NoticeLootTaken when
// something moved, or the notice kind explaining why nothing did.
type LootResult struct {
	Category  core.LootCategory `json:"category"`
	Status    core.NoticeKind   `json:"status"`
	Transfers []Transfer        `json:"transfers,omitempty"`
}

// Total sums the transferred amounts.
func (r LootResult) Total() float64 {
	var t float64
	for _, tr := range r.Transfers {
		t += tr.Amount
	}
	return t
}

type looter func(boarder, target *core.Vehicle, reg Registry) LootResult

var looters = map[core.LootCategory]looter{
	core.LootCredits: lootCredits,
	core.LootCargo:   lootCargo,
	core.LootFuel:    lootFuel,
	core.LootAmmo:    lootAmmo,
}

// Loot moves one category of goods from target to boarder. Each category is
// independent; a no-op in one never affects another.
func Loot(cat core.LootCategory, boarder, target *core.Vehicle, reg Registry) LootResult {
	fn, ok := looters[cat]
	if !ok {
		return LootResult{Category: cat, Status: core.NoticeLootUnknown}
	}
	res := fn(boarder, target, reg)
	res.Category = cat
	return res
}

// Lootable lists the categories the target currently holds something of.
func Lootable(target *core.Vehicle) []core.LootCategory {
	if target == nil {
		return nil
	}
	var cats []core.LootCategory
	if target.Credits > 0 {
		cats = append(cats, core.LootCredits)
	}
	if target.CargoUsed() > 0 {
		cats = append(cats, core.LootCargo)
	}
	if target.Fuel > 0 {
		cats = append(cats, core.LootFuel)
	}
	if target.AmmoCount() > 0 {
		cats = append(cats, core.LootAmmo)
	}
	return cats
}

func lootCredits(boarder, target *core.Vehicle, _ Registry) LootResult {
	if target.Credits <= 0 {
		return LootResult{Status: core.NoticeLootEmpty}
	}
	amount := target.Credits
	boarder.Credits += amount
	target.Credits = 0
	return LootResult{
		Status:    core.NoticeLootTaken,
		Transfers: []Transfer{{Item: core.LootCredits.String(), Amount: float64(amount)}},
	}
}

func lootCargo(boarder, target *core.Vehicle, reg Registry) LootResult {
	if target.CargoUsed() == 0 {
		return LootResult{Status: core.NoticeLootEmpty}
	}
	if boarder.CargoFree() == 0 {
		return LootResult{Status: core.NoticeLootNoRoom}
	}

	var moved []Transfer
	// RemoveCargo drops emptied lines, so walk a snapshot and repeat until stuck.
	for {
		progress := false
		lines := append([]core.CargoLine(nil), target.Cargo...)
		for _, line := range lines {
			q := min(boarder.CargoFree(), line.Quantity)
			if q <= 0 {
				continue
			}
			q = target.RemoveCargo(line.Commodity, q)
			added := boarder.AddCargo(line.Commodity, q)
			if added < q {
				target.AddCargo(line.Commodity, q-added)
			}
			if added > 0 {
				moved = appendTransfer(moved, line.Commodity, float64(added))
				progress = true
			}
		}
		if !progress || boarder.CargoFree() == 0 || target.CargoUsed() == 0 {
			break
		}
	}
	if len(moved) > 0 {
		refresh(reg, boarder)
		refresh(reg, target)
	}
	return LootResult{Status: core.NoticeLootTaken, Transfers: moved}
}

func lootFuel(boarder, target *core.Vehicle, _ Registry) LootResult {
	if target.Fuel <= 0 {
		return LootResult{Status: core.NoticeLootEmpty}
	}
	room := boarder.FuelMax - boarder.Fuel
	if room <= 0 {
		return LootResult{Status: core.NoticeLootAtCapacity}
	}
	amount := min(target.Fuel, room)
	boarder.Fuel += amount
	target.Fuel -= amount
	return LootResult{
		Status:    core.NoticeLootTaken,
		Transfers: []Transfer{{Item: core.LootFuel.String(), Amount: amount}},
	}
}

// lootAmmo moves ammunition into boarder launchers of the same ammo type. Each
// launcher takes no more than its own capacity and the boarder's total load never
// exceeds its aggregate MaxAmmo.
func lootAmmo(boarder, target *core.Vehicle, reg Registry) LootResult {
	if target.AmmoCount() == 0 {
		return LootResult{Status: core.NoticeLootEmpty}
	}
	headroom := boarder.MaxAmmo() - boarder.AmmoCount()
	if headroom <= 0 {
		return LootResult{Status: core.NoticeLootAtCapacity}
	}

	var moved []Transfer
	for ti := range target.Outfits {
		src := &target.Outfits[ti]
		if !src.IsLauncher() || src.Ammo <= 0 {
			continue
		}
		for bi := range boarder.Outfits {
			if headroom == 0 || src.Ammo == 0 {
				break
			}
			dst := &boarder.Outfits[bi]
			if dst.AmmoType() != src.AmmoType() {
				continue
			}
			q := min(src.Ammo, headroom, dst.Outfit.AmmoCapacity-dst.Ammo)
			if q <= 0 {
				continue
			}
			dst.Ammo += q
			src.Ammo -= q
			headroom -= q
			moved = appendTransfer(moved, src.AmmoType(), float64(q))
		}
		if headroom == 0 {
			break
		}
	}

	refresh(reg, boarder)
	refresh(reg, target)

	if len(moved) == 0 {
		return LootResult{Status: core.NoticeLootIncompatible}
	}
	return LootResult{Status: core.NoticeLootTaken, Transfers: moved}
}

func refresh(reg Registry, v *core.Vehicle) {
	if reg != nil {
		reg.Refresh(v)
		return
	}
	v.RecomputeMass()
	v.RecomputeWeapons()
}

func appendTransfer(ts []Transfer, item string, amount float64) []Transfer {
	for i := range ts {
		if ts[i].Item == item {
			ts[i].Amount += amount
			return ts
		}
	}
	return append(ts, Transfer{Item: item, Amount: amount})
}
