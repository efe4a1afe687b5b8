package board

import "github.com/OCAP2/boarding/pkg/core"

// Skim takes a flat fraction of the target's worth in credits, bounded by what the
// target actually holds. It returns the amount moved.
func Skim(boarder, target *core.Vehicle, worth WorthFunc, fraction float64) int64 {
	if boarder == nil || target == nil {
		return 0
	}
	if worth == nil {
		worth = VehicleWorth
	}
	amount := min(int64(fraction*float64(worth(target))), target.Credits)
	if amount <= 0 {
		return 0
	}
	boarder.Credits += amount
	target.Credits -= amount
	return amount
}

// skims reports whether a completed session takes the flat skim rather than a steal
// roll. Only a player boarding a non-player vehicle gets to pick loot.
func skims(boarder, target *core.Vehicle) bool {
	return !boarder.IsPlayer || target.IsPlayer
}
