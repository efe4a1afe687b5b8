package board

import (
	"fmt"

	"github.com/OCAP2/boarding/pkg/core"
)

// StealResult is the outcome of the single steal roll made when a session completes.
type StealResult uint8

const (
	StealNone StealResult = iota // no roll was made (flat skim, cancelled session)
	StealSuccess
	StealFailure     // locked out, nothing happens
	StealRetaliation // the target's self-destruct was tripped
)

func (r StealResult) String() string {
	switch r {
	case StealNone:
		return "none"
	case StealSuccess:
		return "success"
	case StealFailure:
		return "failure"
	case StealRetaliation:
		return "retaliation"
	default:
		return fmt.Sprintf("steal(%d)", uint8(r))
	}
}

// MarshalText encodes the result by name.
func (r StealResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// stealThreshold is the roll a boarder has to beat.
func stealThreshold(boarder, target *core.Vehicle) float64 {
	return 0.5 * (10 + float64(targetCrew(target))) / (10 + float64(boarderCrew(boarder)))
}

// StealChance is the probability that TrySteal succeeds: 1 - 0.5*(10+tc)/(10+bc).
func StealChance(boarder, target *core.Vehicle) float64 {
	return clamp(1-stealThreshold(boarder, target), 0, 1)
}

// TrySteal rolls once to see whether the boarder gets past the target's security.
// On failure a second roll may trip the self-destruct: RetaliationDamage is applied
// to the target in the boarder's name so the usual hit consequences follow, and the
// target is left with no shield and ArmourFloor armour.
func TrySteal(boarder, target *core.Vehicle, rng Rand, dmg DamageApplier, p Params) StealResult {
	if boarder == nil || target == nil {
		return StealFailure
	}
	if rng.Float64() > stealThreshold(boarder, target) {
		return StealSuccess
	}
	if rng.Float64() >= p.RetaliationChance {
		return StealFailure
	}

	target.Shield = 0
	target.Armour = p.ArmourFloor
	if dmg != nil {
		dmg.ApplyDamage(target, boarder.ID, p.RetaliationDamage)
	}
	target.Shield = 0
	target.Armour = max(target.Armour, p.ArmourFloor)
	return StealRetaliation
}
