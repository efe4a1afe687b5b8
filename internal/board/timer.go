package board

import (
	"math"

	"github.com/OCAP2/boarding/pkg/core"
)

// BoardTime returns how many seconds boarder needs to board target:
// exp(target.crew / boarder.crew) clamped to [MinTime, MaxTime]. A crew-light boarder
// against a crew-heavy target takes exponentially longer.
//
// It returns -1 when either vehicle is missing; callers must not start a session then.
func BoardTime(boarder, target *core.Vehicle, p Params) float64 {
	if boarder == nil || target == nil {
		return -1
	}
	t := math.Exp(float64(targetCrew(target)) / float64(boarderCrew(boarder)))
	return clamp(t, p.MinTime, p.MaxTime)
}

// boarderCrew is the boarder's crew as a divisor; anything below one counts as one.
func boarderCrew(v *core.Vehicle) int {
	return max(v.Crew, 1)
}

func targetCrew(v *core.Vehicle) int {
	return max(v.Crew, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
