package board

import "github.com/OCAP2/boarding/pkg/core"

type boardCheck struct {
	boarder *core.Vehicle
	target  *core.Vehicle
	params  Params
	// inSession exempts a boarded flag this boarder set itself
	inSession bool
}

type eligibilityRule struct {
	code  core.OutcomeCode
	fails func(c *boardCheck) bool
}

// eligibilityRules is evaluated top to bottom; the first failing rule decides the code.
// Rules after the first may assume the target is non-nil.
var eligibilityRules = []eligibilityRule{
	{core.NoTarget, func(c *boardCheck) bool {
		return c.target == nil
	}},
	{core.NoTarget, func(c *boardCheck) bool {
		return c.target.ID == c.boarder.ID
	}},
	{core.NotBoardable, func(c *boardCheck) bool {
		return c.target.Has(core.FlagNoBoard)
	}},
	{core.AlreadyBoarded, func(c *boardCheck) bool {
		if !c.target.Has(core.FlagBoarded) {
			return false
		}
		return !(c.inSession && c.target.BoardedBy == c.boarder.ID)
	}},
	{core.NotDisabled, func(c *boardCheck) bool {
		return !c.target.IsDisabled() && !c.target.Has(core.FlagBoardable)
	}},
	{core.TooFar, func(c *boardCheck) bool {
		return c.boarder.Position.Dist(c.target.Position) > c.target.HalfWidth*c.params.ProximityFactor
	}},
	{core.TooFast, func(c *boardCheck) bool {
		limit := c.params.MaxRelativeSpeed
		return c.boarder.Velocity.Sub(c.target.Velocity).LenSq() > limit*limit
	}},
}

// CanBoard reports whether boarder may board target, or the first reason it may not.
// It has no side effects. A nil boarder yields NO_TARGET.
func CanBoard(boarder, target *core.Vehicle, p Params) core.OutcomeCode {
	return evaluate(&boardCheck{boarder: boarder, target: target, params: p})
}

// canContinue is CanBoard for a running session.
func canContinue(boarder, target *core.Vehicle, p Params) core.OutcomeCode {
	return evaluate(&boardCheck{boarder: boarder, target: target, params: p, inSession: true})
}

func evaluate(c *boardCheck) core.OutcomeCode {
	if c.boarder == nil {
		return core.NoTarget
	}
	for _, r := range eligibilityRules {
		if r.fails(c) {
			return r.code
		}
	}
	return core.CanBoard
}
