package v1

import (
	"slices"

	"github.com/OCAP2/boarding/pkg/core"
)

// Session outcomes.
const (
	OutcomeOpen      = "open"
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
)

// Steal results as written to a session.
const (
	StealSkim        = "skim"
	StealSuccess     = "success"
	StealFailure     = "failure"
	StealRetaliation = "retaliation"
)

// ScenarioData contains all the data needed to build an export
type ScenarioData struct {
	Scenario *core.Scenario
	Vehicles []VehicleRecord
	Notices  []core.Notice
	Hits     []core.HitEvent
}

// VehicleRecord is a vehicle with the tick it joined the scenario.
type VehicleRecord struct {
	Vehicle  core.Vehicle
	JoinTick uint64
}

// Build creates an Export from the scenario data. Vehicles keep the order
// they were given in; notices and hits keep recording order.
func Build(data *ScenarioData) Export {
	export := Export{
		FormatVersion: FormatVersion,
		Vehicles:      make([]Vehicle, 0, len(data.Vehicles)),
		Sessions:      make([]Session, 0),
		Notices:       make([][]any, 0, len(data.Notices)),
		Hits:          make([][]any, 0, len(data.Hits)),
		Summary: Summary{
			ByCode: make(map[string]int),
			Looted: make(map[string]float64),
		},
	}
	if s := data.Scenario; s != nil {
		export.ExtensionVersion = s.ExtensionVersion
		export.ExtensionBuild = s.ExtensionBuild
		export.ScenarioName = s.Name
		export.Author = s.Author
		export.Tag = s.Tag
		export.StartTime = s.StartTime
		export.TickInterval = s.TickInterval.Seconds()
	}

	var endTick uint64
	for _, rec := range data.Vehicles {
		export.Vehicles = append(export.Vehicles, convertVehicle(rec))
		endTick = max(endTick, rec.JoinTick)
	}

	// Format: [tick, kind, boarderId, targetId, code, category, item, amount, remaining]
	open := make(map[core.VehicleID]int) // boarder -> index into export.Sessions
	for _, n := range data.Notices {
		endTick = max(endTick, n.Tick)
		category := ""
		if n.Kind.IsLoot() || n.Kind == core.NoticeSkimmed {
			category = n.Category.String()
		}
		export.Notices = append(export.Notices, []any{
			n.Tick,
			n.Kind.String(),
			uint32(n.Boarder),
			uint32(n.Target),
			n.Code.String(),
			category,
			n.Item,
			n.Amount,
			n.Remaining,
		})
		applyNotice(&export, open, n)
	}

	// Format: [tick, "hit", victimId, shooterId, [type, amount, penetration, disable]]
	for _, h := range data.Hits {
		endTick = max(endTick, h.Tick)
		export.Hits = append(export.Hits, []any{
			h.Tick,
			"hit",
			uint32(h.Victim),
			uint32(h.Shooter),
			[]any{h.Damage.Type, h.Damage.Amount, h.Damage.Penetration, h.Damage.Disable},
		})
	}

	export.EndTick = endTick
	return export
}

// applyNotice folds one notice into the session timeline and the summary.
func applyNotice(export *Export, open map[core.VehicleID]int, n core.Notice) {
	sum := &export.Summary
	current := func() *Session {
		if i, ok := open[n.Boarder]; ok {
			return &export.Sessions[i]
		}
		return nil
	}

	switch n.Kind {
	case core.NoticeRejected:
		sum.Rejected++
		sum.ByCode[n.Code.String()]++
	case core.NoticeStarted:
		sum.Started++
		export.Sessions = append(export.Sessions, Session{
			Boarder:   uint32(n.Boarder),
			Target:    uint32(n.Target),
			StartTick: n.Tick,
			BoardTime: n.Remaining,
			Outcome:   OutcomeOpen,
		})
		open[n.Boarder] = len(export.Sessions) - 1
	case core.NoticeCancelled:
		sum.Cancelled++
		sum.ByCode[n.Code.String()]++
		if s := current(); s != nil {
			s.Outcome = OutcomeCancelled
			s.Code = n.Code.String()
			s.EndTick = n.Tick
			delete(open, n.Boarder)
		}
	case core.NoticeRecovered:
		sum.Recovered++
	case core.NoticeSkimmed:
		sum.Skimmed += n.Amount
		if s := current(); s != nil {
			s.Steal = StealSkim
			s.Skimmed = n.Amount
		}
	case core.NoticeLockout:
		if s := current(); s != nil {
			s.Steal = StealFailure
		}
	case core.NoticeRetaliation:
		if s := current(); s != nil {
			s.Steal = StealRetaliation
		}
	case core.NoticeCompleted:
		sum.Completed++
		if s := current(); s != nil {
			s.Outcome = OutcomeCompleted
			s.EndTick = n.Tick
			if s.Steal == "" {
				s.Steal = StealSuccess
			}
			delete(open, n.Boarder)
		}
	default:
		if !n.Kind.IsLoot() {
			return
		}
		if n.Kind == core.NoticeLootTaken {
			sum.Looted[n.Category.String()] += n.Amount
		}
		if s := current(); s != nil {
			s.Loot = append(s.Loot, LootLine{
				Category: n.Category.String(),
				Result:   n.Kind.String(),
				Item:     n.Item,
				Amount:   n.Amount,
			})
		}
	}
}

func convertVehicle(rec VehicleRecord) Vehicle {
	v := rec.Vehicle
	out := Vehicle{
		ID:            uint32(v.ID),
		Name:          v.Name,
		IsPlayer:      boolToInt(v.IsPlayer),
		Parent:        uint32(v.ParentID),
		JoinTick:      rec.JoinTick,
		Crew:          v.Crew,
		Credits:       v.Credits,
		Worth:         v.Worth,
		FuelMax:       v.FuelMax,
		CargoCapacity: v.CargoCapacity,
		Outfits:       make([]string, 0, len(v.Outfits)),
	}
	for _, slot := range v.Outfits {
		if slot.Outfit != nil {
			out.Outfits = append(out.Outfits, slot.Outfit.Name)
		}
	}
	slices.Sort(out.Outfits)
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
