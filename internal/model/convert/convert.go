// Package convert turns core domain values into GORM rows.
package convert

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/OCAP2/boarding/internal/geo"
	"github.com/OCAP2/boarding/internal/model"
	"github.com/OCAP2/boarding/pkg/core"
)

// toJSON marshals v for a jsonb column, falling back to an empty array.
func toJSON[T any](v []T) datatypes.JSON {
	if len(v) == 0 {
		return datatypes.JSON("[]")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// CoreToScenario converts a core.Scenario to a GORM model.Scenario.
func CoreToScenario(s core.Scenario) model.Scenario {
	return model.Scenario{
		Name:             s.Name,
		Author:           s.Author,
		StartTime:        s.StartTime,
		TickInterval:     float32(s.TickInterval.Seconds()),
		Tag:              s.Tag,
		ExtensionVersion: s.ExtensionVersion,
		ExtensionBuild:   s.ExtensionBuild,
	}
}

// CoreToVehicle converts a core.Vehicle to a GORM model.Vehicle as first seen at
// the given tick. core.Vehicle.ID maps to ObjectID.
func CoreToVehicle(v core.Vehicle, tick uint64, at time.Time) model.Vehicle {
	return model.Vehicle{
		ObjectID:      uint32(v.ID),
		JoinTime:      at,
		JoinTick:      tick,
		Name:          v.Name,
		IsPlayer:      v.IsPlayer,
		Crew:          v.Crew,
		Credits:       v.Credits,
		Worth:         v.Worth,
		FuelMax:       v.FuelMax,
		CargoCapacity: v.CargoCapacity,
		HalfWidth:     float32(v.HalfWidth),
		BaseMass:      v.BaseMass,
		Flags:         uint16(v.Flags),
		Cargo:         toJSON(v.Cargo),
		Outfits:       toJSON(v.Outfits),
	}
}

// CoreToNotice converts a core.Notice to a GORM model.BoardingNotice, projecting
// the boarder position with proj. Category is only recorded for loot results.
func CoreToNotice(n core.Notice, proj *geo.Projector) model.BoardingNotice {
	row := model.BoardingNotice{
		Time:      n.Time,
		Tick:      n.Tick,
		Kind:      n.Kind.String(),
		BoarderID: uint32(n.Boarder),
		TargetID:  uint32(n.Target),
		Code:      n.Code.String(),
		Item:      n.Item,
		Amount:    n.Amount,
		Remaining: float32(n.Remaining),
		Crewed:    n.Crewed,
		Position:  proj.Point(n.Position),
	}
	if n.Kind.IsLoot() {
		row.Category = n.Category.String()
	}
	return row
}

// CoreToHitEvent converts a core.HitEvent to a GORM model.HitEvent.
func CoreToHitEvent(h core.HitEvent) model.HitEvent {
	return model.HitEvent{
		Time:        h.Time,
		Tick:        h.Tick,
		VictimID:    uint32(h.Victim),
		ShooterID:   uint32(h.Shooter),
		DamageType:  h.Damage.Type,
		Amount:      h.Damage.Amount,
		Penetration: h.Damage.Penetration,
		Disable:     h.Damage.Disable,
	}
}

// CoreToPerformance converts a core.Performance to a GORM model.Performance.
func CoreToPerformance(p core.Performance) model.Performance {
	return model.Performance{
		Time:                p.Time,
		Tick:                p.Tick,
		Vehicles:            p.Vehicles,
		ActiveSessions:      p.ActiveSessions,
		NoticeQueue:         p.NoticeQueue,
		LastWriteDurationMs: float32(p.LastWriteDuration.Seconds() * 1000),
	}
}
