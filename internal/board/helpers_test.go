package board

import (
	"time"

	"github.com/OCAP2/boarding/pkg/core"
)

type testRegistry struct {
	vehicles  map[core.VehicleID]*core.Vehicle
	refreshed []core.VehicleID
}

func newTestRegistry(vs ...*core.Vehicle) *testRegistry {
	r := &testRegistry{vehicles: make(map[core.VehicleID]*core.Vehicle)}
	for _, v := range vs {
		r.vehicles[v.ID] = v
	}
	return r
}

func (r *testRegistry) Get(id core.VehicleID) (*core.Vehicle, bool) {
	v, ok := r.vehicles[id]
	return v, ok
}

func (r *testRegistry) Remove(id core.VehicleID) bool {
	_, ok := r.vehicles[id]
	delete(r.vehicles, id)
	return ok
}

func (r *testRegistry) Refresh(v *core.Vehicle) {
	v.RecomputeMass()
	v.RecomputeWeapons()
	r.refreshed = append(r.refreshed, v.ID)
}

// seqRand replays fixed values, then repeats the last one.
type seqRand struct {
	values []float64
	i      int
}

func (s *seqRand) Float64() float64 {
	v := s.values[min(s.i, len(s.values)-1)]
	s.i++
	return v
}

type recordingNotifier struct {
	notices []core.Notice
}

func (n *recordingNotifier) Notify(notice core.Notice) {
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) kinds() []core.NoticeKind {
	out := make([]core.NoticeKind, 0, len(n.notices))
	for _, x := range n.notices {
		out = append(out, x.Kind)
	}
	return out
}

func (n *recordingNotifier) find(kind core.NoticeKind) (core.Notice, bool) {
	for _, x := range n.notices {
		if x.Kind == kind {
			return x, true
		}
	}
	return core.Notice{}, false
}

type recordedHit struct {
	target  core.VehicleID
	shooter core.VehicleID
	dmg     core.Damage
}

type recordingDamage struct {
	hits []recordedHit
}

func (d *recordingDamage) ApplyDamage(target *core.Vehicle, shooter core.VehicleID, dmg core.Damage) {
	d.hits = append(d.hits, recordedHit{target: target.ID, shooter: shooter, dmg: dmg})
}

type fixedClock struct {
	tick uint64
}

func (c fixedClock) Tick() uint64   { return c.tick }
func (c fixedClock) Now() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

// newPair returns a boarder with its target selected and a disabled target in
// boarding range, the baseline every check passes on.
func newPair() (boarder, target *core.Vehicle) {
	boarder = &core.Vehicle{
		ID:       1,
		Name:     "Llama",
		TargetID: 2,
		Crew:     10,
		Position: core.Vec2{X: 0, Y: 0},
	}
	target = &core.Vehicle{
		ID:        2,
		Name:      "Koala",
		Crew:      10,
		Flags:     core.FlagDisabled,
		Position:  core.Vec2{X: 10, Y: 0},
		HalfWidth: 20,
		Shield:    50,
		Armour:    80,
	}
	return boarder, target
}

func launcher(ammoType string, capacity int) *core.Outfit {
	return &core.Outfit{
		Name:         ammoType + " launcher",
		Kind:         core.OutfitLauncher,
		Mass:         4,
		AmmoType:     ammoType,
		AmmoCapacity: capacity,
		AmmoMass:     0.5,
	}
}
