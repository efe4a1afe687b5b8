package board

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/boarding/pkg/core"
)

type managerFixture struct {
	boarder  *core.Vehicle
	target   *core.Vehicle
	registry *testRegistry
	notifier *recordingNotifier
	damage   *recordingDamage
	rand     *seqRand
	manager  *Manager
}

func newManagerFixture(t *testing.T, rolls ...float64) *managerFixture {
	t.Helper()
	if len(rolls) == 0 {
		rolls = []float64{0.99}
	}
	b, tg := newPair()
	f := &managerFixture{
		boarder:  b,
		target:   tg,
		registry: newTestRegistry(b, tg),
		notifier: &recordingNotifier{},
		damage:   &recordingDamage{},
		rand:     &seqRand{values: rolls},
	}
	m, err := NewManager(Dependencies{
		Registry: f.registry,
		Damage:   f.damage,
		Rand:     f.rand,
		Notifier: f.notifier,
		Clock:    fixedClock{tick: 7},
	}, DefaultParams())
	require.NoError(t, err)
	f.manager = m
	return f
}

// runToEnd updates the boarder until its session leaves the Boarding phase.
func (f *managerFixture) runToEnd(t *testing.T) Result {
	t.Helper()
	for range 100 {
		res := f.manager.Update(f.boarder.ID, 0.5)
		if res.Phase != PhaseBoarding {
			return res
		}
	}
	t.Fatal("session never ended")
	return Result{}
}

func TestNewManager_RequiresRegistry(t *testing.T) {
	_, err := NewManager(Dependencies{}, DefaultParams())
	assert.Error(t, err)
}

func TestManager_Start(t *testing.T) {
	f := newManagerFixture(t)

	code := f.manager.Start(f.boarder.ID, []string{"Credits", "Fuel"})

	require.Equal(t, core.CanBoard, code)
	assert.True(t, f.manager.IsBoarding(f.boarder.ID))
	assert.True(t, f.boarder.Has(core.FlagBoarding))
	assert.Equal(t, 1, f.manager.Active())

	s, ok := f.manager.Session(f.boarder.ID)
	require.True(t, ok)
	assert.Equal(t, f.target.ID, s.Target)
	assert.True(t, s.Active)
	assert.Equal(t, uint64(7), s.StartTick)
	assert.InDelta(t, 2.718, s.Remaining, 0.001)
	assert.Equal(t, []core.LootCategory{core.LootCredits, core.LootFuel}, s.Loot)

	n, ok := f.notifier.find(core.NoticeStarted)
	require.True(t, ok)
	assert.Equal(t, uint64(7), n.Tick)
	assert.Equal(t, s.Remaining, n.Remaining)
}

func TestManager_StartRejected(t *testing.T) {
	f := newManagerFixture(t)
	f.target.Clear(core.FlagDisabled)

	code := f.manager.Start(f.boarder.ID, nil)

	assert.Equal(t, core.NotDisabled, code)
	assert.False(t, f.manager.IsBoarding(f.boarder.ID))
	assert.False(t, f.boarder.Has(core.FlagBoarding))
	assert.Equal(t, []core.NoticeKind{core.NoticeRejected}, f.notifier.kinds())
	assert.Equal(t, core.NotDisabled, f.notifier.notices[0].Code)
}

func TestManager_StartUnknownBoarder(t *testing.T) {
	f := newManagerFixture(t)

	assert.Equal(t, core.NoTarget, f.manager.Start(42, nil))
	assert.Equal(t, 0, f.manager.Active())
}

func TestManager_StartTwice(t *testing.T) {
	f := newManagerFixture(t)
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, []string{"Credits"}))
	f.manager.Update(f.boarder.ID, 1)
	before, _ := f.manager.Session(f.boarder.ID)

	code := f.manager.Start(f.boarder.ID, []string{"Fuel"})

	assert.Equal(t, core.AlreadyBoarding, code)
	after, ok := f.manager.Session(f.boarder.ID)
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.manager.Active())
}

func TestManager_StartUnknownLootToken(t *testing.T) {
	f := newManagerFixture(t)
	f.boarder.IsPlayer = true

	code := f.manager.Start(f.boarder.ID, []string{"Fuel", "Hats"})

	require.Equal(t, core.CanBoard, code)
	n, ok := f.notifier.find(core.NoticeLootUnknown)
	require.True(t, ok)
	assert.Equal(t, "Hats", n.Item)
	s, _ := f.manager.Session(f.boarder.ID)
	assert.Equal(t, []core.LootCategory{core.LootFuel}, s.Loot)
}

func TestManager_StartEmptySelection(t *testing.T) {
	f := newManagerFixture(t)
	f.boarder.IsPlayer = true

	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, nil))

	_, ok := f.notifier.find(core.NoticeNoLootSelected)
	assert.True(t, ok)
}

func TestManager_UpdateIdle(t *testing.T) {
	f := newManagerFixture(t)

	res := f.manager.Update(f.boarder.ID, 1)

	assert.Equal(t, PhaseIdle, res.Phase)
	assert.Empty(t, f.notifier.notices)
}

func TestManager_UpdateCountsDown(t *testing.T) {
	f := newManagerFixture(t)
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, nil))

	res := f.manager.Update(f.boarder.ID, 1)

	assert.Equal(t, PhaseBoarding, res.Phase)
	assert.InDelta(t, 1.718, res.Remaining, 0.001)
}

func TestManager_CompleteSkimBetweenNPCs(t *testing.T) {
	f := newManagerFixture(t)
	f.target.Credits = 500
	f.target.Worth = 2000
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, []string{"Fuel"}))

	res := f.runToEnd(t)

	assert.Equal(t, PhaseCompleted, res.Phase)
	assert.Equal(t, int64(200), res.Skimmed)
	assert.Equal(t, StealNone, res.Steal)
	assert.Equal(t, int64(200), f.boarder.Credits)
	assert.Equal(t, int64(300), f.target.Credits)
	assert.True(t, f.target.Has(core.FlagBoarded))
	assert.Equal(t, f.boarder.ID, f.target.BoardedBy)
	assert.False(t, f.boarder.Has(core.FlagBoarding))
	assert.False(t, f.manager.IsBoarding(f.boarder.ID))
	assert.Equal(t, 0, f.manager.Active())
}

func TestManager_CompleteSkimWhenPlayerIsTarget(t *testing.T) {
	f := newManagerFixture(t)
	f.boarder.IsPlayer = true
	f.target.IsPlayer = true
	f.target.Credits = 1000
	f.target.Worth = 1000
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, []string{"Credits"}))

	res := f.runToEnd(t)

	assert.Equal(t, int64(100), res.Skimmed)
	assert.Empty(t, res.Loot)
}

func TestManager_CompleteStealAndLoot(t *testing.T) {
	f := newManagerFixture(t, 0.99)
	f.boarder.IsPlayer = true
	f.boarder.Fuel, f.boarder.FuelMax = 90, 100
	f.target.Fuel = 50
	f.target.Credits = 300
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, []string{"fuel", "Credits", "Ammo"}))

	res := f.runToEnd(t)

	assert.Equal(t, PhaseCompleted, res.Phase)
	assert.Equal(t, StealSuccess, res.Steal)
	require.Len(t, res.Loot, 3)
	assert.Equal(t, core.LootFuel, res.Loot[0].Category)
	assert.Equal(t, core.LootCredits, res.Loot[1].Category)
	assert.Equal(t, core.NoticeLootEmpty, res.Loot[2].Status)

	assert.Equal(t, 100.0, f.boarder.Fuel)
	assert.Equal(t, 40.0, f.target.Fuel)
	assert.Equal(t, int64(300), f.boarder.Credits)

	kinds := f.notifier.kinds()
	assert.Equal(t, core.NoticeCompleted, kinds[len(kinds)-1])
	assert.Contains(t, kinds, core.NoticeLootEmpty)
}

func TestManager_CompleteRetaliation(t *testing.T) {
	f := newManagerFixture(t, 0.1, 0.1)
	f.boarder.IsPlayer = true
	f.target.Credits = 300
	f.target.Outfits = []core.OutfitSlot{{Outfit: launcher("missile", 10), Ammo: 10}}
	f.boarder.Outfits = []core.OutfitSlot{{Outfit: launcher("missile", 10)}}
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, []string{"Ammo", "Credits"}))

	res := f.runToEnd(t)

	assert.Equal(t, PhaseCompleted, res.Phase)
	assert.Equal(t, StealRetaliation, res.Steal)
	assert.Empty(t, res.Loot)
	assert.Equal(t, int64(0), f.boarder.Credits)
	assert.Equal(t, 0, f.boarder.AmmoCount())
	assert.Equal(t, int64(300), f.target.Credits)

	require.Len(t, f.damage.hits, 1)
	assert.Equal(t, 100.0, f.damage.hits[0].dmg.Amount)
	assert.Equal(t, 0.0, f.target.Shield)
	assert.Equal(t, 1.0, f.target.Armour)

	_, ok := f.notifier.find(core.NoticeRetaliation)
	assert.True(t, ok)
}

func TestManager_StartRecoversOwnEscort(t *testing.T) {
	f := newManagerFixture(t)
	f.target.ParentID = f.boarder.ID
	f.target.Credits = 400

	code := f.manager.Start(f.boarder.ID, []string{"Credits"})

	assert.Equal(t, core.CanBoard, code)
	assert.False(t, f.manager.IsBoarding(f.boarder.ID))
	assert.False(t, f.boarder.Has(core.FlagBoarding))
	assert.Zero(t, f.boarder.TargetID)
	_, ok := f.registry.Get(f.target.ID)
	assert.False(t, ok)
	assert.Equal(t, int64(0), f.boarder.Credits)

	n, ok := f.notifier.find(core.NoticeRecovered)
	require.True(t, ok)
	assert.Equal(t, f.target.ID, n.Target)
	_, started := f.notifier.find(core.NoticeStarted)
	assert.False(t, started)
}

func TestManager_StartEscortOfAnotherIsBoarded(t *testing.T) {
	f := newManagerFixture(t)
	f.target.ParentID = 99

	assert.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, nil))
	assert.True(t, f.manager.IsBoarding(f.boarder.ID))
	_, ok := f.registry.Get(f.target.ID)
	assert.True(t, ok)
}

func TestManager_StartEscortStillNeedsEligibility(t *testing.T) {
	f := newManagerFixture(t)
	f.target.ParentID = f.boarder.ID
	f.target.Clear(core.FlagDisabled)

	assert.Equal(t, core.NotDisabled, f.manager.Start(f.boarder.ID, nil))
	_, ok := f.registry.Get(f.target.ID)
	assert.True(t, ok)
}

func TestManager_UpdateIgnoresBadDt(t *testing.T) {
	f := newManagerFixture(t)
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, []string{"Credits"}))
	s, _ := f.manager.Session(f.boarder.ID)

	for _, dt := range []float64{math.NaN(), math.Inf(1), -3} {
		res := f.manager.Update(f.boarder.ID, dt)

		assert.Equal(t, PhaseBoarding, res.Phase)
		assert.Equal(t, s.Duration, res.Remaining)
	}
	assert.True(t, f.manager.IsBoarding(f.boarder.ID))
}

func TestManager_CompleteLockout(t *testing.T) {
	f := newManagerFixture(t, 0.1, 0.9)
	f.boarder.IsPlayer = true
	f.target.Credits = 300
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, []string{"Credits"}))

	res := f.runToEnd(t)

	assert.Equal(t, StealFailure, res.Steal)
	assert.Equal(t, int64(300), f.target.Credits)
	n, ok := f.notifier.find(core.NoticeLockout)
	require.True(t, ok)
	assert.True(t, n.Crewed)
}

func TestManager_CancelWhenTargetRecovers(t *testing.T) {
	f := newManagerFixture(t)
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, []string{"Credits"}))
	f.manager.Update(f.boarder.ID, 0.5)

	f.target.Clear(core.FlagDisabled)
	res := f.manager.Update(f.boarder.ID, 0.5)

	assert.Equal(t, PhaseCancelled, res.Phase)
	assert.Equal(t, core.NotDisabled, res.Code)
	assert.False(t, f.manager.IsBoarding(f.boarder.ID))
	assert.False(t, f.boarder.Has(core.FlagBoarding))
	assert.True(t, f.boarder.IsDisabled())
	assert.Equal(t, 1.0, f.boarder.DisableTimer)

	kinds := f.notifier.kinds()
	assert.Equal(t, []core.NoticeKind{core.NoticeStarted, core.NoticeCancelled, core.NoticeStunned}, kinds)
}

func TestManager_CancelReasons(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *managerFixture)
		want   core.OutcomeCode
	}{
		{"target destroyed", func(f *managerFixture) { delete(f.registry.vehicles, f.target.ID) }, core.NoTarget},
		{"target deselected", func(f *managerFixture) { f.boarder.TargetID = 0 }, core.NoTarget},
		{"boarded by someone else", func(f *managerFixture) { f.target.Set(core.FlagBoarded); f.target.BoardedBy = 9 }, core.AlreadyBoarded},
		{"drifted away", func(f *managerFixture) { f.target.Position = core.Vec2{X: 500} }, core.TooFar},
		{"speeding", func(f *managerFixture) { f.target.Velocity = core.Vec2{Y: 80} }, core.TooFast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newManagerFixture(t)
			require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, nil))

			tt.mutate(f)
			res := f.manager.Update(f.boarder.ID, 0.1)

			assert.Equal(t, PhaseCancelled, res.Phase)
			assert.Equal(t, tt.want, res.Code)
			assert.False(t, f.boarder.Has(core.FlagBoarding))
			assert.False(t, f.boarder.IsDisabled(), "only a fleeing target stuns")
			assert.Equal(t, 0, f.manager.Active())
		})
	}
}

func TestManager_CancelExplicit(t *testing.T) {
	f := newManagerFixture(t)
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, []string{"Credits"}))

	assert.True(t, f.manager.Cancel(f.boarder.ID, core.CooldownInterrupted))
	assert.False(t, f.manager.IsBoarding(f.boarder.ID))
	assert.False(t, f.boarder.Has(core.FlagBoarding))

	n, ok := f.notifier.find(core.NoticeCancelled)
	require.True(t, ok)
	assert.Equal(t, core.CooldownInterrupted, n.Code)

	// a second cancel in the same tick is a no-op
	count := len(f.notifier.notices)
	assert.False(t, f.manager.Cancel(f.boarder.ID, core.CooldownInterrupted))
	assert.Len(t, f.notifier.notices, count)
}

func TestManager_CancelIdle(t *testing.T) {
	f := newManagerFixture(t)
	flags := f.boarder.Flags

	assert.False(t, f.manager.Cancel(f.boarder.ID, core.CooldownInterrupted))
	assert.Equal(t, flags, f.boarder.Flags)
	assert.Empty(t, f.notifier.notices)
}

func TestManager_CancelWithCanBoardIsIgnored(t *testing.T) {
	f := newManagerFixture(t)
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, nil))

	assert.False(t, f.manager.Cancel(f.boarder.ID, core.CanBoard))
	assert.True(t, f.manager.IsBoarding(f.boarder.ID))
}

func TestManager_CanBoard(t *testing.T) {
	f := newManagerFixture(t)

	assert.Equal(t, core.CanBoard, f.manager.CanBoard(f.boarder.ID))
	assert.Equal(t, core.NoTarget, f.manager.CanBoard(99))

	f.boarder.TargetID = 0
	assert.Equal(t, core.NoTarget, f.manager.CanBoard(f.boarder.ID))
	assert.Empty(t, f.notifier.notices)
}

func TestManager_UpdateAll(t *testing.T) {
	f := newManagerFixture(t)
	other := &core.Vehicle{ID: 5, TargetID: 2, Crew: 10}
	f.registry.vehicles[other.ID] = other
	f.boarder.Crew = 1000 // board time clamps to the minimum

	require.Equal(t, core.CanBoard, f.manager.Start(other.ID, nil))
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, nil))

	results := f.manager.UpdateAll(2)

	require.Len(t, results, 2)
	assert.Equal(t, f.boarder.ID, results[0].Boarder)
	assert.Equal(t, PhaseCompleted, results[0].Phase)
	// the first boarder claimed the target
	assert.Equal(t, other.ID, results[1].Boarder)
	assert.Equal(t, PhaseCancelled, results[1].Phase)
	assert.Equal(t, core.AlreadyBoarded, results[1].Code)
}

func TestManager_Reset(t *testing.T) {
	f := newManagerFixture(t)
	require.Equal(t, core.CanBoard, f.manager.Start(f.boarder.ID, nil))

	f.manager.Reset()

	assert.Equal(t, 0, f.manager.Active())
	assert.Empty(t, f.manager.Sessions())
	assert.False(t, f.boarder.Has(core.FlagBoarding))
}

func TestManager_Lootable(t *testing.T) {
	f := newManagerFixture(t)
	f.target.Credits = 10

	assert.Equal(t, []core.LootCategory{core.LootCredits}, f.manager.Lootable(f.target.ID))
	assert.Nil(t, f.manager.Lootable(99))
}
