package board

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/OCAP2/boarding/pkg/core"
)

// Phase is where a boarding session stands after an update.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseBoarding
	PhaseCompleted
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBoarding:
		return "boarding"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Session is one boarding attempt in progress. The target is held by ID and resolved
// through the registry on every update.
type Session struct {
	Boarder   core.VehicleID      `json:"boarder"`
	Target    core.VehicleID      `json:"target"`
	Duration  float64             `json:"duration"`
	Remaining float64             `json:"remaining"`
	Loot      []core.LootCategory `json:"loot"`
	Active    bool                `json:"active"`
	StartTick uint64              `json:"startTick"`
}

// Result reports what a call to Update did.
type Result struct {
	Boarder   core.VehicleID   `json:"boarder"`
	Phase     Phase            `json:"phase"`
	Code      core.OutcomeCode `json:"code"`
	Remaining float64          `json:"remaining,omitempty"`
	Skimmed   int64            `json:"skimmed,omitempty"`
	Steal     StealResult      `json:"steal,omitempty"`
	Loot      []LootResult     `json:"loot,omitempty"`
}

// Manager owns every boarding session. It is not safe for concurrent use; the
// simulation loop drives it from one goroutine.
type Manager struct {
	deps     Dependencies
	params   Params
	sessions map[core.VehicleID]*Session
	active   atomic.Int64
	metrics  *metrics
}

// NewManager creates a Manager. Missing optional dependencies fall back to a seeded
// PCG source, a discarding notifier, VehicleWorth, the wall clock and slog.Default.
func NewManager(deps Dependencies, params Params) (*Manager, error) {
	if deps.Registry == nil {
		return nil, errors.New("board: registry is required")
	}
	if deps.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		deps.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if deps.Notifier == nil {
		deps.Notifier = discardNotifier{}
	}
	if deps.Worth == nil {
		deps.Worth = VehicleWorth
	}
	if deps.Clock == nil {
		deps.Clock = wallClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	m := &Manager{
		deps:     deps,
		params:   params,
		sessions: make(map[core.VehicleID]*Session),
	}

	var err error
	m.metrics, err = newMetrics(m.active.Load)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Params returns the tuning the manager runs with.
func (m *Manager) Params() Params {
	return m.params
}

// Start begins boarding the boarder's current target, looting the requested
// categories on success. It returns CAN_BOARD when a session was created, or the
// reason it was not; a refused start changes nothing. A target that is the
// boarder's own escort is recovered into its bay on the spot and no session is
// created.
func (m *Manager) Start(boarderID core.VehicleID, loot []string) core.OutcomeCode {
	boarder := m.lookup(boarderID)
	if boarder == nil {
		return m.reject(boarderID, 0, core.NoTarget)
	}
	if _, busy := m.sessions[boarderID]; busy || boarder.Has(core.FlagBoarding) {
		return m.reject(boarderID, boarder.TargetID, core.AlreadyBoarding)
	}

	target := m.lookup(boarder.TargetID)
	if code := CanBoard(boarder, target, m.params); code != core.CanBoard {
		return m.reject(boarderID, boarder.TargetID, code)
	}
	if target.ParentID == boarderID {
		return m.recoverEscort(boarder, target)
	}

	t := BoardTime(boarder, target, m.params)
	if t < 0 {
		return m.reject(boarderID, boarder.TargetID, core.NoTarget)
	}

	cats, unknown := core.ParseLootCategories(loot)
	s := &Session{
		Boarder:   boarderID,
		Target:    target.ID,
		Duration:  t,
		Remaining: t,
		Loot:      cats,
		Active:    true,
		StartTick: m.deps.Clock.Tick(),
	}
	boarder.Set(core.FlagBoarding)
	m.sessions[boarderID] = s
	m.active.Add(1)
	m.metrics.started.Add(context.Background(), 1)

	m.deps.Logger.Info("boarding started",
		"boarder", boarderID,
		"target", target.ID,
		"duration", t,
		"loot", cats)

	m.emit(core.Notice{
		Kind:      core.NoticeStarted,
		Boarder:   boarderID,
		Target:    target.ID,
		Code:      core.CanBoard,
		Remaining: t,
		Position:  target.Position,
	})
	for _, tok := range unknown {
		m.deps.Logger.Warn("unknown loot category", "boarder", boarderID, "token", tok)
		m.emit(core.Notice{Kind: core.NoticeLootUnknown, Boarder: boarderID, Target: target.ID, Item: tok})
	}
	if len(cats) == 0 && boarder.IsPlayer && !target.IsPlayer {
		m.emit(core.Notice{Kind: core.NoticeNoLootSelected, Boarder: boarderID, Target: target.ID})
	}
	return core.CanBoard
}

func (m *Manager) recoverEscort(boarder, escort *core.Vehicle) core.OutcomeCode {
	if !m.deps.Registry.Remove(escort.ID) {
		return m.reject(boarder.ID, escort.ID, core.NoTarget)
	}
	boarder.TargetID = 0
	m.deps.Logger.Info("escort recovered", "boarder", boarder.ID, "escort", escort.ID)
	m.emit(core.Notice{
		Kind:     core.NoticeRecovered,
		Boarder:  boarder.ID,
		Target:   escort.ID,
		Code:     core.CanBoard,
		Position: escort.Position,
	})
	return core.CanBoard
}

// Update advances the boarder's session by dt seconds. The session is revalidated
// first; a failing check cancels it with that reason. When the timer runs out the
// session completes and the loot is resolved. A boarder without a session is Idle.
// A negative or non-finite dt counts as zero.
func (m *Manager) Update(boarderID core.VehicleID, dt float64) Result {
	if !(dt >= 0) || math.IsInf(dt, 1) {
		dt = 0
	}
	s, ok := m.sessions[boarderID]
	if !ok {
		return Result{Boarder: boarderID, Phase: PhaseIdle, Code: core.CanBoard}
	}

	boarder := m.lookup(boarderID)
	if boarder == nil {
		m.cancel(s, nil, core.NoTarget)
		return Result{Boarder: boarderID, Phase: PhaseCancelled, Code: core.NoTarget}
	}
	if boarder.TargetID != s.Target {
		m.cancel(s, boarder, core.NoTarget)
		return Result{Boarder: boarderID, Phase: PhaseCancelled, Code: core.NoTarget}
	}

	target := m.lookup(s.Target)
	if code := canContinue(boarder, target, m.params); code != core.CanBoard {
		m.cancel(s, boarder, code)
		return Result{Boarder: boarderID, Phase: PhaseCancelled, Code: code}
	}

	s.Remaining -= dt
	if s.Remaining > 0 {
		return Result{Boarder: boarderID, Phase: PhaseBoarding, Code: core.CanBoard, Remaining: s.Remaining}
	}
	return m.complete(s, boarder, target)
}

// UpdateAll advances every session by dt, in boarder ID order.
func (m *Manager) UpdateAll(dt float64) []Result {
	ids := make([]core.VehicleID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		results = append(results, m.Update(id, dt))
	}
	return results
}

// Cancel tears down the boarder's session with the given reason. It reports false,
// and does nothing, when the boarder is not boarding or the reason is CAN_BOARD.
func (m *Manager) Cancel(boarderID core.VehicleID, reason core.OutcomeCode) bool {
	if reason == core.CanBoard {
		return false
	}
	s, ok := m.sessions[boarderID]
	if !ok {
		return false
	}
	m.cancel(s, m.lookup(boarderID), reason)
	return true
}

// IsBoarding reports whether the boarder has a session in progress.
func (m *Manager) IsBoarding(boarderID core.VehicleID) bool {
	_, ok := m.sessions[boarderID]
	return ok
}

// CanBoard checks whether the boarder could board its current target right now.
func (m *Manager) CanBoard(boarderID core.VehicleID) core.OutcomeCode {
	boarder := m.lookup(boarderID)
	if boarder == nil {
		return core.NoTarget
	}
	return CanBoard(boarder, m.lookup(boarder.TargetID), m.params)
}

// Session returns a copy of the boarder's session.
func (m *Manager) Session(boarderID core.VehicleID) (Session, bool) {
	s, ok := m.sessions[boarderID]
	if !ok {
		return Session{}, false
	}
	out := *s
	out.Loot = slices.Clone(s.Loot)
	return out, true
}

// Sessions returns copies of all sessions in boarder ID order.
func (m *Manager) Sessions() []Session {
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		c := *s
		c.Loot = slices.Clone(s.Loot)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Session) int {
		return cmp.Compare(a.Boarder, b.Boarder)
	})
	return out
}

// Active returns the number of sessions in progress.
func (m *Manager) Active() int {
	return int(m.active.Load())
}

// Lootable lists the categories the vehicle currently has anything of.
func (m *Manager) Lootable(targetID core.VehicleID) []core.LootCategory {
	return Lootable(m.lookup(targetID))
}

// Reset drops every session without notices, clearing the boarders' flags.
func (m *Manager) Reset() {
	for id, s := range m.sessions {
		if b := m.lookup(id); b != nil {
			b.Clear(core.FlagBoarding)
		}
		s.Active = false
		delete(m.sessions, id)
	}
	m.active.Store(0)
}

func (m *Manager) lookup(id core.VehicleID) *core.Vehicle {
	if id == 0 {
		return nil
	}
	v, ok := m.deps.Registry.Get(id)
	if !ok {
		return nil
	}
	return v
}

func (m *Manager) reject(boarderID, targetID core.VehicleID, code core.OutcomeCode) core.OutcomeCode {
	m.deps.Logger.Debug("boarding refused", "boarder", boarderID, "target", targetID, "code", code)
	m.emit(core.Notice{Kind: core.NoticeRejected, Boarder: boarderID, Target: targetID, Code: code})
	return code
}

func (m *Manager) end(s *Session) {
	s.Active = false
	s.Remaining = 0
	s.Loot = nil
	delete(m.sessions, s.Boarder)
	m.active.Add(-1)
}

// cancelEffects holds the extra consequences of a cancellation reason.
var cancelEffects = map[core.OutcomeCode]func(m *Manager, boarder *core.Vehicle, s *Session){
	// the target came back to life and shook the boarder off
	core.NotDisabled: func(m *Manager, boarder *core.Vehicle, s *Session) {
		boarder.Stun(m.params.StunDuration)
		m.emit(core.Notice{
			Kind:      core.NoticeStunned,
			Boarder:   boarder.ID,
			Target:    s.Target,
			Code:      core.NotDisabled,
			Remaining: m.params.StunDuration,
			Position:  boarder.Position,
		})
	},
}

func (m *Manager) cancel(s *Session, boarder *core.Vehicle, reason core.OutcomeCode) {
	m.end(s)
	if boarder != nil {
		boarder.Clear(core.FlagBoarding)
	}

	m.deps.Logger.Info("boarding cancelled", "boarder", s.Boarder, "target", s.Target, "code", reason)
	m.emit(core.Notice{Kind: core.NoticeCancelled, Boarder: s.Boarder, Target: s.Target, Code: reason})

	if fx, ok := cancelEffects[reason]; ok && boarder != nil {
		fx(m, boarder, s)
	}
	m.metrics.sessionEnded(PhaseCancelled, reason.String())
}

func (m *Manager) complete(s *Session, boarder, target *core.Vehicle) Result {
	loot := s.Loot
	m.end(s)
	boarder.Clear(core.FlagBoarding)
	target.Set(core.FlagBoarded)
	target.BoardedBy = boarder.ID

	res := Result{Boarder: boarder.ID, Phase: PhaseCompleted, Code: core.CanBoard}

	if skims(boarder, target) {
		res.Skimmed = Skim(boarder, target, m.deps.Worth, m.params.SkimFraction)
		m.emit(core.Notice{
			Kind:     core.NoticeSkimmed,
			Boarder:  boarder.ID,
			Target:   target.ID,
			Category: core.LootCredits,
			Amount:   float64(res.Skimmed),
			Position: target.Position,
		})
	} else {
		res.Steal = TrySteal(boarder, target, m.deps.Rand, m.deps.Damage, m.params)
		m.metrics.stealAttempt(res.Steal)

		switch res.Steal {
		case StealSuccess:
			for _, cat := range loot {
				lr := Loot(cat, boarder, target, m.deps.Registry)
				res.Loot = append(res.Loot, lr)
				m.metrics.lootMoved(lr)
				m.emitLoot(boarder, target, lr)
			}
		case StealFailure:
			m.emit(core.Notice{
				Kind:     core.NoticeLockout,
				Boarder:  boarder.ID,
				Target:   target.ID,
				Crewed:   boarder.Crew > 0,
				Position: target.Position,
			})
		case StealRetaliation:
			m.emit(core.Notice{
				Kind:     core.NoticeRetaliation,
				Boarder:  boarder.ID,
				Target:   target.ID,
				Amount:   m.params.RetaliationDamage.Amount,
				Position: target.Position,
			})
		}
	}

	m.deps.Logger.Info("boarding completed",
		"boarder", boarder.ID,
		"target", target.ID,
		"skimmed", res.Skimmed,
		"steal", res.Steal)
	m.emit(core.Notice{
		Kind:     core.NoticeCompleted,
		Boarder:  boarder.ID,
		Target:   target.ID,
		Code:     core.CanBoard,
		Position: target.Position,
	})
	m.metrics.sessionEnded(PhaseCompleted, res.Steal.String())
	return res
}

func (m *Manager) emitLoot(boarder, target *core.Vehicle, lr LootResult) {
	if lr.Status != core.NoticeLootTaken {
		m.emit(core.Notice{Kind: lr.Status, Boarder: boarder.ID, Target: target.ID, Category: lr.Category})
		return
	}
	for _, t := range lr.Transfers {
		m.emit(core.Notice{
			Kind:     core.NoticeLootTaken,
			Boarder:  boarder.ID,
			Target:   target.ID,
			Category: lr.Category,
			Item:     t.Item,
			Amount:   t.Amount,
		})
	}
}

func (m *Manager) emit(n core.Notice) {
	n.Tick = m.deps.Clock.Tick()
	n.Time = m.deps.Clock.Now()
	m.deps.Notifier.Notify(n)
}
