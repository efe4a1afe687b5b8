package worker

import (
	"fmt"

	"github.com/OCAP2/boarding/internal/board"
	"github.com/OCAP2/boarding/internal/dispatcher"
	"github.com/OCAP2/boarding/pkg/core"
)

// Status is the reply to :BOARD:STATUS:.
type Status struct {
	Phase   board.Phase    `json:"phase"`
	Session *board.Session `json:"session,omitempty"`
}

// RegisterHandlers registers all simulation event handlers with the dispatcher.
// Notices and hits raised afterwards go through it.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	m.mu.Lock()
	m.dispatcher = d
	m.mu.Unlock()

	// Catalogue and registry - sync (must be in place before the commands that use them)
	d.Register(":NEW:OUTFIT:", m.handleNewOutfit, dispatcher.Logged())
	d.Register(":NEW:VEHICLE:", m.handleNewVehicle, dispatcher.Logged())
	d.Register(":VEHICLE:STATE:", m.handleVehicleState)
	d.Register(":VEHICLE:TARGET:", m.handleVehicleTarget, dispatcher.Logged())
	d.Register(":VEHICLE:REMOVE:", m.handleVehicleRemove, dispatcher.Logged())

	// Boarding - sync, the board manager is single-goroutine
	d.Register(":BOARD:START:", m.handleBoardStart, dispatcher.Logged())
	d.Register(":BOARD:UPDATE:", m.handleBoardUpdate)
	d.Register(":BOARD:CANCEL:", m.handleBoardCancel, dispatcher.Logged())
	d.Register(":BOARD:COOLDOWN:", m.handleBoardCooldown, dispatcher.Logged())
	d.Register(":BOARD:CAN:", m.handleBoardCan)
	d.Register(":BOARD:STATUS:", m.handleBoardStatus)
	d.Register(":BOARD:LOOTABLE:", m.handleBoardLootable)

	d.Register(":TICK:", m.handleTick)

	// Recording - buffered, blocking so nothing is lost and order is kept
	d.Register(":NOTICE:", m.handleNotice, dispatcher.Buffered(10000), dispatcher.Blocking())
	d.Register(":HIT:", m.handleHit, dispatcher.Buffered(1000), dispatcher.Blocking())
}

func (m *Manager) handleNewOutfit(e dispatcher.Event) (any, error) {
	o, err := m.deps.ParserService.ParseOutfit(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse outfit: %w", err)
	}
	m.deps.OutfitCache.Set(&o)
	return nil, nil
}

func (m *Manager) handleNewVehicle(e dispatcher.Event) (any, error) {
	parsed, err := m.deps.ParserService.ParseVehicle(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vehicle: %w", err)
	}

	v := parsed.Vehicle
	for _, ref := range parsed.Outfits {
		o, ok := m.deps.OutfitCache.Get(ref.Name)
		if !ok {
			m.log().Warn("vehicle mounts unknown outfit", "vehicle", v.ID, "outfit", ref.Name)
			continue
		}
		slot := core.OutfitSlot{Outfit: o}
		if slot.IsLauncher() {
			slot.Ammo = min(max(ref.Ammo, 0), o.AmmoCapacity)
		}
		v.Outfits = append(v.Outfits, slot)
	}

	m.deps.EntityCache.Add(&v)

	if b := m.getBackend(); b != nil {
		if err := b.AddVehicle(snapshot(&v), m.deps.Scenario.Tick(), m.deps.Scenario.Now()); err != nil {
			return nil, fmt.Errorf("failed to record vehicle: %w", err)
		}
	}
	return nil, nil
}

func (m *Manager) vehicle(id core.VehicleID) (*core.Vehicle, error) {
	v, ok := m.deps.EntityCache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVehicle, id)
	}
	return v, nil
}

func (m *Manager) handleVehicleState(e dispatcher.Event) (any, error) {
	state, err := m.deps.ParserService.ParseVehicleState(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vehicle state: %w", err)
	}

	v, err := m.vehicle(state.ID)
	if err != nil {
		return nil, err
	}
	v.Position = state.Position
	v.Velocity = state.Velocity
	v.Shield = state.Shield
	v.Armour = state.Armour
	v.Fuel = state.Fuel
	if state.Disabled {
		v.Set(core.FlagDisabled)
	} else {
		v.Clear(core.FlagDisabled)
		v.DisableTimer = 0
	}
	return nil, nil
}

func (m *Manager) handleVehicleTarget(e dispatcher.Event) (any, error) {
	id, target, err := m.deps.ParserService.ParseTarget(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target: %w", err)
	}

	v, err := m.vehicle(id)
	if err != nil {
		return nil, err
	}
	v.TargetID = target
	return nil, nil
}

func (m *Manager) handleVehicleRemove(e dispatcher.Event) (any, error) {
	id, err := m.deps.ParserService.ParseID(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vehicle id: %w", err)
	}

	m.board.Cancel(id, core.NoTarget)
	if !m.deps.EntityCache.Remove(id) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVehicle, id)
	}
	return true, nil
}

func (m *Manager) handleBoardStart(e dispatcher.Event) (any, error) {
	req, err := m.deps.ParserService.ParseStart(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse boarding request: %w", err)
	}
	return m.board.Start(req.Boarder, req.Loot).String(), nil
}

func (m *Manager) handleBoardUpdate(e dispatcher.Event) (any, error) {
	id, dt, err := m.deps.ParserService.ParseUpdate(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse boarding update: %w", err)
	}
	return m.board.Update(id, dt), nil
}

func (m *Manager) handleBoardCancel(e dispatcher.Event) (any, error) {
	req, err := m.deps.ParserService.ParseCancel(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cancellation: %w", err)
	}
	return m.board.Cancel(req.Boarder, req.Reason), nil
}

// handleBoardCooldown starts or ends a vehicle's cooldown. Starting one interrupts
// a boarding session in progress.
func (m *Manager) handleBoardCooldown(e dispatcher.Event) (any, error) {
	id, active, err := m.deps.ParserService.ParseCooldown(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cooldown: %w", err)
	}

	v, err := m.vehicle(id)
	if err != nil {
		return nil, err
	}
	if !active {
		v.Clear(core.FlagCooldown)
		return false, nil
	}
	v.Set(core.FlagCooldown)
	return m.board.Cancel(id, core.CooldownInterrupted), nil
}

func (m *Manager) handleBoardCan(e dispatcher.Event) (any, error) {
	id, err := m.deps.ParserService.ParseID(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vehicle id: %w", err)
	}
	return m.board.CanBoard(id).String(), nil
}

func (m *Manager) handleBoardStatus(e dispatcher.Event) (any, error) {
	id, err := m.deps.ParserService.ParseID(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vehicle id: %w", err)
	}
	s, ok := m.board.Session(id)
	if !ok {
		return Status{Phase: board.PhaseIdle}, nil
	}
	return Status{Phase: board.PhaseBoarding, Session: &s}, nil
}

func (m *Manager) handleBoardLootable(e dispatcher.Event) (any, error) {
	id, err := m.deps.ParserService.ParseID(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vehicle id: %w", err)
	}
	if _, err := m.vehicle(id); err != nil {
		return nil, err
	}

	cats := m.board.Lootable(id)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.String())
	}
	return names, nil
}

// handleTick advances the clock, moves every vehicle and then runs every boarding
// session for the elapsed time.
func (m *Manager) handleTick(e dispatcher.Event) (any, error) {
	dt, err := m.deps.ParserService.ParseTick(e.Args, m.deps.TickInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tick: %w", err)
	}

	m.deps.Scenario.Advance()
	m.deps.EntityCache.Each(func(v *core.Vehicle) {
		v.Tick(dt)
	})
	return m.board.UpdateAll(dt), nil
}

func (m *Manager) handleNotice(e dispatcher.Event) (any, error) {
	n, ok := e.Payload.(core.Notice)
	if !ok {
		return nil, fmt.Errorf("unexpected notice payload %T", e.Payload)
	}
	m.recordNotice(n)
	return nil, nil
}

func (m *Manager) handleHit(e dispatcher.Event) (any, error) {
	h, ok := e.Payload.(core.HitEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected hit payload %T", e.Payload)
	}
	m.recordHit(h)
	return nil, nil
}
