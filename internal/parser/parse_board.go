package parser

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/OCAP2/boarding/internal/util"
	"github.com/OCAP2/boarding/pkg/core"
)

// ParseStart parses a boarding request. The loot selection is either one list
// argument (["Credits","Fuel"]) or the remaining arguments as separate tokens.
// Tokens are passed through unvalidated; unknown ones are reported by the board
// manager.
// Args: boarderId[, loot...]
func (p *Parser) ParseStart(data []string) (ParsedStart, error) {
	var result ParsedStart
	if err := needArgs(data, 1); err != nil {
		return result, err
	}
	util.CleanArgs(data)

	id, err := parseVehicleID(data[0])
	if err != nil {
		return result, fmt.Errorf("error converting boarderId to uint: %w", err)
	}
	result.Boarder = id

	for _, arg := range data[1:] {
		result.Loot = append(result.Loot, util.ParseStringArray(arg)...)
	}
	return result, nil
}

// ParseCancel parses an external cancellation.
// Args: boarderId, reason
func (p *Parser) ParseCancel(data []string) (ParsedCancel, error) {
	var result ParsedCancel
	if err := needArgs(data, 2); err != nil {
		return result, err
	}
	util.CleanArgs(data)

	id, err := parseVehicleID(data[0])
	if err != nil {
		return result, fmt.Errorf("error converting boarderId to uint: %w", err)
	}
	result.Boarder = id

	reason, err := core.ParseOutcomeCode(data[1])
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	if reason == core.CanBoard {
		return result, fmt.Errorf("%w: %s is not a cancellation reason", ErrInvalidArgs, reason)
	}
	result.Reason = reason
	return result, nil
}

// ParseTick parses the elapsed simulation time of a tick in seconds. With no
// argument the fallback is used.
func (p *Parser) ParseTick(data []string, fallback time.Duration) (float64, error) {
	if len(data) == 0 {
		return fallback.Seconds(), nil
	}
	util.CleanArgs(data)

	dt, err := strconv.ParseFloat(data[0], 64)
	if err != nil {
		return 0, fmt.Errorf("error converting dt to float: %w", err)
	}
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0, fmt.Errorf("%w: dt %v", ErrInvalidArgs, dt)
	}
	return dt, nil
}

// ParseUpdate parses a single-session update.
// Args: boarderId, dt
func (p *Parser) ParseUpdate(data []string) (core.VehicleID, float64, error) {
	if err := needArgs(data, 2); err != nil {
		return 0, 0, err
	}
	id, err := p.ParseID(data[:1])
	if err != nil {
		return 0, 0, err
	}
	dt, err := p.ParseTick(data[1:], 0)
	if err != nil {
		return 0, 0, err
	}
	return id, dt, nil
}

// ParseScenario parses the start of a scenario.
// Args: name[, author, tag, tickInterval(seconds)]
func (p *Parser) ParseScenario(data []string) (core.Scenario, error) {
	var scenario core.Scenario
	if err := needArgs(data, 1); err != nil {
		return scenario, err
	}
	util.CleanArgs(data)

	scenario.Name = data[0]
	scenario.StartTime = time.Now()
	scenario.ExtensionVersion = p.extensionVersion
	scenario.ExtensionBuild = p.extensionBuild

	if len(data) > 1 {
		scenario.Author = data[1]
	}
	if len(data) > 2 {
		scenario.Tag = data[2]
	}
	if len(data) > 3 {
		secs, err := strconv.ParseFloat(data[3], 64)
		if err != nil {
			return scenario, fmt.Errorf("error converting tickInterval to float: %w", err)
		}
		scenario.TickInterval = time.Duration(secs * float64(time.Second))
	}

	p.logger.Debug("Parsed scenario data",
		"scenarioName", scenario.Name,
		"tag", scenario.Tag)

	return scenario, nil
}

// ParseCooldown parses a cooldown change. Without the flag the cooldown starts.
// Args: vehicleId[, active]
func (p *Parser) ParseCooldown(data []string) (core.VehicleID, bool, error) {
	id, err := p.ParseID(data)
	if err != nil {
		return 0, false, err
	}
	if len(data) < 2 {
		return id, true, nil
	}
	active, err := strconv.ParseBool(data[1])
	if err != nil {
		return 0, false, fmt.Errorf("error converting active to bool: %w", err)
	}
	return id, active, nil
}
