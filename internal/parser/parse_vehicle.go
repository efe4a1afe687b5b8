package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/OCAP2/boarding/internal/util"
	"github.com/OCAP2/boarding/pkg/core"
)

var flagTokens = map[string]core.VehicleFlags{
	"disabled":  core.FlagDisabled,
	"noboard":   core.FlagNoBoard,
	"boardable": core.FlagBoardable,
}

// ParseOutfit parses an outfit definition for the catalogue.
// Args: name, kind, mass[, ammoType, ammoCapacity, ammoMass]
func (p *Parser) ParseOutfit(data []string) (core.Outfit, error) {
	var outfit core.Outfit
	if err := needArgs(data, 3); err != nil {
		return outfit, err
	}
	util.CleanArgs(data)

	outfit.Name = data[0]
	if outfit.Name == "" {
		return outfit, fmt.Errorf("%w: empty outfit name", ErrInvalidArgs)
	}
	outfit.Kind = core.ParseOutfitKind(strings.ToLower(data[1]))

	mass, err := strconv.ParseFloat(data[2], 64)
	if err != nil {
		return outfit, fmt.Errorf("error converting mass to float: %w", err)
	}
	outfit.Mass = mass

	if len(data) < 6 {
		return outfit, nil
	}
	outfit.AmmoType = data[3]
	capacity, err := parseIntFromFloat(data[4])
	if err != nil {
		return outfit, fmt.Errorf("error converting ammoCapacity to int: %w", err)
	}
	outfit.AmmoCapacity = int(capacity)
	ammoMass, err := strconv.ParseFloat(data[5], 64)
	if err != nil {
		return outfit, fmt.Errorf("error converting ammoMass to float: %w", err)
	}
	outfit.AmmoMass = ammoMass

	return outfit, nil
}

// ParseVehicle parses a vehicle joining the scenario.
// Args: id, name, isPlayer, crew, credits, worth, fuel, fuelMax, cargoCapacity,
// halfWidth, baseMass, shield, armour[, flags, cargo, outfits, parentId]
//
// flags is a list such as ["disabled","boardable"]; cargo and outfits are lists of
// [name, quantity] pairs. parentId names the vehicle an escort belongs to.
func (p *Parser) ParseVehicle(data []string) (ParsedVehicle, error) {
	var result ParsedVehicle
	if err := needArgs(data, 13); err != nil {
		return result, err
	}
	util.CleanArgs(data)
	v := &result.Vehicle

	id, err := parseVehicleID(data[0])
	if err != nil {
		return result, fmt.Errorf("error converting id to uint: %w", err)
	}
	if id == 0 {
		return result, fmt.Errorf("%w: vehicle id 0 is reserved", ErrInvalidArgs)
	}
	v.ID = id
	v.Name = data[1]

	v.IsPlayer, err = strconv.ParseBool(data[2])
	if err != nil {
		return result, fmt.Errorf("error converting isPlayer to bool: %w", err)
	}

	crew, err := parseIntFromFloat(data[3])
	if err != nil {
		return result, fmt.Errorf("error converting crew to int: %w", err)
	}
	v.Crew = int(crew)

	if v.Credits, err = parseIntFromFloat(data[4]); err != nil {
		return result, fmt.Errorf("error converting credits to int: %w", err)
	}
	if v.Worth, err = parseIntFromFloat(data[5]); err != nil {
		return result, fmt.Errorf("error converting worth to int: %w", err)
	}

	floats := []struct {
		name string
		dst  *float64
		src  string
	}{
		{"fuel", &v.Fuel, data[6]},
		{"fuelMax", &v.FuelMax, data[7]},
		{"halfWidth", &v.HalfWidth, data[9]},
		{"baseMass", &v.BaseMass, data[10]},
		{"shield", &v.Shield, data[11]},
		{"armour", &v.Armour, data[12]},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(f.src, 64); err != nil {
			return result, fmt.Errorf("error converting %s to float: %w", f.name, err)
		}
	}

	capacity, err := parseIntFromFloat(data[8])
	if err != nil {
		return result, fmt.Errorf("error converting cargoCapacity to int: %w", err)
	}
	v.CargoCapacity = int(capacity)

	if len(data) > 13 {
		for _, tok := range util.ParseStringArray(data[13]) {
			f, ok := flagTokens[strings.ToLower(tok)]
			if !ok {
				p.logger.Warn("Ignoring unknown vehicle flag", "vehicle", id, "flag", tok)
				continue
			}
			v.Set(f)
		}
	}

	if len(data) > 14 {
		pairs, err := parsePairs(data[14])
		if err != nil {
			return result, fmt.Errorf("error parsing cargo: %w", err)
		}
		for _, pr := range pairs {
			v.Cargo = append(v.Cargo, core.CargoLine{Commodity: pr.name, Quantity: pr.n})
		}
	}

	if len(data) > 15 {
		pairs, err := parsePairs(data[15])
		if err != nil {
			return result, fmt.Errorf("error parsing outfits: %w", err)
		}
		for _, pr := range pairs {
			result.Outfits = append(result.Outfits, OutfitRef{Name: pr.name, Ammo: pr.n})
		}
	}

	if len(data) > 16 && data[16] != "" {
		if v.ParentID, err = parseVehicleID(data[16]); err != nil {
			return result, fmt.Errorf("error converting parentId to uint: %w", err)
		}
		if v.ParentID == v.ID {
			return result, fmt.Errorf("%w: vehicle %d is its own parent", ErrInvalidArgs, v.ID)
		}
	}

	p.logger.Debug("Parsed vehicle",
		"id", v.ID,
		"name", v.Name,
		"player", v.IsPlayer,
		"outfits", len(result.Outfits))

	return result, nil
}

// ParseVehicleState parses a per-tick vehicle update.
// Args: id, x, y, vx, vy, shield, armour, fuel, disabled
func (p *Parser) ParseVehicleState(data []string) (ParsedVehicleState, error) {
	var state ParsedVehicleState
	if err := needArgs(data, 9); err != nil {
		return state, err
	}
	util.CleanArgs(data)

	id, err := parseVehicleID(data[0])
	if err != nil {
		return state, fmt.Errorf("error converting id to uint: %w", err)
	}
	state.ID = id

	floats := []*float64{
		&state.Position.X, &state.Position.Y,
		&state.Velocity.X, &state.Velocity.Y,
		&state.Shield, &state.Armour, &state.Fuel,
	}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(data[i+1], 64); err != nil {
			return state, fmt.Errorf("error converting arg %d to float: %w", i+1, err)
		}
	}

	state.Disabled, err = strconv.ParseBool(data[8])
	if err != nil {
		return state, fmt.Errorf("error converting disabled to bool: %w", err)
	}
	return state, nil
}

// ParseTarget parses a target selection. A target of 0 clears it.
// Args: id, targetId
func (p *Parser) ParseTarget(data []string) (vehicle, target core.VehicleID, err error) {
	if err = needArgs(data, 2); err != nil {
		return 0, 0, err
	}
	util.CleanArgs(data)

	if vehicle, err = parseVehicleID(data[0]); err != nil {
		return 0, 0, fmt.Errorf("error converting id to uint: %w", err)
	}
	if target, err = parseVehicleID(data[1]); err != nil {
		return 0, 0, fmt.Errorf("error converting targetId to uint: %w", err)
	}
	return vehicle, target, nil
}

// ParseID parses a command whose only argument is a vehicle id.
func (p *Parser) ParseID(data []string) (core.VehicleID, error) {
	if err := needArgs(data, 1); err != nil {
		return 0, err
	}
	util.CleanArgs(data)

	id, err := parseVehicleID(data[0])
	if err != nil {
		return 0, fmt.Errorf("error converting id to uint: %w", err)
	}
	return id, nil
}

type namedCount struct {
	name string
	n    int
}

// parsePairs decodes [["Food",4],["Ore",2.0]].
func parsePairs(s string) ([]namedCount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var raw [][]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}

	out := make([]namedCount, 0, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("entry %d: expected [name, count]", i)
		}
		name, ok := pair[0].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("entry %d: name is not a string", i)
		}
		n, ok := pair[1].(float64)
		if !ok || n < 0 || n != float64(int(n)) {
			return nil, fmt.Errorf("entry %d: count is not a whole number", i)
		}
		out = append(out, namedCount{name: name, n: int(n)})
	}
	return out, nil
}
