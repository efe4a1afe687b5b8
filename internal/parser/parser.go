package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/OCAP2/boarding/pkg/core"
)

// ErrInvalidArgs is returned when a command carries too few or malformed arguments.
var ErrInvalidArgs = errors.New("invalid arguments")

func needArgs(data []string, n int) error {
	if len(data) < n {
		return fmt.Errorf("%w: got %d, need %d", ErrInvalidArgs, len(data), n)
	}
	return nil
}

// parseUintFromFloat parses a string that may be an integer ("32") or float ("32.00") into uint64.
// Script hosts often have no integer type and serialize every number as a float.
func parseUintFromFloat(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("parseUintFromFloat: %q is not a valid uint64", s)
	}
	return uint64(f), nil
}

// parseIntFromFloat parses a string that may be an integer or float into int64.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

func parseVehicleID(s string) (core.VehicleID, error) {
	v, err := parseUintFromFloat(s)
	if err != nil {
		return 0, err
	}
	if v > 1<<32-1 {
		return 0, fmt.Errorf("vehicle id %d out of range", v)
	}
	return core.VehicleID(v), nil
}

// Parser provides pure []string -> core struct conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger

	// Static config set at creation time
	extensionVersion string
	extensionBuild   string
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger, extensionVersion, extensionBuild string) *Parser {
	return &Parser{
		logger:           logger,
		extensionVersion: extensionVersion,
		extensionBuild:   extensionBuild,
	}
}
