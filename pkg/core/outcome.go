package core

import (
	"fmt"
	"strings"
)

// OutcomeCode is the result of a boarding eligibility check or the reason a boarding
// session ended early. The set is closed.
type OutcomeCode uint8

const (
	CanBoard OutcomeCode = iota
	NoTarget
	NotBoardable
	AlreadyBoarded
	NotDisabled
	TooFar
	TooFast
	AlreadyBoarding
	CooldownInterrupted
)

var outcomeNames = [...]string{
	CanBoard:            "CAN_BOARD",
	NoTarget:            "NO_TARGET",
	NotBoardable:        "NOT_BOARDABLE",
	AlreadyBoarded:      "ALREADY_BOARDED",
	NotDisabled:         "NOT_DISABLED",
	TooFar:              "TOO_FAR",
	TooFast:             "TOO_FAST",
	AlreadyBoarding:     "ALREADY_BOARDING",
	CooldownInterrupted: "COOLDOWN_INTERRUPTED",
}

// OutcomeCodes lists every code in declaration order.
func OutcomeCodes() []OutcomeCode {
	codes := make([]OutcomeCode, len(outcomeNames))
	for i := range outcomeNames {
		codes[i] = OutcomeCode(i)
	}
	return codes
}

func (c OutcomeCode) String() string {
	if int(c) < len(outcomeNames) {
		return outcomeNames[c]
	}
	return fmt.Sprintf("OUTCOME(%d)", uint8(c))
}

// MarshalText encodes the code by name.
func (c OutcomeCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a code name.
func (c *OutcomeCode) UnmarshalText(b []byte) error {
	code, err := ParseOutcomeCode(string(b))
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// ParseOutcomeCode parses a code name such as "TOO_FAR" (case-insensitive).
func ParseOutcomeCode(s string) (OutcomeCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range outcomeNames {
		if name == s {
			return OutcomeCode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown outcome code: %q", s)
}
