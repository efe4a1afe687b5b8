package core

import (
	"fmt"
	"strings"
)

// LootCategory is something a boarder can take from a boarded vehicle.
type LootCategory uint8

const (
	LootCredits LootCategory = iota
	LootCargo
	LootFuel
	LootAmmo
)

var lootNames = [...]string{
	LootCredits: "Credits",
	LootCargo:   "Cargo",
	LootFuel:    "Fuel",
	LootAmmo:    "Ammo",
}

// lootAliases maps accepted tokens (lower case) to categories.
var lootAliases = map[string]LootCategory{
	"credits":     LootCredits,
	"cargo":       LootCargo,
	"commodities": LootCargo,
	"fuel":        LootFuel,
	"ammo":        LootAmmo,
}

// LootCategories lists every category in canonical order.
func LootCategories() []LootCategory {
	return []LootCategory{LootCredits, LootCargo, LootFuel, LootAmmo}
}

func (c LootCategory) String() string {
	if int(c) < len(lootNames) {
		return lootNames[c]
	}
	return fmt.Sprintf("Loot(%d)", uint8(c))
}

// MarshalText encodes the category by name.
func (c LootCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category token.
func (c *LootCategory) UnmarshalText(b []byte) error {
	cat, ok := ParseLootCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown loot category: %q", string(b))
	}
	*c = cat
	return nil
}

// ParseLootCategory maps a token to its category.
func ParseLootCategory(token string) (LootCategory, bool) {
	c, ok := lootAliases[strings.ToLower(strings.TrimSpace(token))]
	return c, ok
}

// ParseLootCategories converts requested tokens into categories, keeping request order
// and dropping duplicates. Tokens outside the vocabulary are returned separately.
func ParseLootCategories(tokens []string) (cats []LootCategory, unknown []string) {
	seen := make(map[LootCategory]bool, len(tokens))
	for _, tok := range tokens {
		c, ok := ParseLootCategory(tok)
		if !ok {
			unknown = append(unknown, tok)
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		cats = append(cats, c)
	}
	return cats, unknown
}
