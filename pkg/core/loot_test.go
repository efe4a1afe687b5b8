package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLootCategories(t *testing.T) {
	cats, unknown := ParseLootCategories([]string{"Ammo", "credits", "Commodities", "Hats", "AMMO", " fuel "})

	assert.Equal(t, []LootCategory{LootAmmo, LootCredits, LootCargo, LootFuel}, cats)
	assert.Equal(t, []string{"Hats"}, unknown)
}

func TestParseLootCategories_Empty(t *testing.T) {
	cats, unknown := ParseLootCategories(nil)

	assert.Empty(t, cats)
	assert.Empty(t, unknown)
}

func TestLootCategory_JSON(t *testing.T) {
	b, err := json.Marshal([]LootCategory{LootCargo, LootFuel})
	require.NoError(t, err)
	assert.JSONEq(t, `["Cargo","Fuel"]`, string(b))

	var back []LootCategory
	require.NoError(t, json.Unmarshal([]byte(`["cargo","Ammo"]`), &back))
	assert.Equal(t, []LootCategory{LootCargo, LootAmmo}, back)

	assert.Error(t, json.Unmarshal([]byte(`["hats"]`), &back))
}
