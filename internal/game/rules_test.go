package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHouseRulesUpdate(t *testing.T) {
	hr := DefaultHouseRules()
	require.NoError(t, hr.Update(map[string]interface{}{
		"startingPile": float64(30),
		"humanSeats":   2,
	}))
	assert.Equal(t, HouseRules{StartingPile: 30, HumanSeats: 2}, hr)

	require.NoError(t, hr.Update(map[string]interface{}{"unknown": true, "humanSeats": nil}))
	assert.Equal(t, 2, hr.HumanSeats, "nil values are ignored")
}

func TestHouseRulesUpdateRejects(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"wrong type": {"startingPile": "twenty"},
		"fraction":   {"startingPile": 20.5},
		"zero pile":  {"startingPile": float64(0)},
		"too many":   {"humanSeats": float64(5)},
		"negative":   {"humanSeats": -1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			hr := DefaultHouseRules()
			assert.Error(t, hr.Update(in))
		})
	}
}

func TestParseRulesLeavesCurrentAlone(t *testing.T) {
	current := DefaultHouseRules()
	parsed, err := ParseRules(map[string]interface{}{"humanSeats": float64(0)}, current)
	require.NoError(t, err)
	assert.Equal(t, 0, parsed.HumanSeats)
	assert.Equal(t, 1, current.HumanSeats)
}

func TestSeatTypes(t *testing.T) {
	hr := HouseRules{StartingPile: 20, HumanSeats: 2}
	assert.Equal(t, PlayerHuman, hr.seatType(0))
	assert.Equal(t, PlayerHuman, hr.seatType(1))
	assert.Equal(t, PlayerAI, hr.seatType(2))
}
