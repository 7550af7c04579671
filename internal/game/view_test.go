package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewExchangeStatus(t *testing.T) {
	st := fixture(t, PhaseExchange)
	v := NewView(st)
	require.NotNil(t, v.ExchangeStatus)
	assert.Equal(t, "P1 exchanging...", *v.ExchangeStatus)
	assert.Equal(t, 15, v.Round.RemainingDeckCount)

	next, _ := apply(t, testEngine(), st, Exchange{Seat: 1, Discards: mustCards(t, "H-6", "S-9")})
	v = NewView(next)
	require.NotNil(t, v.ExchangeStatus)
	assert.Equal(t, "P1 changed 2 cards → P2 exchanging...", *v.ExchangeStatus)
	assert.Equal(t, 13, v.Round.RemainingDeckCount)
}

func TestViewHasNoExchangeStatusOutsideExchange(t *testing.T) {
	v := NewView(fixture(t, PhasePlay))
	assert.Nil(t, v.ExchangeStatus)
}

func TestViewMustDeclare(t *testing.T) {
	st := fixture(t, PhasePlay)
	st.Round.Taken = [SeatCount]int{1, 1, 0, 0}
	st.Players[2].Pile = 3
	st.Players[3].Pile = 3
	st.Round.PassedPlayers = []int{3}

	v := NewView(st)
	assert.Equal(t, [SeatCount]bool{false, false, true, false}, v.MustDeclare)
}

func TestViewIsDetached(t *testing.T) {
	st := fixture(t, PhasePlay)
	v := NewView(st)
	st.Round.Hands[0][0] = mustCard(t, "C-6")
	assert.Equal(t, mustCard(t, "H-11"), v.Round.Hands[0][0])
}

func TestViewJSONUsesCardIDs(t *testing.T) {
	data, err := json.Marshal(NewView(fixture(t, PhaseExchange)))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	game := decoded["game"].(map[string]interface{})
	assert.Equal(t, "C-14", game["trump_card_id"])

	round := decoded["round"].(map[string]interface{})
	hands := round["hands"].([]interface{})
	assert.Equal(t, "H-11", hands[0].([]interface{})[0])
	assert.NotContains(t, round, "remaining_deck")
	assert.EqualValues(t, 15, round["remaining_deck_count"])
}
