package cache

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/rams/internal/game"
)

func TestNewRecord(t *testing.T) {
	seat := 2
	id := uuid.New()
	at := time.UnixMilli(1700000000123)
	rec := NewRecord(game.Update{
		GameID:      id,
		ActionIndex: 4,
		Event: game.Event{
			Type:    game.EventCardPlayed,
			Seat:    &seat,
			Payload: map[string]interface{}{"card": "H-12", "trick_number": 2},
		},
	}, at)

	assert.Equal(t, id, rec.GameID)
	assert.Equal(t, 4, rec.ActionIndex)
	assert.Equal(t, "card.played", rec.ActionType)
	assert.Equal(t, int64(1700000000123), rec.Timestamp)
	require.NotNil(t, rec.ActorSeat)
	assert.Equal(t, 2, *rec.ActorSeat)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, id.String(), wire["game_id"])
	assert.Equal(t, "H-12", wire["action_payload"].(map[string]interface{})["card"])
	assert.NotContains(t, wire, "state")
}

func TestNewRecordWithoutSeatOrPayload(t *testing.T) {
	rec := NewRecord(game.Update{Event: game.Event{Type: game.EventGameFinished}}, time.Now())
	assert.Nil(t, rec.ActorSeat)
	assert.NotNil(t, rec.ActionPayload)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "actor_seat")
}

// Needs a running redis; set TEST_REDIS_ADDR to run it.
func TestActionLogPushPop(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, 0)
	require.NoError(t, err)
	defer rdb.Close()

	queue := "rams_test_" + uuid.NewString()
	defer rdb.Del(ctx, queue)
	log := NewActionLog(rdb, queue)

	seat := 1
	require.NoError(t, log.Publish(ctx, game.Update{
		GameID:      uuid.New(),
		ActionIndex: 1,
		Event:       game.Event{Type: game.EventExchangeCompleted, Seat: &seat, Payload: map[string]interface{}{"count": 2}},
	}))
	n, err := log.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rec, err := log.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "exchange.completed", rec.ActionType)
	assert.EqualValues(t, 2, rec.ActionPayload["count"])

	rec, err = log.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.Nil(t, rec, "an empty queue times out quietly")
}
