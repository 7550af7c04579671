package database

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/rams/internal/game"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newState(t *testing.T, seed int64) *game.State {
	t.Helper()
	e := game.NewEngine(quietLogger(), nil)
	st, _, err := e.NewGame(uuid.New(), game.DefaultHouseRules(), &seed)
	require.NoError(t, err)
	return st
}

// testPool connects to TEST_DATABASE_URL and migrates it, or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url, quietLogger())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestRoundSnapshotSurvivesEncoding(t *testing.T) {
	st := newState(t, 42)
	_, roundJSON, err := encodeSnapshot(st)
	require.NoError(t, err)

	var decoded game.Round
	require.NoError(t, json.Unmarshal(roundJSON, &decoded))
	assert.Equal(t, st.Round.Hands, decoded.Hands)
	assert.Equal(t, st.Round.RemainingDeck, decoded.RemainingDeck)
	assert.Equal(t, st.Round.Seed, decoded.Seed)
}

func TestEncodeSnapshotNeedsRound(t *testing.T) {
	st := newState(t, 1)
	st.Round = nil
	_, _, err := encodeSnapshot(st)
	assert.ErrorIs(t, err, game.ErrCorruptState)
}

func TestGameRepositoryRoundTrip(t *testing.T) {
	pool := testPool(t)
	repo := NewGameRepository(pool)
	ctx := context.Background()

	st := newState(t, 7)
	require.NoError(t, repo.Create(ctx, st))
	t.Cleanup(func() { _ = repo.Delete(ctx, st.Game.ID) })

	loaded, err := repo.Load(ctx, st.Game.ID)
	require.NoError(t, err)
	assert.Equal(t, st.Game.ID, loaded.Game.ID)
	assert.Equal(t, st.Game.TrumpCard, loaded.Game.TrumpCard)
	assert.Equal(t, st.Players, loaded.Players)
	assert.Equal(t, st.Round.Hands, loaded.Round.Hands)
	assert.Equal(t, st.Round.RemainingDeck, loaded.Round.RemainingDeck)

	e := game.NewEngine(quietLogger(), nil)
	next, _, err := e.Apply(loaded, game.Exchange{Seat: loaded.Game.CurrentPlayer})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, next))

	again, err := repo.Load(ctx, st.Game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Game.ActionCount)
	assert.Equal(t, next.Game.CurrentPlayer, again.Game.CurrentPlayer)

	// the same snapshot written twice is stale the second time
	assert.ErrorIs(t, repo.Save(ctx, next), ErrStaleSnapshot)
}

func TestGameRepositoryNotFound(t *testing.T) {
	repo := NewGameRepository(testPool(t))
	ctx := context.Background()

	_, err := repo.Load(ctx, uuid.New())
	assert.ErrorIs(t, err, game.ErrGameNotFound)

	st := newState(t, 3)
	st.Game.ActionCount = 1
	assert.ErrorIs(t, repo.Save(ctx, st), game.ErrGameNotFound)
}
