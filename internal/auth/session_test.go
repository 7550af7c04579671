package auth

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatTokenRoundTrip(t *testing.T) {
	tokens, err := New(0)
	require.NoError(t, err)
	id := uuid.New()

	tok, err := tokens.CreateSeatToken(id, 2)
	require.NoError(t, err)

	gotID, seat, err := tokens.AuthenticateSeatToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 2, seat)

	assert.NoError(t, tokens.Authorize(tok, id, 2))
	assert.ErrorIs(t, tokens.Authorize(tok, id, 1), ErrWrongSeat)
	assert.ErrorIs(t, tokens.Authorize(tok, uuid.New(), 2), ErrWrongSeat)
}

func TestSeatTokenRejectsForeignKey(t *testing.T) {
	a, err := New(0)
	require.NoError(t, err)
	b, err := New(0)
	require.NoError(t, err)

	tok, err := a.CreateSeatToken(uuid.New(), 0)
	require.NoError(t, err)
	_, _, err = b.AuthenticateSeatToken(tok)
	assert.Error(t, err)

	_, _, err = a.AuthenticateSeatToken("not.a.token")
	assert.Error(t, err)
}

func TestSeatTokenExpires(t *testing.T) {
	tokens, err := New(time.Hour)
	require.NoError(t, err)
	clock := time.Now()
	tokens.now = func() time.Time { return clock }

	tok, err := tokens.CreateSeatToken(uuid.New(), 0)
	require.NoError(t, err)
	_, _, err = tokens.AuthenticateSeatToken(tok)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Hour)
	_, _, err = tokens.AuthenticateSeatToken(tok)
	assert.Error(t, err)
}

func TestNewFromPath(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	dir := t.TempDir()
	privPath := filepath.Join(dir, "key")
	pubPath := filepath.Join(dir, "key.pub")
	require.NoError(t, os.WriteFile(privPath, priv, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pub, 0o644))

	tokens, err := NewFromPath(privPath, pubPath, 0)
	require.NoError(t, err)
	tok, err := tokens.CreateSeatToken(uuid.New(), 3)
	require.NoError(t, err)
	_, seat, err := tokens.AuthenticateSeatToken(tok)
	require.NoError(t, err)
	assert.Equal(t, 3, seat)

	_, err = NewFromPath(filepath.Join(dir, "missing"), pubPath, 0)
	assert.Error(t, err)
}
