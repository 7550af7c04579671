// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrWrongSeat is returned when a valid token names another game or seat.
var ErrWrongSeat = errors.New("token does not grant this seat")

// SeatTokens issues and checks JWTs that let the holder act for one seat of one game.
// "sub" carries the game id and "seat" the seat index.
type SeatTokens struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// expire of 0 means tokens carry no exp claim.
	expire time.Duration
	now    func() time.Time
}

// New generates a fresh ed25519 key pair at runtime. Tokens do not survive a restart.
func New(expire time.Duration) (*SeatTokens, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &SeatTokens{privateKey: privateKey, publicKey: publicKey, expire: expire, now: time.Now}, nil
}

// NewFromPath reads raw ed25519 private/public keys from file.
func NewFromPath(privatePath, publicPath string, expire time.Duration) (*SeatTokens, error) {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("ed25519 key files have the wrong size")
	}
	return &SeatTokens{
		privateKey: ed25519.PrivateKey(privateKeyData),
		publicKey:  ed25519.PublicKey(publicKeyData),
		expire:     expire,
		now:        time.Now,
	}, nil
}

// CreateSeatToken signs a token for seat of gameID.
func (st *SeatTokens) CreateSeatToken(gameID uuid.UUID, seat int) (string, error) {
	claims := jwt.MapClaims{
		"sub":  gameID.String(),
		"seat": seat,
		"iat":  st.now().Unix(),
	}
	if st.expire > 0 {
		claims["exp"] = st.now().Add(st.expire).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(st.privateKey)
}

// AuthenticateSeatToken verifies a token string and returns the game and seat it grants.
func (st *SeatTokens) AuthenticateSeatToken(tokenString string) (uuid.UUID, int, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return st.publicKey, nil
	}, jwt.WithTimeFunc(st.now))
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return uuid.Nil, 0, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, 0, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, 0, fmt.Errorf("missing sub in jwt")
	}
	gameID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("invalid game id in jwt: %w", err)
	}
	// numeric claims decode as float64
	seat, ok := claims["seat"].(float64)
	if !ok || seat != float64(int(seat)) {
		return uuid.Nil, 0, fmt.Errorf("missing seat in jwt")
	}
	return gameID, int(seat), nil
}

// Authorize checks that tokenString grants seat of gameID.
func (st *SeatTokens) Authorize(tokenString string, gameID uuid.UUID, seat int) error {
	gotGame, gotSeat, err := st.AuthenticateSeatToken(tokenString)
	if err != nil {
		return err
	}
	if gotGame != gameID || gotSeat != seat {
		return fmt.Errorf("%w: token is for seat %d", ErrWrongSeat, gotSeat)
	}
	return nil
}
