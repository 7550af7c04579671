// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/rams/internal/cards"
	"github.com/jason-s-yu/rams/internal/game"
)

// StatusAbandoned is written by the historian for idle games. The engine never sets it; a game
// loaded in this status resumes as in progress.
const StatusAbandoned = "abandoned"

// ErrStaleSnapshot is returned when a save would overwrite a newer snapshot written by another process.
var ErrStaleSnapshot = errors.New("stale game snapshot")

// GameRepository stores snapshots in the games, players and rounds tables. Each call runs in a
// single transaction so a snapshot is never half written.
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

func (r *GameRepository) Create(ctx context.Context, st *game.State) error {
	rulesJSON, roundJSON, err := encodeSnapshot(st)
	if err != nil {
		return err
	}
	err = pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO games (
				id, status, phase, dealer_index, current_player_index, round_number,
				trump_card_id, winner_player_index, rules, action_count, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		g := st.Game
		if _, e := tx.Exec(ctx, q,
			g.ID, g.Status, g.Phase, g.Dealer, g.CurrentPlayer, g.RoundNumber,
			g.TrumpCard.ID(), g.Winner, rulesJSON, g.ActionCount, g.CreatedAt, g.UpdatedAt,
		); e != nil {
			return e
		}
		return writeSeatsAndRound(ctx, tx, st, roundJSON)
	})
	if err != nil {
		return fmt.Errorf("create game %s: %w", st.Game.ID, err)
	}
	return nil
}

// Save writes the snapshot if it is newer than the stored one.
func (r *GameRepository) Save(ctx context.Context, st *game.State) error {
	rulesJSON, roundJSON, err := encodeSnapshot(st)
	if err != nil {
		return err
	}
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE games SET
				status = $2, phase = $3, dealer_index = $4, current_player_index = $5,
				round_number = $6, trump_card_id = $7, winner_player_index = $8, rules = $9,
				action_count = $10, updated_at = $11,
				end_time = CASE WHEN $2 = 'finished' THEN NOW() ELSE NULL END
			WHERE id = $1 AND action_count < $10
		`
		g := st.Game
		tag, e := tx.Exec(ctx, q,
			g.ID, g.Status, g.Phase, g.Dealer, g.CurrentPlayer,
			g.RoundNumber, g.TrumpCard.ID(), g.Winner, rulesJSON,
			g.ActionCount, g.UpdatedAt,
		)
		if e != nil {
			return fmt.Errorf("update game %s: %w", g.ID, e)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if e := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, g.ID).Scan(&exists); e != nil {
				return e
			}
			if !exists {
				return fmt.Errorf("%w: %s", game.ErrGameNotFound, g.ID)
			}
			return fmt.Errorf("%w: %s at action %d", ErrStaleSnapshot, g.ID, g.ActionCount)
		}
		return writeSeatsAndRound(ctx, tx, st, roundJSON)
	})
}

func (r *GameRepository) Load(ctx context.Context, id uuid.UUID) (*game.State, error) {
	st := &game.State{}
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		var (
			status    string
			trumpID   string
			rulesJSON []byte
		)
		g := &st.Game
		q := `
			SELECT id, status, phase, dealer_index, current_player_index, round_number,
				trump_card_id, winner_player_index, rules, action_count, created_at, updated_at
			FROM games WHERE id = $1
		`
		e := tx.QueryRow(ctx, q, id).Scan(
			&g.ID, &status, &g.Phase, &g.Dealer, &g.CurrentPlayer, &g.RoundNumber,
			&trumpID, &g.Winner, &rulesJSON, &g.ActionCount, &g.CreatedAt, &g.UpdatedAt,
		)
		if errors.Is(e, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", game.ErrGameNotFound, id)
		}
		if e != nil {
			return e
		}
		if g.RoundNumber == 0 {
			// a row the historian created before any snapshot was written
			return fmt.Errorf("%w: %s", game.ErrGameNotFound, id)
		}

		g.Status = game.Status(status)
		if status == StatusAbandoned {
			g.Status = game.StatusInProgress
		}
		if g.TrumpCard, e = cards.ParseID(trumpID); e != nil {
			return fmt.Errorf("game %s trump: %w", id, e)
		}
		if e := json.Unmarshal(rulesJSON, &g.Rules); e != nil {
			return fmt.Errorf("game %s rules: %w", id, e)
		}

		rows, e := tx.Query(ctx, `
			SELECT seat_index, type, pile, maltzy_count, pile_since
			FROM players WHERE game_id = $1 ORDER BY seat_index
		`, id)
		if e != nil {
			return e
		}
		seats := 0
		for rows.Next() {
			var p game.Player
			if e := rows.Scan(&p.Seat, &p.Type, &p.Pile, &p.MaltzyCount, &p.PileSince); e != nil {
				rows.Close()
				return e
			}
			if p.Seat < 0 || p.Seat >= game.SeatCount {
				rows.Close()
				return fmt.Errorf("%w: game %s has seat %d", game.ErrCorruptState, id, p.Seat)
			}
			st.Players[p.Seat] = p
			seats++
		}
		rows.Close()
		if e := rows.Err(); e != nil {
			return e
		}
		if seats != game.SeatCount {
			return fmt.Errorf("%w: game %s has %d seats", game.ErrCorruptState, id, seats)
		}

		var roundJSON []byte
		e = tx.QueryRow(ctx, `SELECT state FROM rounds WHERE game_id = $1 AND number = $2`, id, g.RoundNumber).Scan(&roundJSON)
		if errors.Is(e, pgx.ErrNoRows) {
			return fmt.Errorf("%w: game %s has no round %d", game.ErrCorruptState, id, g.RoundNumber)
		}
		if e != nil {
			return e
		}
		st.Round = &game.Round{}
		if e := json.Unmarshal(roundJSON, st.Round); e != nil {
			return fmt.Errorf("%w: game %s round: %v", game.ErrCorruptState, id, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Delete removes a game and everything hanging off it.
func (r *GameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	return err
}

func encodeSnapshot(st *game.State) (rulesJSON, roundJSON []byte, err error) {
	if st.Round == nil {
		return nil, nil, fmt.Errorf("%w: game %s has no active round", game.ErrCorruptState, st.Game.ID)
	}
	if rulesJSON, err = json.Marshal(st.Game.Rules); err != nil {
		return nil, nil, fmt.Errorf("encode rules: %w", err)
	}
	if roundJSON, err = json.Marshal(st.Round); err != nil {
		return nil, nil, fmt.Errorf("encode round: %w", err)
	}
	return rulesJSON, roundJSON, nil
}

func writeSeatsAndRound(ctx context.Context, tx pgx.Tx, st *game.State, roundJSON []byte) error {
	seatQ := `
		INSERT INTO players (game_id, seat_index, type, pile, maltzy_count, pile_since)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, seat_index)
		DO UPDATE SET type = $3, pile = $4, maltzy_count = $5, pile_since = $6
	`
	for _, p := range st.Players {
		if _, err := tx.Exec(ctx, seatQ, st.Game.ID, p.Seat, p.Type, p.Pile, p.MaltzyCount, p.PileSince); err != nil {
			return fmt.Errorf("write seat %d: %w", p.Seat, err)
		}
	}

	roundQ := `
		INSERT INTO rounds (game_id, number, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, number) DO UPDATE SET state = $3
	`
	if _, err := tx.Exec(ctx, roundQ, st.Game.ID, st.Round.Number, roundJSON); err != nil {
		return fmt.Errorf("write round %d: %w", st.Round.Number, err)
	}
	return nil
}
