// internal/historian/postgres.go
package historian

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/rams/internal/cache"
	"github.com/jason-s-yu/rams/internal/database"
	"github.com/jason-s-yu/rams/internal/game"
)

// PostgresSink writes into the game_actions table from database.Schema.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

func (ps *PostgresSink) WriteActions(ctx context.Context, batch []cache.ActionRecord) error {
	err := pgx.BeginTxFunc(ctx, ps.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batch {
			if err := insertGameActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertGameActionTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %d actions: %w", len(batch), err)
	}
	return nil
}

// MarkAbandoned flags the game if it is still in progress, reporting whether it did.
func (ps *PostgresSink) MarkAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error) {
	q := `
		UPDATE games
		SET status = $2, end_time = NOW()
		WHERE id = $1 AND status = $3
	`
	tag, err := ps.pool.Exec(ctx, q, gameID, database.StatusAbandoned, game.StatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// insertGameActionTx inserts one record, creating a stub games row when the server runs on the
// memory store, and closes the game on game.finished.
func insertGameActionTx(ctx context.Context, tx pgx.Tx, rec cache.ActionRecord) error {
	upsertGameQ := `
		INSERT INTO games (id, status)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET status = $2
		WHERE games.status = $3
	`
	if _, err := tx.Exec(ctx, upsertGameQ, rec.GameID, game.StatusInProgress, database.StatusAbandoned); err != nil {
		return err
	}

	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	actionInsertQ := `
		INSERT INTO game_actions (
			game_id, action_index, actor_seat, action_type, action_payload, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, actionInsertQ,
		rec.GameID, rec.ActionIndex, rec.ActorSeat, rec.ActionType, payload, time.UnixMilli(rec.Timestamp),
	); err != nil {
		return err
	}

	if rec.ActionType == string(game.EventGameFinished) {
		finalizeQ := `
			UPDATE games
			SET status = $2, end_time = NOW()
			WHERE id = $1 AND status <> $2
		`
		if _, err := tx.Exec(ctx, finalizeQ, rec.GameID, game.StatusFinished); err != nil {
			return err
		}
	}
	return nil
}
