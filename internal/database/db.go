// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Connect opens a pool against url and pings it before handing it back.
func Connect(ctx context.Context, url string, logger logrus.FieldLogger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host":     config.ConnConfig.Host,
		"database": config.ConnConfig.Database,
	}).Info("connected to database")
	return pool, nil
}

// Migrate creates any missing tables. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Schema is the full table layout. Rows in games may be created by the historian before the
// server has written a snapshot, so every snapshot column has a default.
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	id                   UUID PRIMARY KEY,
	status               TEXT        NOT NULL DEFAULT 'in_progress',
	phase                TEXT        NOT NULL DEFAULT 'exchange',
	dealer_index         INT         NOT NULL DEFAULT 0,
	current_player_index INT         NOT NULL DEFAULT 0,
	round_number         INT         NOT NULL DEFAULT 0,
	trump_card_id        TEXT        NOT NULL DEFAULT '',
	winner_player_index  INT,
	rules                JSONB       NOT NULL DEFAULT '{}'::jsonb,
	action_count         INT         NOT NULL DEFAULT 0,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	end_time             TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS players (
	game_id      UUID NOT NULL REFERENCES games (id) ON DELETE CASCADE,
	seat_index   INT  NOT NULL,
	type         TEXT NOT NULL,
	pile         INT  NOT NULL,
	maltzy_count INT  NOT NULL DEFAULT 0,
	pile_since   INT  NOT NULL DEFAULT 0,
	PRIMARY KEY (game_id, seat_index)
);

CREATE TABLE IF NOT EXISTS rounds (
	game_id UUID  NOT NULL REFERENCES games (id) ON DELETE CASCADE,
	number  INT   NOT NULL,
	state   JSONB NOT NULL,
	PRIMARY KEY (game_id, number)
);

CREATE TABLE IF NOT EXISTS game_actions (
	id             BIGSERIAL PRIMARY KEY,
	game_id        UUID        NOT NULL REFERENCES games (id) ON DELETE CASCADE,
	action_index   INT         NOT NULL,
	actor_seat     INT,
	action_type    TEXT        NOT NULL,
	action_payload JSONB       NOT NULL DEFAULT '{}'::jsonb,
	recorded_at    TIMESTAMPTZ NOT NULL,
	inserted_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS game_actions_game_idx ON game_actions (game_id, action_index);
`
