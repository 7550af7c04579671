// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jason-s-yu/rams/internal/game"
)

// ActionRecord holds the minimal info needed by the historian for one committed event.
type ActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorSeat     *int                   `json:"actor_seat,omitempty"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"` // epoch millis
}

// NewRecord flattens an update into the queue format. The snapshot itself is not logged.
func NewRecord(u game.Update, at time.Time) ActionRecord {
	payload := u.Event.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return ActionRecord{
		GameID:        u.GameID,
		ActionIndex:   u.ActionIndex,
		ActorSeat:     u.Event.Seat,
		ActionType:    string(u.Event.Type),
		ActionPayload: payload,
		Timestamp:     at.UnixMilli(),
	}
}

// Connect opens a client against addr and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// ActionLog is a redis list used as the historian queue. The server pushes with Publish and the
// historian pops with Pop.
type ActionLog struct {
	rdb   redis.Cmdable
	queue string
	now   func() time.Time
}

func NewActionLog(rdb redis.Cmdable, queue string) *ActionLog {
	return &ActionLog{rdb: rdb, queue: queue, now: time.Now}
}

// Publish implements game.Publisher by pushing one record per update.
func (l *ActionLog) Publish(ctx context.Context, u game.Update) error {
	return l.Push(ctx, NewRecord(u, l.now()))
}

// Push serializes record to JSON and appends it to the queue.
func (l *ActionLog) Push(ctx context.Context, record ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := l.rdb.RPush(ctx, l.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", l.queue, err)
	}
	return nil
}

// Pop blocks up to timeout for the next record. It returns nil, nil when the wait times out.
func (l *ActionLog) Pop(ctx context.Context, timeout time.Duration) (*ActionRecord, error) {
	res, err := l.rdb.BLPop(ctx, timeout, l.queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPop %s: %w", l.queue, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, nil
	}
	var record ActionRecord
	if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
		return nil, fmt.Errorf("invalid action record: %w", err)
	}
	return &record, nil
}

// Len is the number of records waiting.
func (l *ActionLog) Len(ctx context.Context) (int64, error) {
	return l.rdb.LLen(ctx, l.queue).Result()
}
