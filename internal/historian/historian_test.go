// internal/historian/historian_test.go
package historian

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/rams/internal/cache"
	"github.com/jason-s-yu/rams/internal/game"
)

// chanSource hands out records pushed onto its channel.
type chanSource struct {
	ch chan cache.ActionRecord
}

func (cs *chanSource) Pop(ctx context.Context, timeout time.Duration) (*cache.ActionRecord, error) {
	select {
	case rec := <-cs.ch:
		return &rec, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type memorySink struct {
	mu        sync.Mutex
	written   []cache.ActionRecord
	flushes   int
	abandoned []uuid.UUID
	failWrite bool
}

func (ms *memorySink) WriteActions(_ context.Context, batch []cache.ActionRecord) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.failWrite {
		return errors.New("db down")
	}
	ms.written = append(ms.written, batch...)
	ms.flushes++
	return nil
}

func (ms *memorySink) MarkAbandoned(_ context.Context, id uuid.UUID) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.abandoned = append(ms.abandoned, id)
	return true, nil
}

func (ms *memorySink) count() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.written)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func record(id uuid.UUID, idx int, typ game.EventType) cache.ActionRecord {
	return cache.ActionRecord{GameID: id, ActionIndex: idx, ActionType: string(typ), Timestamp: time.Now().UnixMilli()}
}

func TestRecordFlushesAtBatchSize(t *testing.T) {
	sink := &memorySink{}
	hs := NewService(nil, sink, Options{BatchSize: 3, FlushInterval: time.Hour}, quietLogger())
	id := uuid.New()
	ctx := context.Background()

	hs.Record(ctx, record(id, 1, game.EventExchangeCompleted))
	hs.Record(ctx, record(id, 2, game.EventExchangeCompleted))
	assert.Equal(t, 0, sink.count())
	assert.Equal(t, 2, hs.Pending())

	hs.Record(ctx, record(id, 3, game.EventExchangeCompleted))
	assert.Equal(t, 3, sink.count())
	assert.Equal(t, 0, hs.Pending())
}

func TestFailedFlushKeepsBatch(t *testing.T) {
	sink := &memorySink{failWrite: true}
	hs := NewService(nil, sink, Options{BatchSize: 10}, quietLogger())
	hs.Record(context.Background(), record(uuid.New(), 1, game.EventCardPlayed))

	hs.Flush(context.Background())
	assert.Equal(t, 1, hs.Pending())

	sink.failWrite = false
	hs.Flush(context.Background())
	assert.Equal(t, 0, hs.Pending())
	assert.Equal(t, 1, sink.count())
}

func TestRunDrainsQueueAndFlushesOnStop(t *testing.T) {
	src := &chanSource{ch: make(chan cache.ActionRecord, 8)}
	sink := &memorySink{}
	hs := NewService(src, sink, Options{BatchSize: 100, FlushInterval: 20 * time.Millisecond, PopTimeout: 10 * time.Millisecond}, quietLogger())

	id := uuid.New()
	for i := 1; i <= 5; i++ {
		src.ch <- record(id, i, game.EventCardPlayed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hs.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return sink.count() == 5 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("historian did not stop")
	}
	assert.Equal(t, 0, hs.Pending())
}

func TestSweepMarksIdleGames(t *testing.T) {
	sink := &memorySink{}
	hs := NewService(nil, sink, Options{BatchSize: 100, Inactivity: time.Minute}, quietLogger())
	clock := time.Now()
	hs.now = func() time.Time { return clock }

	idle, busy, finished := uuid.New(), uuid.New(), uuid.New()
	ctx := context.Background()
	hs.Record(ctx, record(idle, 1, game.EventCardPlayed))
	hs.Record(ctx, record(finished, 9, game.EventGameFinished))

	clock = clock.Add(50 * time.Second)
	hs.Record(ctx, record(busy, 1, game.EventCardPlayed))

	clock = clock.Add(20 * time.Second)
	hs.Sweep(ctx)
	assert.Equal(t, []uuid.UUID{idle}, sink.abandoned)

	// already handled, not marked twice
	hs.Sweep(ctx)
	assert.Len(t, sink.abandoned, 1)
}
