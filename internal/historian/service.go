// internal/historian/service.go pops action records from the redis queue and persists them to
// postgres in batches, marking games abandoned once they go quiet.
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/rams/internal/cache"
	"github.com/jason-s-yu/rams/internal/game"
)

// Source yields queued records; nil, nil means nothing arrived within timeout.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*cache.ActionRecord, error)
}

// Sink is where batches end up.
type Sink interface {
	WriteActions(ctx context.Context, batch []cache.ActionRecord) error
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error)
}

// Options tune batching and inactivity.
type Options struct {
	BatchSize     int
	FlushInterval time.Duration
	Inactivity    time.Duration
	SweepInterval time.Duration

	// PopTimeout bounds each blocking pop so ticks and cancellation are noticed.
	PopTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 500 * time.Millisecond
	}
	if o.Inactivity <= 0 {
		o.Inactivity = 10 * time.Minute
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = 3 * time.Second
	}
	return o
}

// Service captures game actions and marks games abandoned past the inactivity threshold.
type Service struct {
	src  Source
	sink Sink
	opts Options
	log  logrus.FieldLogger
	now  func() time.Time

	lastActivity sync.Map // uuid.UUID -> time.Time

	batchMu sync.Mutex
	batch   []cache.ActionRecord
}

func NewService(src Source, sink Sink, opts Options, logger logrus.FieldLogger) *Service {
	opts = opts.withDefaults()
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		src:   src,
		sink:  sink,
		opts:  opts,
		log:   logger,
		now:   time.Now,
		batch: make([]cache.ActionRecord, 0, opts.BatchSize),
	}
}

// Run drives the read loop and the inactivity sweep until ctx is cancelled, then flushes
// whatever is still buffered.
func (hs *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hs.readLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		hs.inactivityLoop(ctx)
	}()

	hs.log.Info("historian started")
	wg.Wait()

	// the run context is gone, give the last flush its own
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hs.Flush(flushCtx)
	hs.log.Info("historian stopped")
}

func (hs *Service) readLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.Flush(ctx)
		default:
			record, err := hs.src.Pop(ctx, hs.opts.PopTimeout)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				hs.log.WithError(err).Error("pop action record")
				continue
			}
			if record == nil {
				continue
			}
			hs.Record(ctx, *record)
		}
	}
}

// Record buffers one record, flushing when the batch is full.
func (hs *Service) Record(ctx context.Context, record cache.ActionRecord) {
	hs.lastActivity.Store(record.GameID, hs.now())
	if record.ActionType == string(game.EventGameFinished) {
		// finished games are never abandoned
		hs.lastActivity.Delete(record.GameID)
	}

	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.batch = append(hs.batch, record)
	if len(hs.batch) >= hs.opts.BatchSize {
		hs.flushLocked(ctx)
	}
}

// Flush writes the buffered batch in one transaction.
func (hs *Service) Flush(ctx context.Context) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushLocked(ctx)
}

func (hs *Service) flushLocked(ctx context.Context) {
	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]cache.ActionRecord, len(hs.batch))
	copy(batchCopy, hs.batch)

	if err := hs.sink.WriteActions(ctx, batchCopy); err != nil {
		// keep the batch for the next tick
		hs.log.WithError(err).WithField("count", len(batchCopy)).Error("flush actions")
		return
	}
	hs.batch = hs.batch[:0]
	hs.log.WithField("count", len(batchCopy)).Debug("flushed actions")
}

// Pending is the number of buffered records.
func (hs *Service) Pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}

func (hs *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.Sweep(ctx)
		}
	}
}

// Sweep marks every game idle longer than the threshold as abandoned.
func (hs *Service) Sweep(ctx context.Context) {
	now := hs.now()
	hs.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= hs.opts.Inactivity {
			return true
		}

		entry := hs.log.WithField("game", gameID)
		marked, err := hs.sink.MarkAbandoned(ctx, gameID)
		if err != nil {
			entry.WithError(err).Error("mark game abandoned")
			return true
		}
		hs.lastActivity.Delete(gameID)
		if marked {
			entry.Info("marked game abandoned due to inactivity")
		}
		return true
	})
}
