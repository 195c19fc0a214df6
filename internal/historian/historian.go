// Package historian pops accepted game actions from the Redis queue and
// persists them in batches. It is a write-only audit trail; games are never
// restored from it.
package historian

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/skyjo/internal/cache"
	"github.com/jason-s-yu/skyjo/internal/database"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Action types the game service records for Start and Reset.
const (
	startAction = "game_start"
	resetAction = "game_reset"
)

// Sink persists batches and game status changes. *database.Store implements it.
type Sink interface {
	InsertGameActions(ctx context.Context, records []cache.GameActionRecord) error
	MarkGameStatus(ctx context.Context, gameID uuid.UUID, status string) error
	ReopenGame(ctx context.Context, gameID uuid.UUID) error
}

// Options tunes a Service.
type Options struct {
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
	Inactivity time.Duration // duration until a game is marked abandoned
	PopTimeout time.Duration
}

func (o *Options) defaults() {
	if o.Queue == "" {
		o.Queue = cache.DefaultQueueName
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = 500 * time.Millisecond
	}
	if o.Inactivity <= 0 {
		o.Inactivity = 10 * time.Minute
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = 3 * time.Second
	}
}

// Service encapsulates the Redis + DB logic for capturing game actions
// and marking games abandoned when a certain inactivity threshold is reached.
type Service struct {
	rdb    *redis.Client
	sink   Sink
	opts   Options
	logger *logrus.Entry

	lastActivity sync.Map // map[uuid.UUID]time.Time for tracking last activity per game

	batchMu sync.Mutex
	batch   []cache.GameActionRecord
}

// NewService builds a Service reading from rdb and writing to sink.
func NewService(rdb *redis.Client, sink Sink, opts Options, logger *logrus.Logger) *Service {
	opts.defaults()
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		rdb:    rdb,
		sink:   sink,
		opts:   opts,
		logger: logger.WithField("component", "historian"),
		batch:  make([]cache.GameActionRecord, 0, opts.BatchSize),
	}
}

// Run starts the queue reader, the flush ticker and the inactivity check,
// and blocks until ctx is done. The pending batch is flushed on the way out.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); s.readLoop(ctx) }()
	go func() { defer wg.Done(); s.flushLoop(ctx) }()
	go func() { defer wg.Done(); s.inactivityLoop(ctx) }()

	s.logger.WithField("queue", s.opts.Queue).Info("historian started")
	<-ctx.Done()
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Flush(flushCtx)
	s.logger.Info("historian stopped")
}

// readLoop continuously uses BLPop to retrieve messages from the Redis queue.
func (s *Service) readLoop(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := s.rdb.BLPop(ctx, s.opts.PopTimeout, s.opts.Queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			s.logger.Errorf("BLPop: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		s.HandleRaw(ctx, []byte(res[1]))
	}
}

func (s *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// inactivityLoop periodically marks games abandoned once they have been idle
// past the threshold.
func (s *Service) inactivityLoop(ctx context.Context) {
	interval := time.Minute
	if s.opts.Inactivity < interval {
		interval = s.opts.Inactivity
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.SweepInactive(ctx, now)
		}
	}
}

// HandleRaw decodes one queue payload and adds it to the batch. Malformed
// payloads are logged and dropped.
func (s *Service) HandleRaw(ctx context.Context, payload []byte) {
	rec, err := cache.DecodeRecord(payload)
	if err != nil {
		s.logger.Warnf("invalid action record: %v", err)
		return
	}
	s.lastActivity.Store(rec.GameID, time.Now())
	s.append(ctx, rec)
}

// append adds a record to the batch and flushes once the batch is full.
func (s *Service) append(ctx context.Context, rec cache.GameActionRecord) {
	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.opts.BatchSize
	s.batchMu.Unlock()

	if full {
		s.Flush(ctx)
	}
}

// Pending returns the number of records waiting for the next flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

// Flush writes the current batch to the sink in a single transaction. A
// failed batch is kept and retried on the next flush. A reset of a started
// game marks it completed and a new deal reopens it.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	if len(s.batch) == 0 {
		return
	}
	if err := s.sink.InsertGameActions(ctx, s.batch); err != nil {
		s.logger.WithField("pending", len(s.batch)).Errorf("flush failed: %v", err)
		return
	}
	s.logger.Debugf("flushed %d actions", len(s.batch))

	// status changes are applied in record order; a game dealt again after
	// a reset is back in progress
	closed := make(map[uuid.UUID]bool)
	for _, rec := range s.batch {
		switch {
		case rec.ActionType == startAction:
			if err := s.sink.ReopenGame(ctx, rec.GameID); err != nil {
				s.logger.WithField("game_id", rec.GameID).Errorf("failed to reopen game: %v", err)
			}
			closed[rec.GameID] = false
		case rec.ActionType == resetAction && finishedGame(rec):
			if err := s.sink.MarkGameStatus(ctx, rec.GameID, database.StatusCompleted); err != nil {
				s.logger.WithField("game_id", rec.GameID).Errorf("failed to mark game completed: %v", err)
				closed[rec.GameID] = false
				continue
			}
			closed[rec.GameID] = true
		default:
			closed[rec.GameID] = false
		}
	}
	for gameID, done := range closed {
		if done {
			s.lastActivity.Delete(gameID)
		}
	}
	s.batch = s.batch[:0]
}

// SweepInactive marks every game idle since before now-Inactivity as abandoned.
func (s *Service) SweepInactive(ctx context.Context, now time.Time) {
	s.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= s.opts.Inactivity {
			return true
		}
		if err := s.sink.MarkGameStatus(ctx, gameID, database.StatusAbandoned); err != nil {
			s.logger.WithField("game_id", gameID).Errorf("failed to mark game abandoned: %v", err)
			return true
		}
		s.logger.WithField("game_id", gameID).Info("marked game abandoned due to inactivity")
		s.lastActivity.Delete(gameID)
		return true
	})
}

// finishedGame reports whether a reset record closed a game that had been dealt.
func finishedGame(rec cache.GameActionRecord) bool {
	started, _ := rec.ActionPayload["wasStarted"].(bool)
	return started
}
