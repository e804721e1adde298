// Package historian drains the game action queue into the database in batches.
package historian

import (
	"context"
	"time"

	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/sirupsen/logrus"
)

// Source yields queued action records. ok is false when nothing arrived
// within timeout.
type Source interface {
	PopGameAction(ctx context.Context, timeout time.Duration) (rec models.GameActionRecord, ok bool, err error)
}

// Sink persists a batch of records.
type Sink interface {
	SaveGameActions(ctx context.Context, recs []models.GameActionRecord) error
}

// Options tune batching.
type Options struct {
	BatchSize     int
	FlushInterval time.Duration
	// PopTimeout bounds a single blocking pop so the flush interval and
	// cancellation are noticed.
	PopTimeout time.Duration
}

// Service moves records from a Source to a Sink.
type Service struct {
	source Source
	sink   Sink
	opts   Options
	logger *logrus.Logger

	batch     []models.GameActionRecord
	lastFlush time.Time
}

// New builds a Service, filling unset options with defaults.
func New(source Source, sink Sink, opts Options, logger *logrus.Logger) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 500 * time.Millisecond
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		source: source,
		sink:   sink,
		opts:   opts,
		logger: logger,
		batch:  make([]models.GameActionRecord, 0, opts.BatchSize),
	}
}

// Run pops records until ctx is cancelled, then flushes what is left.
func (s *Service) Run(ctx context.Context) {
	s.logger.WithFields(logrus.Fields{
		"batch": s.opts.BatchSize,
		"flush": s.opts.FlushInterval,
	}).Info("historian started")
	s.lastFlush = time.Now()

	for {
		if ctx.Err() != nil {
			// the run context is gone, give the last batch its own deadline
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.flush(flushCtx)
			cancel()
			s.logger.Info("historian stopped")
			return
		}

		rec, ok, err := s.source.PopGameAction(ctx, s.opts.PopTimeout)
		switch {
		case err != nil && ctx.Err() == nil:
			s.logger.WithError(err).Error("pop game action")
			s.wait(ctx)
		case ok:
			s.batch = append(s.batch, rec)
		}
		if ctx.Err() != nil {
			continue
		}

		if len(s.batch) >= s.opts.BatchSize || time.Since(s.lastFlush) >= s.opts.FlushInterval {
			s.flush(ctx)
		}
	}
}

// flush writes the pending batch. A failed batch is logged and dropped.
func (s *Service) flush(ctx context.Context) {
	s.lastFlush = time.Now()
	if len(s.batch) == 0 {
		return
	}
	batch := make([]models.GameActionRecord, len(s.batch))
	copy(batch, s.batch)
	s.batch = s.batch[:0]

	if err := s.sink.SaveGameActions(ctx, batch); err != nil {
		s.logger.WithError(err).WithField("count", len(batch)).Error("failed to flush game actions")
		return
	}
	s.logger.WithField("count", len(batch)).Debug("flushed game actions")
}

func (s *Service) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.opts.PopTimeout):
	}
}
