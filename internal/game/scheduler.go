// internal/game/scheduler.go
package game

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Ticker is anything advanced once per scheduler tick.
type Ticker interface {
	Tick()
}

// TickerGen creates the tick channel. The returned stop func releases it.
type TickerGen interface {
	Create(d time.Duration) (<-chan time.Time, func())
}

type timeTickerGen struct{}

func (timeTickerGen) Create(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// NewTickerGen returns the wall clock ticker generator.
func NewTickerGen() TickerGen {
	return timeTickerGen{}
}

// Scheduler drives a Ticker at a fixed rate.
type Scheduler struct {
	target   Ticker
	interval time.Duration
	gen      TickerGen
	logger   *logrus.Logger
}

// NewScheduler builds a scheduler ticking rateHz times per second. A nil gen
// uses the wall clock.
func NewScheduler(target Ticker, rateHz int, gen TickerGen, logger *logrus.Logger) *Scheduler {
	if rateHz <= 0 {
		rateHz = 10
	}
	if gen == nil {
		gen = NewTickerGen()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		target:   target,
		interval: time.Second / time.Duration(rateHz),
		gen:      gen,
		logger:   logger,
	}
}

// Interval is the time between ticks.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ch, stop := s.gen.Create(s.interval)
	defer stop()

	s.logger.WithField("interval", s.interval).Info("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ch:
			s.target.Tick()
		}
	}
}
