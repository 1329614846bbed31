package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Processor runs one scheduled pass. *notification.Runner satisfies it
// through a closure over the record id.
type Processor func(ctx context.Context) error

// Scheduler runs the processor on a fixed interval. Browser automation
// holds the claimed slot for the whole checkout, so passes run
// sequentially rather than overlapping.
type Scheduler struct {
	Interval time.Duration
	Process  Processor
}

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()
	if err := s.Process(ctx); err != nil {
		log.Error().Err(err).Msg("scheduled pass failed")
		return
	}
	log.Debug().Dur("took", time.Since(start)).Msg("scheduled pass finished")
}
