// Package sweeper periodically removes expired cache entries on a cron
// schedule, with bounded work per tick.
package sweeper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gorhill/cronexpr"

	"github.com/mohammad-safakhou/searchfusion/cache"
	"github.com/mohammad-safakhou/searchfusion/internal/metrics"
)

type Sweeper struct {
	cache     *cache.Cache
	schedule  *cronexpr.Expression
	batchSize int
	logger    *log.Logger
}

// New parses the cron schedule and builds a sweeper. batchSize caps deletions
// per tick so a single sweep never monopolises the store.
func New(c *cache.Cache, schedule string, batchSize int) (*Sweeper, error) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", schedule, err)
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Sweeper{
		cache:     c,
		schedule:  expr,
		batchSize: batchSize,
		logger:    log.New(log.Writer(), "[SWEEPER] ", log.LstdFlags),
	}, nil
}

// Run sweeps at each scheduled tick until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		next := s.schedule.Next(time.Now())
		if next.IsZero() {
			s.logger.Printf("schedule has no future tick, stopping")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}
		deleted, err := s.cache.Sweep(ctx, s.batchSize)
		if err != nil {
			s.logger.Printf("sweep failed after %d deletions: %v", deleted, err)
			continue
		}
		if deleted > 0 {
			metrics.SweepDeletedTotal.Add(float64(deleted))
			s.logger.Printf("swept %d expired entries", deleted)
		}
	}
}
