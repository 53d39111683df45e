package session

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically drops sessions idle for longer than TTL.
type Sweeper struct {
	Store    Store
	TTL      time.Duration
	Interval time.Duration
	Log      *slog.Logger

	now func() time.Time
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	n, err := s.Store.Sweep(ctx, now().Add(-s.TTL))
	if err != nil {
		s.logger().Error("session sweep failed", "err", err)
		return
	}
	if n > 0 {
		s.logger().Info("expired sessions dropped", "count", n)
	}
}

func (s *Sweeper) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
