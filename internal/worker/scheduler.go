package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smashlab/matchup-api/internal/logic"
)

// RebuildScheduler rebuilds the matchup table on a fixed interval.
type RebuildScheduler struct {
	service  logic.MatchupService
	interval time.Duration
	minGames int
	logger   *zap.SugaredLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRebuildScheduler(service logic.MatchupService, interval time.Duration, minGames int, logger *zap.Logger) *RebuildScheduler {
	return &RebuildScheduler{
		service:  service,
		interval: interval,
		minGames: minGames,
		logger:   logger.Sugar(),
	}
}

// Start runs rebuilds until ctx is canceled or Stop is called. A zero or
// negative interval disables scheduling.
func (s *RebuildScheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Scheduled rebuilds disabled")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
	s.logger.Infow("Rebuild scheduler started", "interval", s.interval, "minGames", s.minGames)
}

func (s *RebuildScheduler) runOnce(ctx context.Context) {
	summary, err := s.service.Rebuild(ctx, s.minGames)
	if err != nil {
		s.logger.Errorw("Scheduled rebuild failed", "error", err)
		return
	}
	s.logger.Infow("Scheduled rebuild finished", "build_id", summary.BuildID, "matchups", summary.Matchups)
}

func (s *RebuildScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
