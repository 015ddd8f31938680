package logic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smashlab/matchup-api/internal/models"
)

type MatchupServiceConfig struct {
	Sets   SetSource
	Store  MatchupStore
	Cache  PredictionCache
	Canon  *Canonicalizer
	Tiers  TierCutoffs
	Shards int
	Logger *zap.Logger
}

type matchupService struct {
	sets   SetSource
	store  MatchupStore
	cache  PredictionCache
	canon  *Canonicalizer
	agg    *Aggregator
	tiers  TierCutoffs
	shards int
	logger *zap.SugaredLogger

	// rebuilds replace the whole table and must not interleave
	rebuildMu sync.Mutex
}

func NewMatchupService(cfg MatchupServiceConfig) MatchupService {
	if cfg.Shards <= 0 {
		cfg.Shards = 4
	}
	return &matchupService{
		sets:   cfg.Sets,
		store:  cfg.Store,
		cache:  cfg.Cache,
		canon:  cfg.Canon,
		agg:    NewAggregator(cfg.Canon),
		tiers:  cfg.Tiers,
		shards: cfg.Shards,
		logger: cfg.Logger.Sugar(),
	}
}

// Rebuild aggregates every stored set into a fresh matchup table.
func (s *matchupService) Rebuild(ctx context.Context, minGames int) (*models.RebuildSummary, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	sets, err := s.sets.LoadSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sets: %w", err)
	}

	records, stats, err := s.agg.AggregateSharded(ctx, sets, s.shards, minGames)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	summary := stats.Summary(uuid.NewString(), start)
	for reason, n := range stats.Skipped {
		recordsSkipped.WithLabelValues(string(reason)).Add(float64(n))
	}

	if err := s.store.ReplaceMatchups(ctx, summary, records); err != nil {
		return nil, fmt.Errorf("store build %s: %w", summary.BuildID, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warnw("Failed to invalidate prediction cache", "build", summary.BuildID, "error", err)
		}
	}

	elapsed := time.Since(start)
	summary.Duration = elapsed.String()
	rebuildDuration.Observe(elapsed.Seconds())
	matchupsEmitted.Set(float64(len(records)))

	s.logger.Infow("Matchup table rebuilt",
		"build", summary.BuildID,
		"records", stats.Records,
		"skipped", stats.SkippedTotal(),
		"dropped", stats.Dropped,
		"matchups", stats.Emitted,
		"minGames", stats.MinGames,
		"duration", elapsed,
	)
	return summary, nil
}

func (s *matchupService) List(ctx context.Context, limit, offset int) ([]models.MatchupView, int, error) {
	records, total, err := s.store.ListMatchups(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	views := make([]models.MatchupView, 0, len(records))
	for _, r := range records {
		views = append(views, s.view(r))
	}
	return views, total, nil
}

// Get looks up a pair in either order.
func (s *matchupService) Get(ctx context.Context, a, b string) (*models.MatchupView, error) {
	key := models.NewMatchupKey(s.canon.Canonicalize(a), s.canon.Canonicalize(b))
	if key.First == "" {
		return nil, ErrMatchupNotFound
	}
	rec, err := s.store.GetMatchup(ctx, key)
	if err != nil {
		return nil, err
	}
	v := s.view(*rec)
	return &v, nil
}

func (s *matchupService) view(r models.MatchupRecord) models.MatchupView {
	return models.MatchupView{MatchupRecord: r, Tier: s.tiers.Classify(r.Char1WinRate)}
}
