package logic

import (
	"context"

	"github.com/smashlab/matchup-api/internal/models"
)

// MatchupStore persists the canonical matchup table. ReplaceMatchups swaps
// the whole table atomically under a new build id.
type MatchupStore interface {
	ReplaceMatchups(ctx context.Context, summary *models.RebuildSummary, records []models.MatchupRecord) error
	ListMatchups(ctx context.Context, limit, offset int) ([]models.MatchupRecord, int, error)
	GetMatchup(ctx context.Context, key models.MatchupKey) (*models.MatchupRecord, error)
}

// ProfileStore loads the character attribute table.
type ProfileStore interface {
	LoadProfiles(ctx context.Context) ([]models.CharacterProfile, error)
}

// SetSource yields raw tournament sets for aggregation.
type SetSource interface {
	LoadSets(ctx context.Context) ([]models.RawMatchRecord, error)
}

// PredictionCache memoizes verdicts by unordered pair.
type PredictionCache interface {
	Get(ctx context.Context, key models.MatchupKey) (*models.PredictionResult, bool, error)
	Set(ctx context.Context, result *models.PredictionResult) error
	Invalidate(ctx context.Context) error
}

// MatchupService rebuilds and serves the matchup table.
type MatchupService interface {
	Rebuild(ctx context.Context, minGames int) (*models.RebuildSummary, error)
	List(ctx context.Context, limit, offset int) ([]models.MatchupView, int, error)
	Get(ctx context.Context, a, b string) (*models.MatchupView, error)
}

// PredictionService answers matchup predictions.
type PredictionService interface {
	Predict(ctx context.Context, a, b string) (*models.PredictionResult, error)
	Characters(ctx context.Context) ([]models.CharacterProfile, Schema)
}
