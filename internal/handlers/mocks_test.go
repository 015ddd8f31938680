package handlers

import (
	"context"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

// MockIngestQueue implements IngestQueue for testing
type MockIngestQueue struct {
	EnqueueFunc func(set *models.RawMatchRecord) bool
	Depth       int
}

func (m *MockIngestQueue) Enqueue(set *models.RawMatchRecord) bool {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(set)
	}
	return true
}

func (m *MockIngestQueue) QueueDepth() int { return m.Depth }

// MockMatchupService
type MockMatchupService struct {
	RebuildFunc func(ctx context.Context, minGames int) (*models.RebuildSummary, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]models.MatchupView, int, error)
	GetFunc     func(ctx context.Context, a, b string) (*models.MatchupView, error)
}

func (m *MockMatchupService) Rebuild(ctx context.Context, minGames int) (*models.RebuildSummary, error) {
	if m.RebuildFunc != nil {
		return m.RebuildFunc(ctx, minGames)
	}
	return &models.RebuildSummary{BuildID: "mock", MinGames: minGames}, nil
}

func (m *MockMatchupService) List(ctx context.Context, limit, offset int) ([]models.MatchupView, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *MockMatchupService) Get(ctx context.Context, a, b string) (*models.MatchupView, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, a, b)
	}
	return nil, logic.ErrMatchupNotFound
}

// MockPredictionService
type MockPredictionService struct {
	PredictFunc    func(ctx context.Context, a, b string) (*models.PredictionResult, error)
	CharactersFunc func(ctx context.Context) ([]models.CharacterProfile, logic.Schema)
}

func (m *MockPredictionService) Predict(ctx context.Context, a, b string) (*models.PredictionResult, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, a, b)
	}
	return &models.PredictionResult{}, nil
}

func (m *MockPredictionService) Characters(ctx context.Context) ([]models.CharacterProfile, logic.Schema) {
	if m.CharactersFunc != nil {
		return m.CharactersFunc(ctx)
	}
	return nil, nil
}
