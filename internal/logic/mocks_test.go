package logic

import (
	"context"
	"sync"

	"github.com/smashlab/matchup-api/internal/models"
)

type MockSetSource struct {
	LoadSetsFunc func(ctx context.Context) ([]models.RawMatchRecord, error)
}

func (m *MockSetSource) LoadSets(ctx context.Context) ([]models.RawMatchRecord, error) {
	if m.LoadSetsFunc != nil {
		return m.LoadSetsFunc(ctx)
	}
	return nil, nil
}

type MockMatchupStore struct {
	ReplaceMatchupsFunc func(ctx context.Context, summary *models.RebuildSummary, records []models.MatchupRecord) error
	ListMatchupsFunc    func(ctx context.Context, limit, offset int) ([]models.MatchupRecord, int, error)
	GetMatchupFunc      func(ctx context.Context, key models.MatchupKey) (*models.MatchupRecord, error)
}

func (m *MockMatchupStore) ReplaceMatchups(ctx context.Context, summary *models.RebuildSummary, records []models.MatchupRecord) error {
	if m.ReplaceMatchupsFunc != nil {
		return m.ReplaceMatchupsFunc(ctx, summary, records)
	}
	return nil
}

func (m *MockMatchupStore) ListMatchups(ctx context.Context, limit, offset int) ([]models.MatchupRecord, int, error) {
	if m.ListMatchupsFunc != nil {
		return m.ListMatchupsFunc(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *MockMatchupStore) GetMatchup(ctx context.Context, key models.MatchupKey) (*models.MatchupRecord, error) {
	if m.GetMatchupFunc != nil {
		return m.GetMatchupFunc(ctx, key)
	}
	return nil, ErrMatchupNotFound
}

// MemoryCache is an in-process PredictionCache.
type MemoryCache struct {
	mu          sync.Mutex
	entries     map[models.MatchupKey]*models.PredictionResult
	Gets        int
	Sets        int
	Invalidated int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[models.MatchupKey]*models.PredictionResult)}
}

func (m *MemoryCache) Get(ctx context.Context, key models.MatchupKey) (*models.PredictionResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	r, ok := m.entries[key]
	return r, ok, nil
}

func (m *MemoryCache) Set(ctx context.Context, result *models.PredictionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	m.entries[result.Key()] = result
	return nil
}

func (m *MemoryCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidated++
	m.entries = make(map[models.MatchupKey]*models.PredictionResult)
	return nil
}
