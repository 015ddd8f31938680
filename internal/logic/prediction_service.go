package logic

import (
	"context"

	"go.uber.org/zap"

	"github.com/smashlab/matchup-api/internal/models"
)

type PredictionServiceConfig struct {
	Predictor *SymmetricPredictor
	Cache     PredictionCache
	Logger    *zap.Logger
}

type predictionService struct {
	predictor *SymmetricPredictor
	cache     PredictionCache
	logger    *zap.SugaredLogger
}

func NewPredictionService(cfg PredictionServiceConfig) PredictionService {
	return &predictionService{
		predictor: cfg.Predictor,
		cache:     cfg.Cache,
		logger:    cfg.Logger.Sugar(),
	}
}

// Predict serves from the cache when possible. Entries are keyed by the
// unordered pair, so both argument orders share one entry.
func (s *predictionService) Predict(ctx context.Context, a, b string) (*models.PredictionResult, error) {
	key, err := s.predictor.Key(a, b)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warnw("Prediction cache read failed", "pair", key.String(), "error", err)
		} else if ok {
			predictionCacheHits.Inc()
			predictionsServed.Inc()
			return cached, nil
		}
		predictionCacheMisses.Inc()
	}

	res, err := s.predictor.Predict(key.First, key.Second)
	if err != nil {
		return nil, err
	}
	if !res.DirectionsAgree {
		directionDisagreements.Inc()
		s.logger.Debugw("Forward and reverse predictions disagree", "pair", key.String(), "probabilities", res.Probabilities)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, res); err != nil {
			s.logger.Warnw("Prediction cache write failed", "pair", key.String(), "error", err)
		}
	}
	predictionsServed.Inc()
	return res, nil
}

func (s *predictionService) Characters(ctx context.Context) ([]models.CharacterProfile, Schema) {
	t := s.predictor.Profiles()
	return t.Profiles(), t.Schema()
}
