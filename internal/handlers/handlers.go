// Package handlers exposes the matchup table and predictor over HTTP.
package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// IngestQueue defines the interface for the set ingestion worker pool
type IngestQueue interface {
	Enqueue(set *models.RawMatchRecord) bool
	QueueDepth() int
}

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type Config struct {
	WorkerPool IngestQueue
	Logger     *zap.Logger
	// Checks are run by /ready, keyed by dependency name.
	Checks map[string]Pinger
	// AdminToken guards ingest and rebuild. Empty disables those routes.
	AdminToken string
	// MinGames is the rebuild threshold when a request does not set one.
	MinGames int
	// Services
	Matchups    logic.MatchupService
	Predictions logic.PredictionService
}

type Handler struct {
	pool           IngestQueue
	logger         *zap.SugaredLogger
	checks         map[string]Pinger
	adminTokenHash string
	minGames       int
	matchups       logic.MatchupService
	predictions    logic.PredictionService
}

func New(cfg Config) *Handler {
	h := &Handler{
		pool:        cfg.WorkerPool,
		logger:      cfg.Logger.Sugar(),
		checks:      cfg.Checks,
		minGames:    cfg.MinGames,
		matchups:    cfg.Matchups,
		predictions: cfg.Predictions,
	}
	if cfg.AdminToken != "" {
		h.adminTokenHash = hashToken(cfg.AdminToken)
	}
	return h
}
