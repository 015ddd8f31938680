// Command api serves the matchup table and predictor over HTTP and ingests
// tournament sets into ClickHouse.
package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smashlab/matchup-api/internal/classifier"
	"github.com/smashlab/matchup-api/internal/config"
	"github.com/smashlab/matchup-api/internal/handlers"
	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
	"github.com/smashlab/matchup-api/internal/storage"
	"github.com/smashlab/matchup-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Databases
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pg.Close()

	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		return fmt.Errorf("clickhouse dsn: %w", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		return fmt.Errorf("clickhouse: %w", err)
	}
	defer ch.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	pgStore := storage.NewPostgresStore(pg)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		return err
	}
	chSets := storage.NewClickHouseSets(ch)
	if err := chSets.EnsureSchema(ctx); err != nil {
		return err
	}

	// Predictor inputs load in parallel; any failure aborts startup.
	schema := logic.Schema(cfg.Schema)
	if err := schema.Validate(); err != nil {
		return err
	}
	tiers := logic.TierCutoffs{Advantage: cfg.TierAdvantage, Disadvantage: cfg.TierDisadvantage}

	var (
		aliases     logic.AliasTable
		profiles    []models.CharacterProfile
		clf         logic.Classifier
		modelDigest string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		aliases, err = logic.LoadAliasFile(cfg.AliasFile)
		return err
	})
	g.Go(func() error {
		var err error
		profiles, err = loadProfiles(gctx, cfg.ProfilesFile, schema, pgStore)
		return err
	})
	g.Go(func() error {
		var err error
		clf, modelDigest, err = loadModel(cfg.ModelFile)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	table, err := logic.NewProfileTable(schema, profiles)
	if err != nil {
		return err
	}
	canon := logic.NewCanonicalizer(aliases, table.Names())
	predictor := logic.NewSymmetricPredictor(canon, table, clf, tiers)
	cache := storage.NewRedisPredictionCache(rdb, aliases.Version+"-"+modelDigest, cfg.CacheTTL)

	sugar.Infow("Predictor ready",
		"characters", table.Len(),
		"schema", []string(schema),
		"aliases", aliases.Version,
		"model", modelDigest,
	)

	// Services
	matchupSvc := logic.NewMatchupService(logic.MatchupServiceConfig{
		Sets:   chSets,
		Store:  pgStore,
		Cache:  cache,
		Canon:  canon,
		Tiers:  tiers,
		Shards: cfg.AggregationShards,
		Logger: logger,
	})
	predictionSvc := logic.NewPredictionService(logic.PredictionServiceConfig{
		Predictor: predictor,
		Cache:     cache,
		Logger:    logger,
	})

	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		ClickHouse:    ch,
		Logger:        logger,
	})
	pool.Start(ctx)

	scheduler := worker.NewRebuildScheduler(matchupSvc, cfg.RebuildInterval, cfg.MinGames, logger)
	scheduler.Start(ctx)

	h := handlers.New(handlers.Config{
		WorkerPool: pool,
		Logger:     logger,
		AdminToken: cfg.AdminToken,
		MinGames:   cfg.MinGames,
		Checks: map[string]handlers.Pinger{
			"postgres":   pg.Ping,
			"clickhouse": ch.Ping,
			"redis":      func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Matchups:    matchupSvc,
		Predictions: predictionSvc,
	})

	rate := limiter.Rate{Period: time.Second, Limit: int64(cfg.RateLimitPerSecond)}
	rateLimit := stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Admin-Token"},
		MaxAge:         300,
	}))
	r.Use(rateLimit.Handler)
	r.Handle("/metrics", promhttp.Handler())
	h.Mount(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	sugar.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("HTTP shutdown", "error", err)
	}
	scheduler.Stop()
	pool.Stop()
	return nil
}

// loadProfiles reads the attribute table from path when set, seeding
// Postgres with it, and from Postgres otherwise.
func loadProfiles(ctx context.Context, path string, schema logic.Schema, store *storage.PostgresStore) ([]models.CharacterProfile, error) {
	if path == "" {
		return store.LoadProfiles(ctx)
	}
	profiles, err := logic.LoadProfilesFile(path, schema)
	if err != nil {
		return nil, err
	}
	if err := store.UpsertProfiles(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// loadModel reads a saved classifier and returns a short digest of the file
// for namespacing cached predictions.
func loadModel(path string) (logic.Classifier, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read model: %w", err)
	}
	clf, err := classifier.Load(bytes.NewReader(raw))
	if err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(raw)
	return clf, hex.EncodeToString(sum[:6]), nil
}
