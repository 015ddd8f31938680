package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smashlab/matchup-api/internal/models"
)

const cacheGenerationKey = "matchup:cache:gen"

// CacheClient is the subset of *redis.Client the prediction cache uses.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// RedisPredictionCache memoizes prediction results by unordered pair.
// Invalidate bumps a generation counter that is part of every entry key, so
// stale entries stop being read and expire on their own.
type RedisPredictionCache struct {
	client    CacheClient
	namespace string
	ttl       time.Duration
}

// NewRedisPredictionCache builds a cache. namespace should change whenever
// the model or attribute table changes.
func NewRedisPredictionCache(client CacheClient, namespace string, ttl time.Duration) *RedisPredictionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisPredictionCache{client: client, namespace: namespace, ttl: ttl}
}

func (c *RedisPredictionCache) generation(ctx context.Context) (string, error) {
	gen, err := c.client.Get(ctx, cacheGenerationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (c *RedisPredictionCache) entryKey(gen string, key models.MatchupKey) string {
	return fmt.Sprintf("matchup:pred:%s:%s:%s|%s", c.namespace, gen, key.First, key.Second)
}

func (c *RedisPredictionCache) Get(ctx context.Context, key models.MatchupKey) (*models.PredictionResult, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, false, err
	}
	raw, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var res models.PredictionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, fmt.Errorf("decode cached prediction: %w", err)
	}
	return &res, true, nil
}

func (c *RedisPredictionCache) Set(ctx context.Context, result *models.PredictionResult) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.entryKey(gen, result.Key()), raw, c.ttl).Err()
}

func (c *RedisPredictionCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, cacheGenerationKey).Err()
}
