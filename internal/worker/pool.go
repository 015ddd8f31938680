// Package worker implements the buffered worker pool that moves ingested
// tournament sets into ClickHouse, and the scheduler that periodically
// rebuilds the matchup table from them.
//
// HTTP handlers never write to ClickHouse directly. Sets are queued, shed
// when the queue is full, and inserted in batches.
package worker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/smashlab/matchup-api/internal/models"
	"github.com/smashlab/matchup-api/internal/storage"
)

var (
	setsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchup_sets_ingested_total",
		Help: "Total number of sets accepted into the queue",
	})

	setsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchup_sets_processed_total",
		Help: "Total number of sets written to ClickHouse",
	})

	setsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchup_sets_failed_total",
		Help: "Total number of sets that failed to be written",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchup_worker_queue_depth",
		Help: "Current depth of the worker queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchup_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	setsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchup_sets_load_shed_total",
		Help: "Total number of sets dropped because the queue was full",
	})
)

// Job is one queued set.
type Job struct {
	Set      *models.RawMatchRecord
	Received time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Logger        *zap.Logger
}

// Pool manages a pool of workers for async set ingestion
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
	stopOnce sync.Once
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop closes the queue, waits for workers to drain it, then releases the
// pool context.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool...")
		close(p.jobQueue)
		p.wg.Wait()
		p.cancel()
		p.logger.Info("Worker pool stopped")
	})
}

// Enqueue adds a set to the queue. It never blocks: when the queue is full or
// the pool has stopped the set is dropped and false is returned.
func (p *Pool) Enqueue(set *models.RawMatchRecord) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue set (pool stopped)", "error", r)
			setsLoadShed.Inc()
			ok = false
		}
	}()

	select {
	case p.jobQueue <- Job{Set: set, Received: time.Now()}:
		setsIngested.Inc()
		return true
	default:
		setsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			setsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Batch processed", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			setsProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// processBatch writes one batch to ClickHouse
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, storage.InsertSetsQuery)
	if err != nil {
		return err
	}

	for _, job := range batch {
		row := toRow(job)
		err := chBatch.Append(
			row.SetID,
			row.Tournament,
			row.PlayedAt,
			row.CompetitorA,
			row.CompetitorB,
			row.WinnerID,
			row.CharacterA,
			row.CharacterB,
			row.ScoreA,
			row.ScoreB,
			row.IngestedAt,
		)
		if err != nil {
			p.logger.Warnw("Failed to append set to batch", "error", err, "set_id", row.SetID)
			continue
		}
	}

	if err := chBatch.Send(); err != nil {
		p.logger.Errorw("Failed to send batch to ClickHouse", "error", err, "batchSize", len(batch))
		return err
	}
	return nil
}

// toRow flattens a queued set, cleaning free-text fields and fixing a stable
// set id so a re-ingested set replaces its earlier copy.
func toRow(job Job) models.ClickHouseSet {
	set := *job.Set
	set.Tournament = sanitizeName(set.Tournament)
	set.CompetitorA = strings.TrimSpace(set.CompetitorA)
	set.CompetitorB = strings.TrimSpace(set.CompetitorB)
	set.WinnerID = strings.TrimSpace(set.WinnerID)
	set.CharacterA = sanitizeName(set.CharacterA)
	set.CharacterB = sanitizeName(set.CharacterB)
	set.SetID = setID(&set)
	if set.PlayedAt.IsZero() {
		set.PlayedAt = job.Received
	}

	row := storage.ToClickHouseSet(&set)
	row.PlayedAt = row.PlayedAt.UTC()
	row.IngestedAt = job.Received.UTC()
	return row
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}

// Helper functions

// sanitizeName drops ASCII control characters and trims surrounding space.
func sanitizeName(s string) string {
	// Fast path: nothing to strip
	clean := true
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			clean = false
			break
		}
	}
	if clean {
		return strings.TrimSpace(s)
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\t' || c == '\n' || c == '\r':
			sb.WriteByte(' ')
		case c < 0x20 || c == 0x7f:
		default:
			sb.WriteByte(c)
		}
	}
	return strings.TrimSpace(sb.String())
}

// setID keeps a UUID set id, maps any other id onto a deterministic UUID,
// and derives one from the set's content when the source sent none.
func setID(set *models.RawMatchRecord) string {
	if id := strings.TrimSpace(set.SetID); id != "" {
		return parseOrGenerateUUID(id).String()
	}
	played := ""
	if !set.PlayedAt.IsZero() {
		played = set.PlayedAt.UTC().Format(time.RFC3339Nano)
	}
	return parseOrGenerateUUID(strings.Join([]string{
		set.Tournament, set.CompetitorA, set.CompetitorB, set.WinnerID, played,
	}, "|")).String()
}

func parseOrGenerateUUID(s string) uuid.UUID {
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(s))
}
