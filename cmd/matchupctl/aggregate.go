package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
	"github.com/smashlab/matchup-api/internal/storage"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Build the canonical matchup table from raw sets",
	Long: "Reads sets from a player database (--sqlite) or an NDJSON file (--sets),\n" +
		"writes the matchup table as CSV and optionally replaces the table in Postgres.",
	Args: cobra.NoArgs,
	RunE: runAggregate,
}

func init() {
	f := aggregateCmd.Flags()
	f.String("sqlite", "", "player database file")
	f.String("game", "ultimate", "game filter for --sqlite")
	f.Int("limit", 0, "maximum sets read from --sqlite (0 for all)")
	f.String("sets", "", "NDJSON file of raw sets")
	f.Int("min-games", 5, "drop matchups with fewer games")
	f.Int("shards", 4, "concurrent aggregation shards")
	f.StringP("out", "o", "-", "matchup CSV output")
	f.String("postgres", "", "Postgres URL to store the build in")

	viper.BindPFlag("min-games", f.Lookup("min-games"))
	viper.BindPFlag("postgres", f.Lookup("postgres"))
}

func runAggregate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	sets, err := readSets(ctx, cmd)
	if err != nil {
		return err
	}

	canon, err := newCanonicalizer(nil)
	if err != nil {
		return err
	}
	shards, _ := cmd.Flags().GetInt("shards")
	records, stats, err := logic.NewAggregator(canon).AggregateSharded(ctx, sets, shards, viper.GetInt("min-games"))
	if err != nil {
		return err
	}
	logger.Info("Aggregated sets",
		zap.Int("records", stats.Records),
		zap.Int("matchups", stats.Emitted),
		zap.Duration("elapsed", time.Since(start)))

	outPath, _ := cmd.Flags().GetString("out")
	out, err := createOutput(outPath)
	if err != nil {
		return err
	}
	if err := logic.WriteMatchupsCSV(out, records); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	summary := stats.Summary(uuid.NewString(), start)
	if url := viper.GetString("postgres"); url != "" {
		if err := storeBuild(ctx, url, summary, records); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "stored build %s\n", summary.BuildID)
	}

	printAggregateStats(stats)
	return nil
}

func readSets(ctx context.Context, cmd *cobra.Command) ([]models.RawMatchRecord, error) {
	sqlitePath, _ := cmd.Flags().GetString("sqlite")
	setsPath, _ := cmd.Flags().GetString("sets")

	switch {
	case sqlitePath != "" && setsPath != "":
		return nil, errors.New("--sqlite and --sets are mutually exclusive")
	case sqlitePath != "":
		game, _ := cmd.Flags().GetString("game")
		limit, _ := cmd.Flags().GetInt("limit")
		db, err := storage.OpenPlayerDB(sqlitePath, game)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		db.Limit = limit
		return db.LoadSets(ctx)
	case setsPath != "":
		return readSetsFile(setsPath)
	}
	return nil, errors.New("one of --sqlite or --sets is required")
}

// readSetsFile decodes one set per line. Lines that do not decode are
// counted and skipped.
func readSetsFile(path string) ([]models.RawMatchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		sets []models.RawMatchRecord
		bad  int
		line int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec models.RawMatchRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Debug("Skipping undecodable line", zap.Int("line", line), zap.Error(err))
			bad++
			continue
		}
		sets = append(sets, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if bad > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d undecodable lines\n", bad)
	}
	return sets, nil
}

func storeBuild(ctx context.Context, url string, summary *models.RebuildSummary, records []models.MatchupRecord) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	store := storage.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	return store.ReplaceMatchups(ctx, summary, records)
}

func printAggregateStats(stats logic.AggregateStats) {
	table := newTable(os.Stderr)
	table.Header("STAT", "COUNT")
	table.Append("records", fmt.Sprintf("%d", stats.Records))
	for _, reason := range logic.SortedSkipReasons(stats) {
		table.Append("skipped: "+string(reason), fmt.Sprintf("%d", stats.Skipped[reason]))
	}
	table.Append("games counted", fmt.Sprintf("%d", stats.Counted))
	table.Append(fmt.Sprintf("under %d games", stats.MinGames), fmt.Sprintf("%d", stats.Dropped))
	table.Append("matchups", fmt.Sprintf("%d", stats.Emitted))
	table.Render()
}
