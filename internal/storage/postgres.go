// Package storage holds the persistence adapters behind the logic
// interfaces: Postgres for the matchup table and attribute profiles,
// ClickHouse for raw set history, Redis for memoized predictions and a
// SQLite reader for legacy player databases.
package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

//go:embed postgres_schema.sql
var postgresSchema string

// PgConn is the subset of *pgxpool.Pool the store uses.
type PgConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgresStore implements logic.MatchupStore and logic.ProfileStore.
type PostgresStore struct {
	db PgConn
}

func NewPostgresStore(db PgConn) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}
	return nil
}

var matchupColumns = []string{"character_1", "character_2", "char1_wins", "char2_wins", "total_games", "char1_winrate"}

// ReplaceMatchups swaps the matchup table for records and records the build
// in one transaction. Readers see either the old table or the new one.
func (s *PostgresStore) ReplaceMatchups(ctx context.Context, summary *models.RebuildSummary, records []models.MatchupRecord) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM matchups`); err != nil {
		return fmt.Errorf("clear matchups: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"matchups"}, matchupColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.Character1, r.Character2, r.Char1Wins, r.Char2Wins, r.TotalGames, r.Char1WinRate}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy matchups: %w", err)
	}
	if int(n) != len(records) {
		return fmt.Errorf("copy matchups: wrote %d of %d rows", n, len(records))
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO matchup_builds (build_id, records, counted, dropped, matchups, min_games, skipped, started_at, duration)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)`,
		summary.BuildID, summary.Records, summary.Counted, summary.Dropped,
		summary.Matchups, summary.MinGames, summary.Skipped, summary.StartedAt, summary.Duration,
	)
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}

	return tx.Commit(ctx)
}

// ListMatchups pages through the table in key order. Names are compared
// bytewise so the order matches MatchupKey.
func (s *PostgresStore) ListMatchups(ctx context.Context, limit, offset int) ([]models.MatchupRecord, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM matchups`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count matchups: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT character_1, character_2, char1_wins, char2_wins, total_games, char1_winrate
		FROM matchups
		ORDER BY character_1 COLLATE "C", character_2 COLLATE "C"
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list matchups: %w", err)
	}
	defer rows.Close()

	var out []models.MatchupRecord
	for rows.Next() {
		var r models.MatchupRecord
		if err := rows.Scan(&r.Character1, &r.Character2, &r.Char1Wins, &r.Char2Wins, &r.TotalGames, &r.Char1WinRate); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *PostgresStore) GetMatchup(ctx context.Context, key models.MatchupKey) (*models.MatchupRecord, error) {
	var r models.MatchupRecord
	err := s.db.QueryRow(ctx, `
		SELECT character_1, character_2, char1_wins, char2_wins, total_games, char1_winrate
		FROM matchups
		WHERE character_1 = $1 AND character_2 = $2`, key.First, key.Second,
	).Scan(&r.Character1, &r.Character2, &r.Char1Wins, &r.Char2Wins, &r.TotalGames, &r.Char1WinRate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, logic.ErrMatchupNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadProfiles reads every stored attribute profile.
func (s *PostgresStore) LoadProfiles(ctx context.Context) ([]models.CharacterProfile, error) {
	rows, err := s.db.Query(ctx, `SELECT name, attributes FROM character_profiles ORDER BY name COLLATE "C"`)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	defer rows.Close()

	var out []models.CharacterProfile
	for rows.Next() {
		var p models.CharacterProfile
		if err := rows.Scan(&p.Name, &p.Attributes); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertProfiles writes profiles in a single round trip.
func (s *PostgresStore) UpsertProfiles(ctx context.Context, profiles []models.CharacterProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, p := range profiles {
		b.Queue(`
			INSERT INTO character_profiles (name, attributes, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (name) DO UPDATE SET attributes = EXCLUDED.attributes, updated_at = now()`,
			p.Name, p.Attributes)
	}

	br := s.db.SendBatch(ctx, b)
	defer br.Close()
	for _, p := range profiles {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert profile %q: %w", p.Name, err)
		}
	}
	return nil
}
