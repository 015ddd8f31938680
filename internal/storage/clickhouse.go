package storage

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/smashlab/matchup-api/internal/models"
)

//go:embed clickhouse_schema.sql
var clickhouseSchema string

// InsertSetsQuery is the batch insert the ingest workers prepare.
const InsertSetsQuery = `
	INSERT INTO matchup_stats.tournament_sets (
		set_id, tournament, played_at, competitor_a, competitor_b,
		winner_id, character_a, character_b, score_a, score_b, ingested_at
	)`

// ClickHouseSets reads the raw set history. Re-ingested sets share a set_id
// and collapse to the latest copy, so a rebuild counts each set once.
type ClickHouseSets struct {
	conn driver.Conn
}

func NewClickHouseSets(conn driver.Conn) *ClickHouseSets {
	return &ClickHouseSets{conn: conn}
}

// EnsureSchema applies the DDL one statement at a time; the native protocol
// rejects multi-statement queries.
func (s *ClickHouseSets) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(clickhouseSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	return nil
}

// LoadSets implements logic.SetSource.
func (s *ClickHouseSets) LoadSets(ctx context.Context) ([]models.RawMatchRecord, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT set_id, tournament, played_at, competitor_a, competitor_b,
		       winner_id, character_a, character_b, score_a, score_b, ingested_at
		FROM matchup_stats.tournament_sets FINAL
		ORDER BY set_id`)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	var out []models.RawMatchRecord
	for rows.Next() {
		var row models.ClickHouseSet
		if err := rows.ScanStruct(&row); err != nil {
			return nil, err
		}
		out = append(out, FromClickHouseSet(row))
	}
	return out, rows.Err()
}

// ToClickHouseSet flattens a record for insertion. Usage maps are not
// stored; ingest resolves the primary character before enqueueing.
func ToClickHouseSet(rec *models.RawMatchRecord) models.ClickHouseSet {
	return models.ClickHouseSet{
		SetID:       rec.SetID,
		Tournament:  rec.Tournament,
		PlayedAt:    rec.PlayedAt,
		CompetitorA: rec.CompetitorA,
		CompetitorB: rec.CompetitorB,
		WinnerID:    rec.WinnerID,
		CharacterA:  rec.CharacterA,
		CharacterB:  rec.CharacterB,
		ScoreA:      int32(rec.ScoreA),
		ScoreB:      int32(rec.ScoreB),
	}
}

func FromClickHouseSet(row models.ClickHouseSet) models.RawMatchRecord {
	return models.RawMatchRecord{
		SetID:       row.SetID,
		Tournament:  row.Tournament,
		PlayedAt:    row.PlayedAt,
		CompetitorA: row.CompetitorA,
		CompetitorB: row.CompetitorB,
		WinnerID:    row.WinnerID,
		CharacterA:  row.CharacterA,
		CharacterB:  row.CharacterB,
		ScoreA:      int(row.ScoreA),
		ScoreB:      int(row.ScoreB),
	}
}
