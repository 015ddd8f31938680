package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/smashlab/matchup-api/internal/models"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// PlayerDB reads a legacy tournament player database: a players table with
// per-player character usage JSON and a sets table of reported results.
type PlayerDB struct {
	conn *sql.DB
	game string
	// Limit caps the number of sets read. Zero or negative reads all.
	Limit int
}

// OpenPlayerDB opens (or creates) the SQLite database at path. Missing
// tables are created so an empty file is a valid, empty source.
func OpenPlayerDB(path, game string) (*PlayerDB, error) {
	if game == "" {
		game = "ultimate"
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open player db: %w", err)
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PlayerDB{conn: conn, game: game}, nil
}

func (db *PlayerDB) Close() error {
	return db.conn.Close()
}

// InsertPlayer stores a player's usage counts, replacing any earlier row.
func (db *PlayerDB) InsertPlayer(ctx context.Context, playerID, tag string, usage map[string]int) error {
	raw, err := json.Marshal(usage)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO players(player_id, game, tag, characters)
		VALUES (?, ?, ?, ?)`,
		playerID, db.game, tag, string(raw),
	)
	return err
}

// InsertSet stores one reported set, replacing any earlier row with the same key.
func (db *PlayerDB) InsertSet(ctx context.Context, rec models.RawMatchRecord) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO sets(key, game, tournament_key, winner_id, p1_id, p2_id, p1_score, p2_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SetID, db.game, rec.Tournament, rec.WinnerID,
		rec.CompetitorA, rec.CompetitorB, rec.ScoreA, rec.ScoreB,
	)
	return err
}

// LoadSets returns every set for the configured game joined with both
// players' usage counts. Character names are left blank; aggregation derives
// each side's primary character from the usage maps.
func (db *PlayerDB) LoadSets(ctx context.Context) ([]models.RawMatchRecord, error) {
	limit := db.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT s.key, COALESCE(s.tournament_key, ''), s.winner_id, s.p1_id, s.p2_id,
		       COALESCE(s.p1_score, 0), COALESCE(s.p2_score, 0),
		       COALESCE(a.characters, ''), COALESCE(b.characters, '')
		FROM sets s
		LEFT JOIN players a ON a.player_id = s.p1_id AND a.game = s.game
		LEFT JOIN players b ON b.player_id = s.p2_id AND b.game = s.game
		WHERE s.game = ?
		  AND s.winner_id IS NOT NULL
		  AND s.p1_id IS NOT NULL
		  AND s.p2_id IS NOT NULL
		ORDER BY s.key
		LIMIT ?`, db.game, limit)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	var out []models.RawMatchRecord
	for rows.Next() {
		var (
			rec            models.RawMatchRecord
			usageA, usageB string
		)
		if err := rows.Scan(&rec.SetID, &rec.Tournament, &rec.WinnerID,
			&rec.CompetitorA, &rec.CompetitorB, &rec.ScoreA, &rec.ScoreB,
			&usageA, &usageB); err != nil {
			return nil, err
		}
		rec.UsageA = parseUsage(usageA)
		rec.UsageB = parseUsage(usageB)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// parseUsage decodes a usage JSON object. Unparseable or empty input yields
// nil so the record is later skipped as missing character data.
func parseUsage(raw string) map[string]int {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil
	}
	var counts map[string]float64
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		return nil
	}
	usage := make(map[string]int, len(counts))
	for name, n := range counts {
		usage[name] = int(n)
	}
	return usage
}
