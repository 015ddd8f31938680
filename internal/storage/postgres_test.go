package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

func testSummary() *models.RebuildSummary {
	return &models.RebuildSummary{
		BuildID:   "5b1f4a40-6a2e-4d2c-9a47-3b0f3c0d8e11",
		Records:   10,
		Counted:   9,
		Skipped:   map[string]int{"mirror_match": 1},
		Matchups:  2,
		MinGames:  1,
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:  "1ms",
	}
}

func TestReplaceMatchups(t *testing.T) {
	tx := &MockTx{}
	store := NewPostgresStore(&MockPgConn{
		BeginFunc: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	})

	records := []models.MatchupRecord{
		{Character1: "Fox", Character2: "Mario", Char1Wins: 3, Char2Wins: 2, TotalGames: 5, Char1WinRate: 0.6},
		{Character1: "Bowser", Character2: "Fox", Char1Wins: 1, Char2Wins: 3, TotalGames: 4, Char1WinRate: 0.25},
	}
	if err := store.ReplaceMatchups(context.Background(), testSummary(), records); err != nil {
		t.Fatalf("ReplaceMatchups: %v", err)
	}

	if len(tx.Execs) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(tx.Execs))
	}
	if !strings.Contains(tx.Execs[0], "DELETE FROM matchups") {
		t.Errorf("first statement should clear the table, got %q", tx.Execs[0])
	}
	if !strings.Contains(tx.Execs[1], "matchup_builds") {
		t.Errorf("second statement should record the build, got %q", tx.Execs[1])
	}
	if got := tx.ExecArgs[1][0]; got != testSummary().BuildID {
		t.Errorf("build id arg = %v", got)
	}
	if len(tx.Copied) != 2 || tx.Copied[1][0] != "Bowser" || tx.Copied[1][5] != 0.25 {
		t.Errorf("unexpected copied rows: %v", tx.Copied)
	}
	if !tx.Committed {
		t.Error("transaction not committed")
	}
}

func TestReplaceMatchups_CopyFailureRollsBack(t *testing.T) {
	tx := &MockTx{CopyErr: errors.New("copy failed")}
	store := NewPostgresStore(&MockPgConn{
		BeginFunc: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	})

	err := store.ReplaceMatchups(context.Background(), testSummary(), []models.MatchupRecord{{Character1: "A", Character2: "B", TotalGames: 1}})
	if err == nil {
		t.Fatal("expected error")
	}
	if tx.Committed {
		t.Error("transaction should not commit")
	}
	if !tx.RolledBack {
		t.Error("transaction should roll back")
	}
}

func TestListMatchups(t *testing.T) {
	var gotArgs []any
	store := NewPostgresStore(&MockPgConn{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &MockPgRow{Values: []any{7}}
		},
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			gotArgs = args
			return &MockPgRows{Data: [][]any{
				{"Bowser", "Fox", 1, 3, 4, 0.25},
				{"Fox", "Mario", 3, 2, 5, 0.6},
			}}, nil
		},
	})

	recs, total, err := store.ListMatchups(context.Background(), 2, 4)
	if err != nil {
		t.Fatalf("ListMatchups: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(recs) != 2 || recs[1].Character2 != "Mario" || recs[1].TotalGames != 5 {
		t.Errorf("unexpected records: %+v", recs)
	}
	if len(gotArgs) != 2 || gotArgs[0] != 2 || gotArgs[1] != 4 {
		t.Errorf("limit/offset args = %v", gotArgs)
	}
}

func TestGetMatchup(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store := NewPostgresStore(&MockPgConn{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				if args[0] != "Fox" || args[1] != "Mario" {
					t.Errorf("unexpected key args %v", args)
				}
				return &MockPgRow{Values: []any{"Fox", "Mario", 3, 2, 5, 0.6}}
			},
		})
		rec, err := store.GetMatchup(context.Background(), models.NewMatchupKey("Mario", "Fox"))
		if err != nil {
			t.Fatalf("GetMatchup: %v", err)
		}
		if rec.Char1Wins != 3 {
			t.Errorf("Char1Wins = %d", rec.Char1Wins)
		}
	})

	t.Run("missing", func(t *testing.T) {
		store := NewPostgresStore(&MockPgConn{})
		_, err := store.GetMatchup(context.Background(), models.NewMatchupKey("Fox", "Mario"))
		if !errors.Is(err, logic.ErrMatchupNotFound) {
			t.Errorf("expected ErrMatchupNotFound, got %v", err)
		}
	})
}

func TestLoadProfiles(t *testing.T) {
	store := NewPostgresStore(&MockPgConn{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &MockPgRows{Data: [][]any{
				{"Fox", map[string]float64{"weight": 77}},
				{"Mario", map[string]float64{"weight": 98}},
			}}, nil
		},
	})

	profiles, err := store.LoadProfiles(context.Background())
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if len(profiles) != 2 || profiles[1].Attributes["weight"] != 98 {
		t.Errorf("unexpected profiles: %+v", profiles)
	}
}

func TestUpsertProfiles(t *testing.T) {
	results := &MockBatchResults{}
	var queued int
	store := NewPostgresStore(&MockPgConn{
		SendBatchFunc: func(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
			queued = b.Len()
			return results
		},
	})

	profiles := []models.CharacterProfile{
		{Name: "Fox", Attributes: map[string]float64{"weight": 77}},
		{Name: "Mario", Attributes: map[string]float64{"weight": 98}},
	}
	if err := store.UpsertProfiles(context.Background(), profiles); err != nil {
		t.Fatalf("UpsertProfiles: %v", err)
	}
	if queued != 2 || results.Execs != 2 || !results.Closed {
		t.Errorf("queued=%d execs=%d closed=%v", queued, results.Execs, results.Closed)
	}

	results.ExecErr = errors.New("boom")
	if err := store.UpsertProfiles(context.Background(), profiles); err == nil {
		t.Error("expected batch error")
	}
}
