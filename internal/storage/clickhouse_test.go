package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smashlab/matchup-api/internal/models"
)

func TestClickHouseSets_EnsureSchema(t *testing.T) {
	conn := &MockClickHouseConn{}
	if err := NewClickHouseSets(conn).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if len(conn.Executed) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(conn.Executed))
	}
	if !strings.Contains(conn.Executed[1], "ReplacingMergeTree") {
		t.Errorf("unexpected table DDL: %s", conn.Executed[1])
	}
}

func TestClickHouseSets_LoadSets(t *testing.T) {
	played := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)
	conn := &MockClickHouseConn{Sets: []models.ClickHouseSet{
		{SetID: "a", CompetitorA: "p1", CompetitorB: "p2", WinnerID: "p2", CharacterA: "fox", CharacterB: "marth", ScoreA: 1, ScoreB: 3, PlayedAt: played},
		{SetID: "b", CompetitorA: "p3", CompetitorB: "p4", WinnerID: "p3", CharacterA: "Mario", CharacterB: "Fox"},
	}}

	sets, err := NewClickHouseSets(conn).LoadSets(context.Background())
	if err != nil {
		t.Fatalf("LoadSets: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(sets))
	}
	if sets[0].CharacterB != "marth" || sets[0].ScoreB != 3 || !sets[0].PlayedAt.Equal(played) {
		t.Errorf("unexpected first set: %+v", sets[0])
	}

	conn.QueryErr = errors.New("down")
	if _, err := NewClickHouseSets(conn).LoadSets(context.Background()); err == nil {
		t.Error("expected query error")
	}
}

func TestClickHouseSetConversion(t *testing.T) {
	rec := &models.RawMatchRecord{SetID: "x", CompetitorA: "a", CompetitorB: "b", WinnerID: "a", CharacterA: "Fox", CharacterB: "Falco", ScoreA: 2}
	row := ToClickHouseSet(rec)
	if row.ScoreA != 2 || row.CharacterB != "Falco" {
		t.Errorf("unexpected row %+v", row)
	}
	back := FromClickHouseSet(row)
	if back.SetID != rec.SetID || back.WinnerID != rec.WinnerID || back.ScoreA != rec.ScoreA {
		t.Errorf("unexpected record %+v", back)
	}
}
