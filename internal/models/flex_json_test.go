package models

import (
	"encoding/json"
	"testing"
)

func TestFlexUnmarshal_NumericIDs(t *testing.T) {
	input := `[{"set_id": 48213, "competitor_a": 1001, "competitor_b": "1002", "winner_id": 1002, "character_a": "Fox", "character_b": "mario", "score_a": "1", "score_b": 3}]`

	var sets []RawMatchRecord
	if err := json.Unmarshal([]byte(input), &sets); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("Expected 1 set, got %d", len(sets))
	}

	s := sets[0]
	if s.SetID != "48213" {
		t.Errorf("SetID = %q, want 48213", s.SetID)
	}
	if s.CompetitorA != "1001" {
		t.Errorf("CompetitorA = %q, want 1001", s.CompetitorA)
	}
	if s.CompetitorB != "1002" {
		t.Errorf("CompetitorB = %q, want 1002", s.CompetitorB)
	}
	if s.WinnerID != "1002" {
		t.Errorf("WinnerID = %q, want 1002", s.WinnerID)
	}
	if s.ScoreA != 1 || s.ScoreB != 3 {
		t.Errorf("Scores = %d-%d, want 1-3", s.ScoreA, s.ScoreB)
	}
	if s.CharacterB != "mario" {
		t.Errorf("CharacterB = %q, want mario", s.CharacterB)
	}
}

func TestFlexUnmarshal_NativeTypes(t *testing.T) {
	input := `{"competitor_a": "p1", "competitor_b": "p2", "winner_id": "p1", "usage_a": {"ultimate/fox": 12, "ultimate/falco": 3}, "score_a": 2}`

	var s RawMatchRecord
	if err := json.Unmarshal([]byte(input), &s); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if s.UsageA["ultimate/fox"] != 12 {
		t.Errorf("UsageA[fox] = %d, want 12", s.UsageA["ultimate/fox"])
	}
	if s.ScoreA != 2 {
		t.Errorf("ScoreA = %d, want 2", s.ScoreA)
	}
}

func TestFlexUnmarshal_NotAnObject(t *testing.T) {
	var s RawMatchRecord
	if err := json.Unmarshal([]byte(`"just a string"`), &s); err == nil {
		t.Error("expected error for non-object input")
	}
}
