package logic

import (
	"testing"

	"github.com/smashlab/matchup-api/internal/models"
)

var testSchema = Schema{"weight", "speed", "recovery"}

func testProfiles() []models.CharacterProfile {
	return []models.CharacterProfile{
		{Name: "Fox", Attributes: map[string]float64{"weight": 77, "speed": 2.4, "recovery": 2}},
		{Name: "Mario", Attributes: map[string]float64{"weight": 98, "speed": 1.76, "recovery": 3}},
		{Name: "Bowser", Attributes: map[string]float64{"weight": 135, "speed": 1.6, "recovery": 2.5}},
		{Name: "Mr. Game & Watch", Attributes: map[string]float64{"weight": 75, "speed": 1.68, "recovery": 4}},
		{Name: "Pokemon Trainer", Attributes: map[string]float64{"weight": 90, "speed": 1.9, "recovery": 3}},
	}
}

func testTable(t *testing.T) *ProfileTable {
	t.Helper()
	table, err := NewProfileTable(testSchema, testProfiles())
	if err != nil {
		t.Fatalf("NewProfileTable: %v", err)
	}
	return table
}

func testCanonicalizer(t *testing.T) *Canonicalizer {
	t.Helper()
	return NewCanonicalizer(DefaultAliases(), testTable(t).Names())
}

func set(id, a, b, winner, charA, charB string) models.RawMatchRecord {
	return models.RawMatchRecord{
		SetID:       id,
		CompetitorA: a,
		CompetitorB: b,
		WinnerID:    winner,
		CharacterA:  charA,
		CharacterB:  charB,
	}
}
