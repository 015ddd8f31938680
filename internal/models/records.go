package models

import "time"

// RawMatchRecord is one tournament set as reported by a source. Character
// names are free-form and canonicalized during aggregation. When a side's
// character is blank, the usage map (character -> games played) can supply
// the player's primary character.
type RawMatchRecord struct {
	SetID       string         `json:"set_id"`
	Tournament  string         `json:"tournament,omitempty"`
	CompetitorA string         `json:"competitor_a" validate:"required"`
	CompetitorB string         `json:"competitor_b" validate:"required"`
	WinnerID    string         `json:"winner_id" validate:"required"`
	CharacterA  string         `json:"character_a"`
	CharacterB  string         `json:"character_b"`
	UsageA      map[string]int `json:"usage_a,omitempty"`
	UsageB      map[string]int `json:"usage_b,omitempty"`
	ScoreA      int            `json:"score_a"`
	ScoreB      int            `json:"score_b"`
	PlayedAt    time.Time      `json:"played_at"`
}

// ClickHouseSet is the flattened row stored in matchup_stats.tournament_sets.
type ClickHouseSet struct {
	SetID       string    `ch:"set_id"`
	Tournament  string    `ch:"tournament"`
	PlayedAt    time.Time `ch:"played_at"`
	CompetitorA string    `ch:"competitor_a"`
	CompetitorB string    `ch:"competitor_b"`
	WinnerID    string    `ch:"winner_id"`
	CharacterA  string    `ch:"character_a"`
	CharacterB  string    `ch:"character_b"`
	ScoreA      int32     `ch:"score_a"`
	ScoreB      int32     `ch:"score_b"`
	IngestedAt  time.Time `ch:"ingested_at"`
}
