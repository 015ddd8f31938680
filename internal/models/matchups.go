package models

import "time"

// MatchupKey identifies an unordered character pair. First always sorts
// before (or equal to) Second.
type MatchupKey struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// NewMatchupKey returns the key for x and y. NewMatchupKey(x, y) == NewMatchupKey(y, x).
func NewMatchupKey(x, y string) MatchupKey {
	if y < x {
		x, y = y, x
	}
	return MatchupKey{First: x, Second: y}
}

func (k MatchupKey) String() string {
	return k.First + " vs " + k.Second
}

// Mirror reports whether both sides are the same character.
func (k MatchupKey) Mirror() bool {
	return k.First == k.Second
}

// Less orders keys by First, then Second.
func (k MatchupKey) Less(o MatchupKey) bool {
	if k.First != o.First {
		return k.First < o.First
	}
	return k.Second < o.Second
}

// MatchupTier buckets a side-1 win rate.
type MatchupTier string

const (
	TierSide1Advantaged MatchupTier = "side1_advantaged"
	TierEven            MatchupTier = "even"
	TierSide2Advantaged MatchupTier = "side2_advantaged"
)

// MatchupRecord is one row of the canonical matchup table. Character1 is
// side 1 (alphabetically first).
type MatchupRecord struct {
	Character1   string  `json:"character_1"`
	Character2   string  `json:"character_2"`
	Char1Wins    int     `json:"char1_wins"`
	Char2Wins    int     `json:"char2_wins"`
	TotalGames   int     `json:"total_games"`
	Char1WinRate float64 `json:"char1_winrate"`
}

func (r MatchupRecord) Key() MatchupKey {
	return MatchupKey{First: r.Character1, Second: r.Character2}
}

// MatchupView is a MatchupRecord decorated for API responses.
type MatchupView struct {
	MatchupRecord
	Tier MatchupTier `json:"tier"`
}

// RebuildSummary reports one full aggregation run.
type RebuildSummary struct {
	BuildID   string         `json:"build_id"`
	Records   int            `json:"records"`
	Counted   int            `json:"counted"`
	Skipped   map[string]int `json:"skipped"`
	Dropped   int            `json:"dropped"`
	Matchups  int            `json:"matchups"`
	MinGames  int            `json:"min_games"`
	StartedAt time.Time      `json:"started_at"`
	Duration  string         `json:"duration"`
}
