package logic

import (
	"github.com/smashlab/matchup-api/internal/models"
)

// Example is one labelled training vector.
type Example struct {
	Key    models.MatchupKey
	Input  models.FeatureVector
	Label  Label
	Weight float64
}

// DatasetStats reports how a training set was assembled.
type DatasetStats struct {
	Matchups        int
	Examples        int
	MissingProfiles int
}

// BuildTrainingSet turns the matchup table into labelled examples. Each
// matchup contributes vector(side1, side2), labelled FirstWins when side 1
// won at least half its games, weighted by games played. With augment set,
// the mirrored example (negated vector, flipped label) is added too.
// Matchups whose characters have no profile are skipped and counted.
func BuildTrainingSet(records []models.MatchupRecord, profiles *ProfileTable, augment bool) ([]Example, DatasetStats, error) {
	stats := DatasetStats{Matchups: len(records)}
	schema := profiles.Schema()

	sorted := append([]models.MatchupRecord(nil), records...)
	sortRecords(sorted)

	out := make([]Example, 0, len(sorted)*2)
	for _, r := range sorted {
		a, okA := profiles.Lookup(r.Character1)
		b, okB := profiles.Lookup(r.Character2)
		if !okA || !okB {
			stats.MissingProfiles++
			continue
		}
		v, err := BuildVector(a, b, schema)
		if err != nil {
			return nil, stats, err
		}
		label := SecondWins
		if r.Char1WinRate >= 0.5 {
			label = FirstWins
		}
		weight := float64(r.TotalGames)
		out = append(out, Example{Key: r.Key(), Input: v, Label: label, Weight: weight})
		if augment {
			out = append(out, Example{Key: r.Key(), Input: v.Negate(), Label: 1 - label, Weight: weight})
		}
	}
	stats.Examples = len(out)
	return out, stats, nil
}

// SplitExamples holds out every n-th example for evaluation.
func SplitExamples(examples []Example, every int) (train, holdout []Example) {
	if every < 2 {
		return examples, nil
	}
	for i, ex := range examples {
		if i%every == every-1 {
			holdout = append(holdout, ex)
		} else {
			train = append(train, ex)
		}
	}
	return train, holdout
}
