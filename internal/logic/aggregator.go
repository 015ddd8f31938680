package logic

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smashlab/matchup-api/internal/models"
)

type sideCounts struct {
	side1 int
	side2 int
}

// Tally accumulates per-key win counts. Tallies from different shards are
// combined with Merge before any threshold is applied.
type Tally struct {
	counts  map[models.MatchupKey]*sideCounts
	records int
	skipped map[SkipReason]int
}

func NewTally() *Tally {
	return &Tally{
		counts:  make(map[models.MatchupKey]*sideCounts),
		skipped: make(map[SkipReason]int),
	}
}

// Merge adds o's counters into t.
func (t *Tally) Merge(o *Tally) {
	for k, c := range o.counts {
		dst, ok := t.counts[k]
		if !ok {
			dst = &sideCounts{}
			t.counts[k] = dst
		}
		dst.side1 += c.side1
		dst.side2 += c.side2
	}
	t.records += o.records
	for r, n := range o.skipped {
		t.skipped[r] += n
	}
}

// Emit returns one record per key with at least minGames games, sorted by
// key. A negative minGames is treated as 0.
func (t *Tally) Emit(minGames int) ([]models.MatchupRecord, AggregateStats) {
	if minGames < 0 {
		minGames = 0
	}
	stats := AggregateStats{
		Records:  t.records,
		Skipped:  make(map[SkipReason]int, len(t.skipped)),
		MinGames: minGames,
	}
	for r, n := range t.skipped {
		stats.Skipped[r] = n
	}

	out := make([]models.MatchupRecord, 0, len(t.counts))
	for k, c := range t.counts {
		total := c.side1 + c.side2
		stats.Counted += total
		if total < minGames || total == 0 {
			stats.Dropped++
			continue
		}
		out = append(out, models.MatchupRecord{
			Character1:   k.First,
			Character2:   k.Second,
			Char1Wins:    c.side1,
			Char2Wins:    c.side2,
			TotalGames:   total,
			Char1WinRate: float64(c.side1) / float64(total),
		})
	}
	sortRecords(out)
	stats.Emitted = len(out)
	return out, stats
}

// AggregateStats summarizes one aggregation run.
type AggregateStats struct {
	Records  int
	Counted  int
	Skipped  map[SkipReason]int
	Dropped  int
	Emitted  int
	MinGames int
}

// SkippedTotal sums skipped records over all reasons.
func (s AggregateStats) SkippedTotal() int {
	n := 0
	for _, v := range s.Skipped {
		n += v
	}
	return n
}

// Summary converts the stats of a run started at start into the summary
// stored alongside the build.
func (s AggregateStats) Summary(buildID string, start time.Time) *models.RebuildSummary {
	summary := &models.RebuildSummary{
		BuildID:   buildID,
		Records:   s.Records,
		Counted:   s.Counted,
		Skipped:   make(map[string]int, len(s.Skipped)),
		Dropped:   s.Dropped,
		Matchups:  s.Emitted,
		MinGames:  s.MinGames,
		StartedAt: start.UTC(),
	}
	for reason, n := range s.Skipped {
		summary.Skipped[string(reason)] = n
	}
	return summary
}

// Aggregator turns raw set records into the canonical matchup table.
type Aggregator struct {
	canon *Canonicalizer
}

func NewAggregator(canon *Canonicalizer) *Aggregator {
	return &Aggregator{canon: canon}
}

// Add counts one record into t. Records that cannot be counted are tallied
// by reason and reported as a *MalformedRecordError; the error is never
// fatal to the run.
func (a *Aggregator) Add(t *Tally, rec models.RawMatchRecord) error {
	t.records++

	reason, key, side1Won := a.classify(rec)
	if reason != "" {
		t.skipped[reason]++
		return &MalformedRecordError{SetID: rec.SetID, Reason: reason}
	}

	c, ok := t.counts[key]
	if !ok {
		c = &sideCounts{}
		t.counts[key] = c
	}
	if side1Won {
		c.side1++
	} else {
		c.side2++
	}
	return nil
}

func (a *Aggregator) classify(rec models.RawMatchRecord) (SkipReason, models.MatchupKey, bool) {
	charA := a.canon.Canonicalize(resolveCharacter(rec.CharacterA, rec.UsageA))
	charB := a.canon.Canonicalize(resolveCharacter(rec.CharacterB, rec.UsageB))
	if charA == "" || charB == "" {
		return SkipMissingCharacter, models.MatchupKey{}, false
	}

	idA := strings.TrimSpace(rec.CompetitorA)
	idB := strings.TrimSpace(rec.CompetitorB)
	winner := strings.TrimSpace(rec.WinnerID)
	if idA == "" || idB == "" || idA == idB || (winner != idA && winner != idB) {
		return SkipInvalidWinner, models.MatchupKey{}, false
	}

	// A mirror match has no side to credit without depending on which
	// competitor was listed first.
	if charA == charB {
		return SkipMirrorMatch, models.MatchupKey{}, false
	}

	key := models.NewMatchupKey(charA, charB)
	aWon := winner == idA
	side1Won := aWon == (charA == key.First)
	return "", key, side1Won
}

func resolveCharacter(name string, usage map[string]int) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if p, ok := PrimaryCharacter(usage); ok {
		return p
	}
	return ""
}

// Aggregate builds the matchup table from records in one pass.
func (a *Aggregator) Aggregate(records []models.RawMatchRecord, minGames int) ([]models.MatchupRecord, AggregateStats) {
	t := NewTally()
	for _, rec := range records {
		_ = a.Add(t, rec)
	}
	return t.Emit(minGames)
}

// AggregateSharded tallies contiguous shards concurrently and merges them
// before filtering. The result equals Aggregate on the same input.
func (a *Aggregator) AggregateSharded(ctx context.Context, records []models.RawMatchRecord, shards, minGames int) ([]models.MatchupRecord, AggregateStats, error) {
	if shards < 1 {
		shards = 1
	}
	if shards > len(records) {
		shards = len(records)
	}
	if shards <= 1 {
		out, stats := a.Aggregate(records, minGames)
		return out, stats, nil
	}

	tallies := make([]*Tally, shards)
	size := (len(records) + shards - 1) / shards
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo := i * size
		if lo > len(records) {
			lo = len(records)
		}
		hi := lo + size
		if hi > len(records) {
			hi = len(records)
		}
		i := i
		g.Go(func() error {
			t := NewTally()
			for _, rec := range records[lo:hi] {
				if err := ctx.Err(); err != nil {
					return err
				}
				_ = a.Add(t, rec)
			}
			tallies[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, AggregateStats{}, err
	}

	merged := NewTally()
	for _, t := range tallies {
		if t != nil {
			merged.Merge(t)
		}
	}
	out, stats := merged.Emit(minGames)
	return out, stats, nil
}

// SortedSkipReasons lists reasons present in stats in a stable order.
func SortedSkipReasons(stats AggregateStats) []SkipReason {
	out := make([]SkipReason, 0, len(stats.Skipped))
	for r := range stats.Skipped {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
