package logic

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/smashlab/matchup-api/internal/models"
)

var matchupHeader = []string{
	"character_1", "character_2", "char1_wins", "char2_wins", "total_games", "char1_winrate",
}

// WriteMatchupsCSV writes the table sorted by key. The same records always
// produce the same bytes.
func WriteMatchupsCSV(w io.Writer, records []models.MatchupRecord) error {
	sorted := append([]models.MatchupRecord(nil), records...)
	sortRecords(sorted)

	cw := csv.NewWriter(w)
	if err := cw.Write(matchupHeader); err != nil {
		return err
	}
	for _, r := range sorted {
		if err := cw.Write([]string{
			r.Character1,
			r.Character2,
			strconv.Itoa(r.Char1Wins),
			strconv.Itoa(r.Char2Wins),
			strconv.Itoa(r.TotalGames),
			strconv.FormatFloat(r.Char1WinRate, 'g', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMatchupsCSV reads a table written by WriteMatchupsCSV and checks the
// row invariants.
func ReadMatchupsCSV(r io.Reader) ([]models.MatchupRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("matchups csv header: %w", err)
	}
	if len(header) != len(matchupHeader) {
		return nil, fmt.Errorf("matchups csv: want %d columns, got %d", len(matchupHeader), len(header))
	}
	for i, h := range header {
		if strings.TrimSpace(h) != matchupHeader[i] {
			return nil, fmt.Errorf("matchups csv: column %d is %q, want %q", i+1, h, matchupHeader[i])
		}
	}

	var out []models.MatchupRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("matchups csv line %d: %w", line, err)
		}
		rec, err := parseMatchupRow(row)
		if err != nil {
			return nil, fmt.Errorf("matchups csv line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseMatchupRow(row []string) (models.MatchupRecord, error) {
	var (
		rec models.MatchupRecord
		err error
	)
	rec.Character1, rec.Character2 = row[0], row[1]
	if rec.Character1 == "" || rec.Character2 == "" {
		return rec, fmt.Errorf("blank character")
	}
	if rec.Character2 < rec.Character1 {
		return rec, fmt.Errorf("%q and %q are not in key order", rec.Character1, rec.Character2)
	}
	if rec.Char1Wins, err = strconv.Atoi(row[2]); err != nil {
		return rec, err
	}
	if rec.Char2Wins, err = strconv.Atoi(row[3]); err != nil {
		return rec, err
	}
	if rec.TotalGames, err = strconv.Atoi(row[4]); err != nil {
		return rec, err
	}
	if rec.Char1WinRate, err = strconv.ParseFloat(row[5], 64); err != nil {
		return rec, err
	}
	if rec.Char1Wins < 0 || rec.Char2Wins < 0 || rec.TotalGames != rec.Char1Wins+rec.Char2Wins {
		return rec, fmt.Errorf("%s: %d + %d != %d", rec.Key(), rec.Char1Wins, rec.Char2Wins, rec.TotalGames)
	}
	return rec, nil
}

func sortRecords(records []models.MatchupRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key().Less(records[j].Key())
	})
}
