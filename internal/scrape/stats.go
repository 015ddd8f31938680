// Package scrape extracts character attribute tables from frame-data
// style HTML pages.
package scrape

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

// CharacterStats maps a canonical character name to metric values. Metric
// names are "Section__Column".
type CharacterStats map[string]map[string]float64

// ParseStatsTables reads every table that directly follows a section
// heading and has a character column. Rows are merged across sections by
// canonical name; cells that are not numbers are left out.
func ParseStatsTables(r io.Reader, canonicalize func(string) string) (CharacterStats, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	stats := make(CharacterStats)
	section := ""
	doc.Find("h1, h2, h3, h4, table").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) != "table" {
			section = sectionTitle(s.Text())
			return
		}
		if section == "" {
			return
		}
		parseTable(s, section, canonicalize, stats)
		// only the first table after a heading belongs to it
		section = ""
	})
	return stats, nil
}

func sectionTitle(text string) string {
	title := strings.Join(strings.Fields(text), " ")
	if title == "" || strings.EqualFold(title, "stats") || strings.Contains(title, "Back to Home") {
		return ""
	}
	return title
}

func parseTable(table *goquery.Selection, section string, canonicalize func(string) string, stats CharacterStats) {
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return
	}

	var headers []string
	rows.First().Find("th, td").Each(func(_ int, c *goquery.Selection) {
		headers = append(headers, strings.Join(strings.Fields(c.Text()), " "))
	})
	charCol := -1
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), "character") {
			charCol = i
			break
		}
	}
	if charCol < 0 {
		return
	}

	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if cells.Length() <= charCol {
			return
		}
		name := canonicalize(cells.Eq(charCol).Text())
		if name == "" {
			return
		}
		metrics, ok := stats[name]
		if !ok {
			metrics = make(map[string]float64)
			stats[name] = metrics
		}
		cells.Each(func(i int, c *goquery.Selection) {
			if i == charCol || i >= len(headers) || headers[i] == "" {
				return
			}
			if v, ok := parseNumber(c.Text()); ok {
				metrics[section+"__"+headers[i]] = v
			}
		})
	})
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Columns lists every metric seen, sorted.
func (s CharacterStats) Columns() []string {
	seen := make(map[string]struct{})
	for _, m := range s {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CompleteColumns lists metrics that every character has, sorted.
func (s CharacterStats) CompleteColumns() []string {
	var out []string
	for _, col := range s.Columns() {
		complete := true
		for _, m := range s {
			if _, ok := m[col]; !ok {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, col)
		}
	}
	return out
}

// Profiles converts stats into profiles over schema. Characters lacking a
// schema metric are returned by name in skipped.
func (s CharacterStats) Profiles(schema logic.Schema) (profiles []models.CharacterProfile, skipped []string) {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		attrs := make(map[string]float64, len(schema))
		complete := true
		for _, a := range schema {
			v, ok := s[n][a]
			if !ok {
				complete = false
				break
			}
			attrs[a] = v
		}
		if !complete {
			skipped = append(skipped, n)
			continue
		}
		profiles = append(profiles, models.CharacterProfile{Name: n, Attributes: attrs})
	}
	return profiles, skipped
}
