package logic

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// AliasTable maps spelling variants to canonical display names. Keys are
// matched after normalization, so "Meta  Knight" and "meta knight" hit the
// same entry.
type AliasTable struct {
	Version string            `json:"version"`
	Entries map[string]string `json:"entries"`
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() AliasTable {
	return AliasTable{
		Version: "2024.1",
		Entries: map[string]string{
			"metaknight":        "Meta Knight",
			"littlemac":         "Little Mac",
			"pokemontrainer":    "Pokemon Trainer",
			"pokémon trainer":   "Pokemon Trainer",
			"pt":                "Pokemon Trainer",
			"pyra":              "Pyra Mythra",
			"mythra":            "Pyra Mythra",
			"pyramythra":        "Pyra Mythra",
			"pyra/mythra":       "Pyra Mythra",
			"pyra & mythra":     "Pyra Mythra",
			"gamewatch":         "Mr. Game & Watch",
			"mr game & watch":   "Mr. Game & Watch",
			"mr game and watch": "Mr. Game & Watch",
			"mr. game & watch":  "Mr. Game & Watch",
			"mariod":            "Dr. Mario",
			"dr mario":          "Dr. Mario",
			"dr. mario":         "Dr. Mario",
			"toonlink":          "Toon Link",
			"younglink":         "Young Link",
			"wiifittrainer":     "Wii Fit Trainer",
			"kingkr":            "King K. Rool",
			"king k rool":       "King K. Rool",
			"k rool":            "King K. Rool",
			"king k. rool":      "King K. Rool",
			"kingdedede":        "King Dedede",
			"banjokazooie":      "Banjo & Kazooie",
			"banjo & kazooie":   "Banjo & Kazooie",
			"diddykong":         "Diddy Kong",
			"iceclimbers":       "Ice Climbers",
			"rosalina":          "Rosalina & Luma",
			"rosalina & luma":   "Rosalina & Luma",
			"piranhaplant":      "Piranha Plant",
			"zerosuitsamus":     "Zero Suit Samus",
			"zero suitsamus":    "Zero Suit Samus",
			"r.o.b":             "R.O.B.",
			"r.o.b.":            "R.O.B.",
			"rob":               "R.O.B.",
			"r o b":             "R.O.B.",
			"miibrawler":        "Mii Brawler",
			"miiswordfighter":   "Mii Swordfighter",
			"miigunner":         "Mii Gunner",
		},
	}
}

// LoadAliasTable decodes a JSON alias table.
func LoadAliasTable(r io.Reader) (AliasTable, error) {
	var t AliasTable
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return AliasTable{}, fmt.Errorf("decode alias table: %w", err)
	}
	for k, v := range t.Entries {
		if normalizeName(k) == "" || normalizeName(v) == "" {
			return AliasTable{}, fmt.Errorf("alias table %q: blank entry %q -> %q", t.Version, k, v)
		}
	}
	return t, nil
}

// Canonicalizer resolves free-form character names to one display name.
// It is immutable after construction and safe for concurrent use.
type Canonicalizer struct {
	version string
	aliases map[string]string
	known   map[string]string
}

// NewCanonicalizer builds a canonicalizer from an alias table and the
// names of the attribute table. Table names are matched case-insensitively
// and returned in their table casing.
func NewCanonicalizer(aliases AliasTable, names []string) *Canonicalizer {
	c := &Canonicalizer{
		version: aliases.Version,
		aliases: make(map[string]string, len(aliases.Entries)),
		known:   make(map[string]string, len(names)),
	}
	for k, v := range aliases.Entries {
		c.aliases[lookupKey(k)] = normalizeName(v)
	}
	for _, n := range names {
		display := normalizeName(n)
		if display == "" {
			continue
		}
		c.known[strings.ToLower(display)] = display
	}
	return c
}

// AliasVersion reports the version of the alias table in use.
func (c *Canonicalizer) AliasVersion() string {
	return c.version
}

// Canonicalize never fails. Blank input yields "".
func (c *Canonicalizer) Canonicalize(raw string) string {
	normalized := normalizeName(raw)
	if normalized == "" {
		return ""
	}
	key := strings.ToLower(normalized)
	if v, ok := c.aliases[key]; ok {
		return v
	}
	// "ultimate/fox" names Fox
	if stripped := stripGamePrefix(normalized); stripped != normalized {
		if stripped == "" {
			return ""
		}
		normalized, key = stripped, strings.ToLower(stripped)
		if v, ok := c.aliases[key]; ok {
			return v
		}
	}
	if v, ok := c.known[key]; ok {
		return v
	}
	// Casers keep state and are not safe to share between goroutines
	return cases.Title(language.English).String(normalized)
}

// normalizeName applies NFC, trims and collapses internal whitespace.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

func lookupKey(s string) string {
	return strings.ToLower(normalizeName(s))
}
