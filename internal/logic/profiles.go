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

// ProfileTable is the read-only attribute table. Every profile carries
// every schema attribute; this is checked once when the table is built.
type ProfileTable struct {
	schema   Schema
	profiles map[string]models.CharacterProfile
	names    []string
}

// NewProfileTable validates profiles against schema and indexes them by
// name. Names must be unique ignoring case.
func NewProfileTable(schema Schema, profiles []models.CharacterProfile) (*ProfileTable, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	t := &ProfileTable{
		schema:   append(Schema(nil), schema...),
		profiles: make(map[string]models.CharacterProfile, len(profiles)),
		names:    make([]string, 0, len(profiles)),
	}
	folded := make(map[string]string, len(profiles))
	for _, p := range profiles {
		name := normalizeName(p.Name)
		if name == "" {
			return nil, fmt.Errorf("profile with blank name")
		}
		if prev, dup := folded[strings.ToLower(name)]; dup {
			return nil, fmt.Errorf("duplicate profile %q (also %q)", name, prev)
		}
		folded[strings.ToLower(name)] = name

		attrs := make(map[string]float64, len(schema))
		for _, a := range schema {
			v, ok := p.Attributes[a]
			if !ok {
				return nil, &AttributeMissingError{Character: name, Attribute: a}
			}
			attrs[a] = v
		}
		t.profiles[name] = models.CharacterProfile{Name: name, Attributes: attrs}
		t.names = append(t.names, name)
	}
	sort.Strings(t.names)
	return t, nil
}

func (t *ProfileTable) Schema() Schema { return t.schema }

// Names returns profile names in sorted order.
func (t *ProfileTable) Names() []string {
	return append([]string(nil), t.names...)
}

func (t *ProfileTable) Len() int { return len(t.names) }

// Lookup finds a profile by exact canonical name.
func (t *ProfileTable) Lookup(name string) (models.CharacterProfile, bool) {
	p, ok := t.profiles[name]
	return p, ok
}

// Profiles returns every profile sorted by name.
func (t *ProfileTable) Profiles() []models.CharacterProfile {
	out := make([]models.CharacterProfile, 0, len(t.names))
	for _, n := range t.names {
		out = append(out, t.profiles[n])
	}
	return out
}

// LoadProfilesCSV reads an attribute table with a "name" column. The
// schema is resolved against the header once; columns outside the schema
// are ignored.
func LoadProfilesCSV(r io.Reader, schema Schema) ([]models.CharacterProfile, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("profiles csv: empty input")
		}
		return nil, fmt.Errorf("profiles csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, fmt.Errorf("profiles csv: no name column")
	}
	idx := make([]int, len(schema))
	for i, a := range schema {
		c, ok := cols[strings.ToLower(a)]
		if !ok {
			return nil, &AttributeMissingError{Attribute: a}
		}
		idx[i] = c
	}

	var out []models.CharacterProfile
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("profiles csv line %d: %w", line, err)
		}
		name := normalizeName(row[nameCol])
		if name == "" {
			continue
		}
		p := models.CharacterProfile{Name: name, Attributes: make(map[string]float64, len(schema))}
		for i, a := range schema {
			cell := strings.TrimSpace(row[idx[i]])
			if cell == "" {
				return nil, &AttributeMissingError{Character: name, Attribute: a}
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("profiles csv line %d, %s.%s: %w", line, name, a, err)
			}
			p.Attributes[a] = v
		}
		out = append(out, p)
	}
	return out, nil
}

// WriteProfilesCSV writes profiles with the schema as columns.
func WriteProfilesCSV(w io.Writer, profiles []models.CharacterProfile, schema Schema) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"name"}, schema...)); err != nil {
		return err
	}
	sorted := append([]models.CharacterProfile(nil), profiles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, p := range sorted {
		row := make([]string, 0, len(schema)+1)
		row = append(row, p.Name)
		for _, a := range schema {
			v, ok := p.Attributes[a]
			if !ok {
				return &AttributeMissingError{Character: p.Name, Attribute: a}
			}
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
