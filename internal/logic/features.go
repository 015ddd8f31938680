package logic

import (
	"fmt"

	"github.com/smashlab/matchup-api/internal/models"
)

// Schema is the ordered list of attributes a feature vector is built from.
type Schema []string

// DefaultSchema is the attribute set of the bundled character table.
var DefaultSchema = Schema{
	"weight", "recovery", "speed", "combo_game", "projectiles",
	"killpower", "ledgetrap", "edgeguard", "spacing", "cheese",
}

// Validate rejects empty schemas and duplicate attributes.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no attributes")
	}
	seen := make(map[string]struct{}, len(s))
	for _, a := range s {
		if a == "" {
			return fmt.Errorf("schema has a blank attribute")
		}
		if _, dup := seen[a]; dup {
			return fmt.Errorf("schema lists %q twice", a)
		}
		seen[a] = struct{}{}
	}
	return nil
}

// BuildVector returns x[i] - y[i] for every schema attribute, in schema
// order. A missing attribute on either side is an error.
func BuildVector(x, y models.CharacterProfile, schema Schema) (models.FeatureVector, error) {
	v := make(models.FeatureVector, len(schema))
	for i, attr := range schema {
		xv, ok := x.Attribute(attr)
		if !ok {
			return nil, &AttributeMissingError{Character: x.Name, Attribute: attr}
		}
		yv, ok := y.Attribute(attr)
		if !ok {
			return nil, &AttributeMissingError{Character: y.Name, Attribute: attr}
		}
		v[i] = xv - yv
	}
	return v, nil
}

// Compare lists both raw values and their signed difference per attribute.
func Compare(x, y models.CharacterProfile, schema Schema) ([]models.AttributeComparison, error) {
	out := make([]models.AttributeComparison, 0, len(schema))
	for _, attr := range schema {
		xv, ok := x.Attribute(attr)
		if !ok {
			return nil, &AttributeMissingError{Character: x.Name, Attribute: attr}
		}
		yv, ok := y.Attribute(attr)
		if !ok {
			return nil, &AttributeMissingError{Character: y.Name, Attribute: attr}
		}
		out = append(out, models.AttributeComparison{
			Attribute:  attr,
			First:      xv,
			Second:     yv,
			Difference: xv - yv,
		})
	}
	return out, nil
}
