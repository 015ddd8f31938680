package models

// CharacterProfile is one row of the character attribute table. Profiles
// are loaded once and shared read-only between requests.
type CharacterProfile struct {
	Name       string             `json:"name"`
	Attributes map[string]float64 `json:"attributes"`
}

// Attribute returns the named attribute and whether it is present.
func (p CharacterProfile) Attribute(name string) (float64, bool) {
	v, ok := p.Attributes[name]
	return v, ok
}

// FeatureVector holds per-attribute differences for an ordered pair, in
// schema order.
type FeatureVector []float64

// Negate returns the elementwise negation of v.
func (v FeatureVector) Negate() FeatureVector {
	out := make(FeatureVector, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

// AttributeComparison is one row of the side-by-side table reported with a
// prediction.
type AttributeComparison struct {
	Attribute  string  `json:"attribute"`
	First      float64 `json:"first"`
	Second     float64 `json:"second"`
	Difference float64 `json:"difference"`
}

// PredictionResult is the order-invariant verdict for an unordered pair.
// Characters is in MatchupKey order and Probabilities is aligned with it.
type PredictionResult struct {
	Characters      [2]string             `json:"characters"`
	PredictedWinner string                `json:"predicted_winner"`
	Confidence      float64               `json:"confidence"`
	Probabilities   [2]float64            `json:"probabilities"`
	Tier            MatchupTier           `json:"tier"`
	DirectionsAgree bool                  `json:"directions_agree"`
	Comparison      []AttributeComparison `json:"comparison"`
}

// Probability returns the win probability reported for name, or false if
// name is not part of the pair.
func (p *PredictionResult) Probability(name string) (float64, bool) {
	switch name {
	case p.Characters[0]:
		return p.Probabilities[0], true
	case p.Characters[1]:
		return p.Probabilities[1], true
	}
	return 0, false
}

// Key returns the unordered pair the result belongs to.
func (p *PredictionResult) Key() MatchupKey {
	return MatchupKey{First: p.Characters[0], Second: p.Characters[1]}
}
