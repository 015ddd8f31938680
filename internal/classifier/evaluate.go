package classifier

import (
	"fmt"
	"math"

	"github.com/smashlab/matchup-api/internal/logic"
)

// Report summarizes classifier quality on a set of examples.
type Report struct {
	Examples int     `json:"examples"`
	Accuracy float64 `json:"accuracy"`
	LogLoss  float64 `json:"log_loss"`
}

// Evaluate scores c against labelled examples.
func Evaluate(c logic.Classifier, examples []logic.Example) (Report, error) {
	r := Report{Examples: len(examples)}
	if len(examples) == 0 {
		return r, nil
	}
	correct := 0
	for i, ex := range examples {
		label, probs, err := c.PredictProba(ex.Input)
		if err != nil {
			return r, fmt.Errorf("example %d: %w", i, err)
		}
		probs, err = probs.Normalize()
		if err != nil {
			return r, fmt.Errorf("example %d: %w", i, err)
		}
		if label == ex.Label {
			correct++
		}
		p := math.Max(probs[ex.Label], 1e-15)
		r.LogLoss -= math.Log(p)
	}
	r.Accuracy = float64(correct) / float64(len(examples))
	r.LogLoss /= float64(len(examples))
	return r, nil
}
