package logic

import (
	"fmt"

	"github.com/smashlab/matchup-api/internal/models"
)

// TierCutoffs bucket a side-1 win rate. Rates at or above Advantage favor
// side 1, rates at or below Disadvantage favor side 2.
type TierCutoffs struct {
	Advantage    float64
	Disadvantage float64
}

var DefaultTierCutoffs = TierCutoffs{Advantage: 0.55, Disadvantage: 0.45}

func (c TierCutoffs) Validate() error {
	if c.Disadvantage < 0 || c.Advantage > 1 || c.Disadvantage >= c.Advantage {
		return fmt.Errorf("invalid tier cutoffs: need 0 <= %v < %v <= 1", c.Disadvantage, c.Advantage)
	}
	return nil
}

func (c TierCutoffs) Classify(side1Rate float64) models.MatchupTier {
	switch {
	case side1Rate >= c.Advantage:
		return models.TierSide1Advantaged
	case side1Rate <= c.Disadvantage:
		return models.TierSide2Advantaged
	default:
		return models.TierEven
	}
}
