package logic

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/smashlab/matchup-api/internal/models"
)

// Label is a classifier's answer for an ordered pair (X, Y).
type Label int

const (
	FirstWins  Label = 0
	SecondWins Label = 1
)

func (l Label) String() string {
	if l == FirstWins {
		return "first_wins"
	}
	return "second_wins"
}

// ClassProbabilities is indexed by Label.
type ClassProbabilities [2]float64

// Classifier scores the vector of an ordered pair. Implementations must be
// safe for concurrent calls and deterministic for a given vector.
type Classifier interface {
	PredictProba(v models.FeatureVector) (Label, ClassProbabilities, error)
}

// ClassifierFunc adapts a scoring function to Classifier.
type ClassifierFunc func(v models.FeatureVector) (Label, ClassProbabilities, error)

func (f ClassifierFunc) PredictProba(v models.FeatureVector) (Label, ClassProbabilities, error) {
	return f(v)
}

// Normalize scales p to sum to 1.
func (p ClassProbabilities) Normalize() (ClassProbabilities, error) {
	a, b := p[0], p[1]
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) || a < 0 || b < 0 {
		return p, fmt.Errorf("%w: %v", ErrInvalidProbabilities, [2]float64(p))
	}
	sum := a + b
	if sum == 0 {
		return p, fmt.Errorf("%w: all zero", ErrInvalidProbabilities)
	}
	return ClassProbabilities{a / sum, b / sum}, nil
}

// SymmetricPredictor queries a classifier in both orderings of a pair and
// reconciles the two answers into one verdict that does not depend on
// argument order.
type SymmetricPredictor struct {
	canon    *Canonicalizer
	profiles *ProfileTable
	clf      Classifier
	tiers    TierCutoffs
}

func NewSymmetricPredictor(canon *Canonicalizer, profiles *ProfileTable, clf Classifier, tiers TierCutoffs) *SymmetricPredictor {
	return &SymmetricPredictor{
		canon:    canon,
		profiles: profiles,
		clf:      clf,
		tiers:    tiers,
	}
}

// Canonicalize exposes the predictor's name resolution.
func (p *SymmetricPredictor) Canonicalize(name string) string {
	return p.canon.Canonicalize(name)
}

// Profiles returns the attribute table the predictor reads.
func (p *SymmetricPredictor) Profiles() *ProfileTable {
	return p.profiles
}

// Key resolves two free-form names to their pair key, failing if either
// has no profile.
func (p *SymmetricPredictor) Key(x, y string) (models.MatchupKey, error) {
	cx, err := p.resolve(x)
	if err != nil {
		return models.MatchupKey{}, err
	}
	cy, err := p.resolve(y)
	if err != nil {
		return models.MatchupKey{}, err
	}
	return models.NewMatchupKey(cx, cy), nil
}

func (p *SymmetricPredictor) resolve(raw string) (string, error) {
	c := p.canon.Canonicalize(raw)
	if _, ok := p.profiles.Lookup(c); !ok {
		return "", &CharacterNotFoundError{Input: raw, Canonical: c}
	}
	return c, nil
}

// Predict returns the verdict for x and y. All arithmetic runs in key
// order (A = key.First, B = key.Second), so Predict(x, y) and Predict(y, x)
// return identical results.
func (p *SymmetricPredictor) Predict(x, y string) (*models.PredictionResult, error) {
	key, err := p.Key(x, y)
	if err != nil {
		return nil, err
	}
	a, _ := p.profiles.Lookup(key.First)
	b, _ := p.profiles.Lookup(key.Second)
	schema := p.profiles.Schema()

	comparison, err := Compare(a, b, schema)
	if err != nil {
		return nil, err
	}

	res := &models.PredictionResult{
		Characters: [2]string{key.First, key.Second},
		Comparison: comparison,
	}

	if key.Mirror() {
		res.PredictedWinner = key.First
		res.Probabilities = [2]float64{0.5, 0.5}
		res.Confidence = 0.5
		res.Tier = models.TierEven
		res.DirectionsAgree = true
		return res, nil
	}

	fwdVec, err := BuildVector(a, b, schema)
	if err != nil {
		return nil, err
	}
	revVec, err := BuildVector(b, a, schema)
	if err != nil {
		return nil, err
	}

	var (
		fwdLabel, revLabel Label
		fwd, rev           ClassProbabilities
	)
	var g errgroup.Group
	g.Go(func() error {
		l, probs, err := p.clf.PredictProba(fwdVec)
		if err != nil {
			return fmt.Errorf("forward query %s: %w", key, err)
		}
		if probs, err = probs.Normalize(); err != nil {
			return fmt.Errorf("forward query %s: %w", key, err)
		}
		fwdLabel, fwd = l, probs
		return nil
	})
	g.Go(func() error {
		l, probs, err := p.clf.PredictProba(revVec)
		if err != nil {
			return fmt.Errorf("reverse query %s: %w", key, err)
		}
		if probs, err = probs.Normalize(); err != nil {
			return fmt.Errorf("reverse query %s: %w", key, err)
		}
		revLabel, rev = l, probs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pForward := fwd[FirstWins]
	pReverse := 1 - rev[FirstWins]
	pA := (pForward + pReverse) / 2
	pB := 1 - pA

	res.Probabilities = [2]float64{pA, pB}
	if pA >= 0.5 {
		res.PredictedWinner = key.First
		res.Confidence = pA
	} else {
		res.PredictedWinner = key.Second
		res.Confidence = pB
	}
	res.Tier = p.tiers.Classify(pA)
	res.DirectionsAgree = (fwdLabel == FirstWins) == (revLabel == SecondWins)
	return res, nil
}
