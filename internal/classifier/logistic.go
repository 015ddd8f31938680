package classifier

import (
	"fmt"
	"math"
	"sync"

	deep "github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

const (
	logisticIters = 400
	logisticLR    = 0.15
)

// Logistic is a logistic regression over standardized inputs: one sigmoid
// unit with a bias. It scores P(first wins) and the bias makes it
// order-sensitive. Inference is safe for concurrent use.
type Logistic struct {
	dump  *deep.Dump
	mean  []float64
	scale []float64
	pool  sync.Pool
}

// TrainLogistic fits the unit with stochastic gradient descent on binary
// cross-entropy. Zero iters or lr select the defaults.
func TrainLogistic(examples []logic.Example, iters int, lr float64) (*Logistic, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("train logistic: no examples")
	}
	if iters <= 0 {
		iters = logisticIters
	}
	if lr <= 0 {
		lr = logisticLR
	}
	n := len(examples[0].Input)
	for i, ex := range examples {
		if len(ex.Input) != n {
			return nil, fmt.Errorf("train logistic: example %d has %d inputs, want %d", i, len(ex.Input), n)
		}
	}

	mean, scale := fitScaler(examples, n)
	data := make(training.Examples, len(examples))
	for i, ex := range examples {
		y := 0.0
		if ex.Label == logic.FirstWins {
			y = 1
		}
		data[i] = training.Example{Input: standardize(ex.Input, mean, scale), Response: []float64{y}}
	}

	nn := deep.NewNeural(&deep.Config{
		Inputs:     n,
		Layout:     []int{1},
		Activation: deep.ActivationSigmoid,
		Mode:       deep.ModeBinary,
		Weight:     deep.NewNormal(0.1, 0.0),
		Bias:       true,
	})
	trainer := training.NewTrainer(training.NewSGD(lr, 0.1, 0, false), 0)
	trainer.Train(nn, data, nil, iters)

	return NewLogistic(nn.Dump(), mean, scale)
}

// NewLogistic rebuilds a trained model from its network and standardizer.
func NewLogistic(dump *deep.Dump, mean, scale []float64) (*Logistic, error) {
	if dump == nil || dump.Config == nil {
		return nil, fmt.Errorf("logistic: empty dump")
	}
	cfg := dump.Config
	if len(cfg.Layout) != 1 || cfg.Layout[0] != 1 || cfg.Mode != deep.ModeBinary {
		return nil, fmt.Errorf("logistic: dump is not a single sigmoid unit")
	}
	if cfg.Inputs == 0 || len(mean) != cfg.Inputs || len(scale) != cfg.Inputs {
		return nil, fmt.Errorf("logistic: inconsistent dimensions")
	}
	for _, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("logistic: zero scale")
		}
	}
	m := &Logistic{dump: dump, mean: mean, scale: scale}
	m.pool.New = func() interface{} {
		return deep.FromDump(dump)
	}
	return m, nil
}

func (m *Logistic) Dump() *deep.Dump { return m.dump }

func (m *Logistic) Inputs() int {
	if m.dump == nil {
		return 0
	}
	return m.dump.Config.Inputs
}

func (m *Logistic) PredictProba(v models.FeatureVector) (logic.Label, logic.ClassProbabilities, error) {
	if m.dump == nil {
		return 0, logic.ClassProbabilities{}, fmt.Errorf("logistic: untrained model")
	}
	if len(v) != m.Inputs() {
		return 0, logic.ClassProbabilities{}, fmt.Errorf("logistic: got %d inputs, want %d", len(v), m.Inputs())
	}
	nn := m.pool.Get().(*deep.Neural)
	p := nn.Predict(standardize(v, m.mean, m.scale))[0]
	m.pool.Put(nn)

	probs := logic.ClassProbabilities{p, 1 - p}
	if p >= 0.5 {
		return logic.FirstWins, probs, nil
	}
	return logic.SecondWins, probs, nil
}

// fitScaler returns per-attribute mean and standard deviation. Constant
// attributes get scale 1.
func fitScaler(examples []logic.Example, n int) (mean, scale []float64) {
	mean = make([]float64, n)
	scale = make([]float64, n)
	count := float64(len(examples))
	for _, ex := range examples {
		for k, v := range ex.Input {
			mean[k] += v / count
		}
	}
	for _, ex := range examples {
		for k, v := range ex.Input {
			d := v - mean[k]
			scale[k] += d * d / count
		}
	}
	for k := range scale {
		scale[k] = math.Sqrt(scale[k])
		if scale[k] == 0 {
			scale[k] = 1
		}
	}
	return mean, scale
}

func standardize(v, mean, scale []float64) []float64 {
	out := make([]float64, len(v))
	for k, x := range v {
		out[k] = (x - mean[k]) / scale[k]
	}
	return out
}
