// Package classifier provides trainable classifiers for ordered character
// pairs and their on-disk format.
package classifier

import (
	"fmt"
	"runtime"
	"sync"

	deep "github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

// DeepConfig controls network shape and training.
type DeepConfig struct {
	Hidden       []int
	Iterations   int
	BatchSize    int
	LearningRate float64
}

var DefaultDeepConfig = DeepConfig{
	Hidden:       []int{8, 4},
	Iterations:   500,
	BatchSize:    32,
	LearningRate: 0.001,
}

// Deep is a two-class softmax network. Inference is safe for concurrent
// use.
type Deep struct {
	dump   *deep.Dump
	inputs int
	pool   sync.Pool
}

// TrainDeep fits a network to examples. Every example must have the same
// vector length.
func TrainDeep(examples []logic.Example, cfg DeepConfig) (*Deep, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("train deep: no examples")
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultDeepConfig.Iterations
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultDeepConfig.BatchSize
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultDeepConfig.LearningRate
	}
	if len(cfg.Hidden) == 0 {
		cfg.Hidden = DefaultDeepConfig.Hidden
	}

	inputs := len(examples[0].Input)
	data := make(training.Examples, len(examples))
	for i, ex := range examples {
		if len(ex.Input) != inputs {
			return nil, fmt.Errorf("train deep: example %d has %d inputs, want %d", i, len(ex.Input), inputs)
		}
		response := []float64{0, 0}
		response[ex.Label] = 1
		data[i] = training.Example{Input: append([]float64(nil), ex.Input...), Response: response}
	}

	nn := deep.NewNeural(&deep.Config{
		Inputs:     inputs,
		Layout:     append(append([]int(nil), cfg.Hidden...), 2),
		Activation: deep.ActivationSigmoid,
		Mode:       deep.ModeMultiClass,
		Weight:     deep.NewNormal(1.0, 0.0),
		Bias:       true,
	})
	optimizer := training.NewAdam(cfg.LearningRate, 0.9, 0.999, 1e-8)
	trainer := training.NewBatchTrainer(optimizer, 0, cfg.BatchSize, runtime.GOMAXPROCS(0))
	trainer.Train(nn, data, nil, cfg.Iterations)

	return NewDeepFromDump(nn.Dump())
}

// NewDeepFromDump rebuilds a trained network.
func NewDeepFromDump(dump *deep.Dump) (*Deep, error) {
	if dump == nil || dump.Config == nil {
		return nil, fmt.Errorf("deep: empty dump")
	}
	if dump.Config.Mode != deep.ModeMultiClass || len(dump.Config.Layout) == 0 || dump.Config.Layout[len(dump.Config.Layout)-1] != 2 {
		return nil, fmt.Errorf("deep: dump is not a two-class network")
	}
	d := &Deep{dump: dump, inputs: dump.Config.Inputs}
	// Neural objects are not goroutine-safe so use a pool instead
	d.pool.New = func() interface{} {
		return deep.FromDump(dump)
	}
	return d, nil
}

func (d *Deep) Dump() *deep.Dump { return d.dump }

func (d *Deep) Inputs() int { return d.inputs }

func (d *Deep) PredictProba(v models.FeatureVector) (logic.Label, logic.ClassProbabilities, error) {
	if len(v) != d.inputs {
		return 0, logic.ClassProbabilities{}, fmt.Errorf("deep: got %d inputs, want %d", len(v), d.inputs)
	}
	nn := d.pool.Get().(*deep.Neural)
	out := nn.Predict(v)
	d.pool.Put(nn)

	probs := logic.ClassProbabilities{out[0], out[1]}
	if out[1] > out[0] {
		return logic.SecondWins, probs, nil
	}
	return logic.FirstWins, probs, nil
}
