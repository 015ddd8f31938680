package classifier

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

// separable labels pairs by the sign of the first attribute difference.
func separable(n int) []logic.Example {
	var out []logic.Example
	for i := 0; i < n; i++ {
		d := float64(i%10) - 4.5
		label := logic.SecondWins
		if d > 0 {
			d += 2
			label = logic.FirstWins
		} else {
			d -= 2
		}
		out = append(out, logic.Example{
			Input:  models.FeatureVector{d, float64(i%3) - 1},
			Label:  label,
			Weight: 1,
		})
	}
	return out
}

func TestTrainLogistic_Separable(t *testing.T) {
	examples := separable(200)
	m, err := TrainLogistic(examples, 0, 0)
	if err != nil {
		t.Fatalf("TrainLogistic: %v", err)
	}
	report, err := Evaluate(m, examples)
	if err != nil {
		t.Fatal(err)
	}
	if report.Accuracy < 0.95 {
		t.Errorf("accuracy = %v; want >= 0.95", report.Accuracy)
	}
	if report.Examples != 200 || report.LogLoss <= 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestTrainLogistic_Errors(t *testing.T) {
	if _, err := TrainLogistic(nil, 0, 0); err == nil {
		t.Error("expected error for no examples")
	}
	mixed := []logic.Example{{Input: models.FeatureVector{1}}, {Input: models.FeatureVector{1, 2}}}
	if _, err := TrainLogistic(mixed, 0, 0); err == nil {
		t.Error("expected error for mixed lengths")
	}
}

func TestLogistic_PredictProba(t *testing.T) {
	m, err := TrainLogistic(separable(100), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.Inputs() != 2 {
		t.Errorf("Inputs = %d", m.Inputs())
	}

	label, probs, err := m.PredictProba(models.FeatureVector{6, 0})
	if err != nil {
		t.Fatal(err)
	}
	if label != logic.FirstWins || probs[0] <= 0.5 {
		t.Errorf("label=%v probs=%v; want first wins", label, probs)
	}
	if math.Abs(probs[0]+probs[1]-1) > 1e-12 {
		t.Errorf("probs %v do not sum to 1", probs)
	}
	if label, _, _ := m.PredictProba(models.FeatureVector{-6, 0}); label != logic.SecondWins {
		t.Errorf("label for negative difference = %v", label)
	}
	if _, _, err := m.PredictProba(models.FeatureVector{1, 2, 3}); err == nil {
		t.Error("expected dimension error")
	}
	if _, _, err := (&Logistic{}).PredictProba(models.FeatureVector{1}); err == nil {
		t.Error("expected error from untrained model")
	}
}

func TestNewLogistic_Validates(t *testing.T) {
	m, err := TrainLogistic(separable(20), 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		mean  []float64
		scale []float64
	}{
		{"short mean", []float64{0}, []float64{1, 1}},
		{"short scale", []float64{0, 0}, []float64{1}},
		{"zero scale", []float64{0, 0}, []float64{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLogistic(m.Dump(), tt.mean, tt.scale); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := NewLogistic(nil, []float64{0, 0}, []float64{1, 1}); err == nil {
		t.Error("expected error for nil dump")
	}

	d, err := TrainDeep(separable(20), DeepConfig{Hidden: []int{2}, Iterations: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewLogistic(d.Dump(), []float64{0, 0}, []float64{1, 1}); err == nil {
		t.Error("expected error for a multi-layer network")
	}
}

func TestLogistic_WithSymmetricPredictor(t *testing.T) {
	schema := logic.Schema{"weight", "speed"}
	profiles := []models.CharacterProfile{
		{Name: "Bowser", Attributes: map[string]float64{"weight": 135, "speed": 1.6}},
		{Name: "Fox", Attributes: map[string]float64{"weight": 77, "speed": 2.4}},
		{Name: "Mario", Attributes: map[string]float64{"weight": 98, "speed": 1.76}},
	}
	table, err := logic.NewProfileTable(schema, profiles)
	if err != nil {
		t.Fatal(err)
	}
	// Mostly first-wins labels give the unit a bias toward whoever is listed first.
	var examples []logic.Example
	for i := 0; i < 40; i++ {
		label := logic.FirstWins
		if i%4 == 0 {
			label = logic.SecondWins
		}
		examples = append(examples, logic.Example{
			Input:  models.FeatureVector{float64(i%7) - 3, float64(i%5)/10 - 0.2},
			Label:  label,
			Weight: 1,
		})
	}
	m, err := TrainLogistic(examples, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	p := logic.NewSymmetricPredictor(logic.NewCanonicalizer(logic.DefaultAliases(), table.Names()), table, m, logic.DefaultTierCutoffs)

	xy, err := p.Predict("fox", "bowser")
	if err != nil {
		t.Fatal(err)
	}
	yx, err := p.Predict("bowser", "fox")
	if err != nil {
		t.Fatal(err)
	}
	if xy.Probabilities != yx.Probabilities || xy.PredictedWinner != yx.PredictedWinner {
		t.Errorf("order changed the verdict: %+v vs %+v", xy, yx)
	}
}

func TestPersist_Logistic(t *testing.T) {
	m, err := TrainLogistic(separable(60), 50, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Save(&buf, m); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"kind":"logistic"`) {
		t.Errorf("missing kind tag: %s", buf.String())
	}
	back, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	assertSamePredictions(t, m, back, separable(20))
}

func TestDeep_TrainSaveLoad(t *testing.T) {
	examples := separable(80)
	d, err := TrainDeep(examples, DeepConfig{Hidden: []int{4}, Iterations: 20, BatchSize: 16})
	if err != nil {
		t.Fatalf("TrainDeep: %v", err)
	}
	if d.Inputs() != 2 {
		t.Errorf("Inputs = %d", d.Inputs())
	}

	_, probs, err := d.PredictProba(models.FeatureVector{3, 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(probs[0]+probs[1]-1) > 1e-9 {
		t.Errorf("softmax output %v does not sum to 1", probs)
	}

	var buf bytes.Buffer
	if err := Save(&buf, d); err != nil {
		t.Fatal(err)
	}
	back, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	assertSamePredictions(t, d, back, examples[:10])

	if _, _, err := d.PredictProba(models.FeatureVector{1}); err == nil {
		t.Error("expected dimension error")
	}
}

func TestLoad_Errors(t *testing.T) {
	for _, in := range []string{
		`{`,
		`{"kind":"forest","model":{}}`,
		`{"kind":"logistic","model":{"mean":[0],"scale":[1]}}`,
		`{"kind":"deep","model":{}}`,
	} {
		if _, err := Load(strings.NewReader(in)); err == nil {
			t.Errorf("Load(%s) = nil error", in)
		}
	}
}

func TestEvaluate_Empty(t *testing.T) {
	r, err := Evaluate(&Logistic{}, nil)
	if err != nil || r.Examples != 0 {
		t.Errorf("Evaluate(nil) = %+v, %v", r, err)
	}
}

func assertSamePredictions(t *testing.T, a, b logic.Classifier, examples []logic.Example) {
	t.Helper()
	for i, ex := range examples {
		la, pa, err := a.PredictProba(ex.Input)
		if err != nil {
			t.Fatal(err)
		}
		lb, pb, err := b.PredictProba(ex.Input)
		if err != nil {
			t.Fatal(err)
		}
		if la != lb || pa != pb {
			t.Errorf("example %d: %v %v != %v %v", i, la, pa, lb, pb)
		}
	}
}
