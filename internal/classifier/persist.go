package classifier

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	deep "github.com/patrikeh/go-deep"

	"github.com/smashlab/matchup-api/internal/logic"
)

const (
	KindDeep     = "deep"
	KindLogistic = "logistic"
)

// logisticState is the persisted form of a Logistic.
type logisticState struct {
	Network *deep.Dump `json:"network"`
	Mean    []float64  `json:"mean"`
	Scale   []float64  `json:"scale"`
}

type envelope struct {
	Kind  string          `json:"kind"`
	Model json.RawMessage `json:"model"`
}

// Save writes c with a kind tag so Load can restore the right type.
func Save(w io.Writer, c logic.Classifier) error {
	var (
		env envelope
		err error
	)
	switch m := c.(type) {
	case *Deep:
		env.Kind = KindDeep
		env.Model, err = json.Marshal(m.Dump())
	case *Logistic:
		env.Kind = KindLogistic
		env.Model, err = json.Marshal(logisticState{Network: m.Dump(), Mean: m.mean, Scale: m.scale})
	default:
		return fmt.Errorf("save: unsupported classifier %T", c)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", env.Kind, err)
	}
	return json.NewEncoder(w).Encode(env)
}

func Load(r io.Reader) (logic.Classifier, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	switch env.Kind {
	case KindDeep:
		dump := new(deep.Dump)
		if err := json.Unmarshal(env.Model, dump); err != nil {
			return nil, fmt.Errorf("load deep: %w", err)
		}
		return NewDeepFromDump(dump)
	case KindLogistic:
		var st logisticState
		if err := json.Unmarshal(env.Model, &st); err != nil {
			return nil, fmt.Errorf("load logistic: %w", err)
		}
		return NewLogistic(st.Network, st.Mean, st.Scale)
	default:
		return nil, fmt.Errorf("load model: unknown kind %q", env.Kind)
	}
}

func SaveFile(path string, c logic.Classifier) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadFile(path string) (logic.Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
