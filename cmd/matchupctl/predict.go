package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smashlab/matchup-api/internal/classifier"
	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

var predictCmd = &cobra.Command{
	Use:   "predict <character> <character>",
	Short: "Predict the winner of a matchup",
	Long:  "Scores both orderings of the pair and reports one verdict that does not depend on argument order.",
	Args:  cobra.ExactArgs(2),
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().Bool("json", false, "print the result as JSON")
}

func runPredict(cmd *cobra.Command, args []string) error {
	predictor, err := loadPredictor()
	if err != nil {
		return err
	}
	result, err := predictor.Predict(args[0], args[1])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(result)
	}
	printPrediction(result)
	return nil
}

// loadPredictor assembles a predictor from --profiles, --aliases, --model
// and the tier flags.
func loadPredictor() (*logic.SymmetricPredictor, error) {
	table, err := loadProfileTable()
	if err != nil {
		return nil, err
	}
	canon, err := newCanonicalizer(table)
	if err != nil {
		return nil, err
	}
	tiers, err := tiersFromConfig()
	if err != nil {
		return nil, err
	}
	clf, err := classifier.LoadFile(viper.GetString("model"))
	if err != nil {
		return nil, err
	}
	return logic.NewSymmetricPredictor(canon, table, clf, tiers), nil
}

func printPrediction(r *models.PredictionResult) {
	first, second := r.Characters[0], r.Characters[1]

	table := newTable(os.Stdout)
	table.Header("ATTRIBUTE", first, second, "DIFF")
	for _, c := range r.Comparison {
		table.Append(c.Attribute, formatFloat(c.First, 2), formatFloat(c.Second, 2), formatFloat(c.Difference, 2))
	}
	table.Render()

	fmt.Fprintf(os.Stdout, "\n%s %s / %s %s  (%s)\n",
		first, formatPct(r.Probabilities[0]), second, formatPct(r.Probabilities[1]), r.Tier)
	if r.Confidence == 0.5 {
		fmt.Fprintf(os.Stdout, "Even matchup, %s listed as winner\n", r.PredictedWinner)
	} else {
		fmt.Fprintf(os.Stdout, "Predicted winner: %s (%s)\n", r.PredictedWinner, formatPct(r.Confidence))
	}
	if !r.DirectionsAgree {
		fmt.Fprintln(os.Stdout, "Note: the two orderings disagreed before averaging")
	}
}
