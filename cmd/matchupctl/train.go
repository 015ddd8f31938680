package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/smashlab/matchup-api/internal/classifier"
	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a classifier on the matchup table",
	Long: "Builds one example per matchup from attribute differences, fits a classifier\n" +
		"and writes it to --model. Every --holdout-th example is kept back for evaluation.",
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.String("matchups", "", "matchup CSV produced by aggregate")
	f.String("kind", "deep", "classifier kind: deep or logistic")
	f.Bool("augment", true, "add the mirrored example of every matchup")
	f.Int("holdout", 5, "hold out every n-th example (0 to train on everything)")
	f.Int("iterations", 0, "training iterations (0 for the kind's default)")
	f.Float64("learning-rate", 0, "learning rate (0 for the kind's default)")
	f.IntSlice("hidden", classifier.DefaultDeepConfig.Hidden, "hidden layer sizes for deep")
}

func runTrain(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	matchupsPath, _ := f.GetString("matchups")
	if matchupsPath == "" {
		return errors.New("--matchups is required")
	}
	modelPath := viper.GetString("model")

	table, err := loadProfileTable()
	if err != nil {
		return err
	}
	records, err := readMatchupsFile(matchupsPath)
	if err != nil {
		return err
	}

	augment, _ := f.GetBool("augment")
	examples, dsStats, err := logic.BuildTrainingSet(records, table, augment)
	if err != nil {
		return err
	}
	if dsStats.MissingProfiles > 0 {
		fmt.Fprintf(os.Stderr, "%d matchups skipped: character without a profile\n", dsStats.MissingProfiles)
	}

	every, _ := f.GetInt("holdout")
	trainSet, holdout := logic.SplitExamples(examples, every)
	if len(trainSet) == 0 {
		return errors.New("no training examples")
	}

	kind, _ := f.GetString("kind")
	iters, _ := f.GetInt("iterations")
	lr, _ := f.GetFloat64("learning-rate")
	logger.Info("Training", zap.String("kind", kind), zap.Int("examples", len(trainSet)), zap.Int("holdout", len(holdout)))

	var clf logic.Classifier
	switch kind {
	case "deep":
		cfg := classifier.DefaultDeepConfig
		cfg.Hidden, _ = f.GetIntSlice("hidden")
		if iters > 0 {
			cfg.Iterations = iters
		}
		if lr > 0 {
			cfg.LearningRate = lr
		}
		clf, err = classifier.TrainDeep(trainSet, cfg)
	case "logistic":
		clf, err = classifier.TrainLogistic(trainSet, iters, lr)
	default:
		return fmt.Errorf("unknown classifier kind %q", kind)
	}
	if err != nil {
		return err
	}

	if err := classifier.SaveFile(modelPath, clf); err != nil {
		return err
	}

	trainReport, err := classifier.Evaluate(clf, trainSet)
	if err != nil {
		return err
	}
	holdReport, err := classifier.Evaluate(clf, holdout)
	if err != nil {
		return err
	}

	out := newTable(os.Stdout)
	out.Header("SET", "EXAMPLES", "ACCURACY", "LOG LOSS")
	out.Append("train", fmt.Sprintf("%d", trainReport.Examples), formatPct(trainReport.Accuracy), formatFloat(trainReport.LogLoss, 4))
	if holdReport.Examples > 0 {
		out.Append("holdout", fmt.Sprintf("%d", holdReport.Examples), formatPct(holdReport.Accuracy), formatFloat(holdReport.LogLoss, 4))
	}
	out.Render()
	fmt.Fprintf(os.Stdout, "\nwrote %s model to %s (%d matchups)\n", kind, modelPath, dsStats.Matchups-dsStats.MissingProfiles)
	return nil
}

func readMatchupsFile(path string) ([]models.MatchupRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return logic.ReadMatchupsCSV(f)
}
