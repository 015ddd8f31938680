package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/smashlab/matchup-api/internal/logic"
)

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "matchupctl",
	Short: "Character matchup tables and predictions",
	Long: "Aggregate tournament sets into a canonical matchup table, train a classifier\n" +
		"on character attribute differences and query it symmetrically.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal: readConfig refers to rootCmd.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := readConfig(); err != nil {
			return err
		}
		if viper.GetBool("verbose") {
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			logger = l
		}
		return nil
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default ./matchupctl.yaml)")
	pf.String("aliases", "", "alias table JSON (default built-in)")
	pf.String("profiles", "", "character attribute CSV")
	pf.String("model", "model.json", "classifier file")
	pf.StringSlice("schema", logic.DefaultSchema, "attribute columns, in order")
	pf.Float64("tier-advantage", logic.DefaultTierCutoffs.Advantage, "side-1 rate at or above which a matchup is advantaged")
	pf.Float64("tier-disadvantage", logic.DefaultTierCutoffs.Disadvantage, "side-1 rate at or below which a matchup is disadvantaged")
	pf.BoolP("verbose", "v", false, "log progress")

	for _, name := range []string{"aliases", "profiles", "model", "schema", "tier-advantage", "tier-disadvantage", "verbose"} {
		viper.BindPFlag(name, pf.Lookup(name))
	}

	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(scrapeCmd)
}

// readConfig loads matchupctl.yaml from the working directory (or --config)
// and MATCHUP_* environment variables. Flags set on the command line win.
func readConfig() error {
	viper.SetEnvPrefix("matchup")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if path, _ := rootCmd.PersistentFlags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("matchupctl")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func schemaFromConfig() (logic.Schema, error) {
	schema := logic.Schema(viper.GetStringSlice("schema"))
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

func tiersFromConfig() (logic.TierCutoffs, error) {
	tiers := logic.TierCutoffs{
		Advantage:    viper.GetFloat64("tier-advantage"),
		Disadvantage: viper.GetFloat64("tier-disadvantage"),
	}
	return tiers, tiers.Validate()
}

// loadProfileTable reads --profiles against --schema.
func loadProfileTable() (*logic.ProfileTable, error) {
	path := viper.GetString("profiles")
	if path == "" {
		return nil, errors.New("--profiles is required")
	}
	schema, err := schemaFromConfig()
	if err != nil {
		return nil, err
	}
	profiles, err := logic.LoadProfilesFile(path, schema)
	if err != nil {
		return nil, err
	}
	return logic.NewProfileTable(schema, profiles)
}

// newCanonicalizer builds a canonicalizer over the alias table and, when
// given, the profile table's names.
func newCanonicalizer(table *logic.ProfileTable) (*logic.Canonicalizer, error) {
	aliases, err := logic.LoadAliasFile(viper.GetString("aliases"))
	if err != nil {
		return nil, err
	}
	var names []string
	if table != nil {
		names = table.Names()
	}
	return logic.NewCanonicalizer(aliases, names), nil
}
