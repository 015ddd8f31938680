package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Build a character attribute CSV from a stats page",
	Long: "Parses the tables of a frame-data style page into one row per character.\n" +
		"Metric names are \"Section__Column\". Without --attributes every metric that\n" +
		"all characters share is written.",
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.String("file", "", "read a saved HTML page instead of fetching")
	f.Bool("columns", false, "list available metrics and exit")
	f.StringSlice("attributes", nil, "metrics to write, in order")
	f.Duration("timeout", 30*time.Second, "request timeout")
	f.String("user-agent", "", "request User-Agent")
	f.StringP("out", "o", "-", "profile CSV output")
}

func runScrape(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()

	page, err := readPage(cmd, args)
	if err != nil {
		return err
	}

	canon, err := newCanonicalizer(nil)
	if err != nil {
		return err
	}
	stats, err := scrape.ParseStatsTables(bytes.NewReader(page), canon.Canonicalize)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return errors.New("no character tables found")
	}

	if list, _ := f.GetBool("columns"); list {
		return printColumns(stats)
	}

	attrs, _ := f.GetStringSlice("attributes")
	schema := logic.Schema(attrs)
	if len(schema) == 0 {
		schema = stats.CompleteColumns()
	}
	if err := schema.Validate(); err != nil {
		return err
	}

	profiles, skipped := stats.Profiles(schema)
	for _, name := range skipped {
		fmt.Fprintf(os.Stderr, "skipped %s: missing metrics\n", name)
	}

	outPath, _ := f.GetString("out")
	out, err := createOutput(outPath)
	if err != nil {
		return err
	}
	if err := logic.WriteProfilesCSV(out, profiles, schema); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func readPage(cmd *cobra.Command, args []string) ([]byte, error) {
	path, _ := cmd.Flags().GetString("file")
	switch {
	case path != "" && len(args) > 0:
		return nil, errors.New("give either a url or --file")
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	case len(args) == 1:
		timeout, _ := cmd.Flags().GetDuration("timeout")
		ua, _ := cmd.Flags().GetString("user-agent")
		return scrape.Fetcher{UserAgent: ua, Timeout: timeout}.Fetch(args[0])
	}
	return nil, errors.New("a url or --file is required")
}

func printColumns(stats scrape.CharacterStats) error {
	table := newTable(os.Stdout)
	table.Header("METRIC", "CHARACTERS")
	for _, col := range stats.Columns() {
		n := 0
		for _, m := range stats {
			if _, ok := m[col]; ok {
				n++
			}
		}
		table.Append(col, fmt.Sprintf("%d/%d", n, len(stats)))
	}
	table.Render()
	return nil
}
