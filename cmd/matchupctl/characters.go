package main

import (
	"os"

	"github.com/spf13/cobra"
)

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List characters in the attribute table",
	Args:  cobra.NoArgs,
	RunE:  runCharacters,
}

func init() {
	charactersCmd.Flags().Bool("json", false, "print the table as JSON")
}

func runCharacters(cmd *cobra.Command, args []string) error {
	table, err := loadProfileTable()
	if err != nil {
		return err
	}
	profiles := table.Profiles()
	schema := table.Schema()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(profiles)
	}

	out := newTable(os.Stdout)
	header := make([]any, 0, len(schema)+1)
	header = append(header, "CHARACTER")
	for _, attr := range schema {
		header = append(header, attr)
	}
	out.Header(header...)
	for _, p := range profiles {
		row := make([]any, 0, len(schema)+1)
		row = append(row, p.Name)
		for _, attr := range schema {
			v, _ := p.Attribute(attr)
			row = append(row, formatFloat(v, 2))
		}
		out.Append(row...)
	}
	out.Render()
	return nil
}
