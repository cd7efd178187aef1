package cmd

import (
	"encoding/json"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/hrmigrate/rekon/internal/classify"
	"github.com/hrmigrate/rekon/internal/parse/grid"
	"github.com/hrmigrate/rekon/internal/parse/narrative"
	"github.com/hrmigrate/rekon/internal/pipeline"
	"github.com/hrmigrate/rekon/pkg/records"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse and merge without persisting",
	Long: `Parse runs the pipeline up to the merge step and prints the canonical
records, without touching any database. Useful for eyeballing what a
process run would write.

Given a single file argument instead of --input, it parses just that
file and prints the raw fragments — the debug view of what one export
contributes before normalization and merging.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("input", "i", "", "directory of export files")
	parseCmd.Flags().String("orgs", "", "organization mapping YAML")
	parseCmd.Flags().String("rules", "", "narrative rule set override YAML")
	parseCmd.Flags().String("format", "yaml", "output format: yaml or json")
}

func runParse(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	input, _ := flags.GetString("input")
	orgsPath, _ := flags.GetString("orgs")
	rulesPath, _ := flags.GetString("rules")
	format, _ := flags.GetString("format")

	if len(args) == 1 {
		return parseSingleFile(args[0], rulesPath, format)
	}
	if input == "" {
		return cmd.Usage()
	}

	registry, err := loadRegistry(orgsPath)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Options{
		InputDir:  input,
		RulesPath: rulesPath,
		Registry:  registry,
	})
	if err != nil {
		return err
	}

	res, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	if err := render(res.Employees, format); err != nil {
		return err
	}
	return classifyExitError(res)
}

// parseSingleFile dumps one file's raw fragments.
func parseSingleFile(path, rulesPath, format string) error {
	in, err := classify.File(path)
	if err != nil {
		return err
	}

	var fragments []records.RawFragment
	switch {
	case in.Grammar == records.GrammarGrid && in.Spreadsheet:
		fragments, _, err = grid.New().ParseSheet(in.Path, in.OrgCode)
	case in.Grammar == records.GrammarGrid:
		fragments, _, err = grid.New().ParseFile(in.Path, in.OrgCode)
	default:
		rules := narrative.DefaultRuleSet()
		if rulesPath != "" {
			if rules, err = narrative.LoadRuleSet(rulesPath); err != nil {
				return err
			}
		}
		var p *narrative.Parser
		if p, err = narrative.NewWithRules(rules); err != nil {
			return err
		}
		fragments, _, err = p.ParseFile(in.Path, in.OrgCode)
	}
	if err != nil {
		return err
	}
	return render(fragments, format)
}

// render writes a value to stdout in the requested format.
func render(v any, format string) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
