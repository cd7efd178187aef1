package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hrmigrate/rekon/internal/pipeline"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Produce the data-quality report without persisting",
	Long: `Report runs the full reconciliation in memory and prints only the run
report: parse statistics, field completeness, duplicate NRICs,
unmapped organization codes, merge conflicts and normalization
failures.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("input", "i", "", "directory of export files (required)")
	reportCmd.Flags().String("orgs", "", "organization mapping YAML")
	reportCmd.Flags().String("rules", "", "narrative rule set override YAML")
	reportCmd.Flags().String("format", "yaml", "report format: yaml or json")
	_ = reportCmd.MarkFlagRequired("input")
}

func runReport(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	input, _ := flags.GetString("input")
	orgsPath, _ := flags.GetString("orgs")
	rulesPath, _ := flags.GetString("rules")
	format, _ := flags.GetString("format")

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

	if err := writeReport(res.Report, "-", format); err != nil {
		return err
	}
	return classifyExitError(res)
}
