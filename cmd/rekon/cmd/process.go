package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrmigrate/rekon/internal/orgs"
	"github.com/hrmigrate/rekon/internal/pipeline"
	"github.com/hrmigrate/rekon/internal/report"
	"github.com/hrmigrate/rekon/pkg/store"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the full reconciliation and upsert the result",
	Long: `Process classifies every export file in the input directory, parses
both grammars, merges the fragments into canonical employee records,
and upserts them into the destination database in batches. The run
report is written when the run finishes, whether or not every batch
persisted.

The command exits non-zero when any input file fails to classify or
any batch could not be written.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("input", "i", "", "directory of export files (required)")
	processCmd.Flags().String("org", "", "process only this organization code")
	processCmd.Flags().String("orgs", "", "organization mapping YAML")
	processCmd.Flags().String("rules", "", "narrative rule set override YAML")
	processCmd.Flags().String("db", "", "destination Postgres DSN (omit for a dry run)")
	processCmd.Flags().Int("batch-size", pipeline.DefaultBatchSize, "records per upsert batch")
	processCmd.Flags().Int("parallelism", pipeline.DefaultParallelism, "concurrent file parses")
	processCmd.Flags().String("report-out", "", "write the run report to this file (default stderr summary only)")
	processCmd.Flags().String("format", "yaml", "report format: yaml or json")
	_ = processCmd.MarkFlagRequired("input")

	_ = viper.BindPFlag("db", processCmd.Flags().Lookup("db"))
	_ = viper.BindPFlag("orgs", processCmd.Flags().Lookup("orgs"))
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	input, _ := flags.GetString("input")
	orgFilter, _ := flags.GetString("org")
	rulesPath, _ := flags.GetString("rules")
	batchSize, _ := flags.GetInt("batch-size")
	parallelism, _ := flags.GetInt("parallelism")
	reportOut, _ := flags.GetString("report-out")
	format, _ := flags.GetString("format")

	registry, err := loadRegistry(viper.GetString("orgs"))
	if err != nil {
		return err
	}

	var upserter store.Upserter
	if dsn := viper.GetString("db"); dsn != "" {
		pg, err := store.NewPostgres(ctx, dsn)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		upserter = pg
	}

	p, err := pipeline.New(pipeline.Options{
		InputDir:    input,
		OrgFilter:   orgFilter,
		RulesPath:   rulesPath,
		Registry:    registry,
		Store:       upserter,
		Parallelism: parallelism,
		BatchSize:   batchSize,
	})
	if err != nil {
		return err
	}

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if err := writeReport(res.Report, reportOut, format); err != nil {
		return err
	}

	if err := classifyExitError(res); err != nil {
		return err
	}
	if res.PersistFailed > 0 {
		return fmt.Errorf("%d records could not be persisted", res.PersistFailed)
	}
	return nil
}

// classifyExitError turns classification failures in a run result into
// the command's exit error. Every command that runs the pipeline exits
// non-zero when input files were left unclassified, after its normal
// output has been written.
func classifyExitError(res *pipeline.Result) error {
	if res.ClassifyFailures > 0 {
		return fmt.Errorf("%d input files could not be classified", res.ClassifyFailures)
	}
	return nil
}

// loadRegistry loads the organization mapping, or returns an empty
// registry when none is configured.
func loadRegistry(path string) (*orgs.Registry, error) {
	if path == "" {
		return orgs.Empty(), nil
	}
	return orgs.Load(path)
}

// writeReport renders the run report to the given path, or stdout when
// the path is "-".
func writeReport(r *report.Report, path, format string) error {
	if path == "" {
		return nil
	}

	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if format == "json" {
		return r.WriteJSON(w)
	}
	return r.WriteYAML(w)
}
