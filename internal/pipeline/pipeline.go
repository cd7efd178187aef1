// Package pipeline wires the reconciliation stages end to end: classify,
// parse, normalize, merge, resolve, report, persist. Files parse in
// parallel; everything after the parse barrier is sequential and
// deterministic.
package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hrmigrate/rekon/internal/classify"
	"github.com/hrmigrate/rekon/internal/merge"
	"github.com/hrmigrate/rekon/internal/normalize"
	"github.com/hrmigrate/rekon/internal/orgs"
	"github.com/hrmigrate/rekon/internal/parse/grid"
	"github.com/hrmigrate/rekon/internal/parse/narrative"
	"github.com/hrmigrate/rekon/internal/report"
	"github.com/hrmigrate/rekon/pkg/errors"
	"github.com/hrmigrate/rekon/pkg/logging"
	"github.com/hrmigrate/rekon/pkg/records"
	"github.com/hrmigrate/rekon/pkg/store"
)

// Defaults for tunables left unset in Options.
const (
	DefaultParallelism = 4
	DefaultBatchSize   = 100
	defaultMaxRetry    = 3
)

// Options configures one pipeline run.
type Options struct {
	// InputDir is the directory of export files to process.
	InputDir string

	// RulesPath optionally overrides the compiled-in narrative rule set.
	RulesPath string

	// OrgFilter restricts the run to one organization code. Empty means
	// every organization found in the input directory.
	OrgFilter string

	// Registry resolves organization codes. Nil means no mapping is
	// configured and every code reports as unmapped.
	Registry *orgs.Registry

	// Store receives the merged records in batches. Nil disables
	// persistence (parse-and-report runs).
	Store store.Upserter

	// Parallelism bounds concurrent file parses.
	Parallelism int

	// BatchSize is the number of records per upsert batch.
	BatchSize int
}

// Result is everything one run produced.
type Result struct {
	Report    *report.Report
	Employees []records.Employee

	// ClassifyFailures is the number of files that could not be
	// classified. The CLI exits non-zero when it is positive.
	ClassifyFailures int

	// PersistFailed counts records whose batch could not be written
	// after retries.
	PersistFailed int
}

// Pipeline is a configured, reusable run driver.
type Pipeline struct {
	opts      Options
	grid      *grid.Parser
	narrative *narrative.Parser
	merger    *merge.Merger
	registry  *orgs.Registry
}

// New builds a pipeline, loading the narrative rule override when one is
// configured.
func New(opts Options) (*Pipeline, error) {
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultParallelism
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	rules := narrative.DefaultRuleSet()
	if opts.RulesPath != "" {
		loaded, err := narrative.LoadRuleSet(opts.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	narr, err := narrative.NewWithRules(rules)
	if err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = orgs.Empty()
	}

	return &Pipeline{
		opts:      opts,
		grid:      grid.New(),
		narrative: narr,
		merger:    merge.New(),
		registry:  registry,
	}, nil
}

// parsed is one file's contribution, produced behind the parse barrier.
type parsed struct {
	stat      report.FileStat
	fragments []records.NormalizedFragment
	failures  []normalize.Failure
}

// Run executes the full pipeline. Per-file and per-record problems are
// findings in the report; the returned error is reserved for conditions
// that invalidate the whole run — an unreadable input directory, nothing
// classified, a broken rule file, or cancellation.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	builder := report.NewBuilder()
	ctx = logging.WithRunID(ctx, builder.RunID())
	log := logging.FromContext(ctx)

	classified, err := classify.Directory(p.opts.InputDir)
	if err != nil {
		return nil, err
	}
	if filter := strings.ToUpper(p.opts.OrgFilter); filter != "" {
		kept := make([]classify.Input, 0, len(classified.Inputs))
		for _, in := range classified.Inputs {
			if in.OrgCode == filter {
				kept = append(kept, in)
			}
		}
		classified.Inputs = kept
	}
	if len(classified.Inputs) == 0 {
		return nil, errors.ErrNoFiles
	}
	for _, cf := range classified.Failures {
		log.Warn().Str("file", cf.Path).Str("reason", cf.Message).Msg("file not classified")
		builder.AddFile(report.FileStat{Path: cf.Path, Error: cf.Message})
	}

	log.Info().
		Int("files", len(classified.Inputs)).
		Strs("orgs", classified.Orgs()).
		Msg("starting run")

	results, err := p.parseAll(ctx, classified.Inputs)
	if err != nil {
		return nil, err
	}

	var fragments []records.NormalizedFragment
	for _, pr := range results {
		builder.AddFile(pr.stat)
		builder.AddValueFailures(pr.failures)
		fragments = append(fragments, pr.fragments...)
	}

	employees := p.mergeAll(fragments, builder)
	builder.AddEmployees(employees)

	res := &Result{
		Employees:        employees,
		ClassifyFailures: len(classified.Failures),
	}

	if p.opts.Store != nil {
		res.PersistFailed = p.persist(ctx, log, employees)
	}

	res.Report = builder.Build()
	log.Info().
		Int("employees", len(employees)).
		Int("persist_failed", res.PersistFailed).
		Msg("run complete")
	return res, ctx.Err()
}

// parseAll parses every classified file with bounded parallelism. Results
// land in a fixed slot per input, so output order is input order no
// matter which goroutine finishes first.
func (p *Pipeline) parseAll(ctx context.Context, inputs []classify.Input) ([]parsed, error) {
	results := make([]parsed, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Parallelism)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.parseOne(input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// parseOne parses a single file and normalizes its fragments. A file
// that fails to parse contributes an errored FileStat and no fragments.
func (p *Pipeline) parseOne(input classify.Input) parsed {
	var (
		raws []records.RawFragment
		stat = report.FileStat{Path: input.Path, Grammar: input.Grammar}
	)

	switch {
	case input.Grammar == records.GrammarGrid && input.Spreadsheet:
		frags, stats, err := p.grid.ParseSheet(input.Path, input.OrgCode)
		if err != nil {
			stat.Error = err.Error()
			return parsed{stat: stat}
		}
		raws = frags
		stat.Lines, stat.Records = stats.Lines, stats.Records
		stat.Malformed, stat.Dropped = stats.Malformed, stats.Dropped
	case input.Grammar == records.GrammarGrid:
		frags, stats, err := p.grid.ParseFile(input.Path, input.OrgCode)
		if err != nil {
			stat.Error = err.Error()
			return parsed{stat: stat}
		}
		raws = frags
		stat.Lines, stat.Records = stats.Lines, stats.Records
		stat.Malformed, stat.Dropped = stats.Malformed, stats.Dropped
	default:
		frags, stats, err := p.narrative.ParseFile(input.Path, input.OrgCode)
		if err != nil {
			stat.Error = err.Error()
			return parsed{stat: stat}
		}
		raws = frags
		stat.Lines, stat.Records = stats.Lines, stats.Records
	}

	out := parsed{stat: stat}
	for _, raw := range raws {
		frag, failures := normalize.Fragment(raw)
		out.fragments = append(out.fragments, frag)
		out.failures = append(out.failures, failures...)
	}
	return out
}

// mergeAll groups fragments by key, merges each group, and resolves the
// organization code. Keys are processed in sorted order.
func (p *Pipeline) mergeAll(fragments []records.NormalizedFragment, builder *report.Builder) []records.Employee {
	byKey := make(map[records.Key][]records.NormalizedFragment)
	for _, frag := range fragments {
		byKey[frag.Key] = append(byKey[frag.Key], frag)
	}

	keys := make([]records.Key, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	employees := make([]records.Employee, 0, len(keys))
	for _, key := range keys {
		emp := p.merger.Merge(key, byKey[key])
		org, ok := p.registry.Resolve(key.OrgCode)
		if ok {
			emp.OrgID = org.CanonicalID
		} else {
			builder.AddUnmappedOrg(org.Code)
		}
		employees = append(employees, emp)
	}
	return employees
}

// persist writes employees in batches, retrying each batch with
// exponential backoff before giving up on it. A failed batch is logged
// and skipped; the run carries on with the rest. Returns the number of
// records that were not written.
func (p *Pipeline) persist(ctx context.Context, log *zerolog.Logger, employees []records.Employee) int {
	failed := 0
	size := p.opts.BatchSize

	for start, batchNo := 0, 1; start < len(employees); start, batchNo = start+size, batchNo+1 {
		end := start + size
		if end > len(employees) {
			end = len(employees)
		}
		batch := employees[start:end]

		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultMaxRetry),
			ctx,
		)
		attempt := 0
		err := backoff.Retry(func() error {
			attempt++
			_, err := p.opts.Store.Upsert(ctx, batch)
			if err != nil && !errors.IsStoreUnavailable(err) && ctx.Err() == nil {
				// Non-transient failures are not worth retrying.
				return backoff.Permanent(err)
			}
			return err
		}, policy)

		if err != nil {
			failed += len(batch)
			keys := make([]string, len(batch))
			for i := range batch {
				keys[i] = batch[i].Key.String()
			}
			perr := errors.NewPersistError(batchNo, keys, err)
			log.Error().Err(perr).Int("batch", batchNo).Int("attempts", attempt).Msg("batch not persisted")
			continue
		}
		log.Debug().Int("batch", batchNo).Int("records", len(batch)).Msg("batch persisted")
	}
	return failed
}
