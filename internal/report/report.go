// Package report produces the run report: the data-quality findings a
// reconciliation pass surfaces alongside the canonical records. The
// report never blocks the pipeline — it is where retained-but-suspect
// data goes to be seen.
package report

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/hrmigrate/rekon/internal/normalize"
	"github.com/hrmigrate/rekon/pkg/records"
)

// FileStat summarizes one input file's parse.
type FileStat struct {
	Path      string          `json:"path" yaml:"path"`
	Grammar   records.Grammar `json:"grammar" yaml:"grammar"`
	Lines     int             `json:"lines" yaml:"lines"`
	Records   int             `json:"records" yaml:"records"`
	Malformed int             `json:"malformed,omitempty" yaml:"malformed,omitempty"`
	Dropped   int             `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// FieldCompleteness is the populated fraction for one canonical field
// across all merged records.
type FieldCompleteness struct {
	Field     string  `json:"field" yaml:"field"`
	Populated int     `json:"populated" yaml:"populated"`
	Total     int     `json:"total" yaml:"total"`
	Fraction  float64 `json:"fraction" yaml:"fraction"`
}

// DuplicateNRIC is one national ID appearing under more than one
// employee key — usually a rehire keyed twice, occasionally a typo.
type DuplicateNRIC struct {
	NRIC string   `json:"nric" yaml:"nric"`
	Keys []string `json:"keys" yaml:"keys"`
}

// UnmappedOrg is an organization code with no registry entry.
type UnmappedOrg struct {
	Code    string `json:"code" yaml:"code"`
	Records int    `json:"records" yaml:"records"`
}

// ConflictEntry ties a resolved merge conflict to its employee.
type ConflictEntry struct {
	Key      string           `json:"key" yaml:"key"`
	Conflict records.Conflict `json:"conflict" yaml:"conflict"`
}

// ValueFailure is one raw value that failed normalization and was
// demoted to null.
type ValueFailure struct {
	Key   string `json:"key" yaml:"key"`
	Field string `json:"field" yaml:"field"`
	Raw   string `json:"raw" yaml:"raw"`
	Kind  string `json:"kind" yaml:"kind"`
}

// Report is the full run report.
type Report struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Files     []FileStat `json:"files" yaml:"files"`
	Employees int        `json:"employees" yaml:"employees"`

	Completeness  []FieldCompleteness `json:"completeness" yaml:"completeness"`
	Duplicates    []DuplicateNRIC     `json:"duplicate_nrics,omitempty" yaml:"duplicate_nrics,omitempty"`
	UnmappedOrgs  []UnmappedOrg       `json:"unmapped_orgs,omitempty" yaml:"unmapped_orgs,omitempty"`
	Conflicts     []ConflictEntry     `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	ValueFailures []ValueFailure      `json:"value_failures,omitempty" yaml:"value_failures,omitempty"`
}

// WriteYAML renders the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Builder accumulates findings during a run and assembles the report.
type Builder struct {
	runID     string
	files     []FileStat
	employees []records.Employee
	unmapped  map[string]int
	failures  []ValueFailure
}

// NewBuilder starts a report with a fresh run ID.
func NewBuilder() *Builder {
	return &Builder{
		runID:    uuid.NewString(),
		unmapped: make(map[string]int),
	}
}

// RunID returns the report's run identifier, used to tag run-scoped logs.
func (b *Builder) RunID() string { return b.runID }

// AddFile records one input file's parse outcome.
func (b *Builder) AddFile(stat FileStat) {
	b.files = append(b.files, stat)
}

// AddEmployees records the merged output. Completeness, duplicate and
// conflict findings are all derived from it at Build time.
func (b *Builder) AddEmployees(emps []records.Employee) {
	b.employees = append(b.employees, emps...)
}

// AddUnmappedOrg counts a record under an unregistered organization code.
func (b *Builder) AddUnmappedOrg(code string) {
	b.unmapped[code]++
}

// AddValueFailures records normalization failures for one fragment.
func (b *Builder) AddValueFailures(failures []normalize.Failure) {
	for _, f := range failures {
		b.failures = append(b.failures, ValueFailure{
			Key:   f.Key.String(),
			Field: f.Field,
			Raw:   f.Raw,
			Kind:  f.Kind.String(),
		})
	}
}

// Build assembles the report. Every list is sorted so the same inputs
// produce an identical report regardless of processing order.
func (b *Builder) Build() *Report {
	r := &Report{
		RunID:       b.runID,
		GeneratedAt: time.Now().UTC(),
		Files:       append([]FileStat(nil), b.files...),
		Employees:   len(b.employees),
	}

	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })

	r.Completeness = b.completeness()
	r.Duplicates = b.duplicateNRICs()
	r.UnmappedOrgs = b.unmappedOrgs()
	r.Conflicts = b.conflicts()

	r.ValueFailures = append([]ValueFailure(nil), b.failures...)
	sort.Slice(r.ValueFailures, func(i, j int) bool {
		a, z := r.ValueFailures[i], r.ValueFailures[j]
		if a.Key != z.Key {
			return a.Key < z.Key
		}
		return a.Field < z.Field
	})

	return r
}

func (b *Builder) completeness() []FieldCompleteness {
	total := len(b.employees)
	fields := records.Fields()
	out := make([]FieldCompleteness, 0, len(fields))
	for _, field := range fields {
		populated := 0
		for i := range b.employees {
			if !b.employees[i].Field(field).IsNull() {
				populated++
			}
		}
		fc := FieldCompleteness{Field: field, Populated: populated, Total: total}
		if total > 0 {
			fc.Fraction = float64(populated) / float64(total)
		}
		out = append(out, fc)
	}
	return out
}

// duplicateNRICs reports each NRIC held by more than one key exactly
// once, with the keys sorted, so the finding is stable across runs.
func (b *Builder) duplicateNRICs() []DuplicateNRIC {
	byNRIC := make(map[string][]string)
	for i := range b.employees {
		nric := b.employees[i].Personal.NRIC
		if nric.IsNull() {
			continue
		}
		byNRIC[nric.Code] = append(byNRIC[nric.Code], b.employees[i].Key.String())
	}

	var out []DuplicateNRIC
	for nric, keys := range byNRIC {
		if len(keys) < 2 {
			continue
		}
		sort.Strings(keys)
		out = append(out, DuplicateNRIC{NRIC: nric, Keys: keys})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NRIC < out[j].NRIC })
	return out
}

func (b *Builder) unmappedOrgs() []UnmappedOrg {
	var out []UnmappedOrg
	for code, n := range b.unmapped {
		out = append(out, UnmappedOrg{Code: code, Records: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (b *Builder) conflicts() []ConflictEntry {
	var out []ConflictEntry
	for i := range b.employees {
		key := b.employees[i].Key.String()
		for _, c := range b.employees[i].Provenance.Conflicts {
			out = append(out, ConflictEntry{Key: key, Conflict: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Conflict.Field < out[j].Conflict.Field
	})
	return out
}
