// Package classify inspects a directory of legacy export files and derives,
// from file naming alone, which organization each file belongs to and which
// source grammar it is written in. Classification is a pure read of the
// directory listing; organization codes are resolved to canonical
// identifiers later, never here.
package classify

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hrmigrate/rekon/pkg/errors"
	"github.com/hrmigrate/rekon/pkg/records"
)

// Input is one classified source file.
type Input struct {
	OrgCode string          `json:"org_code"`
	Grammar records.Grammar `json:"grammar"`
	Path    string          `json:"path"`

	// Spreadsheet marks a grid file delivered as xlsx rather than
	// delimited text; the grid parser routes it through the sheet reader.
	Spreadsheet bool `json:"spreadsheet,omitempty"`
}

// Result is the outcome of classifying a directory.
type Result struct {
	Inputs   []Input
	Failures []*errors.ClassifyError
}

// Failed reports whether any file could not be classified.
func (r *Result) Failed() bool { return len(r.Failures) > 0 }

// Orgs returns the distinct organization codes observed, sorted.
func (r *Result) Orgs() []string {
	seen := make(map[string]struct{})
	for _, in := range r.Inputs {
		seen[in.OrgCode] = struct{}{}
	}
	orgs := make([]string, 0, len(seen))
	for code := range seen {
		orgs = append(orgs, code)
	}
	sort.Strings(orgs)
	return orgs
}

// ByOrg groups the classified inputs by organization code.
func (r *Result) ByOrg() map[string][]Input {
	grouped := make(map[string][]Input)
	for _, in := range r.Inputs {
		grouped[in.OrgCode] = append(grouped[in.OrgCode], in)
	}
	return grouped
}

// grammarByExt maps file extensions to source grammars. The legacy system
// emits the grid dump as delimited text (or a spreadsheet re-export) and
// the narrative dump as a printed report capture.
var grammarByExt = map[string]records.Grammar{
	".csv":    records.GrammarGrid,
	".txt":    records.GrammarGrid,
	".grid":   records.GrammarGrid,
	".xlsx":   records.GrammarGrid,
	".xls":    records.GrammarGrid,
	".rpt":    records.GrammarNarrative,
	".rep":    records.GrammarNarrative,
	".report": records.GrammarNarrative,
}

// spreadsheetExts are grid files that need the sheet front-end.
var spreadsheetExts = map[string]bool{".xlsx": true, ".xls": true}

// File classifies a single file path.
func File(path string) (Input, error) {
	name := filepath.Base(path)

	ext := strings.ToLower(filepath.Ext(name))
	grammar, ok := grammarByExt[ext]
	if !ok {
		return Input{}, errors.NewClassifyError(path, "unrecognized extension "+ext)
	}

	org := orgCode(name)
	if org == "" {
		return Input{}, errors.NewClassifyError(path, "no organization prefix in filename")
	}

	return Input{
		OrgCode:     org,
		Grammar:     grammar,
		Path:        path,
		Spreadsheet: spreadsheetExts[ext],
	}, nil
}

// Directory classifies every regular file in dir. An unreadable directory
// is the caller's fatal condition; individual unclassifiable files are
// collected, not fatal.
func Directory(dir string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}

	result := &Result{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		input, err := File(filepath.Join(dir, entry.Name()))
		if err != nil {
			if cerr, ok := err.(*errors.ClassifyError); ok {
				result.Failures = append(result.Failures, cerr)
				continue
			}
			return nil, err
		}
		result.Inputs = append(result.Inputs, input)
	}

	// Deterministic processing order regardless of directory iteration.
	sort.Slice(result.Inputs, func(i, j int) bool {
		return result.Inputs[i].Path < result.Inputs[j].Path
	})

	return result, nil
}

// orgCode extracts the organization prefix before the first separator.
// "AB_pay.csv" and "AB-master.rpt" both classify as organization AB.
func orgCode(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.IndexAny(base, "_-"); i > 0 {
		base = base[:i]
	}
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		return ""
	}
	for _, r := range base {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return base
}
