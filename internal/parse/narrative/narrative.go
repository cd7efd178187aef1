// Package narrative parses the free-form report grammar: a printed
// personnel report rendered to text, where fields sit at no fixed
// position and are located by label-anchored patterns. Extraction is
// driven by an ordered, versioned rule set; the engine itself knows
// nothing about any particular field.
package narrative

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/hrmigrate/rekon/internal/parse"
	"github.com/hrmigrate/rekon/pkg/errors"
	"github.com/hrmigrate/rekon/pkg/records"
)

// Stats counts what the parser saw in one file.
type Stats struct {
	Lines   int `json:"lines"`
	Records int `json:"records"`

	// Unmatched counts rules that fired on no line of a record's window.
	// A rising count across runs usually means the report layout drifted.
	Unmatched int `json:"unmatched"`
}

// Parser extracts raw fragments from narrative report files.
type Parser struct {
	eng     *engine
	version string
}

// New creates a narrative parser with the compiled-in rule set.
func New() (*Parser, error) {
	return NewWithRules(DefaultRuleSet())
}

// NewWithRules creates a narrative parser from an explicit rule set.
func NewWithRules(rs RuleSet) (*Parser, error) {
	eng, err := rs.compile()
	if err != nil {
		return nil, err
	}
	return &Parser{eng: eng, version: rs.Version}, nil
}

// RulesVersion returns the version string of the active rule set, for
// run reports.
func (p *Parser) RulesVersion() string { return p.version }

// ParseFile opens and parses one narrative report file.
func (p *Parser) ParseFile(path, orgCode string) ([]records.RawFragment, *Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return p.Parse(f, path, orgCode)
}

// Parse reads a narrative report. A record starts at any line matching
// the boundary pattern and extends to the next boundary or the window
// bound, whichever comes first. Lines outside any record are ignored:
// report headers, page footers and decoration are expected noise, not
// errors.
func (p *Parser) Parse(r io.Reader, file, orgCode string) ([]records.RawFragment, *Stats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.WrapIO("read", file, err)
	}
	lines := strings.Split(string(parse.DecodeLegacy(data)), "\n")

	stats := &Stats{Lines: len(lines)}
	var fragments []records.RawFragment

	for i := 0; i < len(lines); {
		m := p.eng.boundary.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}

		end := i + 1 + p.eng.window
		j := i + 1
		for ; j < len(lines) && j < end; j++ {
			if p.eng.boundary.MatchString(lines[j]) {
				break
			}
		}

		frag, unmatched := p.eng.extract(orgCode, m[1], lines[i:j])
		fragments = append(fragments, frag)
		stats.Records++
		stats.Unmatched += unmatched

		i = j
	}

	return fragments, stats, nil
}

// engine runs a compiled rule set over record windows.
type engine struct {
	boundary *regexp.Regexp
	item     *regexp.Regexp
	rules    []compiledRule
	window   int
	sections map[string]records.ItemDomain
}

// extract applies every rule, in order, to one record's window. A field
// is written at most once: the first rule to match a line wins, and
// later rules or later lines never overwrite it. Repeatable rules are
// the exception — their matches accumulate in line order, joined by a
// single space, for values the report wraps across lines.
func (e *engine) extract(orgCode, employeeNo string, window []string) (records.RawFragment, int) {
	frag := records.RawFragment{
		Key:     records.Key{OrgCode: orgCode, EmployeeNo: strings.ToUpper(employeeNo)},
		Grammar: records.GrammarNarrative,
		Fields:  make(map[string]string),
	}

	unmatched := 0
	for _, rule := range e.rules {
		if _, done := frag.Fields[rule.Field]; done {
			continue
		}
		matched := false
		for _, line := range window {
			if rule.Exclude != "" && strings.Contains(line, rule.Exclude) {
				continue
			}
			m := rule.pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			value := strings.TrimSpace(m[1])
			if value == "" || separatorOnly(value) {
				continue
			}
			matched = true
			if rule.Repeatable {
				if prev := frag.Fields[rule.Field]; prev != "" {
					value = prev + " " + value
				}
				frag.Fields[rule.Field] = value
				continue
			}
			frag.Fields[rule.Field] = value
			break
		}
		if !matched {
			unmatched++
		}
	}

	frag.Items = e.extractItems(window)
	return frag, unmatched
}

// extractItems walks the window once, tracking which allowance or
// deduction section the cursor is inside. Item lines before any section
// header have no domain and are skipped.
func (e *engine) extractItems(window []string) []records.RawItem {
	if e.item == nil {
		return nil
	}

	var items []records.RawItem
	var domain records.ItemDomain
	for _, line := range window {
		if m := e.item.FindStringSubmatch(line); m != nil && domain != "" {
			items = append(items, records.RawItem{
				Domain:      domain,
				Code:        m[1],
				Description: strings.TrimSpace(m[2]),
				Amount:      strings.ReplaceAll(m[3], ",", ""),
				Period:      strings.TrimSpace(m[4]),
			})
			continue
		}
		upper := strings.ToUpper(line)
		for keyword, d := range e.sections {
			if strings.Contains(upper, keyword) {
				domain = d
				break
			}
		}
	}
	return items
}

// separatorOnly reports whether a captured value is placeholder
// punctuation rather than data.
func separatorOnly(s string) bool {
	for _, r := range s {
		switch r {
		case '/', '-', '.', ' ':
		default:
			return false
		}
	}
	return true
}
