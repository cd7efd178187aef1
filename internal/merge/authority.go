package merge

import (
	"path/filepath"

	"github.com/hrmigrate/rekon/pkg/records"
)

// FieldAuthority declares which grammar is authoritative for a field when
// both supply non-null, unequal values. Patterns are canonical field
// names, optionally with a trailing wildcard. Higher priority wins; ties
// go to the more specific pattern.
type FieldAuthority struct {
	FieldPattern string          `json:"field_pattern" yaml:"field_pattern"`
	Grammar      records.Grammar `json:"grammar" yaml:"grammar"`
	Priority     int             `json:"priority" yaml:"priority"`
}

// DefaultAuthorities returns the standard precedence table.
//
// The narrative report is regenerated from the live system at print time,
// so its organizational placement fields reflect transfers and promotions
// the grid dump misses. The grid dump is keyed straight off the payroll
// master, so its bank and contact columns are the ones payments actually
// use. Fields absent from the table fall to the first-processed grammar.
func DefaultAuthorities() []FieldAuthority {
	return []FieldAuthority{
		{FieldPattern: records.FieldDepartment, Grammar: records.GrammarNarrative, Priority: 10},
		{FieldPattern: records.FieldSection, Grammar: records.GrammarNarrative, Priority: 10},
		{FieldPattern: records.FieldDesignation, Grammar: records.GrammarNarrative, Priority: 10},
		{FieldPattern: records.FieldGrade, Grammar: records.GrammarNarrative, Priority: 10},

		{FieldPattern: "bank_*", Grammar: records.GrammarGrid, Priority: 10},
		{FieldPattern: records.FieldAddress, Grammar: records.GrammarGrid, Priority: 10},
		{FieldPattern: records.FieldMobile, Grammar: records.GrammarGrid, Priority: 10},
		{FieldPattern: records.FieldPhone, Grammar: records.GrammarGrid, Priority: 10},
		{FieldPattern: records.FieldEmail, Grammar: records.GrammarGrid, Priority: 10},
	}
}

// AuthorityFor returns the winning authority for a field, or nil when no
// pattern matches.
func AuthorityFor(field string, authorities []FieldAuthority) *FieldAuthority {
	var best *FieldAuthority
	var bestPriority, bestLength int

	for i, auth := range authorities {
		if !matchesPattern(field, auth.FieldPattern) {
			continue
		}
		length := len(auth.FieldPattern)
		if best == nil || auth.Priority > bestPriority ||
			(auth.Priority == bestPriority && length > bestLength) {
			best = &authorities[i]
			bestPriority = auth.Priority
			bestLength = length
		}
	}
	return best
}

// matchesPattern checks a field name against a pattern with optional
// trailing wildcard.
func matchesPattern(field, pattern string) bool {
	if field == pattern {
		return true
	}
	if n := len(pattern); n > 0 && pattern[n-1] == '*' {
		prefix := pattern[:n-1]
		return len(field) >= len(prefix) && field[:len(prefix)] == prefix
	}
	matched, err := filepath.Match(pattern, field)
	if err != nil {
		return false
	}
	return matched
}
