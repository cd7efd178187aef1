// Package records defines the data model shared across the reconciliation
// pipeline: the partial fragments each parser emits, the typed values the
// normalizer produces, and the canonical employee record the merger builds.
//
// Fragments are transient — created per file scan and consumed by the merge
// step within the same run. The canonical Employee is the pipeline's durable
// output and is never mutated after construction; repeat runs build fresh
// records and rely on the store's upsert semantics.
package records

import "fmt"

// Grammar identifies which source format a fragment was parsed from.
type Grammar string

// The two legacy export grammars.
const (
	GrammarGrid      Grammar = "grid"
	GrammarNarrative Grammar = "narrative"
)

// String returns the grammar name.
func (g Grammar) String() string { return string(g) }

// IsValid reports whether g is one of the defined grammars.
func (g Grammar) IsValid() bool {
	return g == GrammarGrid || g == GrammarNarrative
}

// Key is the composite identity of an employee within a run.
type Key struct {
	OrgCode    string `json:"org_code" yaml:"org_code"`
	EmployeeNo string `json:"employee_no" yaml:"employee_no"`
}

// String formats the key as org/employee for logs and reports.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.OrgCode, k.EmployeeNo)
}

// ItemDomain distinguishes recurring compensation line items.
type ItemDomain string

// Line item domains.
const (
	ItemAllowance ItemDomain = "allowance"
	ItemDeduction ItemDomain = "deduction"
)

// RawItem is one allowance or deduction line as extracted, before
// normalization. All fields are raw strings.
type RawItem struct {
	Domain      ItemDomain `json:"domain"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Amount      string     `json:"amount"`
	Period      string     `json:"period"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
}

// RawFragment is the partial record a single parser pass produces for one
// employee in one file. Immutable once produced.
type RawFragment struct {
	Key     Key               `json:"key"`
	Grammar Grammar           `json:"grammar"`
	Fields  map[string]string `json:"fields"`
	Items   []RawItem         `json:"items,omitempty"`
}

// NormalizedItem is a compensation line item with typed values.
type NormalizedItem struct {
	Domain      ItemDomain `json:"domain" yaml:"domain"`
	Code        string     `json:"code" yaml:"code"`
	Description string     `json:"description" yaml:"description"`
	Amount      TypedValue `json:"amount" yaml:"amount"`
	Period      string     `json:"period,omitempty" yaml:"period,omitempty"`
	Start       TypedValue `json:"start,omitempty" yaml:"start,omitempty"`
	End         TypedValue `json:"end,omitempty" yaml:"end,omitempty"`
}

// NormalizedFragment mirrors RawFragment with every field either cleanly
// typed or explicit Null.
type NormalizedFragment struct {
	Key     Key                   `json:"key"`
	Grammar Grammar               `json:"grammar"`
	Fields  map[string]TypedValue `json:"fields"`
	Items   []NormalizedItem      `json:"items,omitempty"`
}

// Field returns the typed value for a field, or Null when the fragment
// never extracted it.
func (f *NormalizedFragment) Field(name string) TypedValue {
	if v, ok := f.Fields[name]; ok {
		return v
	}
	return Null()
}
