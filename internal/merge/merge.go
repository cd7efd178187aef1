// Package merge builds canonical employee records from the partial
// fragments the two grammars produce. Each field is resolved
// independently: one-sided values are taken as-is, agreements confirm
// each other, and disagreements are decided by a per-field precedence
// table with the losing value preserved as a recorded conflict.
package merge

import (
	"sort"

	"github.com/hrmigrate/rekon/pkg/records"
)

// Merger combines normalized fragments into employees.
type Merger struct {
	authorities []FieldAuthority
}

// New creates a merger with the default precedence table.
func New() *Merger {
	return NewWithAuthorities(DefaultAuthorities())
}

// NewWithAuthorities creates a merger with an explicit precedence table.
func NewWithAuthorities(authorities []FieldAuthority) *Merger {
	return &Merger{authorities: authorities}
}

// Merge resolves all fragments for one employee into a canonical record.
// The result depends only on the fragment contents, never on slice
// order: fragments are collapsed per grammar first (first non-null wins
// within a grammar, in the order given), then the two grammar views are
// reconciled field by field.
func (m *Merger) Merge(key records.Key, fragments []records.NormalizedFragment) records.Employee {
	views := collapse(fragments)

	emp := records.Employee{
		Key:        key,
		Provenance: records.NewProvenance(),
	}

	for _, field := range records.Fields() {
		value, source, conflict := m.resolve(field, views)
		if value.IsNull() {
			continue
		}
		emp.SetField(field, value)
		emp.Provenance.Sources[field] = source
		if conflict != nil {
			emp.Provenance.Conflicts = append(emp.Provenance.Conflicts, *conflict)
		}
	}

	emp.Compensation.Allowances = mergeItems(views, records.ItemAllowance)
	emp.Compensation.Deductions = mergeItems(views, records.ItemDeduction)

	return emp
}

// resolve decides one field's merged value.
func (m *Merger) resolve(field string, views map[records.Grammar]*view) (records.TypedValue, records.Grammar, *records.Conflict) {
	var gridVal, narrVal records.TypedValue
	gridVal, narrVal = records.Null(), records.Null()
	if v, ok := views[records.GrammarGrid]; ok {
		gridVal = v.field(field)
	}
	if v, ok := views[records.GrammarNarrative]; ok {
		narrVal = v.field(field)
	}

	switch {
	case gridVal.IsNull() && narrVal.IsNull():
		return records.Null(), "", nil
	case narrVal.IsNull():
		return gridVal, records.GrammarGrid, nil
	case gridVal.IsNull():
		return narrVal, records.GrammarNarrative, nil
	case gridVal.Equal(narrVal):
		return gridVal, records.GrammarGrid, nil
	}

	// Both non-null and unequal: a genuine conflict. The precedence table
	// decides; fields it does not cover fall to the first-processed
	// grammar, and either way the losing value is kept as evidence.
	kept, keptFrom := gridVal, records.GrammarGrid
	lost, lostFrom := narrVal, records.GrammarNarrative
	reason := "no authority configured, first-processed grammar kept"

	if auth := AuthorityFor(field, m.authorities); auth != nil {
		reason = "authority: " + auth.Grammar.String()
		if auth.Grammar == records.GrammarNarrative {
			kept, keptFrom = narrVal, records.GrammarNarrative
			lost, lostFrom = gridVal, records.GrammarGrid
		}
	}

	return kept, keptFrom, &records.Conflict{
		Field:     field,
		Kept:      kept,
		KeptFrom:  keptFrom,
		Discarded: lost,
		LostFrom:  lostFrom,
		Reason:    reason,
	}
}

// view is one grammar's collapsed contribution to an employee.
type view struct {
	fields map[string]records.TypedValue
	items  []records.NormalizedItem
}

func (v *view) field(name string) records.TypedValue {
	if val, ok := v.fields[name]; ok {
		return val
	}
	return records.Null()
}

// collapse folds fragments into at most one view per grammar. Within a
// grammar the first non-null value for a field wins; items concatenate.
func collapse(fragments []records.NormalizedFragment) map[records.Grammar]*view {
	views := make(map[records.Grammar]*view, 2)
	for _, frag := range fragments {
		v, ok := views[frag.Grammar]
		if !ok {
			v = &view{fields: make(map[string]records.TypedValue)}
			views[frag.Grammar] = v
		}
		for name, val := range frag.Fields {
			if val.IsNull() {
				continue
			}
			if _, exists := v.fields[name]; exists {
				continue
			}
			v.fields[name] = val
		}
		v.items = append(v.items, frag.Items...)
	}
	return views
}

// mergeItems unions one domain's line items across grammars, keyed by
// item code. Within a grammar the first item for a code wins, matching
// the first-wins rule collapse applies to scalar fields. Across grammars
// the grid entry wins a code collision because it carries the effective
// date range the narrative report omits. Output is sorted by code so
// repeat runs are byte-identical.
func mergeItems(views map[records.Grammar]*view, domain records.ItemDomain) []records.PayItem {
	byCode := make(map[string]records.PayItem)
	for _, g := range []records.Grammar{records.GrammarNarrative, records.GrammarGrid} {
		v, ok := views[g]
		if !ok {
			continue
		}
		seen := make(map[string]bool)
		for _, item := range v.items {
			if item.Domain != domain || item.Code == "" || seen[item.Code] {
				continue
			}
			seen[item.Code] = true
			byCode[item.Code] = toPayItem(item)
		}
	}

	if len(byCode) == 0 {
		return nil
	}
	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	items := make([]records.PayItem, 0, len(codes))
	for _, code := range codes {
		items = append(items, byCode[code])
	}
	return items
}

// toPayItem converts a normalized line item to its canonical form. The
// amount is stored as a non-negative magnitude: the grid dump writes
// deductions with a minus sign and the narrative report without one, and
// the domain already says which way the money moves.
func toPayItem(item records.NormalizedItem) records.PayItem {
	pay := records.PayItem{
		Code:        item.Code,
		Description: item.Description,
		Period:      item.Period,
	}
	if item.Amount.Kind == records.KindMoney {
		pay.Amount = item.Amount.Money.Magnitude
	}
	if item.Start.Kind == records.KindDate {
		pay.Start = item.Start.Date
	}
	if item.End.Kind == records.KindDate {
		pay.End = item.End.Date
	}
	return pay
}
