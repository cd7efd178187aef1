// Package normalize converts raw extracted strings into typed values.
// Every conversion is a pure function: input either parses cleanly or
// becomes an explicit Null. Nothing here panics and nothing partially
// parses — a half-understood value corrupts downstream joins, so the
// rejection rules are intentionally conservative.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hrmigrate/rekon/pkg/records"
)

// Failure records one field that carried a real (non-placeholder) raw
// value but could not be normalized. Attributable to a specific
// field+record for audit; never raised as an error.
type Failure struct {
	Key   records.Key
	Field string
	Raw   string
	Kind  records.Kind
}

// placeholders are tokens the legacy exports emit for "no value":
// bare separators, dashes, and the usual not-applicable spellings.
var placeholders = map[string]struct{}{
	"":     {},
	"-":    {},
	"--":   {},
	"/":    {},
	"//":   {},
	"/ /":  {},
	"N/A":  {},
	"NA":   {},
	"NIL":  {},
	"NONE": {},
}

// separatorOnly matches strings made of slashes, dashes, dots and spaces —
// a date field printed with no digits filled in.
var separatorOnly = regexp.MustCompile(`^[\s/.\-]+$`)

// datePattern is day/month/year with slash separators and a mandatory
// 4-digit year. Two-digit years are ambiguous in these exports (birth
// dates and joining dates straddle 2000) and are rejected.
var datePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// digitsOnly matches strings with no letters at all.
var digitsOnly = regexp.MustCompile(`^[\d\s.,/\-]+$`)

// spaceRun collapses interior whitespace runs.
var spaceRun = regexp.MustCompile(`\s+`)

// IsPlaceholder reports whether the raw string denotes an absent value.
func IsPlaceholder(raw string) bool {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := placeholders[trimmed]; ok {
		return true
	}
	return separatorOnly.MatchString(raw)
}

// Value normalizes one raw string according to the field kind.
func Value(raw string, kind records.Kind) records.TypedValue {
	if IsPlaceholder(raw) {
		return records.Null()
	}

	switch kind {
	case records.KindDate:
		return date(raw)
	case records.KindMoney:
		return money(raw)
	case records.KindCode:
		return code(raw)
	case records.KindBool:
		return boolean(raw)
	case records.KindText:
		return text(raw)
	default:
		return records.Null()
	}
}

// idFields are registration, account and phone numbers. The two grammars
// print them with different separator conventions (the narrative report
// hyphenates NRICs, the grid dump does not), so they are compared by
// their alphanumeric content alone.
var idFields = map[string]struct{}{
	records.FieldNRIC:        {},
	records.FieldOldIC:       {},
	records.FieldEPFNo:       {},
	records.FieldSocsoNo:     {},
	records.FieldTaxNo:       {},
	records.FieldMobile:      {},
	records.FieldPhone:       {},
	records.FieldBankAccount: {},
}

// idNumber strips separators from an identity-like number, keeping only
// uppercase letters and digits.
func idNumber(raw string) records.TypedValue {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return records.Null()
	}
	return records.CodeValue(b.String())
}

// FieldValue normalizes one raw string for a canonical field, applying
// the field's kind plus any field-specific handling.
func FieldValue(field, raw string) records.TypedValue {
	if IsPlaceholder(raw) {
		return records.Null()
	}
	if _, ok := idFields[field]; ok {
		return idNumber(raw)
	}
	return Value(raw, records.KindOf(field))
}

// Fragment normalizes every field and line item of a raw fragment. The
// returned failures list each real value that was rejected to Null.
func Fragment(raw records.RawFragment) (records.NormalizedFragment, []Failure) {
	out := records.NormalizedFragment{
		Key:     raw.Key,
		Grammar: raw.Grammar,
		Fields:  make(map[string]records.TypedValue, len(raw.Fields)),
	}
	var failures []Failure

	for field, rawValue := range raw.Fields {
		v := FieldValue(field, rawValue)
		out.Fields[field] = v
		if v.IsNull() && !IsPlaceholder(rawValue) {
			failures = append(failures, Failure{Key: raw.Key, Field: field, Raw: rawValue, Kind: records.KindOf(field)})
		}
	}

	for _, item := range raw.Items {
		normalized := records.NormalizedItem{
			Domain:      item.Domain,
			Code:        strings.ToUpper(strings.TrimSpace(item.Code)),
			Description: strings.TrimSpace(item.Description),
			Amount:      Value(item.Amount, records.KindMoney),
			Period:      strings.ToUpper(strings.TrimSpace(item.Period)),
			Start:       Value(item.Start, records.KindDate),
			End:         Value(item.End, records.KindDate),
		}
		if normalized.Amount.IsNull() && !IsPlaceholder(item.Amount) {
			failures = append(failures, Failure{
				Key:   raw.Key,
				Field: string(item.Domain) + "." + normalized.Code,
				Raw:   item.Amount,
				Kind:  records.KindMoney,
			})
		}
		out.Items = append(out.Items, normalized)
	}

	return out, failures
}

// date parses d/m/y with slash separators. Anything without a full
// calendar date, including separator-only strings, is Null.
func date(raw string) records.TypedValue {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return records.Null()
	}

	day := atoi(m[1])
	month := atoi(m[2])
	year := atoi(m[3])

	if month < 1 || month > 12 || day < 1 || day > daysIn(month, year) {
		return records.Null()
	}

	return records.DateValue(records.Date{Year: year, Month: month, Day: day})
}

// money strips grouping commas and the RM unit marker, preserving the
// lexical sign. Deduction domains take the absolute value at the caller —
// the normalizer cannot tell earning from deduction because the two
// grammars use opposite sign conventions.
func money(raw string) records.TypedValue {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")

	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		negative = true
		s = s[1 : len(s)-1]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.ToUpper(s), "RM"), "RM"))
	if s == "" {
		return records.Null()
	}

	magnitude, err := decimal.NewFromString(s)
	if err != nil {
		return records.Null()
	}
	if magnitude.IsNegative() {
		negative = true
		magnitude = magnitude.Abs()
	}

	return records.MoneyValue(records.Money{Magnitude: magnitude, Negative: negative})
}

// code uppercases and trims an enumerated token. A code with no letters
// or digits is noise, not a code.
func code(raw string) records.TypedValue {
	s := strings.ToUpper(spaceRun.ReplaceAllString(strings.TrimSpace(raw), " "))
	if s == "" {
		return records.Null()
	}
	hasAlnum := false
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			hasAlnum = true
			break
		}
	}
	if !hasAlnum {
		return records.Null()
	}
	return records.CodeValue(s)
}

// boolean maps the yes/no token sets found in both grammars, including
// the Malay spellings the narrative reports use.
func boolean(raw string) records.TypedValue {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "Y", "YES", "YA", "TRUE", "1", "AKTIF", "ACTIVE":
		return records.BoolValue(true)
	case "N", "NO", "TIDAK", "FALSE", "0", "TAK AKTIF", "INACTIVE":
		return records.BoolValue(false)
	default:
		return records.Null()
	}
}

// text trims and collapses whitespace. A digits-only string where prose
// was expected is a column-slip artifact and is rejected.
func text(raw string) records.TypedValue {
	s := spaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	if s == "" {
		return records.Null()
	}
	if digitsOnly.MatchString(s) {
		return records.Null()
	}
	return records.TextValue(s)
}

// atoi is a no-error Atoi for strings the regexp already vetted as digits.
func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// daysIn returns the day count of a month, accounting for leap years.
func daysIn(month, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	default:
		return 0
	}
}
