package records

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind identifies the typed representation a field normalizes to.
type Kind int

// Field kinds, in rough order of how often they appear in the exports.
const (
	KindNull Kind = iota
	KindText
	KindCode
	KindDate
	KindMoney
	KindBool
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindCode:
		return "code"
	case KindDate:
		return "date"
	case KindMoney:
		return "money"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Date is a calendar date with no time-of-day or zone component.
// The legacy exports carry dates only, so time.Time would smuggle in
// precision the data does not have.
type Date struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats the date as ISO 8601 (yyyy-mm-dd).
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Money is a currency amount. Magnitude is always non-negative; Negative
// carries the lexical sign separately because the two source grammars use
// opposite sign conventions for deductions, and only the caller knows the
// semantic domain of the field.
type Money struct {
	Magnitude decimal.Decimal `json:"magnitude" yaml:"magnitude"`
	Negative  bool            `json:"negative,omitempty" yaml:"negative,omitempty"`
}

// Signed returns the amount with its lexical sign applied.
func (m Money) Signed() decimal.Decimal {
	if m.Negative {
		return m.Magnitude.Neg()
	}
	return m.Magnitude
}

// String formats the amount with its sign.
func (m Money) String() string {
	return m.Signed().StringFixed(2)
}

// TypedValue is the normalized representation of one extracted field.
// Exactly one of the payload fields is meaningful, selected by Kind.
// Invariant: a TypedValue either parsed cleanly or is KindNull — it is
// never a partially parsed string.
type TypedValue struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
	Code  string `json:"code,omitempty" yaml:"code,omitempty"`
	Date  Date   `json:"date,omitempty" yaml:"date,omitempty"`
	Money Money  `json:"money,omitempty" yaml:"money,omitempty"`
	Bool  bool   `json:"bool,omitempty" yaml:"bool,omitempty"`
}

// Null is the explicit absent value.
func Null() TypedValue {
	return TypedValue{Kind: KindNull}
}

// TextValue wraps a free-text field.
func TextValue(s string) TypedValue {
	return TypedValue{Kind: KindText, Text: s}
}

// CodeValue wraps an enumerated code token.
func CodeValue(s string) TypedValue {
	return TypedValue{Kind: KindCode, Code: s}
}

// DateValue wraps a calendar date.
func DateValue(d Date) TypedValue {
	return TypedValue{Kind: KindDate, Date: d}
}

// MoneyValue wraps a currency amount.
func MoneyValue(m Money) TypedValue {
	return TypedValue{Kind: KindMoney, Money: m}
}

// BoolValue wraps a boolean flag.
func BoolValue(b bool) TypedValue {
	return TypedValue{Kind: KindBool, Bool: b}
}

// IsNull reports whether the value is absent.
func (v TypedValue) IsNull() bool {
	return v.Kind == KindNull
}

// Equal reports whether two values are the same after normalization.
// Used by the merger to decide whether two sources agree.
func (v TypedValue) Equal(other TypedValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindText:
		return v.Text == other.Text
	case KindCode:
		return v.Code == other.Code
	case KindDate:
		return v.Date == other.Date
	case KindMoney:
		return v.Money.Negative == other.Money.Negative &&
			v.Money.Magnitude.Equal(other.Money.Magnitude)
	case KindBool:
		return v.Bool == other.Bool
	default:
		return false
	}
}

// String renders the payload for diagnostics and reports.
func (v TypedValue) String() string {
	switch v.Kind {
	case KindNull:
		return "<null>"
	case KindText:
		return v.Text
	case KindCode:
		return v.Code
	case KindDate:
		return v.Date.String()
	case KindMoney:
		return v.Money.String()
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return "<invalid>"
	}
}
