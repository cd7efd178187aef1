package records

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSetFieldRoundTrip(t *testing.T) {
	// Every canonical field must round-trip through SetField/Field; a
	// mismatched switch arm would silently drop a field in the merge.
	for _, field := range Fields() {
		var emp Employee
		v := CodeValue(field)
		emp.SetField(field, v)
		assert.Equal(t, v, emp.Field(field), "field %s", field)
	}
}

func TestFieldUnknownNameIsNull(t *testing.T) {
	var emp Employee
	assert.True(t, emp.Field("no_such_field").IsNull())
}

func TestKindOfCoversEveryField(t *testing.T) {
	for _, field := range Fields() {
		assert.NotEqual(t, KindNull, KindOf(field), "field %s has no kind", field)
	}
}

func TestMoneySigned(t *testing.T) {
	m := Money{Magnitude: decimalFromString(t, "1000.00"), Negative: true}
	assert.Equal(t, "-1000.00", m.Signed().StringFixed(2))
	assert.Equal(t, "-1000.00", m.String())
}

func TestDateOrderingAndFormat(t *testing.T) {
	earlier := Date{Year: 1983, Month: 2, Day: 11}
	later := Date{Year: 1983, Month: 12, Day: 1}
	assert.True(t, earlier.Before(later))
	assert.False(t, later.Before(earlier))
	assert.Equal(t, "1983-02-11", earlier.String())
	assert.True(t, Date{}.IsZero())
}

func TestTypedValueEquality(t *testing.T) {
	assert.True(t, Null().Equal(Null()))
	assert.True(t, TextValue("A").Equal(TextValue("A")))
	assert.False(t, TextValue("A").Equal(CodeValue("A")))

	a := MoneyValue(Money{Magnitude: decimalFromString(t, "1850.00")})
	b := MoneyValue(Money{Magnitude: decimalFromString(t, "1850.000")})
	assert.True(t, a.Equal(b))
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
