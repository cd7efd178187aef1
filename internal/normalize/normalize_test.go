package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmigrate/rekon/pkg/records"
)

func TestDateNormalization(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want records.TypedValue
	}{
		{"day month year", "11/02/1983", records.DateValue(records.Date{Year: 1983, Month: 2, Day: 11})},
		{"single digit parts", "1/7/2001", records.DateValue(records.Date{Year: 2001, Month: 7, Day: 1})},
		{"leap day", "29/02/2000", records.DateValue(records.Date{Year: 2000, Month: 2, Day: 29})},
		{"separator only", "/ /", records.Null()},
		{"empty", "", records.Null()},
		{"two digit year", "11/02/83", records.Null()},
		{"month out of range", "11/13/1983", records.Null()},
		{"day out of range", "31/04/1990", records.Null()},
		{"not a leap year", "29/02/1900", records.Null()},
		{"prose", "JOINED 1983", records.Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(tt.raw, records.KindDate))
		})
	}
}

func TestMoneyNormalization(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		negative bool
	}{
		{"grouped negative", "-1,000.00", "1000", true},
		{"grouped positive", "2,500.50", "2500.5", false},
		{"rm prefix", "RM 1,234.00", "1234", false},
		{"rm suffix", "350.00 RM", "350", false},
		{"parenthesized", "(75.00)", "75", true},
		{"explicit plus", "+10.00", "10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Value(tt.raw, records.KindMoney)
			require.Equal(t, records.KindMoney, v.Kind)
			assert.True(t, v.Money.Magnitude.Equal(decimal.RequireFromString(tt.want)),
				"magnitude %s != %s", v.Money.Magnitude, tt.want)
			assert.Equal(t, tt.negative, v.Money.Negative)
			assert.False(t, v.Money.Magnitude.IsNegative(), "magnitude must be unsigned")
		})
	}

	assert.Equal(t, records.Null(), Value("RM", records.KindMoney))
	assert.Equal(t, records.Null(), Value("FREE", records.KindMoney))
	assert.Equal(t, records.Null(), Value("-", records.KindMoney))
}

func TestCodeNormalization(t *testing.T) {
	assert.Equal(t, records.CodeValue("A1"), Value(" a1 ", records.KindCode))
	assert.Equal(t, records.CodeValue("0123456789"), Value("0123456789", records.KindCode))
	assert.Equal(t, records.CodeValue("EPF 05"), Value("epf   05", records.KindCode))
	assert.Equal(t, records.Null(), Value("***", records.KindCode))
	assert.Equal(t, records.Null(), Value("//", records.KindCode))
}

func TestBoolNormalization(t *testing.T) {
	assert.Equal(t, records.BoolValue(true), Value("YA", records.KindBool))
	assert.Equal(t, records.BoolValue(true), Value("y", records.KindBool))
	assert.Equal(t, records.BoolValue(false), Value("TIDAK", records.KindBool))
	assert.Equal(t, records.BoolValue(false), Value("0", records.KindBool))
	assert.Equal(t, records.Null(), Value("MAYBE", records.KindBool))
}

func TestTextNormalization(t *testing.T) {
	assert.Equal(t, records.TextValue("JABATAN OPERASI"), Value("  JABATAN   OPERASI ", records.KindText))
	// A numeric-only string where a department name was expected is a
	// column slip, not data.
	assert.Equal(t, records.Null(), Value("123456", records.KindText))
	assert.Equal(t, records.Null(), Value("N/A", records.KindText))
}

func TestFragmentNormalization(t *testing.T) {
	raw := records.RawFragment{
		Key:     records.Key{OrgCode: "AB", EmployeeNo: "AB12"},
		Grammar: records.GrammarGrid,
		Fields: map[string]string{
			records.FieldName:       "AHMAD BIN ALI",
			records.FieldBirthDate:  "11/02/1983",
			records.FieldBasicPay:   "1,850.00",
			records.FieldDepartment: "9999",  // garbled: digits where prose expected
			records.FieldGrade:      "/ /",   // placeholder, not a failure
			records.FieldDateJoined: "13/13/2001", // real value, unparseable
		},
		Items: []records.RawItem{
			{Domain: records.ItemDeduction, Code: "zakat", Amount: "-50.00"},
		},
	}

	frag, failures := Fragment(raw)

	assert.Equal(t, raw.Key, frag.Key)
	assert.Equal(t, records.TextValue("AHMAD BIN ALI"), frag.Fields[records.FieldName])
	assert.Equal(t, records.Null(), frag.Fields[records.FieldGrade])
	assert.Equal(t, records.Null(), frag.Fields[records.FieldDepartment])

	require.Len(t, frag.Items, 1)
	assert.Equal(t, "ZAKAT", frag.Items[0].Code)
	assert.True(t, frag.Items[0].Amount.Money.Negative)

	// Two failures: garbled department and impossible joining date.
	// The placeholder grade is absent, not failed.
	require.Len(t, failures, 2)
	fields := []string{failures[0].Field, failures[1].Field}
	assert.Contains(t, fields, records.FieldDepartment)
	assert.Contains(t, fields, records.FieldDateJoined)
}

func TestNormalizationIsDeterministic(t *testing.T) {
	raw := records.RawFragment{
		Key:     records.Key{OrgCode: "AB", EmployeeNo: "AB12"},
		Grammar: records.GrammarNarrative,
		Fields: map[string]string{
			records.FieldName:     "SITI AMINAH",
			records.FieldBasicPay: "RM 2,000.00",
		},
	}

	first, _ := Fragment(raw)
	second, _ := Fragment(raw)
	assert.Equal(t, first, second)
}

func TestIdentityNumbersCompareBySubstance(t *testing.T) {
	// The narrative report hyphenates NRICs; the grid dump does not. Both
	// spellings must normalize to the same value or every employee
	// present in both files would report a spurious conflict.
	hyphenated := FieldValue(records.FieldNRIC, "830211-04-5678")
	plain := FieldValue(records.FieldNRIC, "830211045678")
	assert.Equal(t, plain, hyphenated)
	assert.Equal(t, "830211045678", plain.Code)

	spaced := FieldValue(records.FieldMobile, "012-345 6789")
	assert.Equal(t, "0123456789", spaced.Code)

	// Separator-only input is still absent, not an empty code.
	assert.Equal(t, records.Null(), FieldValue(records.FieldNRIC, "- -"))
}
