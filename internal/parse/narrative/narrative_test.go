package narrative

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmigrate/rekon/pkg/records"
)

const sampleReport = `SYARIKAT CONTOH SDN BHD                     LAPORAN PERIBADI PEKERJA
MUKA SURAT 1

NO PEKERJA : AB12          TARIKH CETAK : 01/07/2026
NAMA             :  AHMAD BIN ALI                JANTINA  :  L
NO K/P BARU      :  830211-04-5678
TARIKH LAHIR     :  11/02/1983
JABATAN          :  PENTADBIRAN                  GRED     :  A1
JAWATAN          :  KERANI KANAN
TARAF PERKAHWINAN:  BERKAHWIN
GAJI POKOK       :  RM 1,850.00                  KEKERAPAN GAJI  :  BULANAN
JUMLAH GAJI POKOK TAHUNAN : RM 22,200.00
NO KWSP          :  12345678
NAMA BANK        :  MAYBANK
NO AKAUN         :  512345678901

ELAUN-ELAUN
 1  EL01  ELAUN PERUMAHAN        1,200.00  M
 2  EL05  ELAUN TELEFON             80.00  M

POTONGAN-POTONGAN
 1  PT03  ZAKAT                     50.00  M

DISEDIAKAN OLEH KETUA JABATAN

NO PEKERJA : AB13
NAMA             :  SITI AMINAH                  JANTINA  :  P
JABATAN          :  KEWANGAN
`

func TestParseSampleReport(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	fragments, stats, err := p.Parse(strings.NewReader(sampleReport), "AB_jul.rpt", "AB")
	require.NoError(t, err)

	require.Len(t, fragments, 2)
	assert.Equal(t, 2, stats.Records)

	first := fragments[0]
	assert.Equal(t, records.Key{OrgCode: "AB", EmployeeNo: "AB12"}, first.Key)
	assert.Equal(t, records.GrammarNarrative, first.Grammar)
	assert.Equal(t, "AHMAD BIN ALI", first.Fields[records.FieldName])
	assert.Equal(t, "L", first.Fields[records.FieldGender])
	assert.Equal(t, "830211-04-5678", first.Fields[records.FieldNRIC])
	assert.Equal(t, "11/02/1983", first.Fields[records.FieldBirthDate])
	assert.Equal(t, "PENTADBIRAN", first.Fields[records.FieldDepartment])
	assert.Equal(t, "A1", first.Fields[records.FieldGrade])
	assert.Equal(t, "KERANI KANAN", first.Fields[records.FieldDesignation])
	assert.Equal(t, "BERKAHWIN", first.Fields[records.FieldMaritalStatus])
	assert.Equal(t, "BULANAN", first.Fields[records.FieldPayPeriod])
	assert.Equal(t, "12345678", first.Fields[records.FieldEPFNo])
	assert.Equal(t, "MAYBANK", first.Fields[records.FieldBankName])
	assert.Equal(t, "512345678901", first.Fields[records.FieldBankAccount])

	// The basic pay rule must hit the salary line, not the annual summary.
	assert.Equal(t, "1,850.00", first.Fields[records.FieldBasicPay])

	require.Len(t, first.Items, 3)
	assert.Equal(t, records.ItemAllowance, first.Items[0].Domain)
	assert.Equal(t, "EL01", first.Items[0].Code)
	assert.Equal(t, "ELAUN PERUMAHAN", first.Items[0].Description)
	assert.Equal(t, "1200.00", first.Items[0].Amount)
	assert.Equal(t, "M", first.Items[0].Period)
	assert.Equal(t, "EL05", first.Items[1].Code)
	assert.Equal(t, records.ItemDeduction, first.Items[2].Domain)
	assert.Equal(t, "PT03", first.Items[2].Code)

	second := fragments[1]
	assert.Equal(t, "AB13", second.Key.EmployeeNo)
	assert.Equal(t, "SITI AMINAH", second.Fields[records.FieldName])
	assert.Equal(t, "KEWANGAN", second.Fields[records.FieldDepartment])
	assert.Empty(t, second.Items)
}

func TestExclusionSuppressesFalsePositive(t *testing.T) {
	// The only JABATAN occurrence is the report sign-off; the exclusion
	// must leave the field absent rather than capture the footer text.
	input := `NO PEKERJA : AB12
NAMA             :  AHMAD BIN ALI
DISEDIAKAN OLEH KETUA JABATAN          :  IBU PEJABAT
`
	p, err := New()
	require.NoError(t, err)
	fragments, _, err := p.Parse(strings.NewReader(input), "f.rpt", "AB")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	_, hasDept := fragments[0].Fields[records.FieldDepartment]
	assert.False(t, hasDept)
}

func TestFirstMatchWinsWithinWindow(t *testing.T) {
	input := `NO PEKERJA : AB12
JABATAN          :  PENTADBIRAN
JABATAN          :  KEWANGAN
`
	p, err := New()
	require.NoError(t, err)
	fragments, _, err := p.Parse(strings.NewReader(input), "f.rpt", "AB")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "PENTADBIRAN", fragments[0].Fields[records.FieldDepartment])
}

func TestPlaceholderValuesAreAbsent(t *testing.T) {
	input := `NO PEKERJA : AB12
JABATAN          :  - -
TARIKH LAHIR     :  / /
`
	p, err := New()
	require.NoError(t, err)
	fragments, _, err := p.Parse(strings.NewReader(input), "f.rpt", "AB")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	_, hasDept := fragments[0].Fields[records.FieldDepartment]
	assert.False(t, hasDept)
	_, hasBirth := fragments[0].Fields[records.FieldBirthDate]
	assert.False(t, hasBirth)
}

func TestWindowEndsAtBound(t *testing.T) {
	rs := DefaultRuleSet()
	rs.Window = 2
	p, err := NewWithRules(rs)
	require.NoError(t, err)

	// The department line sits past the two-line window and must not be
	// attributed to AB12.
	input := `NO PEKERJA : AB12
NAMA             :  AHMAD BIN ALI
NO KWSP          :  12345678
JABATAN          :  PENTADBIRAN
`
	fragments, _, err := p.Parse(strings.NewReader(input), "f.rpt", "AB")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "AHMAD BIN ALI", fragments[0].Fields[records.FieldName])
	_, hasDept := fragments[0].Fields[records.FieldDepartment]
	assert.False(t, hasDept)
}

func TestRepeatableRuleAccumulates(t *testing.T) {
	rs := RuleSet{
		Version:         "test",
		BoundaryPattern: `NO\.?\s*PEKERJA\s*:?.*?\b([A-Z]{1,4}\d{1,6})\b`,
		Window:          10,
		Rules: []Rule{
			{Field: records.FieldAddress, Pattern: `ALAMAT\s*:?\s{2,}(.+?)\s*$`, Repeatable: true},
		},
	}
	p, err := NewWithRules(rs)
	require.NoError(t, err)

	input := `NO PEKERJA : AB12
ALAMAT           :  NO 7 JALAN MERPATI
ALAMAT           :  43000 KAJANG SELANGOR
`
	fragments, _, err := p.Parse(strings.NewReader(input), "f.rpt", "AB")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "NO 7 JALAN MERPATI 43000 KAJANG SELANGOR", fragments[0].Fields[records.FieldAddress])
}

func TestUnmatchedRulesCounted(t *testing.T) {
	rs := RuleSet{
		Version:         "test",
		BoundaryPattern: `NO\.?\s*PEKERJA\s*:?.*?\b([A-Z]{1,4}\d{1,6})\b`,
		Window:          10,
		Rules: []Rule{
			{Field: records.FieldName, Pattern: `NAMA\s*:?\s{2,}(.+?)\s*$`},
			{Field: records.FieldDepartment, Pattern: `JABATAN\s*:?\s{2,}(.+?)\s*$`},
		},
	}
	p, err := NewWithRules(rs)
	require.NoError(t, err)

	input := "NO PEKERJA : AB12\nNAMA             :  AHMAD\n"
	_, stats, err := p.Parse(strings.NewReader(input), "f.rpt", "AB")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unmatched)
}

func TestParseIsDeterministic(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	first, _, err := p.Parse(strings.NewReader(sampleReport), "f", "AB")
	require.NoError(t, err)
	second, _, err := p.Parse(strings.NewReader(sampleReport), "f", "AB")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadRuleSetOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `version: "custom-1"
window: 50
rules:
  - field: name
    pattern: 'NAMA\s*:?\s{2,}(.+?)\s*$'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rs, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-1", rs.Version)
	assert.Equal(t, 50, rs.Window)
	require.Len(t, rs.Rules, 1)
	assert.Equal(t, records.FieldName, rs.Rules[0].Field)

	// The default boundary pattern survives a partial override.
	assert.Equal(t, DefaultRuleSet().BoundaryPattern, rs.BoundaryPattern)
}

func TestInvalidPatternRejected(t *testing.T) {
	rs := DefaultRuleSet()
	rs.Rules = append(rs.Rules, Rule{Field: "broken", Pattern: `([unclosed`})
	_, err := NewWithRules(rs)
	require.Error(t, err)
}

func TestPatternWithoutCaptureRejected(t *testing.T) {
	rs := DefaultRuleSet()
	rs.Rules = []Rule{{Field: records.FieldName, Pattern: `NAMA`}}
	_, err := NewWithRules(rs)
	require.Error(t, err)
}
