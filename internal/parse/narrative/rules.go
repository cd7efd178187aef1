package narrative

import (
	"os"
	"regexp"

	"github.com/goccy/go-yaml"

	"github.com/hrmigrate/rekon/pkg/errors"
	"github.com/hrmigrate/rekon/pkg/records"
)

// Rule locates one field in the narrative report by label-anchored
// pattern matching. Rules are configuration data, not control flow: a new
// false-positive case is fixed by editing the rule set, never the engine.
//
// Pattern must contain exactly one capturing group for the value. Exclude
// suppresses the rule on any line containing the substring — label text
// recurs inside unrelated lines (summary rows, annual figures), and an
// unguarded rule happily captures garbage from them. Every rule that has
// bitten us carries an exclusion; treat a missing one as a review flag,
// not a convenience.
type Rule struct {
	Field      string `yaml:"field"`
	Pattern    string `yaml:"pattern"`
	Exclude    string `yaml:"exclude,omitempty"`
	Repeatable bool   `yaml:"repeatable,omitempty"`
}

// RuleSet is the versioned rule configuration for the narrative grammar.
type RuleSet struct {
	Version string `yaml:"version"`

	// BoundaryPattern recognizes a record boundary line: the identity
	// label followed by an employee-number pattern anywhere on the line.
	BoundaryPattern string `yaml:"boundary_pattern"`

	// Window is how many lines after a boundary belong to one employee's
	// section. Sections are not explicitly delimited, so this is a
	// generous empirical bound.
	Window int `yaml:"window"`

	Rules []Rule `yaml:"rules"`

	// ItemPattern matches a recurring allowance/deduction line: numeric
	// line-item prefix, code, description, amount, optional period.
	ItemPattern string `yaml:"item_pattern"`

	// SectionHeaders map a header line keyword to the item domain that
	// follows it.
	SectionHeaders map[string]records.ItemDomain `yaml:"section_headers"`
}

// DefaultRuleSet returns the compiled-in rule configuration, derived from
// the narrative report layout every observed export uses.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Version:         "2026-07",
		BoundaryPattern: `NO\.?\s*PEKERJA\s*:?.*?\b([A-Z]{1,4}\d{1,6})\b`,
		Window:          100,
		ItemPattern:     `^\s*\d{1,2}\s+([A-Z]{2}\d{2,3})\s+(.+?)\s{2,}(-?[\d,]+\.\d{2})(?:\s+(\w+))?\s*$`,
		SectionHeaders: map[string]records.ItemDomain{
			"ELAUN-ELAUN":       records.ItemAllowance,
			"POTONGAN-POTONGAN": records.ItemDeduction,
		},
		Rules: []Rule{
			// Identity block. "NAMA" is a substring of "NAMA BANK" and
			// "NAMA WARIS", both of which appear later in the section.
			{Field: records.FieldName, Pattern: `\bNAMA\s*:?\s{2,}(.+?)(?:\s{2,}|$)`, Exclude: "BANK"},
			{Field: records.FieldNRIC, Pattern: `NO\.?\s*K/?P\s*BARU\s*:?\s*([\d\-]+)`},
			{Field: records.FieldOldIC, Pattern: `NO\.?\s*K/?P\s*LAMA\s*:?\s*([A-Z\d\-]+)`},
			{Field: records.FieldGender, Pattern: `JANTINA\s*:?\s{2,}(\w+)`},
			{Field: records.FieldMaritalStatus, Pattern: `TARAF\s+PERKAHWINAN\s*:?\s{2,}(.+?)(?:\s{2,}|$)`},
			{Field: records.FieldBirthDate, Pattern: `TARIKH\s+LAHIR\s*:?\s*([\d/\s]+?)(?:\s{2,}|$)`},
			{Field: records.FieldCitizenship, Pattern: `WARGANEGARA\s*:?\s{2,}(.+?)(?:\s{2,}|$)`},
			{Field: records.FieldRace, Pattern: `BANGSA\s*:?\s{2,}(.+?)(?:\s{2,}|$)`},
			{Field: records.FieldReligion, Pattern: `AGAMA\s*:?\s{2,}(.+?)(?:\s{2,}|$)`},

			// Employment block. "JABATAN" also appears inside the report
			// footer ("KETUA JABATAN" sign-off) — observed false positive.
			{Field: records.FieldDepartment, Pattern: `JABATAN\s*:?\s{2,}(.+?)(?:\s{2,}|$)`, Exclude: "KETUA"},
			{Field: records.FieldSection, Pattern: `BAHAGIAN\s*:?\s{2,}(.+?)(?:\s{2,}|$)`},
			{Field: records.FieldDesignation, Pattern: `JAWATAN\s*:?\s{2,}(.+?)(?:\s{2,}|$)`, Exclude: "TARAF"},
			{Field: records.FieldGrade, Pattern: `\bGRED\s*:?\s{2,}([A-Z\d]+)`},
			{Field: records.FieldDateJoined, Pattern: `TARIKH\s+MASUK\s*:?\s*([\d/\s]+?)(?:\s{2,}|$)`},
			{Field: records.FieldDateConfirmed, Pattern: `TARIKH\s+SAH\s*:?\s*([\d/\s]+?)(?:\s{2,}|$)`, Exclude: "MASUK"},
			{Field: records.FieldDateResigned, Pattern: `TARIKH\s+BERHENTI\s*:?\s*([\d/\s]+?)(?:\s{2,}|$)`},
			{Field: records.FieldEmployeeType, Pattern: `JENIS\s+PEKERJA\s*:?\s{2,}(.+?)(?:\s{2,}|$)`},
			{Field: records.FieldActive, Pattern: `\bSTATUS\s*:?\s{2,}(\w+(?:\s\w+)?)`, Exclude: "PERKAHWINAN"},

			// Compensation. "GAJI POKOK" recurs in the annual summary
			// line ("JUMLAH GAJI POKOK TAHUNAN") — observed false positive.
			{Field: records.FieldBasicPay, Pattern: `GAJI\s+POKOK\s*:?\s*(?:RM)?\s*(-?[\d,]+\.\d{2})`, Exclude: "TAHUNAN"},
			{Field: records.FieldPayPeriod, Pattern: `KEKERAPAN\s+GAJI\s*:?\s{2,}(\w+)`},

			// Statutory codes.
			{Field: records.FieldEPFNo, Pattern: `NO\.?\s*KWSP\s*:?\s*([\d\-]+)`},
			{Field: records.FieldEPFGroup, Pattern: `KUMPULAN\s+KWSP\s*:?\s{2,}(\S+)`},
			{Field: records.FieldSocsoNo, Pattern: `NO\.?\s*PERKESO\s*:?\s*([\d\-]+)`},
			{Field: records.FieldEISGroup, Pattern: `KUMPULAN\s+EIS\s*:?\s{2,}(\S+)`},
			{Field: records.FieldTaxNo, Pattern: `NO\.?\s*CUKAI\s*:?\s*([A-Z\d\s]+?)(?:\s{2,}|$)`, Exclude: "KUMPULAN"},
			{Field: records.FieldTaxGroup, Pattern: `KUMPULAN\s+CUKAI\s*:?\s{2,}(\S+)`},

			// Contact and bank.
			{Field: records.FieldAddress, Pattern: `ALAMAT\s*:?\s{2,}(.+?)(?:\s{3,}|$)`, Exclude: "BANK"},
			{Field: records.FieldMobile, Pattern: `TELEFON\s+BIMBIT\s*:?\s*([\d\-\s]+?)(?:\s{2,}|$)`},
			{Field: records.FieldPhone, Pattern: `NO\.?\s*TELEFON\s*:?\s*([\d\-\s]+?)(?:\s{2,}|$)`, Exclude: "BIMBIT"},
			{Field: records.FieldEmail, Pattern: `EMEL\s*:?\s{2,}(\S+@\S+)`},
			{Field: records.FieldBankName, Pattern: `NAMA\s+BANK\s*:?\s{2,}(.+?)(?:\s{2,}|$)`},
			{Field: records.FieldBankAccount, Pattern: `NO\.?\s*AKAUN\s*:?\s*([\d\-]+)`},
			{Field: records.FieldBankBranch, Pattern: `CAWANGAN\s*:?\s{2,}(.+?)(?:\s{2,}|$)`},
		},
	}
}

// LoadRuleSet reads a rule configuration from a YAML file. Missing
// boundary pattern, window or rules fall back to the defaults so a
// partial override file only needs the rules it patches.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, errors.WrapIO("read", path, err)
	}

	rs := DefaultRuleSet()
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, errors.NewConfigError("narrative rules", "invalid rule file "+path, err)
	}
	if rs.Window <= 0 {
		rs.Window = DefaultRuleSet().Window
	}
	return rs, nil
}

// compiledRule is a rule with its patterns ready to run.
type compiledRule struct {
	Rule
	pattern *regexp.Regexp
}

// compile validates and compiles the rule set.
func (rs RuleSet) compile() (*engine, error) {
	eng := &engine{
		window:   rs.Window,
		sections: rs.SectionHeaders,
	}

	var err error
	if eng.boundary, err = regexp.Compile(rs.BoundaryPattern); err != nil {
		return nil, errors.NewConfigError("narrative rules", "invalid boundary pattern", err)
	}
	if eng.boundary.NumSubexp() < 1 {
		return nil, errors.NewConfigError("narrative rules", "boundary pattern needs a capture group for the employee number", nil)
	}

	if rs.ItemPattern != "" {
		if eng.item, err = regexp.Compile(rs.ItemPattern); err != nil {
			return nil, errors.NewConfigError("narrative rules", "invalid item pattern", err)
		}
	}

	for _, rule := range rs.Rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, errors.NewConfigError("narrative rules", "invalid pattern for field "+rule.Field, err)
		}
		if re.NumSubexp() < 1 {
			return nil, errors.NewConfigError("narrative rules", "pattern for field "+rule.Field+" needs a capture group", nil)
		}
		eng.rules = append(eng.rules, compiledRule{Rule: rule, pattern: re})
	}

	return eng, nil
}
