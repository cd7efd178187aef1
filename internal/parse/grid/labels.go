package grid

import "github.com/hrmigrate/rekon/pkg/records"

// labelFields maps the grid export's label cells to canonical field names.
// The legacy system prints labels in Malay; the mapping is fixed because
// the grid grammar is column-positional and never localizes.
var labelFields = map[string]string{
	"NAMA":              records.FieldName,
	"NO K/P BARU":       records.FieldNRIC,
	"NO K/P LAMA":       records.FieldOldIC,
	"JANTINA":           records.FieldGender,
	"TARAF PERKAHWINAN": records.FieldMaritalStatus,
	"TARIKH LAHIR":      records.FieldBirthDate,
	"WARGANEGARA":       records.FieldCitizenship,
	"BANGSA":            records.FieldRace,
	"AGAMA":             records.FieldReligion,

	"JABATAN":         records.FieldDepartment,
	"BAHAGIAN":        records.FieldSection,
	"JAWATAN":         records.FieldDesignation,
	"GRED":            records.FieldGrade,
	"TARIKH MASUK":    records.FieldDateJoined,
	"TARIKH SAH":      records.FieldDateConfirmed,
	"TARIKH BERHENTI": records.FieldDateResigned,
	"JENIS PEKERJA":   records.FieldEmployeeType,
	"STATUS":          records.FieldActive,

	"GAJI POKOK":     records.FieldBasicPay,
	"KEKERAPAN GAJI": records.FieldPayPeriod,

	"NO KWSP":        records.FieldEPFNo,
	"KUMPULAN KWSP":  records.FieldEPFGroup,
	"NO PERKESO":     records.FieldSocsoNo,
	"KUMPULAN EIS":   records.FieldEISGroup,
	"NO CUKAI":       records.FieldTaxNo,
	"KUMPULAN CUKAI": records.FieldTaxGroup,

	"ALAMAT":            records.FieldAddress,
	"NO TELEFON BIMBIT": records.FieldMobile,
	"NO TELEFON":        records.FieldPhone,
	"EMEL":              records.FieldEmail,

	"NAMA BANK": records.FieldBankName,
	"NO AKAUN":  records.FieldBankAccount,
	"CAWANGAN":  records.FieldBankBranch,
}

// moneyFields are the canonical fields whose grid cells carry currency
// formatting (grouping commas, RM marker) that the parser strips before
// normalization.
var moneyFields = map[string]bool{
	records.FieldBasicPay: true,
}

// itemDomains maps the line-item section labels to their domains.
var itemDomains = map[string]records.ItemDomain{
	"ELAUN":    records.ItemAllowance,
	"POTONGAN": records.ItemDeduction,
}
