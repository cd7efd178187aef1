package records

// Canonical field names shared by both parsers. The grid and narrative
// grammars label the same logical field differently; parsers translate
// their local labels into these names so the normalizer and merger work
// on one vocabulary.
const (
	FieldName          = "name"
	FieldNRIC          = "nric"
	FieldOldIC         = "old_ic"
	FieldGender        = "gender"
	FieldMaritalStatus = "marital_status"
	FieldBirthDate     = "birth_date"
	FieldCitizenship   = "citizenship"
	FieldRace          = "race"
	FieldReligion      = "religion"

	FieldDepartment    = "department"
	FieldSection       = "section"
	FieldDesignation   = "designation"
	FieldGrade         = "grade"
	FieldDateJoined    = "date_joined"
	FieldDateConfirmed = "date_confirmed"
	FieldDateResigned  = "date_resigned"
	FieldEmployeeType  = "employee_type"
	FieldActive        = "active"

	FieldBasicPay  = "basic_pay"
	FieldPayPeriod = "pay_period"

	FieldEPFNo    = "epf_no"
	FieldEPFGroup = "epf_group"
	FieldSocsoNo  = "socso_no"
	FieldEISGroup = "eis_group"
	FieldTaxNo    = "tax_no"
	FieldTaxGroup = "tax_group"

	FieldAddress = "address"
	FieldMobile  = "mobile"
	FieldPhone   = "phone"
	FieldEmail   = "email"

	FieldBankName    = "bank_name"
	FieldBankAccount = "bank_account"
	FieldBankBranch  = "bank_branch"
)

// fieldKinds maps each canonical field to its normalized representation.
var fieldKinds = map[string]Kind{
	FieldName:          KindText,
	FieldNRIC:          KindCode,
	FieldOldIC:         KindCode,
	FieldGender:        KindCode,
	FieldMaritalStatus: KindCode,
	FieldBirthDate:     KindDate,
	FieldCitizenship:   KindCode,
	FieldRace:          KindCode,
	FieldReligion:      KindCode,

	FieldDepartment:    KindText,
	FieldSection:       KindText,
	FieldDesignation:   KindText,
	FieldGrade:         KindCode,
	FieldDateJoined:    KindDate,
	FieldDateConfirmed: KindDate,
	FieldDateResigned:  KindDate,
	FieldEmployeeType:  KindCode,
	FieldActive:        KindBool,

	FieldBasicPay:  KindMoney,
	FieldPayPeriod: KindCode,

	FieldEPFNo:    KindCode,
	FieldEPFGroup: KindCode,
	FieldSocsoNo:  KindCode,
	FieldEISGroup: KindCode,
	FieldTaxNo:    KindCode,
	FieldTaxGroup: KindCode,

	FieldAddress: KindText,
	FieldMobile:  KindCode,
	FieldPhone:   KindCode,
	FieldEmail:   KindText,

	FieldBankName:    KindText,
	FieldBankAccount: KindCode,
	FieldBankBranch:  KindText,
}

// KindOf returns the normalized kind for a canonical field name.
// Unknown fields normalize as free text.
func KindOf(field string) Kind {
	if k, ok := fieldKinds[field]; ok {
		return k
	}
	return KindText
}

// Fields returns the canonical field names in sorted registration order.
// The reporter iterates this list to compute per-field completeness.
func Fields() []string {
	return []string{
		FieldName, FieldNRIC, FieldOldIC, FieldGender, FieldMaritalStatus,
		FieldBirthDate, FieldCitizenship, FieldRace, FieldReligion,
		FieldDepartment, FieldSection, FieldDesignation, FieldGrade,
		FieldDateJoined, FieldDateConfirmed, FieldDateResigned,
		FieldEmployeeType, FieldActive,
		FieldBasicPay, FieldPayPeriod,
		FieldEPFNo, FieldEPFGroup, FieldSocsoNo, FieldEISGroup,
		FieldTaxNo, FieldTaxGroup,
		FieldAddress, FieldMobile, FieldPhone, FieldEmail,
		FieldBankName, FieldBankAccount, FieldBankBranch,
	}
}
