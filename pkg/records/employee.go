package records

import "github.com/shopspring/decimal"

// Personal holds identity numbers and demographics.
type Personal struct {
	Name          TypedValue `json:"name" yaml:"name"`
	NRIC          TypedValue `json:"nric" yaml:"nric"`
	OldIC         TypedValue `json:"old_ic,omitempty" yaml:"old_ic,omitempty"`
	Gender        TypedValue `json:"gender,omitempty" yaml:"gender,omitempty"`
	MaritalStatus TypedValue `json:"marital_status,omitempty" yaml:"marital_status,omitempty"`
	BirthDate     TypedValue `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	Citizenship   TypedValue `json:"citizenship,omitempty" yaml:"citizenship,omitempty"`
	Race          TypedValue `json:"race,omitempty" yaml:"race,omitempty"`
	Religion      TypedValue `json:"religion,omitempty" yaml:"religion,omitempty"`
}

// Employment holds organizational placement and service dates.
type Employment struct {
	Department    TypedValue `json:"department,omitempty" yaml:"department,omitempty"`
	Section       TypedValue `json:"section,omitempty" yaml:"section,omitempty"`
	Designation   TypedValue `json:"designation,omitempty" yaml:"designation,omitempty"`
	Grade         TypedValue `json:"grade,omitempty" yaml:"grade,omitempty"`
	DateJoined    TypedValue `json:"date_joined,omitempty" yaml:"date_joined,omitempty"`
	DateConfirmed TypedValue `json:"date_confirmed,omitempty" yaml:"date_confirmed,omitempty"`
	DateResigned  TypedValue `json:"date_resigned,omitempty" yaml:"date_resigned,omitempty"`
	EmployeeType  TypedValue `json:"employee_type,omitempty" yaml:"employee_type,omitempty"`
	Active        TypedValue `json:"active,omitempty" yaml:"active,omitempty"`
}

// PayItem is one allowance or deduction entry on the canonical record.
// Amount is always non-negative; the domain carries the semantics.
type PayItem struct {
	Code        string          `json:"code" yaml:"code"`
	Description string          `json:"description" yaml:"description"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	Period      string          `json:"period,omitempty" yaml:"period,omitempty"`
	Start       Date            `json:"start,omitempty" yaml:"start,omitempty"`
	End         Date            `json:"end,omitempty" yaml:"end,omitempty"`
}

// Compensation holds pay components.
type Compensation struct {
	BasicPay   TypedValue `json:"basic_pay,omitempty" yaml:"basic_pay,omitempty"`
	PayPeriod  TypedValue `json:"pay_period,omitempty" yaml:"pay_period,omitempty"`
	Allowances []PayItem  `json:"allowances,omitempty" yaml:"allowances,omitempty"`
	Deductions []PayItem  `json:"deductions,omitempty" yaml:"deductions,omitempty"`
}

// Statutory holds the statutory registration codes.
type Statutory struct {
	EPFNo    TypedValue `json:"epf_no,omitempty" yaml:"epf_no,omitempty"`
	EPFGroup TypedValue `json:"epf_group,omitempty" yaml:"epf_group,omitempty"`
	SocsoNo  TypedValue `json:"socso_no,omitempty" yaml:"socso_no,omitempty"`
	EISGroup TypedValue `json:"eis_group,omitempty" yaml:"eis_group,omitempty"`
	TaxNo    TypedValue `json:"tax_no,omitempty" yaml:"tax_no,omitempty"`
	TaxGroup TypedValue `json:"tax_group,omitempty" yaml:"tax_group,omitempty"`
}

// Contact holds contact details.
type Contact struct {
	Address TypedValue `json:"address,omitempty" yaml:"address,omitempty"`
	Mobile  TypedValue `json:"mobile,omitempty" yaml:"mobile,omitempty"`
	Phone   TypedValue `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email   TypedValue `json:"email,omitempty" yaml:"email,omitempty"`
}

// Bank holds salary crediting details.
type Bank struct {
	Name    TypedValue `json:"bank_name,omitempty" yaml:"bank_name,omitempty"`
	Account TypedValue `json:"bank_account,omitempty" yaml:"bank_account,omitempty"`
	Branch  TypedValue `json:"bank_branch,omitempty" yaml:"bank_branch,omitempty"`
}

// Conflict records one field where both grammars supplied non-null,
// unequal values. The merger resolves it but never discards the evidence.
type Conflict struct {
	Field     string     `json:"field" yaml:"field"`
	Kept      TypedValue `json:"kept" yaml:"kept"`
	KeptFrom  Grammar    `json:"kept_from" yaml:"kept_from"`
	Discarded TypedValue `json:"discarded" yaml:"discarded"`
	LostFrom  Grammar    `json:"lost_from" yaml:"lost_from"`
	Reason    string     `json:"reason" yaml:"reason"`
}

// Provenance records, per populated field, which grammar supplied the
// merged value, plus any conflicts resolved along the way.
type Provenance struct {
	Sources   map[string]Grammar `json:"sources" yaml:"sources"`
	Conflicts []Conflict         `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// NewProvenance returns an empty provenance map.
func NewProvenance() Provenance {
	return Provenance{Sources: make(map[string]Grammar)}
}

// Employee is the canonical merged record — the pipeline's durable output.
// Identity is always non-null; every other section may be partially or
// fully null.
type Employee struct {
	Key   Key    `json:"key" yaml:"key"`
	OrgID string `json:"org_id,omitempty" yaml:"org_id,omitempty"`

	Personal     Personal     `json:"personal" yaml:"personal"`
	Employment   Employment   `json:"employment" yaml:"employment"`
	Compensation Compensation `json:"compensation" yaml:"compensation"`
	Statutory    Statutory    `json:"statutory" yaml:"statutory"`
	Contact      Contact      `json:"contact" yaml:"contact"`
	Bank         Bank         `json:"bank" yaml:"bank"`

	Provenance Provenance `json:"provenance" yaml:"provenance"`
}

// Field returns the merged value for a canonical field name. The reporter
// uses this to compute completeness without reflecting over sections.
func (e *Employee) Field(name string) TypedValue {
	switch name {
	case FieldName:
		return e.Personal.Name
	case FieldNRIC:
		return e.Personal.NRIC
	case FieldOldIC:
		return e.Personal.OldIC
	case FieldGender:
		return e.Personal.Gender
	case FieldMaritalStatus:
		return e.Personal.MaritalStatus
	case FieldBirthDate:
		return e.Personal.BirthDate
	case FieldCitizenship:
		return e.Personal.Citizenship
	case FieldRace:
		return e.Personal.Race
	case FieldReligion:
		return e.Personal.Religion
	case FieldDepartment:
		return e.Employment.Department
	case FieldSection:
		return e.Employment.Section
	case FieldDesignation:
		return e.Employment.Designation
	case FieldGrade:
		return e.Employment.Grade
	case FieldDateJoined:
		return e.Employment.DateJoined
	case FieldDateConfirmed:
		return e.Employment.DateConfirmed
	case FieldDateResigned:
		return e.Employment.DateResigned
	case FieldEmployeeType:
		return e.Employment.EmployeeType
	case FieldActive:
		return e.Employment.Active
	case FieldBasicPay:
		return e.Compensation.BasicPay
	case FieldPayPeriod:
		return e.Compensation.PayPeriod
	case FieldEPFNo:
		return e.Statutory.EPFNo
	case FieldEPFGroup:
		return e.Statutory.EPFGroup
	case FieldSocsoNo:
		return e.Statutory.SocsoNo
	case FieldEISGroup:
		return e.Statutory.EISGroup
	case FieldTaxNo:
		return e.Statutory.TaxNo
	case FieldTaxGroup:
		return e.Statutory.TaxGroup
	case FieldAddress:
		return e.Contact.Address
	case FieldMobile:
		return e.Contact.Mobile
	case FieldPhone:
		return e.Contact.Phone
	case FieldEmail:
		return e.Contact.Email
	case FieldBankName:
		return e.Bank.Name
	case FieldBankAccount:
		return e.Bank.Account
	case FieldBankBranch:
		return e.Bank.Branch
	default:
		return Null()
	}
}

// SetField stores a merged value under a canonical field name.
func (e *Employee) SetField(name string, v TypedValue) {
	switch name {
	case FieldName:
		e.Personal.Name = v
	case FieldNRIC:
		e.Personal.NRIC = v
	case FieldOldIC:
		e.Personal.OldIC = v
	case FieldGender:
		e.Personal.Gender = v
	case FieldMaritalStatus:
		e.Personal.MaritalStatus = v
	case FieldBirthDate:
		e.Personal.BirthDate = v
	case FieldCitizenship:
		e.Personal.Citizenship = v
	case FieldRace:
		e.Personal.Race = v
	case FieldReligion:
		e.Personal.Religion = v
	case FieldDepartment:
		e.Employment.Department = v
	case FieldSection:
		e.Employment.Section = v
	case FieldDesignation:
		e.Employment.Designation = v
	case FieldGrade:
		e.Employment.Grade = v
	case FieldDateJoined:
		e.Employment.DateJoined = v
	case FieldDateConfirmed:
		e.Employment.DateConfirmed = v
	case FieldDateResigned:
		e.Employment.DateResigned = v
	case FieldEmployeeType:
		e.Employment.EmployeeType = v
	case FieldActive:
		e.Employment.Active = v
	case FieldBasicPay:
		e.Compensation.BasicPay = v
	case FieldPayPeriod:
		e.Compensation.PayPeriod = v
	case FieldEPFNo:
		e.Statutory.EPFNo = v
	case FieldEPFGroup:
		e.Statutory.EPFGroup = v
	case FieldSocsoNo:
		e.Statutory.SocsoNo = v
	case FieldEISGroup:
		e.Statutory.EISGroup = v
	case FieldTaxNo:
		e.Statutory.TaxNo = v
	case FieldTaxGroup:
		e.Statutory.TaxGroup = v
	case FieldAddress:
		e.Contact.Address = v
	case FieldMobile:
		e.Contact.Mobile = v
	case FieldPhone:
		e.Contact.Phone = v
	case FieldEmail:
		e.Contact.Email = v
	case FieldBankName:
		e.Bank.Name = v
	case FieldBankAccount:
		e.Bank.Account = v
	case FieldBankBranch:
		e.Bank.Branch = v
	}
}
