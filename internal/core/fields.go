package core

// Field is a canonical payroll field, named by its record JSON key.
type Field string

// Primary fields, matched by alias substring.
const (
	FieldTeacherID           Field = "teacherId"
	FieldTeacherName         Field = "teacherName"
	FieldDesignation         Field = "designation"
	FieldDepartment          Field = "department"
	FieldQualification       Field = "qualification"
	FieldPayScale            Field = "payScale"
	FieldRevisedBasicPay     Field = "revisedBasicPay"
	FieldDA                  Field = "da"
	FieldHRA                 Field = "hra"
	FieldCLA                 Field = "cla"
	FieldAdditionalAllowance Field = "additionalAllowance"
	FieldGrossTotal          Field = "grossTotal"
	FieldProfessionalTax     Field = "professionalTax"
	FieldIncomeTax           Field = "incomeTax"
	FieldProvidentFund       Field = "providentFund"
	FieldInsurancePremium    Field = "insurancePremium"
	FieldWelfareFund         Field = "welfareFund"
	FieldTotalDeductions     Field = "totalDeductions"
	FieldNetPay              Field = "netPay"
	FieldPayDate             Field = "payDate"
	FieldStatus              Field = "status"
)

// Extended pay-scale fields, matched by conjunctive token rules.
const (
	FieldOldBasicPay Field = "oldBasicPay"
	FieldDAAt150     Field = "daAt150"
	FieldHRAAt10     Field = "hraAt10"
	FieldDAArrears   Field = "daArrears"
	FieldPayScaleMin Field = "payScaleMin"
	FieldPayScaleMax Field = "payScaleMax"
)

// FieldSpec describes one canonical field.
type FieldSpec struct {
	Field    Field
	Kind     ValueKind
	Label    string // display header used by the sample file
	Extended bool   // matched by token rules instead of aliases
}

// fieldSpecs lists every canonical field in sample-file column order.
var fieldSpecs = []FieldSpec{
	{Field: FieldTeacherID, Kind: KindText, Label: "Teacher ID"},
	{Field: FieldTeacherName, Kind: KindText, Label: "Teacher Name"},
	{Field: FieldDesignation, Kind: KindText, Label: "Designation"},
	{Field: FieldDepartment, Kind: KindText, Label: "Department"},
	{Field: FieldQualification, Kind: KindText, Label: "Qualification"},
	{Field: FieldPayScale, Kind: KindText, Label: "Pay Scale"},
	{Field: FieldPayScaleMin, Kind: KindCurrency, Label: "Scale Min", Extended: true},
	{Field: FieldPayScaleMax, Kind: KindCurrency, Label: "Scale Max", Extended: true},
	{Field: FieldRevisedBasicPay, Kind: KindCurrency, Label: "Revised Basic Pay"},
	{Field: FieldOldBasicPay, Kind: KindCurrency, Label: "Old Basic", Extended: true},
	{Field: FieldDA, Kind: KindCurrency, Label: "Dearness Allowance"},
	{Field: FieldDAAt150, Kind: KindCurrency, Label: "DA @150%", Extended: true},
	{Field: FieldDAArrears, Kind: KindCurrency, Label: "DA Arrears", Extended: true},
	{Field: FieldHRA, Kind: KindCurrency, Label: "HRA"},
	{Field: FieldHRAAt10, Kind: KindCurrency, Label: "HRA @10%", Extended: true},
	{Field: FieldCLA, Kind: KindCurrency, Label: "CLA"},
	{Field: FieldAdditionalAllowance, Kind: KindCurrency, Label: "Additional Allowance"},
	{Field: FieldGrossTotal, Kind: KindCurrency, Label: "Gross Total"},
	{Field: FieldProfessionalTax, Kind: KindCurrency, Label: "Professional Tax"},
	{Field: FieldIncomeTax, Kind: KindCurrency, Label: "Income Tax"},
	{Field: FieldProvidentFund, Kind: KindCurrency, Label: "Provident Fund"},
	{Field: FieldInsurancePremium, Kind: KindCurrency, Label: "Insurance Premium"},
	{Field: FieldWelfareFund, Kind: KindCurrency, Label: "Welfare Fund"},
	{Field: FieldTotalDeductions, Kind: KindCurrency, Label: "Total Deductions"},
	{Field: FieldNetPay, Kind: KindCurrency, Label: "Net Pay"},
	{Field: FieldPayDate, Kind: KindText, Label: "Pay Date"},
	{Field: FieldStatus, Kind: KindText, Label: "Status"},
}

var specByField = func() map[Field]FieldSpec {
	m := make(map[Field]FieldSpec, len(fieldSpecs))
	for _, s := range fieldSpecs {
		m[s.Field] = s
	}
	return m
}()

// Fields returns all canonical field specs in sample-file order.
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(fieldSpecs))
	copy(out, fieldSpecs)
	return out
}

// LookupField returns the spec for a field name.
func LookupField(f Field) (FieldSpec, bool) {
	s, ok := specByField[f]
	return s, ok
}

// requiredFields are recommended columns; their absence only warns.
var requiredFields = []Field{FieldTeacherID, FieldTeacherName, FieldRevisedBasicPay}
