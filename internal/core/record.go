package core

import "strconv"

// StatusPaid is the default payment status.
const StatusPaid = "paid"

// Record is one normalized payroll row.
//
// Legacy alias fields (BasicSalary, GrossSalary, Deductions, Name,
// EmployeeID) mirror their canonical counterparts for consumers of the
// older schema. They are only ever set by syncAliases.
type Record struct {
	ID string `json:"id"`

	TeacherID     string `json:"teacherId"`
	TeacherName   string `json:"teacherName"`
	Designation   string `json:"designation"`
	Department    string `json:"department"`
	Qualification string `json:"qualification"`
	PayScale      string `json:"payScale"`

	PayScaleMin     float64 `json:"payScaleMin"`
	PayScaleMax     float64 `json:"payScaleMax"`
	OldBasicPay     float64 `json:"oldBasicPay"`
	RevisedBasicPay float64 `json:"revisedBasicPay"`

	DA                  float64 `json:"da"`
	DAAt150             float64 `json:"daAt150"`
	DAArrears           float64 `json:"daArrears"`
	HRA                 float64 `json:"hra"`
	HRAAt10             float64 `json:"hraAt10"`
	CLA                 float64 `json:"cla"`
	AdditionalAllowance float64 `json:"additionalAllowance"`
	GrossTotal          float64 `json:"grossTotal"`

	ProfessionalTax  float64 `json:"professionalTax"`
	IncomeTax        float64 `json:"incomeTax"`
	ProvidentFund    float64 `json:"providentFund"`
	InsurancePremium float64 `json:"insurancePremium"`
	WelfareFund      float64 `json:"welfareFund"`
	TotalDeductions  float64 `json:"totalDeductions"`

	NetPay  float64 `json:"netPay"`
	PayDate string  `json:"payDate"`
	Status  string  `json:"status"`

	Month     string `json:"month"`
	Year      string `json:"year"`
	MonthNum  string `json:"monthNum"`
	CreatedAt string `json:"createdAt"`

	// Legacy schema aliases.
	BasicSalary float64 `json:"basicSalary"`
	GrossSalary float64 `json:"grossSalary"`
	Deductions  float64 `json:"deductions"`
	Name        string  `json:"name"`
	EmployeeID  string  `json:"employeeId"`
}

// syncAliases copies canonical values onto the legacy alias fields.
func (r *Record) syncAliases() {
	r.BasicSalary = r.RevisedBasicPay
	r.GrossSalary = r.GrossTotal
	r.Deductions = r.TotalDeductions
	r.Name = r.TeacherName
	r.EmployeeID = r.TeacherID
}

func (r *Record) textField(f Field) *string {
	switch f {
	case FieldTeacherID:
		return &r.TeacherID
	case FieldTeacherName:
		return &r.TeacherName
	case FieldDesignation:
		return &r.Designation
	case FieldDepartment:
		return &r.Department
	case FieldQualification:
		return &r.Qualification
	case FieldPayScale:
		return &r.PayScale
	case FieldPayDate:
		return &r.PayDate
	case FieldStatus:
		return &r.Status
	}
	return nil
}

func (r *Record) currencyField(f Field) *float64 {
	switch f {
	case FieldPayScaleMin:
		return &r.PayScaleMin
	case FieldPayScaleMax:
		return &r.PayScaleMax
	case FieldOldBasicPay:
		return &r.OldBasicPay
	case FieldRevisedBasicPay:
		return &r.RevisedBasicPay
	case FieldDA:
		return &r.DA
	case FieldDAAt150:
		return &r.DAAt150
	case FieldDAArrears:
		return &r.DAArrears
	case FieldHRA:
		return &r.HRA
	case FieldHRAAt10:
		return &r.HRAAt10
	case FieldCLA:
		return &r.CLA
	case FieldAdditionalAllowance:
		return &r.AdditionalAllowance
	case FieldGrossTotal:
		return &r.GrossTotal
	case FieldProfessionalTax:
		return &r.ProfessionalTax
	case FieldIncomeTax:
		return &r.IncomeTax
	case FieldProvidentFund:
		return &r.ProvidentFund
	case FieldInsurancePremium:
		return &r.InsurancePremium
	case FieldWelfareFund:
		return &r.WelfareFund
	case FieldTotalDeductions:
		return &r.TotalDeductions
	case FieldNetPay:
		return &r.NetPay
	}
	return nil
}

// set assigns a raw cell to field f, coercing currency values.
func (r *Record) set(f Field, raw string) {
	if p := r.currencyField(f); p != nil {
		*p = CoerceAmount(raw)
		return
	}
	if p := r.textField(f); p != nil {
		*p = CleanCell(raw)
	}
}

// Value returns the display value of field f.
func (r Record) Value(f Field) string {
	if p := r.currencyField(f); p != nil {
		return strconv.FormatFloat(*p, 'f', -1, 64)
	}
	if p := r.textField(f); p != nil {
		return *p
	}
	return ""
}
