package payslip

import (
	"bytes"
	"testing"

	"github.com/JonMunkholm/payroll-import/internal/core"
)

func sampleRecord() core.Record {
	return core.Record{
		ID:              "T001_January_2025",
		TeacherID:       "T001",
		TeacherName:     "Dr. Anita Rao",
		Designation:     "Associate Professor",
		Department:      "Physics",
		RevisedBasicPay: 57700,
		DA:              24234,
		HRA:             5770,
		GrossTotal:      87704,
		ProfessionalTax: 208,
		ProvidentFund:   7000,
		TotalDeductions: 7208,
		NetPay:          80496,
		PayDate:         "2025-02-01",
		Status:          core.StatusPaid,
		Month:           "January",
		Year:            "2025",
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleRecord(), Options{Organization: "Govt. College"}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output starts with %q, want %%PDF-", buf.Bytes()[:min(8, buf.Len())])
	}
	if !bytes.Contains(buf.Bytes(), []byte("%EOF")) {
		t.Error("output has no EOF trailer")
	}
}

func TestRender_SparseRecord(t *testing.T) {
	var buf bytes.Buffer
	rec := core.Record{ID: "X_March_2024", TeacherName: "Müller", Month: "March", Year: "2024"}
	if err := Render(&buf, rec, Options{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Render() wrote nothing")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"T001_January_2025", "payslip_T001_January_2025.pdf"},
		{"A/B 7_May_2024", "payslip_A-B-7_May_2024.pdf"},
		{"../x", "payslip_..-x.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(core.Record{ID: tt.id}); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "Rs. 0.00"},
		{999.5, "Rs. 999.50"},
		{80496, "Rs. 80,496.00"},
		{1234567.891, "Rs. 1,234,567.89"},
		{-1500, "Rs. -1,500.00"},
	}
	for _, tt := range tests {
		if got := money("Rs.", tt.v); got != tt.want {
			t.Errorf("money(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
