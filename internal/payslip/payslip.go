// Package payslip renders a salary slip PDF for one payroll record.
package payslip

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/JonMunkholm/payroll-import/internal/core"
)

// Options controls slip headings and currency labels.
type Options struct {
	Title        string // e.g. "Salary Slip"
	Organization string // printed under the title when set
	Currency     string // prefix for amounts, e.g. "Rs."
}

// DefaultOptions are used for empty Options fields.
var DefaultOptions = Options{
	Title:    "Salary Slip",
	Currency: "Rs.",
}

type line struct {
	label  string
	amount float64
}

// Render writes a one-page A4 slip for rec to w.
func Render(w io.Writer, rec core.Record, opts Options) error {
	if opts.Title == "" {
		opts.Title = DefaultOptions.Title
	}
	if opts.Currency == "" {
		opts.Currency = DefaultOptions.Currency
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("payroll-import", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(opts.Title), "", 1, "C", false, 0, "")
	if opts.Organization != "" {
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 7, tr(opts.Organization), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Pay period: %s %s", rec.Month, rec.Year)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	details := [][2]string{
		{"Teacher ID", rec.TeacherID},
		{"Name", rec.TeacherName},
		{"Designation", rec.Designation},
		{"Department", rec.Department},
		{"Pay Scale", rec.PayScale},
		{"Pay Date", rec.PayDate},
		{"Status", rec.Status},
	}
	for _, d := range details {
		if d[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, d[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(d[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	earnings := nonZero([]line{
		{"Basic Pay", rec.RevisedBasicPay},
		{"Dearness Allowance", rec.DA},
		{"DA Arrears", rec.DAArrears},
		{"House Rent Allowance", rec.HRA},
		{"City Compensatory Allowance", rec.CLA},
		{"Additional Allowance", rec.AdditionalAllowance},
	})
	deductions := nonZero([]line{
		{"Professional Tax", rec.ProfessionalTax},
		{"Income Tax", rec.IncomeTax},
		{"Provident Fund", rec.ProvidentFund},
		{"Insurance Premium", rec.InsurancePremium},
		{"Welfare Fund", rec.WelfareFund},
	})

	const (
		labelW  = 60.0
		amountW = 35.0
		rowH    = 7.0
	)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(labelW+amountW, rowH, "Earnings", "1", 0, "C", true, 0, "")
	pdf.CellFormat(labelW+amountW, rowH, "Deductions", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	rows := max(len(earnings), len(deductions))
	for i := 0; i < rows; i++ {
		for _, col := range [][]line{earnings, deductions} {
			if i < len(col) {
				pdf.CellFormat(labelW, rowH, col[i].label, "LR", 0, "L", false, 0, "")
				pdf.CellFormat(amountW, rowH, money(opts.Currency, col[i].amount), "LR", 0, "R", false, 0, "")
			} else {
				pdf.CellFormat(labelW, rowH, "", "LR", 0, "L", false, 0, "")
				pdf.CellFormat(amountW, rowH, "", "LR", 0, "R", false, 0, "")
			}
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, rowH, "Gross Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(amountW, rowH, money(opts.Currency, rec.GrossTotal), "1", 0, "R", false, 0, "")
	pdf.CellFormat(labelW, rowH, "Total Deductions", "1", 0, "L", false, 0, "")
	pdf.CellFormat(amountW, rowH, money(opts.Currency, rec.TotalDeductions), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, "Net Pay: "+money(opts.Currency, rec.NetPay), "1", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, tr("Reference: "+rec.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "This is a computer generated slip and needs no signature.", "", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render payslip %s: %w", rec.ID, err)
	}
	return nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Filename returns a download name for rec's slip.
func Filename(rec core.Record) string {
	return "payslip_" + strings.Trim(unsafeName.ReplaceAllString(rec.ID, "-"), "-") + ".pdf"
}

func nonZero(lines []line) []line {
	out := lines[:0]
	for _, l := range lines {
		if l.amount != 0 {
			out = append(out, l)
		}
	}
	return out
}

// money formats v with two decimals and thousands separators.
func money(currency string, v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s%s.%s", currency, sign, b.String(), frac))
}
