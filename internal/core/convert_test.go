package core

import "testing"

// ----------------------------------------------------------------------------
// ParseAmount Tests
// ----------------------------------------------------------------------------

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		// Valid: plain numbers
		{name: "integer", input: "50000", want: 50000, wantOK: true},
		{name: "zero", input: "0", want: 0, wantOK: true},
		{name: "decimal", input: "123.45", want: 123.45, wantOK: true},
		{name: "leading decimal point", input: ".99", want: 0.99, wantOK: true},
		{name: "negative", input: "-456", want: -456, wantOK: true},
		{name: "scientific notation", input: "1.5e3", want: 1500, wantOK: true},

		// Valid: surrounding noise
		{name: "surrounding whitespace", input: "  42000  ", want: 42000, wantOK: true},
		{name: "double quoted", input: `"42000"`, want: 42000, wantOK: true},
		{name: "single quoted", input: `'42000'`, want: 42000, wantOK: true},
		{name: "quoted with inner spaces", input: `" 42000 "`, want: 42000, wantOK: true},
		{name: "excel text prefix", input: `="42000"`, want: 42000, wantOK: true},

		// Valid: currency formatting
		{name: "dollar sign", input: "$1,234.50", want: 1234.5, wantOK: true},
		{name: "rupee sign", input: "₹57,700", want: 57700, wantOK: true},
		{name: "rs prefix", input: "Rs. 5,770", want: 5770, wantOK: true},
		{name: "indian grouping", input: "1,82,400", want: 182400, wantOK: true},
		{name: "accounting negative", input: "(200)", want: -200, wantOK: true},

		// Invalid: coerces to zero
		{name: "empty", input: "", want: 0, wantOK: false},
		{name: "whitespace only", input: "   ", want: 0, wantOK: false},
		{name: "text", input: "N/A", want: 0, wantOK: false},
		{name: "dash placeholder", input: "-", want: 0, wantOK: false},
		{name: "mixed text", input: "12abc", want: 0, wantOK: false},
		{name: "two decimal points", input: "1.2.3", want: 0, wantOK: false},
		{name: "overflow", input: "1e400", want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.wantOK {
				t.Errorf("ParseAmount(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoerceAmount_NonNumericIsZero(t *testing.T) {
	for _, input := range []string{"", "abc", "Paid", "--", "₹"} {
		if got := CoerceAmount(input); got != 0 {
			t.Errorf("CoerceAmount(%q) = %v, want 0", input, got)
		}
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "T001", want: "T001"},
		{name: "trims whitespace", input: "  T001\t", want: "T001"},
		{name: "strips double quotes", input: `"Dr. Smith"`, want: "Dr. Smith"},
		{name: "strips single quotes", input: `'Dr. Smith'`, want: "Dr. Smith"},
		{name: "strips only one pair", input: `""x""`, want: `"x"`},
		{name: "mismatched quotes kept", input: `"x'`, want: `"x'`},
		{name: "lone quote kept", input: `"`, want: `"`},
		{name: "excel text prefix", input: `="00123"`, want: "00123"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// NormalizeHeader Tests
// ----------------------------------------------------------------------------

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Staff ID", want: "staffid"},
		{input: "staff_id", want: "staffid"},
		{input: "Staff-Id", want: "staffid"},
		{input: "  Full Name ", want: "fullname"},
		{input: "D.A. 150%", want: "da150%"},
		{input: "Net\tPay", want: "netpay"},
		{input: "", want: ""},
		{input: " - ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeHeader(tt.input); got != tt.want {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
