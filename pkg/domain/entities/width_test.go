package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseWidth(t *testing.T) {
	tests := []struct {
		input   string
		want    Width
		wantErr bool
	}{
		{"118.00", 11800, false},
		{"23.5", 2350, false},
		{"25", 2500, false},
		{"0.01", 1, false},
		{"23.505", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseWidth(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseWidth(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWidth(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWidth(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestWidthFromDecimalRejectsSubHundredths(t *testing.T) {
	d := decimal.RequireFromString("10.001")
	if _, err := WidthFromDecimal(d); err == nil {
		t.Error("expected error for three decimal places")
	}
}

func TestWidthString(t *testing.T) {
	if got := MustWidth("23.5").String(); got != "23.50" {
		t.Errorf("String() = %q, want %q", got, "23.50")
	}
	if got := Width(11800).String(); got != "118.00" {
		t.Errorf("String() = %q, want %q", got, "118.00")
	}
}

func TestWidthArithmeticIsExact(t *testing.T) {
	// 0.1-style float issues must not appear in hundredths arithmetic.
	sum := MustWidth("23.50") + MustWidth("94.50")
	if sum != MustWidth("118.00") {
		t.Errorf("23.50 + 94.50 = %s, want 118.00", sum)
	}
}

func TestWidthFromFloatRounds(t *testing.T) {
	if got := WidthFromFloat(23.499999); got != 2350 {
		t.Errorf("WidthFromFloat(23.499999) = %d, want 2350", got)
	}
}
