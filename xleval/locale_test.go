package xleval

import (
	"testing"

	"golang.org/x/text/language"
)

func TestDefaultCulture(t *testing.T) {
	if DefaultCulture.Decimal != '.' {
		t.Errorf("DefaultCulture.Decimal = %q, want '.'", DefaultCulture.Decimal)
	}
	if DefaultCulture.Group != ',' {
		t.Errorf("DefaultCulture.Group = %q, want ','", DefaultCulture.Group)
	}
	if got := DefaultCulture.String(); got != "en-US" {
		t.Errorf("DefaultCulture.String() = %q, want %q", got, "en-US")
	}
}

func TestGermanCulture(t *testing.T) {
	nc := NewNumberCulture(language.German)
	if nc.Decimal != ',' || nc.Group != '.' {
		t.Errorf("German separators = %q %q, want ',' '.'", nc.Decimal, nc.Group)
	}
}

func TestParseCultureRejectsGarbage(t *testing.T) {
	if _, err := ParseCulture("not a locale!"); err == nil {
		t.Error("ParseCulture(\"not a locale!\") succeeded, want error")
	}
}

func TestParseNumber(t *testing.T) {
	en := DefaultCulture
	de := NewNumberCulture(language.German)

	tests := []struct {
		culture *NumberCulture
		input   string
		want    float64
		ok      bool
	}{
		{en, "3", 3, true},
		{en, "3.1", 3.1, true},
		{en, "+3.1", 3.1, true},
		{en, "-.5", -0.5, true},
		{en, "1,234,567.25", 1234567.25, true},
		{en, "1E3", 1000, true},
		{en, "2.5e-1", 0.25, true},
		{en, "25 %", 0.25, true},
		{en, "  7  ", 7, true},
		{en, "1,2345", 0, false},
		{en, ",123", 0, false},
		{en, "1.2.3", 0, false},
		{en, "1e", 0, false},
		{en, "e5", 0, false},
		{en, "0x10", 0, false},
		{en, "Inf", 0, false},
		{en, "NaN", 0, false},
		{en, "1e400", 0, false},
		{en, "-", 0, false},
		{en, ".", 0, false},
		{de, "3,1", 3.1, true},
		{de, "1.234,5", 1234.5, true},
		{de, "3.1", 0, false},
	}
	for _, tt := range tests {
		got, ok := tt.culture.ParseNumber(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("%s ParseNumber(%q) = %v, %v, want %v, %v", tt.culture, tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
