package services

import (
	"errors"
	"math"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"15.3 L", 1_530_000},
		{"15.3 Lakh", 1_530_000},
		{"45 lakhs", 4_500_000},
		{"1.5 Cr", 15_000_000},
		{"1.5 crore", 15_000_000},
		{"2CR", 20_000_000},
		{"₹1,52,99,000", 15_299_000},
		{"15000000 INR", 15_000_000},
		{"â‚¹15000000", 15_000_000},
		{"Rs. 85 Lac", 8_500_000},
		{"24426717", 24_426_717},
		{"  9,999,999.50 ", 9_999_999.5},
		{"1.5e7", 15_000_000},
		{"1.53E+07", 15_300_000},
		{"2.4e1 L", 2_400_000},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.raw)
		if err != nil {
			t.Errorf("ParsePrice(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParsePriceRejects(t *testing.T) {
	for _, raw := range []string{"", "NaN", "-1000", "0", "0 L", "price on request", "12 apples", "1.5.2", "1e400", "1.5e"} {
		_, err := ParsePrice(raw)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParsePrice(%q) error = %v; want *ParseError", raw, err)
			continue
		}
		if pe.Field != "price" {
			t.Errorf("ParsePrice(%q) field = %q; want price", raw, pe.Field)
		}
	}
}

func TestParsePriceNotationsAgree(t *testing.T) {
	grouped, err := ParsePrice("₹1,52,99,000")
	if err != nil {
		t.Fatal(err)
	}
	crores, err := ParsePrice("1.53 Cr")
	if err != nil {
		t.Fatal(err)
	}
	if diff := math.Abs(grouped-crores) / crores; diff > 0.01 {
		t.Errorf("₹1,52,99,000 = %.0f and 1.53 Cr = %.0f differ by %.2f%%", grouped, crores, diff*100)
	}
}

func TestParseArea(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"1200", 1200},
		{"1,200 sq.ft", 1200},
		{"950 sqft", 950},
		{"850 Sq Ft", 850},
		{"640.5 sq. ft.", 640.5},
		{"700 sft", 700},
		{"1.2e3", 1200},
		{"1.2E+03 sqft", 1200},
	}
	for _, tt := range tests {
		got, err := ParseArea(tt.raw, 100, 10_000)
		if err != nil {
			t.Errorf("ParseArea(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseArea(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParseAreaFailures(t *testing.T) {
	for _, raw := range []string{"-5", "0", "big", "", "12 acres"} {
		_, err := ParseArea(raw, 100, 10_000)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseArea(%q) error = %v; want *ParseError", raw, err)
		}
	}
}

func TestParseAreaRangeWarning(t *testing.T) {
	for _, tt := range []struct {
		raw  string
		want float64
	}{{"50", 50}, {"25000 sqft", 25000}} {
		got, err := ParseArea(tt.raw, 100, 10_000)
		var rw *RangeWarning
		if !errors.As(err, &rw) {
			t.Errorf("ParseArea(%q) error = %v; want *RangeWarning", tt.raw, err)
			continue
		}
		if got != tt.want || rw.Value != tt.want {
			t.Errorf("ParseArea(%q) = %v (warning value %v); want %v", tt.raw, got, rw.Value, tt.want)
		}
	}

	// Zero bounds disable the check.
	if _, err := ParseArea("50", 0, 0); err != nil {
		t.Errorf("ParseArea without bounds: %v", err)
	}
}

func TestParseBHK(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"2", 2},
		{"2 BHK", 2},
		{"2BHK", 2},
		{"3-bhk", 3},
		{"4.0", 4},
		{" 10 ", 10},
	}
	for _, tt := range tests {
		got, err := ParseBHK(tt.raw)
		if err != nil || got != tt.want {
			t.Errorf("ParseBHK(%q) = %d, %v; want %d", tt.raw, got, err, tt.want)
		}
	}
	for _, raw := range []string{"", "BHK", "0", "11", "two"} {
		if _, err := ParseBHK(raw); err == nil {
			t.Errorf("ParseBHK(%q) accepted", raw)
		}
	}
}

func TestParseFloor(t *testing.T) {
	tests := []struct {
		raw, hint   string
		floor, total int
	}{
		{"5 of 12", "", 5, 12},
		{"5/12", "", 5, 12},
		{"3 out of 7", "", 3, 7},
		{"Ground", "10", 0, 10},
		{"ground floor", "4", 0, 4},
		{"Ground of 4", "", 0, 4},
		{"7", "15", 7, 15},
		{"7", "15.0", 7, 15},
		{"200 of 200", "", 200, 200},
		// The floor/total contradiction is the cleaner's concern.
		{"15", "10", 15, 10},
	}
	for _, tt := range tests {
		floor, total, err := ParseFloor(tt.raw, tt.hint)
		if err != nil {
			t.Errorf("ParseFloor(%q, %q) error: %v", tt.raw, tt.hint, err)
			continue
		}
		if floor != tt.floor || total != tt.total {
			t.Errorf("ParseFloor(%q, %q) = (%d, %d); want (%d, %d)",
				tt.raw, tt.hint, floor, total, tt.floor, tt.total)
		}
	}
}

func TestParseFloorFailures(t *testing.T) {
	tests := []struct {
		raw, hint, field string
	}{
		{"5", "", "total_floors"},
		{"Ground", "NaN", "total_floors"},
		{"5", "0", "total_floors"},
		{"5 of 0", "", "total_floors"},
		{"penthouse", "10", "floor"},
		{"-1", "10", "floor"},
		{"", "10", "floor"},
		{"2147483647", "10", "floor"},
		{"201", "300", "floor"},
		{"5", "2147483647", "total_floors"},
		{"5 of 500", "", "total_floors"},
	}
	for _, tt := range tests {
		_, _, err := ParseFloor(tt.raw, tt.hint)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseFloor(%q, %q) error = %v; want *ParseError", tt.raw, tt.hint, err)
			continue
		}
		if pe.Field != tt.field {
			t.Errorf("ParseFloor(%q, %q) field = %q; want %q", tt.raw, tt.hint, pe.Field, tt.field)
		}
	}
}

func TestParseBoolean(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"Yes", true}, {"yes", true}, {"Y", true}, {"1", true}, {"TRUE", true},
		{"No", false}, {"no", false}, {"N", false}, {"0", false}, {" false ", false},
	}
	for _, tt := range tests {
		got, err := ParseBoolean(tt.raw)
		if err != nil || got != tt.want {
			t.Errorf("ParseBoolean(%q) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
	for _, raw := range []string{"", "maybe", "2", "yess", "NaN"} {
		_, err := ParseBoolean(raw)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseBoolean(%q) error = %v; want *ParseError", raw, err)
		}
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"5", 5},
		{"0", 0},
		{"3.5 years", 3.5},
		{"12 yrs old", 12},
		{"New", 0},
		{"Under Construction", 0},
		{"under  construction", 0},
	}
	for _, tt := range tests {
		got, err := ParseAge(tt.raw)
		if err != nil || got != tt.want {
			t.Errorf("ParseAge(%q) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
	for _, raw := range []string{"", "-1", "old", "recently", "101", "1e6 years"} {
		_, err := ParseAge(raw)
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Field != "age_of_property" {
			t.Errorf("ParseAge(%q) error = %v; want age_of_property *ParseError", raw, err)
		}
	}
	if got, err := ParseAge("100"); err != nil || got != 100 {
		t.Errorf("ParseAge(100) = %v, %v; want 100", got, err)
	}
}

func TestParseCount(t *testing.T) {
	if n, err := ParseCount("bathrooms", "2", 1, 10); err != nil || n != 2 {
		t.Errorf("ParseCount(2) = %d, %v", n, err)
	}
	if n, err := ParseCount("bathrooms", "3.0", 1, 10); err != nil || n != 3 {
		t.Errorf("ParseCount(3.0) = %d, %v", n, err)
	}
	for _, raw := range []string{"0", "2.5", "x", "", "11"} {
		_, err := ParseCount("bathrooms", raw, 1, 10)
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Field != "bathrooms" {
			t.Errorf("ParseCount(%q) error = %v; want bathrooms *ParseError", raw, err)
		}
	}
}
