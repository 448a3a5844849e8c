package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const reasonMissing = "missing"

const (
	lakh  = 100_000
	crore = 10_000_000
)

// Upper bounds that keep parsed values inside the storage column types.
const (
	maxFloors = 200
	maxAge    = 100
)

// numeral matches plain decimals and exponent notation ("1.53e+07") as
// written by spreadsheet exports.
const numeral = `(-?\d*\.?\d+(?:e[+-]?\d+)?)`

var (
	// currencyReplacer drops rupee symbols (including the UTF-8-as-Latin-1
	// mojibake common in exported spreadsheets) and digit grouping commas.
	currencyReplacer = strings.NewReplacer("₹", "", "â‚¹", "", ",", "")
	// priceRegexp captures an optional "Rs"/"INR" prefix, the numeral and an
	// optional multiplier or currency suffix.
	priceRegexp = regexp.MustCompile(`^(?:rs\.?|inr)?\s*` + numeral + `\s*(l|lac|lacs|lakh|lakhs|cr|crore|crores|inr)?$`)
	// areaRegexp captures the numeral before an optional square-feet unit.
	areaRegexp = regexp.MustCompile(`^` + numeral + `\s*(?:sq\.?\s*ft\.?|sqft|sft|sq\.?\s*feet|square\s+feet)?$`)
	// bhkRegexp matches "2", "2 BHK", "2BHK", "2-BHK".
	bhkRegexp = regexp.MustCompile(`^(\d+(?:\.0+)?)\s*-?\s*(?:bhk)?$`)
	// floorOfRegexp matches "5 of 12", "5/12", "Ground of 4", "3 out of 7".
	floorOfRegexp = regexp.MustCompile(`^(ground(?:\s+floor)?|gf|g|\d+(?:\.0+)?)\s*(?:of|out\s+of|/)\s*(\d+(?:\.0+)?)$`)
	// ageRegexp matches "5", "5.5 years", "3 yrs old".
	ageRegexp = regexp.MustCompile(`^` + numeral + `\s*(?:yrs?|years?)?(?:\s+old)?$`)
)

var missingTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "<nil>": {}, "null": {}, "none": {},
}

var groundTokens = map[string]struct{}{
	"ground": {}, "ground floor": {}, "gf": {}, "g": {},
}

var newPropertyTokens = map[string]struct{}{
	"new": {}, "new construction": {}, "under construction": {}, "ready to move": {},
}

var (
	trueTokens  = map[string]struct{}{"yes": {}, "y": {}, "1": {}, "true": {}}
	falseTokens = map[string]struct{}{"no": {}, "n": {}, "0": {}, "false": {}}
)

func isMissing(s string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// normaliseToken lower-cases s and collapses runs of whitespace.
func normaliseToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ParsePrice converts listing price text to rupees. It understands lakh and
// crore suffixes, rupee symbols and Indian digit grouping.
//
//	"15.3 L"        → 1,530,000
//	"1.5 Cr"        → 15,000,000
//	"₹1,52,99,000"  → 15,299,000
//	"24456626 INR"  → 24,456,626
//	"1.53E+07"      → 15,300,000
func ParsePrice(s string) (float64, error) {
	if isMissing(s) {
		return 0, &ParseError{Field: "price", Value: s, Reason: reasonMissing}
	}
	cleaned := normaliseToken(currencyReplacer.Replace(s))
	m := priceRegexp.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, &ParseError{Field: "price", Value: s, Reason: "not a price"}
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, &ParseError{Field: "price", Value: s, Reason: err.Error()}
	}
	switch m[2] {
	case "l", "lac", "lacs", "lakh", "lakhs":
		v = round2(v * lakh)
	case "cr", "crore", "crores":
		v = round2(v * crore)
	}

	if v <= 0 || math.IsInf(v, 0) {
		return 0, &ParseError{Field: "price", Value: s, Reason: "must be positive"}
	}
	return v, nil
}

// ParseArea converts area text to square feet. A value outside [min, max]
// is returned together with a *RangeWarning; bounds of zero disable the
// corresponding check.
func ParseArea(s string, min, max float64) (float64, error) {
	if isMissing(s) {
		return 0, &ParseError{Field: "area_sqft", Value: s, Reason: reasonMissing}
	}
	m := areaRegexp.FindStringSubmatch(normaliseToken(strings.ReplaceAll(s, ",", "")))
	if m == nil {
		return 0, &ParseError{Field: "area_sqft", Value: s, Reason: "not an area"}
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, &ParseError{Field: "area_sqft", Value: s, Reason: err.Error()}
	}
	if v <= 0 || math.IsInf(v, 0) {
		return 0, &ParseError{Field: "area_sqft", Value: s, Reason: "must be positive"}
	}
	if (min > 0 && v < min) || (max > 0 && v > max) {
		return v, &RangeWarning{Field: "area_sqft", Value: v, Min: min, Max: max}
	}
	return v, nil
}

// ParseBHK extracts the bedroom count from "2", "2 BHK", "2BHK" or "2-BHK".
func ParseBHK(s string) (int, error) {
	if isMissing(s) {
		return 0, &ParseError{Field: "bhk", Value: s, Reason: reasonMissing}
	}
	m := bhkRegexp.FindStringSubmatch(normaliseToken(s))
	if m == nil {
		return 0, &ParseError{Field: "bhk", Value: s, Reason: "no bedroom count"}
	}
	n, err := parseWhole(m[1])
	if err != nil {
		return 0, &ParseError{Field: "bhk", Value: s, Reason: err.Error()}
	}
	if n < 1 || n > 10 {
		return 0, &ParseError{Field: "bhk", Value: s, Reason: "must be between 1 and 10"}
	}
	return n, nil
}

// ParseCount parses a whole-number field such as bathrooms within [min, max].
func ParseCount(field, s string, min, max int) (int, error) {
	if isMissing(s) {
		return 0, &ParseError{Field: field, Value: s, Reason: reasonMissing}
	}
	n, err := parseWhole(strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Field: field, Value: s, Reason: "not a whole number"}
	}
	if n < min || n > max {
		return 0, &ParseError{Field: field, Value: s,
			Reason: "must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)}
	}
	return n, nil
}

// ParseFloor returns the floor and the building's total floors. s may be a
// bare floor ("5", "Ground") whose total comes from totalHint, or a combined
// "<floor> of <total>" / "<floor>/<total>". The floor ≤ total rule is checked
// by the cleaner, not here.
func ParseFloor(s, totalHint string) (int, int, error) {
	if isMissing(s) {
		return 0, 0, &ParseError{Field: "floor", Value: s, Reason: reasonMissing}
	}
	tok := normaliseToken(s)

	if m := floorOfRegexp.FindStringSubmatch(tok); m != nil {
		floor, err := parseFloorToken(m[1])
		if err != nil {
			return 0, 0, &ParseError{Field: "floor", Value: s, Reason: err.Error()}
		}
		total, err := parseWhole(m[2])
		if err != nil || total < 1 {
			return 0, 0, &ParseError{Field: "total_floors", Value: s, Reason: "must be a positive whole number"}
		}
		if total > maxFloors {
			return 0, 0, &ParseError{Field: "total_floors", Value: s, Reason: "must be at most " + strconv.Itoa(maxFloors)}
		}
		return floor, total, nil
	}

	floor, err := parseFloorToken(tok)
	if err != nil {
		return 0, 0, &ParseError{Field: "floor", Value: s, Reason: err.Error()}
	}
	if isMissing(totalHint) {
		return 0, 0, &ParseError{Field: "total_floors", Value: totalHint, Reason: "cannot determine total floors"}
	}
	total, err := parseWhole(strings.TrimSpace(totalHint))
	if err != nil || total < 1 {
		return 0, 0, &ParseError{Field: "total_floors", Value: totalHint, Reason: "must be a positive whole number"}
	}
	if total > maxFloors {
		return 0, 0, &ParseError{Field: "total_floors", Value: totalHint, Reason: "must be at most " + strconv.Itoa(maxFloors)}
	}
	return floor, total, nil
}

func parseFloorToken(tok string) (int, error) {
	if _, ok := groundTokens[tok]; ok {
		return 0, nil
	}
	n, err := parseWhole(tok)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNegative
	}
	if n > maxFloors {
		return 0, errTooHigh
	}
	return n, nil
}

// ParseBoolean accepts yes/y/1/true and no/n/0/false in any case.
func ParseBoolean(s string) (bool, error) {
	tok := strings.ToLower(strings.TrimSpace(s))
	if _, ok := trueTokens[tok]; ok {
		return true, nil
	}
	if _, ok := falseTokens[tok]; ok {
		return false, nil
	}
	reason := "not a yes/no value"
	if isMissing(s) {
		reason = reasonMissing
	}
	return false, &ParseError{Field: "boolean", Value: s, Reason: reason}
}

// ParseAge converts the property age to years. "New" and "Under
// Construction" are age 0.
func ParseAge(s string) (float64, error) {
	if isMissing(s) {
		return 0, &ParseError{Field: "age_of_property", Value: s, Reason: reasonMissing}
	}
	tok := normaliseToken(s)
	if _, ok := newPropertyTokens[tok]; ok {
		return 0, nil
	}
	m := ageRegexp.FindStringSubmatch(tok)
	if m == nil {
		return 0, &ParseError{Field: "age_of_property", Value: s, Reason: "not an age"}
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, &ParseError{Field: "age_of_property", Value: s, Reason: err.Error()}
	}
	if v < 0 || math.IsInf(v, 0) {
		return 0, &ParseError{Field: "age_of_property", Value: s, Reason: "must not be negative"}
	}
	if v > maxAge {
		return 0, &ParseError{Field: "age_of_property", Value: s, Reason: "must be at most " + strconv.Itoa(maxAge) + " years"}
	}
	return v, nil
}

type parseErr string

func (e parseErr) Error() string { return string(e) }

const (
	errNotWhole parseErr = "not a whole number"
	errNegative parseErr = "must not be negative"
	errTooHigh  parseErr = "must be at most 200"
)

// parseWhole accepts "12" and spreadsheet-style "12.0".
func parseWhole(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, errNotWhole
	}
	return int(f), nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
