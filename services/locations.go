package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"house-price-estimator/models"
)

// LocationResolver maps free-text location spellings onto the closed set of
// supported locations. It is immutable after construction and safe for
// concurrent use.
type LocationResolver struct {
	exact      map[string]models.Location
	normalised map[string]models.Location
}

// NewLocationResolver builds lookup tables from the static alias table.
func NewLocationResolver() *LocationResolver {
	r := &LocationResolver{
		exact:      make(map[string]models.Location),
		normalised: make(map[string]models.Location),
	}
	for _, loc := range models.AllLocations() {
		for _, alias := range models.LocationAliases(loc) {
			r.exact[alias] = loc
			r.normalised[NormaliseLocationText(alias)] = loc
		}
	}
	return r
}

// Resolve returns the canonical location for raw: an exact literal match
// first, then a match on the normalised form. There is no fuzzy matching.
func (r *LocationResolver) Resolve(raw string) (models.Location, error) {
	if loc, ok := r.exact[raw]; ok {
		return loc, nil
	}
	if key := NormaliseLocationText(raw); key != "" {
		if loc, ok := r.normalised[key]; ok {
			return loc, nil
		}
	}
	return models.LocationUnknown, &UnknownLocationError{Location: raw}
}

// NormaliseLocationText applies NFKC, lower-cases, turns separators into
// spaces, drops other punctuation and collapses whitespace.
//
//	"  KHARGHAR "     → "kharghar"
//	"C.B.D. Belapur"  → "cbd belapur"
//	"Kopar-Khairane"  → "kopar khairane"
func NormaliseLocationText(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r), r == '-', r == '_', r == '/', r == ',':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
