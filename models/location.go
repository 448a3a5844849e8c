package models

import "fmt"

// Location is one of the supported Navi Mumbai market areas. The zero value
// is not a valid location.
type Location int

const (
	LocationUnknown Location = iota
	Airoli
	Belapur
	CBDBelapur
	Ghansoli
	Juinagar
	Kharghar
	KoparKhairane
	Nerul
	Panvel
	Rabale
	Sanpada
	Taloja
	Ulwe
	Vashi
)

// locationSpec pairs a canonical location with the literal spellings seen in
// listing data. The canonical name is always accepted and need not be listed.
type locationSpec struct {
	Location Location
	Name     string
	Aliases  []string
}

var locationTable = []locationSpec{
	{Airoli, "Airoli", []string{"airoli sector", "airoli navi mumbai"}},
	{Belapur, "Belapur", []string{"belapur navi mumbai"}},
	{CBDBelapur, "CBD Belapur", []string{"c.b.d. belapur", "cbd-belapur", "belapur cbd", "cbdbelapur"}},
	{Ghansoli, "Ghansoli", []string{"ghansoli navi mumbai"}},
	{Juinagar, "Juinagar", []string{"jui nagar"}},
	{Kharghar, "Kharghar", []string{"khargar", "kharghar navi mumbai"}},
	{KoparKhairane, "Kopar Khairane", []string{"koparkhairane", "kopar khairne", "kopar khairna", "kopar-khairane"}},
	{Nerul, "Nerul", []string{"nerul navi mumbai"}},
	{Panvel, "Panvel", []string{"new panvel"}},
	{Rabale, "Rabale", []string{"rabale midc"}},
	{Sanpada, "Sanpada", []string{"sanpada navi mumbai"}},
	{Taloja, "Taloja", []string{"taloja phase 1", "taloja phase 2"}},
	{Ulwe, "Ulwe", []string{"ulwe node"}},
	{Vashi, "Vashi", []string{"vashi navi mumbai"}},
}

// AllLocations returns every supported location in table order.
func AllLocations() []Location {
	out := make([]Location, len(locationTable))
	for i, spec := range locationTable {
		out[i] = spec.Location
	}
	return out
}

// LocationAliases returns the accepted spellings of loc, canonical name first.
func LocationAliases(loc Location) []string {
	for _, spec := range locationTable {
		if spec.Location == loc {
			return append([]string{spec.Name}, spec.Aliases...)
		}
	}
	return nil
}

// LocationByName returns the location whose canonical name is exactly name.
func LocationByName(name string) (Location, bool) {
	for _, spec := range locationTable {
		if spec.Name == name {
			return spec.Location, true
		}
	}
	return LocationUnknown, false
}

// Valid reports whether l is one of the supported locations.
func (l Location) Valid() bool {
	return l > LocationUnknown && int(l) <= len(locationTable)
}

func (l Location) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Location(%d)", int(l))
	}
	return locationTable[l-1].Name
}

// MarshalText encodes the canonical name.
func (l Location) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("models: invalid location %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText accepts a canonical name only. Free text goes through
// services.LocationResolver.
func (l *Location) UnmarshalText(b []byte) error {
	loc, ok := LocationByName(string(b))
	if !ok {
		return fmt.Errorf("models: unknown location %q", string(b))
	}
	*l = loc
	return nil
}
