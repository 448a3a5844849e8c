package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"house-price-estimator/models"
)

// LocationIndex holds per-location market statistics computed once from the
// accepted training rows. It is read-only after BuildLocationIndex returns.
type LocationIndex struct {
	stats map[models.Location]models.LocationStats
	order []models.LocationStats
	rows  int
}

// BuildLocationIndex groups rows by location. Rows without a price or a
// valid location are ignored. Prices are rounded to whole rupees.
func BuildLocationIndex(rows []*models.CanonicalRecord) *LocationIndex {
	type acc struct {
		prices   []float64
		ppsfSum  float64
		priceSum float64
	}
	groups := make(map[models.Location]*acc)

	idx := &LocationIndex{stats: make(map[models.Location]models.LocationStats)}
	for _, r := range rows {
		if r.Price == nil || !r.Location.Valid() || r.AreaSqft <= 0 {
			continue
		}
		g := groups[r.Location]
		if g == nil {
			g = &acc{}
			groups[r.Location] = g
		}
		g.prices = append(g.prices, *r.Price)
		g.priceSum += *r.Price
		// Mean of per-row ratios, not ratio of means.
		g.ppsfSum += *r.Price / r.AreaSqft
		idx.rows++
	}

	for loc, g := range groups {
		sort.Float64s(g.prices)
		n := float64(len(g.prices))
		st := models.LocationStats{
			Name:            loc.String(),
			AvgPrice:        math.Round(g.priceSum / n),
			MedianPrice:     math.Round(median(g.prices)),
			AvgPricePerSqft: math.Round(g.ppsfSum / n),
			MinPrice:        math.Round(g.prices[0]),
			MaxPrice:        math.Round(g.prices[len(g.prices)-1]),
			DataPoints:      len(g.prices),
		}
		idx.stats[loc] = st
		idx.order = append(idx.order, st)
	}
	sort.Slice(idx.order, func(i, j int) bool {
		return idx.order[i].Name < idx.order[j].Name
	})
	return idx
}

// Lookup returns the statistics of loc, or *UnknownLocationError when the
// location has no training rows.
func (idx *LocationIndex) Lookup(loc models.Location) (models.LocationStats, error) {
	st, ok := idx.stats[loc]
	if !ok {
		name := fmt.Sprintf("%d", int(loc))
		if loc.Valid() {
			name = loc.String()
		}
		return models.LocationStats{}, &UnknownLocationError{Location: name}
	}
	return st, nil
}

// List returns every location with data, ordered by name. The slice is a copy.
func (idx *LocationIndex) List() []models.LocationStats {
	out := make([]models.LocationStats, len(idx.order))
	copy(out, idx.order)
	return out
}

// Rows is the number of training rows the index was built from.
func (idx *LocationIndex) Rows() int { return idx.rows }

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// PrintReport writes a terminal summary of the index, busiest location first.
func (idx *LocationIndex) PrintReport(w io.Writer) {
	PrintLocationReport(w, idx.List())
}

// PrintLocationReport writes a terminal summary of stats, busiest location
// first. The training row total is the sum of the data points.
func PrintLocationReport(w io.Writer, stats []models.LocationStats) {
	sep := strings.Repeat("═", 72)
	thin := strings.Repeat("─", 72)

	rows := 0
	for _, st := range stats {
		rows += st.DataPoints
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  NAVI MUMBAI MARKET BY LOCATION\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "  Training rows : \033[1m%d\033[0m\n", rows)
	fmt.Fprintf(w, "  Locations     : \033[1m%d\033[0m\n\n", len(stats))

	if len(stats) == 0 {
		fmt.Fprintf(w, "  No location data\n")
		fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	byCount := append([]models.LocationStats(nil), stats...)
	sort.SliceStable(byCount, func(i, j int) bool {
		return byCount[i].DataPoints > byCount[j].DataPoints
	})

	fmt.Fprintf(w, "  %-16s %6s %14s %14s %10s\n", "Location", "Rows", "Median", "Average", "₹/sqft")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, st := range byCount {
		fmt.Fprintf(w, "  %-16s %6d %14s %14s %10.0f\n",
			truncate(st.Name, 16), st.DataPoints, formatRupees(st.MedianPrice),
			formatRupees(st.AvgPrice), st.AvgPricePerSqft)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// formatRupees renders large amounts in lakh or crore.
func formatRupees(v float64) string {
	switch {
	case v >= crore:
		return fmt.Sprintf("₹%.2f Cr", v/crore)
	case v >= lakh:
		return fmt.Sprintf("₹%.2f L", v/lakh)
	default:
		return fmt.Sprintf("₹%.0f", v)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
