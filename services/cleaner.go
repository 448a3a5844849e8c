package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"house-price-estimator/models"
	"house-price-estimator/utils"
)

// Mode selects the acceptance policy applied by Cleaner.Clean.
type Mode int

const (
	// ModeTraining requires a price and rejects anything implausible; the
	// caller drops the row.
	ModeTraining Mode = iota
	// ModeInference ignores price and only logs range warnings.
	ModeInference
)

func (m Mode) String() string {
	if m == ModeTraining {
		return "training"
	}
	return "inference"
}

// CleanerOptions holds the plausibility bounds. Zero disables a bound.
type CleanerOptions struct {
	AreaMin float64
	AreaMax float64

	PricePerSqftMin float64
	PricePerSqftMax float64

	// Training rows whose price falls outside these quantiles of the
	// accepted prices are trimmed. Both zero disables trimming.
	PriceQuantileLow  float64
	PriceQuantileHigh float64
}

// DefaultCleanerOptions mirrors the bounds the training data was cleaned with.
func DefaultCleanerOptions() CleanerOptions {
	return CleanerOptions{
		AreaMin:         100,
		AreaMax:         10_000,
		PricePerSqftMin: 2_000,
		PricePerSqftMax: 50_000,
	}
}

// Cleaner transforms RawRecords into validated CanonicalRecords. It holds
// no mutable state and is safe for concurrent use.
type Cleaner struct {
	logger   *utils.Logger
	resolver *LocationResolver
	opts     CleanerOptions
}

// NewCleaner creates a Cleaner with the given logger, resolver and bounds.
func NewCleaner(logger *utils.Logger, resolver *LocationResolver, opts CleanerOptions) *Cleaner {
	return &Cleaner{logger: logger, resolver: resolver, opts: opts}
}

// Clean parses every field of raw and applies the acceptance policy of mode.
// The returned error is one of *ParseError, *RangeWarning,
// *UnknownLocationError or *CrossFieldError. Price per square foot bounds
// are a dataset rule and are applied by CleanAll.
func (c *Cleaner) Clean(raw *models.RawRecord, mode Mode) (*models.CanonicalRecord, error) {
	if isMissing(raw.Location) {
		return nil, &ParseError{Field: "location", Value: raw.Location, Reason: reasonMissing}
	}
	loc, err := c.resolver.Resolve(raw.Location)
	if err != nil {
		return nil, err
	}

	area, err := ParseArea(raw.Area, c.opts.AreaMin, c.opts.AreaMax)
	if err != nil {
		var rw *RangeWarning
		if mode == ModeTraining || !errors.As(err, &rw) {
			return nil, err
		}
		c.logger.Warn("[cleaner] %v", rw)
	}

	bhk, err := ParseBHK(raw.BHK)
	if err != nil {
		return nil, err
	}
	baths, err := ParseCount("bathrooms", raw.Bathrooms, 1, 10)
	if err != nil {
		return nil, err
	}
	floor, total, err := ParseFloor(raw.Floor, raw.TotalFloors)
	if err != nil {
		return nil, err
	}
	age, err := ParseAge(raw.Age)
	if err != nil {
		return nil, err
	}
	parking, err := ParseBoolean(raw.Parking)
	if err != nil {
		return nil, relabel(err, "parking")
	}
	lift, err := ParseBoolean(raw.Lift)
	if err != nil {
		return nil, relabel(err, "lift")
	}

	if floor > total {
		return nil, &CrossFieldError{
			Fields: []string{"floor", "total_floors"},
			Detail: fmt.Sprintf("floor %d is above total floors %d", floor, total),
		}
	}

	rec := &models.CanonicalRecord{
		Location:      loc,
		AreaSqft:      area,
		BHK:           bhk,
		Bathrooms:     baths,
		Floor:         floor,
		TotalFloors:   total,
		AgeOfProperty: age,
		Parking:       parking,
		Lift:          lift,
	}

	if mode == ModeTraining {
		price, err := ParsePrice(raw.Price)
		if err != nil {
			return nil, err
		}
		rec.Price = &price
	}

	return rec, nil
}

// CleanRequest cleans a typed estimate request in inference mode.
func (c *Cleaner) CleanRequest(req *models.EstimateRequest) (*models.CanonicalRecord, error) {
	return c.Clean(RequestToRaw(req), ModeInference)
}

// CleanAll cleans a raw dataset in training mode. Rejected rows are dropped
// and counted, never aborting the rest of the dataset. After per-row
// cleaning, prices outside the configured quantiles are trimmed and then
// rows with an implausible price per square foot are dropped.
func (c *Cleaner) CleanAll(raw []*models.RawRecord) *models.TrainingTable {
	table := &models.TrainingTable{
		SourceRows: len(raw),
		Accepted:   make([]*models.CanonicalRecord, 0, len(raw)),
		DropCounts: make(map[string]int),
		CleanedAt:  time.Now(),
	}
	rows := make([]int, 0, len(raw))

	for i, r := range raw {
		row := r.Row
		if row == 0 {
			row = i + 1
		}
		rec, err := c.Clean(r, ModeTraining)
		if err != nil {
			drop := droppedRow(row, err)
			c.logger.Debug("[cleaner] Dropping row %d (%s): %v", row, drop.Reason, err)
			table.Dropped = append(table.Dropped, drop)
			table.DropCounts[drop.Reason]++
			continue
		}
		table.Accepted = append(table.Accepted, rec)
		rows = append(rows, row)
	}

	rows = c.trimPriceOutliers(table, rows)
	c.dropImplausiblePricePerSqft(table, rows)

	c.logger.Info("[cleaner] Cleaned %d → %d rows (dropped %d)",
		table.SourceRows, len(table.Accepted), len(table.Dropped))
	for reason, n := range table.DropCounts {
		c.logger.Info("[cleaner]   %-16s %d", reason, n)
	}
	return table
}

// trimPriceOutliers removes accepted rows outside the configured price
// quantiles. rows holds the source row number of each accepted record; the
// row numbers of the kept records are returned.
func (c *Cleaner) trimPriceOutliers(table *models.TrainingTable, rows []int) []int {
	lowQ, highQ := c.opts.PriceQuantileLow, c.opts.PriceQuantileHigh
	if (lowQ <= 0 && highQ <= 0) || len(table.Accepted) < 2 {
		return rows
	}
	if highQ <= 0 || highQ > 1 {
		highQ = 1
	}

	prices := make([]float64, len(table.Accepted))
	for i, rec := range table.Accepted {
		prices[i] = *rec.Price
	}
	sort.Float64s(prices)
	lo, hi := quantile(prices, lowQ), quantile(prices, highQ)

	kept := table.Accepted[:0]
	keptRows := rows[:0]
	for i, rec := range table.Accepted {
		if p := *rec.Price; p < lo || p > hi {
			table.Dropped = append(table.Dropped, models.DroppedRow{
				Row:    rows[i],
				Reason: "price_outlier",
				Field:  "price",
				Value:  strconv.FormatFloat(p, 'f', -1, 64),
				Err:    fmt.Sprintf("price outside [%g, %g]", lo, hi),
			})
			table.DropCounts["price_outlier"]++
			continue
		}
		kept = append(kept, rec)
		keptRows = append(keptRows, rows[i])
	}
	table.Accepted = kept
	return keptRows
}

// dropImplausiblePricePerSqft removes accepted rows whose price per square
// foot lies outside the configured bounds.
func (c *Cleaner) dropImplausiblePricePerSqft(table *models.TrainingTable, rows []int) {
	lo, hi := c.opts.PricePerSqftMin, c.opts.PricePerSqftMax
	if lo <= 0 && hi <= 0 {
		return
	}
	kept := table.Accepted[:0]
	for i, rec := range table.Accepted {
		if ppsf := rec.PricePerSqft(); (lo > 0 && ppsf < lo) || (hi > 0 && ppsf > hi) {
			drop := droppedRow(rows[i], &RangeWarning{Field: "price_per_sqft", Value: ppsf, Min: lo, Max: hi})
			c.logger.Debug("[cleaner] Dropping row %d (%s): %s", drop.Row, drop.Reason, drop.Err)
			table.Dropped = append(table.Dropped, drop)
			table.DropCounts[drop.Reason]++
			continue
		}
		kept = append(kept, rec)
	}
	table.Accepted = kept
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	i := int(math.Floor(pos))
	frac := pos - float64(i)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

func droppedRow(row int, err error) models.DroppedRow {
	d := models.DroppedRow{Row: row, Reason: dropReason(err), Err: err.Error()}

	var pe *ParseError
	var rw *RangeWarning
	var ul *UnknownLocationError
	var cf *CrossFieldError
	switch {
	case errors.As(err, &pe):
		d.Field, d.Value = pe.Field, pe.Value
	case errors.As(err, &rw):
		d.Field, d.Value = rw.Field, strconv.FormatFloat(rw.Value, 'f', -1, 64)
	case errors.As(err, &ul):
		d.Field, d.Value = "location", ul.Location
	case errors.As(err, &cf):
		d.Field = strings.Join(cf.Fields, ",")
	}
	return d
}

func relabel(err error, field string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Field = field
	}
	return err
}

// RequestToRaw renders a typed request in the raw text form the parsers read.
func RequestToRaw(req *models.EstimateRequest) *models.RawRecord {
	return &models.RawRecord{
		Location:    req.Location,
		Area:        formatFloat(req.AreaSqft),
		BHK:         strconv.Itoa(req.BHK),
		Bathrooms:   strconv.Itoa(req.Bathrooms),
		Floor:       strconv.Itoa(req.Floor),
		TotalFloors: strconv.Itoa(req.TotalFloors),
		Age:         formatFloat(req.AgeOfProperty),
		Parking:     formatBool(req.Parking),
		Lift:        formatBool(req.Lift),
	}
}

// FormatRaw renders a canonical record back into listing text. Cleaning the
// result yields an identical record.
func FormatRaw(rec *models.CanonicalRecord) *models.RawRecord {
	raw := &models.RawRecord{
		Location:  rec.Location.String(),
		Area:      formatFloat(rec.AreaSqft) + " sqft",
		BHK:       strconv.Itoa(rec.BHK) + " BHK",
		Bathrooms: strconv.Itoa(rec.Bathrooms),
		Floor:     fmt.Sprintf("%d of %d", rec.Floor, rec.TotalFloors),
		Age:       formatFloat(rec.AgeOfProperty),
		Parking:   formatBool(rec.Parking),
		Lift:      formatBool(rec.Lift),
	}
	if rec.Floor == 0 {
		raw.Floor = fmt.Sprintf("Ground of %d", rec.TotalFloors)
	}
	if rec.Price != nil {
		raw.Price = "₹" + formatFloat(*rec.Price)
	}
	return raw
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
