package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"autoarbitrage/internal/models"
)

const (
	// Unknown marks a field the portal did not expose. Downstream filters
	// rely on a concrete value, never an absent one.
	Unknown = "N/D"

	// PriceUnknown is the sentinel for currency text that would not parse.
	// A bad price never drops a record; only a missing plate does.
	PriceUnknown = float64(-1)
)

var (
	priceRe = regexp.MustCompile(`-?\d{1,3}(?:\.\d{3})*(?:,\d+)?|-?\d+(?:,\d+)?`)
	digitRe = regexp.MustCompile(`\d+`)
	yearRe  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// ParsePrice converts locale-formatted currency text ("€ 15.000,50") to a
// float: "." is the thousands separator, "," the decimal mark. Unparsable
// text degrades to PriceUnknown instead of aborting the batch.
func ParsePrice(text string) float64 {
	m := priceRe.FindString(text)
	if m == "" {
		return PriceUnknown
	}
	m = strings.ReplaceAll(m, ".", "")
	m = strings.ReplaceAll(m, ",", ".")
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return PriceUnknown
	}
	return v
}

// ParseKm extracts a numeric mileage from portal text like "72.500 km".
// Returns 0 when nothing numeric is present.
func ParseKm(text string) int {
	cleaned := strings.ReplaceAll(text, ".", "")
	m := digitRe.FindString(cleaned)
	if m == "" {
		return 0
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return v
}

// ParseYear pulls a plausible four-digit year out of free text.
func ParseYear(text string) int {
	m := yearRe.FindString(text)
	if m == "" {
		return 0
	}
	v, _ := strconv.Atoi(m)
	return v
}

// Normalize turns a raw portal row into a canonical record tagged with its
// source portal and extraction time. The plate is the business key and is
// canonicalized (uppercase, whitespace stripped) so the same vehicle keys
// identically across portals; rows with an empty plate are dropped
// (ok == false). Everything else degrades gracefully - missing optionals
// become Unknown, a bad price becomes PriceUnknown.
func Normalize(raw models.RawRow, portal string, now time.Time) (models.VehicleRecord, bool) {
	plate := strings.ToUpper(strings.Join(strings.Fields(raw.Plate), ""))
	if plate == "" {
		return models.VehicleRecord{}, false
	}

	rec := models.VehicleRecord{
		Plate:       plate,
		BrandModel:  orUnknown(raw.BrandModel),
		Vin:         orUnknown(raw.Vin),
		Year:        ParseYear(raw.Year),
		Lot:         orUnknown(raw.Lot),
		Location:    orUnknown(raw.Location),
		BasePrice:   ParsePrice(raw.BasePrice),
		AuctionType: orUnknown(raw.AuctionType),
		Km:          orUnknown(raw.Km),
		KmNumeric:   ParseKm(raw.Km),
		Damages:     orUnknown(raw.Damages),
		Status:      orUnknown(raw.Status),
		ImageURL:    strings.TrimSpace(raw.ImageURL),
		Source:      portal,
		ScrapedAt:   now,
	}
	return rec, true
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown
	}
	return s
}

// Aggregate concatenates per-portal result sets in order. No reordering and
// no cross-portal merging: price history should observe every sighting, and
// a vehicle can legitimately reappear across concurrent auctions.
func Aggregate(perPortal ...[]models.VehicleRecord) []models.VehicleRecord {
	var out []models.VehicleRecord
	for _, records := range perPortal {
		out = append(out, records...)
	}
	return out
}

// DedupePolicy is the caller-configurable same-run dedupe behavior.
type DedupePolicy int

const (
	// KeepAll persists every sighting, duplicates included. Default.
	KeepAll DedupePolicy = iota

	// KeepLatestPerPlate keeps only the last sighting of each plate within
	// one aggregated run, preserving first-seen order.
	KeepLatestPerPlate
)

// ApplyDedupe enforces the policy on an aggregated result set.
func ApplyDedupe(records []models.VehicleRecord, policy DedupePolicy) []models.VehicleRecord {
	if policy != KeepLatestPerPlate {
		return records
	}
	latest := make(map[string]models.VehicleRecord, len(records))
	order := make([]string, 0, len(records))
	for _, r := range records {
		if _, seen := latest[r.Plate]; !seen {
			order = append(order, r.Plate)
		}
		latest[r.Plate] = r
	}
	out := make([]models.VehicleRecord, 0, len(order))
	for _, plate := range order {
		out = append(out, latest[plate])
	}
	return out
}
