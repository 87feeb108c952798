package models

import "time"

// Credential holds the login pair for one portal. It is supplied by the
// caller for a single scrape run and never persisted.
type Credential struct {
	Portal   string `json:"portal"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// AuctionListing is a browsable sale event on catalog-style portals.
// Flat-table portals have no auctions; their adapter reports a single
// implicit container instead.
type AuctionListing struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Title        string `json:"title"`
	EndDate      string `json:"endDate"`
	VehicleCount int    `json:"vehicleCount"`
}

// RawRow is one vehicle row as extracted from portal markup, before any
// normalization. Empty string means the field was not found on the page.
type RawRow struct {
	BrandModel  string
	Plate       string
	Vin         string
	Year        string
	Lot         string
	Location    string
	BasePrice   string
	AuctionType string
	Km          string
	Damages     string
	Status      string
	ImageURL    string
}

// VehicleRecord is the canonical extracted unit. Plate is the business key;
// records without a plate are dropped during normalization and rejected by
// the store.
type VehicleRecord struct {
	Plate       string    `json:"plate"`
	BrandModel  string    `json:"brandModel"`
	Vin         string    `json:"vin"`
	Year        int       `json:"year"`
	Lot         string    `json:"lot"`
	Location    string    `json:"location"`
	BasePrice   float64   `json:"basePrice"`
	AuctionType string    `json:"auctionType"`
	Km          string    `json:"km"`                  // as shown on the portal, e.g. "72.500"
	KmNumeric   int       `json:"kmNumeric,omitempty"` // parsed version for filtering
	Damages     string    `json:"damages"`
	Status      string    `json:"status"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Source      string    `json:"source"`
	ScrapedAt   time.Time `json:"scrapedAt"`
}

// PriceHistoryEntry is one observed price for a vehicle. Entries are only
// ever appended, one per successful save of the owning record.
type PriceHistoryEntry struct {
	Price      float64   `json:"price"`
	Source     string    `json:"source"`
	CapturedAt time.Time `json:"capturedAt"`
}

// VehicleHistory is a vehicle with its price sightings, newest first.
type VehicleHistory struct {
	VehicleRecord
	History []PriceHistoryEntry `json:"priceHistory"`
}

// BatchResult reports the per-record outcome of one persisted batch.
type BatchResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}
