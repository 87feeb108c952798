package database

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autoarbitrage/internal/models"
	"autoarbitrage/internal/pipeline"
)

// The schema file is read relative to the repository root.
func TestMain(m *testing.M) {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	root := filepath.Join(cwd, "..", "..")
	if err := os.Chdir(root); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func record(plate string, price float64, at time.Time) models.VehicleRecord {
	return models.VehicleRecord{
		Plate:       plate,
		BrandModel:  "FIAT PANDA 1.2",
		Vin:         "ZFA3120000J123456",
		Year:        2019,
		Lot:         "L-42",
		Location:    "Roma",
		BasePrice:   price,
		AuctionType: "Asta",
		Km:          "72.500",
		KmNumeric:   72500,
		Damages:     "graffi paraurti",
		Status:      "attiva",
		Source:      "clickar",
		ScrapedAt:   at,
	}
}

func TestSaveBatchCounts(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	batch := []models.VehicleRecord{
		record("AA111AA", 1000, now),
		record("BB222BB", 2000, now),
		record("", 3000, now), // violates the plate constraint
	}

	result := db.SaveBatch(batch)
	if result.Success != 2 || result.Failed != 1 {
		t.Fatalf("expected 2 ok / 1 failed, got %+v", result)
	}
	if result.Success+result.Failed != len(batch) {
		t.Fatalf("counts must cover the whole batch")
	}
	if !strings.Contains(logged.String(), "Failed to save vehicle") {
		t.Fatalf("expected the failed record to be logged, got %q", logged.String())
	}

	n, err := db.CountVehicles()
	if err != nil || n != 2 {
		t.Fatalf("expected 2 vehicles stored, got %d (%v)", n, err)
	}
}

func TestSaveBatchEmptyBatch(t *testing.T) {
	db := testDB(t)
	result := db.SaveBatch(nil)
	if result.Success != 0 || result.Failed != 0 {
		t.Fatalf("expected zero counts for empty batch, got %+v", result)
	}
}

func TestUpsertMergesAndAppendsHistory(t *testing.T) {
	db := testDB(t)
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	db.SaveBatch([]models.VehicleRecord{record("AA111AA", 1000, first)})

	rec2 := record("AA111AA", 900, second)
	rec2.Status = "chiusa"
	db.SaveBatch([]models.VehicleRecord{rec2})

	n, _ := db.CountVehicles()
	if n != 1 {
		t.Fatalf("expected upsert to keep a single row, got %d", n)
	}

	history, err := db.GetHistory("AA111AA")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if history == nil {
		t.Fatalf("expected vehicle to exist")
	}
	if history.Status != "chiusa" || history.BasePrice != 900 {
		t.Fatalf("expected fields refreshed by second save, got %+v", history.VehicleRecord)
	}
	if len(history.History) != 2 {
		t.Fatalf("expected exactly one history entry per save, got %d", len(history.History))
	}
	// Newest first
	if history.History[0].Price != 900 || history.History[1].Price != 1000 {
		t.Fatalf("expected newest-first ordering, got %+v", history.History)
	}
}

func TestGetHistoryUnknownPlate(t *testing.T) {
	db := testDB(t)
	history, err := db.GetHistory("ZZ999ZZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history != nil {
		t.Fatalf("expected nil for unknown plate, got %+v", history)
	}
}

func TestListAllVehiclesOrder(t *testing.T) {
	db := testDB(t)
	older := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	db.SaveBatch([]models.VehicleRecord{
		record("AA111AA", 1000, older),
		record("BB222BB", 2000, newer),
	})

	vehicles, err := db.ListAllVehicles()
	if err != nil {
		t.Fatalf("ListAllVehicles failed: %v", err)
	}
	if len(vehicles) != 2 || vehicles[0].Plate != "BB222BB" {
		t.Fatalf("expected most recently updated first, got %+v", vehicles)
	}
}

func TestCountPricedVehiclesExcludesSentinel(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	db.SaveBatch([]models.VehicleRecord{
		record("AA111AA", 1000, now),
		record("BB222BB", pipeline.PriceUnknown, now),
	})

	priced, err := db.CountPricedVehicles()
	if err != nil {
		t.Fatalf("CountPricedVehicles failed: %v", err)
	}
	if priced != 1 {
		t.Fatalf("expected sentinel price excluded, got %d", priced)
	}
}

func TestAuctions(t *testing.T) {
	db := testDB(t)

	auctions := []models.AuctionListing{
		{ID: "SE-1", Source: "ayvens", Title: "Asta Marzo", VehicleCount: 12},
		{ID: "SE-2", Source: "ayvens", Title: "Asta Aprile", VehicleCount: 3},
	}
	if err := db.SaveAuctions(auctions); err != nil {
		t.Fatalf("SaveAuctions failed: %v", err)
	}

	// Re-observing the same auction updates instead of duplicating.
	auctions[0].VehicleCount = 10
	if err := db.SaveAuctions(auctions[:1]); err != nil {
		t.Fatalf("SaveAuctions upsert failed: %v", err)
	}

	active, err := db.ListActiveAuctions()
	if err != nil {
		t.Fatalf("ListActiveAuctions failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active auctions, got %d", len(active))
	}
	for _, a := range active {
		if a.ID == "SE-1" && a.VehicleCount != 10 {
			t.Fatalf("expected upsert to refresh vehicle count, got %+v", a)
		}
	}
}

func TestWatchlist(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	user := &models.User{Username: "collector", PasswordHash: "x", SessionToken: "tok"}
	if err := db.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	db.SaveBatch([]models.VehicleRecord{record("AA111AA", 1000, now)})

	if err := db.AddToWatchlist(user.ID, "AA111AA"); err != nil {
		t.Fatalf("AddToWatchlist failed: %v", err)
	}
	// Watching an unobserved plate is allowed, it just doesn't list yet.
	if err := db.AddToWatchlist(user.ID, "ZZ999ZZ"); err != nil {
		t.Fatalf("AddToWatchlist for unknown plate failed: %v", err)
	}
	// Re-adding is a no-op.
	if err := db.AddToWatchlist(user.ID, "AA111AA"); err != nil {
		t.Fatalf("duplicate AddToWatchlist failed: %v", err)
	}

	watched, err := db.ListWatchlist(user.ID)
	if err != nil {
		t.Fatalf("ListWatchlist failed: %v", err)
	}
	if len(watched) != 1 || watched[0].Plate != "AA111AA" {
		t.Fatalf("expected only observed vehicles listed, got %+v", watched)
	}

	if err := db.RemoveFromWatchlist(user.ID, "AA111AA"); err != nil {
		t.Fatalf("RemoveFromWatchlist failed: %v", err)
	}
	watched, _ = db.ListWatchlist(user.ID)
	if len(watched) != 0 {
		t.Fatalf("expected empty watchlist after removal, got %+v", watched)
	}
}

func TestUsers(t *testing.T) {
	db := testDB(t)

	user := &models.User{Username: "Collector", PasswordHash: "hash", SessionToken: "tok-1"}
	if err := db.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected user ID to be assigned")
	}

	// Case-insensitive lookup
	got, err := db.GetUserByUsername("collector")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected same user, got %+v", got)
	}

	bySession, err := db.GetUserBySessionToken("tok-1")
	if err != nil || bySession.ID != user.ID {
		t.Fatalf("GetUserBySessionToken failed: %v", err)
	}

	if err := db.UpdateUserSession(user.ID, "tok-2"); err != nil {
		t.Fatalf("UpdateUserSession failed: %v", err)
	}
	if _, err := db.GetUserBySessionToken("tok-1"); err == nil {
		t.Fatalf("expected old token to be invalid")
	}
	if _, err := db.GetUserBySessionToken("tok-2"); err != nil {
		t.Fatalf("expected rotated token to work: %v", err)
	}

	// Duplicate usernames are rejected, case-insensitively.
	dup := &models.User{Username: "COLLECTOR", PasswordHash: "hash2"}
	if err := db.CreateUser(dup); err == nil {
		t.Fatalf("expected duplicate username to fail")
	}
}
