package database

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"autoarbitrage/internal/models"
	"autoarbitrage/internal/pipeline"
)

// Database is the persistence gateway. Vehicles are keyed by plate, each
// save appends to the price-history ledger, and batches are attempted
// record by record so one failure never blocks siblings.
type Database struct {
	db *sql.DB
}

// NewDatabase opens (and creates if needed) the SQLite store.
func NewDatabase(dbPath string) (*Database, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_cache_size=10000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	database := &Database{db: db}
	if err := database.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initializeSchema() error {
	schemaPath := filepath.Join("internal", "database", "schema.sql")
	schemaFile, err := os.Open(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to open schema file: %w", err)
	}
	defer schemaFile.Close()

	schema, err := io.ReadAll(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := d.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// Vehicle batch persistence

// SaveBatch persists a scraped batch. Every record is attempted
// independently: a merge-upsert of the vehicle row plus exactly one
// price-history append. The returned counts always satisfy
// success + failed == len(records).
func (d *Database) SaveBatch(records []models.VehicleRecord) models.BatchResult {
	var result models.BatchResult
	for _, rec := range records {
		if err := d.saveVehicle(rec); err != nil {
			log.Printf("❌ Failed to save vehicle %q: %v", rec.Plate, err)
			result.Failed++
			continue
		}
		result.Success++
	}
	return result
}

// saveVehicle upserts the vehicle document and appends its price sighting.
// Both writes share a transaction so a vehicle is never observed without
// its matching history entry.
func (d *Database) saveVehicle(rec models.VehicleRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Merge semantics: created_at survives, every re-observed field is
	// refreshed, history is append-only.
	_, err = tx.Exec(`
		INSERT INTO vehicles
			(plate, brand_model, vin, year, lot, location, base_price,
			 auction_type, km, km_numeric, damages, status, image_url, source, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(plate) DO UPDATE SET
			brand_model = excluded.brand_model,
			vin = excluded.vin,
			year = excluded.year,
			lot = excluded.lot,
			location = excluded.location,
			base_price = excluded.base_price,
			auction_type = excluded.auction_type,
			km = excluded.km,
			km_numeric = excluded.km_numeric,
			damages = excluded.damages,
			status = excluded.status,
			image_url = excluded.image_url,
			source = excluded.source,
			last_updated = excluded.last_updated
	`, rec.Plate, rec.BrandModel, rec.Vin, rec.Year, rec.Lot, rec.Location,
		rec.BasePrice, rec.AuctionType, rec.Km, rec.KmNumeric, rec.Damages,
		rec.Status, rec.ImageURL, rec.Source, rec.ScrapedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle %s: %w", rec.Plate, err)
	}

	_, err = tx.Exec(`
		INSERT INTO price_history (plate, price, source, captured_at)
		VALUES (?, ?, ?, ?)
	`, rec.Plate, rec.BasePrice, rec.Source, rec.ScrapedAt)
	if err != nil {
		return fmt.Errorf("failed to append price history for %s: %w", rec.Plate, err)
	}

	return tx.Commit()
}

// GetHistory returns a vehicle with its price sightings, newest first.
// A nil result (no error) means the plate is unknown.
func (d *Database) GetHistory(plate string) (*models.VehicleHistory, error) {
	rec, err := d.getVehicle(plate)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT price, source, captured_at
		FROM price_history
		WHERE plate = ?
		ORDER BY captured_at DESC
	`, plate)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	history := &models.VehicleHistory{VehicleRecord: *rec}
	for rows.Next() {
		var entry models.PriceHistoryEntry
		if err := rows.Scan(&entry.Price, &entry.Source, &entry.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history.History = append(history.History, entry)
	}
	return history, rows.Err()
}

func (d *Database) getVehicle(plate string) (*models.VehicleRecord, error) {
	row := d.db.QueryRow(vehicleSelect+` WHERE plate = ?`, plate)
	rec, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle %s: %w", plate, err)
	}
	return rec, nil
}

const vehicleSelect = `
	SELECT vehicles.plate, brand_model, vin, year, lot, location, base_price,
	       auction_type, km, km_numeric, damages, status, image_url, source, last_updated
	FROM vehicles`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*models.VehicleRecord, error) {
	var rec models.VehicleRecord
	err := row.Scan(&rec.Plate, &rec.BrandModel, &rec.Vin, &rec.Year, &rec.Lot,
		&rec.Location, &rec.BasePrice, &rec.AuctionType, &rec.Km, &rec.KmNumeric,
		&rec.Damages, &rec.Status, &rec.ImageURL, &rec.Source, &rec.ScrapedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAllVehicles returns every known vehicle, most recently updated first.
func (d *Database) ListAllVehicles() ([]models.VehicleRecord, error) {
	rows, err := d.db.Query(vehicleSelect + ` ORDER BY last_updated DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()
	return collectVehicles(rows)
}

func collectVehicles(rows *sql.Rows) ([]models.VehicleRecord, error) {
	var out []models.VehicleRecord
	for rows.Next() {
		rec, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Auctions

// SaveAuctions records the sale events seen in a run.
func (d *Database) SaveAuctions(auctions []models.AuctionListing) error {
	for _, a := range auctions {
		_, err := d.db.Exec(`
			INSERT INTO auctions (id, source, title, end_date, vehicle_count, last_seen)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id, source) DO UPDATE SET
				title = excluded.title,
				end_date = excluded.end_date,
				vehicle_count = excluded.vehicle_count,
				last_seen = CURRENT_TIMESTAMP
		`, a.ID, a.Source, a.Title, a.EndDate, a.VehicleCount)
		if err != nil {
			return fmt.Errorf("failed to save auction %s: %w", a.ID, err)
		}
	}
	return nil
}

// ListActiveAuctions returns auctions observed within the last 24 hours.
func (d *Database) ListActiveAuctions() ([]models.AuctionListing, error) {
	rows, err := d.db.Query(`
		SELECT id, source, title, end_date, vehicle_count
		FROM auctions
		WHERE last_seen >= datetime('now', '-1 day')
		ORDER BY last_seen DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	var out []models.AuctionListing
	for rows.Next() {
		var a models.AuctionListing
		if err := rows.Scan(&a.ID, &a.Source, &a.Title, &a.EndDate, &a.VehicleCount); err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Watchlist

// AddToWatchlist puts a plate on a user's watchlist. Watching an unknown
// plate is allowed: the vehicle may show up in a later scrape.
func (d *Database) AddToWatchlist(userID int, plate string) error {
	_, err := d.db.Exec(`
		INSERT INTO watchlist (user_id, plate) VALUES (?, ?)
		ON CONFLICT(user_id, plate) DO NOTHING
	`, userID, plate)
	if err != nil {
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return nil
}

// RemoveFromWatchlist drops a plate from a user's watchlist.
func (d *Database) RemoveFromWatchlist(userID int, plate string) error {
	_, err := d.db.Exec(`DELETE FROM watchlist WHERE user_id = ? AND plate = ?`, userID, plate)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}

// ListWatchlist returns the watched vehicles that have been observed at
// least once, in watch order.
func (d *Database) ListWatchlist(userID int) ([]models.VehicleRecord, error) {
	rows, err := d.db.Query(vehicleSelect+`
		JOIN watchlist w ON w.plate = vehicles.plate
		WHERE w.user_id = ?
		ORDER BY w.added_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()
	return collectVehicles(rows)
}

// Users

// CreateUser inserts a new dashboard account.
func (d *Database) CreateUser(user *models.User) error {
	result, err := d.db.Exec(`
		INSERT INTO users (username, password_hash, session_token)
		VALUES (?, ?, ?)
	`, user.Username, user.PasswordHash, user.SessionToken)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user ID: %w", err)
	}
	user.ID = int(id)
	user.CreatedAt = time.Now()
	user.LastActive = time.Now()
	return nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (d *Database) GetUserByUsername(username string) (*models.User, error) {
	return d.getUser(`username = ? COLLATE NOCASE`, username)
}

// GetUserBySessionToken retrieves the user owning a session token.
func (d *Database) GetUserBySessionToken(token string) (*models.User, error) {
	return d.getUser(`session_token = ?`, token)
}

func (d *Database) getUser(where string, arg any) (*models.User, error) {
	var user models.User
	var sessionToken sql.NullString
	err := d.db.QueryRow(`
		SELECT id, username, password_hash, session_token, created_at, last_active
		FROM users WHERE `+where, arg).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &sessionToken,
		&user.CreatedAt, &user.LastActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if sessionToken.Valid {
		user.SessionToken = sessionToken.String
	}
	return &user, nil
}

// UpdateUserSession rotates a user's session token.
func (d *Database) UpdateUserSession(userID int, sessionToken string) error {
	_, err := d.db.Exec(`
		UPDATE users SET session_token = ?, last_active = ? WHERE id = ?
	`, sessionToken, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update user session: %w", err)
	}
	return nil
}

// Stats used by the dashboard overview.

// CountVehicles returns the number of known vehicles.
func (d *Database) CountVehicles() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM vehicles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}
	return n, nil
}

// CountPricedVehicles returns how many vehicles currently carry a parsed
// price (the sentinel price is excluded).
func (d *Database) CountPricedVehicles() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM vehicles WHERE base_price != ?`, pipeline.PriceUnknown).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count priced vehicles: %w", err)
	}
	return n, nil
}
