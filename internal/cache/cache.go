package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"autoarbitrage/internal/models"
)

type snapshot struct {
	Data      []models.VehicleRecord `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// ResultCache persists the last scrape result as a JSON file so the API can
// serve something while a fresh run is in flight. Path and TTL come from
// configuration; a zero TTL disables expiry.
type ResultCache struct {
	Path string
	TTL  time.Duration
}

func New(path string, ttl time.Duration) *ResultCache {
	return &ResultCache{Path: path, TTL: ttl}
}

// Load returns the cached records if the file exists and is not expired.
func (c *ResultCache) Load() ([]models.VehicleRecord, bool) {
	file, err := os.Open(c.Path)
	if err != nil {
		fmt.Println("📁 No cache file found, will scrape fresh data")
		return nil, false
	}
	defer file.Close()

	var snap snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		fmt.Printf("❌ Error reading cache file: %v\n", err)
		return nil, false
	}

	if c.TTL > 0 && time.Since(snap.Timestamp) > c.TTL {
		fmt.Printf("⏰ Cache expired (%v old), will refresh\n", time.Since(snap.Timestamp).Round(time.Minute))
		return nil, false
	}

	fmt.Printf("✅ Loaded %d vehicles from cache (updated %v ago)\n",
		len(snap.Data), time.Since(snap.Timestamp).Round(time.Minute))
	return snap.Data, true
}

// Save overwrites the cache file with a fresh snapshot.
func (c *ResultCache) Save(records []models.VehicleRecord) error {
	snap := snapshot{Data: records, Timestamp: time.Now()}

	file, err := os.Create(c.Path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	fmt.Printf("💾 Cached %d vehicles to %s\n", len(records), c.Path)
	return nil
}

// Age returns how old the cached snapshot is.
func (c *ResultCache) Age() (time.Duration, error) {
	file, err := os.Open(c.Path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var snap snapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		return 0, err
	}
	return time.Since(snap.Timestamp), nil
}
