package config

import (
	"os"
	"strconv"
	"time"

	"autoarbitrage/internal/models"
)

// Config carries everything the scrape runner and the API server need.
// Values come from the environment (a .env file is loaded by the commands);
// there is no process-wide singleton, callers pass the struct around.
type Config struct {
	Port     string
	DBPath   string
	AdminKey string

	Headless      bool
	WaitTimeout   time.Duration
	CanaryURL     string
	ScreenshotDir string

	CacheFile string
	CacheTTL  time.Duration

	ScrapeCooldown time.Duration

	// Credentials keyed by portal name ("clickar", "ayvens"). A portal
	// without credentials is skipped by the runner.
	Credentials map[string]models.Credential
}

// Load builds a Config from the environment, applying defaults.
func Load() *Config {
	cfg := &Config{
		Port:           envOr("PORT", "8080"),
		DBPath:         envOr("DB_PATH", "data/autoarbitrage.db"),
		AdminKey:       os.Getenv("ADMIN_KEY"),
		Headless:       envBool("HEADLESS", true),
		WaitTimeout:    envDuration("WAIT_TIMEOUT", 20*time.Second),
		CanaryURL:      envOr("CANARY_URL", "https://www.google.com"),
		ScreenshotDir:  envOr("SCREENSHOT_DIR", "screenshots"),
		CacheFile:      envOr("CACHE_FILE", "scrape_cache.json"),
		CacheTTL:       envDuration("CACHE_TTL", 30*time.Minute),
		ScrapeCooldown: envDuration("SCRAPE_COOLDOWN", 15*time.Minute),
		Credentials:    map[string]models.Credential{},
	}

	for _, portal := range []string{"clickar", "ayvens"} {
		cred := portalCredential(portal)
		if cred.Username != "" && cred.Password != "" {
			cfg.Credentials[portal] = cred
		}
	}

	return cfg
}

func portalCredential(portal string) models.Credential {
	prefix := map[string]string{
		"clickar": "CLICKAR",
		"ayvens":  "AYVENS",
	}[portal]

	return models.Credential{
		Portal:   portal,
		Username: os.Getenv(prefix + "_USERNAME"),
		Password: os.Getenv(prefix + "_PASSWORD"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
