package scraper

import (
	"context"

	"autoarbitrage/internal/browser"
	"autoarbitrage/internal/models"
)

// Launcher produces a fresh browser session for one scrape run. Satisfied by
// browser.Manager; tests inject fakes.
type Launcher interface {
	Open(ctx context.Context) (browser.Driver, error)
}

// PortalAdapter is the per-portal contract: login, container enumeration,
// listing extraction. Adapters hold no shared mutable state; the session
// passed through the methods is exclusively owned by the in-flight call.
type PortalAdapter interface {
	Name() string

	// Login drives the portal's authentication flow. Safe to call once per
	// session. Failures are the typed errors in errors.go.
	Login(ctx context.Context, d browser.Driver, cred models.Credential) error

	// ListContainers enumerates browsable auctions. Flat-table portals
	// return a single implicit container for the listings page already
	// reached after login.
	ListContainers(ctx context.Context, d browser.Driver) ([]models.AuctionListing, error)

	// ExtractListings walks one container and returns every extractable
	// row. Malformed rows are skipped, failed pages retried up to
	// pageRetryLimit; partial results are preserved.
	ExtractListings(ctx context.Context, d browser.Driver, container models.AuctionListing) ([]models.VehicleRecord, error)

	// Scrape orchestrates login, container enumeration and extraction with
	// guaranteed session teardown. It also returns the catalog containers it
	// enumerated so the caller can persist auction metadata; flat-table
	// portals with no real catalog return none. Login failure, zero
	// containers and zero vehicles come back as typed errors with nil
	// records; they are expected outcomes the caller reports, not crashes.
	Scrape(ctx context.Context, cred models.Credential) ([]models.VehicleRecord, []models.AuctionListing, error)
}

// pageRetryLimit bounds consecutive page-level failures before pagination
// aborts with whatever was accumulated.
const pageRetryLimit = 3
