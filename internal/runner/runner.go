package runner

import (
	"context"
	"errors"
	"log"
	"time"

	"autoarbitrage/internal/browser"
	"autoarbitrage/internal/models"
	"autoarbitrage/internal/pipeline"
	"autoarbitrage/internal/scraper"
)

// Store is the slice of the persistence gateway the scrape run needs.
type Store interface {
	SaveBatch(records []models.VehicleRecord) models.BatchResult
	SaveAuctions(auctions []models.AuctionListing) error
}

// Status classifies the outcome of one portal's run so callers can decide
// whether a retry makes sense.
type Status string

const (
	StatusOK           Status = "ok"
	StatusDriverFailed Status = "driver_failed"
	StatusLoginFailed  Status = "login_failed"
	StatusNavFailed    Status = "navigation_failed"
	StatusNoData       Status = "no_data"
	StatusCancelled    Status = "cancelled"
	StatusScrapeFailed Status = "scrape_failed"
)

// PortalResult is the per-portal outcome inside a run report.
type PortalResult struct {
	Portal  string `json:"portal"`
	Status  Status `json:"status"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

// Report is the outcome of a whole multi-portal run.
type Report struct {
	StartedAt  time.Time          `json:"startedAt"`
	FinishedAt time.Time          `json:"finishedAt"`
	Portals    []PortalResult     `json:"portals"`
	Saved      models.BatchResult `json:"saved"`

	// Records carries the aggregated result set for callers (CLI, cache)
	// that want the data as well as the counts.
	Records []models.VehicleRecord `json:"-"`
}

// Runner drives the configured portal adapters sequentially. Each portal
// completes fully, including browser teardown, before the next starts; a
// portal's failure never aborts its siblings.
type Runner struct {
	adapters []scraper.PortalAdapter
	store    Store
	policy   pipeline.DedupePolicy
}

func New(store Store, policy pipeline.DedupePolicy, adapters ...scraper.PortalAdapter) *Runner {
	return &Runner{adapters: adapters, store: store, policy: policy}
}

// Run scrapes every portal it has credentials for, aggregates, applies the
// dedupe policy and persists the batch. Cancellation is cooperative: the
// context is checked between portals (adapters check it between pages).
func (r *Runner) Run(ctx context.Context, creds map[string]models.Credential) *Report {
	report := &Report{StartedAt: time.Now()}
	var perPortal [][]models.VehicleRecord

	for _, adapter := range r.adapters {
		if err := ctx.Err(); err != nil {
			report.Portals = append(report.Portals, PortalResult{
				Portal: adapter.Name(), Status: StatusCancelled, Error: err.Error(),
			})
			continue
		}

		cred, ok := creds[adapter.Name()]
		if !ok {
			log.Printf("[runner] no credentials for %s, skipping", adapter.Name())
			continue
		}

		records, auctions, err := adapter.Scrape(ctx, cred)
		result := PortalResult{Portal: adapter.Name(), Records: len(records)}
		result.Status = classify(err, len(records))
		if err != nil {
			result.Error = err.Error()
			log.Printf("[runner] %s: %s (%v)", adapter.Name(), result.Status, err)
		} else {
			log.Printf("[runner] %s: %d records", adapter.Name(), len(records))
		}
		report.Portals = append(report.Portals, result)
		r.saveAuctions(adapter.Name(), auctions)

		if len(records) > 0 {
			perPortal = append(perPortal, records)
		}
	}

	report.Records = pipeline.ApplyDedupe(pipeline.Aggregate(perPortal...), r.policy)
	if len(report.Records) > 0 {
		report.Saved = r.store.SaveBatch(report.Records)
		log.Printf("[runner] persisted batch: %d saved, %d failed", report.Saved.Success, report.Saved.Failed)
	}
	report.FinishedAt = time.Now()
	return report
}

// saveAuctions forwards catalog metadata to the store; failures are logged
// only, auction bookkeeping must not fail a vehicle run.
func (r *Runner) saveAuctions(portal string, auctions []models.AuctionListing) {
	if len(auctions) == 0 {
		return
	}
	if err := r.store.SaveAuctions(auctions); err != nil {
		log.Printf("[runner] %s: saving auctions: %v", portal, err)
		return
	}
	log.Printf("[runner] %s: %d auctions recorded", portal, len(auctions))
}

// classify maps the adapter error taxonomy onto portal statuses.
func classify(err error, records int) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if records > 0 {
			return StatusOK // partial results were preserved
		}
		return StatusCancelled
	case errors.Is(err, browser.ErrInit):
		return StatusDriverFailed
	case errors.Is(err, scraper.ErrLoginFormNotFound),
		errors.Is(err, scraper.ErrLoginFrameNotFound),
		errors.Is(err, scraper.ErrCredentialRejected):
		return StatusLoginFailed
	case errors.Is(err, scraper.ErrNavigationTargetNotFound):
		return StatusNavFailed
	case errors.Is(err, scraper.ErrNoAuctionsFound),
		errors.Is(err, scraper.ErrNoVehiclesFound):
		return StatusNoData
	default:
		return StatusScrapeFailed
	}
}
