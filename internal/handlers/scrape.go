package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"autoarbitrage/internal/cache"
	"autoarbitrage/internal/database"
	"autoarbitrage/internal/models"
	"autoarbitrage/internal/runner"
	"autoarbitrage/internal/util"
	"autoarbitrage/internal/validation"
)

// ScrapeRunner is the slice of the run orchestrator the HTTP surface needs.
type ScrapeRunner interface {
	Run(ctx context.Context, creds map[string]models.Credential) *runner.Report
}

type ScrapeHandler struct {
	db     *database.Database
	runner ScrapeRunner
	creds  map[string]models.Credential
	cache  *cache.ResultCache

	mu         sync.Mutex
	inProgress bool
	lastReport *runner.Report
	cancelRun  context.CancelFunc
}

func NewScrapeHandler(db *database.Database, r ScrapeRunner, creds map[string]models.Credential, c *cache.ResultCache) *ScrapeHandler {
	return &ScrapeHandler{db: db, runner: r, creds: creds, cache: c}
}

// TriggerScrape starts a scrape run in the background. Only one run can be
// in flight at a time; a second trigger while one is running gets a 409. A
// still-fresh result cache short-circuits the run unless force=true.
// @Summary Trigger a scrape run
// @Tags admin
// @Produce json
// @Param force query bool false "Run even if cached results are fresh"
// @Param portals query string false "Comma-separated subset of configured portals"
// @Success 200 {object} map[string]interface{}
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/admin/scrape [post]
func (h *ScrapeHandler) TriggerScrape(c *gin.Context) {
	creds, err := h.selectPortals(c.Query("portals"))
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	// A fresh cached run means the portals were driven recently; skip the
	// expensive browser session unless the caller forces it.
	if h.cache != nil && c.Query("force") != "true" {
		if records, ok := h.cache.Load(); ok {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Recent scrape results are still fresh, run skipped",
				"cached":  len(records),
			})
			return
		}
	}

	h.mu.Lock()
	if h.inProgress {
		h.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "A scrape run is already in progress",
		})
		return
	}
	h.inProgress = true
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	h.cancelRun = cancel
	h.mu.Unlock()

	go func() {
		defer cancel()
		report := h.runner.Run(ctx, creds)

		if h.cache != nil && len(report.Records) > 0 {
			if err := h.cache.Save(report.Records); err != nil {
				log.Printf("Failed to cache scrape results: %v", err)
			}
		}

		h.mu.Lock()
		h.inProgress = false
		h.lastReport = report
		h.cancelRun = nil
		h.mu.Unlock()
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Scrape run started",
	})
}

// selectPortals narrows the configured credentials to the requested subset.
// An empty selection means every configured portal runs.
func (h *ScrapeHandler) selectPortals(raw string) (map[string]models.Credential, error) {
	if raw == "" {
		return h.creds, nil
	}
	known := make([]string, 0, len(h.creds))
	for name := range h.creds {
		known = append(known, name)
	}
	selected := make(map[string]models.Credential)
	for _, portal := range strings.Split(raw, ",") {
		portal = strings.TrimSpace(portal)
		if err := validation.ValidatePortal(portal, known); err != nil {
			return nil, err
		}
		selected[portal] = h.creds[portal]
	}
	return selected, nil
}

// CancelScrape requests cancellation of the in-flight run. The run stops at
// the next page or portal boundary; partial results are still persisted.
// @Summary Cancel the running scrape
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/scrape [delete]
func (h *ScrapeHandler) CancelScrape(c *gin.Context) {
	h.mu.Lock()
	cancel := h.cancelRun
	h.mu.Unlock()

	if cancel == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "No scrape run in progress",
		})
		return
	}

	cancel()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cancellation requested",
	})
}

// ScrapeStatus reports whether a run is in flight and the last run's outcome
// @Summary Scrape run status
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/scrape/status [get]
func (h *ScrapeHandler) ScrapeStatus(c *gin.Context) {
	h.mu.Lock()
	inProgress := h.inProgress
	report := h.lastReport
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"inProgress": inProgress,
		"lastReport": report,
	})
}

// Health reports service liveness and basic store counters
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/health [get]
func (h *ScrapeHandler) Health(c *gin.Context) {
	total, err := h.db.CountVehicles()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  "database unavailable",
		})
		return
	}
	priced, _ := h.db.CountPricedVehicles()

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"vehicles":       total,
		"pricedVehicles": priced,
	})
}
