package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"autoarbitrage/internal/browser"
	"autoarbitrage/internal/models"
	"autoarbitrage/internal/pipeline"
)

const (
	clickarPortal  = "clickar"
	clickarBaseURL = "https://www.clickar.biz/private"

	// Row selector for the RichFaces results table.
	clickarRowSelector = "tr.rich-table-row"
)

// ClickarAdapter scrapes the Clickar fleet-remarketing portal: simple-form
// login, then one flat paginated table under the "LE INTROVABILI" section.
type ClickarAdapter struct {
	sessions Launcher
	baseURL  string
}

func NewClickar(sessions Launcher) *ClickarAdapter {
	return &ClickarAdapter{sessions: sessions, baseURL: clickarBaseURL}
}

func (a *ClickarAdapter) Name() string { return clickarPortal }

// Login fills the portal's login form and waits for the post-login marker.
// The form wait doubles as the readiness signal for the redirect the portal
// performs on first load.
func (a *ClickarAdapter) Login(ctx context.Context, d browser.Driver, cred models.Credential) error {
	if err := d.Navigate(a.baseURL); err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFormNotFound, err)
	}
	if !d.WaitForElement("#userNameInput") {
		d.Screenshot("clickar_login_form_missing")
		return ErrLoginFormNotFound
	}
	if err := d.Input("#userNameInput", cred.Username); err != nil {
		return fmt.Errorf("%w: username field: %v", ErrLoginFormNotFound, err)
	}
	if err := d.Input("#passwordInput", cred.Password); err != nil {
		return fmt.Errorf("%w: password field: %v", ErrLoginFormNotFound, err)
	}
	if err := d.Click("#submitButton"); err != nil {
		return fmt.Errorf("%w: submit: %v", ErrLoginFormNotFound, err)
	}

	// The only success signal is the logged-in header element; its absence
	// after the full wait means the credentials were rejected.
	if !d.WaitForElement(".carusedred") {
		d.Screenshot("clickar_login_rejected")
		return ErrCredentialRejected
	}
	log.Printf("[clickar] login ok for %s", cred.Username)
	return nil
}

// ListContainers opens the "LE INTROVABILI" section and reports it as the
// single implicit container; Clickar exposes no browsable auction catalog.
func (a *ClickarAdapter) ListContainers(ctx context.Context, d browser.Driver) ([]models.AuctionListing, error) {
	section, ok := d.FindByText("h4", "LE INTROVABILI")
	if !ok {
		d.Screenshot("clickar_section_missing")
		return nil, ErrNavigationTargetNotFound
	}
	if err := section.Click(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNavigationTargetNotFound, err)
	}
	if !d.WaitForElement(clickarRowSelector) {
		d.Screenshot("clickar_table_missing")
		return nil, ErrNavigationTargetNotFound
	}
	return []models.AuctionListing{{
		ID:     "introvabili",
		Source: clickarPortal,
		Title:  "LE INTROVABILI",
	}}, nil
}

// ExtractListings walks the paginated table. The absence of a "page N+1"
// control is the sole stop condition; a safety valve aborts after
// pageRetryLimit consecutive page failures, preserving partial results.
func (a *ClickarAdapter) ExtractListings(ctx context.Context, d browser.Driver, _ models.AuctionListing) ([]models.VehicleRecord, error) {
	var records []models.VehicleRecord
	pageNum := 1
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		default:
		}

		if !d.WaitForElement(clickarRowSelector) {
			failures++
			log.Printf("[clickar] page %d: rows never appeared (failure %d/%d)", pageNum, failures, pageRetryLimit)
			if failures >= pageRetryLimit {
				d.Screenshot(fmt.Sprintf("clickar_page_%d_aborted", pageNum))
				return records, nil
			}
			continue
		}

		rows, err := d.Elements(clickarRowSelector)
		if err != nil {
			failures++
			if failures >= pageRetryLimit {
				return records, nil
			}
			continue
		}

		extracted := 0
		for _, row := range rows {
			raw, ok := clickarRow(row)
			if !ok {
				continue // malformed row, both strategies failed
			}
			rec, ok := pipeline.Normalize(raw, clickarPortal, time.Now())
			if !ok {
				continue
			}
			records = append(records, rec)
			extracted++
		}
		log.Printf("[clickar] page %d: %d/%d rows extracted", pageNum, extracted, len(rows))

		// The page's rows are already banked, so a flaky next-page click is
		// retried here without re-extracting them. Click failures keep
		// accumulating until the page actually advances.
		advanced := false
		for !advanced {
			select {
			case <-ctx.Done():
				return records, ctx.Err()
			default:
			}
			next, ok := d.FindByText("li.page-item a", fmt.Sprintf("^%d$", pageNum+1))
			if !ok {
				return records, nil
			}
			if err := next.Click(); err != nil {
				failures++
				log.Printf("[clickar] page %d: next-page click failed (failure %d/%d)", pageNum, failures, pageRetryLimit)
				if failures >= pageRetryLimit {
					d.Screenshot(fmt.Sprintf("clickar_page_%d_aborted", pageNum))
					return records, nil
				}
				continue
			}
			advanced = true
		}
		pageNum++
		failures = 0
	}
}

// clickarRow extracts one table row. Primary strategy is positional cell
// lookup (the historical column layout), secondary is the semantic cell
// classes the portal sometimes renders instead. A row where nothing at all
// can be extracted is skipped.
func clickarRow(row browser.Element) (models.RawRow, bool) {
	found := 0
	get := func(cellIdx int, classSelector string) string {
		v, ok := firstMatch(row, byCellIndex(cellIdx), bySelector(classSelector))
		if ok {
			found++
		}
		return v
	}

	raw := models.RawRow{
		BrandModel:  get(3, "td.marcaModello"),
		Plate:       get(4, "td.targa"),
		Vin:         get(5, "td.telaio"),
		Year:        get(6, "td.anno"),
		Lot:         get(7, "td.lotto"),
		Location:    get(8, "td.ubicazione"),
		BasePrice:   get(9, "td.prezzoBase"),
		AuctionType: get(10, "td.tipoAsta"),
		Km:          get(11, "td.km"),
		Damages:     get(12, "td.danni"),
		Status:      get(13, "td.stato"),
	}
	if img, ok := attrBySelector("img[src*='ticonet']", "src")(row); ok {
		raw.ImageURL = img
	}

	if found == 0 {
		return models.RawRow{}, false
	}
	return raw, true
}

// Scrape runs the full Clickar flow with guaranteed session teardown. The
// "LE INTROVABILI" section is an implicit container, not a browsable sale
// event, so no auction metadata is reported.
func (a *ClickarAdapter) Scrape(ctx context.Context, cred models.Credential) ([]models.VehicleRecord, []models.AuctionListing, error) {
	d, err := a.sessions.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer d.Close()

	if err := a.Login(ctx, d, cred); err != nil {
		return nil, nil, err
	}
	containers, err := a.ListContainers(ctx, d)
	if err != nil {
		return nil, nil, err
	}

	var all []models.VehicleRecord
	for _, c := range containers {
		records, err := a.ExtractListings(ctx, d, c)
		all = append(all, records...)
		if err != nil {
			return all, nil, err
		}
	}
	if len(all) == 0 {
		return nil, nil, ErrNoVehiclesFound
	}
	log.Printf("[clickar] scraped %d vehicles", len(all))
	return all, nil, nil
}
