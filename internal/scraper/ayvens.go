package scraper

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"autoarbitrage/internal/browser"
	"autoarbitrage/internal/models"
	"autoarbitrage/internal/pipeline"
)

const (
	ayvensPortal  = "ayvens"
	ayvensBaseURL = "https://carmarket.ayvens.com"

	// Structural marker for Italian sale events. The flag icons carry no
	// alt text, so filtering matches the SVG symbol reference instead.
	ayvensItalyMarker = "#icon-round-ITA"
)

var (
	ayvensPlateRe = regexp.MustCompile(`\b[A-Z]{2}\s?\d{3}\s?[A-Z]{2}\b`)
	ayvensKmRe    = regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*)\s*[Kk]m`)
	ayvensVinRe   = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)
)

// AyvensAdapter scrapes the Ayvens car-market portal: the login form is
// served inside an identity-provider iframe, and vehicles hang off a catalog
// of sale events rather than one flat table.
type AyvensAdapter struct {
	sessions Launcher
	baseURL  string
}

func NewAyvens(sessions Launcher) *AyvensAdapter {
	return &AyvensAdapter{sessions: sessions, baseURL: ayvensBaseURL}
}

func (a *AyvensAdapter) Name() string { return ayvensPortal }

// Login opens the login dropdown, locates the embedded identity-provider
// frame (its URL is not ours to control, so it is found by substring among
// all iframes), submits credentials inside it, and verifies the logged-in
// marker back in the main document.
func (a *AyvensAdapter) Login(ctx context.Context, d browser.Driver, cred models.Credential) error {
	if err := d.Navigate(a.baseURL); err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFormNotFound, err)
	}
	if d.WaitForElement("button.dropdown-toggle", 10*time.Second) {
		// Opening the dropdown mounts the login iframe.
		_ = d.Click("button.dropdown-toggle")
	}
	if !d.WaitForElement("iframe") {
		d.Screenshot("ayvens_no_iframes")
		return ErrLoginFrameNotFound
	}

	// The IdP frame URL has drifted between runs; try the provider domain
	// first, then anything that looks like a login frame.
	if err := d.SwitchToFrame("sts"); err != nil {
		if err := d.SwitchToFrame("login"); err != nil {
			d.Screenshot("ayvens_frame_missing")
			return ErrLoginFrameNotFound
		}
	}
	defer d.SwitchToMainContext()

	if !d.WaitForElement("#Username") {
		d.Screenshot("ayvens_login_form_missing")
		return ErrLoginFormNotFound
	}
	if err := d.Input("#Username", cred.Username); err != nil {
		return fmt.Errorf("%w: username field: %v", ErrLoginFormNotFound, err)
	}
	if err := d.Input("#Password", cred.Password); err != nil {
		return fmt.Errorf("%w: password field: %v", ErrLoginFormNotFound, err)
	}
	submit, ok := d.FindByText("button", "Login")
	if !ok {
		return ErrLoginFormNotFound
	}
	if err := submit.Click(); err != nil {
		return fmt.Errorf("%w: submit: %v", ErrLoginFormNotFound, err)
	}

	d.SwitchToMainContext()
	if !d.WaitForElement(".user-menu") {
		d.Screenshot("ayvens_login_rejected")
		return ErrCredentialRejected
	}
	log.Printf("[ayvens] login ok for %s", cred.Username)
	return nil
}

// ListContainers enumerates the sale events carrying the Italian flag
// marker. Zero Italian auctions is an expected, reportable outcome.
func (a *AyvensAdapter) ListContainers(ctx context.Context, d browser.Driver) ([]models.AuctionListing, error) {
	if !d.WaitForElement(".auction-item") {
		d.Screenshot("ayvens_catalog_missing")
		return nil, ErrNavigationTargetNotFound
	}
	cards, err := d.Elements(".auction-item")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNavigationTargetNotFound, err)
	}

	var auctions []models.AuctionListing
	for _, card := range cards {
		if !hasItalyMarker(card) {
			continue
		}
		auction, ok := ayvensAuction(card)
		if !ok {
			continue
		}
		auctions = append(auctions, auction)
	}
	if len(auctions) == 0 {
		return nil, ErrNoAuctionsFound
	}
	log.Printf("[ayvens] found %d italian auctions", len(auctions))
	return auctions, nil
}

// hasItalyMarker checks the card's SVG symbol references for the Italian
// flag. Both href spellings occur in the wild.
func hasItalyMarker(card browser.Element) bool {
	uses, err := card.Elements("use")
	if err != nil {
		return false
	}
	for _, u := range uses {
		if href, err := u.Attribute("href"); err == nil && href == ayvensItalyMarker {
			return true
		}
		if href, err := u.Attribute("xlink:href"); err == nil && href == ayvensItalyMarker {
			return true
		}
	}
	return false
}

func ayvensAuction(card browser.Element) (models.AuctionListing, bool) {
	id, ok := firstMatch(card,
		attrBySelector("a[data-show-button-sale-code]", "data-show-button-saleeventid"),
		ownAttr("id"))
	if !ok || id == "" {
		return models.AuctionListing{}, false
	}

	title, _ := firstMatch(card, bySelector(".auction-title"), bySelector("h3"))
	endDate, _ := firstMatch(card, bySelector(".auction-end-date"))
	countText, _ := firstMatch(card, bySelector(".vehicle-count"))

	count := 0
	if m := regexp.MustCompile(`\d+`).FindString(countText); m != "" {
		count, _ = strconv.Atoi(m)
	}

	return models.AuctionListing{
		ID:           id,
		Source:       ayvensPortal,
		Title:        title,
		EndDate:      endDate,
		VehicleCount: count,
	}, true
}

// ExtractListings loads one sale event's vehicle grid. The navigation is
// retried up to pageRetryLimit before giving up on the auction; other
// auctions in the run are unaffected.
func (a *AyvensAdapter) ExtractListings(ctx context.Context, d browser.Driver, container models.AuctionListing) ([]models.VehicleRecord, error) {
	url := fmt.Sprintf("%s/it-it/sales/%s/", a.baseURL, container.ID)

	loaded := false
	for attempt := 1; attempt <= pageRetryLimit; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := d.Navigate(url); err != nil {
			log.Printf("[ayvens] auction %s: navigate failed (attempt %d/%d): %v", container.ID, attempt, pageRetryLimit, err)
			continue
		}
		if d.WaitForElement(".vehicle-item") {
			loaded = true
			break
		}
		log.Printf("[ayvens] auction %s: vehicles never appeared (attempt %d/%d)", container.ID, attempt, pageRetryLimit)
	}
	if !loaded {
		d.Screenshot(fmt.Sprintf("ayvens_auction_%s_failed", container.ID))
		return nil, nil
	}

	cards, err := d.Elements(".vehicle-item")
	if err != nil {
		return nil, nil
	}

	var records []models.VehicleRecord
	for _, card := range cards {
		raw, ok := ayvensRow(card)
		if !ok {
			continue
		}
		raw.AuctionType = container.Title
		rec, ok := pipeline.Normalize(raw, ayvensPortal, time.Now())
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	log.Printf("[ayvens] auction %s: %d/%d vehicles extracted", container.ID, len(records), len(cards))
	return records, nil
}

// ayvensRow extracts one vehicle card. The card has no cell structure, so
// the primary strategy is the semantic classes and the fallback is parsing
// the free-text details block.
func ayvensRow(card browser.Element) (models.RawRow, bool) {
	var raw models.RawRow

	raw.BrandModel, _ = firstMatch(card, bySelector(".vehicle-title"), bySelector("h3"))
	raw.ImageURL, _ = firstMatch(card, attrBySelector("img", "src"))

	details, ok := firstMatch(card, bySelector(".vehicle-details"))
	if raw.BrandModel == "" && !ok {
		return models.RawRow{}, false
	}

	if plate, found := firstMatch(card, bySelector(".vehicle-plate")); found {
		raw.Plate = plate
	} else {
		raw.Plate = ayvensPlateRe.FindString(details)
	}
	raw.Vin = ayvensVinRe.FindString(details)
	if m := ayvensKmRe.FindStringSubmatch(details); len(m) > 1 {
		raw.Km = m[1]
	}
	raw.Year = details // ParseYear picks the four-digit year out of the blob
	raw.Location = labeledValue(details, "Ubicazione")
	raw.Damages = labeledValue(details, "Danni")
	raw.Status = labeledValue(details, "Stato")
	raw.BasePrice = labeledValue(details, "Prezzo base")
	if raw.BasePrice == "" {
		if m := regexp.MustCompile(`€\s*[\d.,]+`).FindString(details); m != "" {
			raw.BasePrice = m
		}
	}

	return raw, true
}

// labeledValue pulls "<label>: value" out of a details text block.
func labeledValue(text, label string) string {
	for _, line := range strings.Split(text, "\n") {
		rest, found := strings.CutPrefix(strings.TrimSpace(line), label)
		if !found {
			continue
		}
		return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":"))
	}
	return ""
}

// Scrape runs the full Ayvens flow with guaranteed session teardown. The
// enumerated Italian sale events are returned alongside the vehicles so the
// caller can persist the catalog even when extraction is cut short.
func (a *AyvensAdapter) Scrape(ctx context.Context, cred models.Credential) ([]models.VehicleRecord, []models.AuctionListing, error) {
	d, err := a.sessions.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer d.Close()

	if err := a.Login(ctx, d, cred); err != nil {
		return nil, nil, err
	}
	auctions, err := a.ListContainers(ctx, d)
	if err != nil {
		return nil, nil, err
	}

	var all []models.VehicleRecord
	for _, auction := range auctions {
		select {
		case <-ctx.Done():
			return all, auctions, ctx.Err()
		default:
		}
		records, err := a.ExtractListings(ctx, d, auction)
		all = append(all, records...)
		if err != nil {
			return all, auctions, err
		}
	}
	if len(all) == 0 {
		return nil, auctions, ErrNoVehiclesFound
	}
	log.Printf("[ayvens] scraped %d vehicles across %d auctions", len(all), len(auctions))
	return all, auctions, nil
}
