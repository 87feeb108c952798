package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"autoarbitrage/internal/browser"
	"autoarbitrage/internal/models"
)

func TestAyvensLoginThroughFrame(t *testing.T) {
	d := newFakeDriver()
	framed := false
	d.frameFn = func(sub string) error {
		if sub == "sts" {
			framed = true
			return nil
		}
		return errors.New("no such frame")
	}
	d.findByTextFn = func(selector, pattern string) (browser.Element, bool) {
		if selector == "button" && pattern == "Login" {
			return &fakeElement{text: "Login"}, true
		}
		return nil, false
	}
	a := NewAyvens(&fakeLauncher{driver: d})

	cred := models.Credential{Portal: "ayvens", Username: "dealer@corp.it", Password: "s3cret"}
	if err := a.Login(context.Background(), d, cred); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !framed {
		t.Fatalf("expected the identity-provider frame to be entered")
	}
	if d.inputs["#Username"] != "dealer@corp.it" || d.inputs["#Password"] != "s3cret" {
		t.Fatalf("credentials never typed in the frame, inputs: %v", d.inputs)
	}
	if d.mainSwitches == 0 {
		t.Fatalf("expected the main context to be restored after frame login")
	}
}

func TestAyvensLoginFallsBackToLoginFrame(t *testing.T) {
	d := newFakeDriver()
	var tried []string
	d.frameFn = func(sub string) error {
		tried = append(tried, sub)
		if sub == "login" {
			return nil
		}
		return errors.New("no such frame")
	}
	d.findByTextFn = func(selector, pattern string) (browser.Element, bool) {
		return &fakeElement{text: "Login"}, true
	}
	a := NewAyvens(&fakeLauncher{driver: d})

	if err := a.Login(context.Background(), d, models.Credential{Username: "u", Password: "p"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if len(tried) != 2 || tried[0] != "sts" || tried[1] != "login" {
		t.Fatalf("expected sts then login frame probes, got %v", tried)
	}
}

func TestAyvensLoginFrameMissing(t *testing.T) {
	d := newFakeDriver()
	d.frameFn = func(string) error { return errors.New("no such frame") }
	a := NewAyvens(&fakeLauncher{driver: d})

	err := a.Login(context.Background(), d, models.Credential{Username: "u", Password: "p"})
	if !errors.Is(err, ErrLoginFrameNotFound) {
		t.Fatalf("expected ErrLoginFrameNotFound, got %v", err)
	}
	if len(d.screenshots) == 0 {
		t.Fatalf("expected a diagnostic screenshot")
	}
}

func auctionCard(id, title string, italian bool) *fakeElement {
	card := &fakeElement{
		attrs: map[string]string{"id": id},
		kids: map[string][]browser.Element{
			".auction-title": {&fakeElement{text: title}},
			".vehicle-count": {&fakeElement{text: "12 veicoli"}},
		},
	}
	href := "#icon-round-FRA"
	if italian {
		href = ayvensItalyMarker
	}
	card.kids["use"] = []browser.Element{
		&fakeElement{attrs: map[string]string{"href": href}},
	}
	return card
}

func TestAyvensListContainersFiltersByItalyMarker(t *testing.T) {
	d := newFakeDriver()
	d.elementsFn = func(selector string) ([]browser.Element, error) {
		if selector == ".auction-item" {
			return []browser.Element{
				auctionCard("1001", "Asta Flotte Marzo", true),
				auctionCard("1002", "Vente Flotte Paris", false),
				auctionCard("1003", "Asta Veicoli Aprile", true),
			}, nil
		}
		return nil, nil
	}
	a := NewAyvens(&fakeLauncher{driver: d})

	auctions, err := a.ListContainers(context.Background(), d)
	if err != nil {
		t.Fatalf("ListContainers failed: %v", err)
	}
	if len(auctions) != 2 {
		t.Fatalf("expected 2 Italian auctions, got %d", len(auctions))
	}
	if auctions[0].ID != "1001" || auctions[1].ID != "1003" {
		t.Fatalf("unexpected auction IDs: %+v", auctions)
	}
	if auctions[0].VehicleCount != 12 {
		t.Fatalf("expected vehicle count parsed, got %d", auctions[0].VehicleCount)
	}
}

func TestAyvensListContainersXlinkHref(t *testing.T) {
	card := &fakeElement{
		attrs: map[string]string{"id": "2001"},
		kids: map[string][]browser.Element{
			"use": {&fakeElement{attrs: map[string]string{"xlink:href": ayvensItalyMarker}}},
		},
	}
	if !hasItalyMarker(card) {
		t.Fatalf("expected the legacy xlink:href spelling to match")
	}
}

func TestAyvensNoItalianAuctions(t *testing.T) {
	d := newFakeDriver()
	d.elementsFn = func(selector string) ([]browser.Element, error) {
		return []browser.Element{auctionCard("1002", "Vente Flotte Paris", false)}, nil
	}
	a := NewAyvens(&fakeLauncher{driver: d})

	_, err := a.ListContainers(context.Background(), d)
	if !errors.Is(err, ErrNoAuctionsFound) {
		t.Fatalf("expected ErrNoAuctionsFound, got %v", err)
	}
}

func TestAyvensAuctionIDFromSaleEventAttr(t *testing.T) {
	card := &fakeElement{
		kids: map[string][]browser.Element{
			"a[data-show-button-sale-code]": {
				&fakeElement{attrs: map[string]string{"data-show-button-saleeventid": "SE-778"}},
			},
		},
	}
	auction, ok := ayvensAuction(card)
	if !ok || auction.ID != "SE-778" {
		t.Fatalf("expected sale event ID, got %+v ok=%v", auction, ok)
	}
}

func vehicleCard(title, details string) *fakeElement {
	return &fakeElement{kids: map[string][]browser.Element{
		".vehicle-title":   {&fakeElement{text: title}},
		".vehicle-details": {&fakeElement{text: details}},
		"img":              {&fakeElement{attrs: map[string]string{"src": "https://cdn.ayvens/img.jpg"}}},
	}}
}

func TestAyvensExtractListings(t *testing.T) {
	details := strings.Join([]string{
		"AB 123 CD",
		"Immatricolazione 2019",
		"72.500 km",
		"Ubicazione: Roma",
		"Danni: graffi paraurti",
		"Stato: in corso",
		"Prezzo base: € 7.250,00",
	}, "\n")

	d := newFakeDriver()
	d.elementsFn = func(selector string) ([]browser.Element, error) {
		if selector == ".vehicle-item" {
			return []browser.Element{
				vehicleCard("FIAT PANDA 1.2", details),
				&fakeElement{}, // empty card, skipped
			}, nil
		}
		return nil, nil
	}
	a := NewAyvens(&fakeLauncher{driver: d})

	container := models.AuctionListing{ID: "SE-778", Title: "Asta Flotte Marzo"}
	records, err := a.ExtractListings(context.Background(), d, container)
	if err != nil {
		t.Fatalf("ExtractListings failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Plate != "AB123CD" {
		t.Fatalf("unexpected plate %q", rec.Plate)
	}
	if rec.BasePrice != 7250 {
		t.Fatalf("expected price 7250, got %v", rec.BasePrice)
	}
	if rec.Location != "Roma" || rec.Damages != "graffi paraurti" {
		t.Fatalf("labeled fields not extracted: %+v", rec)
	}
	if rec.Year != 2019 || rec.KmNumeric != 72500 {
		t.Fatalf("numeric fields not extracted: %+v", rec)
	}
	if rec.AuctionType != "Asta Flotte Marzo" {
		t.Fatalf("expected auction title as auction type, got %q", rec.AuctionType)
	}
	if len(d.navigated) == 0 || d.navigated[0] != fmt.Sprintf("%s/it-it/sales/SE-778/", ayvensBaseURL) {
		t.Fatalf("unexpected navigation: %v", d.navigated)
	}
}

func TestAyvensExtractListingsGivesUpAfterRetries(t *testing.T) {
	d := newFakeDriver()
	d.waitFn = func(selector string) bool { return selector != ".vehicle-item" }
	a := NewAyvens(&fakeLauncher{driver: d})

	records, err := a.ExtractListings(context.Background(), d, models.AuctionListing{ID: "SE-1"})
	if err != nil {
		t.Fatalf("expected failed auction to be skipped without error, got %v", err)
	}
	if records != nil {
		t.Fatalf("expected no records, got %v", records)
	}
	if len(d.navigated) != pageRetryLimit {
		t.Fatalf("expected %d navigation attempts, got %d", pageRetryLimit, len(d.navigated))
	}
}

func TestAyvensScrapeSurfacesAuctionCatalog(t *testing.T) {
	d := newFakeDriver()
	// Login and catalog enumeration succeed; the sale event's vehicle grid
	// never loads, so the run ends with the catalog but no vehicles.
	d.waitFn = func(selector string) bool { return selector != ".vehicle-item" }
	d.elementsFn = func(selector string) ([]browser.Element, error) {
		if selector == ".auction-item" {
			return []browser.Element{auctionCard("1001", "Asta Flotte Marzo", true)}, nil
		}
		return nil, nil
	}
	d.findByTextFn = func(selector, pattern string) (browser.Element, bool) {
		if selector == "button" && pattern == "Login" {
			return &fakeElement{text: "Login"}, true
		}
		return nil, false
	}
	a := NewAyvens(&fakeLauncher{driver: d})

	records, auctions, err := a.Scrape(context.Background(), models.Credential{Username: "u", Password: "p"})
	if !errors.Is(err, ErrNoVehiclesFound) {
		t.Fatalf("expected ErrNoVehiclesFound, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if len(auctions) != 1 || auctions[0].ID != "1001" {
		t.Fatalf("expected the enumerated catalog to be surfaced, got %+v", auctions)
	}
	if !d.closed {
		t.Fatalf("expected session to be closed after scrape")
	}
}

func TestLabeledValue(t *testing.T) {
	text := "Ubicazione: Roma\nDanni: nessuno\nStato:  chiusa "

	if got := labeledValue(text, "Ubicazione"); got != "Roma" {
		t.Fatalf("labeledValue Ubicazione = %q", got)
	}
	if got := labeledValue(text, "Stato"); got != "chiusa" {
		t.Fatalf("labeledValue Stato = %q", got)
	}
	if got := labeledValue(text, "Prezzo base"); got != "" {
		t.Fatalf("expected empty for missing label, got %q", got)
	}
}
