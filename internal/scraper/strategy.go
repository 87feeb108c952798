package scraper

import (
	"strings"

	"autoarbitrage/internal/browser"
)

// fieldStrategy tries to pull one field's text out of a row element.
// The bool reports whether the strategy found anything; strategies never
// signal failure through errors, a miss is a normal outcome.
type fieldStrategy func(row browser.Element) (string, bool)

// firstMatch applies strategies in order and takes the first hit. Target
// portals' markup drifts between runs, so falling through to a later
// strategy is the normal path, not an error signal.
func firstMatch(row browser.Element, strategies ...fieldStrategy) (string, bool) {
	for _, try := range strategies {
		if v, ok := try(row); ok {
			return v, true
		}
	}
	return "", false
}

// byCellIndex extracts the trimmed text of the n-th <td> (0-based).
func byCellIndex(n int) fieldStrategy {
	return func(row browser.Element) (string, bool) {
		cells, err := row.Elements("td")
		if err != nil || n >= len(cells) {
			return "", false
		}
		text, err := cells[n].Text()
		if err != nil {
			return "", false
		}
		return strings.TrimSpace(text), true
	}
}

// bySelector extracts the trimmed text of the first descendant matching a
// semantic selector.
func bySelector(selector string) fieldStrategy {
	return func(row browser.Element) (string, bool) {
		els, err := row.Elements(selector)
		if err != nil || len(els) == 0 {
			return "", false
		}
		text, err := els[0].Text()
		if err != nil {
			return "", false
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", false
		}
		return text, true
	}
}

// ownAttr extracts an attribute of the row element itself.
func ownAttr(attr string) fieldStrategy {
	return func(row browser.Element) (string, bool) {
		v, err := row.Attribute(attr)
		if err != nil || v == "" {
			return "", false
		}
		return v, true
	}
}

// attrBySelector extracts an attribute of the first descendant matching
// selector, e.g. an image src.
func attrBySelector(selector, attr string) fieldStrategy {
	return func(row browser.Element) (string, bool) {
		els, err := row.Elements(selector)
		if err != nil || len(els) == 0 {
			return "", false
		}
		v, err := els[0].Attribute(attr)
		if err != nil || v == "" {
			return "", false
		}
		return v, true
	}
}
