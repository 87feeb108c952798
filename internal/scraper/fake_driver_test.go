package scraper

import (
	"context"
	"time"

	"autoarbitrage/internal/browser"
)

// fakeElement is a scripted DOM node for adapter tests.
type fakeElement struct {
	text    string
	attrs   map[string]string
	kids    map[string][]browser.Element
	onClick func() error
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Elements(selector string) ([]browser.Element, error) {
	return e.kids[selector], nil
}

func (e *fakeElement) Click() error {
	if e.onClick != nil {
		return e.onClick()
	}
	return nil
}

// fakeDriver is a closure-scripted browser session. Unset hooks fall back to
// permissive defaults so each test only scripts what it asserts on.
type fakeDriver struct {
	waitFn       func(selector string) bool
	elementsFn   func(selector string) ([]browser.Element, error)
	findByTextFn func(selector, pattern string) (browser.Element, bool)
	navigateFn   func(url string) error
	clickFn      func(selector string) error
	frameFn      func(urlSubstring string) error

	inputs       map[string]string
	navigated    []string
	clicked      []string
	screenshots  []string
	mainSwitches int
	closed       bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{inputs: map[string]string{}}
}

func (d *fakeDriver) Navigate(url string) error {
	d.navigated = append(d.navigated, url)
	if d.navigateFn != nil {
		return d.navigateFn(url)
	}
	return nil
}

func (d *fakeDriver) WaitForElement(selector string, _ ...time.Duration) bool {
	if d.waitFn != nil {
		return d.waitFn(selector)
	}
	return true
}

func (d *fakeDriver) IsPresent(selector string) bool {
	return d.WaitForElement(selector)
}

func (d *fakeDriver) Elements(selector string) ([]browser.Element, error) {
	if d.elementsFn != nil {
		return d.elementsFn(selector)
	}
	return nil, nil
}

func (d *fakeDriver) FindByText(selector, pattern string) (browser.Element, bool) {
	if d.findByTextFn != nil {
		return d.findByTextFn(selector, pattern)
	}
	return nil, false
}

func (d *fakeDriver) Input(selector, text string) error {
	d.inputs[selector] = text
	return nil
}

func (d *fakeDriver) Click(selector string) error {
	d.clicked = append(d.clicked, selector)
	if d.clickFn != nil {
		return d.clickFn(selector)
	}
	return nil
}

func (d *fakeDriver) SwitchToFrame(urlSubstring string) error {
	if d.frameFn != nil {
		return d.frameFn(urlSubstring)
	}
	return nil
}

func (d *fakeDriver) SwitchToMainContext() { d.mainSwitches++ }

func (d *fakeDriver) Screenshot(label string) {
	d.screenshots = append(d.screenshots, label)
}

func (d *fakeDriver) Close() { d.closed = true }

// fakeLauncher hands the same scripted driver to every Open call.
type fakeLauncher struct {
	driver  browser.Driver
	openErr error
}

func (l *fakeLauncher) Open(_ context.Context) (browser.Driver, error) {
	if l.openErr != nil {
		return nil, l.openErr
	}
	return l.driver, nil
}

// tableRow builds a Clickar-style row with the historical positional layout
// (payload cells start at index 3).
func tableRow(fields ...string) *fakeElement {
	cells := make([]browser.Element, 0, len(fields)+3)
	for i := 0; i < 3; i++ {
		cells = append(cells, &fakeElement{})
	}
	for _, f := range fields {
		cells = append(cells, &fakeElement{text: f})
	}
	return &fakeElement{kids: map[string][]browser.Element{"td": cells}}
}
