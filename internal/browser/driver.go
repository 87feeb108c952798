package browser

import "time"

// Driver is the surface portal adapters use to drive a browser session.
// The production implementation is the rod-backed Session; tests substitute
// fakes so pagination and login flows can run against scripted DOMs.
//
// Element lookups respect the current navigation context: after a successful
// SwitchToFrame they run inside that frame until SwitchToMainContext.
type Driver interface {
	// Navigate loads a URL in the main document and resets the navigation
	// context to the main document.
	Navigate(url string) error

	// WaitForElement polls for a node matching selector until the timeout
	// (the session default unless overridden). It is a probe: timing out
	// yields false, never an error.
	WaitForElement(selector string, timeout ...time.Duration) bool

	// IsPresent reports whether a matching node exists right now, without
	// waiting.
	IsPresent(selector string) bool

	// Elements returns all nodes matching selector in the current context.
	Elements(selector string) ([]Element, error)

	// FindByText returns the first node matching selector whose visible
	// text matches the regular expression pattern.
	FindByText(selector, pattern string) (Element, bool)

	// Input types text into the node matching selector.
	Input(selector, text string) error

	// Click clicks the node matching selector.
	Click(selector string) error

	// SwitchToFrame makes the first iframe whose src URL contains
	// urlSubstring the current context.
	SwitchToFrame(urlSubstring string) error

	// SwitchToMainContext restores the main document as the current context.
	SwitchToMainContext()

	// Screenshot captures a diagnostic image labelled for the operator.
	// Best effort; failures are logged and swallowed.
	Screenshot(label string)

	// Close tears the browser down. Safe to call once; the session is
	// unusable afterwards.
	Close()
}

// Element is a located DOM node.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
	Elements(selector string) ([]Element, error)
	Click() error
}
