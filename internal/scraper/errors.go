package scraper

import "errors"

// Fatal-for-this-portal failures. Row and page level problems are absorbed
// inside the adapters (skip the row, retry the page up to pageRetryLimit)
// and never surface as errors.
var (
	// ErrLoginFormNotFound: the login form never appeared. Markup drift or
	// a dead portal; reported with a diagnostic screenshot.
	ErrLoginFormNotFound = errors.New("login form not found")

	// ErrLoginFrameNotFound: the identity-provider iframe hosting the login
	// form could not be located among the page's frames.
	ErrLoginFrameNotFound = errors.New("login frame not found")

	// ErrCredentialRejected: the post-login success indicator never showed
	// up within the full wait. Not retried, to avoid lockout amplification.
	ErrCredentialRejected = errors.New("credentials rejected")

	// ErrNavigationTargetNotFound: the listing section or auction page is
	// unreachable after login.
	ErrNavigationTargetNotFound = errors.New("navigation target not found")

	// ErrNoAuctionsFound: a catalog portal presented zero browsable
	// auctions. Expected and reportable, not a system fault.
	ErrNoAuctionsFound = errors.New("no auctions found")

	// ErrNoVehiclesFound: full traversal produced zero records.
	ErrNoVehiclesFound = errors.New("no vehicles extracted")
)
