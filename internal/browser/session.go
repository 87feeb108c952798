package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// ErrInit signals that the browser process could not be started or proved
// interactive. Fatal for the run; the runner does not retry it.
var ErrInit = errors.New("browser driver initialization failed")

const (
	defaultWaitTimeout = 20 * time.Second
	pollInterval       = 250 * time.Millisecond

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Options configures session launches.
type Options struct {
	Headless      bool
	WaitTimeout   time.Duration // default wait for WaitForElement probes
	CanaryURL     string        // known-reachable URL navigated once after launch
	ScreenshotDir string
}

// Manager launches configured browser sessions. One Session per scrape run;
// sessions are never shared across runs.
type Manager struct {
	opts Options
}

func NewManager(opts Options) *Manager {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = defaultWaitTimeout
	}
	if opts.CanaryURL == "" {
		opts.CanaryURL = "https://www.google.com"
	}
	return &Manager{opts: opts}
}

type sessionState int

const (
	stateOpen sessionState = iota
	stateFramed
	stateClosed
)

// Session owns one automated browser process. Not safe for concurrent use;
// the in-flight adapter call has exclusive ownership.
type Session struct {
	browser  *rod.Browser
	page     *rod.Page
	frame    *rod.Page
	state    sessionState
	timeout  time.Duration
	shotsDir string
}

// Open launches a browser with automation fingerprints reduced, performs a
// canary navigation to confirm the session is interactive, and returns the
// live session. All failures map to ErrInit.
func (m *Manager) Open(ctx context.Context) (Driver, error) {
	l := launcher.New().
		Headless(m.opts.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-extensions").
		Set("disable-infobars").
		Set("disable-dev-shm-usage").
		Set("window-size", "1920,1080").
		Set("user-agent", userAgent)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch: %v", ErrInit, err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrInit, err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("%w: stealth page: %v", ErrInit, err)
	}

	s := &Session{
		browser:  b,
		page:     page,
		state:    stateOpen,
		timeout:  m.opts.WaitTimeout,
		shotsDir: m.opts.ScreenshotDir,
	}

	// Canary navigation: a session that cannot reach a known-good URL is
	// reported as an init failure, not a portal failure.
	if err := page.Navigate(m.opts.CanaryURL); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: canary navigate: %v", ErrInit, err)
	}
	if err := page.WaitLoad(); err != nil {
		s.Screenshot("canary_failed")
		s.Close()
		return nil, fmt.Errorf("%w: canary load: %v", ErrInit, err)
	}

	return s, nil
}

// current returns the page for the active navigation context.
func (s *Session) current() *rod.Page {
	if s.state == stateFramed && s.frame != nil {
		return s.frame
	}
	return s.page
}

func (s *Session) Navigate(url string) error {
	if s.state == stateClosed {
		return errors.New("session closed")
	}
	s.SwitchToMainContext()
	if err := s.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return s.page.WaitLoad()
}

func (s *Session) WaitForElement(selector string, timeout ...time.Duration) bool {
	if s.state == stateClosed {
		return false
	}
	limit := s.timeout
	if len(timeout) > 0 && timeout[0] > 0 {
		limit = timeout[0]
	}
	deadline := time.Now().Add(limit)
	for {
		if s.IsPresent(selector) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

func (s *Session) IsPresent(selector string) bool {
	if s.state == stateClosed {
		return false
	}
	has, _, err := s.current().Has(selector)
	return err == nil && has
}

func (s *Session) Elements(selector string) ([]Element, error) {
	els, err := s.current().Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el})
	}
	return out, nil
}

func (s *Session) FindByText(selector, pattern string) (Element, bool) {
	el, err := s.current().Timeout(2*time.Second).ElementR(selector, pattern)
	if err != nil || el == nil {
		return nil, false
	}
	return rodElement{el.CancelTimeout()}, true
}

func (s *Session) Input(selector, text string) error {
	el, err := s.current().Element(selector)
	if err != nil {
		return fmt.Errorf("input %s: %w", selector, err)
	}
	return el.Input(text)
}

func (s *Session) Click(selector string) error {
	el, err := s.current().Element(selector)
	if err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// SwitchToFrame scans every iframe in the main document and enters the first
// one whose src contains urlSubstring. The identity-provider frame URL is not
// under our control, so matching is by substring rather than exact URL.
func (s *Session) SwitchToFrame(urlSubstring string) error {
	if s.state == stateClosed {
		return errors.New("session closed")
	}
	frames, err := s.page.Elements("iframe")
	if err != nil {
		return fmt.Errorf("enumerate iframes: %w", err)
	}
	for _, f := range frames {
		src, err := f.Attribute("src")
		if err != nil || src == nil {
			continue
		}
		if !frameMatches(*src, urlSubstring) {
			continue
		}
		framePage, err := f.Frame()
		if err != nil {
			return fmt.Errorf("enter frame %s: %w", *src, err)
		}
		s.frame = framePage
		s.state = stateFramed
		return nil
	}
	return fmt.Errorf("no iframe matching %q among %d frames", urlSubstring, len(frames))
}

func (s *Session) SwitchToMainContext() {
	if s.state == stateFramed {
		s.frame = nil
		s.state = stateOpen
	}
}

// frameMatches reports whether an iframe src URL belongs to the wanted
// embedded login provider.
func frameMatches(src, substring string) bool {
	if strings.TrimSpace(src) == "" || substring == "" {
		return false
	}
	return strings.Contains(strings.ToLower(src), strings.ToLower(substring))
}

func (s *Session) Screenshot(label string) {
	if s.shotsDir == "" || s.state == stateClosed {
		return
	}
	data, err := s.page.Screenshot(false, nil)
	if err != nil {
		log.Printf("screenshot %s failed: %v", label, err)
		return
	}
	if err := os.MkdirAll(s.shotsDir, 0755); err != nil {
		log.Printf("screenshot dir: %v", err)
		return
	}
	path := filepath.Join(s.shotsDir, screenshotName(label, time.Now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("screenshot write: %v", err)
	}
}

func screenshotName(label string, t time.Time) string {
	return fmt.Sprintf("%s_%s.png", label, t.Format("20060102_150405"))
}

// Close releases the browser process. Guaranteed-cleanup callers invoke this
// in a defer; errors are logged, never escalated.
func (s *Session) Close() {
	if s.state == stateClosed {
		return
	}
	s.frame = nil
	s.state = stateClosed
	if err := s.browser.Close(); err != nil {
		log.Printf("browser close: %v", err)
	}
}

type rodElement struct {
	el *rod.Element
}

func (r rodElement) Text() (string, error) {
	return r.el.Text()
}

func (r rodElement) Attribute(name string) (string, error) {
	v, err := r.el.Attribute(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (r rodElement) Elements(selector string) ([]Element, error) {
	els, err := r.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el})
	}
	return out, nil
}

func (r rodElement) Click() error {
	return r.el.Click(proto.InputMouseButtonLeft, 1)
}
