// Package browser owns the Playwright lifecycle for a suite run: one
// Chromium, one context with the consent cookie pre-set, one page shared by
// every scenario.
package browser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/flightsearch-e2e/internal/config"
	"github.com/kuitang/flightsearch-e2e/internal/driver"
	"github.com/kuitang/flightsearch-e2e/internal/errs"
	"github.com/kuitang/flightsearch-e2e/internal/logutil"
	"github.com/kuitang/flightsearch-e2e/internal/obs"
)

// Session is a running browser with a single page.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	driver *driver.PlaywrightPage
}

// ConsentCookie returns the cookie that marks the cookie policy as accepted
// on domain.
func ConsentCookie(domain string) playwright.OptionalCookie {
	return playwright.OptionalCookie{
		Name:     config.ConsentCookieName,
		Value:    "true",
		Domain:   playwright.String(domain),
		Path:     playwright.String("/"),
		HttpOnly: playwright.Bool(false),
		Secure:   playwright.Bool(true),
	}
}

// Launch starts Playwright and Chromium, opens a context with the consent
// cookie and returns the session. A FailedPrecondition error means Playwright
// or its browsers are not installed.
func Launch(cfg *config.Config) (*Session, error) {
	log := obs.Pkg("browser")

	pw, err := playwright.Run()
	if err != nil {
		return nil, errs.Wrap(errs.FailedPrecondition, "playwright not available", err)
	}
	s := &Session{pw: pw}

	s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(float64(cfg.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = s.Close()
		return nil, errs.Wrap(errs.FailedPrecondition, "could not launch chromium", err)
	}

	s.context, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		Locale: playwright.String(cfg.Locale),
		Viewport: &playwright.Size{
			Width:  cfg.ViewportWidth,
			Height: cfg.ViewportHeight,
		},
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	s.context.SetDefaultTimeout(cfg.TimeoutMS())
	s.context.SetDefaultNavigationTimeout(cfg.TimeoutMS())

	// Must precede the first navigation or the consent banner covers the form.
	cookie := ConsentCookie(cfg.ConsentDomain)
	if err := s.context.AddCookies([]playwright.OptionalCookie{cookie}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set consent cookie: %w", err)
	}
	log.Debug("consent_cookie_set", "cookie", logutil.FormatFieldsForLog(map[string]string{
		"name":         cookie.Name,
		"cookie_value": cookie.Value,
		"domain":       cfg.ConsentDomain,
	}))

	s.page, err = s.context.NewPage()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	s.driver = driver.NewPlaywrightPage(s.page)

	log.Info("browser_launched",
		"headless", cfg.Headless,
		"timeout_ms", strconv.FormatFloat(cfg.TimeoutMS(), 'f', 0, 64),
		"locale", cfg.Locale,
	)
	return s, nil
}

// Page returns the shared page as a driver.Page.
func (s *Session) Page() driver.Page {
	return s.driver
}

// PreviewContent returns a truncated, single-line preview of the page HTML
// for failure logs.
func (s *Session) PreviewContent(maxChars int) string {
	if s.page == nil {
		return ""
	}
	content, err := s.page.Content()
	if err != nil {
		return ""
	}
	return logutil.TruncateForLog(content, maxChars)
}

// Close tears the session down in reverse order. It is safe to call on a
// partially launched session and more than once.
func (s *Session) Close() error {
	var closeErrs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			closeErrs = append(closeErrs, fmt.Errorf("close page: %w", err))
		}
		s.page = nil
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			closeErrs = append(closeErrs, fmt.Errorf("close context: %w", err))
		}
		s.context = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			closeErrs = append(closeErrs, fmt.Errorf("close browser: %w", err))
		}
		s.browser = nil
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			closeErrs = append(closeErrs, fmt.Errorf("stop playwright: %w", err))
		}
		s.pw = nil
	}
	return errors.Join(closeErrs...)
}
