package driver

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/flightsearch-e2e/internal/errs"
	"github.com/kuitang/flightsearch-e2e/internal/locator"
)

// PlaywrightPage adapts a playwright.Page to Page.
type PlaywrightPage struct {
	page playwright.Page
}

// NewPlaywrightPage wraps page. Timeouts are taken from the page defaults.
func NewPlaywrightPage(page playwright.Page) *PlaywrightPage {
	return &PlaywrightPage{page: page}
}

func (p *PlaywrightPage) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return classify(fmt.Sprintf("navigate to %s", url), err)
	}
	return nil
}

func (p *PlaywrightPage) Locator(sel locator.Selector) Locator {
	return &playwrightLocator{loc: p.page.Locator(sel.String()), desc: sel.String()}
}

func (p *PlaywrightPage) URL() string {
	return p.page.URL()
}

func (p *PlaywrightPage) WaitForURL(pattern *regexp.Regexp) error {
	if err := p.page.WaitForURL(pattern); err != nil {
		return classify(fmt.Sprintf("wait for URL %s (current %s)", pattern, p.page.URL()), err)
	}
	return nil
}

func (p *PlaywrightPage) Screenshot() ([]byte, error) {
	png, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return nil, classify("screenshot", err)
	}
	return png, nil
}

type playwrightLocator struct {
	loc  playwright.Locator
	desc string
}

func (l *playwrightLocator) Locator(sel locator.Selector) Locator {
	return &playwrightLocator{
		loc:  l.loc.Locator(sel.String()),
		desc: l.desc + " >> " + sel.String(),
	}
}

func (l *playwrightLocator) First() Locator {
	return &playwrightLocator{loc: l.loc.First(), desc: l.desc + " >> nth=0"}
}

func (l *playwrightLocator) All() ([]Locator, error) {
	all, err := l.loc.All()
	if err != nil {
		return nil, classify("resolve "+l.desc, err)
	}
	out := make([]Locator, 0, len(all))
	for i, loc := range all {
		out = append(out, &playwrightLocator{loc: loc, desc: fmt.Sprintf("%s >> nth=%d", l.desc, i)})
	}
	return out, nil
}

func (l *playwrightLocator) Click() error {
	if err := l.loc.Click(); err != nil {
		return classify("click "+l.desc, err)
	}
	return nil
}

func (l *playwrightLocator) Fill(value string) error {
	if err := l.loc.Fill(value); err != nil {
		return classify("fill "+l.desc, err)
	}
	return nil
}

func (l *playwrightLocator) Count() (int, error) {
	n, err := l.loc.Count()
	if err != nil {
		return 0, classify("count "+l.desc, err)
	}
	return n, nil
}

func (l *playwrightLocator) TextContent() (string, error) {
	text, err := l.loc.TextContent()
	if err != nil {
		return "", classify("read text of "+l.desc, err)
	}
	return text, nil
}

func (l *playwrightLocator) WaitFor(state WaitState) error {
	err := l.loc.WaitFor(playwright.LocatorWaitForOptions{
		State: waitForSelectorState(state),
	})
	if err != nil {
		return classify(fmt.Sprintf("wait for %s to be %s", l.desc, state), err)
	}
	return nil
}

func waitForSelectorState(state WaitState) *playwright.WaitForSelectorState {
	switch state {
	case StateHidden:
		return playwright.WaitForSelectorStateHidden
	case StateAttached:
		return playwright.WaitForSelectorStateAttached
	case StateDetached:
		return playwright.WaitForSelectorStateDetached
	default:
		return playwright.WaitForSelectorStateVisible
	}
}

// classify maps Playwright timeouts to NotFound so callers can tell a missing
// element from a crashed browser.
func classify(action string, err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return errs.Wrap(errs.NotFound, action, err)
	}
	return errs.Wrap(errs.Internal, action, err)
}
