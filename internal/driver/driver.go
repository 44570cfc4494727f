// Package driver defines the browser capabilities page objects depend on and
// a playwright-go implementation of them.
package driver

import (
	"regexp"

	"github.com/kuitang/flightsearch-e2e/internal/locator"
)

// WaitState is an element state a Locator can wait for.
type WaitState string

const (
	StateVisible  WaitState = "visible"
	StateHidden   WaitState = "hidden"
	StateAttached WaitState = "attached"
	StateDetached WaitState = "detached"
)

// Page is one browser tab.
type Page interface {
	// Goto navigates and returns once DOMContentLoaded fired.
	Goto(url string) error
	Locator(sel locator.Selector) Locator
	URL() string
	// WaitForURL blocks until the current URL matches pattern.
	WaitForURL(pattern *regexp.Regexp) error
	Screenshot() ([]byte, error)
}

// Locator is a lazily-resolved reference to zero or more elements.
type Locator interface {
	// Locator narrows the search to descendants matching sel.
	Locator(sel locator.Selector) Locator
	First() Locator
	All() ([]Locator, error)
	Click() error
	Fill(value string) error
	Count() (int, error)
	TextContent() (string, error)
	WaitFor(state WaitState) error
}
