// Package drivertest provides a scripted in-memory driver.Page for unit tests.
//
// Elements are registered under the selector string Playwright would receive;
// chained locators use the "parent >> child" form produced by Key. Waits never
// sleep: they succeed or fail against the current scripted state.
package drivertest

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/kuitang/flightsearch-e2e/internal/driver"
	"github.com/kuitang/flightsearch-e2e/internal/errs"
	"github.com/kuitang/flightsearch-e2e/internal/locator"
)

// Element is the scripted state behind one selector.
type Element struct {
	// Texts holds the text content of each match; its length is the match
	// count unless Count is set.
	Texts  []string
	Count  int
	Hidden bool
}

func (e *Element) count() int {
	if e.Count > 0 {
		return e.Count
	}
	if len(e.Texts) > 0 {
		return len(e.Texts)
	}
	return 1
}

// Action is one recorded interaction.
type Action struct {
	Kind  string // goto, click, fill
	Key   string
	Value string
}

// Page is a scripted driver.Page.
type Page struct {
	mu       sync.Mutex
	url      string
	elements map[string]*Element
	onClick  map[string]func(*Page)
	actions  []Action
	png      []byte
}

var _ driver.Page = (*Page)(nil)

// NewPage returns an empty page at about:blank.
func NewPage() *Page {
	return &Page{
		url:      "about:blank",
		elements: make(map[string]*Element),
		onClick:  make(map[string]func(*Page)),
		png:      []byte("\x89PNG fake"),
	}
}

// Key renders a locator chain the way the fake indexes it.
func Key(chain ...locator.Selector) string {
	parts := make([]string, len(chain))
	for i, sel := range chain {
		parts[i] = sel.String()
	}
	return strings.Join(parts, " >> ")
}

// Put registers or replaces the element behind key.
func (p *Page) Put(key string, el Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := el
	p.elements[key] = &e
}

// Remove deletes the element behind key.
func (p *Page) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, key)
}

// OnClick runs fn after a successful click on key. fn may mutate the page.
func (p *Page) OnClick(key string, fn func(*Page)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClick[key] = fn
}

// SetURL sets the current URL.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

// Actions returns a copy of the recorded interactions.
func (p *Page) Actions() []Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Action(nil), p.actions...)
}

// Clicks returns the keys clicked, in order.
func (p *Page) Clicks() []string {
	var out []string
	for _, a := range p.Actions() {
		if a.Kind == "click" {
			out = append(out, a.Key)
		}
	}
	return out
}

// ClickCount returns how many times key was clicked.
func (p *Page) ClickCount(key string) int {
	n := 0
	for _, k := range p.Clicks() {
		if k == key {
			n++
		}
	}
	return n
}

func (p *Page) record(a Action) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, a)
}

func (p *Page) lookup(key string) (*Element, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.elements[key]
	return el, ok
}

func (p *Page) Goto(url string) error {
	p.record(Action{Kind: "goto", Key: url})
	p.SetURL(url)
	return nil
}

func (p *Page) Locator(sel locator.Selector) driver.Locator {
	return &fakeLocator{page: p, key: sel.String(), index: -1}
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) WaitForURL(pattern *regexp.Regexp) error {
	current := p.URL()
	if !pattern.MatchString(current) {
		return errs.New(errs.NotFound, fmt.Sprintf("wait for URL %s (current %s)", pattern, current))
	}
	return nil
}

func (p *Page) Screenshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.png...), nil
}

type fakeLocator struct {
	page  *Page
	key   string
	index int // -1 addresses every match
}

func (l *fakeLocator) Locator(sel locator.Selector) driver.Locator {
	return &fakeLocator{page: l.page, key: l.key + " >> " + sel.String(), index: -1}
}

// First resolves to the same key; the fake does not distinguish matches for
// actions, only for text.
func (l *fakeLocator) First() driver.Locator {
	return &fakeLocator{page: l.page, key: l.key, index: 0}
}

func (l *fakeLocator) All() ([]driver.Locator, error) {
	el, ok := l.page.lookup(l.key)
	if !ok {
		return nil, nil
	}
	out := make([]driver.Locator, el.count())
	for i := range out {
		out[i] = &fakeLocator{page: l.page, key: l.key, index: i}
	}
	return out, nil
}

func (l *fakeLocator) Click() error {
	el, ok := l.page.lookup(l.key)
	if !ok || el.Hidden {
		return errs.New(errs.NotFound, "click "+l.key)
	}
	l.page.record(Action{Kind: "click", Key: l.key})

	l.page.mu.Lock()
	fn := l.page.onClick[l.key]
	l.page.mu.Unlock()
	if fn != nil {
		fn(l.page)
	}
	return nil
}

func (l *fakeLocator) Fill(value string) error {
	el, ok := l.page.lookup(l.key)
	if !ok || el.Hidden {
		return errs.New(errs.NotFound, "fill "+l.key)
	}
	l.page.record(Action{Kind: "fill", Key: l.key, Value: value})
	return nil
}

func (l *fakeLocator) Count() (int, error) {
	el, ok := l.page.lookup(l.key)
	if !ok {
		return 0, nil
	}
	return el.count(), nil
}

func (l *fakeLocator) TextContent() (string, error) {
	el, ok := l.page.lookup(l.key)
	if !ok {
		return "", errs.New(errs.NotFound, "read text of "+l.key)
	}
	i := l.index
	if i < 0 {
		i = 0
	}
	if i >= len(el.Texts) {
		return "", nil
	}
	return el.Texts[i], nil
}

func (l *fakeLocator) WaitFor(state driver.WaitState) error {
	el, ok := l.page.lookup(l.key)
	var met bool
	switch state {
	case driver.StateHidden:
		met = !ok || el.Hidden
	case driver.StateDetached:
		met = !ok
	case driver.StateAttached:
		met = ok
	default:
		met = ok && !el.Hidden
	}
	if !met {
		return errs.New(errs.NotFound, fmt.Sprintf("wait for %s to be %s", l.key, state))
	}
	return nil
}
