package pages

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kuitang/flightsearch-e2e/internal/driver"
	"github.com/kuitang/flightsearch-e2e/internal/errs"
)

// HomePageName is the registry name of the landing page object.
const HomePageName = "home_page"

// Constructor builds a page object for page.
type Constructor func(page driver.Page, opts ...Option) any

// Registry hands out one page object per name, constructing it on first request.
type Registry struct {
	page driver.Page
	opts []Option

	mu    sync.Mutex
	ctors map[string]Constructor
	pages map[string]any
}

// NewRegistry returns a registry over page with the home page registered.
func NewRegistry(page driver.Page, opts ...Option) *Registry {
	r := &Registry{
		page:  page,
		opts:  opts,
		ctors: make(map[string]Constructor),
		pages: make(map[string]any),
	}
	r.Register(HomePageName, func(page driver.Page, opts ...Option) any {
		return NewHomePage(page, opts...)
	})
	return r
}

// Register adds or replaces the constructor for name. A page object already
// built under name is kept.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// Get returns the page object registered as name.
func (r *Registry) Get(name string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pages[name]; ok {
		return p, nil
	}
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, errs.New(errs.FailedPrecondition, fmt.Sprintf(
			"page object %q is not registered (known: %s)", name, strings.Join(r.namesLocked(), ", ")))
	}
	p := ctor(r.page, r.opts...)
	r.pages[name] = p
	return p, nil
}

// Home returns the home page object.
func (r *Registry) Home() (*HomePage, error) {
	p, err := r.Get(HomePageName)
	if err != nil {
		return nil, err
	}
	home, ok := p.(*HomePage)
	if !ok {
		return nil, errs.New(errs.FailedPrecondition, fmt.Sprintf("page object %q is %T, not *HomePage", HomePageName, p))
	}
	return home, nil
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
