// Package steps binds the flight-search scenarios to the page objects.
//
// A Suite is shared by every scenario of a run. Each scenario gets a fresh
// pages.Registry over the shared browser page, so page objects never leak
// between scenarios while the browser session does.
package steps

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/kuitang/flightsearch-e2e/internal/artifacts"
	"github.com/kuitang/flightsearch-e2e/internal/config"
	"github.com/kuitang/flightsearch-e2e/internal/driver"
	"github.com/kuitang/flightsearch-e2e/internal/errs"
	"github.com/kuitang/flightsearch-e2e/internal/obs"
	"github.com/kuitang/flightsearch-e2e/internal/pages"
	"github.com/kuitang/flightsearch-e2e/internal/urlutil"
)

// Suite holds the run-wide state the step definitions need.
type Suite struct {
	page  driver.Page
	cfg   *config.Config
	store artifacts.Store
	runID string
	now   func() time.Time

	registry *pages.Registry
}

// NewSuite returns a suite driving page. store may be nil, in which case
// failure screenshots are not kept.
func NewSuite(page driver.Page, cfg *config.Config, store artifacts.Store, runID string) *Suite {
	return &Suite{
		page:  page,
		cfg:   cfg,
		store: store,
		runID: runID,
		now:   time.Now,
	}
}

// InitializeScenario registers the hooks and step definitions. It is the
// godog ScenarioInitializer.
func (s *Suite) InitializeScenario(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		return s.BeginScenario(ctx, scenario.Uri, scenario.Name), nil
	})
	sc.After(func(ctx context.Context, scenario *godog.Scenario, err error) (context.Context, error) {
		s.EndScenario(ctx, scenario.Name, err)
		return ctx, nil
	})

	sc.Step(`^As an not logged user navigate to homepage (\S+)$`, s.NavigateToHomePage)
	sc.Step(`^I select (\S+) trip type$`, s.SelectTripType)
	sc.Step(`^Set as departure airport (\S+)$`, s.SetDepartureAirport)
	sc.Step(`^Set as arrival airport (\S+)$`, s.SetArrivalAirport)
	sc.Step(`^Set the (\S+) time (\d+\s*\w+) in the future starting current date$`, s.SetFlightTime)
	sc.Step("^(\\S+) the `Check accommodation with booking.com` option$", s.ToggleAccommodation)
	sc.Step(`^Click the search button$`, s.ClickSearch)
	sc.Step(`^I am redirected to search results page$`, s.AssertSearchResults)
}

// BeginScenario tags ctx with the scenario correlation and replaces the page
// object registry.
func (s *Suite) BeginScenario(ctx context.Context, feature, scenario string) context.Context {
	ctx = obs.WithCorrelation(ctx, obs.Correlation{
		RunID:    s.runID,
		Feature:  feature,
		Scenario: scenario,
	})
	opts := []pages.Option{pages.WithContext(ctx), pages.WithClock(s.now)}
	if s.cfg != nil && s.cfg.CalendarMaxPages > 0 {
		opts = append(opts, pages.WithMaxPages(s.cfg.CalendarMaxPages))
	}
	s.registry = pages.NewRegistry(s.page, opts...)
	obs.From(ctx).Info("scenario_started")
	return ctx
}

// EndScenario logs the outcome and, when the scenario failed, stores a
// screenshot of the page as it was left. It returns where the screenshot went.
func (s *Suite) EndScenario(ctx context.Context, scenario string, scenarioErr error) string {
	log := obs.From(ctx).With("pkg", "steps")
	if scenarioErr == nil {
		log.Info("scenario_passed")
		return ""
	}
	log.Error("scenario_failed",
		"code", errs.CodeOf(scenarioErr),
		"summary", errs.MessageOf(scenarioErr),
		"error", scenarioErr,
		"url", s.page.URL())

	if s.store == nil {
		return ""
	}
	png, err := s.page.Screenshot()
	if err != nil {
		log.Warn("screenshot_failed", "error", err)
		return ""
	}
	key := artifacts.ScreenshotKey(s.runID, scenario, s.now())
	location, err := s.store.Save(ctx, key, png, "image/png")
	if err != nil {
		log.Warn("screenshot_store_failed", "key", key, "error", err)
	}
	if location != "" {
		log.Info("screenshot_saved", "location", location)
	}
	return location
}

func (s *Suite) home() (*pages.HomePage, error) {
	if s.registry == nil {
		s.registry = pages.NewRegistry(s.page, pages.WithClock(s.now))
	}
	return s.registry.Home()
}

// run wraps one step: it resolves the home page and records the step outcome.
func (s *Suite) run(ctx context.Context, step string, fn func(home *pages.HomePage) error) error {
	_, rec := obs.StartStep(ctx, "steps", step)
	home, err := s.home()
	if err == nil {
		err = fn(home)
	}
	rec.Finish(err)
	return err
}

// NavigateToHomePage opens siteURL. When BASE_URL points the suite at another
// deployment, URLs under the default base are rebased onto it.
func (s *Suite) NavigateToHomePage(ctx context.Context, siteURL string) error {
	return s.run(ctx, "navigate_to_homepage", func(home *pages.HomePage) error {
		return home.Open(s.rebase(siteURL))
	})
}

func (s *Suite) SelectTripType(ctx context.Context, tripType string) error {
	return s.run(ctx, "select_trip_type", func(home *pages.HomePage) error {
		return home.SelectTripType(tripType)
	})
}

// SetDepartureAirport replaces the geolocated default departure with airport.
func (s *Suite) SetDepartureAirport(ctx context.Context, airport string) error {
	return s.run(ctx, "set_departure_airport", func(home *pages.HomePage) error {
		return home.SetDeparturePoint(airport, true)
	})
}

func (s *Suite) SetArrivalAirport(ctx context.Context, airport string) error {
	return s.run(ctx, "set_arrival_airport", func(home *pages.HomePage) error {
		return home.SetArrivalPoint(airport)
	})
}

// SetFlightTime selects the departure or return date offset from today,
// for example "departure" and "1 week".
func (s *Suite) SetFlightTime(ctx context.Context, direction, offset string) error {
	return s.run(ctx, "set_flight_time", func(home *pages.HomePage) error {
		return home.SelectFlightDate(pages.Capitalize(direction), offset)
	})
}

func (s *Suite) ToggleAccommodation(ctx context.Context, action string) error {
	return s.run(ctx, "toggle_accommodation", func(home *pages.HomePage) error {
		return home.ToggleCheckbox(action)
	})
}

func (s *Suite) ClickSearch(ctx context.Context) error {
	return s.run(ctx, "click_search", func(home *pages.HomePage) error {
		return home.SearchExecute()
	})
}

// AssertSearchResults waits for the results URL and checks its prefix.
func (s *Suite) AssertSearchResults(ctx context.Context) error {
	return s.run(ctx, "assert_search_results", func(home *pages.HomePage) error {
		want := s.searchResultsURL()
		page := home.Page()
		// A wait that times out is reported by the prefix check below.
		err := page.WaitForURL(regexp.MustCompile("^" + regexp.QuoteMeta(want) + ".*"))
		if err != nil && !errs.Is(err, errs.NotFound) {
			return errs.Wrap(errs.CodeOf(err), "wait for search results", err)
		}
		if got := page.URL(); !strings.HasPrefix(got, want) {
			return fmt.Errorf("expected URL to start with %s, but got %s", want, got)
		}
		return nil
	})
}

func (s *Suite) searchResultsURL() string {
	if s.cfg != nil && s.cfg.SearchResultsURL != "" {
		return s.cfg.SearchResultsURL
	}
	return config.SearchResultsURL
}

func (s *Suite) rebase(siteURL string) string {
	if s.cfg == nil {
		return siteURL
	}
	return urlutil.Rebase(siteURL, config.BaseURL, s.cfg.BaseURL)
}
