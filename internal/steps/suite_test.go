package steps

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuitang/flightsearch-e2e/internal/artifacts"
	"github.com/kuitang/flightsearch-e2e/internal/config"
	"github.com/kuitang/flightsearch-e2e/internal/driver/drivertest"
	"github.com/kuitang/flightsearch-e2e/internal/errs"
	"github.com/kuitang/flightsearch-e2e/internal/obs"
	"github.com/kuitang/flightsearch-e2e/internal/pages"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:          config.BaseURL,
		SearchResultsURL: config.SearchResultsURL,
		CalendarMaxPages: 24,
	}
}

func fixedClock() time.Time {
	return time.Date(2027, time.January, 10, 9, 0, 0, 0, time.UTC)
}

func newTestSuite(page *drivertest.Page, store artifacts.Store) *Suite {
	s := NewSuite(page, testConfig(), store, "run-test")
	s.now = fixedClock
	return s
}

func TestSuite_NavigateToHomePage(t *testing.T) {
	page := drivertest.NewPage()
	s := newTestSuite(page, nil)
	ctx := s.BeginScenario(context.Background(), "search.feature", "navigate")

	require.NoError(t, s.NavigateToHomePage(ctx, "https://www.kiwi.com/en/"))
	assert.Equal(t, "https://www.kiwi.com/en/", page.URL())
}

func TestSuite_NavigateRebasesOntoConfiguredBase(t *testing.T) {
	page := drivertest.NewPage()
	cfg := testConfig()
	cfg.BaseURL = "https://staging.example.test/en/"
	s := NewSuite(page, cfg, nil, "run-test")
	ctx := s.BeginScenario(context.Background(), "search.feature", "navigate")

	require.NoError(t, s.NavigateToHomePage(ctx, "https://www.kiwi.com/en/?currency=eur"))
	assert.Equal(t, "https://staging.example.test/en/?currency=eur", page.URL())

	require.NoError(t, s.NavigateToHomePage(ctx, "https://other.example.test/"))
	assert.Equal(t, "https://other.example.test/", page.URL())
}

func TestSuite_AssertSearchResults(t *testing.T) {
	page := drivertest.NewPage()
	s := newTestSuite(page, nil)
	ctx := s.BeginScenario(context.Background(), "search.feature", "assert")

	page.SetURL("https://www.kiwi.com/en/search/results/rotterdam-netherlands/madrid-spain")
	require.NoError(t, s.AssertSearchResults(ctx))

	page.SetURL("https://www.kiwi.com/en/")
	err := s.AssertSearchResults(ctx)
	require.Error(t, err)
	assert.Equal(t,
		"expected URL to start with https://www.kiwi.com/en/search/results, but got https://www.kiwi.com/en/",
		err.Error())
}

// crashedPage fails every URL wait the way a closed browser does.
type crashedPage struct {
	*drivertest.Page
}

func (crashedPage) WaitForURL(*regexp.Regexp) error {
	return errs.Wrap(errs.Internal, "wait for URL", errors.New("target page, context or browser has been closed"))
}

func TestSuite_AssertSearchResultsReportsBrowserFailure(t *testing.T) {
	page := crashedPage{drivertest.NewPage()}
	page.SetURL("https://www.kiwi.com/en/")
	s := NewSuite(page, testConfig(), nil, "run-test")
	ctx := s.BeginScenario(context.Background(), "search.feature", "crash")

	err := s.AssertSearchResults(ctx)
	require.Error(t, err)
	assert.Equal(t, errs.Internal, errs.CodeOf(err))
	assert.Contains(t, err.Error(), "has been closed")
	assert.NotContains(t, err.Error(), "expected URL to start with")
}

func TestSuite_ToggleAccommodationRejectsUnknownAction(t *testing.T) {
	page := drivertest.NewPage()
	s := newTestSuite(page, nil)
	ctx := s.BeginScenario(context.Background(), "search.feature", "toggle")

	err := s.ToggleAccommodation(ctx, "Flip")
	require.Error(t, err)
	assert.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
	assert.Empty(t, page.Clicks())
}

func TestSuite_SetFlightTimeRejectsUnknownDirection(t *testing.T) {
	page := drivertest.NewPage()
	s := newTestSuite(page, nil)
	ctx := s.BeginScenario(context.Background(), "search.feature", "dates")

	err := s.SetFlightTime(ctx, "outbound", "1 week")
	assert.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
}

func TestSuite_FreshRegistryPerScenario(t *testing.T) {
	page := drivertest.NewPage()
	s := newTestSuite(page, nil)

	s.BeginScenario(context.Background(), "search.feature", "first")
	first, err := s.home()
	require.NoError(t, err)
	again, err := s.home()
	require.NoError(t, err)
	assert.Same(t, first, again)

	s.BeginScenario(context.Background(), "search.feature", "second")
	second, err := s.home()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestSuite_StepFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	restore := obs.SetOutputForTests(&buf)
	defer restore()

	page := drivertest.NewPage()
	s := newTestSuite(page, nil)
	ctx := s.BeginScenario(context.Background(), "search.feature", "logged")

	require.Error(t, s.ClickSearch(ctx))
	out := buf.String()
	assert.Contains(t, out, `"msg":"step_failed"`)
	assert.Contains(t, out, `"step":"click_search"`)
	assert.Contains(t, out, `"run_id":"run-test"`)
	assert.Contains(t, out, `"scenario":"logged"`)
}

func TestSuite_EndScenarioStoresScreenshotOnFailure(t *testing.T) {
	var buf bytes.Buffer
	restore := obs.SetOutputForTests(&buf)
	defer restore()

	dir := t.TempDir()
	page := drivertest.NewPage()
	s := newTestSuite(page, artifacts.NewDirStore(dir))
	ctx := s.BeginScenario(context.Background(), "search.feature", "Round trip RTM to MAD")

	assert.Empty(t, s.EndScenario(ctx, "Round trip RTM to MAD", nil))

	loc := s.EndScenario(ctx, "Round trip RTM to MAD", errs.Wrap(errs.NotFound, "click search button", errors.New("timeout 30000ms exceeded")))
	assert.Equal(t, filepath.Join(dir, "runs", "run-test"), filepath.Dir(loc))
	assert.Regexp(t, `^round-trip-rtm-to-mad-20270110T090000Z-[0-9a-f]{8}\.png$`, filepath.Base(loc))
	assert.Contains(t, buf.String(), `"summary":"click search button"`)
	assert.Contains(t, buf.String(), `"code":"not_found"`)
	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestSuite_EndScenarioUploadsToS3(t *testing.T) {
	store := artifacts.TestS3Store(t, "screens")
	page := drivertest.NewPage()
	s := newTestSuite(page, store)
	ctx := s.BeginScenario(context.Background(), "search.feature", "s3")

	loc := s.EndScenario(ctx, "s3", errs.New(errs.Internal, "boom"))
	require.Regexp(t, `^s3://screens/runs/run-test/s3-20270110T090000Z-[0-9a-f]{8}\.png$`, loc)

	data, err := store.Get(context.Background(), strings.TrimPrefix(loc, "s3://screens/"))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

const redirectFeature = `Feature: Search results
  Scenario: Landing directly on results
    Given As an not logged user navigate to homepage https://www.kiwi.com/en/search/results/rtm/mad
    Then I am redirected to search results page

  Scenario: Staying on the homepage
    Given As an not logged user navigate to homepage https://www.kiwi.com/en/
    Then I am redirected to search results page
`

func runFeature(t *testing.T, s *Suite, contents string) int {
	t.Helper()
	return godog.TestSuite{
		Name:                "steps",
		ScenarioInitializer: s.InitializeScenario,
		Options: &godog.Options{
			Format:          "progress",
			Output:          io.Discard,
			Strict:          true,
			Concurrency:     1,
			FeatureContents: []godog.Feature{{Name: "search.feature", Contents: []byte(contents)}},
		},
	}.Run()
}

func TestSuite_GodogRunStoresFailureScreenshot(t *testing.T) {
	dir := t.TempDir()
	page := drivertest.NewPage()
	s := newTestSuite(page, artifacts.NewDirStore(dir))

	status := runFeature(t, s, redirectFeature)
	assert.NotEqual(t, 0, status, "second scenario must fail")

	matches, err := filepath.Glob(filepath.Join(dir, "runs", "run-test", "*.png"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, filepath.Base(matches[0]), "staying-on-the-homepage")
}

const searchFeature = `Feature: Search
  Scenario: Round trip
    Given As an not logged user navigate to homepage https://www.kiwi.com/en/
    When I select round-trip trip type
    And Set as departure airport RTM
    And Set as arrival airport MAD
    And Set the departure time 1 week in the future starting current date
    And Set the return time 2 weeks in the future starting current date
    And Uncheck the ` + "`" + `Check accommodation with booking.com` + "`" + ` option
    And Click the search button
    Then I am redirected to search results page
`

func TestSuite_GodogStepGrammar(t *testing.T) {
	page := drivertest.NewPage()
	s := newTestSuite(page, nil)

	var out bytes.Buffer
	status := godog.TestSuite{
		Name:                "grammar",
		ScenarioInitializer: s.InitializeScenario,
		Options: &godog.Options{
			Format:          "cucumber",
			Output:          &out,
			Concurrency:     1,
			FeatureContents: []godog.Feature{{Name: "search.feature", Contents: []byte(searchFeature)}},
		},
	}.Run()

	// The empty fake page fails the trip type step; every step must still bind.
	assert.NotEqual(t, 0, status)
	report := out.String()
	assert.NotContains(t, report, "undefined")
	assert.Contains(t, report, "passed")
	assert.Contains(t, report, "skipped")
}

func TestSuite_GodogSearchFeaturePasses(t *testing.T) {
	const resultsURL = "https://www.kiwi.com/en/search/results/rotterdam-netherlands/madrid-spain/2027-02-04/2027-02-11"
	today := time.Date(2027, time.January, 28, 9, 0, 0, 0, time.UTC)
	departure := today.AddDate(0, 0, 7)
	ret := today.AddDate(0, 0, 14)

	page := drivertest.NewPage()
	// The widget opens on December/January, so February needs one page forward.
	home := pages.ScriptHome(page, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), resultsURL, departure, ret)
	home.SetAccommodationChecked(true)

	s := newTestSuite(page, nil)
	s.now = func() time.Time { return today }

	status := runFeature(t, s, searchFeature)
	require.Equal(t, 0, status)
	assert.Equal(t, resultsURL, page.URL())

	var want []string
	want = append(want, home.TripTypeClicks("round-trip")...)
	want = append(want, home.DepartureClicks()...)
	want = append(want, home.ArrivalClicks()...)
	want = append(want, home.DateClicks(pages.DirectionDeparture, departure, 1)...)
	want = append(want, home.DateClicks(pages.DirectionReturn, ret, 0)...)
	want = append(want, home.AccommodationClicks()...)
	want = append(want, home.SearchClicks()...)
	assert.Equal(t, want, page.Clicks())

	assert.Equal(t, []drivertest.Action{
		{Kind: "goto", Key: "https://www.kiwi.com/en/"},
	}, filterActions(page.Actions(), "goto"))
	fills := filterActions(page.Actions(), "fill")
	require.Len(t, fills, 2)
	assert.Equal(t, "RTM", fills[0].Value)
	assert.Equal(t, "MAD", fills[1].Value)
}

func filterActions(actions []drivertest.Action, kind string) []drivertest.Action {
	var out []drivertest.Action
	for _, a := range actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
