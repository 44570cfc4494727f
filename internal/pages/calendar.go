package pages

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/kuitang/flightsearch-e2e/internal/driver"
	"github.com/kuitang/flightsearch-e2e/internal/errs"
)

// monthLabelLayout matches the widget's month header, e.g. "March 2027".
const monthLabelLayout = "January 2006"

// Calendar drives the home page date-picker widget.
type Calendar struct {
	page     driver.Page
	now      func() time.Time
	maxPages int
	log      *slog.Logger
}

// NewCalendar returns a calendar bound to page.
func NewCalendar(page driver.Page, opts ...Option) *Calendar {
	o := newOptions(opts)
	return &Calendar{
		page:     page,
		now:      o.now,
		maxPages: o.maxPages,
		log:      o.logger().With("component", "calendar"),
	}
}

// SelectDate pages the widget until target's month is rendered, then clicks
// the target day inside that month's grid.
func (c *Calendar) SelectDate(target time.Time) error {
	want := target.Format(monthLabelLayout)

	for paged := 0; ; paged++ {
		visible, err := c.visibleMonths()
		if err != nil {
			return err
		}
		if slices.Contains(visible, want) {
			break
		}
		if paged >= c.maxPages {
			return errs.New(errs.DeadlineExceeded, fmt.Sprintf(
				"calendar: month %q not visible after %d pages (visible: %s)",
				want, c.maxPages, strings.Join(visible, ", ")))
		}

		arrow, direction := nextMonthButton, "next"
		if monthBefore(target, visible) {
			arrow, direction = previousMonthButton, "previous"
		}
		c.log.Debug("calendar_page", "direction", direction, "want", want, "visible", visible)
		if err := c.page.Locator(arrow).Click(); err != nil {
			return err
		}
	}

	c.log.Debug("calendar_select_day", "date", target.Format(time.DateOnly))
	return c.page.Locator(dayCell(target.Month().String(), target.Day())).Click()
}

// SelectOffsetTime selects the date offset days from today, where offset is an
// expression accepted by ConvertOffsetToDays.
func (c *Calendar) SelectOffsetTime(offset string) error {
	days, err := ConvertOffsetToDays(offset)
	if err != nil {
		return err
	}
	return c.SelectDate(c.now().AddDate(0, 0, days))
}

func (c *Calendar) visibleMonths() ([]string, error) {
	labels, err := c.page.Locator(monthLabel).All()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		text, err := label.TextContent()
		if err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(text))
	}
	return out, nil
}

// monthBefore reports whether target falls before the first visible month.
// Unparseable labels count as "not before" so paging moves forward.
func monthBefore(target time.Time, visible []string) bool {
	if len(visible) == 0 {
		return false
	}
	first, err := time.Parse(monthLabelLayout, visible[0])
	if err != nil {
		return false
	}
	if target.Year() != first.Year() {
		return target.Year() < first.Year()
	}
	return target.Month() < first.Month()
}
