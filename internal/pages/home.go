package pages

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kuitang/flightsearch-e2e/internal/driver"
	"github.com/kuitang/flightsearch-e2e/internal/errs"
)

// Field identifies a place input on the search form.
type Field string

const (
	FieldFrom Field = "From"
	FieldTo   Field = "To"
)

// Direction identifies which date input of the search form to open.
type Direction string

const (
	DirectionDeparture Direction = "Departure"
	DirectionReturn    Direction = "Return"
)

// ParseDirection normalizes s ("departure", "RETURN", ...) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(Capitalize(s)); d {
	case DirectionDeparture, DirectionReturn:
		return d, nil
	default:
		return "", errs.New(errs.InvalidArgument, fmt.Sprintf("unknown flight direction %q", s))
	}
}

// CheckboxAction is the desired state of a checkbox.
type CheckboxAction string

const (
	ActionCheck   CheckboxAction = "Check"
	ActionUncheck CheckboxAction = "Uncheck"
)

// ParseCheckboxAction normalizes s ("check", "UNCHECK", ...) to an action.
func ParseCheckboxAction(s string) (CheckboxAction, error) {
	switch a := CheckboxAction(Capitalize(s)); a {
	case ActionCheck, ActionUncheck:
		return a, nil
	default:
		return "", errs.New(errs.InvalidArgument, fmt.Sprintf("unknown checkbox action %q", s))
	}
}

// Capitalize lower-cases s and upper-cases its first letter, which is how the
// site renders its labels: "ROUND-TRIP" becomes "Round-trip".
func Capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// HomePage wraps the search form on the landing page.
type HomePage struct {
	page     driver.Page
	opts     []Option
	log      *slog.Logger
	calendar *Calendar
}

// NewHomePage returns a home page object bound to page. opts are passed on to
// the calendar.
func NewHomePage(page driver.Page, opts ...Option) *HomePage {
	return &HomePage{
		page: page,
		opts: opts,
		log:  newOptions(opts).logger().With("component", "home_page"),
	}
}

// Page returns the underlying driver page.
func (h *HomePage) Page() driver.Page {
	return h.page
}

// Calendar returns the date-picker component, created on first use.
func (h *HomePage) Calendar() *Calendar {
	if h.calendar == nil {
		h.calendar = NewCalendar(h.page, h.opts...)
	}
	return h.calendar
}

// Open navigates to url and waits for the DOM to load.
func (h *HomePage) Open(url string) error {
	h.log.Debug("home_open", "url", url)
	return h.page.Goto(url)
}

// SelectTripType picks a trip type such as "one-way" or "round-trip" and
// waits until the form shows it as active.
func (h *HomePage) SelectTripType(tripType string) error {
	label := Capitalize(tripType)
	if label == "" {
		return errs.New(errs.InvalidArgument, "trip type is empty")
	}
	h.log.Debug("home_select_trip_type", "trip_type", label)

	if err := h.page.Locator(tripTypeDropdown).Click(); err != nil {
		return err
	}
	if err := h.page.Locator(tripTypeOption(label)).Click(); err != nil {
		return err
	}
	return h.page.Locator(selectedTripType(label)).WaitFor(driver.StateVisible)
}

// ClearFieldValue removes the value pre-filled in field.
func (h *HomePage) ClearFieldValue(field Field) error {
	return h.page.Locator(destinationField(field)).Locator(closeSelectedValueButton).Click()
}

// SetDeparturePoint fills the "From" field with value, such as an airport
// code, and picks the first suggestion. The site pre-fills a departure from
// geolocation; clearDefault removes it first.
func (h *HomePage) SetDeparturePoint(value string, clearDefault bool) error {
	h.log.Debug("home_set_departure", "value", value, "clear_default", clearDefault)
	if clearDefault {
		if err := h.ClearFieldValue(FieldFrom); err != nil {
			return err
		}
	}
	return h.fillDestinationField(FieldFrom, value)
}

// SetArrivalPoint fills the "To" field with value and picks the first suggestion.
func (h *HomePage) SetArrivalPoint(value string) error {
	h.log.Debug("home_set_arrival", "value", value)
	return h.fillDestinationField(FieldTo, value)
}

func (h *HomePage) fillDestinationField(field Field, value string) error {
	if err := h.page.Locator(destinationInput(field)).Fill(value); err != nil {
		return err
	}
	suggestion := h.page.Locator(suggestionRow).First()
	if err := suggestion.WaitFor(driver.StateVisible); err != nil {
		return err
	}
	return suggestion.Click()
}

// SelectFlightDate opens the direction's date input ("departure" or
// "return"), selects the date offset from today and confirms it.
func (h *HomePage) SelectFlightDate(direction, offset string) error {
	d, err := ParseDirection(direction)
	if err != nil {
		return err
	}
	h.log.Debug("home_select_flight_date", "direction", d, "offset", offset)

	if err := h.page.Locator(flightDirection(d)).Click(); err != nil {
		return err
	}
	if err := h.page.Locator(calendarDatePicker).WaitFor(driver.StateVisible); err != nil {
		return err
	}
	if err := h.Calendar().SelectOffsetTime(offset); err != nil {
		return err
	}
	return h.page.Locator(submitSelectedDate).Click()
}

// ToggleCheckbox brings the booking.com accommodation checkbox to the state
// named by action ("Check" or "Uncheck"). It clicks only when the current
// state differs.
func (h *HomePage) ToggleCheckbox(action string) error {
	want, err := ParseCheckboxAction(action)
	if err != nil {
		return err
	}
	n, err := h.page.Locator(checkedBookingCheckbox).Count()
	if err != nil {
		return err
	}
	checked := n > 0
	h.log.Debug("home_toggle_checkbox", "action", want, "checked", checked)

	if checked == (want == ActionCheck) {
		return nil
	}
	return h.page.Locator(bookingCheckbox).Click()
}

// SearchExecute clicks the search button and waits for it to disappear,
// which happens once navigation to the results starts.
func (h *HomePage) SearchExecute() error {
	h.log.Debug("home_search")
	button := h.page.Locator(searchButton)
	if err := button.Click(); err != nil {
		return err
	}
	return button.WaitFor(driver.StateHidden)
}
