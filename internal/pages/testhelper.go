package pages

import (
	"time"

	"github.com/kuitang/flightsearch-e2e/internal/driver/drivertest"
)

// ScriptedHome is a home page scripted onto a drivertest.Page: every form
// control exists, the calendar pages one month per arrow click and the search
// button navigates to a results URL.
type ScriptedHome struct {
	page *drivertest.Page
}

// ScriptHome scripts page as the home page. The calendar opens on firstMonth
// (two months visible), days are the dates whose cells can be clicked and a
// search click moves the page to resultsURL.
func ScriptHome(page *drivertest.Page, firstMonth time.Time, resultsURL string, days ...time.Time) *ScriptedHome {
	page.Put(tripTypeDropdown.String(), drivertest.Element{})
	for _, label := range []string{"Round-trip", "One-way"} {
		page.Put(tripTypeOption(label).String(), drivertest.Element{})
		page.Put(selectedTripType(label).String(), drivertest.Element{})
	}

	for _, field := range []Field{FieldFrom, FieldTo} {
		page.Put(drivertest.Key(destinationField(field), closeSelectedValueButton), drivertest.Element{})
		page.Put(destinationInput(field).String(), drivertest.Element{})
	}
	page.Put(suggestionRow.String(), drivertest.Element{Count: 3})

	for _, d := range []Direction{DirectionDeparture, DirectionReturn} {
		page.Put(flightDirection(d).String(), drivertest.Element{})
	}
	page.Put(calendarDatePicker.String(), drivertest.Element{})
	page.Put(submitSelectedDate.String(), drivertest.Element{})

	start := time.Date(firstMonth.Year(), firstMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
	showMonths := func(p *drivertest.Page) {
		p.Put(monthLabel.String(), drivertest.Element{Texts: []string{
			start.Format(monthLabelLayout),
			start.AddDate(0, 1, 0).Format(monthLabelLayout),
		}})
	}
	showMonths(page)
	page.Put(nextMonthButton.String(), drivertest.Element{})
	page.Put(previousMonthButton.String(), drivertest.Element{})
	page.OnClick(nextMonthButton.String(), func(p *drivertest.Page) {
		start = start.AddDate(0, 1, 0)
		showMonths(p)
	})
	page.OnClick(previousMonthButton.String(), func(p *drivertest.Page) {
		start = start.AddDate(0, -1, 0)
		showMonths(p)
	})
	for _, day := range days {
		page.Put(dayCell(day.Month().String(), day.Day()).String(), drivertest.Element{})
	}

	h := &ScriptedHome{page: page}
	page.Put(bookingCheckbox.String(), drivertest.Element{})
	page.OnClick(bookingCheckbox.String(), func(p *drivertest.Page) {
		checked, _ := p.Locator(checkedBookingCheckbox).Count()
		h.SetAccommodationChecked(checked == 0)
	})

	page.Put(searchButton.String(), drivertest.Element{})
	page.OnClick(searchButton.String(), func(p *drivertest.Page) {
		p.Remove(searchButton.String())
		p.SetURL(resultsURL)
	})
	return h
}

// SetAccommodationChecked sets the booking.com checkbox state.
func (h *ScriptedHome) SetAccommodationChecked(checked bool) {
	if checked {
		h.page.Put(checkedBookingCheckbox.String(), drivertest.Element{})
		return
	}
	h.page.Remove(checkedBookingCheckbox.String())
}

// TripTypeClicks are the clicks SelectTripType makes for tripType.
func (h *ScriptedHome) TripTypeClicks(tripType string) []string {
	return []string{tripTypeDropdown.String(), tripTypeOption(Capitalize(tripType)).String()}
}

// DepartureClicks are the clicks SetDeparturePoint makes when clearing the default.
func (h *ScriptedHome) DepartureClicks() []string {
	return []string{drivertest.Key(destinationField(FieldFrom), closeSelectedValueButton), suggestionRow.String()}
}

// ArrivalClicks are the clicks SetArrivalPoint makes.
func (h *ScriptedHome) ArrivalClicks() []string {
	return []string{suggestionRow.String()}
}

// DateClicks are the clicks SelectFlightDate makes for direction when the
// calendar pages forward nextPages times before day is visible.
func (h *ScriptedHome) DateClicks(direction Direction, day time.Time, nextPages int) []string {
	out := []string{flightDirection(direction).String()}
	for range nextPages {
		out = append(out, nextMonthButton.String())
	}
	return append(out, dayCell(day.Month().String(), day.Day()).String(), submitSelectedDate.String())
}

// AccommodationClicks are the clicks ToggleCheckbox makes when the state changes.
func (h *ScriptedHome) AccommodationClicks() []string {
	return []string{bookingCheckbox.String()}
}

// SearchClicks are the clicks SearchExecute makes.
func (h *ScriptedHome) SearchClicks() []string {
	return []string{searchButton.String()}
}
