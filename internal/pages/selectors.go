package pages

import (
	"strconv"

	"github.com/kuitang/flightsearch-e2e/internal/locator"
)

// Home page.
var (
	tripTypeDropdown = locator.Tag("div").AttrContains("data-test", "SearchFormModesPicker")

	closeSelectedValueButton = locator.Tag("div").AttrEquals("data-test", "PlacePickerInputPlace-close")
	suggestionRow            = locator.Descendant("div").AttrContains("data-test", "PlacePickerRow")

	calendarDatePicker = locator.Tag("div").AttrEquals("data-test", "NewDatePickerOpen")
	submitSelectedDate = locator.Tag("button").AttrEquals("data-test", "SearchFormDoneButton")

	bookingCheckbox        = locator.Tag("div").AttrEquals("data-test", "bookingCheckbox")
	checkedBookingCheckbox = locator.Descendant("div").AttrEquals("data-test", "bookingCheckbox").
				Child("label").ClassContains("[&_.orbit-checkbox-icon-container]:bg-blue-normal")

	searchButton = locator.Tag("a").AttrEquals("data-test", "LandingSearchButton")
)

func tripTypeOption(tripType string) locator.XPath {
	return locator.Descendant("a").AttrContains("data-test", "ModePopupOption").
		Descendant("span").TextEquals(tripType)
}

func selectedTripType(tripType string) locator.XPath {
	return locator.Descendant("div").AttrContains("data-test", "SearchFormModesPicker-active").
		Descendant("div").TextEquals(tripType).
		Nth(1)
}

func destinationField(field Field) locator.XPath {
	return locator.Descendant("div").TextEquals(string(field)).
		Ancestor("div").AttrContains("data-test", "SearchFieldItem")
}

func destinationInput(field Field) locator.XPath {
	return destinationField(field).Descendant("input")
}

func flightDirection(direction Direction) locator.XPath {
	return locator.Descendant("div").AttrEquals("data-test", "SearchDateInput").
		Descendant("div").TextEquals(string(direction))
}

// Calendar widget.
var (
	previousMonthButton = locator.Descendant("button").AttrEquals("aria-label", "Previous month")
	nextMonthButton     = locator.Descendant("button").AttrEquals("aria-label", "Next month")
	monthLabel          = locator.Descendant("button").AttrEquals("data-test", "DatepickerMonthButton")
)

// monthContainer is the day grid that follows the label naming month.
func monthContainer(month string) locator.XPath {
	return monthLabel.
		Descendant("div").TextContains(month).
		Ancestor("div").
		FollowingSibling("div").AttrEquals("data-test", "CalendarContainer")
}

// dayCell scopes the day lookup to one month's grid so that a day number
// shown in two adjacent months resolves to the right one.
func dayCell(month string, day int) locator.XPath {
	return monthContainer(month).
		Then(locator.Descendant("div").AttrEquals("data-test", "DayDateTypography").TextEquals(strconv.Itoa(day)))
}
