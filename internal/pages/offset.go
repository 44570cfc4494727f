package pages

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kuitang/flightsearch-e2e/internal/errs"
)

// unitDays maps offset units to days. A month is always 30 days.
var unitDays = map[string]int{
	"day": 1, "days": 1,
	"week": 7, "weeks": 7,
	"month": 30, "months": 30,
}

var offsetPattern = regexp.MustCompile(`^(\d+)\s*([a-z]+)$`)

// FormatError reports an offset expression that could not be parsed.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time format: %q", e.Input)
}

// Unwrap lets errs.CodeOf classify the error as InvalidArgument.
func (e *FormatError) Unwrap() error {
	return errs.New(errs.InvalidArgument, e.Error())
}

// ConvertOffsetToDays converts an expression such as "1 week", "3 days" or
// "2 months" to a number of days. Case and surrounding whitespace are ignored.
func ConvertOffsetToDays(offset string) (int, error) {
	match := offsetPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(offset)))
	if match == nil {
		return 0, &FormatError{Input: offset}
	}
	multiplier, ok := unitDays[match[2]]
	if !ok {
		return 0, &FormatError{Input: offset}
	}
	value, err := strconv.Atoi(match[1])
	if err != nil || value > math.MaxInt/multiplier {
		return 0, &FormatError{Input: offset}
	}
	return value * multiplier, nil
}
