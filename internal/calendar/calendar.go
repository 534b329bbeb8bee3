// Package calendar is the single source of truth for the ordered set of
// bookable time slots and for date-string validation. Every date handled by
// the service is a UTC calendar date; parsing and truncation never consult
// the server's local time zone, so results do not shift near midnight.
package calendar

import (
	"errors"
	"regexp"
	"time"
)

// ErrInvalidDateFormat is returned when a date string does not match the
// YYYY-MM-DD pattern or does not name a real calendar date. Handlers
// should translate this into an HTTP 400 response.
var ErrInvalidDateFormat = errors.New("invalid date, expected YYYY-MM-DD")

// SlotCount is the length of the slot enumeration.
const SlotCount = 12

// slots is the fixed enumeration of one-hour bookable intervals spanning
// 08:00 to 20:00. The order is calendar order and never changes at runtime.
var slots = [SlotCount]string{
	"08:00-09:00",
	"09:00-10:00",
	"10:00-11:00",
	"11:00-12:00",
	"12:00-13:00",
	"13:00-14:00",
	"14:00-15:00",
	"15:00-16:00",
	"16:00-17:00",
	"17:00-18:00",
	"18:00-19:00",
	"19:00-20:00",
}

// datePattern enforces the exact four-digit / two-digit / two-digit shape.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// AllSlots returns the slot enumeration in calendar order. A fresh slice is
// returned on every call so callers cannot mutate the enumeration.
func AllSlots() []string {
	out := make([]string, SlotCount)
	copy(out, slots[:])
	return out
}

// IsValidSlot reports whether s is one of the bookable slots.
func IsValidSlot(s string) bool {
	for _, v := range slots {
		if v == s {
			return true
		}
	}
	return false
}

// ParseDate validates input against the YYYY-MM-DD pattern and returns the
// corresponding UTC midnight. Strings that match the pattern but do not
// name a real calendar date (e.g. "2024-13-40") are rejected as well; both
// failure modes surface as ErrInvalidDateFormat.
func ParseDate(input string) (time.Time, error) {
	if !datePattern.MatchString(input) {
		return time.Time{}, ErrInvalidDateFormat
	}
	t, err := time.ParseInLocation("2006-01-02", input, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// Truncate normalizes an arbitrary timestamp to its UTC calendar date.
func Truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
