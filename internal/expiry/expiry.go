// Package expiry generates upcoming weekly option expiration dates.
package expiry

import "time"

// DefaultCount is the number of weekly expirations generated when the
// caller does not ask for a specific count.
const DefaultCount = 8

// Weekly returns n upcoming Friday expiration dates starting from the
// first Friday on or after from. Dates are day-granular, ascending and
// deterministic for a given reference date.
func Weekly(from time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	// Friday offset with a Monday=0 weekday convention
	monday0 := (int(day.Weekday()) + 6) % 7
	offset := ((4 - monday0) % 7 + 7) % 7

	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, day.AddDate(0, 0, offset+7*i))
	}
	return dates
}

// Upcoming is Weekly anchored at the current date.
func Upcoming(n int) []time.Time {
	return Weekly(time.Now(), n)
}
