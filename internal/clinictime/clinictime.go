// Package clinictime pins all calendar arithmetic to the clinic's timezone.
// The clinic operates on Gulf Standard Time, a fixed +04:00 offset with no
// daylight-saving transitions, so a FixedZone is both correct and cheaper
// than loading tzdata.
package clinictime

import "time"

// OffsetSeconds is the clinic's UTC offset (+04:00).
const OffsetSeconds = 4 * 60 * 60

var zone = time.FixedZone("GST", OffsetSeconds)

// Zone returns the clinic's fixed-offset location.
func Zone() *time.Location { return zone }

// DateKey formats t as a YYYY-MM-DD calendar date in the clinic zone.
// Two instants share a key iff the clinic front desk would call them
// "the same day".
func DateKey(t time.Time) string {
	return t.In(zone).Format("2006-01-02")
}

// DateKeys returns the clinic-local date keys for now and the previous
// days-1 calendar days, newest first. Used for trailing-window filters
// ("last 7 days including today").
func DateKeys(days int, now time.Time) []string {
	keys := make([]string, 0, days)
	for i := 0; i < days; i++ {
		keys = append(keys, DateKey(now.AddDate(0, 0, -i)))
	}
	return keys
}

// SameLocalDay reports whether a and b fall on the same clinic-local date.
func SameLocalDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}
