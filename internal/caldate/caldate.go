// Package caldate buckets timestamps into calendar days for the daily
// spending counter. The bucketing location is a process-wide policy knob,
// UTC unless configured otherwise.
package caldate

import "time"

var defaultLoc = time.UTC

// SetDefaultLocation sets the location used for day bucketing (fallback UTC).
func SetDefaultLocation(loc *time.Location) {
	if loc != nil {
		defaultLoc = loc
	}
}

// DayOf returns the calendar day of t as YYYY-MM-DD in the configured location.
func DayOf(t time.Time) string {
	return t.In(defaultLoc).Format("2006-01-02")
}
