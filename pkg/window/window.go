// Package window computes the year-aligned time range a sync run covers.
//
// The bounds come from two signed duration offsets around "now": one
// reaching into the past, one into the future. Both bounds are truncated
// to the start of a calendar year, and the end bound is pushed one year
// further, so the window always covers whole calendar years and never
// under-covers due to truncation. Every generator in a run receives the
// same Window value, guaranteeing all calendars span an identical range.
package window

import (
	"time"

	"github.com/mlindgren/suncal/pkg/model"
)

// Default offsets: one year back, two years forward (in milliseconds, the
// unit the preference store persists).
const (
	DefaultPastMillis   int64 = 31536000000 // 365 days
	DefaultFutureMillis int64 = 63072000000 // 730 days
)

// Compute returns the window for a run anchored at now.
//
//	start = year-start(now - past)
//	end   = year-start(now + future) + 1 year
//
// Pure function of its inputs; no error conditions. The location of now is
// preserved, so year boundaries fall in the caller's zone.
func Compute(now time.Time, past, future time.Duration) model.Window {
	return model.Window{
		Start: yearStart(now.Add(-past)),
		End:   yearStart(now.Add(future)).AddDate(1, 0, 0),
	}
}

// ComputeMillis is Compute with millisecond offsets, matching the unit of
// the stored window preferences.
func ComputeMillis(now time.Time, pastMs, futureMs int64) model.Window {
	return Compute(now, time.Duration(pastMs)*time.Millisecond, time.Duration(futureMs)*time.Millisecond)
}

// yearStart truncates t to midnight on January 1 of its year.
func yearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}
