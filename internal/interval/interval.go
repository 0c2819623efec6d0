// Package interval normalizes and buckets time intervals against calendar
// days. Session intervals may be reversed or cross any number of midnights;
// everything downstream relies on this package attributing exact second
// counts to each local calendar day.
package interval

import (
	"time"

	"github.com/julianstephens/readlit/internal/utils"
)

// DaySeconds is the number of seconds of an interval that fall inside one
// local calendar day.
type DaySeconds struct {
	Day     string // YYYY-MM-DD
	Seconds int64
}

// Normalize orders the endpoints of an interval, swapping them when the end
// precedes the start. Reversed intervals come from manual data entry and are
// accepted rather than rejected.
func Normalize(a, b time.Time) (time.Time, time.Time) {
	if b.Before(a) {
		return b, a
	}
	return a, b
}

// Clamp intersects the normalized interval [start, end) with the window
// [winStart, winEnd). The third return is false when the intersection is
// empty or non-positive.
func Clamp(start, end, winStart, winEnd time.Time) (time.Time, time.Time, bool) {
	start, end = Normalize(start, end)
	if start.Before(winStart) {
		start = winStart
	}
	if end.After(winEnd) {
		end = winEnd
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// SplitByDay walks the normalized interval one calendar day at a time in
// loc, emitting the exact second count that falls in each day. A session
// crossing midnight attributes to both days instead of only its start day.
// The sum of the emitted seconds always equals the interval's length, and no
// day appears twice.
func SplitByDay(start, end time.Time, loc *time.Location) []DaySeconds {
	start, end = Normalize(start, end)
	if !start.Before(end) {
		return nil
	}

	start = start.In(loc)
	end = end.In(loc)

	var out []DaySeconds
	cur := start
	for cur.Before(end) {
		next := utils.NextDay(cur)
		segEnd := end
		if next.Before(segEnd) {
			segEnd = next
		}
		secs := int64(segEnd.Sub(cur) / time.Second)
		if secs > 0 {
			out = append(out, DaySeconds{Day: utils.DayString(cur), Seconds: secs})
		}
		cur = next
	}
	return out
}
