// Package activity turns a snapshot of books and sessions into day-bucketed
// counts for one metric. Each metric has a deliberately different
// attribution rule; see DailyCounts.
package activity

import (
	"fmt"
	"time"

	"github.com/julianstephens/readlit/internal/interval"
	"github.com/julianstephens/readlit/internal/models"
	"github.com/julianstephens/readlit/internal/utils"
)

type Metric string

const (
	// MetricReadingMinutes sums per-day session overlap seconds, rounding
	// the day's summed seconds to the nearest minute.
	MetricReadingMinutes Metric = "reading-minutes"
	// MetricReadingDays marks calendar days active from book date bounds,
	// not from session logs.
	MetricReadingDays Metric = "reading-days"
	// MetricCompletions counts one per finished book on its finish day.
	MetricCompletions Metric = "completions"
)

// ParseMetric decodes a metric name from user input or settings.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricReadingMinutes, MetricReadingDays, MetricCompletions:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown activity metric: %q", s)
}

// DayRange is an inclusive range of calendar days.
type DayRange struct {
	Start string // YYYY-MM-DD
	End   string // YYYY-MM-DD
}

// YearRange returns the full-year day range for a year.
func YearRange(year int) DayRange {
	return DayRange{
		Start: fmt.Sprintf("%04d-01-01", year),
		End:   fmt.Sprintf("%04d-12-31", year),
	}
}

// Contains reports whether day falls inside the range. Day strings are
// zero-padded ISO dates, so lexical comparison is date comparison.
func (r DayRange) Contains(day string) bool {
	return day >= r.Start && day <= r.End
}

// Aggregator computes daily counts in a fixed location. It holds no mutable
// state and is safe to share.
type Aggregator struct {
	loc *time.Location
}

func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{loc: loc}
}

// DailyCounts returns a map of day → count for the metric over the range.
// Days with a zero count are omitted. The today parameter caps the
// reading-days attribution for in-progress books so that callers, not the
// wall clock, decide what "today" means.
func (a *Aggregator) DailyCounts(metric Metric, r DayRange, snap models.Snapshot, today string) (map[string]int, error) {
	switch metric {
	case MetricReadingMinutes:
		return a.readingMinutes(r, snap)
	case MetricReadingDays:
		return a.readingDays(r, snap, today)
	case MetricCompletions:
		return a.completions(r, snap)
	}
	return nil, fmt.Errorf("unknown activity metric: %q", metric)
}

// readingMinutes sums per-day overlap seconds across every session, then
// converts each day's summed seconds to minutes by rounding once per day.
// Rounding after summing avoids systematic underflow from rounding many
// small sessions individually.
func (a *Aggregator) readingMinutes(r DayRange, snap models.Snapshot) (map[string]int, error) {
	winStart, winEnd, err := a.window(r)
	if err != nil {
		return nil, err
	}

	secondsPerDay := make(map[string]int64)
	for _, sess := range snap.Sessions {
		start, end, ok := interval.Clamp(sess.StartedAt, sess.EndedAt, winStart, winEnd)
		if !ok {
			continue
		}
		for _, seg := range interval.SplitByDay(start, end, a.loc) {
			secondsPerDay[seg.Day] += seg.Seconds
		}
	}

	counts := make(map[string]int)
	for day, secs := range secondsPerDay {
		minutes := int((secs + 30) / 60)
		if minutes > 0 {
			counts[day] = minutes
		}
	}
	return counts, nil
}

// completions attributes one increment per finished book on read_to, falling
// back to read_from.
func (a *Aggregator) completions(r DayRange, snap models.Snapshot) (map[string]int, error) {
	counts := make(map[string]int)
	for _, b := range snap.Books {
		day, ok := b.FinishedOn()
		if !ok {
			continue
		}
		if r.Contains(day) {
			counts[day]++
		}
	}
	return counts, nil
}

// readingDays is policy-based, not session-based. Finished books mark every
// day in [read_from, read_to] active (or the single available bound);
// reading books mark [read_from, min(today, range end)]; to-read books never
// count.
func (a *Aggregator) readingDays(r DayRange, snap models.Snapshot, today string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, b := range snap.Books {
		var from, to string
		switch b.Status {
		case models.StatusFinished:
			switch {
			case b.ReadFrom != nil && b.ReadTo != nil:
				from, to = *b.ReadFrom, *b.ReadTo
			case b.ReadFrom != nil:
				from, to = *b.ReadFrom, *b.ReadFrom
			case b.ReadTo != nil:
				from, to = *b.ReadTo, *b.ReadTo
			default:
				continue
			}
			// Stored bounds may be reversed from manual entry
			if to < from {
				from, to = to, from
			}
		case models.StatusReading:
			if b.ReadFrom == nil {
				continue
			}
			from = *b.ReadFrom
			to = today
			if r.End < to {
				to = r.End
			}
			// to is a computed cap, not user data: when the book started
			// after the cap the policy interval is empty, not reversed.
			if to < from {
				continue
			}
		default:
			continue
		}

		if err := a.markDays(counts, from, to, r); err != nil {
			return nil, err
		}
	}
	return counts, nil
}

// markDays increments every day of [from, to] that falls inside the range.
func (a *Aggregator) markDays(counts map[string]int, from, to string, r DayRange) error {
	if from < r.Start {
		from = r.Start
	}
	if to > r.End {
		to = r.End
	}
	if to < from {
		return nil
	}

	cur, err := utils.ParseDateInLocation(from, a.loc)
	if err != nil {
		return fmt.Errorf("invalid day %q: %w", from, err)
	}
	for {
		day := utils.DayString(cur)
		if day > to {
			break
		}
		counts[day]++
		cur = utils.NextDay(cur)
	}
	return nil
}

// window converts the inclusive day range into a half-open instant window in
// the aggregator's location.
func (a *Aggregator) window(r DayRange) (time.Time, time.Time, error) {
	start, err := utils.ParseDateInLocation(r.Start, a.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range start %q: %w", r.Start, err)
	}
	endDay, err := utils.ParseDateInLocation(r.End, a.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range end %q: %w", r.End, err)
	}
	return start, utils.NextDay(endDay), nil
}
