// Package heatmap expands daily activity counts into a Monday-aligned week
// grid with 0–4 intensity levels, and derives streaks and best day/weekday/
// week records.
package heatmap

import (
	"fmt"
	"time"

	"github.com/julianstephens/readlit/internal/activity"
	"github.com/julianstephens/readlit/internal/utils"
)

// Cell is one day of the grid. Cells outside the requested range are kept as
// grid filler with a forced zero count and level.
type Cell struct {
	Day     string `json:"day"`
	Count   int    `json:"count"`
	Level   int    `json:"level"`
	InRange bool   `json:"in_range"`
}

// Week is a Monday-to-Sunday row of seven cells.
type Week struct {
	Days [7]Cell `json:"days"`
}

// DayCount is a day label with its activity count.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// WeekdayCount is a weekday bucket (Monday=0 … Sunday=6) with the summed
// count across the whole range.
type WeekdayCount struct {
	Weekday time.Weekday `json:"weekday"`
	Count   int          `json:"count"`
}

// WeekCount is an ISO (year, week) bucket with its summed count.
type WeekCount struct {
	Year  int `json:"year"`
	Week  int `json:"week"`
	Count int `json:"count"`
}

// Stats are the derived records for a range of daily counts. Absent values
// (no active day at all) are nil rather than zero-valued.
type Stats struct {
	ActiveDays    int           `json:"active_days"`
	MaxCount      int           `json:"max_count"`
	CurrentStreak int           `json:"current_streak"`
	LongestStreak int           `json:"longest_streak"`
	BestDay       *DayCount     `json:"best_day,omitempty"`
	BestWeekday   *WeekdayCount `json:"best_weekday,omitempty"`
	BestWeek      *WeekCount    `json:"best_week,omitempty"`
}

// Builder renders grids and stats in a fixed location.
type Builder struct {
	loc *time.Location
}

func New(loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{loc: loc}
}

// HeatLevel maps a count to a 0–4 intensity level relative to the range
// maximum. For max ≤ 4 the mapping is the identity up to max, which keeps
// small-scale data from over-saturating; otherwise counts bucket by quartile
// of the ratio to max. Level 0 iff count is 0.
func HeatLevel(count, max int) int {
	if count <= 0 || max <= 0 {
		return 0
	}
	if max <= 4 {
		if count < max {
			return count
		}
		return max
	}
	ratio := float64(count) / float64(max)
	switch {
	case ratio <= 0.25:
		return 1
	case ratio <= 0.50:
		return 2
	case ratio <= 0.75:
		return 3
	default:
		return 4
	}
}

// BuildGrid extends the range to the Monday of the start's week and the
// Sunday of the end's week, producing whole weeks of 7 day cells.
func (b *Builder) BuildGrid(counts map[string]int, r activity.DayRange) ([]Week, error) {
	start, err := utils.ParseDateInLocation(r.Start, b.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid range start %q: %w", r.Start, err)
	}
	end, err := utils.ParseDateInLocation(r.End, b.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid range end %q: %w", r.End, err)
	}
	if end.Before(start) {
		start, end = end, start
	}

	max := maxCount(counts, r)

	cur := mondayOf(start)
	last := mondayOf(end) // week rows run cur..last inclusive

	var weeks []Week
	for !cur.After(last) {
		var week Week
		for i := 0; i < 7; i++ {
			day := utils.DayString(cur)
			cell := Cell{Day: day, InRange: r.Contains(day)}
			if cell.InRange {
				cell.Count = counts[day]
				cell.Level = HeatLevel(cell.Count, max)
			}
			week.Days[i] = cell
			cur = utils.NextDay(cur)
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

// BuildStats computes streaks and best day/weekday/week records for the
// counts over the inclusive range. Tied best-week totals resolve to the
// earliest ISO (year, week), matching the earliest-wins rule for best day.
func (b *Builder) BuildStats(counts map[string]int, r activity.DayRange) (Stats, error) {
	start, err := utils.ParseDateInLocation(r.Start, b.loc)
	if err != nil {
		return Stats{}, fmt.Errorf("invalid range start %q: %w", r.Start, err)
	}
	end, err := utils.ParseDateInLocation(r.End, b.loc)
	if err != nil {
		return Stats{}, fmt.Errorf("invalid range end %q: %w", r.End, err)
	}
	if end.Before(start) {
		start, end = end, start
	}

	stats := Stats{}
	weekdaySums := [7]int{}
	weekSums := make(map[WeekCount]int) // keyed with Count=0

	// Forward scan: longest streak, best day, bucket sums.
	run := 0
	for cur := start; !cur.After(end); cur = utils.NextDay(cur) {
		day := utils.DayString(cur)
		count := counts[day]

		if count > 0 {
			stats.ActiveDays++
			run++
			if run > stats.LongestStreak {
				stats.LongestStreak = run
			}
		} else {
			run = 0
		}

		if count > stats.MaxCount {
			stats.MaxCount = count
		}
		// Earliest date wins ties, so strictly-greater only.
		if count > 0 && (stats.BestDay == nil || count > stats.BestDay.Count) {
			stats.BestDay = &DayCount{Day: day, Count: count}
		}

		weekdaySums[mondayIndex(cur.Weekday())] += count

		isoYear, isoWeek := cur.ISOWeek()
		weekSums[WeekCount{Year: isoYear, Week: isoWeek}] += count
	}

	// Backward scan from range end: current streak.
	for cur := end; !cur.Before(start); cur = prevDay(cur) {
		if counts[utils.DayString(cur)] <= 0 {
			break
		}
		stats.CurrentStreak++
	}

	if stats.ActiveDays > 0 {
		best := 0
		for i, sum := range weekdaySums {
			if sum > weekdaySums[best] {
				best = i
			}
		}
		stats.BestWeekday = &WeekdayCount{Weekday: weekdayFromMondayIndex(best), Count: weekdaySums[best]}

		var bestWeek *WeekCount
		for wk, sum := range weekSums {
			if sum <= 0 {
				continue
			}
			if bestWeek == nil || sum > bestWeek.Count ||
				(sum == bestWeek.Count && (wk.Year < bestWeek.Year || (wk.Year == bestWeek.Year && wk.Week < bestWeek.Week))) {
				bestWeek = &WeekCount{Year: wk.Year, Week: wk.Week, Count: sum}
			}
		}
		stats.BestWeek = bestWeek
	}

	return stats, nil
}

// mondayIndex maps time.Weekday onto Monday=0 … Sunday=6.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func weekdayFromMondayIndex(i int) time.Weekday {
	return time.Weekday((i + 1) % 7)
}

func mondayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()-mondayIndex(t.Weekday()), 0, 0, 0, 0, t.Location())
}

func prevDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()-1, 0, 0, 0, 0, t.Location())
}

func maxCount(counts map[string]int, r activity.DayRange) int {
	max := 0
	for day, c := range counts {
		if r.Contains(day) && c > max {
			max = c
		}
	}
	return max
}
