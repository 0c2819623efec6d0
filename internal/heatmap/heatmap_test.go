package heatmap

import (
	"testing"
	"time"

	"github.com/julianstephens/readlit/internal/activity"
)

func TestHeatLevel(t *testing.T) {
	tests := []struct {
		count, max, want int
	}{
		{0, 100, 0},
		{0, 0, 0},
		{5, 0, 0},
		// identity mapping when max <= 4
		{1, 4, 1},
		{3, 4, 3},
		{4, 4, 4},
		{1, 2, 1},
		{2, 2, 2},
		// quartile mapping when max > 4
		{25, 100, 1},
		{26, 100, 2},
		{50, 100, 2},
		{51, 100, 3},
		{75, 100, 3},
		{76, 100, 4},
		{100, 100, 4},
		{1, 100, 1},
	}

	for _, tt := range tests {
		if got := HeatLevel(tt.count, tt.max); got != tt.want {
			t.Errorf("HeatLevel(%d, %d) = %d, want %d", tt.count, tt.max, got, tt.want)
		}
	}
}

func TestBuildGrid_MondayAlignment(t *testing.T) {
	b := New(time.UTC)
	// 2025-03-05 is a Wednesday, 2025-03-11 is a Tuesday
	r := activity.DayRange{Start: "2025-03-05", End: "2025-03-11"}

	weeks, err := b.BuildGrid(map[string]int{"2025-03-05": 1}, r)
	if err != nil {
		t.Fatal(err)
	}
	if len(weeks) != 2 {
		t.Fatalf("expected 2 week rows, got %d", len(weeks))
	}

	if weeks[0].Days[0].Day != "2025-03-03" {
		t.Errorf("first cell = %s, want Monday 2025-03-03", weeks[0].Days[0].Day)
	}
	if weeks[1].Days[6].Day != "2025-03-16" {
		t.Errorf("last cell = %s, want Sunday 2025-03-16", weeks[1].Days[6].Day)
	}

	// Filler cells before the range start carry no counts
	if weeks[0].Days[0].InRange {
		t.Error("2025-03-03 is outside the range and must be filler")
	}
	if !weeks[0].Days[2].InRange || weeks[0].Days[2].Count != 1 {
		t.Errorf("2025-03-05 cell = %+v, want in-range with count 1", weeks[0].Days[2])
	}
}

func TestBuildStats_Streaks(t *testing.T) {
	b := New(time.UTC)
	r := activity.DayRange{Start: "2025-03-01", End: "2025-03-10"}
	counts := map[string]int{
		"2025-03-02": 1,
		"2025-03-03": 2,
		"2025-03-04": 1,
		// gap
		"2025-03-09": 1,
		"2025-03-10": 3,
	}

	stats, err := b.BuildStats(counts, r)
	if err != nil {
		t.Fatal(err)
	}

	if stats.ActiveDays != 5 {
		t.Errorf("ActiveDays = %d, want 5", stats.ActiveDays)
	}
	if stats.LongestStreak != 3 {
		t.Errorf("LongestStreak = %d, want 3", stats.LongestStreak)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2 (range ends on an active day)", stats.CurrentStreak)
	}
	if stats.MaxCount != 3 {
		t.Errorf("MaxCount = %d, want 3", stats.MaxCount)
	}
	if stats.BestDay == nil || stats.BestDay.Day != "2025-03-10" {
		t.Errorf("BestDay = %+v, want 2025-03-10", stats.BestDay)
	}
}

func TestBuildStats_CurrentStreakZeroWhenEndInactive(t *testing.T) {
	b := New(time.UTC)
	r := activity.DayRange{Start: "2025-03-01", End: "2025-03-10"}
	counts := map[string]int{"2025-03-05": 1}

	stats, err := b.BuildStats(counts, r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0 when the range ends inactive", stats.CurrentStreak)
	}
}

func TestBuildStats_BestDayTieEarliestWins(t *testing.T) {
	b := New(time.UTC)
	r := activity.DayRange{Start: "2025-03-01", End: "2025-03-10"}
	counts := map[string]int{
		"2025-03-03": 5,
		"2025-03-07": 5,
	}

	stats, err := b.BuildStats(counts, r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.BestDay == nil || stats.BestDay.Day != "2025-03-03" {
		t.Errorf("BestDay = %+v, want earliest tied day 2025-03-03", stats.BestDay)
	}
}

func TestBuildStats_AllDaysActive(t *testing.T) {
	b := New(time.UTC)
	r := activity.DayRange{Start: "2025-03-01", End: "2025-03-07"}
	counts := map[string]int{}
	for d := 1; d <= 7; d++ {
		counts[time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")] = 1
	}

	stats, err := b.BuildStats(counts, r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.LongestStreak != 7 || stats.CurrentStreak != 7 {
		t.Errorf("streaks = %d/%d, want 7/7", stats.CurrentStreak, stats.LongestStreak)
	}
}

func TestBuildStats_BestWeekdayAndWeek(t *testing.T) {
	b := New(time.UTC)
	r := activity.DayRange{Start: "2025-03-03", End: "2025-03-16"} // two ISO weeks
	counts := map[string]int{
		"2025-03-04": 2, // Tuesday, week 10
		"2025-03-11": 3, // Tuesday, week 11
		"2025-03-12": 1, // Wednesday, week 11
	}

	stats, err := b.BuildStats(counts, r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.BestWeekday == nil || stats.BestWeekday.Weekday != time.Tuesday || stats.BestWeekday.Count != 5 {
		t.Errorf("BestWeekday = %+v, want Tuesday with 5", stats.BestWeekday)
	}
	if stats.BestWeek == nil || stats.BestWeek.Week != 11 || stats.BestWeek.Count != 4 {
		t.Errorf("BestWeek = %+v, want week 11 with 4", stats.BestWeek)
	}
}

func TestBuildStats_BestWeekTieGoesToEarliestWeek(t *testing.T) {
	b := New(time.UTC)
	r := activity.DayRange{Start: "2025-03-03", End: "2025-03-16"} // two ISO weeks
	counts := map[string]int{
		"2025-03-04": 3, // Tuesday, week 10
		"2025-03-11": 3, // Tuesday, week 11
	}

	stats, err := b.BuildStats(counts, r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.BestWeek == nil || stats.BestWeek.Year != 2025 || stats.BestWeek.Week != 10 || stats.BestWeek.Count != 3 {
		t.Errorf("BestWeek = %+v, want tied total resolved to week 10", stats.BestWeek)
	}
}

func TestBuildStats_EmptyCounts(t *testing.T) {
	b := New(time.UTC)
	r := activity.DayRange{Start: "2025-03-01", End: "2025-03-10"}

	stats, err := b.BuildStats(map[string]int{}, r)
	if err != nil {
		t.Fatal(err)
	}
	if stats.BestDay != nil || stats.BestWeekday != nil || stats.BestWeek != nil {
		t.Errorf("bests must be nil with no activity: %+v", stats)
	}
	if stats.ActiveDays != 0 || stats.LongestStreak != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}
