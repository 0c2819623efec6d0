package challenge

import (
	"fmt"
	"time"

	"github.com/julianstephens/readlit/internal/activity"
	"github.com/julianstephens/readlit/internal/constants"
	"github.com/julianstephens/readlit/internal/interval"
	"github.com/julianstephens/readlit/internal/models"
	"github.com/julianstephens/readlit/internal/utils"
)

// Baseline holds per-period averages over the lookback window ending at a
// period start. HasPageHistory reports whether any session in the snapshot
// has ever tracked pages, regardless of window.
type Baseline struct {
	MinutesPerPeriod  float64
	DaysPerPeriod     float64
	SessionsPerPeriod float64
	PagesPerPeriod    float64
	BooksPerPeriod    float64
	HasPageHistory    bool
}

// windowTotals are the raw attribution sums for one half-open day window.
// The same rules feed both baselines and progress so the two can never
// drift apart.
type windowTotals struct {
	Minutes  int
	Days     int
	Sessions int
	Pages    int
	Books    int
}

// computeBaseline aggregates the lookback window ending at periodStart and
// divides by the number of periods it spans.
func (e *Engine) computeBaseline(snap models.Snapshot, kind models.ChallengeKind, periodStart string) (Baseline, error) {
	lookbackDays := constants.WeeklyLookbackDays
	periodDays := 7.0
	if kind == models.KindMonthly {
		lookbackDays = constants.MonthlyLookbackDays
		periodDays = 30.0
	}

	start, err := utils.ParseDateInLocation(periodStart, e.loc)
	if err != nil {
		return Baseline{}, fmt.Errorf("invalid period start %q: %w", periodStart, err)
	}
	window := Period{
		Start: utils.DayString(start.AddDate(0, 0, -lookbackDays)),
		End:   periodStart,
	}

	// Historical window: cap the reading-days "today" at the window's end
	// so the baseline does not depend on the wall clock.
	lastDay, err := window.lastDay(e.loc)
	if err != nil {
		return Baseline{}, err
	}
	totals, err := e.windowTotals(snap, window, lastDay)
	if err != nil {
		return Baseline{}, err
	}

	periods := float64(lookbackDays) / periodDays
	b := Baseline{
		MinutesPerPeriod:  float64(totals.Minutes) / periods,
		DaysPerPeriod:     float64(totals.Days) / periods,
		SessionsPerPeriod: float64(totals.Sessions) / periods,
		PagesPerPeriod:    float64(totals.Pages) / periods,
		BooksPerPeriod:    float64(totals.Books) / periods,
	}
	for _, s := range snap.Sessions {
		if _, ok := s.Pages(); ok {
			b.HasPageHistory = true
			break
		}
	}
	return b, nil
}

// windowTotals runs the aggregator attribution rules restricted to the
// half-open window.
func (e *Engine) windowTotals(snap models.Snapshot, window Period, today string) (windowTotals, error) {
	lastDay, err := window.lastDay(e.loc)
	if err != nil {
		return windowTotals{}, err
	}
	dayRange := activity.DayRange{Start: window.Start, End: lastDay}

	var totals windowTotals

	minuteCounts, err := e.agg.DailyCounts(activity.MetricReadingMinutes, dayRange, snap, today)
	if err != nil {
		return windowTotals{}, err
	}
	for _, m := range minuteCounts {
		totals.Minutes += m
	}

	dayCounts, err := e.agg.DailyCounts(activity.MetricReadingDays, dayRange, snap, today)
	if err != nil {
		return windowTotals{}, err
	}
	for _, c := range dayCounts {
		if c > 0 {
			totals.Days++
		}
	}

	winStart, winEnd, err := e.windowInstants(window)
	if err != nil {
		return windowTotals{}, err
	}
	for _, s := range snap.Sessions {
		if _, _, ok := interval.Clamp(s.StartedAt, s.EndedAt, winStart, winEnd); !ok {
			continue
		}
		totals.Sessions++
		if pages, ok := s.Pages(); ok {
			totals.Pages += pages
		}
	}

	for _, b := range snap.Books {
		day, ok := b.FinishedOn()
		if !ok {
			continue
		}
		if day >= window.Start && day < window.End {
			totals.Books++
		}
	}

	return totals, nil
}

func (e *Engine) windowInstants(window Period) (time.Time, time.Time, error) {
	start, err := utils.ParseDateInLocation(window.Start, e.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid window start %q: %w", window.Start, err)
	}
	end, err := utils.ParseDateInLocation(window.End, e.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid window end %q: %w", window.End, err)
	}
	return start, end, nil
}
