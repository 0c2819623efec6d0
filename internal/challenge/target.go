package challenge

import (
	"fmt"
	"math"

	"github.com/julianstephens/readlit/internal/constants"
	"github.com/julianstephens/readlit/internal/models"
)

// allowedMetrics lists each kind's metric pool in reroll order: a reroll
// takes the first entry that differs from the current metric, so the order
// is part of the reproducible behavior.
func allowedMetrics(kind models.ChallengeKind) []models.ChallengeMetric {
	if kind == models.KindMonthly {
		return []models.ChallengeMetric{
			models.MetricBooksFinished,
			models.MetricReadingMinutes,
			models.MetricReadingDays,
			models.MetricPagesRead,
			models.MetricSessions,
		}
	}
	return []models.ChallengeMetric{
		models.MetricReadingDays,
		models.MetricReadingMinutes,
		models.MetricSessions,
		models.MetricPagesRead,
		models.MetricBooksFinished,
	}
}

// pickMetric applies the selection priority to a baseline.
func pickMetric(kind models.ChallengeKind, b Baseline) models.ChallengeMetric {
	if kind == models.KindMonthly {
		if b.BooksPerPeriod >= constants.MonthlyBooksFinishedThreshold {
			return models.MetricBooksFinished
		}
		return models.MetricReadingMinutes
	}

	switch {
	case b.DaysPerPeriod >= constants.WeeklyReadingDaysThreshold:
		return models.MetricReadingDays
	case b.MinutesPerPeriod >= constants.WeeklyReadingMinutesThreshold:
		return models.MetricReadingMinutes
	case b.HasPageHistory:
		return models.MetricSessions
	default:
		return models.MetricReadingMinutes
	}
}

// band is the inclusive clamp range for one (kind, metric) pair.
type band struct {
	min, max int
}

var weeklyBands = map[models.ChallengeMetric]band{
	models.MetricReadingMinutes: {30, 600},
	models.MetricReadingDays:    {2, 6},
	models.MetricSessions:       {3, 14},
	models.MetricPagesRead:      {20, 600},
}

var monthlyBands = map[models.ChallengeMetric]band{
	models.MetricReadingMinutes: {60, 1800},
	models.MetricReadingDays:    {5, 24},
	models.MetricSessions:       {8, 45},
	models.MetricPagesRead:      {50, 2000},
	models.MetricBooksFinished:  {1, 6},
}

// generateTarget scales the relevant baseline average by the metric's growth
// factor, rounds up to the metric's step, and clamps to the (kind, metric)
// band. Weekly books-finished is a fixed degenerate case: finishing a book
// inside a single week is too noisy to scale, so the target is always 1.
func generateTarget(kind models.ChallengeKind, metric models.ChallengeMetric, b Baseline) int {
	if kind == models.KindWeekly && metric == models.MetricBooksFinished {
		return 1
	}

	var avg, growth float64
	var step int
	switch metric {
	case models.MetricReadingMinutes:
		avg, growth, step = b.MinutesPerPeriod, constants.GrowthReadingMinutes, constants.StepReadingMinutes
	case models.MetricReadingDays:
		avg, growth, step = b.DaysPerPeriod, constants.GrowthReadingDays, constants.StepReadingDays
	case models.MetricSessions:
		avg, growth, step = b.SessionsPerPeriod, constants.GrowthSessions, constants.StepSessions
	case models.MetricPagesRead:
		avg, growth, step = b.PagesPerPeriod, constants.GrowthPagesRead, constants.StepPagesRead
	case models.MetricBooksFinished:
		avg, growth, step = b.BooksPerPeriod, constants.GrowthBooksFinished, constants.StepBooksFinished
	}

	target := int(math.Ceil(avg*growth/float64(step))) * step

	bands := weeklyBands
	if kind == models.KindMonthly {
		bands = monthlyBands
	}
	if bd, ok := bands[metric]; ok {
		if target < bd.min {
			target = bd.min
		}
		if target > bd.max {
			target = bd.max
		}
	}
	return target
}

// challengeText returns the frozen title and detail for a generated record.
// The text is never recomputed from live data afterwards.
func challengeText(kind models.ChallengeKind, metric models.ChallengeMetric, target int) (title, detail string) {
	span := "week"
	if kind == models.KindMonthly {
		span = "month"
	}

	switch metric {
	case models.MetricReadingMinutes:
		return "Reading time", fmt.Sprintf("Read for %d minutes this %s", target, span)
	case models.MetricReadingDays:
		return "Reading days", fmt.Sprintf("Read on %d different days this %s", target, span)
	case models.MetricSessions:
		return "Session cadence", fmt.Sprintf("Log %d reading sessions this %s", target, span)
	case models.MetricPagesRead:
		return "Page pusher", fmt.Sprintf("Read %d pages this %s", target, span)
	case models.MetricBooksFinished:
		if target == 1 {
			return "Finish line", fmt.Sprintf("Finish a book this %s", span)
		}
		return "Finish line", fmt.Sprintf("Finish %d books this %s", target, span)
	}
	return "Challenge", fmt.Sprintf("Reach %d this %s", target, span)
}

// unitSuffix is the display unit for a metric's progress value.
func unitSuffix(metric models.ChallengeMetric) string {
	switch metric {
	case models.MetricReadingMinutes:
		return "min"
	case models.MetricReadingDays:
		return "days"
	case models.MetricSessions:
		return "sessions"
	case models.MetricPagesRead:
		return "pages"
	case models.MetricBooksFinished:
		return "books"
	}
	return ""
}
