package constants

// Challenge engine tuning. Baselines are computed over a lookback window
// ending at the period start; targets scale the baseline average by a
// per-metric growth factor, round up to a step, and clamp to a band.
const (
	WeeklyLookbackDays  = 28
	MonthlyLookbackDays = 90

	GrowthReadingMinutes = 1.15
	GrowthReadingDays    = 1.10
	GrowthSessions       = 1.20
	GrowthPagesRead      = 1.15
	GrowthBooksFinished  = 1.25

	StepReadingMinutes = 10
	StepReadingDays    = 1
	StepSessions       = 1
	StepPagesRead      = 10
	StepBooksFinished  = 1

	// Metric selection thresholds (weekly baseline averages)
	WeeklyReadingDaysThreshold    = 3.0
	WeeklyReadingMinutesThreshold = 90.0

	// Monthly metric selection threshold
	MonthlyBooksFinishedThreshold = 1.0
)
