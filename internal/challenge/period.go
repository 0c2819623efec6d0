package challenge

import (
	"fmt"
	"time"

	"github.com/julianstephens/readlit/internal/models"
	"github.com/julianstephens/readlit/internal/utils"
)

// Period is a half-open day range [Start, End) covering one week or month.
type Period struct {
	Start string // YYYY-MM-DD, inclusive
	End   string // YYYY-MM-DD, exclusive
}

// PeriodFor computes the challenge period containing now: ISO Monday-to-
// Monday for weekly, first-of-month to first-of-next-month for monthly.
func PeriodFor(kind models.ChallengeKind, now time.Time) (Period, error) {
	switch kind {
	case models.KindWeekly:
		start := mondayOf(now)
		return Period{
			Start: utils.DayString(start),
			End:   utils.DayString(start.AddDate(0, 0, 7)),
		}, nil
	case models.KindMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Period{
			Start: utils.DayString(start),
			End:   utils.DayString(start.AddDate(0, 1, 0)),
		}, nil
	}
	return Period{}, fmt.Errorf("unknown challenge kind: %q", kind)
}

// lastDay returns the final day inside the half-open period.
func (p Period) lastDay(loc *time.Location) (string, error) {
	end, err := utils.ParseDateInLocation(p.End, loc)
	if err != nil {
		return "", fmt.Errorf("invalid period end %q: %w", p.End, err)
	}
	return utils.DayString(end.AddDate(0, 0, -1)), nil
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 … Sunday=6
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}
