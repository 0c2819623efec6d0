// Package challenge generates and manages adaptive reading goals. Targets
// are derived from a rolling historical baseline; the record lifecycle is a
// small state machine: Active → Completed → Claimed, with a single reroll
// allowed while active.
//
// All computations are pure functions over the snapshot the caller supplies.
// Mutating operations (ensure/reroll/claim/scan) must be serialized by the
// caller; the engine applies its in-memory mutation first and surfaces save
// failures without retrying or rolling back.
package challenge

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/readlit/internal/activity"
	"github.com/julianstephens/readlit/internal/models"
	"github.com/julianstephens/readlit/internal/utils"
)

var (
	// ErrNotFound is returned when no challenge record matches.
	ErrNotFound = errors.New("challenge not found")
	// ErrRerollUsed is returned when the record's single reroll is spent.
	ErrRerollUsed = errors.New("challenge has already been rerolled")
	// ErrCompleted is returned when rerolling a completed challenge.
	ErrCompleted = errors.New("completed challenge cannot be rerolled")
	// ErrNotCompleted is returned when claiming an unfinished challenge.
	ErrNotCompleted = errors.New("challenge is not completed yet")
	// ErrAlreadyClaimed is returned when claiming twice.
	ErrAlreadyClaimed = errors.New("challenge reward already claimed")
)

// Store is the persistence collaborator. The boolean return of GetChallenge
// distinguishes "no record" from a storage failure.
type Store interface {
	GetChallenge(kind models.ChallengeKind, periodStart string) (models.ChallengeRecord, bool, error)
	GetAllChallenges() ([]models.ChallengeRecord, error)
	SaveChallenge(models.ChallengeRecord) error
}

// Engine computes over snapshots and hands record mutations to the store.
type Engine struct {
	store Store
	loc   *time.Location
	agg   *activity.Aggregator
}

func New(store Store, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{store: store, loc: loc, agg: activity.New(loc)}
}

// EnsureCurrent guarantees one record per kind for the period containing
// now, generating missing ones from the baseline. Calling it twice for the
// same instant produces no second record for a (kind, periodStart).
func (e *Engine) EnsureCurrent(snap models.Snapshot, now time.Time) ([]models.ChallengeRecord, error) {
	now = now.In(e.loc)
	var records []models.ChallengeRecord
	var errs []error

	for _, kind := range []models.ChallengeKind{models.KindWeekly, models.KindMonthly} {
		rec, err := e.ensureOne(snap, kind, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, rec)
	}
	return records, errors.Join(errs...)
}

func (e *Engine) ensureOne(snap models.Snapshot, kind models.ChallengeKind, now time.Time) (models.ChallengeRecord, error) {
	period, err := PeriodFor(kind, now)
	if err != nil {
		return models.ChallengeRecord{}, err
	}

	existing, found, err := e.store.GetChallenge(kind, period.Start)
	if err != nil {
		return models.ChallengeRecord{}, fmt.Errorf("looking up %s challenge: %w", kind, err)
	}
	if found {
		return existing, nil
	}

	baseline, err := e.computeBaseline(snap, kind, period.Start)
	if err != nil {
		return models.ChallengeRecord{}, err
	}

	metric := pickMetric(kind, baseline)
	target := generateTarget(kind, metric, baseline)
	title, detail := challengeText(kind, metric, target)

	rec := models.ChallengeRecord{
		ID:          uuid.NewString(),
		Kind:        kind,
		Metric:      metric,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Title:       title,
		Detail:      detail,
		TargetValue: target,
		CreatedAt:   now,
	}

	if err := e.store.SaveChallenge(rec); err != nil {
		// The record is still returned: the in-memory mutation stands and
		// the caller reconciles the failed save.
		return rec, fmt.Errorf("could not save %s challenge: %w", kind, err)
	}
	return rec, nil
}

// Reroll swaps an active record to the first allowed metric that differs
// from the current one, regenerates target and text from the baseline, and
// resets completion state. Allowed once per record.
func (e *Engine) Reroll(snap models.Snapshot, id string, now time.Time) (models.ChallengeRecord, error) {
	rec, err := e.find(id)
	if err != nil {
		return models.ChallengeRecord{}, err
	}
	if rec.Completed() {
		return models.ChallengeRecord{}, ErrCompleted
	}
	if rec.RerollsUsed > 0 {
		return models.ChallengeRecord{}, ErrRerollUsed
	}

	var next models.ChallengeMetric
	for _, m := range allowedMetrics(rec.Kind) {
		if m != rec.Metric {
			next = m
			break
		}
	}

	baseline, err := e.computeBaseline(snap, rec.Kind, rec.PeriodStart)
	if err != nil {
		return models.ChallengeRecord{}, err
	}

	now = now.In(e.loc)
	rec.Metric = next
	rec.TargetValue = generateTarget(rec.Kind, next, baseline)
	rec.Title, rec.Detail = challengeText(rec.Kind, next, rec.TargetValue)
	rec.CompletedAt = nil
	rec.AcknowledgedAt = nil
	rec.RerollsUsed++
	rec.RerolledAt = &now

	if err := e.store.SaveChallenge(rec); err != nil {
		return rec, fmt.Errorf("could not save challenge reroll: %w", err)
	}
	return rec, nil
}

// Claim acknowledges a completed challenge.
func (e *Engine) Claim(id string, now time.Time) (models.ChallengeRecord, error) {
	rec, err := e.find(id)
	if err != nil {
		return models.ChallengeRecord{}, err
	}
	if !rec.Completed() {
		return models.ChallengeRecord{}, ErrNotCompleted
	}
	if rec.Claimed() {
		return models.ChallengeRecord{}, ErrAlreadyClaimed
	}

	now = now.In(e.loc)
	rec.AcknowledgedAt = &now

	if err := e.store.SaveChallenge(rec); err != nil {
		return rec, fmt.Errorf("could not save challenge claim: %w", err)
	}
	return rec, nil
}

// ScanCompletions marks every active record whose progress has reached its
// target. The scan is idempotent and safe to run on every view refresh.
func (e *Engine) ScanCompletions(snap models.Snapshot, now time.Time) ([]models.ChallengeRecord, error) {
	all, err := e.store.GetAllChallenges()
	if err != nil {
		return nil, fmt.Errorf("listing challenges: %w", err)
	}

	now = now.In(e.loc)
	var updated []models.ChallengeRecord
	var errs []error

	for _, rec := range all {
		if rec.Completed() {
			continue
		}
		progress, err := e.Progress(snap, rec, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if progress.Value < rec.TargetValue {
			continue
		}
		completedAt := now
		rec.CompletedAt = &completedAt
		if err := e.store.SaveChallenge(rec); err != nil {
			errs = append(errs, fmt.Errorf("could not save challenge completion: %w", err))
		}
		updated = append(updated, rec)
	}
	return updated, errors.Join(errs...)
}

// Progress holds a record's current value against its target.
type Progress struct {
	Value      int    `json:"value"`
	Target     int    `json:"target"`
	UnitSuffix string `json:"unit_suffix"`
}

// Fraction is the completion ratio, capped at 1.
func (p Progress) Fraction() float64 {
	if p.Target <= 0 {
		return 0
	}
	f := float64(p.Value) / float64(p.Target)
	if f > 1 {
		return 1
	}
	return f
}

// Remaining renders a short "to go" string, or "done" once the target is met.
func (p Progress) Remaining() string {
	left := p.Target - p.Value
	if left <= 0 {
		return "done"
	}
	return fmt.Sprintf("%d %s to go", left, p.UnitSuffix)
}

// Progress re-runs the aggregator attribution rules restricted to the
// record's period and metric.
func (e *Engine) Progress(snap models.Snapshot, rec models.ChallengeRecord, now time.Time) (Progress, error) {
	window := Period{Start: rec.PeriodStart, End: rec.PeriodEnd}
	totals, err := e.windowTotals(snap, window, utils.DayString(now.In(e.loc)))
	if err != nil {
		return Progress{}, err
	}

	p := Progress{Target: rec.TargetValue, UnitSuffix: unitSuffix(rec.Metric)}
	switch rec.Metric {
	case models.MetricReadingMinutes:
		p.Value = totals.Minutes
	case models.MetricReadingDays:
		p.Value = totals.Days
	case models.MetricSessions:
		p.Value = totals.Sessions
	case models.MetricPagesRead:
		p.Value = totals.Pages
	case models.MetricBooksFinished:
		p.Value = totals.Books
	default:
		return Progress{}, fmt.Errorf("unknown challenge metric: %q", rec.Metric)
	}
	return p, nil
}

func (e *Engine) find(id string) (models.ChallengeRecord, error) {
	all, err := e.store.GetAllChallenges()
	if err != nil {
		return models.ChallengeRecord{}, fmt.Errorf("listing challenges: %w", err)
	}
	for _, rec := range all {
		if rec.ID == id {
			return rec, nil
		}
	}
	return models.ChallengeRecord{}, ErrNotFound
}
