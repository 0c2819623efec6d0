package models

import "time"

type ChallengeKind string

const (
	KindWeekly  ChallengeKind = "weekly"
	KindMonthly ChallengeKind = "monthly"
)

func ParseChallengeKind(s string) (ChallengeKind, bool) {
	switch ChallengeKind(s) {
	case KindWeekly, KindMonthly:
		return ChallengeKind(s), true
	}
	return "", false
}

type ChallengeMetric string

const (
	MetricReadingMinutes ChallengeMetric = "reading_minutes"
	MetricReadingDays    ChallengeMetric = "reading_days"
	MetricSessions       ChallengeMetric = "sessions"
	MetricPagesRead      ChallengeMetric = "pages_read"
	MetricBooksFinished  ChallengeMetric = "books_finished"
)

func ParseChallengeMetric(s string) (ChallengeMetric, bool) {
	switch ChallengeMetric(s) {
	case MetricReadingMinutes, MetricReadingDays, MetricSessions, MetricPagesRead, MetricBooksFinished:
		return ChallengeMetric(s), true
	}
	return "", false
}

// ChallengeRecord is a generated goal for one discrete period. Title and
// detail text are frozen at generation time and never recomputed from live
// book data. At most one record exists per (kind, period_start).
type ChallengeRecord struct {
	ID             string          `json:"id"`
	Kind           ChallengeKind   `json:"kind"`
	Metric         ChallengeMetric `json:"metric"`
	PeriodStart    string          `json:"period_start"` // YYYY-MM-DD, inclusive
	PeriodEnd      string          `json:"period_end"`   // YYYY-MM-DD, exclusive
	Title          string          `json:"title"`
	Detail         string          `json:"detail"`
	TargetValue    int             `json:"target_value"`
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	AcknowledgedAt *time.Time      `json:"acknowledged_at,omitempty"`
	RerollsUsed    int             `json:"rerolls_used"`
	RerolledAt     *time.Time      `json:"rerolled_at,omitempty"`
}

// Completed reports whether the record has been marked done for its current
// generation.
func (c ChallengeRecord) Completed() bool {
	return c.CompletedAt != nil
}

// Claimed reports whether the user has acknowledged the completion.
func (c ChallengeRecord) Claimed() bool {
	return c.AcknowledgedAt != nil
}

// CanReroll reports whether a reroll is still allowed: one per record, and
// only while the record is not completed.
func (c ChallengeRecord) CanReroll() bool {
	return c.RerollsUsed == 0 && !c.Completed()
}
