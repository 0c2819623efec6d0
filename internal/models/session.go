package models

import "time"

// ReadingSession is a logged reading interval for one book. StartedAt and
// EndedAt are not guaranteed to be ordered; consumers normalize.
type ReadingSession struct {
	ID        string     `json:"id"`
	BookID    string     `json:"book_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   time.Time  `json:"ended_at"`
	PagesRead int        `json:"pages_read,omitempty"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Pages returns the logged page count and whether it is usable.
// Non-positive values are treated as absent.
func (s ReadingSession) Pages() (int, bool) {
	if s.PagesRead <= 0 {
		return 0, false
	}
	return s.PagesRead, true
}

// DurationSeconds returns the normalized session length, clamped to zero.
func (s ReadingSession) DurationSeconds() int64 {
	start, end := s.StartedAt, s.EndedAt
	if end.Before(start) {
		start, end = end, start
	}
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
