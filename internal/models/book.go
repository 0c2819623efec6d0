package models

import "time"

type BookStatus string

const (
	StatusToRead   BookStatus = "to_read"
	StatusReading  BookStatus = "reading"
	StatusFinished BookStatus = "finished"
)

// ParseBookStatus decodes a stored status string. Unknown values are
// rejected so the engine never operates on raw strings.
func ParseBookStatus(s string) (BookStatus, bool) {
	switch BookStatus(s) {
	case StatusToRead, StatusReading, StatusFinished:
		return BookStatus(s), true
	}
	return "", false
}

// Ratings holds the six independent 0–5 rating criteria. 0 means "unrated".
type Ratings struct {
	Plot        int `json:"plot"`
	Characters  int `json:"characters"`
	Prose       int `json:"prose"`
	Pacing      int `json:"pacing"`
	Originality int `json:"originality"`
	Enjoyment   int `json:"enjoyment"`
}

// Criteria returns the six values in a fixed order.
func (r Ratings) Criteria() [6]int {
	return [6]int{r.Plot, r.Characters, r.Prose, r.Pacing, r.Originality, r.Enjoyment}
}

// Average returns the mean of the non-zero criteria. The second return is
// false when no criterion has been set, so an unrated book is never confused
// with a zero-rated one.
func (r Ratings) Average() (float64, bool) {
	sum, n := 0, 0
	for _, c := range r.Criteria() {
		if c > 0 {
			sum += c
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

type Book struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Publisher    string     `json:"publisher,omitempty"`
	Language     string     `json:"language,omitempty"`
	MainCategory string     `json:"main_category,omitempty"`
	Categories   []string   `json:"categories,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Status       BookStatus `json:"status"`
	ReadFrom     *string    `json:"read_from,omitempty"` // YYYY-MM-DD
	ReadTo       *string    `json:"read_to,omitempty"`   // YYYY-MM-DD
	PageCount    int        `json:"page_count,omitempty"`
	Ratings      Ratings    `json:"ratings"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Pages returns the page count and whether it is usable. Non-positive counts
// are treated as absent.
func (b Book) Pages() (int, bool) {
	if b.PageCount <= 0 {
		return 0, false
	}
	return b.PageCount, true
}

// FinishedOn returns the day a finished book is attributed to: read_to when
// set, otherwise read_from.
func (b Book) FinishedOn() (string, bool) {
	if b.Status != StatusFinished {
		return "", false
	}
	if b.ReadTo != nil {
		return *b.ReadTo, true
	}
	if b.ReadFrom != nil {
		return *b.ReadFrom, true
	}
	return "", false
}

// HasTag reports whether the book carries the exact tag.
func (b Book) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
