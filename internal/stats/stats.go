// Package stats computes scoped, year-filtered top-N lists, monthly
// finished/pages series, and superlative single-book picks over a book
// collection.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/julianstephens/readlit/internal/constants"
	"github.com/julianstephens/readlit/internal/models"
)

// Field selects which book attribute a top list groups by.
type Field string

const (
	FieldAuthors    Field = "authors"
	FieldPublishers Field = "publishers"
	FieldLanguages  Field = "languages"
	FieldTags       Field = "tags"
	FieldGenres     Field = "genres"
	FieldSubgenres  Field = "subgenres"
)

// Fields lists every supported top-list field in display order.
func Fields() []Field {
	return []Field{FieldAuthors, FieldPublishers, FieldLanguages, FieldTags, FieldGenres, FieldSubgenres}
}

// TopEntry is one row of a top-N list.
type TopEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MonthlyPoint is one month of the finished/pages series. Months without
// data appear with zero values.
type MonthlyPoint struct {
	Month    string `json:"month"` // YYYY-MM
	Finished int    `json:"finished"`
	Pages    int    `json:"pages"`
}

// Pick is a superlative single-book statistic.
type Pick struct {
	BookID string  `json:"book_id"`
	Title  string  `json:"title"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
}

// NerdPicks are the four superlatives. Absent picks are nil, never
// zero-valued placeholders.
type NerdPicks struct {
	Fastest      *Pick `json:"fastest,omitempty"`
	Slowest      *Pick `json:"slowest,omitempty"`
	Biggest      *Pick `json:"biggest,omitempty"`
	HighestRated *Pick `json:"highest_rated,omitempty"`
}

// Filter scopes an aggregation. A zero value means "no filter". Tag scoping
// keeps books carrying the exact tag; Year keeps books finished in that year.
type Filter struct {
	Tag  string
	Year int
}

// Aggregator computes stats with locale-aware, case-insensitive label
// ordering. Grouping identity stays exact and case-sensitive; only the sort
// comparison folds case.
type Aggregator struct {
	coll *collate.Collator
}

func New() *Aggregator {
	return &Aggregator{coll: collate.New(language.Und, collate.IgnoreCase)}
}

// TopList groups the scoped books by the field's trimmed string values,
// sorts by count descending then label ascending, and truncates to n.
func (a *Aggregator) TopList(field Field, books []models.Book, f Filter, n int) ([]TopEntry, error) {
	extract, err := extractor(field)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, b := range scoped(books, f) {
		for _, label := range extract(b) {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			counts[label]++
		}
	}

	entries := make([]TopEntry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, TopEntry{Label: label, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return a.coll.CompareString(entries[i].Label, entries[j].Label) < 0
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// MonthlySeries buckets finished books by the (year, month) of their finish
// day and sums counts and page counts, emitting one point for every month of
// the requested year including empty ones.
func (a *Aggregator) MonthlySeries(books []models.Book, f Filter, year int) []MonthlyPoint {
	points := make([]MonthlyPoint, 12)
	for i := range points {
		points[i].Month = fmt.Sprintf("%04d-%02d", year, i+1)
	}

	for _, b := range scopedByTag(books, f.Tag) {
		day, ok := b.FinishedOn()
		if !ok {
			continue
		}
		t, err := time.Parse(constants.DateFormat, day)
		if err != nil || t.Year() != year {
			continue
		}
		p := &points[int(t.Month())-1]
		p.Finished++
		if pages, ok := b.Pages(); ok {
			p.Pages += pages
		}
	}
	return points
}

// Superlatives computes the four nerd picks. Fastest, slowest, and biggest
// consider only books finished within the scope and year that carry both
// read bounds; highest-rated spans the full scope regardless of year and
// needs a non-zero rating average. All comparisons are strict, so the first
// seen wins exact ties.
func (a *Aggregator) Superlatives(books []models.Book, f Filter) NerdPicks {
	var picks NerdPicks

	for _, b := range scoped(books, f) {
		if b.Status != models.StatusFinished || b.ReadFrom == nil || b.ReadTo == nil {
			continue
		}
		days, ok := readingSpanDays(*b.ReadFrom, *b.ReadTo)
		if !ok {
			continue
		}

		if picks.Fastest == nil || float64(days) < picks.Fastest.Value {
			picks.Fastest = &Pick{BookID: b.ID, Title: b.Title, Value: float64(days), Unit: "days"}
		}
		if picks.Slowest == nil || float64(days) > picks.Slowest.Value {
			picks.Slowest = &Pick{BookID: b.ID, Title: b.Title, Value: float64(days), Unit: "days"}
		}
		if pages, ok := b.Pages(); ok {
			if picks.Biggest == nil || float64(pages) > picks.Biggest.Value {
				picks.Biggest = &Pick{BookID: b.ID, Title: b.Title, Value: float64(pages), Unit: "pages"}
			}
		}
	}

	for _, b := range scopedByTag(books, f.Tag) {
		avg, ok := b.Ratings.Average()
		if !ok {
			continue
		}
		if picks.HighestRated == nil || avg > picks.HighestRated.Value {
			picks.HighestRated = &Pick{BookID: b.ID, Title: b.Title, Value: avg, Unit: "stars"}
		}
	}

	return picks
}

// readingSpanDays is the inclusive day span between two dates, counted as at
// least 1 so a same-day read still counts as one day.
func readingSpanDays(from, to string) (int, bool) {
	start, err := time.Parse(constants.DateFormat, from)
	if err != nil {
		return 0, false
	}
	end, err := time.Parse(constants.DateFormat, to)
	if err != nil {
		return 0, false
	}
	if end.Before(start) {
		start, end = end, start
	}
	days := int(end.Sub(start)/(24*time.Hour)) + 1
	if days < 1 {
		days = 1
	}
	return days, true
}

func extractor(field Field) (func(models.Book) []string, error) {
	switch field {
	case FieldAuthors:
		return func(b models.Book) []string { return []string{b.Author} }, nil
	case FieldPublishers:
		return func(b models.Book) []string { return []string{b.Publisher} }, nil
	case FieldLanguages:
		return func(b models.Book) []string { return []string{b.Language} }, nil
	case FieldTags:
		return func(b models.Book) []string { return b.Tags }, nil
	case FieldGenres:
		return func(b models.Book) []string {
			var out []string
			for _, c := range bookCategories(b) {
				if genre, _ := ParseGenre(c); genre != "" {
					out = append(out, genre)
				}
			}
			return out
		}, nil
	case FieldSubgenres:
		return func(b models.Book) []string {
			var out []string
			for _, c := range bookCategories(b) {
				if _, sub := ParseGenre(c); sub != "" {
					out = append(out, sub)
				}
			}
			return out
		}, nil
	}
	return nil, fmt.Errorf("unknown stats field: %q", field)
}

func bookCategories(b models.Book) []string {
	if len(b.Categories) > 0 {
		return b.Categories
	}
	if b.MainCategory != "" {
		return []string{b.MainCategory}
	}
	return nil
}

func scopedByTag(books []models.Book, tag string) []models.Book {
	if tag == "" {
		return books
	}
	var out []models.Book
	for _, b := range books {
		if b.HasTag(tag) {
			out = append(out, b)
		}
	}
	return out
}

func scoped(books []models.Book, f Filter) []models.Book {
	books = scopedByTag(books, f.Tag)
	if f.Year == 0 {
		return books
	}
	var out []models.Book
	for _, b := range books {
		day, ok := b.FinishedOn()
		if !ok {
			continue
		}
		t, err := time.Parse(constants.DateFormat, day)
		if err != nil || t.Year() != f.Year {
			continue
		}
		out = append(out, b)
	}
	return out
}
