package validation

import (
	"fmt"
	"time"

	"github.com/julianstephens/readlit/internal/constants"
	"github.com/julianstephens/readlit/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateBookID    ConflictType = "duplicate_book_id"
	ConflictDuplicateSessionID ConflictType = "duplicate_session_id"
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictReversedBounds     ConflictType = "reversed_bounds"
	ConflictReversedSession    ConflictType = "reversed_session"
	ConflictInvalidPageCount   ConflictType = "invalid_page_count"
	ConflictDanglingSession    ConflictType = "dangling_session"
	ConflictInvalidStatus      ConflictType = "invalid_status"
	ConflictInvalidRating      ConflictType = "invalid_rating"
)

// Conflict represents a detected problem in the library data
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // IDs of the records involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator checks books and sessions for data problems
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateBooks checks book records for conflicts
func (v *Validator) ValidateBooks(books []models.Book) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	seen := make(map[string]bool)
	for _, book := range books {
		if book.DeletedAt != nil {
			continue
		}

		if seen[book.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateBookID,
				Description: fmt.Sprintf("Duplicate book ID: %s (%q)", book.ID, book.Title),
				Items:       []string{book.ID},
			})
		}
		seen[book.ID] = true

		if _, ok := models.ParseBookStatus(string(book.Status)); !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidStatus,
				Description: fmt.Sprintf("Book %q has invalid status %q", book.Title, book.Status),
				Items:       []string{book.ID},
			})
		}

		from, fromOK := checkDate(&result, book.ID, book.Title, "read-from", book.ReadFrom)
		to, toOK := checkDate(&result, book.ID, book.Title, "read-to", book.ReadTo)
		if fromOK && toOK && book.ReadFrom != nil && book.ReadTo != nil && to.Before(from) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictReversedBounds,
				Description: fmt.Sprintf("Book %q finished before it was started (%s > %s)", book.Title, *book.ReadFrom, *book.ReadTo),
				Items:       []string{book.ID},
			})
		}

		if book.PageCount < 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidPageCount,
				Description: fmt.Sprintf("Book %q has negative page count %d", book.Title, book.PageCount),
				Items:       []string{book.ID},
			})
		}

		for _, r := range book.Ratings.Criteria() {
			if r < 0 || r > 5 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidRating,
					Description: fmt.Sprintf("Book %q has rating %d outside 0-5", book.Title, r),
					Items:       []string{book.ID},
				})
				break
			}
		}
	}

	return result
}

// ValidateSessions checks session records against the book set
func (v *Validator) ValidateSessions(sessions []models.ReadingSession, books []models.Book) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	bookIDs := make(map[string]bool)
	for _, book := range books {
		if book.DeletedAt == nil {
			bookIDs[book.ID] = true
		}
	}

	seen := make(map[string]bool)
	for _, sess := range sessions {
		if sess.DeletedAt != nil {
			continue
		}

		if seen[sess.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateSessionID,
				Description: fmt.Sprintf("Duplicate session ID: %s", sess.ID),
				Items:       []string{sess.ID},
			})
		}
		seen[sess.ID] = true

		if sess.EndedAt.Before(sess.StartedAt) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictReversedSession,
				Description: fmt.Sprintf("Session %s ends before it starts", sess.ID),
				Items:       []string{sess.ID},
			})
		}

		if !bookIDs[sess.BookID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDanglingSession,
				Description: fmt.Sprintf("Session %s references missing book %s", sess.ID, sess.BookID),
				Items:       []string{sess.ID, sess.BookID},
			})
		}

		if sess.PagesRead < 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidPageCount,
				Description: fmt.Sprintf("Session %s has negative pages read %d", sess.ID, sess.PagesRead),
				Items:       []string{sess.ID},
			})
		}
	}

	return result
}

func checkDate(result *ValidationResult, id, title, field string, value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(constants.DateFormat, *value)
	if err != nil {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDate,
			Description: fmt.Sprintf("Book %q has invalid %s date %q", title, field, *value),
			Items:       []string{id},
		})
		return time.Time{}, false
	}
	return t, true
}
