package models

// Snapshot is a consistent, read-only view of the collections the engine
// computes over. Aggregations never reach back into storage.
type Snapshot struct {
	Books    []Book
	Sessions []ReadingSession
}

// SessionsByBook groups the snapshot's sessions by owning book ID.
func (s Snapshot) SessionsByBook() map[string][]ReadingSession {
	byBook := make(map[string][]ReadingSession)
	for _, sess := range s.Sessions {
		byBook[sess.BookID] = append(byBook[sess.BookID], sess)
	}
	return byBook
}

// SessionCounts returns the number of sessions per book ID, including zero
// entries for books without sessions.
func (s Snapshot) SessionCounts() map[string]int {
	counts := make(map[string]int, len(s.Books))
	for _, b := range s.Books {
		counts[b.ID] = 0
	}
	for _, sess := range s.Sessions {
		counts[sess.BookID]++
	}
	return counts
}
