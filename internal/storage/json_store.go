package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/readlit/internal/constants"
	"github.com/julianstephens/readlit/internal/models"
)

// jsonData is the on-disk shape of the JSON store.
type jsonData struct {
	Version    int                                `json:"version"`
	Settings   Settings                           `json:"settings"`
	Books      map[string]models.Book             `json:"books"`
	Sessions   map[string]models.ReadingSession   `json:"sessions"`
	Challenges map[string]models.ChallengeRecord  `json:"challenges"`
}

// JSONStore is the single-file alternative to SQLite, useful for tests and
// for keeping the data greppable. Not safe for concurrent processes.
type JSONStore struct {
	path string
	data *jsonData
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.data = &jsonData{
		Version: 1,
		Settings: Settings{
			Timezone:      constants.DefaultTimezone,
			HeatmapMetric: constants.DefaultHeatmapMetric,
			TopListSize:   constants.DefaultTopListSize,
		},
		Books:      make(map[string]models.Book),
		Sessions:   make(map[string]models.ReadingSession),
		Challenges: make(map[string]models.ChallengeRecord),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	if s.data != nil {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'readlit init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.data = &jsonData{}
	if err := json.Unmarshal(raw, s.data); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	// Ensure maps are initialized
	if s.data.Books == nil {
		s.data.Books = make(map[string]models.Book)
	}
	if s.data.Sessions == nil {
		s.data.Sessions = make(map[string]models.ReadingSession)
	}
	if s.data.Challenges == nil {
		s.data.Challenges = make(map[string]models.ChallengeRecord)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) loaded() error {
	if s.data == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) GetSettings() (Settings, error) {
	if err := s.loaded(); err != nil {
		return Settings{}, err
	}
	return s.data.Settings, nil
}

func (s *JSONStore) SaveSettings(settings Settings) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.data.Settings = settings
	return s.save()
}

func (s *JSONStore) AddBook(book models.Book) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.data.Books[book.ID] = book
	return s.save()
}

func (s *JSONStore) GetBook(id string) (models.Book, error) {
	if err := s.loaded(); err != nil {
		return models.Book{}, err
	}
	book, ok := s.data.Books[id]
	if !ok || book.DeletedAt != nil {
		return models.Book{}, fmt.Errorf("book not found: %s", id)
	}
	return book, nil
}

func (s *JSONStore) GetAllBooks() ([]models.Book, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	books := make([]models.Book, 0, len(s.data.Books))
	for _, book := range s.data.Books {
		if book.DeletedAt != nil {
			continue
		}
		books = append(books, book)
	}
	return books, nil
}

func (s *JSONStore) UpdateBook(book models.Book) error {
	if err := s.loaded(); err != nil {
		return err
	}
	if _, ok := s.data.Books[book.ID]; !ok {
		return fmt.Errorf("book not found: %s", book.ID)
	}
	s.data.Books[book.ID] = book
	return s.save()
}

func (s *JSONStore) DeleteBook(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	book, ok := s.data.Books[id]
	if !ok {
		return fmt.Errorf("book with id %s not found", id)
	}
	if book.DeletedAt != nil {
		return fmt.Errorf("book with id %s is already deleted", id)
	}
	now := time.Now().UTC()
	book.DeletedAt = &now
	s.data.Books[id] = book
	return s.save()
}

func (s *JSONStore) RestoreBook(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	book, ok := s.data.Books[id]
	if !ok {
		return fmt.Errorf("book with id %s not found", id)
	}
	if book.DeletedAt == nil {
		return fmt.Errorf("cannot restore a book that is not deleted: %s", id)
	}
	book.DeletedAt = nil
	s.data.Books[id] = book
	return s.save()
}

func (s *JSONStore) AddSession(sess models.ReadingSession) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.data.Sessions[sess.ID] = sess
	return s.save()
}

func (s *JSONStore) GetSessionsForBook(bookID string) ([]models.ReadingSession, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	var sessions []models.ReadingSession
	for _, sess := range s.data.Sessions {
		if sess.DeletedAt != nil || sess.BookID != bookID {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (s *JSONStore) GetAllSessions() ([]models.ReadingSession, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	sessions := make([]models.ReadingSession, 0, len(s.data.Sessions))
	for _, sess := range s.data.Sessions {
		if sess.DeletedAt != nil {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (s *JSONStore) DeleteSession(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	sess, ok := s.data.Sessions[id]
	if !ok || sess.DeletedAt != nil {
		return fmt.Errorf("session with id %s not found", id)
	}
	now := time.Now().UTC()
	sess.DeletedAt = &now
	s.data.Sessions[id] = sess
	return s.save()
}

func (s *JSONStore) GetChallenge(kind models.ChallengeKind, periodStart string) (models.ChallengeRecord, bool, error) {
	if err := s.loaded(); err != nil {
		return models.ChallengeRecord{}, false, err
	}
	for _, rec := range s.data.Challenges {
		if rec.Kind == kind && rec.PeriodStart == periodStart {
			return rec, true, nil
		}
	}
	return models.ChallengeRecord{}, false, nil
}

func (s *JSONStore) GetAllChallenges() ([]models.ChallengeRecord, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	records := make([]models.ChallengeRecord, 0, len(s.data.Challenges))
	for _, rec := range s.data.Challenges {
		records = append(records, rec)
	}
	return records, nil
}

func (s *JSONStore) SaveChallenge(rec models.ChallengeRecord) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.data.Challenges[rec.ID] = rec
	return s.save()
}

func (s *JSONStore) Snapshot() (models.Snapshot, error) {
	books, err := s.GetAllBooks()
	if err != nil {
		return models.Snapshot{}, err
	}
	sessions, err := s.GetAllSessions()
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{Books: books, Sessions: sessions}, nil
}

// GetConfigPath returns the path to the underlying storage file.
//
// Concurrency note:
//   - JSONStore is not safe for concurrent use by multiple goroutines without
//     external synchronization.
//   - Running multiple readlit processes that share the same storage path at
//     the same time is not supported and may lead to data loss.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
