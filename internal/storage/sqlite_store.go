package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/readlit/internal/constants"
	"github.com/julianstephens/readlit/internal/models"
	_ "modernc.org/sqlite"
)

// schema is applied idempotently on open; there is no external migrations
// directory to ship.
const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	author        TEXT NOT NULL DEFAULT '',
	publisher     TEXT NOT NULL DEFAULT '',
	language      TEXT NOT NULL DEFAULT '',
	main_category TEXT NOT NULL DEFAULT '',
	categories    TEXT NOT NULL DEFAULT '[]',
	tags          TEXT NOT NULL DEFAULT '[]',
	status        TEXT NOT NULL,
	read_from     TEXT,
	read_to       TEXT,
	page_count    INTEGER NOT NULL DEFAULT 0,
	ratings       TEXT NOT NULL DEFAULT '{}',
	created_at    TEXT NOT NULL,
	deleted_at    TEXT
);
CREATE INDEX IF NOT EXISTS idx_books_status ON books(status);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	book_id    TEXT NOT NULL REFERENCES books(id),
	started_at TEXT NOT NULL,
	ended_at   TEXT NOT NULL,
	pages_read INTEGER NOT NULL DEFAULT 0,
	note       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	deleted_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_book ON sessions(book_id);
CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

CREATE TABLE IF NOT EXISTS challenges (
	id              TEXT PRIMARY KEY,
	kind            TEXT NOT NULL,
	metric          TEXT NOT NULL,
	period_start    TEXT NOT NULL,
	period_end      TEXT NOT NULL,
	title           TEXT NOT NULL,
	detail          TEXT NOT NULL,
	target_value    INTEGER NOT NULL,
	created_at      TEXT NOT NULL,
	completed_at    TEXT,
	acknowledged_at TEXT,
	rerolls_used    INTEGER NOT NULL DEFAULT 0,
	rerolled_at     TEXT,
	UNIQUE (kind, period_start)
);
`

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	// Initialize default settings if not present
	if _, err := s.GetSettings(); err != nil {
		defaults := Settings{
			Timezone:      constants.DefaultTimezone,
			HeatmapMetric: constants.DefaultHeatmapMetric,
			TopListSize:   constants.DefaultTopListSize,
		}
		if err := s.SaveSettings(defaults); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'readlit init' first")
	}

	return s.open()
}

func (s *SQLiteStore) open() error {
	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetSettings() (Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	settings := Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingHeatmapMetric:
			settings.HeatmapMetric = value
		case constants.SettingTopListSize:
			if _, err := fmt.Sscanf(value, "%d", &settings.TopListSize); err != nil {
				return Settings{}, fmt.Errorf("parsing top_list_size: %w", err)
			}
		}
		count++
	}

	if count == 0 {
		return Settings{}, fmt.Errorf("settings not found")
	}

	return settings, rows.Err()
}

func (s *SQLiteStore) SaveSettings(settings Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(constants.SettingTimezone, settings.Timezone); err != nil {
		return err
	}
	if _, err := stmt.Exec(constants.SettingHeatmapMetric, settings.HeatmapMetric); err != nil {
		return err
	}
	if _, err := stmt.Exec(constants.SettingTopListSize, fmt.Sprintf("%d", settings.TopListSize)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) AddBook(book models.Book) error {
	return s.UpdateBook(book)
}

const bookColumns = `id, title, author, publisher, language, main_category,
	categories, tags, status, read_from, read_to, page_count, ratings,
	created_at, deleted_at`

func (s *SQLiteStore) GetBook(id string) (models.Book, error) {
	row := s.db.QueryRow(
		"SELECT "+bookColumns+" FROM books WHERE id = ? AND deleted_at IS NULL", id)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return models.Book{}, fmt.Errorf("book not found: %s", id)
	}
	return book, err
}

func (s *SQLiteStore) GetAllBooks() ([]models.Book, error) {
	rows, err := s.db.Query(
		"SELECT " + bookColumns + " FROM books WHERE deleted_at IS NULL ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (models.Book, error) {
	var b models.Book
	var status, categories, tags, ratings, createdAt string
	var readFrom, readTo, deletedAt sql.NullString

	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Publisher, &b.Language, &b.MainCategory,
		&categories, &tags, &status, &readFrom, &readTo, &b.PageCount, &ratings,
		&createdAt, &deletedAt,
	)
	if err != nil {
		return models.Book{}, err
	}

	parsed, ok := models.ParseBookStatus(status)
	if !ok {
		return models.Book{}, fmt.Errorf("book %s has unknown status %q", b.ID, status)
	}
	b.Status = parsed

	if err := json.Unmarshal([]byte(categories), &b.Categories); err != nil {
		return models.Book{}, fmt.Errorf("book %s categories: %w", b.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &b.Tags); err != nil {
		return models.Book{}, fmt.Errorf("book %s tags: %w", b.ID, err)
	}
	if err := json.Unmarshal([]byte(ratings), &b.Ratings); err != nil {
		return models.Book{}, fmt.Errorf("book %s ratings: %w", b.ID, err)
	}

	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.Book{}, fmt.Errorf("book %s created_at: %w", b.ID, err)
	}
	if readFrom.Valid {
		b.ReadFrom = &readFrom.String
	}
	if readTo.Valid {
		b.ReadTo = &readTo.String
	}
	if deletedAt.Valid {
		if t, err := time.Parse(time.RFC3339, deletedAt.String); err == nil {
			b.DeletedAt = &t
		}
	}

	return b, nil
}

func (s *SQLiteStore) UpdateBook(book models.Book) error {
	categories, err := json.Marshal(emptyIfNil(book.Categories))
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	tags, err := json.Marshal(emptyIfNil(book.Tags))
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	ratings, err := json.Marshal(book.Ratings)
	if err != nil {
		return fmt.Errorf("failed to marshal ratings: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID, book.Title, book.Author, book.Publisher, book.Language, book.MainCategory,
		string(categories), string(tags), string(book.Status),
		nullString(book.ReadFrom), nullString(book.ReadTo), book.PageCount, string(ratings),
		book.CreatedAt.UTC().Format(time.RFC3339), nullTime(book.DeletedAt),
	)
	return err
}

func (s *SQLiteStore) DeleteBook(id string) error {
	// Soft delete: set deleted_at timestamp instead of removing the record
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM books WHERE id = ?", id).Scan(&deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("book with id %s not found", id)
		}
		return fmt.Errorf("failed to check book existence: %w", err)
	}

	if deletedAt.Valid {
		return fmt.Errorf("book with id %s is already deleted", id)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec("UPDATE books SET deleted_at = ? WHERE id = ?", now, id)
	return err
}

func (s *SQLiteStore) RestoreBook(id string) error {
	var deletedAt sql.NullString
	err := s.db.QueryRow("SELECT deleted_at FROM books WHERE id = ?", id).Scan(&deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("book with id %s not found", id)
		}
		return fmt.Errorf("failed to check book existence: %w", err)
	}

	if !deletedAt.Valid {
		return fmt.Errorf("cannot restore a book that is not deleted: %s", id)
	}

	_, err = s.db.Exec("UPDATE books SET deleted_at = NULL WHERE id = ?", id)
	return err
}

const sessionColumns = "id, book_id, started_at, ended_at, pages_read, note, created_at, deleted_at"

func (s *SQLiteStore) AddSession(sess models.ReadingSession) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.BookID,
		sess.StartedAt.UTC().Format(time.RFC3339), sess.EndedAt.UTC().Format(time.RFC3339),
		sess.PagesRead, sess.Note,
		sess.CreatedAt.UTC().Format(time.RFC3339), nullTime(sess.DeletedAt),
	)
	return err
}

func (s *SQLiteStore) GetSessionsForBook(bookID string) ([]models.ReadingSession, error) {
	rows, err := s.db.Query(
		"SELECT "+sessionColumns+" FROM sessions WHERE book_id = ? AND deleted_at IS NULL ORDER BY started_at", bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (s *SQLiteStore) GetAllSessions() ([]models.ReadingSession, error) {
	rows, err := s.db.Query(
		"SELECT " + sessionColumns + " FROM sessions WHERE deleted_at IS NULL ORDER BY started_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]models.ReadingSession, error) {
	var sessions []models.ReadingSession
	for rows.Next() {
		var sess models.ReadingSession
		var startedAt, endedAt, createdAt string
		var deletedAt sql.NullString

		err := rows.Scan(
			&sess.ID, &sess.BookID, &startedAt, &endedAt,
			&sess.PagesRead, &sess.Note, &createdAt, &deletedAt,
		)
		if err != nil {
			return nil, err
		}

		if sess.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("session %s started_at: %w", sess.ID, err)
		}
		if sess.EndedAt, err = time.Parse(time.RFC3339, endedAt); err != nil {
			return nil, fmt.Errorf("session %s ended_at: %w", sess.ID, err)
		}
		if sess.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("session %s created_at: %w", sess.ID, err)
		}
		if deletedAt.Valid {
			if t, err := time.Parse(time.RFC3339, deletedAt.String); err == nil {
				sess.DeletedAt = &t
			}
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) DeleteSession(id string) error {
	res, err := s.db.Exec(
		"UPDATE sessions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("session with id %s not found", id)
	}
	return nil
}

const challengeColumns = `id, kind, metric, period_start, period_end, title, detail,
	target_value, created_at, completed_at, acknowledged_at, rerolls_used, rerolled_at`

func (s *SQLiteStore) GetChallenge(kind models.ChallengeKind, periodStart string) (models.ChallengeRecord, bool, error) {
	row := s.db.QueryRow(
		"SELECT "+challengeColumns+" FROM challenges WHERE kind = ? AND period_start = ?",
		string(kind), periodStart)
	rec, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return models.ChallengeRecord{}, false, nil
	}
	if err != nil {
		return models.ChallengeRecord{}, false, err
	}
	return rec, true, nil
}

func (s *SQLiteStore) GetAllChallenges() ([]models.ChallengeRecord, error) {
	rows, err := s.db.Query(
		"SELECT " + challengeColumns + " FROM challenges ORDER BY period_start DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ChallengeRecord
	for rows.Next() {
		rec, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanChallenge(row rowScanner) (models.ChallengeRecord, error) {
	var rec models.ChallengeRecord
	var kind, metric, createdAt string
	var completedAt, acknowledgedAt, rerolledAt sql.NullString

	err := row.Scan(
		&rec.ID, &kind, &metric, &rec.PeriodStart, &rec.PeriodEnd,
		&rec.Title, &rec.Detail, &rec.TargetValue, &createdAt,
		&completedAt, &acknowledgedAt, &rec.RerollsUsed, &rerolledAt,
	)
	if err != nil {
		return models.ChallengeRecord{}, err
	}

	parsedKind, ok := models.ParseChallengeKind(kind)
	if !ok {
		return models.ChallengeRecord{}, fmt.Errorf("challenge %s has unknown kind %q", rec.ID, kind)
	}
	rec.Kind = parsedKind

	parsedMetric, ok := models.ParseChallengeMetric(metric)
	if !ok {
		return models.ChallengeRecord{}, fmt.Errorf("challenge %s has unknown metric %q", rec.ID, metric)
	}
	rec.Metric = parsedMetric

	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.ChallengeRecord{}, fmt.Errorf("challenge %s created_at: %w", rec.ID, err)
	}
	rec.CompletedAt = parseNullTime(completedAt)
	rec.AcknowledgedAt = parseNullTime(acknowledgedAt)
	rec.RerolledAt = parseNullTime(rerolledAt)

	return rec, nil
}

func (s *SQLiteStore) SaveChallenge(rec models.ChallengeRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO challenges (`+challengeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Kind), string(rec.Metric), rec.PeriodStart, rec.PeriodEnd,
		rec.Title, rec.Detail, rec.TargetValue,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		nullTime(rec.CompletedAt), nullTime(rec.AcknowledgedAt),
		rec.RerollsUsed, nullTime(rec.RerolledAt),
	)
	return err
}

func (s *SQLiteStore) Snapshot() (models.Snapshot, error) {
	books, err := s.GetAllBooks()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("loading books: %w", err)
	}
	sessions, err := s.GetAllSessions()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("loading sessions: %w", err)
	}
	return models.Snapshot{Books: books, Sessions: sessions}, nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &t
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
