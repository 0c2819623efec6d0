package storage

import "github.com/julianstephens/readlit/internal/models"

type Settings struct {
	Timezone      string `json:"timezone"`
	HeatmapMetric string `json:"heatmap_metric"`
	TopListSize   int    `json:"top_list_size"`
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (Settings, error)
	SaveSettings(Settings) error

	// Books
	AddBook(models.Book) error
	GetBook(id string) (models.Book, error)
	GetAllBooks() ([]models.Book, error)
	UpdateBook(models.Book) error
	DeleteBook(id string) error
	RestoreBook(id string) error

	// Sessions
	AddSession(models.ReadingSession) error
	GetSessionsForBook(bookID string) ([]models.ReadingSession, error)
	GetAllSessions() ([]models.ReadingSession, error)
	DeleteSession(id string) error

	// Challenges
	GetChallenge(kind models.ChallengeKind, periodStart string) (models.ChallengeRecord, bool, error)
	GetAllChallenges() ([]models.ChallengeRecord, error)
	SaveChallenge(models.ChallengeRecord) error

	// Snapshot returns a consistent read-only view for the aggregators.
	Snapshot() (models.Snapshot, error)

	// Utils
	GetConfigPath() string
}
