package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// MaxBackups is the maximum number of backups to keep
	MaxBackups = 14
	// BackupDirName is the name of the backup directory
	BackupDirName = "backups"
	// BackupFilePrefix is the prefix for backup files
	BackupFilePrefix = "readlit-"
)

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager handles backup operations for a storage file. SQLite databases
// are copied with VACUUM INTO; JSON stores are copied byte for byte.
type Manager struct {
	storePath string
	backupDir string
	suffix    string
}

// NewManager creates a new backup manager for the given storage path.
func NewManager(storePath string) *Manager {
	configDir := filepath.Dir(storePath)
	suffix := ".db"
	if strings.HasSuffix(storePath, ".json") {
		suffix = ".json"
	}
	return &Manager{
		storePath: storePath,
		backupDir: filepath.Join(configDir, BackupDirName),
		suffix:    suffix,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

func (m *Manager) ensureBackupDir() error {
	return os.MkdirAll(m.backupDir, 0700)
}

// CreateBackup creates a new backup of the storage file
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// createBackup writes a timestamped copy of the store. skipRotation prevents
// recursive rotation when a safety backup is taken during restore.
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := m.ensureBackupDir(); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(m.storePath); os.IsNotExist(err) {
		return "", fmt.Errorf("storage file does not exist: %s", m.storePath)
	}

	// Minute precision first, then seconds, then a counter on collision
	timestamp := time.Now().Format("20060102-1504")
	backupPath := filepath.Join(m.backupDir, BackupFilePrefix+timestamp+m.suffix)

	if _, err := os.Stat(backupPath); err == nil {
		timestamp = time.Now().Format("20060102-150405")
		backupPath = filepath.Join(m.backupDir, BackupFilePrefix+timestamp+m.suffix)

		counter := 1
		for {
			if _, err := os.Stat(backupPath); os.IsNotExist(err) {
				break
			}
			backupPath = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", BackupFilePrefix, timestamp, counter, m.suffix))
			counter++
			if counter > 100 {
				return "", fmt.Errorf("failed to generate unique backup filename")
			}
		}
	}

	if m.suffix == ".json" {
		if err := copyFile(m.storePath, backupPath); err != nil {
			return "", fmt.Errorf("failed to backup storage: %w", err)
		}
	} else {
		if err := m.backupDatabase(backupPath); err != nil {
			return "", fmt.Errorf("failed to backup database: %w", err)
		}
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to rotate old backups: %v\n", err)
		}
	}

	return backupPath, nil
}

// backupDatabase uses VACUUM INTO for a clean consistent copy, falling back
// to a plain file copy when the SQLite build does not support it.
func (m *Manager) backupDatabase(destPath string) error {
	srcDB, err := sql.Open("sqlite", m.storePath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcDB.Close()

	var count int
	if err := srcDB.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := srcDB.Exec("VACUUM INTO ?", destPath); err != nil {
		srcDB.Close()
		return copyFile(m.storePath, destPath)
	}

	return nil
}

// ListBackups returns all available backups, sorted newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, BackupFilePrefix) || !strings.HasSuffix(name, m.suffix) {
			continue
		}

		timestampStr := strings.TrimPrefix(name, BackupFilePrefix)
		timestampStr = strings.TrimSuffix(timestampStr, m.suffix)
		timestampStr = stripCounter(timestampStr)

		timestamp, err := time.Parse("20060102-1504", timestampStr)
		if err != nil {
			timestamp, err = time.Parse("20060102-150405", timestampStr)
			if err != nil {
				continue
			}
		}

		path := filepath.Join(m.backupDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// stripCounter removes a trailing collision counter from a backup timestamp.
// A counter is all digits after the last hyphen and is neither 4 nor 6 chars,
// which would be the HHMM or HHMMSS time component.
func stripCounter(timestampStr string) string {
	parts := strings.Split(timestampStr, "-")
	if len(parts) <= 2 {
		return timestampStr
	}
	last := parts[len(parts)-1]
	if len(last) == 4 || len(last) == 6 {
		return timestampStr
	}
	for _, c := range last {
		if c < '0' || c > '9' {
			return timestampStr
		}
	}
	return strings.Join(parts[:len(parts)-1], "-")
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	if len(backups) <= MaxBackups {
		return nil
	}

	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}

	return nil
}

// RestoreBackup replaces the storage file with a backup, taking a safety
// backup of the current file first.
func (m *Manager) RestoreBackup(backupPath string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	if err := m.verifyBackup(backupPath); err != nil {
		return fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if _, err := os.Stat(m.storePath); err == nil {
		currentBackup, err := m.createBackup(true)
		if err != nil {
			return fmt.Errorf("failed to backup current storage before restore: %w", err)
		}
		fmt.Printf("Created backup of current storage: %s\n", filepath.Base(currentBackup))
	}

	// Copy to a temp file then rename so the swap is atomic
	tempPath := m.storePath + ".restore.tmp"

	if err := copyFile(backupPath, tempPath); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}

	if err := os.Rename(tempPath, m.storePath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", tempPath, removeErr)
		}
		return fmt.Errorf("failed to restore storage: %w", err)
	}

	return nil
}

// verifyBackup checks a backup file is usable before restoring over live data.
func (m *Manager) verifyBackup(path string) error {
	if m.suffix == ".json" {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == 0 {
			return fmt.Errorf("backup file is empty")
		}
		return nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
