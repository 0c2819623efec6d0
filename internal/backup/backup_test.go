package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStripCounter(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"20250601-1504", "20250601-1504"},
		{"20250601-150405", "20250601-150405"},
		{"20250601-150405-1", "20250601-150405"},
		{"20250601-150405-12", "20250601-150405"},
		{"20250601-1504-3", "20250601-1504"},
		// a 4 or 6 digit tail is a time component, not a counter
		{"20250601-1504-1505", "20250601-1504-1505"},
		{"20250601-150405-abc", "20250601-150405-abc"},
	}

	for _, tt := range tests {
		if got := stripCounter(tt.in); got != tt.want {
			t.Errorf("stripCounter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func writeBackupFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestListBackups_FiltersAndSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "readlit.json")
	m := NewManager(storePath)
	if err := os.MkdirAll(m.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}

	writeBackupFile(t, m.GetBackupDir(), "readlit-20250601-0900.json")
	writeBackupFile(t, m.GetBackupDir(), "readlit-20250603-0900.json")
	writeBackupFile(t, m.GetBackupDir(), "readlit-20250602-090015.json")
	writeBackupFile(t, m.GetBackupDir(), "readlit-20250602-090015-1.json")
	// Wrong suffix, wrong prefix, unparsable: all ignored
	writeBackupFile(t, m.GetBackupDir(), "readlit-20250604-0900.db")
	writeBackupFile(t, m.GetBackupDir(), "other-20250604-0900.json")
	writeBackupFile(t, m.GetBackupDir(), "readlit-notadate.json")

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 4 {
		t.Fatalf("expected 4 backups, got %d: %+v", len(backups), backups)
	}
	if filepath.Base(backups[0].Path) != "readlit-20250603-0900.json" {
		t.Errorf("newest first, got %s", filepath.Base(backups[0].Path))
	}
	if filepath.Base(backups[len(backups)-1].Path) != "readlit-20250601-0900.json" {
		t.Errorf("oldest last, got %s", filepath.Base(backups[len(backups)-1].Path))
	}
}

func TestListBackups_NoDirectory(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "readlit.json"))
	backups, err := m.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
}

func TestRotateBackups_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "readlit.json"))
	if err := os.MkdirAll(m.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}

	for day := 1; day <= MaxBackups+3; day++ {
		writeBackupFile(t, m.GetBackupDir(), fmt.Sprintf("readlit-202505%02d-0900.json", day))
	}

	if err := m.rotateBackups(); err != nil {
		t.Fatal(err)
	}

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", MaxBackups, len(backups))
	}
	// The three oldest days must be the ones removed
	oldest := filepath.Base(backups[len(backups)-1].Path)
	if oldest != "readlit-20250504-0900.json" {
		t.Errorf("oldest surviving backup = %s", oldest)
	}
}

func TestCreateBackup_MissingStore(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "readlit.json"))
	if _, err := m.CreateBackup(); err == nil {
		t.Error("expected error when the storage file does not exist")
	}
}

func TestCreateAndRestore_JSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "readlit.json")
	original := []byte(`{"version":1,"books":{}}`)
	if err := os.WriteFile(storePath, original, 0600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(storePath)
	backupPath, err := m.CreateBackup()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(backupPath, ".json") {
		t.Errorf("backup of a JSON store must keep the suffix: %s", backupPath)
	}

	// Mutate the live store, then restore the backup over it
	if err := os.WriteFile(storePath, []byte(`{"version":1,"books":{"x":{}}}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := m.RestoreBackup(backupPath); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(original) {
		t.Errorf("restored content = %s, want %s", got, original)
	}

	// Restore takes a safety backup of the pre-restore state
	backups, err := m.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) < 2 {
		t.Errorf("expected the safety backup alongside the original, got %d", len(backups))
	}
}

func TestRestoreBackup_RejectsMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "readlit.json")
	m := NewManager(storePath)

	if err := m.RestoreBackup(filepath.Join(dir, "nope.json")); err == nil {
		t.Error("expected error for a missing backup file")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if err := m.RestoreBackup(empty); err == nil {
		t.Error("expected error for an empty backup file")
	}
}
