package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/readlit/internal/backup"
	"github.com/julianstephens/readlit/internal/storage"
	"github.com/julianstephens/readlit/internal/utils"
	"github.com/julianstephens/readlit/internal/validation"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	// Check 1: storage reachable
	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
		storeReachable = true
	}

	// Check 2: settings sane
	if storeReachable {
		if err := checkSettings(ctx); err != nil {
			fmt.Printf("❌ Settings: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Settings: OK\n")
		}
	} else {
		fmt.Printf("⊘ Settings: SKIPPED (storage not reachable)\n")
	}

	// Check 3: data validation
	if storeReachable {
		if err := checkValidation(ctx); err != nil {
			fmt.Printf("❌ Data validation: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Data validation: OK\n")
		}
	} else {
		fmt.Printf("⊘ Data validation: SKIPPED (storage not reachable)\n")
	}

	// Check 4: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 5: clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 6: concurrent processes (warning only)
	if err := checkConcurrentProcesses(); err != nil {
		fmt.Printf("⚠ Concurrent processes: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Concurrent processes: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*storage.SQLiteStore); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func checkSettings(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("configured timezone %q is not a valid IANA name", settings.Timezone)
	}
	if settings.TopListSize <= 0 {
		return fmt.Errorf("configured top list size %d is not positive", settings.TopListSize)
	}
	return nil
}

func checkValidation(ctx *Context) error {
	books, err := ctx.Store.GetAllBooks()
	if err != nil {
		return fmt.Errorf("failed to get books: %w", err)
	}
	sessions, err := ctx.Store.GetAllSessions()
	if err != nil {
		return fmt.Errorf("failed to get sessions: %w", err)
	}

	validator := validation.New()
	bookResult := validator.ValidateBooks(books)
	sessResult := validator.ValidateSessions(sessions, books)

	conflicts := append(bookResult.Conflicts, sessResult.Conflicts...)
	if len(conflicts) > 0 {
		result := validation.ValidationResult{Conflicts: conflicts}
		return fmt.Errorf("%s", strings.TrimSpace(result.FormatReport()))
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'readlit backup create'")
	}

	return nil
}

func checkClockTimezone() error {
	now := time.Now()

	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		fmt.Printf("   Note: timezone is UTC\n")
	}

	return nil
}

// checkConcurrentProcesses warns when another readlit process is running:
// stores assume a single writer, and challenge mutations are not serialized
// across processes.
func checkConcurrentProcesses() error {
	procs, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	self := os.Getpid()
	selfName := filepath.Base(os.Args[0])
	count := 0
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if p.Executable() == selfName || strings.HasPrefix(p.Executable(), "readlit") {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("%d other readlit process(es) running - concurrent writes may corrupt data", count)
	}
	return nil
}
