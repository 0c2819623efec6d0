package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/readlit/internal/backup"
	"github.com/julianstephens/readlit/internal/logger"
	"github.com/julianstephens/readlit/internal/models"
	"github.com/julianstephens/readlit/internal/sigcache"
	"github.com/julianstephens/readlit/internal/storage"
	"github.com/julianstephens/readlit/internal/utils"
)

type Context struct {
	Store storage.Provider
	Cache *sigcache.Cache
}

// Location resolves the configured timezone to a time.Location.
func (c *Context) Location() (*time.Location, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid configured timezone %q: %w", settings.Timezone, err)
	}
	return loc, nil
}

// Today returns today's date string in the configured timezone.
func (c *Context) Today() (string, error) {
	loc, err := c.Location()
	if err != nil {
		return "", err
	}
	return utils.DayString(time.Now().In(loc)), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	_, err := mgr.CreateBackup()
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// FindBook resolves a book reference to a record. The reference may be a full
// ID, a unique ID prefix, or a unique case-insensitive title prefix.
func FindBook(store storage.Provider, ref string) (models.Book, error) {
	books, err := store.GetAllBooks()
	if err != nil {
		return models.Book{}, err
	}

	var idMatches, titleMatches []models.Book
	lowRef := strings.ToLower(ref)
	for _, b := range books {
		if b.ID == ref {
			return b, nil
		}
		if strings.HasPrefix(b.ID, ref) {
			idMatches = append(idMatches, b)
		}
		if strings.HasPrefix(strings.ToLower(b.Title), lowRef) {
			titleMatches = append(titleMatches, b)
		}
	}

	if len(idMatches) == 1 {
		return idMatches[0], nil
	}
	if len(idMatches) == 0 && len(titleMatches) == 1 {
		return titleMatches[0], nil
	}
	if len(idMatches) > 1 || len(titleMatches) > 1 {
		return models.Book{}, fmt.Errorf("book reference %q is ambiguous", ref)
	}
	return models.Book{}, fmt.Errorf("no book matches %q", ref)
}

// splitList parses a comma-separated flag value into trimmed non-empty items.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatDatePtr(p *string) string {
	if p == nil {
		return "?"
	}
	return *p
}
