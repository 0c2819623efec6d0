// Package errors renders command failures for the terminal. Log output is
// silent in normal runs, so the stderr line is the only thing the user sees.
package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/readlit/internal/logger"
)

// Format renders err as the single-line message printed on command failure.
// Returns "" for a nil error.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal records err in the log, prints it to stderr, and exits non-zero.
// A nil err is a no-op so callers can pass a command result through directly.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}
