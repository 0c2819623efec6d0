// Package logger owns the process-wide log destination. The CLI keeps stderr
// clean for command output, so logs go to a rotating file under the config
// directory and only mirror to stderr when --debug is set.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDirName  = "logs"
	logFileName = "readlit.log"

	// Rotation keeps roughly a month of history without letting a chatty
	// debug run eat the disk.
	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 30
)

// Logger is the shared instance. Nil until Init runs; the package-level
// helpers tolerate that so early startup paths can log unconditionally.
var Logger *log.Logger

type Config struct {
	Debug     bool
	ConfigDir string
}

// Init wires the global logger to <ConfigDir>/logs/readlit.log. The log
// directory gets the same 0700 perms as the data directory since log lines
// can carry book titles and notes.
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, logDirName)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	level := log.WarnLevel
	var writer io.Writer = fileWriter
	if cfg.Debug {
		level = log.DebugLevel
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "readlit",
	})
	return nil
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
