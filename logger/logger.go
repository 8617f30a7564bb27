// Package logger provides logging for the campus panel with dual-backend
// logging (console/syslog and file).
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/op/go-logging"
)

const (
	module      = "campus-panel"
	logFileName = "campus-panel.log"
	timeFormat  = "2006/01/02 15:04:05"
)

var (
	logger  *logging.Logger
	logFile *os.File
)

func init() {
	// usable before InitLogger (tests, CLI subcommands)
	logger = logging.MustGetLogger(module)
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, newFormatter(true)))
	leveled.SetLevel(logging.WARNING, module)
	logger.SetBackend(leveled)
}

// ParseLevel maps a configured level name to a go-logging level.
func ParseLevel(level string) (logging.Level, error) {
	switch level {
	case "warn":
		return logging.WARNING, nil
	default:
		return logging.LogLevel(level)
	}
}

// InitLogger initializes dual logging backends: console/syslog and file.
// Console logging uses the specified level, file logging always uses DEBUG level.
// An empty logDir disables the file backend.
func InitLogger(level logging.Level, logDir string) {
	newLogger := logging.MustGetLogger(module)
	backends := make([]logging.Backend, 0, 2)

	if consoleBackend := initDefaultBackend(); consoleBackend != nil {
		leveledBackend := logging.AddModuleLevel(consoleBackend)
		leveledBackend.SetLevel(level, module)
		backends = append(backends, leveledBackend)
	}

	if logDir != "" {
		if fileBackend := initFileBackend(logDir); fileBackend != nil {
			leveledBackend := logging.AddModuleLevel(fileBackend)
			leveledBackend.SetLevel(logging.DEBUG, module)
			backends = append(backends, leveledBackend)
		}
	}

	newLogger.SetBackend(logging.MultiLogger(backends...))
	logger = newLogger
}

// initDefaultBackend creates the console/syslog logging backend.
// Windows: Uses stderr directly (no syslog support)
// Unix-like: Attempts syslog, falls back to stderr
func initDefaultBackend() logging.Backend {
	var backend logging.Backend
	includeTime := false

	if runtime.GOOS == "windows" {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
		includeTime = true
	} else {
		if syslogBackend, err := logging.NewSyslogBackend(""); err != nil {
			fmt.Fprintf(os.Stderr, "syslog backend disabled: %v\n", err)
			backend = logging.NewLogBackend(os.Stderr, "", 0)
			includeTime = os.Getppid() > 0
		} else {
			backend = syslogBackend
		}
	}

	return logging.NewBackendFormatter(backend, newFormatter(includeTime))
}

// initFileBackend creates the file logging backend, truncating the file on startup.
func initFileBackend(logDir string) logging.Backend {
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log folder %s: %v\n", logDir, err)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o660)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", logPath, err)
		return nil
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file

	backend := logging.NewLogBackend(file, "", 0)
	return logging.NewBackendFormatter(backend, newFormatter(true))
}

func newFormatter(withTime bool) logging.Formatter {
	format := `%{level} - %{message}`
	if withTime {
		format = `%{time:` + timeFormat + `} %{level} - %{message}`
	}
	return logging.MustStringFormatter(format)
}

// CloseLogger closes the log file. Called during shutdown.
func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func Debug(args ...any) {
	logger.Debug(args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Info(args ...any) {
	logger.Info(args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Notice(args ...any) {
	logger.Notice(args...)
}

func Noticef(format string, args ...any) {
	logger.Noticef(format, args...)
}

func Warning(args ...any) {
	logger.Warning(args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
