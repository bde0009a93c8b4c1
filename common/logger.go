// Package common provides shared constants, types, and utilities
// used across the NordVPN GUI application.
package common

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

const (
	defaultMaxFileSize = 5 << 20 // 5MB
	defaultMaxBackups  = 5
)

// LogConfig holds configuration options for the logger.
type LogConfig struct {
	Level       LogLevel
	EnableFile  bool
	MaxFileSize int64 // in bytes, default 5MB
	MaxBackups  int   // number of rotated files to keep, default 5
}

// AppLogger writes leveled, timestamped log lines to stdout and
// optionally to a size-rotated file under the config directory.
type AppLogger struct {
	mu          sync.Mutex
	level       LogLevel
	output      io.Writer
	logFile     *os.File
	maxFileSize int64
	maxBackups  int
}

var (
	defaultLogger *AppLogger
	loggerOnce    sync.Once
)

// GetLogger returns the singleton logger instance.
func GetLogger() *AppLogger {
	loggerOnce.Do(func() {
		defaultLogger = &AppLogger{
			level:       LevelInfo,
			output:      os.Stdout,
			maxFileSize: defaultMaxFileSize,
			maxBackups:  defaultMaxBackups,
		}
	})
	return defaultLogger
}

// InitLogger configures the singleton. Call once, early in startup.
func InitLogger(config LogConfig) error {
	l := GetLogger()
	l.SetLevel(config.Level)

	l.mu.Lock()
	if config.MaxFileSize > 0 {
		l.maxFileSize = config.MaxFileSize
	}
	if config.MaxBackups > 0 {
		l.maxBackups = config.MaxBackups
	}
	l.mu.Unlock()

	if config.EnableFile {
		return l.EnableFileLogging()
	}
	return nil
}

// SetLevel sets the minimum log level.
func (l *AppLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects all log output to w. Used by tests.
func (l *AppLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// GetLogDir returns the log directory path, or "" when the config
// directory cannot be resolved.
func GetLogDir() string {
	dir, err := GetConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "logs")
}

// isSymlink reports whether path exists and is a symbolic link.
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// EnableFileLogging mirrors log output into a file, rotating the
// previous file away first when it has grown past the size limit.
// Symlinked log locations are refused; a symlink here would let
// another local user redirect our writes.
func (l *AppLogger) EnableFileLogging() error {
	logDir := GetLogDir()
	if logDir == "" {
		return fmt.Errorf("could not determine log directory")
	}
	if isSymlink(logDir) {
		return fmt.Errorf("log directory %s is a symlink", logDir)
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, LogFileName)
	if isSymlink(logPath) {
		return fmt.Errorf("log file %s is a symlink", logPath)
	}

	if info, err := os.Stat(logPath); err == nil && info.Size() >= l.maxFileSize {
		l.rotate(logPath)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile != nil {
		l.logFile.Close()
	}
	l.logFile = file
	l.output = io.MultiWriter(os.Stdout, file)
	return nil
}

// rotate moves the current log aside as a gzip-compressed backup and
// prunes the oldest backups beyond the retention count.
func (l *AppLogger) rotate(logPath string) {
	stamp := time.Now().Format("20060102-150405")
	backup := fmt.Sprintf("%s.%s.gz", logPath, stamp)

	if err := gzipFile(logPath, backup); err == nil {
		os.Remove(logPath)
	} else {
		// Plain rename keeps the history even when compression fails.
		os.Rename(logPath, fmt.Sprintf("%s.%s", logPath, stamp))
	}

	backups, err := filepath.Glob(logPath + ".*")
	if err != nil || len(backups) <= l.maxBackups {
		return
	}
	// Timestamped names sort chronologically.
	sort.Strings(backups)
	for _, old := range backups[:len(backups)-l.maxBackups] {
		os.Remove(old)
	}
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// write formats and emits one log line. Lines carry the call site of
// the Debug/Info/Warn/Error call two frames up.
func (l *AppLogger) write(level LogLevel, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	caller := "???"
	if _, file, line, ok := runtime.Caller(2); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	fmt.Fprintf(l.output, "%s [%s] %s: %s\n",
		time.Now().Format("2006/01/02 15:04:05"), level, caller, msg)
}

// Debug logs a debug message.
func (l *AppLogger) Debug(msg string, args ...interface{}) {
	l.write(LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *AppLogger) Info(msg string, args ...interface{}) {
	l.write(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *AppLogger) Warn(msg string, args ...interface{}) {
	l.write(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *AppLogger) Error(msg string, args ...interface{}) {
	l.write(LevelError, msg, args...)
}

// Shorthand functions for the default logger.

// LogDebug logs a debug message to the default logger.
func LogDebug(msg string, args ...interface{}) {
	GetLogger().Debug(msg, args...)
}

// LogInfo logs an info message to the default logger.
func LogInfo(msg string, args ...interface{}) {
	GetLogger().Info(msg, args...)
}

// LogWarn logs a warning message to the default logger.
func LogWarn(msg string, args ...interface{}) {
	GetLogger().Warn(msg, args...)
}

// LogError logs an error message to the default logger.
func LogError(msg string, args ...interface{}) {
	GetLogger().Error(msg, args...)
}

// Close closes the log file, if one is open.
func (l *AppLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logFile == nil {
		return nil
	}
	err := l.logFile.Close()
	l.logFile = nil
	l.output = os.Stdout
	return err
}

// CloseLogger closes the default logger.
func CloseLogger() error {
	return GetLogger().Close()
}
