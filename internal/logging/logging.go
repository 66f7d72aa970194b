// Package logging provides the leveled logger every bridge component
// writes through: cmd/bridge's startup/shutdown lines, and WARN/ERROR
// from internal/bridge's capture hooks and IPC error classification.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Level is a log severity, ordered so a higher Level is more severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// Logger is a leveled wrapper around a stdlib *log.Logger. Its output
// can be redirected to a file with RedirectOutput, closing over whatever
// file handle that opens instead of reaching for the process-wide
// os.Stdout/os.Stderr globals.
type Logger struct {
	mu     sync.RWMutex
	level  Level
	logger *log.Logger
	file   *os.File
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the process-wide logger instance.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = &Logger{
			level:  LevelInfo,
			logger: log.New(os.Stderr, "", log.LstdFlags|log.LUTC),
		}
	})
	return defaultLogger
}

// SetLevel sets the minimum level this logger emits.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetLevelFromString sets the level from a config/flag value; an
// unrecognized value falls back to LevelInfo.
func (l *Logger) SetLevelFromString(levelStr string) {
	switch strings.ToLower(levelStr) {
	case "debug":
		l.SetLevel(LevelDebug)
	case "info":
		l.SetLevel(LevelInfo)
	case "warn", "warning":
		l.SetLevel(LevelWarn)
	case "error":
		l.SetLevel(LevelError)
	default:
		l.SetLevel(LevelInfo)
	}
}

// GetLevel reports the logger's current minimum level.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// GetLevelString reports the logger's current minimum level by name.
func (l *Logger) GetLevelString() string {
	return levelNames[l.GetLevel()]
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.RLock()
	currentLevel := l.level
	l.mu.RUnlock()

	if level < currentLevel {
		return
	}

	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s", levelNames[level], msg)
}

// Debug logs a debug-level message.
func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }

// Info logs an info-level message.
func (l *Logger) Info(format string, args ...interface{}) { l.log(LevelInfo, format, args...) }

// Warn logs a warn-level message.
func (l *Logger) Warn(format string, args ...interface{}) { l.log(LevelWarn, format, args...) }

// Error logs an error-level message.
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

// RedirectOutput points this logger's output at a per-process file under
// <moduleParentDir>/log/<prefix>.<pid>.log, creating the log directory
// if needed, and returns the opened file so the caller can close it on
// shutdown. This implements the MyrtilleDebugLog knob: when unset, the
// logger keeps writing to its original output (os.Stderr for Default()).
// A prior redirect's file handle, if any, is closed before switching.
func (l *Logger) RedirectOutput(moduleParentDir, prefix string) (*os.File, error) {
	logDir := filepath.Join(moduleParentDir, "log")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(logDir, prefix+"."+strconv.Itoa(os.Getpid())+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l.mu.Lock()
	prev := l.file
	l.file = f
	l.logger.SetOutput(f)
	l.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	return f, nil
}
