// Package logging provides config-driven categorized file-based logging.
// Logs are written to <data-dir>/logs/ with separate files per category.
// Logging is controlled by debug_mode in the service config - when false,
// no log files are written at all.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup/initialization
	CategorySession  Category = "session"  // Assistant session, turns, history
	CategoryModel    Category = "model"    // Gemini API calls
	CategoryTools    Category = "tools"    // Tool registration and execution
	CategoryBoard    Category = "board"    // Board mutations via tools
	CategoryDocs     Category = "docs"     // Document index and text extraction
	CategoryDrive    Category = "drive"    // Google Drive operations
	CategorySlack    Category = "slack"    // Slack messaging
	CategoryResearch Category = "research" // Web research
	CategoryVoice    Category = "voice"    // Voice bridge (record/transcribe/speak)
	CategoryStore    Category = "store"    // SQLite store operations
	CategoryServer   Category = "server"   // HTTP/WebSocket server
)

// loggingConfig mirrors the relevant parts of config.LoggingConfig
// to avoid circular imports.
type loggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories"`
	Level      string          `json:"level"`
}

type configFile struct {
	Logging loggingConfig `json:"logging"`
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	dataDir   string
	config    loggingConfig
	configMu  sync.RWMutex
	logLevel  int
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory and loads config.
// Should be called once at startup with the data directory path.
func Initialize(dir string) error {
	if dir == "" {
		return fmt.Errorf("data directory path required")
	}

	dataDir = dir
	logsDir = filepath.Join(dataDir, "logs")

	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not load config: %v\n", err)
		config.DebugMode = false
	}

	// Only create the logs directory when debug mode is on.
	if !config.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== RIA Builder logging initialized ===")
	boot.Info("Data dir: %s", dataDir)
	boot.Info("Logs dir: %s", logsDir)
	boot.Info("Level: %s", config.Level)
	return nil
}

// loadConfig reads the logging section from <data-dir>/config.json.
func loadConfig() error {
	configMu.Lock()
	defer configMu.Unlock()

	configPath := filepath.Join(dataDir, "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config = production mode (no file logging).
			config.DebugMode = false
			return nil
		}
		return err
	}

	var cf configFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	config = cf.Logging

	switch config.Level {
	case "debug":
		logLevel = LevelDebug
	case "info":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	return nil
}

// IsDebugMode returns whether debug logging is enabled.
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}
	if logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation a matter of deleting old files.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions - quick logging without getting a logger first.
// These are no-ops if the category is disabled.

func Boot(format string, args ...interface{})  { Get(CategoryBoot).Info(format, args...) }
func Session(format string, args ...interface{}) {
	Get(CategorySession).Info(format, args...)
}
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debug(format, args...)
}
func Model(format string, args ...interface{}) { Get(CategoryModel).Info(format, args...) }
func ModelDebug(format string, args ...interface{}) {
	Get(CategoryModel).Debug(format, args...)
}
func ModelError(format string, args ...interface{}) {
	Get(CategoryModel).Error(format, args...)
}
func Tools(format string, args ...interface{}) { Get(CategoryTools).Info(format, args...) }
func ToolsDebug(format string, args ...interface{}) {
	Get(CategoryTools).Debug(format, args...)
}
func Board(format string, args ...interface{}) { Get(CategoryBoard).Info(format, args...) }
func BoardDebug(format string, args ...interface{}) {
	Get(CategoryBoard).Debug(format, args...)
}
func Docs(format string, args ...interface{})  { Get(CategoryDocs).Info(format, args...) }
func DocsDebug(format string, args ...interface{}) {
	Get(CategoryDocs).Debug(format, args...)
}
func Drive(format string, args ...interface{}) { Get(CategoryDrive).Info(format, args...) }
func DriveDebug(format string, args ...interface{}) {
	Get(CategoryDrive).Debug(format, args...)
}
func Slack(format string, args ...interface{}) { Get(CategorySlack).Info(format, args...) }
func Research(format string, args ...interface{}) {
	Get(CategoryResearch).Info(format, args...)
}
func ResearchDebug(format string, args ...interface{}) {
	Get(CategoryResearch).Debug(format, args...)
}
func Voice(format string, args ...interface{}) { Get(CategoryVoice).Info(format, args...) }
func VoiceDebug(format string, args ...interface{}) {
	Get(CategoryVoice).Debug(format, args...)
}
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}
func Server(format string, args ...interface{}) {
	Get(CategoryServer).Info(format, args...)
}
func ServerDebug(format string, args ...interface{}) {
	Get(CategoryServer).Debug(format, args...)
}
