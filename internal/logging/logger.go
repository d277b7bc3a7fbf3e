// Package logging provides config-driven categorized logging for objinspect
// and the object runtime, backed by zap.
// Logging is controlled by debug_mode in objinspect.yaml - when false, every
// category logger is a no-op.
package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"coreobject/internal/config"
)

// Category represents a log category/subsystem
type Category string

const (
	// Runtime categories
	CategoryTypes    Category = "types"    // Type creation (Extend, Create, ExtendClass)
	CategoryMixin    Category = "mixin"    // Mixin application
	CategoryInstance Category = "instance" // Instance construction and init

	// Tooling categories
	CategorySchema Category = "schema" // Definition loading and compilation
	CategoryWatch  Category = "watch"  // File watching and recompiles
	CategoryCLI    Category = "cli"    // Command execution
)

// Logger is a category logger. A Logger for a disabled category discards
// everything.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu       sync.RWMutex
	cfg      config.LoggingConfig
	root     = zap.NewNop()
	loggers  = make(map[Category]*Logger)
	closeOut func()
)

// Initialize builds the zap backend from the logging configuration. It can
// be called again to reconfigure; previously returned loggers keep their old
// backend.
func Initialize(c config.LoggingConfig) error {
	if !c.DebugMode {
		install(c, zapcore.NewNopCore(), nil)
		return nil
	}

	level, err := parseLevel(c.Level)
	if err != nil {
		return err
	}

	var out zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	var closer func()
	if c.File != "" {
		ws, closeFile, err := zap.Open(c.File)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", c.File, err)
		}
		out, closer = ws, closeFile
	}

	var enc zapcore.Encoder
	if c.Format == "json" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	install(c, zapcore.NewCore(enc, out, level), closer)
	return nil
}

// InitializeCore installs core as the backend. Level and category filtering
// from c still apply.
func InitializeCore(c config.LoggingConfig, core zapcore.Core) error {
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	install(c, core, nil)
	return nil
}

func install(c config.LoggingConfig, core zapcore.Core, closer func()) {
	mu.Lock()
	defer mu.Unlock()

	if closeOut != nil {
		_ = root.Sync()
		closeOut()
	}

	cfg = c
	closeOut = closer
	loggers = make(map[Category]*Logger)

	if !c.DebugMode {
		root = zap.NewNop()
		return
	}
	level, _ := parseLevel(c.Level)
	root = zap.New(core, zap.IncreaseLevel(level))
}

func parseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{category: category, sugar: root.Named(string(category)).Sugar()}
	loggers[category] = l
	return l
}

// Zap returns the structured zap logger of a category, for packages that log
// with typed fields.
func Zap(category Category) *zap.Logger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop()
	}
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(string(category))
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return root.Sync()
}

// CloseAll flushes and closes the log output (call at shutdown).
func CloseAll() {
	install(config.LoggingConfig{}, zapcore.NewNopCore(), nil)
}

// Category returns the category of l.
func (l *Logger) Category() Category {
	return l.category
}

// With returns a logger that adds the key-value pairs to every entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Schema logs to the schema category
func Schema(format string, args ...any) {
	Get(CategorySchema).Info(format, args...)
}

// SchemaDebug logs debug to the schema category
func SchemaDebug(format string, args ...any) {
	Get(CategorySchema).Debug(format, args...)
}

// SchemaWarn logs a warning to the schema category
func SchemaWarn(format string, args ...any) {
	Get(CategorySchema).Warn(format, args...)
}

// SchemaError logs an error to the schema category
func SchemaError(format string, args ...any) {
	Get(CategorySchema).Error(format, args...)
}

// Watch logs to the watch category
func Watch(format string, args ...any) {
	Get(CategoryWatch).Info(format, args...)
}

// WatchDebug logs debug to the watch category
func WatchDebug(format string, args ...any) {
	Get(CategoryWatch).Debug(format, args...)
}

// WatchError logs an error to the watch category
func WatchError(format string, args ...any) {
	Get(CategoryWatch).Error(format, args...)
}

// CLI logs to the cli category
func CLI(format string, args ...any) {
	Get(CategoryCLI).Info(format, args...)
}

// CLIDebug logs debug to the cli category
func CLIDebug(format string, args ...any) {
	Get(CategoryCLI).Debug(format, args...)
}

// =============================================================================
// TIMING HELPERS - For performance logging
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
