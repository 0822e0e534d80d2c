package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelMap = map[LogLevel]logrus.Level{
	DEBUG: logrus.DebugLevel,
	INFO:  logrus.InfoLevel,
	WARN:  logrus.WarnLevel,
	ERROR: logrus.ErrorLevel,
	FATAL: logrus.FatalLevel,
}

// ParseLevel maps a config string onto a LogLevel, defaulting to INFO.
func ParseLevel(name string) LogLevel {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return INFO
	}
	for k, v := range levelMap {
		if v == lvl {
			return k
		}
	}
	return INFO
}

type Logger struct {
	base         *logrus.Logger
	file         *os.File
	enableCaller bool
	debugMode    bool
}

var globalLogger *Logger

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// IsDebugEnabled reports whether the global logger is in debug mode.
func IsDebugEnabled() bool {
	if globalLogger == nil {
		return false
	}
	return globalLogger.debugMode
}

// InitLogger installs a file-only global logger. The terminal belongs to the UI.
func InitLogger(logPath string, level LogLevel, debugMode bool) error {
	logger, err := NewFileOnlyLogger(logPath, level)
	if err != nil {
		return err
	}
	logger.debugMode = debugMode
	globalLogger = logger
	return nil
}

// SetGlobal replaces the global logger. Passing nil silences logging.
func SetGlobal(l *Logger) {
	globalLogger = l
}

func GetLogger() *Logger {
	return globalLogger
}

func CloseLogger() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}

func Debug(format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.debugMode {
		globalLogger.log(DEBUG, format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.log(INFO, format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.log(WARN, format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.log(ERROR, format, args...)
	}
}

func Fatal(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.log(FATAL, format, args...)
	}
}

// WithComponent returns an entry tagged with the component name.
func WithComponent(name string) *logrus.Entry {
	if globalLogger == nil {
		return logrus.NewEntry(discard).WithField("component", name)
	}
	return globalLogger.base.WithField("component", name)
}

// NewFileOnlyLogger creates a logger that appends to logPath.
func NewFileOnlyLogger(logPath string, level LogLevel) (*Logger, error) {
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := NewWithWriter(file, level)
	logger.file = file
	return logger, nil
}

// NewWithWriter creates a logger writing to w without colors.
func NewWithWriter(w io.Writer, level LogLevel) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(levelMap[level])
	base.SetFormatter(&nested.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FieldsOrder:     []string{"component", "caller"},
		NoColors:        true,
		ShowFullLevel:   true,
	})

	return &Logger{
		base:         base,
		enableCaller: true,
	}
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) SetLevel(level LogLevel) {
	l.base.SetLevel(levelMap[level])
}

func (l *Logger) EnableCaller(enable bool) {
	l.enableCaller = enable
}

func (l *Logger) SetDebugMode(enable bool) {
	l.debugMode = enable
	if enable {
		l.base.SetLevel(logrus.DebugLevel)
	}
}

func (l *Logger) IsDebugMode() bool {
	return l.debugMode
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	entry := logrus.NewEntry(l.base)
	if l.enableCaller {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry = entry.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
		}
	}

	// Fatal exits the process after writing.
	entry.Logf(levelMap[level], format, args...)
	if level == FATAL {
		l.base.Exit(1)
	}
}
