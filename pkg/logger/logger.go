package logger

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type LogLevel string

const (
	DEBUG LogLevel = "debug"
	INFO  LogLevel = "info"
	WARN  LogLevel = "warn"
	ERROR LogLevel = "error"
)

// Logger writes leveled events with snake_case names followed by key/value pairs.
type Logger struct {
	zl zerolog.Logger
}

var (
	global   *Logger
	globalMu sync.RWMutex
)

func toZerologLevel(level LogLevel) zerolog.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New builds a logger. A nil writer discards everything.
func New(level LogLevel, jsonFormat bool, out io.Writer) *Logger {
	if out == nil {
		out = io.Discard
	}
	if !jsonFormat {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(out).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

func Init(level LogLevel, jsonFormat bool, out io.Writer) {
	l := New(level, jsonFormat, out)
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

// GetLogger returns the process logger, initializing a discard logger if Init was never called.
func GetLogger() *Logger {
	globalMu.RLock()
	l := global
	globalMu.RUnlock()
	if l != nil {
		return l
	}
	Init(INFO, false, nil)
	return GetLogger()
}

func (l *Logger) WithContext(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.write(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.write(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.write(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.write(l.zl.Error(), msg, fields)
}

func (l *Logger) write(ev *zerolog.Event, msg string, fields []interface{}) {
	if ev == nil {
		return
	}
	// a single map argument is accepted as well as alternating key/value pairs
	if len(fields) == 1 {
		if m, ok := fields[0].(map[string]interface{}); ok {
			ev.Fields(m).Msg(msg)
			return
		}
	}
	if len(fields)%2 != 0 {
		fields = append(fields, "(missing)")
	}
	ev.Fields(fields).Msg(msg)
}

func WithContext(key string, value interface{}) *Logger {
	return GetLogger().WithContext(key, value)
}

func Debug(msg string, fields ...interface{}) { GetLogger().Debug(msg, fields...) }
func Info(msg string, fields ...interface{})  { GetLogger().Info(msg, fields...) }
func Warn(msg string, fields ...interface{})  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...interface{}) { GetLogger().Error(msg, fields...) }
