package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is a printf-style facade over logrus shared by every service.
type Logger struct {
	entry *logrus.Entry
}

func New() *Logger {
	return NewWithOptions("info", "text", os.Stdout)
}

// NewWithOptions builds a logger for the given level ("debug", "info", ...)
// and format ("text" or "json"). Unknown levels fall back to info.
func NewWithOptions(level, format string, out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{entry: logrus.NewEntry(l)}
}

// With returns a child logger that attaches the field to every entry.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// Printf lets the logger act as a gorm logger writer.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}
