package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements Logger on top of a logrus entry so preset fields
// carry through WithFields chains.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger creates a logger writing human-readable lines to stderr
func NewLogrusLogger() *LogrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// NewLogrusLoggerFrom wraps an existing logrus logger, letting an application
// route engine logs into its own pipeline.
func NewLogrusLoggerFrom(l *logrus.Logger) *LogrusLogger {
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) merge(fields []Fields) *logrus.Entry {
	entry := l.entry
	for _, f := range fields {
		entry = entry.WithFields(logrus.Fields(f))
	}
	return entry
}

func (l *LogrusLogger) Debug(msg string, fields ...Fields) {
	l.merge(fields).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields ...Fields) {
	l.merge(fields).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields ...Fields) {
	l.merge(fields).Warn(msg)
}

func (l *LogrusLogger) Error(err error, msg string, fields ...Fields) {
	entry := l.merge(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

func (l *LogrusLogger) WithFields(fields Fields) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *LogrusLogger) SetLevel(level Level) {
	switch level {
	case DebugLevel:
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	case InfoLevel:
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	case WarnLevel:
		l.entry.Logger.SetLevel(logrus.WarnLevel)
	case ErrorLevel:
		l.entry.Logger.SetLevel(logrus.ErrorLevel)
	}
}
