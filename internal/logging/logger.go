package logging

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LevelOff disables logging entirely. It is the default because the calling
// process reads stderr for the error line.
const LevelOff = "off"

// NewLogger creates a JSON logrus logger writing to out at the given level.
// Level "off" (or an empty level) discards everything.
func NewLogger(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if IsOff(level) || out == nil {
		logger.SetOutput(io.Discard)
		logger.SetLevel(logrus.PanicLevel)
		return logger
	}

	logger.SetOutput(out)
	logger.SetLevel(ParseLogrusLevel(level))
	return logger
}

// IsOff reports whether level disables logging.
func IsOff(level string) bool {
	l := strings.ToLower(strings.TrimSpace(level))
	return l == "" || l == LevelOff || l == "none"
}

// ParseLogrusLevel converts string level to logrus.Level
func ParseLogrusLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithInvocation tags every entry of one program run with a fresh id.
func WithInvocation(logger *logrus.Logger, service string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"service":       service,
		"invocation_id": uuid.NewString(),
	})
}

// WithComponent creates a logger entry with component context
func WithComponent(entry *logrus.Entry, component string) *logrus.Entry {
	return entry.WithField("component", component)
}
