package config

import (
	"log/slog"
	"strings"
)

// LogLevel is the console verbosity of a build.
type LogLevel string

const (
	LogSilent   LogLevel = "silent"
	LogMinimum  LogLevel = "minimum"
	LogComplete LogLevel = "complete"
)

// ParseLogLevel normalizes a verbosity string. Empty selects minimum; any other
// unrecognized value is treated as silent.
func ParseLogLevel(s string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return LogMinimum
	case LogMinimum:
		return LogMinimum
	case LogComplete:
		return LogComplete
	default:
		return LogSilent
	}
}

// SlogLevel maps a verbosity onto the slog threshold used by the build logger.
// Silent builds still surface errors.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogComplete:
		return slog.LevelInfo
	case LogMinimum:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
