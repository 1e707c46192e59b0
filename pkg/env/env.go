// Package env reads the process settings the logger needs before config.Load
// has run.
package env

import (
	"os"
	"strings"
)

const (
	EnvLogFormat       = "SHOPHUB_LOG_FORMAT"
	EnvLegacyLogFormat = "LOG_FORMAT"
)

type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatConsole LogFormat = "console"
)

// CurrentLogFormat prefers SHOPHUB_LOG_FORMAT over LOG_FORMAT. Anything other
// than "console" means JSON.
func CurrentLogFormat() LogFormat {
	if strings.EqualFold(firstSet(EnvLogFormat, EnvLegacyLogFormat), string(LogFormatConsole)) {
		return LogFormatConsole
	}
	return LogFormatJSON
}

func firstSet(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}
