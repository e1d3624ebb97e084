package utils

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// GetEnv returns an environment variable's value, or defaultValue with a
// debug log line if it is unset. The returned bool reports whether the
// default was used, letting callers decide whether that's worth a louder
// warning of their own.
func GetEnv(key, defaultValue string, logger *zap.Logger) (string, bool) {
	value := os.Getenv(key)
	if value == "" {
		logger.Debug(fmt.Sprintf("%s not set, using default: %s", key, defaultValue))
		return defaultValue, true
	}
	return value, false
}
