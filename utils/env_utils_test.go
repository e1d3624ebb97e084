package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetEnv(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns set value", func(t *testing.T) {
		os.Setenv("OPENSH_TEST_ENV_VAR", "custom")
		defer os.Unsetenv("OPENSH_TEST_ENV_VAR")

		value, usedDefault := GetEnv("OPENSH_TEST_ENV_VAR", "fallback", logger)
		assert.Equal(t, "custom", value)
		assert.False(t, usedDefault)
	})

	t.Run("falls back when unset", func(t *testing.T) {
		os.Unsetenv("OPENSH_TEST_ENV_VAR_MISSING")

		value, usedDefault := GetEnv("OPENSH_TEST_ENV_VAR_MISSING", "fallback", logger)
		assert.Equal(t, "fallback", value)
		assert.True(t, usedDefault)
	})
}
