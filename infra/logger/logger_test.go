package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, zerolog.InfoLevel, levelFromEnv())

	t.Setenv("LOG_LEVEL", "DEBUG")
	assert.Equal(t, zerolog.DebugLevel, levelFromEnv())

	t.Setenv("LOG_LEVEL", "not-a-level")
	assert.Equal(t, zerolog.InfoLevel, levelFromEnv())
}

func TestNewReturnsLogger(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	log := New("test")
	assert.NotNil(t, log)
	log.Infof("console writer smoke: %d", 1)

	var _ Logger = NopLogger{}
}
