package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/starfrom/agentos-gateway/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "debug", ServiceName: "gw"})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "chatty"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
