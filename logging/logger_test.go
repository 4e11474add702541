package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name         string
		level        string
		dev          string
		wantLevel    zapcore.Level
		wantDev      bool
		wantWarnings int
	}{
		{
			name:      "defaults",
			wantLevel: zapcore.InfoLevel,
		},
		{
			name:      "debug development",
			level:     "DEBUG",
			dev:       "true",
			wantLevel: zapcore.DebugLevel,
			wantDev:   true,
		},
		{
			name:         "invalid values",
			level:        "loud",
			dev:          "maybe",
			wantLevel:    zapcore.InfoLevel,
			wantWarnings: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(levelEnvName, tt.level)
			t.Setenv(devEnvName, tt.dev)

			config, warnings := ConfigFromEnv()
			assert.Equal(t, tt.wantLevel, config.Level)
			assert.Equal(t, tt.wantDev, config.Development)
			assert.Len(t, warnings, tt.wantWarnings)
		})
	}
}

func TestNew(t *testing.T) {
	config := DefaultConfig()
	config.OutputPaths = []string{os.DevNull}

	logger, err := New(config)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
