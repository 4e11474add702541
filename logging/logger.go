// Package logging builds the zap loggers used across the preview server.
package logging

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	levelEnvName = "PREVIEW_LOG_LEVEL"
	devEnvName   = "PREVIEW_LOG_DEV"
)

type Config struct {
	Level       zapcore.Level
	Development bool
	OutputPaths []string
}

func DefaultConfig() Config {
	return Config{
		Level:       zapcore.InfoLevel,
		OutputPaths: []string{"stdout"},
	}
}

// ConfigFromEnv reads $PREVIEW_LOG_LEVEL and $PREVIEW_LOG_DEV on top of the defaults.
// Invalid values are ignored; the caller gets the reasons back as warnings to log
// once a logger exists.
func ConfigFromEnv() (Config, []string) {
	config := DefaultConfig()
	var warnings []string

	if level := os.Getenv(levelEnvName); level != "" {
		if err := config.Level.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			config.Level = zapcore.InfoLevel
			warnings = append(warnings, "$"+levelEnvName+" ("+level+") is not a valid level, default to info")
		}
	}

	if dev := os.Getenv(devEnvName); dev != "" {
		v, err := strconv.ParseBool(dev)
		if err != nil {
			warnings = append(warnings, "$"+devEnvName+" ("+dev+") is not a valid boolean, default to false")
		}
		config.Development = v
	}

	return config, warnings
}

func New(config Config) (*zap.Logger, error) {
	encoding := "json"
	if config.Development {
		encoding = "console"
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(config.Level),
		Development:       config.Development,
		DisableCaller:     !config.Development,
		DisableStacktrace: !config.Development,
		Encoding:          encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      config.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
