package websocket

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	timeoutName = "PREVIEW_CONNECTION_TIMEOUT"
)

// ConnectionTimeout reads the idle timeout of a connection in minutes from
// $PREVIEW_CONNECTION_TIMEOUT.
func ConnectionTimeout(logger *zap.SugaredLogger) time.Duration {
	return time.Duration(getEnvTimeout(logger)) * time.Minute
}

func getEnvTimeout(logger *zap.SugaredLogger) int {
	if timeout := os.Getenv(timeoutName); timeout == "" {
		logger.Infof("$%s not set, default to 1 minute", timeoutName)
	} else {
		minutes, err := strconv.Atoi(timeout)
		if err == nil && minutes > 0 {
			return minutes
		}
		logger.Warnf("$%s (%v) is not a valid positive integer, default to 1 minute", timeoutName, timeout)
	}

	return 1
}
