package content

import (
	"os"

	"go.uber.org/zap"
)

const (
	fileEnvName = "PREVIEW_CONTENT_FILE"
	defaultFile = "content.yaml"
)

func GetEnvFile(logger *zap.SugaredLogger) string {
	if file := os.Getenv(fileEnvName); file != "" {
		return file
	}
	logger.Infof("$%s not set, default to %s", fileEnvName, defaultFile)
	return defaultFile
}
