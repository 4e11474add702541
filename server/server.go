package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contentpreview/controller"
)

func NewRouter(pc *controller.PreviewController, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())
	controller.SetupRoutes(r, pc)
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Start serves r in the background. The returned channel receives once the
// listener stopped.
func Start(port uint, r *gin.Engine, logger *zap.Logger) chan int {
	finishChan := make(chan int)
	go func() {
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), r)
		logger.Error("server stopped", zap.Error(err))
		finishChan <- 1
	}()
	logger.Info("started", zap.Uint("port", port))
	return finishChan
}
