package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contentpreview/service/content"
	engine "contentpreview/service/preview"
	"contentpreview/websocket"
	"contentpreview/websocket/service/heartbeat"
	"contentpreview/websocket/service/preview"
)

type PreviewController struct {
	engine  *engine.Engine
	store   *content.FileStore
	timeout time.Duration
	logger  *zap.Logger
}

func NewPreviewController(previewEngine *engine.Engine, store *content.FileStore, timeout time.Duration, logger *zap.Logger) *PreviewController {
	return &PreviewController{
		engine:  previewEngine,
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

func (pc *PreviewController) StartPreview(c *gin.Context) {
	// the upgrader answers failed handshakes itself
	wsServer, err := websocket.NewServer(c.Writer, c.Request, pc.timeout, pc.logger)
	if err != nil {
		return
	}
	wsServer.Infof("preview connection from %s", c.ClientIP())

	dispatcher := preview.NewDispatcher(pc.engine, pc.store, pc.store, wsServer.SugaredLogger)

	wsServer.Register(preview.NewService(dispatcher, wsServer.SugaredLogger))
	wsServer.RegisterPassive(heartbeat.NewService())

	wsServer.Start(c.Request.Context())
}

func (pc *PreviewController) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": pc.engine.Sessions()})
}
