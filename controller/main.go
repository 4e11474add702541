package controller

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, pc *PreviewController) {
	preview := r.Group("/preview")
	{
		preview.GET("/ws", pc.StartPreview)
		preview.GET("/sessions", pc.ListSessions)
	}
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})
}
