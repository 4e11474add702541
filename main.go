package main

import (
	"context"
	"flag"
	"log"

	"github.com/gin-gonic/gin"

	"contentpreview/controller"
	"contentpreview/logging"
	"contentpreview/server"
	"contentpreview/service/content"
	"contentpreview/service/preview"
	"contentpreview/websocket"
)

func main() {
	var port uint

	flag.UintVar(&port, "port", 1234, "The port to listen on")
	flag.Parse()

	config, warnings := logging.ConfigFromEnv()
	logger, err := logging.New(config)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()
	for _, warning := range warnings {
		sugar.Warn(warning)
	}
	if !config.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	store := content.NewFileStore(content.GetEnvFile(sugar), sugar)
	if err := store.EnsureConnected(context.Background()); err != nil {
		sugar.Fatalf("loading content: %v", err)
	}
	engine := preview.NewEngine(store, sugar.Named("preview"))

	pc := controller.NewPreviewController(engine, store, websocket.ConnectionTimeout(sugar), logger)

	<-server.Start(port, server.NewRouter(pc, logger), logger)
}
