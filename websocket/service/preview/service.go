package preview

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"contentpreview/utils"
	ws "contentpreview/websocket"
)

const handlerName = "sulu_content.preview"

type PreviewService struct {
	writer     *utils.WebsocketWriter
	dispatcher *Dispatcher

	*zap.SugaredLogger
}

func (s *PreviewService) Name() string {
	return handlerName
}

func (s *PreviewService) Register(conn ws.Sender) {
	s.writer = &utils.WebsocketWriter{
		Handler: handlerName,
		Conn:    conn,
	}
}

func (s *PreviewService) HandleTextMessage(ctx context.Context, msg *ws.HandlerMessage, session *ws.Context) {
	var message Message
	if err := json.Unmarshal(msg.Message, &message); err != nil {
		s.Warnf("error unmarshalling preview message: %v", err)
		return
	}
	if message == nil {
		s.Warnf("preview message is not an object: %s", msg.Message)
		return
	}

	result := s.dispatcher.Handle(ctx, s.writer, message, session)
	if result == nil {
		return
	}
	if err := json.NewEncoder(s.writer).Encode(result); err != nil {
		s.Warnf("error sending preview result: %v", err)
	}
}

func (s *PreviewService) Cleanup(session *ws.Context, err error) {
	if err := s.dispatcher.Release(context.Background(), session); err != nil {
		s.Warnf("error stopping preview of closed connection: %v", err)
	}
}

func NewService(dispatcher *Dispatcher, logger *zap.SugaredLogger) ws.Service {
	return &PreviewService{
		dispatcher:    dispatcher,
		SugaredLogger: logger,
	}
}
