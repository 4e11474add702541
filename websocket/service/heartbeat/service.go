package heartbeat

import (
	"context"

	ws "contentpreview/websocket"
)

type HeartbeatService struct {
	conn ws.Sender
}

func (s *HeartbeatService) Name() string {
	return "heartbeat"
}

func (s *HeartbeatService) Register(conn ws.Sender) {
	s.conn = conn
}

func (s *HeartbeatService) HandleTextMessage(ctx context.Context, msg *ws.HandlerMessage, session *ws.Context) {
	s.conn.WriteJSON(&ws.HandlerMessage{Handler: s.Name(), Message: msg.Message})
}

func (s *HeartbeatService) Cleanup(session *ws.Context, err error) {}

func NewService() ws.Service {
	return &HeartbeatService{}
}
