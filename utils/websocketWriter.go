package utils

import (
	"encoding/json"

	ws "contentpreview/websocket"
)

// WebsocketWriter sends every Write as the message of one envelope frame.
// p must hold a single JSON value.
type WebsocketWriter struct {
	Handler string
	Conn    ws.Sender
}

func (w *WebsocketWriter) Write(p []byte) (n int, err error) {
	err = w.Conn.WriteJSON(&ws.HandlerMessage{
		Handler: w.Handler,
		Message: json.RawMessage(p),
	})

	if err != nil {
		return 0, err
	}

	return len(p), nil
}
