package websocket

import (
	"context"
	"encoding/json"
)

type Service interface {
	// HandleTextMessage is never called concurrently for one connection.
	HandleTextMessage(ctx context.Context, msg *HandlerMessage, session *Context)
	Name() string
	Cleanup(session *Context, err error)
	Register(conn Sender)
}

// HandlerMessage is the envelope of every text frame in both directions.
type HandlerMessage struct {
	Handler string          `json:"handler"`
	Message json.RawMessage `json:"message,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`
	Error   string          `json:"error,omitempty"`
}
