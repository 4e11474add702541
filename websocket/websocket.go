package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Sender is the write side of a connection as seen by services.
type Sender interface {
	WriteJSON(v any) error
}

type Conn struct {
	*ws.Conn
	*sync.Mutex
	// Decoded text frames, closed when the read loop ends
	TextMessage chan *HandlerMessage

	logger *zap.SugaredLogger
}

var (
	upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

func (c *Conn) WriteJSON(v any) error {
	c.Lock()
	err := c.Conn.WriteJSON(v)
	c.Unlock()

	if err != nil {
		c.logger.Warnf("Websocket::WriteJSON error: %v", err)
	}
	return err
}

// NewConn upgrades the request and initializes the connection channels.
func NewConn(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger) (*Conn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("Websocket upgrade error: %v", err)
		return nil, err
	}

	return newConn(conn, logger), nil
}

func newConn(conn *ws.Conn, logger *zap.SugaredLogger) *Conn {
	return &Conn{
		Conn:        conn,
		Mutex:       new(sync.Mutex),
		TextMessage: make(chan *HandlerMessage, 10),
		logger:      logger,
	}
}

// StartDispatch reads frames until the connection fails and queues the decoded
// text frames on TextMessage. Binary frames are not part of the protocol.
func (c *Conn) StartDispatch() error {
	for {
		msgType, data, err := c.ReadMessage()
		if err != nil {
			close(c.TextMessage)
			return err
		}

		if msgType == ws.BinaryMessage {
			c.logger.Debugf("dropping binary frame (%d bytes)", len(data))
			continue
		}

		var msg HandlerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warnf("error unmarshalling message: %v", err)
			continue
		}
		c.TextMessage <- &msg
	}
}
