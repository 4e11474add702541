package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"contentpreview/service/content"
	engine "contentpreview/service/preview"
	ws "contentpreview/websocket"
)

// session context keys
const (
	keyUser        = "user"
	keyContent     = "content"
	keyLocale      = "locale"
	keyWebspaceKey = "webspaceKey"
)

const startPageAlias = "index"

type Preview interface {
	Start(ctx context.Context, user, contentID, webspaceKey, locale string, data json.RawMessage, template string) error
	Stop(ctx context.Context, user, contentID, webspaceKey, locale string) error
	UpdateProperty(ctx context.Context, user, contentID, webspaceKey, locale, property string, value json.RawMessage) error
	GetChanges(ctx context.Context, user, contentID, webspaceKey, locale string) (engine.Changes, error)
}

type ContentLoader interface {
	LoadStartPage(ctx context.Context, webspaceKey, locale string) (*content.Document, error)
}

// Connectivity is checked before every message, and may reconnect the
// backing store.
type Connectivity interface {
	EnsureConnected(ctx context.Context) error
}

type Dispatcher struct {
	preview      Preview
	loader       ContentLoader
	connectivity Connectivity

	*zap.SugaredLogger
}

// NewDispatcher wires the dispatcher; connectivity may be nil.
func NewDispatcher(preview Preview, loader ContentLoader, connectivity Connectivity, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		preview:       preview,
		loader:        loader,
		connectivity:  connectivity,
		SugaredLogger: logger,
	}
}

// Handle runs one command against the session of a connection and returns
// the outcome to send back, or nil. A failing command never returns an
// error: exactly one fail frame is written to conn instead.
func (d *Dispatcher) Handle(ctx context.Context, conn io.Writer, msg Message, session *ws.Context) (result any) {
	defer func() {
		if r := recover(); r != nil {
			d.fail(conn, msg, fmt.Errorf("%v", r))
			result = nil
		}
	}()

	d.reconnect(ctx)

	result, err := d.execute(ctx, msg, session)
	if err != nil {
		d.fail(conn, msg, err)
		return nil
	}
	return result
}

func (d *Dispatcher) reconnect(ctx context.Context) {
	if d.connectivity == nil {
		return
	}
	if err := d.connectivity.EnsureConnected(ctx); err != nil {
		d.Warnw("content store reconnect failed", "error", err)
	}
}

func (d *Dispatcher) execute(ctx context.Context, msg Message, session *ws.Context) (any, error) {
	if !msg.Has("command") {
		return nil, &MissingParameterError{Parameter: "command"}
	}
	name, command := msg.command()

	switch command {
	case CommandStart:
		return d.start(ctx, msg, session)
	case CommandStop:
		return d.stop(ctx, session)
	case CommandUpdate:
		return d.update(ctx, msg, session)
	case CommandUnknown:
		d.Debugw("ignoring unknown preview command", "command", name)
		return nil, nil
	default:
		panic(fmt.Sprintf("unhandled command %v", command))
	}
}

// start stores every parameter in the session as soon as it is validated.
func (d *Dispatcher) start(ctx context.Context, msg Message, session *ws.Context) (any, error) {
	locale, err := msg.require(keyLocale)
	if err != nil {
		return nil, err
	}
	session.Set(keyLocale, locale)

	webspaceKey, err := msg.require(keyWebspaceKey)
	if err != nil {
		return nil, err
	}
	session.Set(keyWebspaceKey, webspaceKey)

	user, err := msg.require(keyUser)
	if err != nil {
		return nil, err
	}
	session.Set(keyUser, user)

	contentID, err := msg.require(keyContent)
	if err != nil {
		return nil, err
	}
	if contentID == startPageAlias {
		startPage, err := d.loader.LoadStartPage(ctx, webspaceKey, locale)
		if err != nil {
			return nil, err
		}
		contentID = startPage.ID()
	}
	session.Set(keyContent, contentID)

	template, err := msg.String("template")
	if err != nil {
		return nil, err
	}

	if err := d.preview.Start(ctx, user, contentID, webspaceKey, locale, msg["data"], template); err != nil {
		return nil, err
	}

	return &Response{
		Command: "start",
		Content: contentID,
		Msg:     "OK",
	}, nil
}

func (d *Dispatcher) stop(ctx context.Context, session *ws.Context) (any, error) {
	if !session.Has(keyUser) {
		return nil, &ContextParametersNotFoundError{}
	}

	user := session.Get(keyUser)
	contentID := session.Get(keyContent)
	locale := session.Get(keyLocale)
	webspaceKey := session.Get(keyWebspaceKey)

	if err := d.preview.Stop(ctx, user, contentID, webspaceKey, locale); err != nil {
		return nil, err
	}

	session.Clear()

	// clients match the stop reply on "start"
	return &Response{
		Command: "start",
		Content: contentID,
		Msg:     "OK",
	}, nil
}

// update only refuses to run when no session parameter at all is present.
func (d *Dispatcher) update(ctx context.Context, msg Message, session *ws.Context) (any, error) {
	if !session.Has(keyContent) &&
		!session.Has(keyLocale) &&
		!session.Has(keyWebspaceKey) &&
		!session.Has(keyUser) {
		return nil, &ContextParametersNotFoundError{}
	}

	user := session.Get(keyUser)
	contentID := session.Get(keyContent)
	locale := session.Get(keyLocale)
	webspaceKey := session.Get(keyWebspaceKey)

	if !msg.Has("data") {
		return nil, &MissingParameterError{Parameter: "data"}
	}
	properties, ok := decodeProperties(msg["data"])
	if !ok {
		return nil, &MissingParameterError{Parameter: "data"}
	}

	for _, property := range properties {
		err := d.preview.UpdateProperty(ctx, user, contentID, webspaceKey, locale, property.name, property.value)
		if err != nil {
			return nil, err
		}
	}

	changes, err := d.preview.GetChanges(ctx, user, contentID, webspaceKey, locale)
	if err != nil {
		return nil, err
	}

	return &UpdateResponse{
		Command: "update",
		Content: contentID,
		Data:    changes,
	}, nil
}

// Release stops the preview still running on a closing connection.
func (d *Dispatcher) Release(ctx context.Context, session *ws.Context) error {
	if !session.Has(keyUser) {
		return nil
	}
	defer session.Clear()

	return d.preview.Stop(ctx,
		session.Get(keyUser),
		session.Get(keyContent),
		session.Get(keyWebspaceKey),
		session.Get(keyLocale),
	)
}

func (d *Dispatcher) fail(conn io.Writer, msg Message, err error) {
	code := errorCode(err)
	d.Infow("preview command failed", "error", err, "code", code)

	frame, mErr := json.Marshal(&FailResponse{
		Command:   "fail",
		Code:      code,
		Msg:       err.Error(),
		ParentMsg: msg,
	})
	if mErr != nil {
		d.Errorw("encoding fail frame", "error", mErr)
		return
	}
	if _, wErr := conn.Write(frame); wErr != nil {
		d.Warnw("sending fail frame", "error", wErr)
	}
}
