// Package preview keeps the drafts of running preview sessions in memory.
//
// A draft is identified by user, content, webspace and locale. Property
// updates are applied to the draft and remembered in a change log until the
// next GetChanges call drains it.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"contentpreview/service/content"
)

var ErrSessionNotFound = errors.New("preview session not found")

type DocumentLoader interface {
	Load(ctx context.Context, uuid, webspaceKey, locale string) (*content.Document, error)
}

type Key struct {
	User     string
	Content  string
	Webspace string
	Locale   string
}

type draft struct {
	template   string
	properties map[string]json.RawMessage
	started    time.Time

	// property names in order of their first change since the last drain
	changes *queue.Queue
	pending map[string]struct{}
}

func (d *draft) set(name string, value json.RawMessage) {
	d.properties[name] = value
	if _, ok := d.pending[name]; ok {
		return
	}
	d.pending[name] = struct{}{}
	d.changes.Add(name)
}

type Change struct {
	Name  string
	Value json.RawMessage
}

// Changes marshals to a JSON object keeping the order of the change log.
type Changes []Change

func (c Changes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, change := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(change.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if len(change.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(change.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type SessionInfo struct {
	User           string    `json:"user"`
	Content        string    `json:"content"`
	Webspace       string    `json:"webspaceKey"`
	Locale         string    `json:"locale"`
	Template       string    `json:"template"`
	Started        time.Time `json:"started"`
	PendingChanges int       `json:"pendingChanges"`
}

type Engine struct {
	mu     sync.Mutex
	drafts map[Key]*draft

	loader DocumentLoader
	now    func() time.Time

	*zap.SugaredLogger
}

func NewEngine(loader DocumentLoader, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		drafts:        make(map[Key]*draft),
		loader:        loader,
		now:           time.Now,
		SugaredLogger: logger,
	}
}

// Start creates the draft of a document, replacing a running one. data, when
// set, is an object of properties applied over the stored ones; template
// overrides the stored template when not empty.
func (e *Engine) Start(ctx context.Context, user, contentID, webspaceKey, locale string, data json.RawMessage, template string) error {
	doc, err := e.loader.Load(ctx, contentID, webspaceKey, locale)
	if err != nil {
		return err
	}

	d := &draft{
		template:   doc.Template,
		properties: make(map[string]json.RawMessage, len(doc.Properties)),
		started:    e.now(),
		changes:    queue.New(),
		pending:    make(map[string]struct{}),
	}
	for name, value := range doc.Properties {
		encoded, err := json.Marshal(value)
		if err != nil {
			return errors.Wrapf(err, "encoding property %q of %s", name, contentID)
		}
		d.properties[name] = encoded
	}
	if template != "" {
		d.template = template
	}
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		var overrides map[string]json.RawMessage
		if err := json.Unmarshal(data, &overrides); err != nil {
			return errors.Wrap(err, "start data must be an object")
		}
		for name, value := range overrides {
			d.properties[name] = value
		}
	}

	key := Key{user, contentID, webspaceKey, locale}
	e.mu.Lock()
	e.drafts[key] = d
	e.mu.Unlock()

	e.Debugw("preview started", "user", user, "content", contentID, "webspaceKey", webspaceKey, "locale", locale)
	return nil
}

func (e *Engine) Stop(ctx context.Context, user, contentID, webspaceKey, locale string) error {
	e.mu.Lock()
	delete(e.drafts, Key{user, contentID, webspaceKey, locale})
	e.mu.Unlock()

	e.Debugw("preview stopped", "user", user, "content", contentID, "webspaceKey", webspaceKey, "locale", locale)
	return nil
}

func (e *Engine) UpdateProperty(ctx context.Context, user, contentID, webspaceKey, locale, property string, value json.RawMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.drafts[Key{user, contentID, webspaceKey, locale}]
	if !ok {
		return errors.Wrapf(ErrSessionNotFound, "%s (%s/%s)", contentID, webspaceKey, locale)
	}
	d.set(property, value)
	return nil
}

// GetChanges returns the properties changed since the last call.
func (e *Engine) GetChanges(ctx context.Context, user, contentID, webspaceKey, locale string) (Changes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.drafts[Key{user, contentID, webspaceKey, locale}]
	if !ok {
		return nil, errors.Wrapf(ErrSessionNotFound, "%s (%s/%s)", contentID, webspaceKey, locale)
	}

	changes := make(Changes, 0, d.changes.Length())
	for d.changes.Length() > 0 {
		name := d.changes.Remove().(string)
		changes = append(changes, Change{Name: name, Value: d.properties[name]})
	}
	clear(d.pending)
	return changes, nil
}

// Sessions lists the running drafts, oldest first.
func (e *Engine) Sessions() []SessionInfo {
	e.mu.Lock()
	sessions := make([]SessionInfo, 0, len(e.drafts))
	for key, d := range e.drafts {
		sessions = append(sessions, SessionInfo{
			User:           key.User,
			Content:        key.Content,
			Webspace:       key.Webspace,
			Locale:         key.Locale,
			Template:       d.template,
			Started:        d.started,
			PendingChanges: d.changes.Length(),
		})
	}
	e.mu.Unlock()

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Started.Equal(sessions[j].Started) {
			return sessions[i].Started.Before(sessions[j].Started)
		}
		return sessions[i].Content < sessions[j].Content
	})
	return sessions
}
