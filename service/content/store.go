// Package content loads preview documents and webspace start pages from a
// YAML file.
package content

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrStartPageNotFound = errors.New("start page not found")
)

type Document struct {
	UUID       string         `yaml:"uuid" json:"uuid"`
	Webspace   string         `yaml:"webspace" json:"webspace"`
	Locale     string         `yaml:"locale" json:"locale"`
	Template   string         `yaml:"template" json:"template"`
	Properties map[string]any `yaml:"properties" json:"properties"`
}

func (d *Document) ID() string {
	return d.UUID
}

type Webspace struct {
	Key string `yaml:"key"`
	// locale -> document uuid
	StartPages map[string]string `yaml:"startPages"`
}

type storeFile struct {
	Webspaces []Webspace `yaml:"webspaces"`
	Documents []Document `yaml:"documents"`
}

type documentKey struct {
	uuid, webspace, locale string
}

type FileStore struct {
	path string

	mu         sync.RWMutex
	loaded     bool
	modTime    time.Time
	startPages map[string]map[string]string
	documents  map[documentKey]*Document

	*zap.SugaredLogger
}

func NewFileStore(path string, logger *zap.SugaredLogger) *FileStore {
	return &FileStore{
		path:          path,
		SugaredLogger: logger.With("store", path),
	}
}

// EnsureConnected reloads the file if it was never loaded or changed on disk.
// A failed reload keeps the previously loaded content.
func (s *FileStore) EnsureConnected(ctx context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return errors.Wrap(err, "content store unavailable")
	}

	s.mu.RLock()
	fresh := s.loaded && info.ModTime().Equal(s.modTime)
	s.mu.RUnlock()
	if fresh {
		return nil
	}

	if err := s.reload(info.ModTime()); err != nil {
		return err
	}
	s.Warnw("content store reloaded", "modTime", info.ModTime())
	return nil
}

func (s *FileStore) reload(modTime time.Time) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return errors.Wrap(err, "reading content store")
	}

	var file storeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrapf(err, "parsing %s", s.path)
	}

	startPages := make(map[string]map[string]string, len(file.Webspaces))
	for _, webspace := range file.Webspaces {
		startPages[webspace.Key] = webspace.StartPages
	}
	documents := make(map[documentKey]*Document, len(file.Documents))
	for i := range file.Documents {
		doc := &file.Documents[i]
		documents[documentKey{doc.UUID, doc.Webspace, doc.Locale}] = doc
	}

	s.mu.Lock()
	s.loaded = true
	s.modTime = modTime
	s.startPages = startPages
	s.documents = documents
	s.mu.Unlock()
	return nil
}

func (s *FileStore) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.EnsureConnected(ctx)
}

func (s *FileStore) Load(ctx context.Context, uuid, webspaceKey, locale string) (*Document, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	doc, ok := s.documents[documentKey{uuid, webspaceKey, locale}]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrDocumentNotFound, "%s (%s/%s)", uuid, webspaceKey, locale)
	}
	return doc, nil
}

func (s *FileStore) LoadStartPage(ctx context.Context, webspaceKey, locale string) (*Document, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	uuid, ok := s.startPages[webspaceKey][locale]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrStartPageNotFound, "webspace %q locale %q", webspaceKey, locale)
	}
	return s.Load(ctx, uuid, webspaceKey, locale)
}
