package websocket

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const timeoutCheckInterval = 10 * time.Second

type Server struct {
	*Conn
	ID string

	// only touched before Start and by the consumer goroutine
	services map[string]Service
	contexts map[string]*Context

	lastActiveTime atomic.Time
	activeServices []string
	timeout        time.Duration

	*zap.SugaredLogger
}

func (s *Server) checkTimeout(ctx context.Context) {
	ticker := time.NewTicker(timeoutCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Since(s.lastActiveTime.Load()) > s.timeout {
				s.Infof("closing idle connection after %v", s.timeout)
				s.Close()
				return
			}
		}
	}
}

// Register adds a service whose messages count as connection activity.
func (s *Server) Register(service Service) {
	s.RegisterPassive(service)
	s.activeServices = append(s.activeServices, service.Name())
}

// RegisterPassive adds a service that does not keep the connection alive,
// like the heartbeat.
func (s *Server) RegisterPassive(service Service) {
	if _, exists := s.services[service.Name()]; exists {
		s.Warnf("service %s already registered", service.Name())
		return
	}

	service.Register(s.Conn)
	s.services[service.Name()] = service
	s.contexts[service.Name()] = NewContext()
}

func (s *Server) dispatch(ctx context.Context, msg *HandlerMessage) {
	if slices.Contains(s.activeServices, msg.Handler) {
		s.lastActiveTime.Store(time.Now())
	}
	service, exists := s.services[msg.Handler]
	if !exists {
		s.Debugf("no service registered for handler %q", msg.Handler)
		return
	}
	service.HandleTextMessage(ctx, msg, s.contexts[msg.Handler])
}

func (s *Server) cleanup(err error) {
	for name, service := range s.services {
		service.Cleanup(s.contexts[name], err)
	}
}

// Start blocks until the connection is closed. Messages are handed to the
// services one at a time, in the order they were read.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.lastActiveTime.Store(time.Now())
	go s.checkTimeout(ctx)

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for msg := range s.TextMessage {
			s.dispatch(ctx, msg)
		}
	}()

	err := s.StartDispatch()
	<-consumed
	s.Debugf("connection closed: %v", err)

	s.cleanup(err)
	return err
}

func NewServer(w http.ResponseWriter, r *http.Request, timeout time.Duration, logger *zap.Logger) (*Server, error) {
	id := uuid.NewString()
	sugar := logger.Sugar().With("connection", id)

	conn, err := NewConn(w, r, sugar)
	if err != nil {
		return nil, err
	}

	return newServer(id, conn, timeout, sugar), nil
}

func newServer(id string, conn *Conn, timeout time.Duration, logger *zap.SugaredLogger) *Server {
	return &Server{
		Conn:           conn,
		ID:             id,
		services:       make(map[string]Service),
		contexts:       make(map[string]*Context),
		activeServices: make([]string, 0, 2),
		timeout:        timeout,
		SugaredLogger:  logger,
	}
}
