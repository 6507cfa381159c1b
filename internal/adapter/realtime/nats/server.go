// Package nats runs an embedded NATS server and exposes the lobby change
// feed on top of it. Every connected game server process shares the same
// subjects, so lobby row changes reach every member's store.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

type Server struct {
	ns    *server.Server
	conn  *nats.Conn
	ready chan struct{}

	startupTimeout time.Duration
	host           string
	port           int
}

type ServerOpt func(*Server)

func WithHost(host string) ServerOpt {
	return func(s *Server) { s.host = host }
}

// WithPort sets the listen port. Port -1 picks a random free port, which
// tests rely on.
func WithPort(port int) ServerOpt {
	return func(s *Server) { s.port = port }
}

func NewServer(opts ...ServerOpt) (*Server, error) {
	s := &Server{
		ready:          make(chan struct{}),
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
	}
	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true, // Let the application handle signals
	})
	if err != nil {
		return nil, err
	}
	s.ns = ns
	return s, nil
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.ns.Start()

	if !s.ns.ReadyForConnections(s.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}

	conn, err := nats.Connect(s.ns.ClientURL())
	if err != nil {
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	s.conn = conn
	close(s.ready)

	slog.InfoContext(ctx, "nats server listening", "addr", s.ns.Addr())

	<-ctx.Done()
	s.conn.Close()
	s.ns.Shutdown()
	s.ns.WaitForShutdown()

	return nil
}

func (s *Server) Publish(subject string, data []byte) error {
	select {
	case <-s.ready:
	default:
		return fmt.Errorf("nats server not started")
	}
	return s.conn.Publish(subject, data)
}

// Subscribe registers a handler for a subject and returns an unsubscribe
// function releasing the subscription.
func (s *Server) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	select {
	case <-s.ready:
	default:
		return nil, fmt.Errorf("nats server not started")
	}
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// WaitReady blocks until the server accepts connections or the timeout
// elapses.
func (s *Server) WaitReady(timeout time.Duration) bool {
	select {
	case <-s.ready:
		return true
	case <-time.After(timeout):
		return false
	}
}
