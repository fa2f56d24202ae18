// Package smtp implements the inbound SMTP listener and the per-connection
// session state machine that feeds accepted messages to a Notifier.
package smtp

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/andros-ua/smtp2tg/internal/notify"
)

// shutdownTimeout is the maximum time to wait for in-flight connections
// during graceful shutdown.
const shutdownTimeout = 30 * time.Second

// ServerConfig holds the configuration for an SMTP server.
type ServerConfig struct {
	// ListenAddr is the address to listen on (e.g., ":2525").
	ListenAddr string

	// Hostname is the server identity used in the banner and EHLO replies.
	Hostname string

	// Notifier is the notification delivery backend shared by all sessions.
	Notifier notify.Notifier
}

// Server accepts SMTP connections and runs one Session per connection.
// All sessions share the single configured Notifier.
type Server struct {
	config ServerConfig

	mu       sync.Mutex
	listener net.Listener

	// wg tracks in-flight session goroutines for graceful shutdown.
	wg sync.WaitGroup
}

// New creates a new SMTP Server with the given configuration.
func New(cfg ServerConfig) *Server {
	if cfg.Hostname == "" {
		cfg.Hostname = "smtp2tg"
	}

	return &Server{config: cfg}
}

// ListenAndServe starts the SMTP server and blocks until the context is
// cancelled. On cancellation it stops accepting new connections and waits
// up to 30 seconds for in-flight sessions to complete.
//
// Connections are accepted without bound: one goroutine per connection, no
// cap and no backpressure. A connection flood exhausts resources; limiting
// clients is out of scope here.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	slog.Info("SMTP server listening",
		"addr", ln.Addr().String(),
		"notifier", s.config.Notifier.Name(),
	)

	// Monitor context for shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down SMTP server")
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				// Expected error from listener close during shutdown
				s.waitForSessions()
				return nil
			default:
				slog.Error("accept error", "error", err)
				continue
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			session := NewSession(conn, s.config.Notifier, s.config.Hostname)
			session.Handle(ctx)
		}()
	}
}

// waitForSessions waits for all in-flight sessions to complete,
// with a maximum timeout to prevent indefinite blocking.
func (s *Server) waitForSessions() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("all sessions completed")
	case <-time.After(shutdownTimeout):
		slog.Warn("shutdown timeout reached, forcing close")
	}
}

// Addr returns the listener address, or empty string if not listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
