package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hayley-d/filehost/internal/logsink"
)

// Config holds the listener settings for a Server.
type Config struct {
	// Host is the bind address. Empty means loopback ("[::1]").
	Host string
	// Port to listen on. Zero asks the kernel for a free port, which the
	// tests rely on.
	Port int
	// ReadTimeout bounds how long a connection may take to deliver a
	// full request. Zero disables the deadline.
	ReadTimeout time.Duration
	// MaxConns caps concurrently served connections. Zero means a
	// default of 64.
	MaxConns int64
}

// Server accepts connections and spawns one supervisor per connection.
// Accepted connections are capped by a weighted semaphore; when the cap
// is reached the accept loop waits rather than shedding load.
type Server struct {
	cfg      Config
	handlers *Handlers
	sink     *logsink.Sink
	audit    *Auditor
	coord    *Coordinator

	listener net.Listener
	sem      *semaphore.Weighted
}

// New creates a Server. Listen must be called before Serve.
func New(cfg Config, handlers *Handlers, sink *logsink.Sink, audit *Auditor, coord *Coordinator) *Server {
	if cfg.Host == "" {
		cfg.Host = "::1"
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 64
	}
	return &Server{
		cfg:      cfg,
		handlers: handlers,
		sink:     sink,
		audit:    audit,
		coord:    coord,
		sem:      semaphore.NewWeighted(cfg.MaxConns),
	}
}

// Listen binds the configured address. Kept separate from Serve so
// callers learn the bound address (and bind failures) before the accept
// loop starts.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapErr(KindSocket, "binding "+addr, err)
	}
	s.listener = ln
	s.sink.Info("listening", "", map[string]any{"addr": ln.Addr().String()})
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop until shutdown triggers, then waits for
// every in-flight supervisor to finish. In-flight requests complete;
// only new accepts stop.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return E(KindSocket, "Serve called before Listen")
	}

	// Supervisors run under the parent context so a graceful shutdown
	// does not cancel requests already in flight.
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Closing the listener is how the blocked Accept observes shutdown.
	go func() {
		select {
		case <-s.coord.Subscribe():
		case <-ctx.Done():
			s.coord.Trigger()
		}
		cancel()
		s.listener.Close()
	}()

	for {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			break
		}
		conn, err := s.listener.Accept()
		if err != nil {
			s.sem.Release(1)
			if s.coord.Stopping() {
				break
			}
			s.sink.Error(KindSocket.String(), "accepting connection", nil, err)
			continue
		}

		done := s.coord.Track()
		go func() {
			defer done()
			defer s.sem.Release(1)
			sup := &supervisor{
				conn:        conn,
				handlers:    s.handlers,
				sink:        s.sink,
				audit:       s.audit,
				readTimeout: s.cfg.ReadTimeout,
			}
			sup.serve(parent)
		}()
	}

	s.coord.Join()
	s.sink.Info("stopped", "accept loop drained", nil)
	return nil
}

// Shutdown triggers the coordinator and closes the listener. Safe to
// call more than once and from any goroutine.
func (s *Server) Shutdown() {
	s.coord.Trigger()
	if s.listener != nil {
		s.listener.Close()
	}
}
