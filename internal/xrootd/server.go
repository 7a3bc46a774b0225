package xrootd

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cubbit/xrootd4g/internal/ratelimiter"
	"github.com/cubbit/xrootd4g/internal/telemetry"
)

// Server accepts client connections and serves the xrootd data-server
// protocol on each. It is the Go shape of channelOpen's ChannelGroup
// registration: every accepted connection is tracked so shutdown can
// close them all, mirroring the reference implementation's need to fan
// shutdown out to every open channel.
type Server struct {
	Root         string
	Port         int
	MaxFrameSize int
	MaxBodySize  int
	UseZeroCopy  bool
	IdleTimeout  time.Duration

	listener    net.Listener
	metrics     telemetry.Metrics
	connLimiter *ratelimiter.RateLimiter

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer builds a Server from its configuration fields. maxConnRate and
// maxConnBurst throttle how fast the accept loop admits new connections;
// 0 leaves connection acceptance unlimited.
func NewServer(root string, port, maxFrameSize, maxBodySize int, useZeroCopy bool, idleTimeout time.Duration, maxConnRate, maxConnBurst uint) *Server {
	return &Server{
		Root:         root,
		Port:         port,
		MaxFrameSize: maxFrameSize,
		MaxBodySize:  maxBodySize,
		UseZeroCopy:  useZeroCopy,
		IdleTimeout:  idleTimeout,
		metrics:      telemetry.NewMetrics(),
		connLimiter:  ratelimiter.New(maxConnRate, maxConnBurst),
		conns:        make(map[net.Conn]struct{}),
	}
}

// Serve accepts connections until ctx is cancelled or the listener fails.
// Every accepted connection runs on its own goroutine, fully independent
// of every other connection except for the shared registry used to close
// them on shutdown.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}
	s.listener = listener
	telemetry.Info("xrootd data server listening on port %d", s.Port)

	go func() {
		<-ctx.Done()
		s.listener.Close()
		s.closeAll()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				telemetry.Debug("error accepting connection: %v", err)
				continue
			}
		}

		if !s.connLimiter.Allow() {
			telemetry.Warn("rejecting connection from %s: accept rate exceeded", conn.RemoteAddr())
			conn.Close()
			continue
		}

		s.track(conn)
		s.metrics.RecordConnectionAccepted()
		s.metrics.SetActiveConnections(int32(s.count()))

		go func() {
			defer s.untrack(conn)
			defer s.metrics.RecordConnectionClosed()
			defer s.metrics.SetActiveConnections(int32(s.count()))

			c := NewConnection(conn, s.Root, s.UseZeroCopy, s.MaxFrameSize, s.MaxBodySize, s.IdleTimeout)
			c.Serve()
		}()
	}
}

// Stop closes the listener; in-flight connections are closed by the
// ctx.Done() path in Serve when the caller cancels the context passed to
// it.
func (s *Server) Stop() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
