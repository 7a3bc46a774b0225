package xrootd

import (
	"net"
	"time"

	"github.com/cubbit/xrootd4g/internal/telemetry"
	"github.com/cubbit/xrootd4g/internal/wire"
)

// Connection owns one accepted client socket: its frame codec, its
// handler (and therefore its open-file table), and the idle timeout that
// closes it if the client goes quiet. One goroutine runs serve() per
// connection; connections never share state except the registry used for
// shutdown fan-out.
type Connection struct {
	conn        net.Conn
	codec       *wire.Codec
	handler     *Handler
	idleTimeout time.Duration
	metrics     telemetry.Metrics
}

// NewConnection builds a Connection ready to serve. root/useZeroCopy/
// maxFrameSize/maxBodySize/idleTimeout come from config.ServerConfig.
func NewConnection(conn net.Conn, root string, useZeroCopy bool, maxFrameSize, maxBodySize int, idleTimeout time.Duration) *Connection {
	return &Connection{
		conn:        conn,
		codec:       wire.NewCodec(int32(maxBodySize)),
		handler:     NewHandler(root, useZeroCopy, maxFrameSize, conn),
		idleTimeout: idleTimeout,
		metrics:     telemetry.NewMetrics(),
	}
}

// Serve runs the request-synchronous read/dispatch loop until the
// connection is closed, the client disconnects, or a framing error or
// panic occurs. Panics from a single request's handler are recovered
// here and terminate the connection, matching exceptionCaught's
// uncaught-exception escalation in the reference implementation, but
// without taking the whole process down.
func (c *Connection) Serve() {
	defer c.close()

	for {
		if c.idleTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
		}

		req, err := c.codec.ReadRequest(c.conn)
		if err != nil {
			return
		}

		if !c.handleOne(req) {
			return
		}
	}
}

// handleOne dispatches a single request, recovering a panic into a
// connection close rather than letting it propagate. Returns false when
// the connection should stop (write failure, panic).
func (c *Connection) handleOne(req *wire.Request) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("panic handling request stream_id=%d code=%d: %v", req.StreamID(), req.Header.Code, r)
			ok = false
		}
	}()

	if err := c.handler.Handle(c.conn, req); err != nil {
		telemetry.Debug("connection error: %v", err)
		return false
	}
	return true
}

func (c *Connection) close() {
	for _, err := range c.handler.Close() {
		telemetry.Warn("error releasing file on connection close: %v", err)
	}
	c.conn.Close()
}
