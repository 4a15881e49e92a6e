// Package server implements the broker's TCP accept/dispatch loop: one
// goroutine per connection, each decoding length-prefixed Frames and routing
// them to internal/handler, the way the reference kafkatest.Server accepts a
// connection and loops reading/dispatching requests on it.
package server

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/hashicorp/go-uuid"
	"go.uber.org/zap"

	"github.com/dlworhd/meier/internal/handler"
	"github.com/dlworhd/meier/internal/metrics"
	"github.com/dlworhd/meier/internal/protocol"
)

// Server owns a listener and the shared handler state every connection
// dispatches through.
type Server struct {
	addr           string
	maxFrameLength int
	maxConnections int

	handlers *handler.Handlers
	log      *zap.Logger
	recorder metrics.Recorder

	mu       sync.Mutex
	ln       net.Listener
	conns    int
	shutdown bool
}

// New constructs a Server. maxFrameLength bounds a single decoded frame's
// payload size; maxConnections caps concurrently accepted connections (0
// means unbounded). log and recorder may be nil.
func New(addr string, maxFrameLength, maxConnections int, handlers *handler.Handlers, log *zap.Logger, recorder metrics.Recorder) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Server{
		addr:           addr,
		maxFrameLength: maxFrameLength,
		maxConnections: maxConnections,
		handlers:       handlers,
		log:            log,
		recorder:       recorder,
	}
}

// Addr returns the listener's bound address. Valid only after Run has
// started listening; intended for tests that bind to ":0".
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Run binds the listener and accepts connections until Close is called. Any
// other Accept error is logged and the loop continues. It blocks until the
// loop exits.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.shutdown
			s.mu.Unlock()
			if closing {
				return nil
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		if s.maxConnections > 0 && s.tryAcquireSlot() {
			go s.handleConn(conn)
		} else if s.maxConnections > 0 {
			s.log.Warn("rejecting connection: max_connections reached", zap.String("remote", conn.RemoteAddr().String()))
			conn.Close()
		} else {
			go s.handleConn(conn)
		}
	}
}

func (s *Server) tryAcquireSlot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns >= s.maxConnections {
		return false
	}
	s.conns++
	return true
}

func (s *Server) releaseSlot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns > 0 {
		s.conns--
	}
}

// Close stops the accept loop and closes the listener. Already-accepted
// connections are left to finish on their own.
func (s *Server) Close() error {
	s.mu.Lock()
	s.shutdown = true
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	return ln.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	if s.maxConnections > 0 {
		defer s.releaseSlot()
	}

	connID, err := uuid.GenerateUUID()
	if err != nil {
		connID = "unknown"
	}
	log := s.log.With(zap.String("conn", connID), zap.String("remote", conn.RemoteAddr().String()))

	s.recorder.ConnectionOpened()
	defer s.recorder.ConnectionClosed()
	log.Info("connection opened")
	defer log.Info("connection closed")

	reader := protocol.NewFrameReader(conn, s.maxFrameLength)
	writer := protocol.NewFrameWriter(conn, s.maxFrameLength)

	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			log.Warn("closing connection after decode error", zap.Error(err))
			return
		}

		resp, ok := s.dispatch(frame)
		if !ok {
			continue
		}
		if err := writer.WriteFrame(resp); err != nil {
			log.Warn("write failed, closing connection", zap.Error(err))
			return
		}
	}
}

// dispatch routes one decoded Frame to its handler and returns the Frame to
// write back. Ping/Pong liveness is symmetric: either side may probe the
// other, so a Ping elicits a Pong and a Pong elicits a Ping in return.
func (s *Server) dispatch(frame protocol.Frame) (protocol.Frame, bool) {
	switch frame.Kind() {
	case protocol.KindProduce:
		p, _ := frame.AsProduce()
		return s.handlers.HandleProduce(p.Topic, p.Message), true

	case protocol.KindConsume:
		c, _ := frame.AsConsume()
		return s.handlers.HandleConsume(c.Topic, c.PartitionID, c.Offset), true

	case protocol.KindConsumeNext:
		c, _ := frame.AsConsumeNext()
		return s.handlers.HandleConsumeNext(c.Topic, c.PartitionID), true

	case protocol.KindPing:
		return protocol.Pong(), true

	case protocol.KindPong:
		return protocol.Ping(), true

	case protocol.KindResponse:
		return protocol.NewResponseError("Server does not accept response frames"), true

	default:
		return protocol.NewResponseError("Unknown frame kind"), true
	}
}
