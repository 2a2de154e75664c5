// Package transport serves the inspector protocol over websockets. Every text
// frame is one protocol message; replies and events are written back in the
// order they were produced.
package transport

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apperrors "github.com/mcncl/inspectorjson/internal/errors"
	"github.com/mcncl/inspectorjson/internal/logging"
	"github.com/mcncl/inspectorjson/internal/metrics"
	"github.com/mcncl/inspectorjson/internal/protocol"
	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

const (
	writeWait         = 10 * time.Second
	defaultPongWait   = 60 * time.Second
	sendQueueSize     = 64
	defaultReadLimit  = 1 << 20
	detachedEvent     = "Inspector.detached"
	detachedByServer  = "server shutdown"
	binaryUnsupported = "Binary messages are not supported"
)

// Options configures a Server. Zero values select defaults.
type Options struct {
	ReadLimit int64
	PongWait  time.Duration
	Logger    *logging.Logger
	Metrics   *metrics.Metrics
}

// Server upgrades HTTP requests to protocol sessions
type Server struct {
	dispatcher *protocol.Dispatcher
	logger     *logging.Logger
	metrics    *metrics.Metrics
	readLimit  int64
	pongWait   time.Duration
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewServer creates a Server that dispatches commands with d.
func NewServer(d *protocol.Dispatcher, opts Options) *Server {
	s := &Server{
		dispatcher: d,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		readLimit:  opts.ReadLimit,
		pongWait:   opts.PongWait,
		sessions:   make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.logger = s.logger.Named("transport")
	if s.readLimit <= 0 {
		s.readLimit = defaultReadLimit
	}
	if s.pongWait <= 0 {
		s.pongWait = defaultPongWait
	}
	return s
}

// ServeHTTP upgrades the connection and runs the session until the peer
// disconnects or the server closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	session := newSession(conn, s.pongWait, s.metrics)
	logger := s.logger.With(zap.String("session", session.id), zap.String("remote", r.RemoteAddr))
	go session.writePump(logger)

	if !s.add(session) {
		session.closeWith(websocket.CloseGoingAway, detachedByServer)
		return
	}
	defer s.remove(session)

	logger.Info("session opened")
	s.metrics.SessionOpened()
	defer s.metrics.SessionClosed()

	ctx := contextWithSession(r.Context(), session)
	s.readLoop(ctx, session, logger)

	session.shutdown()
	logger.Info("session closed")
}

func (s *Server) readLoop(ctx context.Context, session *Session, logger *logging.Logger) {
	conn := session.conn
	conn.SetReadLimit(s.readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("peer closed session")
			} else {
				logger.Warn("session read failed", zap.Error(err))
			}
			return
		}
		s.metrics.RecordMessage(metrics.DirectionIn)

		var reply string
		switch kind {
		case websocket.TextMessage:
			reply = s.dispatcher.Dispatch(ctx, string(data))
		default:
			reply = protocol.NewErrorNotification(protocol.NewError(protocol.InvalidRequest, binaryUnsupported))
		}
		logger.Debug("message handled", zap.Int("bytes", len(data)))

		if err := session.enqueue(reply); err != nil {
			return
		}
	}
}

func (s *Server) add(session *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions[session.id] = session
	return true
}

func (s *Server) remove(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session.id)
}

func (s *Server) snapshot() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Sessions returns the ids of the open sessions in sorted order.
func (s *Server) Sessions() []string {
	var ids []string
	for _, session := range s.snapshot() {
		ids = append(ids, session.id)
	}
	slices.Sort(ids)
	return ids
}

// Broadcast sends an event to every open session and returns how many
// accepted it.
func (s *Server) Broadcast(method string, params *jsonvalue.Object) int {
	message := protocol.NewEvent(method, params)
	sent := 0
	for _, session := range s.snapshot() {
		if session.enqueue(message) == nil {
			sent++
		}
	}
	return sent
}

// Close sends Inspector.detached to every session, closes them and refuses
// new sessions.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	params := jsonvalue.NewObject()
	params.SetString("reason", detachedByServer)
	detached := protocol.NewEvent(detachedEvent, params)

	for _, session := range s.snapshot() {
		session.closeWith(websocket.CloseGoingAway, detachedByServer, detached)
	}
	return nil
}

// Session is one connected frontend
type Session struct {
	id       string
	conn     *websocket.Conn
	pongWait time.Duration
	metrics  *metrics.Metrics

	send      chan string
	done      chan struct{}
	pumpDone  chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex
}

func newSession(conn *websocket.Conn, pongWait time.Duration, m *metrics.Metrics) *Session {
	return &Session{
		id:       uuid.NewString(),
		conn:     conn,
		pongWait: pongWait,
		metrics:  m,
		send:     make(chan string, sendQueueSize),
		done:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
}

// ID returns the session's unique id
func (s *Session) ID() string {
	return s.id
}

// SendEvent queues an event for the frontend.
func (s *Session) SendEvent(method string, params *jsonvalue.Object) error {
	return s.enqueue(protocol.NewEvent(method, params))
}

func (s *Session) enqueue(message string) error {
	select {
	case <-s.done:
		return apperrors.NewTransportError("session "+s.id, apperrors.ErrSessionClosed)
	default:
	}
	select {
	case s.send <- message:
		return nil
	case <-s.done:
		return apperrors.NewTransportError("session "+s.id, apperrors.ErrSessionClosed)
	}
}

// writePump drains the send queue until the session stops. Pings keep the
// peer's read deadline fresh. closeWith waits for pumpDone, so nothing the
// pump holds can land after the close frame.
func (s *Session) writePump(logger *logging.Logger) {
	err := s.pump(logger)
	close(s.pumpDone)
	if err != nil {
		s.shutdown()
	}
}

func (s *Session) pump(logger *logging.Logger) error {
	ticker := time.NewTicker(s.pongWait * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.send:
			if err := s.write(websocket.TextMessage, []byte(message)); err != nil {
				logger.Warn("session write failed", zap.Error(err))
				return err
			}
			s.metrics.RecordMessage(metrics.DirectionOut)
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				logger.Debug("ping failed", zap.Error(err))
				return err
			}
		case <-s.done:
			return nil
		}
	}
}

func (s *Session) write(kind int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(kind, data)
}

// flush writes whatever is still queued ahead of the close frame.
func (s *Session) flush() {
	for {
		select {
		case message := <-s.send:
			if s.write(websocket.TextMessage, []byte(message)) != nil {
				return
			}
		default:
			return
		}
	}
}

// closeWith stops the session. final messages are written after anything
// already queued and before the close frame.
func (s *Session) closeWith(code int, text string, final ...string) {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.pumpDone
		s.flush()
		for _, message := range final {
			if s.write(websocket.TextMessage, []byte(message)) != nil {
				break
			}
		}
		_ = s.write(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
		_ = s.conn.Close()
	})
}

func (s *Session) shutdown() {
	s.closeWith(websocket.CloseNormalClosure, "")
}

type sessionKey struct{}

func contextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session a command arrived on. Handlers use
// it to emit events alongside their reply.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}
