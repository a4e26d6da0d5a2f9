package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/Antinowhere/VOXEL-FISH/internal/core/events"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/loop"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/observability/log"
	"github.com/Antinowhere/VOXEL-FISH/internal/core/world"
	"github.com/Antinowhere/VOXEL-FISH/pkg/generic"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxClientMessage = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Frame encoding runs once per tick per session.
var framePool = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }).
	WithReset(func(b *bytes.Buffer) { b.Reset() })

// Message types on the session socket.
const (
	MessageWelcome = "welcome"
	MessageFrame   = "frame"
	MessagePointer = "pointer"
)

type WelcomeMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	TickRate  int    `json:"tick_rate"`
	SceneURL  string `json:"scene_url"`
}

type FrameMessage struct {
	Type string `json:"type"`
	loop.Frame
}

// ClientMessage is anything the browser sends. Only pointer samples exist today.
type ClientMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Session is one browser page: its own world, scheduler and socket.
type Session struct {
	ID     string
	conn   *websocket.Conn
	loop   *loop.Loop
	send   chan []byte
	logger log.Log

	dropped atomic.Uint64
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		return
	}

	session := s.newSession(conn)
	s.sessions.Store(session.ID, session)
	s.sessionCount.Add(1)
	s.sessionGroup.Add(1)

	session.logger.Info("Session opened",
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("sessions", s.sessionCount.Load()))

	defer func() {
		s.sessions.Delete(session.ID)
		s.sessionCount.Add(-1)
		s.sessionGroup.Done()
		session.logger.Info("Session closed",
			log.Uint64("ticks", session.loop.Metrics().Ticks),
			log.Uint64("dropped_frames", session.dropped.Load()),
			log.Int64("sessions", s.sessionCount.Load()))
	}()

	if err = session.run(s.sessionContext(), s.config.World.TickRate); err != nil {
		session.logger.Debug("Session ended", log.Error(err))
	}
}

func (s *Server) newSession(conn *websocket.Conn) *Session {
	id := uuid.NewString()
	logger := s.logger.With(log.String("session_id", id))

	opts := s.config.World.Options()
	opts.OnProximity = events.Publisher(s.bus, id, logger)

	// The welcome message is queued before the write pump starts.
	buffer := max(s.config.Server.SendBuffer, 1)

	session := &Session{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, buffer),
		logger: logger,
	}
	session.loop = loop.New(world.New(opts),
		loop.WithTickRate(s.config.World.TickRate),
		loop.WithRender(session.render))
	return session
}

// render queues a frame without ever blocking the loop. A full queue means
// the client is behind, and the frame is dropped.
func (ss *Session) render(frame loop.Frame) {
	buf := framePool.Get()
	defer framePool.Put(buf)

	if err := json.NewEncoder(buf).Encode(FrameMessage{Type: MessageFrame, Frame: frame}); err != nil {
		ss.logger.Error("Failed to encode frame", log.Error(err))
		return
	}
	data := bytes.Clone(bytes.TrimSpace(buf.Bytes()))
	select {
	case ss.send <- data:
	default:
		ss.dropped.Add(1)
	}
}

func (ss *Session) run(ctx context.Context, tickRate int) error {
	welcome, err := json.Marshal(WelcomeMessage{
		Type:      MessageWelcome,
		SessionID: ss.ID,
		TickRate:  tickRate,
		SceneURL:  scenePath,
	})
	if err != nil {
		return err
	}
	ss.send <- welcome

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ss.readPump() })
	g.Go(func() error { return ss.writePump(gctx) })
	g.Go(func() error { return ss.loop.Run(gctx) })

	err = g.Wait()
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (ss *Session) readPump() error {
	ss.conn.SetReadLimit(maxClientMessage)
	_ = ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	ss.conn.SetPongHandler(func(string) error {
		return ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ss.conn.ReadMessage()
		if err != nil {
			return err
		}
		if err = ss.handleMessage(data); err != nil {
			ss.logger.Debug("Ignoring client message", log.Error(err))
		}
	}
}

func (ss *Session) handleMessage(data []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	switch msg.Type {
	case MessagePointer:
		if !ss.loop.Pointer(world.PointerSample{X: msg.X, Y: msg.Y}) {
			return fmt.Errorf("%w: pointer sample out of domain", ErrInvalidMessage)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, msg.Type)
	}
}

// writePump owns all writes on the socket. It closes the connection on exit,
// which unblocks readPump.
func (ss *Session) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ss.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = ss.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return nil
		case data := <-ss.send:
			_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ss.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		case <-ticker.C:
			_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ss.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}
