package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwrk-planet/chat-service/internal/chat"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type Options struct {
	PingInterval    time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int64
}

type Server struct {
	upgrader websocket.Upgrader
	core     *chat.Core

	pingEvery       time.Duration
	writeTimeout    time.Duration
	maxMessageBytes int64
}

func NewServer(core *chat.Core, opts Options) *Server {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = 1 << 20
	}
	return &Server{
		core: core,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:       opts.PingInterval,
		writeTimeout:    opts.WriteTimeout,
		maxMessageBytes: opts.MaxMessageBytes,
	}
}

// WS endpoint: GET /ws/{username}
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		http.Error(w, "missing username", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, s.writeTimeout)

	sess, err := s.core.Connect(r.Context(), username, c)
	if err != nil {
		slog.Warn("ws connect rejected", "user", username, "err", err)
		_ = c.Send(errorEvent(reason(err)))
		_ = c.Close()
		return
	}

	go s.writeLoop(c)
	s.readLoop(r.Context(), c, sess)

	// канал умер (disconnect, ошибка или эвикция): снимаем членство,
	// last_room не трогаем — auto-rejoin переживает обрыв
	sess.Disconnect()
}

func (s *Server) readLoop(ctx context.Context, c *wsConn, sess *chat.Session) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(s.maxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = c.Send(errorEvent("invalid_json"))
			continue
		}
		s.dispatch(ctx, c, sess, msg)
	}
}

func (s *Server) dispatch(ctx context.Context, c *wsConn, sess *chat.Session, msg ClientMessage) {
	var err error

	switch msg.Action {
	case ActionCreate:
		user := sess.User()
		rm, createErr := s.core.CreateRoom(ctx, user.ID, msg.Name)
		err = createErr
		if err == nil {
			// создатель сразу входит в свою комнату
			err = sess.Join(ctx, rm.ID)
		}
	case ActionJoin:
		err = sess.Join(ctx, msg.RoomID)
	case ActionLeave:
		err = sess.Leave(ctx)
	case ActionMessage:
		err = sess.SendMessage(ctx, msg.Text)
	case ActionClose:
		err = sess.CloseRoom(ctx)
	default:
		_ = c.Send(errorEvent("unknown_action"))
		return
	}

	if err != nil {
		slog.Debug("ws action rejected",
			"action", msg.Action, "user", sess.User().Username, "err", err)
		_ = c.Send(errorEvent(reason(err)))
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout))
		case <-c.closed:
			return
		}
	}
}
