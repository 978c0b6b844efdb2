// Package chat — ядро сервиса: реестр комнат, fan-out сообщений и машина
// состояний пользовательских сессий. Транспорт и хранилище подключаются
// через интерфейсы Conn и store.Store.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/store"
)

// Ошибки валидации ядра; транспорт превращает их в error-события.
var (
	ErrEmptyUsername  = errors.New("empty username")
	ErrEmptyRoomName  = errors.New("empty room name")
	ErrEmptyMessage   = errors.New("empty message")
	ErrMessageTooLong = errors.New("message too long")
	ErrNotInLobby     = errors.New("leave the current room first")
	ErrSessionClosed  = errors.New("session disconnected")
)

type Options struct {
	// HistoryLimit — сколько сообщений реплеить при входе; <=0 — всю историю.
	HistoryLimit int
	// MaxMessageLen — лимит длины сообщения в рунах; 0 — дефолт 4000.
	MaxMessageLen int
}

// Core собирает компоненты ядра и владеет множеством сессий в лобби.
// Конструируется явно в main и внедряется в транспорт — никакого ambient state.
type Core struct {
	store store.Store
	reg   *Registry
	hub   *Hub

	lobbyMu sync.Mutex
	lobby   map[*Session]struct{}

	historyLimit int
}

func New(st store.Store, opts Options) *Core {
	reg := NewRegistry(st)
	return &Core{
		store:        st,
		reg:          reg,
		hub:          NewHub(st, reg, opts.MaxMessageLen),
		lobby:        make(map[*Session]struct{}),
		historyLimit: opts.HistoryLimit,
	}
}

// Load прогревает реестр комнат из хранилища; вызывается один раз при старте.
func (c *Core) Load(ctx context.Context) error {
	return c.reg.Load(ctx)
}

// Connect регистрирует нового пользователя транспорта. Если у пользователя
// запомнена последняя комната и она открыта — лобби пропускается (auto-rejoin),
// история реплеится. Протухший указатель чистится, пользователь идёт в лобби.
func (c *Core) Connect(ctx context.Context, username string, conn Conn) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	u, err := c.store.GetOrCreateUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("connect %q: %w", username, err)
	}

	s := &Session{core: c, conn: conn, user: u, state: StateLobby}

	if u.LastRoomID != nil {
		roomID := *u.LastRoomID
		room, err := c.reg.Join(ctx, roomID, s, c.historyLimit)
		switch {
		case err == nil:
			c.hub.Notify(room.ID, fmt.Sprintf("user %q has reconnected", username))
			c.pushLobby()
			slog.Debug("auto-rejoin", "user", username, "room", room.ID)
			return s, nil
		case errors.Is(err, domain.ErrRoomClosed) || errors.Is(err, domain.ErrRoomNotFound):
			if err := c.store.SetLastRoom(ctx, u.ID, nil); err != nil {
				slog.Warn("clear stale last room", "user", username, "err", err)
			}
			u.LastRoomID = nil
			_ = conn.Send(Event{Type: TypeLastRoomClosed})
		default:
			return nil, err
		}
	}

	c.enterLobby(s)
	return s, nil
}

// CreateRoom создаёт комнату; создатель становится её админом.
func (c *Core) CreateRoom(ctx context.Context, adminID int64, name string) (*domain.Room, error) {
	room, err := c.reg.CreateRoom(ctx, name, adminID)
	if err != nil {
		return nil, err
	}
	c.pushLobby()
	return room, nil
}
