package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Conn — абстрактный исходящий канал сессии; транспорт подставляет websocket.
type Conn interface {
	Send(ev Event) error
	Close() error
}

type State int

const (
	StateLobby State = iota
	StateInRoom
	StateDisconnected // терминальное
)

func (st State) String() string {
	switch st {
	case StateLobby:
		return "lobby"
	case StateInRoom:
		return "in_room"
	default:
		return "disconnected"
	}
}

// Session — состояние одного подключённого пользователя.
// Переходы состояний, затрагивающие членство, выполняются под локом комнаты
// (порядок локов: room -> session), поэтому join/close/leave не интерливятся.
type Session struct {
	core *Core
	conn Conn

	mu     sync.Mutex
	user   *domain.User
	state  State
	roomID string
}

func (s *Session) User() domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.user
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room — id текущей комнаты; пусто вне комнаты.
func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// Join: Lobby -> InRoom. При ошибке состояние не меняется.
func (s *Session) Join(ctx context.Context, roomID string) error {
	s.mu.Lock()
	if s.state != StateLobby {
		s.mu.Unlock()
		return ErrNotInLobby
	}
	s.mu.Unlock()

	room, err := s.core.reg.Join(ctx, roomID, s, s.core.historyLimit)
	if err != nil {
		return err
	}

	s.core.leaveLobby(s)
	s.core.hub.Notify(room.ID, fmt.Sprintf("user %q has joined the room %q", s.user.Username, room.Name))
	s.core.pushLobby()
	return nil
}

// Leave: InRoom -> Lobby; вне комнаты — no-op (§7 SessionNotInRoom).
func (s *Session) Leave(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInRoom {
		s.mu.Unlock()
		return nil
	}
	roomID := s.roomID
	s.mu.Unlock()

	if s.core.reg.Leave(roomID, s) {
		s.core.hub.Notify(roomID, fmt.Sprintf("user %q has left the room", s.user.Username))
	}
	s.core.enterLobby(s)
	s.core.pushLobby()
	return nil
}

func (s *Session) SendMessage(ctx context.Context, text string) error {
	s.mu.Lock()
	st, roomID := s.state, s.roomID
	s.mu.Unlock()

	if st != StateInRoom {
		return domain.ErrNotInRoom
	}
	_, err := s.core.hub.Publish(ctx, roomID, s, text)
	return err
}

// CloseRoom — закрытие текущей комнаты; право проверяет Admin Controller.
func (s *Session) CloseRoom(ctx context.Context) error {
	s.mu.Lock()
	st, roomID := s.state, s.roomID
	s.mu.Unlock()

	if st != StateInRoom {
		return domain.ErrNotInRoom
	}
	return s.core.closeRoom(ctx, s, roomID)
}

// Disconnect: транспортный канал закрыт. Членство снимается, last_room
// сохраняется — auto-rejoin переживает дисконнект.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}
	roomID := s.roomID
	s.state = StateDisconnected
	s.roomID = ""
	s.mu.Unlock()

	if roomID != "" {
		if s.core.reg.Leave(roomID, s) {
			s.core.hub.Notify(roomID, fmt.Sprintf("user %q has left the room", s.user.Username))
		}
	}
	s.core.leaveLobby(s)
	_ = s.conn.Close()
	s.core.pushLobby()
}

// --- переходы под локом комнаты ---

func (s *Session) enterRoom(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLobby {
		return false
	}
	s.state = StateInRoom
	s.roomID = roomID
	id := roomID
	s.user.LastRoomID = &id
	return true
}

func (s *Session) exitRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInRoom && s.roomID == roomID {
		s.state = StateLobby
		s.roomID = ""
	}
}

// forceToLobby — принудительная эвикция при закрытии комнаты.
// Вызывается ровно один раз на сессию (под локом комнаты), двойного
// уведомления не бывает.
func (s *Session) forceToLobby(ev Event) bool {
	s.mu.Lock()
	if s.state != StateInRoom {
		s.mu.Unlock()
		return false
	}
	s.state = StateLobby
	s.roomID = ""
	s.user.LastRoomID = nil
	s.mu.Unlock()

	if err := s.conn.Send(ev); err != nil {
		s.fail()
	}
	return true
}

func (s *Session) sendJoined(room *domain.Room, history []domain.ChatMessage) {
	ok := Event{Type: TypeJoined, Payload: JoinedPayload{
		RoomID:  room.ID,
		Name:    room.Name,
		IsAdmin: room.AdminID == s.user.ID,
	}}
	msgs := make([]ChatPayload, 0, len(history))
	for i := range history {
		msgs = append(msgs, chatPayload(&history[i]))
	}
	replay := Event{Type: TypeHistory, Payload: HistoryPayload{RoomID: room.ID, Messages: msgs}}

	if err := s.conn.Send(ok); err != nil {
		s.fail()
		return
	}
	if err := s.conn.Send(replay); err != nil {
		s.fail()
	}
}

// fail закрывает транспортный канал; Disconnect придёт от его владельца.
func (s *Session) fail() {
	_ = s.conn.Close()
}
