package ws

import (
	"errors"

	"github.com/cwrk-planet/chat-service/internal/chat"
	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Действия, которые клиент шлёт в WS
const (
	ActionCreate  = "create"  // создать комнату и войти в неё
	ActionJoin    = "join"    // войти в комнату по id
	ActionLeave   = "leave"   // выйти в лобби
	ActionMessage = "message" // отправить сообщение в текущую комнату
	ActionClose   = "close"   // закрыть текущую комнату (только админ)
)

type ClientMessage struct {
	Action string `json:"action"`
	Name   string `json:"name,omitempty"`    // create
	RoomID string `json:"room_id,omitempty"` // join
	Text   string `json:"text,omitempty"`    // message
}

func errorEvent(reason string) chat.Event {
	return chat.Event{Type: chat.TypeError, Payload: chat.ErrorPayload{Reason: reason}}
}

// reason — машинночитаемый код отказа для клиента.
func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, domain.ErrDuplicateRoomName):
		return "duplicate_room_name"
	case errors.Is(err, domain.ErrRoomClosed):
		return "room_closed"
	case errors.Is(err, domain.ErrNotAdmin):
		return "not_admin"
	case errors.Is(err, domain.ErrAlreadyClosed):
		return "already_closed"
	case errors.Is(err, domain.ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, chat.ErrNotInLobby):
		return "already_in_room"
	case errors.Is(err, chat.ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, chat.ErrMessageTooLong):
		return "message_too_long"
	case errors.Is(err, chat.ErrEmptyRoomName):
		return "empty_room_name"
	case errors.Is(err, chat.ErrEmptyUsername):
		return "empty_username"
	default:
		return "internal"
	}
}
