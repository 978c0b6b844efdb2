package chat

import "github.com/cwrk-planet/chat-service/internal/domain"

// Типы событий, которые ядро отправляет сессиям
const (
	TypeJoined         = "join_ok"          // подтверждение входа в комнату
	TypeHistory        = "history"          // реплей истории после входа
	TypeChat           = "chat"             // чат-сообщение
	TypeInfo           = "info"             // сервисное уведомление в комнате
	TypeRoomClosed     = "room_closed"      // комната закрыта админом
	TypeLastRoomClosed = "last_room_closed" // auto-rejoin не удался: комнаты больше нет
	TypeLobby          = "lobby"            // снапшот активных/существующих комнат
	TypeError          = "error"            // отклонённое действие
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type JoinedPayload struct {
	RoomID  string `json:"room_id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

type ChatPayload struct {
	MsgID  string `json:"msg_id"`
	RoomID string `json:"room_id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	TSUnix int64  `json:"ts_unix"`
}

type HistoryPayload struct {
	RoomID   string        `json:"room_id"`
	Messages []ChatPayload `json:"messages"`
}

type InfoPayload struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

type RoomClosedPayload struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

type LobbyRoom struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members int    `json:"members,omitempty"`
}

type LobbyPayload struct {
	Active   []LobbyRoom `json:"active"`
	Existing []LobbyRoom `json:"existing"`
}

type ErrorPayload struct {
	Reason string `json:"reason"`
}

func chatPayload(m *domain.ChatMessage) ChatPayload {
	return ChatPayload{
		MsgID:  m.ID,
		RoomID: m.RoomID,
		Sender: m.Sender,
		Text:   m.Text,
		TSUnix: m.CreatedAt.Unix(),
	}
}
