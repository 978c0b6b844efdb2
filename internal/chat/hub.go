package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/store"
)

// Hub — пер-комнатный fan-out. Persist-then-broadcast выполняется одним
// сериализованным шагом под локом комнаты: два конкурентных Publish не могут
// перемешать порядок доставки относительно порядка коммита.
type Hub struct {
	store store.Store
	reg   *Registry

	maxMessageLen int
}

func NewHub(st store.Store, reg *Registry, maxMessageLen int) *Hub {
	if maxMessageLen <= 0 {
		maxMessageLen = 4000
	}
	return &Hub{store: st, reg: reg, maxMessageLen: maxMessageLen}
}

// Publish: сначала durability, потом visibility. Если запись в хранилище не
// удалась — рассылки нет, ошибка уходит только отправителю.
func (h *Hub) Publish(ctx context.Context, roomID string, sender *Session, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > h.maxMessageLen {
		return nil, ErrMessageTooLong
	}

	rs, ok := h.reg.get(roomID)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.room.Closed {
		return nil, domain.ErrRoomClosed
	}

	msg, err := h.store.AppendMessage(ctx, roomID, sender.user.ID, text)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	h.deliver(rs, Event{Type: TypeChat, Payload: chatPayload(msg)})
	return msg, nil
}

// Notify — сервисные info-уведомления (joined/left/reconnected); не персистятся.
func (h *Hub) Notify(roomID, text string) {
	rs, ok := h.reg.get(roomID)
	if !ok {
		return
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.room.Closed {
		return
	}
	h.deliver(rs, Event{Type: TypeInfo, Payload: InfoPayload{RoomID: roomID, Text: text}})
}

// deliver — best-effort по каждому получателю: отказ одного канала не
// блокирует остальных и не эскалируется публикующему. Сбойный канал
// закрывается, его Disconnect придёт от транспорта.
func (h *Hub) deliver(rs *roomState, ev Event) {
	for m := range rs.members {
		if err := m.conn.Send(ev); err != nil {
			slog.Debug("hub: send failed, dropping connection",
				"room", rs.room.ID, "user", m.user.Username, "err", err)
			m.fail()
		}
	}
}
