package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// closeRoom — admin-only закрытие комнаты. Всё под локом комнаты: пометить
// closed, вычистить историю и указатели last_room, эвиктнуть членов с
// уведомлением. Конкурентный Join либо успеет до (и будет эвикнут), либо
// получит ErrRoomClosed — молчаливых членов закрытой комнаты не бывает.
func (c *Core) closeRoom(ctx context.Context, s *Session, roomID string) error {
	rs, ok := c.reg.get(roomID)
	if !ok {
		return domain.ErrRoomNotFound
	}

	rs.mu.Lock()

	if rs.room.AdminID != s.user.ID {
		rs.mu.Unlock()
		return domain.ErrNotAdmin
	}
	if rs.room.Closed {
		rs.mu.Unlock()
		return domain.ErrAlreadyClosed
	}

	// durability first: флаг в хранилище до изменения памяти
	if err := c.store.SetRoomClosed(ctx, roomID); err != nil {
		rs.mu.Unlock()
		return fmt.Errorf("close room: %w", err)
	}
	if err := c.store.DeleteMessages(ctx, roomID); err != nil {
		slog.Error("close room: purge history", "room", roomID, "err", err)
	}
	if err := c.store.ClearLastRoom(ctx, roomID); err != nil {
		slog.Error("close room: clear last_room pointers", "room", roomID, "err", err)
	}

	rs.room.Closed = true

	notice := Event{Type: TypeRoomClosed, Payload: RoomClosedPayload{
		RoomID: rs.room.ID,
		Name:   rs.room.Name,
	}}

	evicted := make([]*Session, 0, len(rs.members))
	for m := range rs.members {
		evicted = append(evicted, m)
	}
	clear(rs.members)

	moved := evicted[:0]
	for _, m := range evicted {
		if m.forceToLobby(notice) {
			moved = append(moved, m)
		}
	}
	rs.mu.Unlock()

	slog.Info("room closed", "room", roomID, "name", rs.room.Name, "evicted", len(moved))

	for _, m := range moved {
		c.enterLobby(m)
	}
	c.pushLobby()
	return nil
}
