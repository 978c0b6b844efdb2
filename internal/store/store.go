package store

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Store — адаптер персистентного хранилища (пользователи, комнаты, история).
// Ядро не знает про конкретный движок: postgres в проде, memory в тестах и dev.
type Store interface {
	GetOrCreateUser(ctx context.Context, username string) (*domain.User, error)

	// CreateRoom возвращает domain.ErrDuplicateRoomName, если открытая комната
	// с таким именем уже существует. Закрытые комнаты имя не резервируют.
	CreateRoom(ctx context.Context, name string, adminID int64) (*domain.Room, error)
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	ListOpenRooms(ctx context.Context) ([]domain.Room, error)
	SetRoomClosed(ctx context.Context, id string) error

	AppendMessage(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error)
	// ListMessages — история комнаты по возрастанию (created_at, id).
	// limit > 0 ограничивает выдачу последними N сообщениями; <= 0 — вся история.
	ListMessages(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error)
	DeleteMessages(ctx context.Context, roomID string) error

	SetLastRoom(ctx context.Context, userID int64, roomID *string) error
	// ClearLastRoom сбрасывает last_room у всех пользователей, указывающих на комнату.
	ClearLastRoom(ctx context.Context, roomID string) error
}
