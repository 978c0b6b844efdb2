package postgres

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

func (s *Store) GetOrCreateUser(ctx context.Context, username string) (*domain.User, error) {
	// upsert: DO UPDATE нужен, чтобы RETURNING сработал и для существующей строки
	query := `
		INSERT INTO users (username)
		VALUES ($1)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username, last_room_id`

	var u domain.User
	if err := s.db.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.LastRoomID); err != nil {
		return nil, storeErr("get or create user", err)
	}
	return &u, nil
}

func (s *Store) SetLastRoom(ctx context.Context, userID int64, roomID *string) error {
	if _, err := s.db.Exec(ctx, `UPDATE users SET last_room_id=$2 WHERE id=$1`, userID, roomID); err != nil {
		return storeErr("set last room", err)
	}
	return nil
}

func (s *Store) ClearLastRoom(ctx context.Context, roomID string) error {
	if _, err := s.db.Exec(ctx, `UPDATE users SET last_room_id=NULL WHERE last_room_id=$1`, roomID); err != nil {
		return storeErr("clear last room", err)
	}
	return nil
}
