package postgres

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

func (s *Store) AppendMessage(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error) {
	query := `
		INSERT INTO room_messages (room_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, room_id, user_id,
		          (SELECT username FROM users WHERE id=$2),
		          text, created_at`

	var m domain.ChatMessage
	err := s.db.QueryRow(ctx, query, roomID, userID, text).
		Scan(&m.ID, &m.RoomID, &m.UserID, &m.Sender, &m.Text, &m.CreatedAt)
	if err != nil {
		return nil, storeErr("append message", err)
	}
	return &m, nil
}

func (s *Store) ListMessages(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	// limit > 0 — хвост истории (последние N); NULLIF превращает 0 в LIMIT NULL.
	// Внешний SELECT возвращает восходящий порядок.
	query := `
		SELECT id, room_id, user_id, username, text, created_at
		FROM (
			SELECT m.id, m.room_id, m.user_id, u.username, m.text, m.created_at
			FROM room_messages m
			JOIN users u ON u.id = m.user_id
			WHERE m.room_id = $1
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT NULLIF($2::int, 0)
		) tail
		ORDER BY created_at ASC, id ASC`

	if limit < 0 {
		limit = 0
	}
	rows, err := s.db.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, storeErr("list messages", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) DeleteMessages(ctx context.Context, roomID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM room_messages WHERE room_id=$1`, roomID); err != nil {
		return storeErr("delete messages", err)
	}
	return nil
}
