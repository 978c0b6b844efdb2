package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) CreateRoom(ctx context.Context, name string, adminID int64) (*domain.Room, error) {
	query := `
		INSERT INTO rooms (name, admin_id)
		VALUES ($1, $2)
		RETURNING id, name, admin_id, closed, created_at`

	var rm domain.Room
	err := s.db.QueryRow(ctx, query, name, adminID).
		Scan(&rm.ID, &rm.Name, &rm.AdminID, &rm.Closed, &rm.CreatedAt)
	if err != nil {
		// частичный уникальный индекс по (name) WHERE NOT closed
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateRoomName
		}
		return nil, storeErr("create room", err)
	}
	return &rm, nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	var rm domain.Room
	query := `SELECT id, name, admin_id, closed, created_at FROM rooms WHERE id=$1`
	err := s.db.QueryRow(ctx, query, id).
		Scan(&rm.ID, &rm.Name, &rm.AdminID, &rm.Closed, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, storeErr("get room", err)
	}
	return &rm, nil
}

func (s *Store) ListOpenRooms(ctx context.Context) ([]domain.Room, error) {
	query := `
		SELECT id, name, admin_id, closed, created_at
		FROM rooms
		WHERE NOT closed
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, storeErr("list open rooms", err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.AdminID, &rm.Closed, &rm.CreatedAt); err != nil {
			return nil, storeErr("list open rooms", err)
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

func (s *Store) SetRoomClosed(ctx context.Context, id string) error {
	cmd, err := s.db.Exec(ctx, `UPDATE rooms SET closed=TRUE WHERE id=$1`, id)
	if err != nil {
		return storeErr("set room closed", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}
