// Package memory — Store без внешних зависимостей: dev-режим и unit-тесты ядра.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.Mutex

	users      map[string]*domain.User // username -> user
	rooms      map[string]*domain.Room // roomID -> room
	messages   map[string][]domain.ChatMessage
	nextUserID int64
}

func New() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		rooms:    make(map[string]*domain.Room),
		messages: make(map[string][]domain.ChatMessage),
	}
}

func (s *Store) GetOrCreateUser(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[username]; ok {
		return copyUser(u), nil
	}
	s.nextUserID++
	u := &domain.User{ID: s.nextUserID, Username: username}
	s.users[username] = u
	return copyUser(u), nil
}

func (s *Store) CreateRoom(_ context.Context, name string, adminID int64) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rooms {
		if !r.Closed && r.Name == name {
			return nil, domain.ErrDuplicateRoomName
		}
	}
	r := &domain.Room{
		ID:        uuid.New().String(),
		Name:      name,
		AdminID:   adminID,
		CreatedAt: time.Now(),
	}
	s.rooms[r.ID] = r
	rm := *r
	return &rm, nil
}

func (s *Store) GetRoom(_ context.Context, id string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	rm := *r
	return &rm, nil
}

func (s *Store) ListOpenRooms(_ context.Context) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Room
	for _, r := range s.rooms {
		if !r.Closed {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *Store) SetRoomClosed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	r.Closed = true
	return nil
}

func (s *Store) AppendMessage(_ context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return nil, domain.ErrRoomNotFound
	}
	var sender string
	for _, u := range s.users {
		if u.ID == userID {
			sender = u.Username
			break
		}
	}
	m := domain.ChatMessage{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		UserID:    userID,
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.messages[roomID] = append(s.messages[roomID], m)
	return &m, nil
}

func (s *Store) ListMessages(_ context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[roomID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *Store) DeleteMessages(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, roomID)
	return nil
}

func (s *Store) SetLastRoom(_ context.Context, userID int64, roomID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == userID {
			if roomID == nil {
				u.LastRoomID = nil
			} else {
				id := *roomID
				u.LastRoomID = &id
			}
			return nil
		}
	}
	return nil
}

func (s *Store) ClearLastRoom(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.LastRoomID != nil && *u.LastRoomID == roomID {
			u.LastRoomID = nil
		}
	}
	return nil
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	if u.LastRoomID != nil {
		id := *u.LastRoomID
		cp.LastRoomID = &id
	}
	return &cp
}
