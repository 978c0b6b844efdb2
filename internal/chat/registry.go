package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/store"
)

// roomState — запись реестра: персистентная комната + живое членство.
// mu сериализует join/leave/publish/close по одной комнате (§5: один лок на room id).
type roomState struct {
	mu      sync.Mutex
	room    domain.Room
	members map[*Session]struct{}
}

// Registry — единственный источник правды о комнатах и живом членстве.
type Registry struct {
	store store.Store

	mu    sync.RWMutex
	rooms map[string]*roomState
}

func NewRegistry(st store.Store) *Registry {
	return &Registry{store: st, rooms: make(map[string]*roomState)}
}

// Load поднимает открытые комнаты из хранилища при старте процесса.
func (r *Registry) Load(ctx context.Context) error {
	rooms, err := r.store.ListOpenRooms(ctx)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rm := range rooms {
		if _, ok := r.rooms[rm.ID]; ok {
			continue
		}
		r.rooms[rm.ID] = &roomState{room: rm, members: make(map[*Session]struct{})}
	}
	slog.Info("room registry loaded", "rooms", len(rooms))
	return nil
}

func (r *Registry) CreateRoom(ctx context.Context, name string, adminID int64) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyRoomName
	}

	// уникальность имени среди открытых комнат гарантирует хранилище
	room, err := r.store.CreateRoom(ctx, name, adminID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.rooms[room.ID] = &roomState{room: *room, members: make(map[*Session]struct{})}
	r.mu.Unlock()

	slog.Info("room created", "room", room.ID, "name", room.Name, "admin", adminID)
	return room, nil
}

func (r *Registry) get(id string) (*roomState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.rooms[id]
	return rs, ok
}

// Join атомарно (под локом комнаты) проверяет closed, грузит историю, добавляет
// сессию в членство и отправляет ей join_ok + реплей. Пока лок не отпущен, ни один
// Publish не проскочит между срезом истории и подпиской — реплей строго предшествует
// любому последующему сообщению.
func (r *Registry) Join(ctx context.Context, roomID string, s *Session, historyLimit int) (*domain.Room, error) {
	rs, ok := r.get(roomID)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.room.Closed {
		return nil, domain.ErrRoomClosed
	}

	history, err := r.store.ListMessages(ctx, roomID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if err := r.store.SetLastRoom(ctx, s.user.ID, &rs.room.ID); err != nil {
		return nil, fmt.Errorf("set last room: %w", err)
	}

	if !s.enterRoom(rs.room.ID) {
		return nil, ErrSessionClosed
	}
	rs.members[s] = struct{}{}

	room := rs.room
	s.sendJoined(&room, history)
	return &room, nil
}

// Leave убирает сессию из членства; идемпотентен. last_room не трогает (§4.1).
func (r *Registry) Leave(roomID string, s *Session) bool {
	rs, ok := r.get(roomID)
	if !ok {
		return false
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, in := rs.members[s]; !in {
		return false
	}
	delete(rs.members, s)
	s.exitRoom(roomID)
	return true
}

type RoomInfo struct {
	ID        string
	Name      string
	AdminID   int64
	Members   int
	CreatedAt time.Time
}

// Snapshot — active (непустое членство) и existing (не закрытые), обе
// отсортированы по (created_at, id). Консистентность нужна по каждой комнате,
// не глобально (§5): лок берётся по очереди.
func (r *Registry) Snapshot() (active, existing []RoomInfo) {
	r.mu.RLock()
	states := make([]*roomState, 0, len(r.rooms))
	for _, rs := range r.rooms {
		states = append(states, rs)
	}
	r.mu.RUnlock()

	for _, rs := range states {
		rs.mu.Lock()
		if !rs.room.Closed {
			info := RoomInfo{
				ID:        rs.room.ID,
				Name:      rs.room.Name,
				AdminID:   rs.room.AdminID,
				Members:   len(rs.members),
				CreatedAt: rs.room.CreatedAt,
			}
			existing = append(existing, info)
			if info.Members > 0 {
				active = append(active, info)
			}
		}
		rs.mu.Unlock()
	}

	byCreation := func(list []RoomInfo) func(i, j int) bool {
		return func(i, j int) bool {
			if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].CreatedAt.Before(list[j].CreatedAt)
			}
			return list[i].ID < list[j].ID
		}
	}
	sort.Slice(active, byCreation(active))
	sort.Slice(existing, byCreation(existing))
	return active, existing
}
