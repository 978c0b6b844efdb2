package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

func TestCreateRoom_DuplicateOpenName(t *testing.T) {
	ctx := context.Background()
	s := New()

	r1, err := s.CreateRoom(ctx, "general", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateRoom(ctx, "general", 2); !errors.Is(err, domain.ErrDuplicateRoomName) {
		t.Fatalf("expected ErrDuplicateRoomName, got %v", err)
	}

	// закрытая комната имя освобождает
	if err := s.SetRoomClosed(ctx, r1.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	r2, err := s.CreateRoom(ctx, "general", 2)
	if err != nil {
		t.Fatalf("reuse after close: %v", err)
	}
	if r2.ID == r1.ID {
		t.Fatalf("room ids must be unique")
	}
}

func TestListOpenRooms_SkipsClosed(t *testing.T) {
	ctx := context.Background()
	s := New()

	open, _ := s.CreateRoom(ctx, "open", 1)
	closed, _ := s.CreateRoom(ctx, "closed", 1)
	if err := s.SetRoomClosed(ctx, closed.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	rooms, err := s.ListOpenRooms(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != open.ID {
		t.Fatalf("open rooms: %+v", rooms)
	}
}

func TestListMessages_Limit(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, _ := s.GetOrCreateUser(ctx, "alice")
	room, _ := s.CreateRoom(ctx, "general", u.ID)
	for i := 0; i < 5; i++ {
		if _, err := s.AppendMessage(ctx, room.ID, u.ID, fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, _ := s.ListMessages(ctx, room.ID, 0)
	if len(all) != 5 || all[0].Text != "m0" || all[4].Text != "m4" {
		t.Fatalf("full history: %+v", all)
	}

	// limit отдаёт хвост, порядок восходящий
	tail, _ := s.ListMessages(ctx, room.ID, 3)
	if len(tail) != 3 || tail[0].Text != "m2" || tail[2].Text != "m4" {
		t.Fatalf("tail: %+v", tail)
	}
	if tail[0].Sender != "alice" {
		t.Fatalf("sender not denormalized: %+v", tail[0])
	}
}

func TestDeleteMessages(t *testing.T) {
	ctx := context.Background()
	s := New()

	u, _ := s.GetOrCreateUser(ctx, "alice")
	room, _ := s.CreateRoom(ctx, "general", u.ID)
	if _, err := s.AppendMessage(ctx, room.ID, u.ID, "hi"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.DeleteMessages(ctx, room.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	msgs, _ := s.ListMessages(ctx, room.ID, 0)
	if len(msgs) != 0 {
		t.Fatalf("history not purged: %+v", msgs)
	}
}

func TestLastRoom_SetAndBulkClear(t *testing.T) {
	ctx := context.Background()
	s := New()

	alice, _ := s.GetOrCreateUser(ctx, "alice")
	bob, _ := s.GetOrCreateUser(ctx, "bob")
	room, _ := s.CreateRoom(ctx, "general", alice.ID)
	other, _ := s.CreateRoom(ctx, "other", bob.ID)

	if err := s.SetLastRoom(ctx, alice.ID, &room.ID); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetLastRoom(ctx, bob.ID, &other.ID); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, _ := s.GetOrCreateUser(ctx, "alice")
	if got.LastRoomID == nil || *got.LastRoomID != room.ID {
		t.Fatalf("last room not persisted: %+v", got)
	}

	// bulk clear задевает только указатели на закрываемую комнату
	if err := s.ClearLastRoom(ctx, room.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = s.GetOrCreateUser(ctx, "alice")
	if got.LastRoomID != nil {
		t.Fatalf("alice pointer survived clear")
	}
	gotBob, _ := s.GetOrCreateUser(ctx, "bob")
	if gotBob.LastRoomID == nil || *gotBob.LastRoomID != other.ID {
		t.Fatalf("bob pointer lost: %+v", gotBob)
	}
}

func TestGetOrCreateUser_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	u1, _ := s.GetOrCreateUser(ctx, "alice")
	u2, _ := s.GetOrCreateUser(ctx, "alice")
	if u1.ID != u2.ID {
		t.Fatalf("same username got different ids: %d vs %d", u1.ID, u2.ID)
	}

	// возвращается копия: мутации снаружи хранилище не трогают
	id := "junk"
	u2.LastRoomID = &id
	u3, _ := s.GetOrCreateUser(ctx, "alice")
	if u3.LastRoomID != nil {
		t.Fatalf("store leaked internal state")
	}
}

func TestGetRoom_NotFound(t *testing.T) {
	s := New()
	if _, err := s.GetRoom(context.Background(), "nope"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}
