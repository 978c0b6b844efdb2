package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cwrk-planet/chat-service/internal/chat"
	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Закрытие атомарно относительно конкурентного join: либо join успел и сессия
// эвикнута ровно с одним room_closed, либо join отбит ErrRoomClosed — без уведомления.
func TestCloseRoom_JoinRaceAtomic(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 40; i++ {
		core := newCore(t)
		alice, _ := connect(t, core, "alice")
		room := createAndJoin(t, core, alice, "general")
		bob, bobConn := connect(t, core, "bob")

		joinDone := make(chan error, 1)
		go func() { joinDone <- bob.Join(ctx, room.ID) }()

		if err := alice.CloseRoom(ctx); err != nil {
			t.Fatalf("close: %v", err)
		}
		joinErr := <-joinDone

		notices := bobConn.count(chat.TypeRoomClosed)
		switch {
		case joinErr == nil:
			if notices != 1 {
				t.Fatalf("iter %d: joined then closed, notices=%d", i, notices)
			}
			if bob.State() != chat.StateLobby {
				t.Fatalf("iter %d: evicted session state=%v", i, bob.State())
			}
		case errors.Is(joinErr, domain.ErrRoomClosed):
			if notices != 0 {
				t.Fatalf("iter %d: rejected join still got %d notices", i, notices)
			}
			if bob.State() != chat.StateLobby {
				t.Fatalf("iter %d: state=%v", i, bob.State())
			}
		default:
			t.Fatalf("iter %d: unexpected join error: %v", i, joinErr)
		}

		if bob.User().LastRoomID != nil {
			t.Fatalf("iter %d: last_room survived close", i)
		}
	}
}

func TestCloseRoom_EvictsAllMembers(t *testing.T) {
	ctx := context.Background()
	core := newCore(t)

	alice, aliceConn := connect(t, core, "alice")
	room := createAndJoin(t, core, alice, "general")

	members := make([]*chat.Session, 0, 3)
	conns := make([]*fakeConn, 0, 3)
	for _, name := range []string{"bob", "carol", "dave"} {
		s, c := connect(t, core, name)
		if err := s.Join(ctx, room.ID); err != nil {
			t.Fatalf("%s join: %v", name, err)
		}
		members = append(members, s)
		conns = append(conns, c)
	}

	if err := alice.CloseRoom(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	for i, s := range members {
		if s.State() != chat.StateLobby {
			t.Fatalf("member %d not evicted: %v", i, s.State())
		}
		if conns[i].count(chat.TypeRoomClosed) != 1 {
			t.Fatalf("member %d notices: %d", i, conns[i].count(chat.TypeRoomClosed))
		}
		// эвикнутые вернулись в лобби и получили снапшот
		if conns[i].count(chat.TypeLobby) == 0 {
			t.Fatalf("member %d got no lobby snapshot after eviction", i)
		}
	}
	if aliceConn.count(chat.TypeRoomClosed) != 1 {
		t.Fatalf("admin notices: %d", aliceConn.count(chat.TypeRoomClosed))
	}
}

func TestCloseRoom_BlocksNewMessages(t *testing.T) {
	ctx := context.Background()
	core := newCore(t)

	alice, _ := connect(t, core, "alice")
	createAndJoin(t, core, alice, "general")
	if err := alice.CloseRoom(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	// после эвикции сессия в лобби — публикация невозможна
	if err := alice.SendMessage(ctx, "hi"); !errors.Is(err, domain.ErrNotInRoom) {
		t.Fatalf("expected ErrNotInRoom, got %v", err)
	}
}
