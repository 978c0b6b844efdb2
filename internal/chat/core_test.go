package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cwrk-planet/chat-service/internal/chat"
	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/store/memory"
)

func TestCreateRoom_DuplicateName(t *testing.T) {
	core := newCore(t)
	alice, _ := connect(t, core, "alice")
	bob, _ := connect(t, core, "bob")

	if _, err := core.CreateRoom(context.Background(), alice.User().ID, "general"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := core.CreateRoom(context.Background(), bob.User().ID, "general")
	if !errors.Is(err, domain.ErrDuplicateRoomName) {
		t.Fatalf("expected ErrDuplicateRoomName, got %v", err)
	}

	// комната alice не тронута
	_, existing := core.LobbySnapshot()
	if len(existing) != 1 || existing[0].Name != "general" || existing[0].AdminID != alice.User().ID {
		t.Fatalf("existing rooms corrupted: %+v", existing)
	}
}

func TestCreateRoom_NameFreedAfterClose(t *testing.T) {
	core := newCore(t)
	alice, _ := connect(t, core, "alice")

	createAndJoin(t, core, alice, "general")
	if err := alice.CloseRoom(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := core.CreateRoom(context.Background(), alice.User().ID, "general"); err != nil {
		t.Fatalf("name should be reusable after close: %v", err)
	}
}

// Сценарий из одного прогона: alice создаёт general, bob входит с пустой
// историей, оба получают "hi", alice закрывает — bob эвикнут, комната и
// история исчезают.
func TestScenario_CreateJoinChatClose(t *testing.T) {
	ctx := context.Background()
	core := newCore(t)

	alice, aliceConn := connect(t, core, "alice")
	room := createAndJoin(t, core, alice, "general")

	joined := aliceConn.byType(chat.TypeJoined)
	if len(joined) != 1 {
		t.Fatalf("alice join_ok events: %d", len(joined))
	}
	if p := joined[0].Payload.(chat.JoinedPayload); !p.IsAdmin {
		t.Fatalf("creator must be admin: %+v", p)
	}

	bob, bobConn := connect(t, core, "bob")
	if err := bob.Join(ctx, room.ID); err != nil {
		t.Fatalf("bob join: %v", err)
	}
	replays := bobConn.byType(chat.TypeHistory)
	if len(replays) != 1 {
		t.Fatalf("bob history events: %d", len(replays))
	}
	if msgs := replays[0].Payload.(chat.HistoryPayload).Messages; len(msgs) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(msgs))
	}

	if err := alice.SendMessage(ctx, "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	for _, tc := range []struct {
		name string
		conn *fakeConn
	}{{"alice", aliceConn}, {"bob", bobConn}} {
		chats := tc.conn.byType(chat.TypeChat)
		if len(chats) != 1 {
			t.Fatalf("%s chat events: %d", tc.name, len(chats))
		}
		p := chats[0].Payload.(chat.ChatPayload)
		if p.Sender != "alice" || p.Text != "hi" {
			t.Fatalf("%s got %+v", tc.name, p)
		}
	}

	if err := alice.CloseRoom(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if bobConn.count(chat.TypeRoomClosed) != 1 {
		t.Fatalf("bob must get exactly one room_closed notice")
	}
	if bob.State() != chat.StateLobby {
		t.Fatalf("bob state after close: %v", bob.State())
	}
	if bob.User().LastRoomID != nil {
		t.Fatalf("bob last_room must be cleared by close")
	}

	active, existing := core.LobbySnapshot()
	if len(active) != 0 || len(existing) != 0 {
		t.Fatalf("closed room still visible: active=%d existing=%d", len(active), len(existing))
	}

	// история вычищена: новая комната с тем же именем стартует пустой
	room2 := createAndJoin(t, core, alice, "general")
	if room2.ID == room.ID {
		t.Fatalf("closed room id reused")
	}
}

func TestAutoRejoin(t *testing.T) {
	ctx := context.Background()
	core := newCore(t)

	alice, _ := connect(t, core, "alice")
	room := createAndJoin(t, core, alice, "general")
	if err := alice.SendMessage(ctx, "first"); err != nil {
		t.Fatalf("send: %v", err)
	}

	// обрыв без leave: last_room сохраняется
	alice.Disconnect()
	if alice.State() != chat.StateDisconnected {
		t.Fatalf("state after disconnect: %v", alice.State())
	}

	alice2, conn2 := connect(t, core, "alice")
	if alice2.State() != chat.StateInRoom || alice2.Room() != room.ID {
		t.Fatalf("expected auto-rejoin into %s, state=%v room=%q", room.ID, alice2.State(), alice2.Room())
	}
	replays := conn2.byType(chat.TypeHistory)
	if len(replays) != 1 {
		t.Fatalf("history events: %d", len(replays))
	}
	msgs := replays[0].Payload.(chat.HistoryPayload).Messages
	if len(msgs) != 1 || msgs[0].Text != "first" {
		t.Fatalf("replayed history wrong: %+v", msgs)
	}
	// лобби-снапшот при auto-rejoin не приходит: лобби пропущено
	if conn2.count(chat.TypeLobby) != 0 {
		t.Fatalf("auto-rejoin must bypass the lobby")
	}

	// ровно одна запись членства
	active, _ := core.LobbySnapshot()
	if len(active) != 1 || active[0].Members != 1 {
		t.Fatalf("duplicate membership after rejoin: %+v", active)
	}
}

func TestConnect_LastRoomClosed(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	core := chat.New(st, chat.Options{})
	if err := core.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	alice, _ := connect(t, core, "alice")
	room := createAndJoin(t, core, alice, "general")
	if err := alice.CloseRoom(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	alice.Disconnect()

	// протухший указатель: close его чистит, имитируем рассинхрон вручную
	if err := st.SetLastRoom(ctx, alice.User().ID, &room.ID); err != nil {
		t.Fatalf("set last room: %v", err)
	}

	alice2, conn2 := connect(t, core, "alice")
	if alice2.State() != chat.StateLobby {
		t.Fatalf("expected lobby after stale last_room, got %v", alice2.State())
	}
	if conn2.count(chat.TypeLastRoomClosed) != 1 {
		t.Fatalf("expected last_room_closed notice")
	}
	if alice2.User().LastRoomID != nil {
		t.Fatalf("stale last_room must be cleared")
	}
}

func TestConnect_EmptyUsername(t *testing.T) {
	core := newCore(t)
	_, err := core.Connect(context.Background(), "   ", &fakeConn{})
	if !errors.Is(err, chat.ErrEmptyUsername) {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}
}
