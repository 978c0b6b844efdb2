package chat_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cwrk-planet/chat-service/internal/chat"
	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/store/memory"
)

// fakeConn собирает события, которые ядро шлёт сессии.
type fakeConn struct {
	mu      sync.Mutex
	events  []chat.Event
	closed  bool
	failing bool
}

var errConnClosed = errors.New("conn closed")

func (c *fakeConn) Send(ev chat.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing || c.closed {
		return errConnClosed
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) byType(typ string) []chat.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []chat.Event
	for _, ev := range c.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (c *fakeConn) count(typ string) int { return len(c.byType(typ)) }

func newCore(t *testing.T) *chat.Core {
	t.Helper()
	core := chat.New(memory.New(), chat.Options{})
	if err := core.Load(context.Background()); err != nil {
		t.Fatalf("load core: %v", err)
	}
	return core
}

func connect(t *testing.T, core *chat.Core, username string) (*chat.Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s, err := core.Connect(context.Background(), username, conn)
	if err != nil {
		t.Fatalf("connect %s: %v", username, err)
	}
	return s, conn
}

func createAndJoin(t *testing.T, core *chat.Core, s *chat.Session, name string) *domain.Room {
	t.Helper()
	room, err := core.CreateRoom(context.Background(), s.User().ID, name)
	if err != nil {
		t.Fatalf("create room %s: %v", name, err)
	}
	if err := s.Join(context.Background(), room.ID); err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	return room
}
