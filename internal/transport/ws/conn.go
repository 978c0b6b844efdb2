package ws

import (
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/chat"

	"github.com/gorilla/websocket"
)

// wsConn реализует chat.Conn поверх gorilla. sendMu — слот на одну
// конкурентную запись: у gorilla writer не потокобезопасен.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	sendMu       chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func newWsConn(c *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{
		conn:         c,
		writeTimeout: writeTimeout,
		sendMu:       make(chan struct{}, 1),
		closed:       make(chan struct{}),
	}
}

func (c *wsConn) Send(ev chat.Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	return c.conn.WriteJSON(ev)
}

// Close идемпотентен: канал могут закрывать и read loop, и ядро при отказе доставки.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.conn.Close()
}
