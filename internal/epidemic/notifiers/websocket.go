package notifiers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/daniacca/epidyn/internal/epidemic"
	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 64
	writeWait    = 10 * time.Second
)

// wsClient pairs a connection with its outgoing queue. Only the client's
// writer goroutine writes to conn.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketNotifier broadcasts step events to every connected viewer.
// A viewer that falls a full buffer behind is disconnected.
type WebSocketNotifier struct {
	id       string
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]*wsClient
	closed  bool
	writers sync.WaitGroup
}

func NewWebSocketNotifier(id string) *WebSocketNotifier {
	return &WebSocketNotifier{
		id:      id,
		clients: make(map[*websocket.Conn]*wsClient),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// viewers are usually served from another origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (wsn *WebSocketNotifier) ID() string {
	return wsn.id
}

func (wsn *WebSocketNotifier) Type() string {
	return "websocket"
}

// RegisterClient starts streaming to conn. After Close the connection is
// closed right away.
func (wsn *WebSocketNotifier) RegisterClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	if wsn.closed {
		conn.Close()
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, clientBuffer)}
	wsn.clients[conn] = c
	wsn.writers.Add(1)
	go wsn.writeLoop(c)
}

// UnregisterClient stops streaming to conn and closes it.
func (wsn *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	wsn.dropLocked(conn)
}

func (wsn *WebSocketNotifier) dropLocked(conn *websocket.Conn) {
	if c, ok := wsn.clients[conn]; ok {
		delete(wsn.clients, conn)
		close(c.send)
	}
}

// ClientCount returns the number of connected clients.
func (wsn *WebSocketNotifier) ClientCount() int {
	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	return len(wsn.clients)
}

// Handler upgrades requests to WebSocket connections and keeps them
// registered until the client goes away. Clients only receive.
func (wsn *WebSocketNotifier) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsn.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response
			return
		}
		wsn.RegisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wsn.UnregisterClient(conn)
				return
			}
		}
	})
}

// Notify queues the encoded event on every client without blocking.
func (wsn *WebSocketNotifier) Notify(ctx context.Context, event epidemic.StepEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := event.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	if wsn.closed {
		return fmt.Errorf("notifier %s is closed", wsn.id)
	}
	for conn, c := range wsn.clients {
		select {
		case c.send <- data:
		default:
			wsn.dropLocked(conn)
		}
	}
	return nil
}

func (wsn *WebSocketNotifier) writeLoop(c *wsClient) {
	defer wsn.writers.Done()
	failed := false
	for data := range c.send {
		if failed {
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = true
			wsn.UnregisterClient(c.conn)
		}
	}
	if !failed {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
	c.conn.Close()
}

// Close disconnects every client and waits for their writers to finish.
// It is safe to call more than once.
func (wsn *WebSocketNotifier) Close() error {
	wsn.mu.Lock()
	if wsn.closed {
		wsn.mu.Unlock()
		return nil
	}
	wsn.closed = true
	for conn := range wsn.clients {
		wsn.dropLocked(conn)
	}
	wsn.mu.Unlock()

	wsn.writers.Wait()
	return nil
}
