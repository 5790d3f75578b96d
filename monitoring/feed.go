// Package monitoring broadcasts prediction events to websocket
// subscribers.
package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Event is a single feed message.
type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed fans prediction events out to connected websocket clients. Slow
// clients are dropped rather than allowed to block the broadcast loop.
type Feed struct {
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	stop       chan struct{}
	upgrader   websocket.Upgrader
	log        *zap.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

func NewFeed(log *zap.Logger) *Feed {
	return &Feed{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		stop:       make(chan struct{}),
		clients:    make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Run owns the client set; call it in its own goroutine.
func (f *Feed) Run() {
	for {
		select {
		case c := <-f.register:
			f.mu.Lock()
			f.clients[c] = true
			total := len(f.clients)
			f.mu.Unlock()
			f.log.Debug("feed client connected", zap.Int("total", total))

		case c := <-f.unregister:
			f.mu.Lock()
			if _, ok := f.clients[c]; ok {
				delete(f.clients, c)
				close(c.send)
			}
			total := len(f.clients)
			f.mu.Unlock()
			f.log.Debug("feed client disconnected", zap.Int("total", total))

		case message := <-f.broadcast:
			f.mu.RLock()
			for c := range f.clients {
				select {
				case c.send <- message:
				default:
					// Drop the slow client; its write pump exits
					// when send is closed by unregister.
					go func(c *client) { f.unregister <- c }(c)
				}
			}
			f.mu.RUnlock()

		case <-f.stop:
			f.mu.Lock()
			for c := range f.clients {
				close(c.send)
				delete(f.clients, c)
			}
			f.mu.Unlock()
			return
		}
	}
}

func (f *Feed) Close() {
	close(f.stop)
}

// Publish queues an event for all subscribers; it never blocks.
func (f *Feed) Publish(eventType string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		f.log.Warn("failed to encode feed event", zap.Error(err))
		return
	}
	message, err := json.Marshal(Event{Type: eventType, Timestamp: time.Now().UTC(), Data: raw})
	if err != nil {
		return
	}
	select {
	case f.broadcast <- message:
	default:
		f.log.Warn("feed broadcast buffer full, dropping event")
	}
}

// ServeWS upgrades the request and attaches the client to the feed.
func (f *Feed) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 64)}
	f.register <- c

	go f.writePump(c)
	go f.readPump(c)
}

func (f *Feed) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *Feed) readPump(c *client) {
	defer func() {
		f.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		// The feed is one-way; drain until the client goes away.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
