package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/parksim/core"
	"github.com/lixenwraith/parksim/engine"
)

const (
	sendQueueSize = 64
	writeTimeout  = 5 * time.Second
)

// Message types on the stream
const (
	MsgState    = "state"    // Sent once on connect
	MsgSnapshot = "snapshot" // Sent after every tick or state change
)

// Envelope wraps every stream message
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

var _ engine.Sink = (*Hub)(nil)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to WebSocket clients and implements engine.Sink
type Hub struct {
	log *logrus.Entry

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	stopChan chan struct{}
	stopOnce sync.Once
	count    atomic.Int64
	dropped  atomic.Int64
}

// NewHub creates a hub; call Run to start dispatching
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		stopChan:   make(chan struct{}),
	}
}

// Run dispatches until Stop
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			h.log.WithField("client", c.id).Debug("ws client connected")
		case c := <-h.unregister:
			h.drop(c)
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer
					h.drop(c)
				}
			}
		case <-h.stopChan:
			for c := range h.clients {
				h.drop(c)
			}
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
		h.count.Add(-1)
		h.log.WithField("client", c.id).Debug("ws client removed")
	}
}

// Stop disconnects every client and ends Run
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish implements engine.Sink; never blocks the scheduler
func (h *Hub) Publish(snap engine.Snapshot) {
	msg, err := encode(MsgSnapshot, snap)
	if err != nil {
		h.log.WithError(err).Error("encode snapshot")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
	}
}

func encode(kind string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: kind, Data: data})
}

// serve registers conn and pumps messages until either side closes
func (h *Hub) serve(conn *websocket.Conn, initial []byte) {
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendQueueSize)}
	c.send <- initial
	select {
	case h.register <- c:
	case <-h.stopChan:
		conn.Close()
		return
	}

	core.Go(func() { h.writer(c) })
	core.Go(func() { h.reader(c) })
}

func (h *Hub) writer(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// reader discards inbound frames and unregisters on disconnect
func (h *Hub) reader(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.stopChan:
		}
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
