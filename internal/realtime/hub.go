package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/openclub/bulletin/internal/presence"
	"github.com/openclub/bulletin/pkg/logger"
	"github.com/openclub/bulletin/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 8
)

// Frame is the wire format of server->client events:
// {"event":"update","data":<document>} and {"event":"onlineUsers","data":[...]}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// clientEvent is the client->server format; only register is understood.
type clientEvent struct {
	Event string `json:"event"`
	Name  string `json:"name"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	name string // set after register
}

// Hub owns the websocket clients: it subscribes to the broadcaster's bus and
// fans every event out to all of them, best-effort. A slow client's buffer
// overflowing means that client misses the event; a failed write closes that
// client and nothing else.
type Hub struct {
	broadcaster *Broadcaster
	presence    *presence.Tracker
	upgrader    websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(b *Broadcaster, tr *presence.Tracker) *Hub {
	return &Hub{
		broadcaster: b,
		presence:    tr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// same-origin policy is left to the reverse proxy, as the
			// previous deployment did with socket.io
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Run consumes the bus until ctx is cancelled. Call once, in a goroutine.
func (h *Hub) Run(ctx context.Context) error {
	updates, err := h.broadcaster.Subscribe(ctx, TopicBoardUpdated)
	if err != nil {
		return err
	}
	rosters, err := h.broadcaster.Subscribe(ctx, TopicPresenceUpdated)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-updates:
			if !ok {
				return nil
			}
			h.fanout("update", msg.Payload)
			msg.Ack()
		case msg, ok := <-rosters:
			if !ok {
				return nil
			}
			h.fanout("onlineUsers", msg.Payload)
			msg.Ack()
		}
	}
}

func (h *Hub) fanout(event string, data []byte) {
	frame, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		logger.Warnf("frame encode: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			// buffer full: at-most-once, the client misses this event
		}
	}
}

// HandleWS upgrades the request and runs the connection until it closes.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("ws upgrade: %v", err)
		return
	}
	// the server's read timeout must not apply to the long-lived socket
	conn.SetReadDeadline(time.Time{})
	cl := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	metrics.ConnectedClients.Inc()

	go h.writePump(cl)

	// fresh connections immediately get the whole current state
	h.sendSnapshot(cl)

	h.readPump(cl)
}

func (h *Hub) sendSnapshot(cl *client) {
	doc, err := h.broadcaster.store.Read(context.Background())
	if err != nil {
		logger.Warnf("snapshot read: %v", err)
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return
	}
	frame, err := json.Marshal(Frame{Event: "update", Data: data})
	if err != nil {
		return
	}
	select {
	case cl.send <- frame:
	default:
	}
}

func (h *Hub) readPump(cl *client) {
	defer h.drop(cl)
	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev clientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		if ev.Event == "register" && ev.Name != "" {
			if cl.name != "" && cl.name != ev.Name {
				// re-register under a new name counts as a reconnect
				h.presence.Disconnect(cl.name)
			}
			cl.name = ev.Name
			h.presence.Register(ev.Name)
			h.broadcaster.NotifyPresence()
		}
	}
}

func (h *Hub) writePump(cl *client) {
	for frame := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			cl.conn.Close()
			return
		}
	}
	cl.conn.Close()
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	_, present := h.clients[cl]
	delete(h.clients, cl)
	h.mu.Unlock()
	if !present {
		return
	}
	close(cl.send)
	metrics.ConnectedClients.Dec()
	if cl.name != "" {
		h.presence.Disconnect(cl.name)
		h.broadcaster.NotifyPresence()
	}
}
