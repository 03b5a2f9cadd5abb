package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	"github.com/printwatch/printwatch/internal/pwatchd/status"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Buffered updates per client before it is dropped
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Dashboards are served from arbitrary LAN hosts
		return true
	},
}

// connection is a middleman between one websocket client and the hub
type connection struct {
	ws     *websocket.Conn
	send   chan []byte
	hub    *Hub
	logger *slog.Logger
}

func (c *connection) cleanup() {
	// The hub may already have shut down and closed our send channel;
	// don't block on a receiver that is gone
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}

	if err := c.ws.Close(); err != nil {
		c.logger.Debug("error closing websocket connection", "error", err)
	}
}

// readPump drains the client. Clients only send PING control
// messages; anything else is logged and ignored.
func (c *connection) readPump() {
	defer c.cleanup()

	c.ws.SetReadLimit(maxMessageSize)
	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			break
		}

		var msg v1alpha1.ControlMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Error("invalid control message", "error", err)
			continue
		}
		if msg.Type != v1alpha1.ControlMessagePing {
			c.logger.Error("unexpected message type", "type", msg.Type)
		}
	}
}

func (c *connection) write(mt int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(mt, payload)
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.ws.Close(); err != nil {
			c.logger.Debug("error closing websocket connection in writePump", "error", err)
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				if err := c.write(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to write close message", "error", err)
				}
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.logger.Debug("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, []byte{}); err != nil {
				c.logger.Debug("failed to write ping", "error", err)
				return
			}
		}
	}
}

// Hub broadcasts telemetry updates from the status store to every
// connected dashboard client
type Hub struct {
	store       *status.Store
	connections map[*connection]bool
	register    chan *connection
	unregister  chan *connection
	done        chan struct{}
	logger      *slog.Logger
}

func newHub(store *status.Store, logger *slog.Logger) *Hub {
	return &Hub{
		store:       store,
		connections: make(map[*connection]bool),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	updates, cancel := h.store.Subscribe(sendBuffer)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			for c := range h.connections {
				close(c.send)
				delete(h.connections, c)
			}
			return
		case c := <-h.register:
			h.connections[c] = true
			h.logger.Info("status client connected", "connections", len(h.connections))
		case c := <-h.unregister:
			if _, ok := h.connections[c]; ok {
				delete(h.connections, c)
				close(c.send)
				h.logger.Info("status client disconnected", "connections", len(h.connections))
			}
		case update := <-updates:
			message, err := json.Marshal(&v1alpha1.ControlMessage{
				TypeMeta: v1alpha1.TypeMeta{
					Kind:       "ControlMessage",
					APIVersion: "v1alpha1",
				},
				Type:      v1alpha1.ControlMessageStatus,
				PrinterID: update.PrinterID,
				Telemetry: &update.Snapshot,
				Timestamp: time.Now(),
			})
			if err != nil {
				h.logger.Error("failed to marshal status update", "error", err)
				continue
			}

			for c := range h.connections {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.connections, c)
				}
			}
		}
	}
}

// ServeWs upgrades a dashboard client onto the status stream
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &connection{
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		hub:    h.hub,
		logger: h.logger,
	}

	c.hub.register <- c

	go c.writePump()
	c.readPump()
}
