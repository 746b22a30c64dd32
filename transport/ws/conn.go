// Package ws adapts the realtime core to websocket clients. Frames are
// JSON objects {"event": "<name>", "data": {...}} in both directions.
package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lynxchester/lynxchat/contract"
	"github.com/Lynxchester/lynxchat/domain/event"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Ensure *Conn can act as a presence sink at compile time.
var _ contract.EventSink = (*Conn)(nil)

// frame is the wire envelope shared by both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Conn wraps one websocket connection. Writes go through a buffered
// channel drained by writePump so that a slow client can never block an
// event dispatch; when the buffer is full the frame is dropped.
type Conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	log  *slog.Logger
}

func newConn(id string, ws *websocket.Conn, sendBufferSize int, log *slog.Logger) *Conn {
	return &Conn{
		id:   id,
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
		log:  log,
	}
}

func (c *Conn) ID() string { return c.id }

// Consume implements contract.EventSink: it envelopes the domain event
// and enqueues it for delivery. Marshaling happens here, not in the
// write pump, so the event payload is serialized at dispatch time.
func (c *Conn) Consume(e event.DomainEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		c.log.Error("event marshal failed", "event", e.EventName(), "error", err)
		return
	}
	out, err := json.Marshal(frame{Event: e.EventName(), Data: data})
	if err != nil {
		c.log.Error("frame marshal failed", "event", e.EventName(), "error", err)
		return
	}

	select {
	case c.send <- out:
	default:
		c.log.Debug("send buffer full, dropping frame", "connId", c.id, "event", e.EventName())
	}
}

// readPump delivers inbound frames to the dispatcher until the
// connection dies, then triggers the full disconnect teardown. Running
// it on a single goroutine guarantees per-connection event ordering.
func (c *Conn) readPump(h *Handler) {
	// The send channel is never closed: a late Consume from another
	// connection's dispatch must not panic. writePump exits on its next
	// failed write once the socket is closed.
	defer func() {
		h.coordinator.Disconnect(c.id)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error("read error", "connId", c.id, "error", err)
			}
			return
		}
		h.dispatch(c.id, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
