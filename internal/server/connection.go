package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/airhockey/internal/game"
	"github.com/lox/airhockey/internal/runner"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outgoing queue; a host that falls this far behind is dropped
	sendBufferSize = 64

	// Pointer coordinates may overshoot the court by this many court
	// lengths before they are rejected
	pointerSlack = 1.0
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// Connection represents a WebSocket connection to one presentation host
type Connection struct {
	id        int64
	conn      *websocket.Conn
	runner    *runner.Runner
	court     game.CourtState
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu       sync.Mutex
	pointers map[game.PointerID]bool
}

// NewConnection creates a new connection wrapper
func NewConnection(id int64, conn *websocket.Conn, r *runner.Runner, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:       id,
		conn:     conn,
		runner:   r,
		court:    r.Snapshot().Court,
		send:     make(chan *Message, sendBufferSize),
		logger:   logger.WithPrefix("conn").With("conn", id),
		ctx:      ctx,
		cancel:   cancel,
		pointers: make(map[game.PointerID]bool),
	}
}

func (c *Connection) ID() int64 { return c.id }

// Done is closed when the connection shuts down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection and lets go of every paddle this host held
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.releasePointers()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the host
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		// Close releases pointers through the runner, which may be mid-frame
		// and holding its lock when this is called from an event subscriber.
		go func() { _ = c.Close() }()
		return ErrConnectionClosed
	}
}

// pointerID maps a host pointer id into a per-connection namespace so two
// hosts using the same touch ids cannot take each other's paddles.
func (c *Connection) pointerID(id int64) game.PointerID {
	return game.PointerID(c.id<<32 | (id & 0xffffffff))
}

func (c *Connection) releasePointers() {
	c.mu.Lock()
	ids := make([]game.PointerID, 0, len(c.pointers))
	for id := range c.pointers {
		ids = append(ids, id)
	}
	c.pointers = make(map[game.PointerID]bool)
	c.mu.Unlock()

	for _, id := range ids {
		c.runner.PointerUp(id)
	}
}

// readPump handles incoming messages from the host
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the host
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage applies one host message to the match
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypePointerDown, MessageTypePointerMove, MessageTypePointerUp:
		var data PointerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse pointer data")
			return
		}
		c.handlePointer(msg.Type, data)

	case MessageTypeReset:
		c.runner.ResetRound()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handlePointer(kind MessageType, data PointerData) {
	if kind != MessageTypePointerUp {
		if err := c.checkPoint(data.X, data.Y); err != nil {
			c.sendError("invalid_coordinates", err.Error())
			return
		}
	}
	id := c.pointerID(data.ID)

	switch kind {
	case MessageTypePointerDown:
		c.mu.Lock()
		c.pointers[id] = true
		c.mu.Unlock()
		c.runner.PointerDown(id, data.X, data.Y)
	case MessageTypePointerMove:
		c.runner.PointerMove(id, data.X, data.Y)
	case MessageTypePointerUp:
		c.mu.Lock()
		delete(c.pointers, id)
		c.mu.Unlock()
		c.runner.PointerUp(id)
	}
}

// checkPoint rejects coordinates that are not finite or lie far outside the
// court. Points a little outside are accepted and clamped by the match.
func (c *Connection) checkPoint(x, y float64) error {
	for _, v := range []float64{x, y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("coordinate %g is not finite", v)
		}
	}
	w, h := c.court.Width, c.court.Height
	if x < -pointerSlack*w || x > (1+pointerSlack)*w || y < -pointerSlack*h || y > (1+pointerSlack)*h {
		return fmt.Errorf("point (%g, %g) is outside the %gx%g court", x, y, w, h)
	}
	return nil
}

// sendError sends an error message to the host
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}
