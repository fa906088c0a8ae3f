package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"tictactoe_server/internal/game"
	"tictactoe_server/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one websocket connection. The connection id is minted per
// connection; the participant id and profile come from the guest session
// token and survive reconnects.
type Client struct {
	ID            string
	ParticipantID string
	Profile       game.Profile

	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

func newClient(id string, identity game.Profile, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:            id,
		ParticipantID: identity.ID,
		Profile:       identity,
		conn:          conn,
		send:          make(chan []byte, sendBuffer),
		hub:           hub,
	}
}

// Run registers the client with the hub and pumps the connection until it
// drops. Blocks until the read side closes.
func (c *Client) Run() {
	go c.writePump()
	c.hub.register(c)
	c.readPump()
}

func (c *Client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "conn", c.ID, "err", err)
			}
			return
		}
		c.hub.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warn("ws write error", "conn", c.ID, "err", err)
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

// enqueue serializes and queues one outbound message. A client whose send
// buffer is full loses the message; the ping/pong deadlines will reap a
// consumer that stopped reading.
func (c *Client) enqueue(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("ws marshal failed", "type", msg.Type, "err", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("ws send buffer full, dropping message", "conn", c.ID, "type", msg.Type)
	}
}
