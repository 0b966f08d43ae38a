package ws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"mypetsvoice/backend/internal/session"
	"mypetsvoice/backend/pkg/config"
	"mypetsvoice/backend/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; chat frames are small
	maxMessageSize = 4 * 1024
)

// Event is the wire envelope in both directions
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client is one websocket connection. The read loop handles control events
// inline; reply generation runs on the hub's pool and completions come back
// on the results channel, so the connection stays responsive while the
// model is thinking.
type Client struct {
	SessionID string
	conn      *websocket.Conn
	send      chan []byte
	results   chan Result
	hub       *Hub
	ctx       context.Context
	cancel    context.CancelFunc
	log       *logger.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		SessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, 64),
		results:   make(chan Result, 8),
		hub:       hub,
		ctx:       ctx,
		cancel:    cancel,
		log:       hub.log.WithSessionID(sessionID),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("unexpected close", "error", err)
			}
			break
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			c.sendError("Malformed event.")
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event Event) {
	switch event.Event {
	case "send_message":
		c.handleSendMessage(event.Data)
	case "reset_chat":
		c.handleResetChat()
	case "ping":
		c.sendEvent("pong", nil)
	default:
		c.log.Debug("unknown event", "event", event.Event)
	}
}

func (c *Client) handleSendMessage(data json.RawMessage) {
	var payload struct {
		Message string `json:"message"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			c.sendError("Malformed event.")
			return
		}
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		c.sendError("Message is empty.")
		return
	}

	profile, err := c.hub.store.Persona(c.ctx, c.SessionID)
	if err != nil {
		c.sendError("No pet persona found. Create one first.")
		return
	}

	// Echo the user message before generation starts
	c.sendEvent("user_message", map[string]interface{}{
		"message":   message,
		"timestamp": time.Now().Unix(),
	})

	seq, err := c.hub.store.AppendUserTurn(c.ctx, c.SessionID, message)
	if err != nil {
		c.log.Error("failed to append turn", "error", err)
		c.sendError("Could not record your message.")
		return
	}

	c.sendEvent("bot_typing", map[string]string{"pet_name": profile.Name})

	history, err := c.hub.store.RecentTurns(c.ctx, c.SessionID, config.Get().Chat.RealtimeHistoryWindow)
	if err != nil {
		c.log.Error("failed to load history", "error", err)
		history = nil
	}

	job := Job{
		Ctx:         c.ctx,
		SessionID:   c.SessionID,
		Seq:         seq,
		Profile:     profile,
		History:     session.PromptTurns(history),
		UserMessage: message,
		Results:     c.results,
	}
	if err := c.hub.pool.Submit(job); err != nil {
		c.log.Warn("generation queue full", "seq", seq)
		c.sendError("The server is busy right now. Please try again in a moment.")
	}
}

func (c *Client) handleResetChat() {
	if err := c.hub.store.Reset(c.ctx, c.SessionID); err != nil {
		c.sendError("No conversation to reset.")
		return
	}
	c.sendEvent("chat_reset", map[string]string{"message": "Conversation reset."})
}

// resultLoop pairs finished replies back to their turns and pushes them to
// the client
func (c *Client) resultLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case result := <-c.results:
			c.handleResult(result)
		}
	}
}

func (c *Client) handleResult(result Result) {
	if err := c.hub.store.CompleteTurn(c.ctx, c.SessionID, result.Seq, result.Reply); err != nil {
		// Reset or rebind raced the reply; the turn is gone, drop it
		c.log.Debug("reply has no open turn", "seq", result.Seq, "error", err)
		return
	}

	c.sendEvent("bot_response", map[string]interface{}{
		"message":   result.Reply,
		"pet_name":  result.PetName,
		"timestamp": time.Now().Unix(),
	})
	c.sendEvent("update_chat_history", map[string]string{
		"user": result.UserMessage,
		"bot":  result.Reply,
	})
}

func (c *Client) sendEvent(event string, data interface{}) {
	payload, err := json.Marshal(outEvent{Event: event, Data: data})
	if err != nil {
		c.log.Error("failed to marshal event", "event", event, "error", err)
		return
	}
	select {
	case c.send <- payload:
	case <-c.ctx.Done():
	}
}

func (c *Client) sendError(message string) {
	c.sendEvent("error", map[string]string{"message": message})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Flush anything already queued as separate frames
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
