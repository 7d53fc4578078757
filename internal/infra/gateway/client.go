package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/softclay/ana-bridge/internal/biz/domain"
	"github.com/softclay/ana-bridge/internal/biz/repo"
)

// Client manages the WebSocket connection to the gateway sidecar. The
// sidecar owns the WhatsApp wire protocol; this side only speaks JSON
// frames.
type Client struct {
	url    string
	conn   *websocket.Conn
	connMu sync.Mutex

	selfID   string
	selfIDMu sync.RWMutex

	// Callbacks, set before Connect
	onBatch  func([]*domain.InboundMessage)
	onUpdate func(ConnectionUpdate)
	onCreds  func(json.RawMessage)
}

// NewClient creates a gateway client for the given WebSocket URL
func NewClient(url string) *Client {
	return &Client{url: url}
}

// OnMessageBatch sets the inbound batch handler
func (c *Client) OnMessageBatch(fn func([]*domain.InboundMessage)) {
	c.onBatch = fn
}

// OnConnectionUpdate sets the lifecycle event handler
func (c *Client) OnConnectionUpdate(fn func(ConnectionUpdate)) {
	c.onUpdate = fn
}

// OnCredsUpdate sets the credential rotation handler
func (c *Client) OnCredsUpdate(fn func(json.RawMessage)) {
	c.onCreds = fn
}

// SelfID returns the bot's own participant ID, "" until connected
func (c *Client) SelfID() string {
	c.selfIDMu.RLock()
	defer c.selfIDMu.RUnlock()
	return c.selfID
}

// Connect dials the gateway and starts the read loop
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial gateway: %w", err)
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	c.connMu.Unlock()

	go c.readLoop(conn)
	return nil
}

// Close closes the gateway connection
func (c *Client) Close() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// readLoop dispatches frames until the socket dies. A dropped socket is
// reported upward as a transient close so the supervisor reconnects.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			c.connMu.Lock()
			stale := c.conn != conn // a newer connection replaced this one
			c.connMu.Unlock()
			if !stale && c.onUpdate != nil {
				c.onUpdate(ConnectionUpdate{Connection: "close", StatusCode: CodeConnectionLost})
			}
			return
		}

		switch frame.Type {
		case FrameConnectionUpdate:
			if frame.Connection == nil {
				continue
			}
			if frame.Connection.Me != "" {
				c.selfIDMu.Lock()
				c.selfID = frame.Connection.Me
				c.selfIDMu.Unlock()
			}
			if c.onUpdate != nil {
				c.onUpdate(*frame.Connection)
			}

		case FrameMessagesUpsert:
			if c.onBatch == nil || len(frame.Messages) == 0 {
				continue
			}
			batch := make([]*domain.InboundMessage, 0, len(frame.Messages))
			for i := range frame.Messages {
				batch = append(batch, frame.Messages[i].ToDomain())
			}
			c.onBatch(batch)

		case FrameCredsUpdate:
			if c.onCreds != nil {
				c.onCreds(frame.Creds)
			}
		}
	}
}

// SendText sends a text message through the gateway. Fire-and-forget:
// a nil error means the frame was written, not that it was delivered.
func (c *Client) SendText(ctx context.Context, chatID, text string, opts *repo.SendOptions) error {
	frame := &Frame{
		Type:     FrameSend,
		ClientID: uuid.NewString(),
		ChatID:   chatID,
		Text:     text,
	}
	if opts != nil {
		frame.QuotedID = opts.QuotedID
	}
	return c.writeFrame(frame)
}

// SendPresence updates the bot's presence in a chat
func (c *Client) SendPresence(ctx context.Context, chatID, state string) error {
	return c.writeFrame(&Frame{
		Type:   FramePresence,
		ChatID: chatID,
		State:  state,
	})
}

func (c *Client) writeFrame(frame *Frame) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("gateway not connected")
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
