package pumpportal

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// handshakeTimeout bounds the websocket upgrade.
	handshakeTimeout = 15 * time.Second

	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second
)

// Conn wraps a gorilla websocket connection with the small surface the feed
// manager needs.
type Conn struct {
	ws *websocket.Conn
}

// Dial opens a websocket connection to the given feed endpoint.
func Dial(ctx context.Context, url string) (*Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("pumpportal: dial %s: %w", url, err)
	}
	return &Conn{ws: ws}, nil
}

// ReadMessage blocks until the next message arrives or the connection fails.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, msg, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("pumpportal: read: %w", err)
	}
	return msg, nil
}

// WriteJSON sends v as a JSON text message.
func (c *Conn) WriteJSON(v any) error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(v); err != nil {
		return fmt.Errorf("pumpportal: write: %w", err)
	}
	return nil
}

// Close sends a close frame and tears down the connection.
func (c *Conn) Close() error {
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	return c.ws.Close()
}
