package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/solvyn/widgetcore/internal/logging"
)

// ErrChannelClosed is returned by Emit after Close.
var ErrChannelClosed = errors.New("stream: channel closed")

// WSChannel is a Channel over a single WebSocket connection. Each frame is
// one Event encoded as JSON.
type WSChannel struct {
	endpoint string
	conn     *websocket.Conn
	handler  func(Event)

	mu     sync.Mutex
	closed bool
	log    *logging.Logger
}

// NewWSChannel builds a channel for the realtime endpoint. The tenant code
// and originating page URL ride in the query string so the backend can
// attribute the connection.
func NewWSChannel(socketURL, tenantCode, pageURL string, log *logging.Logger) (*WSChannel, error) {
	u, err := url.Parse(socketURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	}
	q := u.Query()
	q.Set("chatbotCode", tenantCode)
	q.Set("currentWebsiteURL", pageURL)
	u.RawQuery = q.Encode()

	return &WSChannel{
		endpoint: u.String(),
		log:      log.Sub("ws"),
	}, nil
}

// Handle registers the inbound event handler. Must precede Connect.
func (c *WSChannel) Handle(fn func(Event)) {
	c.handler = fn
}

// Connect dials the endpoint and starts the read pump.
func (c *WSChannel) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.log.Info().Str("endpoint", c.endpoint).Msg("connected")
	go c.readPump()
	return nil
}

func (c *WSChannel) readPump() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.log.Warn().Err(err).Msg("read failed, channel down")
			}
			return
		}
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.log.Warn().Err(err).Msg("malformed frame dropped")
			continue
		}
		if c.handler != nil {
			c.handler(ev)
		}
	}
}

// Emit sends a named event with a JSON payload. Thread-safe.
func (c *WSChannel) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		return ErrChannelClosed
	}
	return c.conn.WriteJSON(Event{Name: event, Data: data})
}

// Close tears down the connection.
func (c *WSChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
