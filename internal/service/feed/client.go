package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	drepo "SigTrail/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements an AlertStream backed by the alert gateway's WebSocket
// feed.
type Client struct {
	apiKey         string
	websocketURL   string
	botIDs         []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new gateway AlertStream.
func New(apiKey, websocketURL string, botIDs []string, reconnectDelay, pingInterval time.Duration) drepo.AlertStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		botIDs:         botIDs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("feed: connected")
	return nil
}

// Subscribe subscribes to alert streams for the configured bots.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("feed not connected")
	}
	for _, id := range c.botIDs {
		msg := map[string]string{"type": "subscribe", "bot_id": id}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", id, err)
		}
		log.Printf("feed: subscribed %s", id)
	}
	return nil
}

type feedFrame struct {
	Type string            `json:"type"`
	Data []json.RawMessage `json:"data"`
}

// Read streams alert events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *drepo.AlertEvent, <-chan error) {
	events := make(chan *drepo.AlertEvent, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(events)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("feed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("feed read: %w", err)
					return
				}
				var frame feedFrame
				if err := json.Unmarshal(b, &frame); err != nil {
					// ignore non-alert frames
					continue
				}
				if frame.Type != "alert" {
					continue
				}
				for _, raw := range frame.Data {
					ev, err := drepo.DecodeAlertEvent(raw)
					if err != nil {
						continue
					}
					select {
					case events <- ev:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return events, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
