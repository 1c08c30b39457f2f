package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/kripanshu-singh/congkong-livescore/logging"
)

// Client follows a hub over a websocket and keeps a Replica up to date.
type Client struct {
	conn    *websocket.Conn
	Replica *Replica
}

// Dial connects to a hub endpoint such as ws://host/ws, passing token as a query parameter.
func Dial(ctx context.Context, endpoint, token string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), http.Header{})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, Replica: NewReplica()}, nil
}

// Run reads messages until ctx is done or the connection fails. onChange is
// called for every message that advanced the replica.
func (c *Client) Run(ctx context.Context, onChange func(Message)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			logging.Log.Warnf("REALTIME: skipping malformed message: %v", err)
			continue
		}
		if m.Type != MessageDocument {
			continue
		}
		if c.Replica.Confirm(m) && onChange != nil {
			onChange(m)
		}
	}
}

func (c *Client) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
