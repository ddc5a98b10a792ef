// Package ws connects to an agent host over a websocket. Every text frame from
// the host is one event envelope.
package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ryanreadbooks/codemaster/channel"
	chmodel "github.com/ryanreadbooks/codemaster/channel/model"
	"github.com/ryanreadbooks/codemaster/chat/model"
)

const writeTimeout = 10 * time.Second

var ErrClosed = errors.New("websocket transport closed")

type Client struct {
	url string
	bus *channel.Bus

	conn *websocket.Conn

	writeMu sync.Mutex
	closed  bool
}

var _ channel.Transport = (*Client)(nil)

// Dial opens a connection to url. Frames are published on bus once Run is called.
func Dial(ctx context.Context, url string, header http.Header, bus *channel.Bus) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to agent host %s: %w", url, err)
	}

	slog.Info("[ws] connected", "url", url)

	return &Client{url: url, bus: bus, conn: conn}, nil
}

func (c *Client) Type() chmodel.Type {
	return chmodel.WS
}

func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Info("[ws] connection closed", "url", c.url)
				return nil
			}
			return fmt.Errorf("failed to read frame: %w", err)
		}
		if typ != websocket.TextMessage {
			continue
		}

		if _, err := c.bus.PublishFrame(data); err != nil {
			slog.Warn("[ws] drop frame", "error", err, "frame", string(data))
		}
	}
}

func (c *Client) DispatchUserTurn(ctx context.Context, text string, history []model.Message) error {
	frame, err := channel.EncodeUserTurn(text, history)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return ErrClosed
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send user turn: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
