package relay

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nostrbank/ledgerd/internal/nostrevent"
)

// connState mirrors the teacher's peer connection state machine
// (internal/peermanagement/peer), adapted to a single outbound relay
// websocket instead of an XRPL peer link.
type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

const (
	readLimit     = 512 * 1024
	pongWait      = 90 * time.Second
	pingPeriod    = 30 * time.Second
	minBackoff    = time.Second
	maxBackoff    = 30 * time.Second
	writeDeadline = 10 * time.Second
)

// client manages one relay's websocket connection: dialing, the
// subscription handshake, reconnection with exponential backoff, and a
// mutex-guarded write path shared between the ping loop and outbound
// publication (§4.5 "Reconnects with exponential backoff").
type client struct {
	url     string
	subID   string
	filters []nostrevent.Filter
	deliver chan<- delivered

	log *slog.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	state connState
}

type delivered struct {
	relayURL string
	event    *nostrevent.Event
}

func newClient(url, subID string, filters []nostrevent.Filter, deliver chan<- delivered, log *slog.Logger) *client {
	return &client{
		url:     url,
		subID:   subID,
		filters: filters,
		deliver: deliver,
		log:     log.With("relay", url),
	}
}

// run dials and re-dials url until ctx is cancelled, feeding decoded
// events into deliver. It never returns until shutdown.
func (c *client) run(ctx context.Context) {
	backoff := minBackoff
	for ctx.Err() == nil {
		if err := c.connectAndServe(ctx); err != nil {
			c.log.Warn("relay connection lost", "error", err, "retry_in", backoff)
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(jitter(backoff)):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func jitter(d time.Duration) time.Duration {
	return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
}

func (c *client) connectAndServe(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.mu.Lock()
	c.conn = conn
	c.state = stateConnected
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.state = stateDisconnected
		c.mu.Unlock()
	}()

	req, err := encodeReq(c.subID, c.filters)
	if err != nil {
		return err
	}
	if err := c.writeMessage(req); err != nil {
		return err
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.pingLoop(connCtx, conn)

	conn.SetReadLimit(readLimit)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.handleMessage(msg)
	}
}

func (c *client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline))
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *client) handleMessage(msg []byte) {
	frame, err := decodeIncoming(msg)
	if err != nil {
		c.log.Debug("dropping unparsable frame", "error", err)
		return
	}
	switch frame.kind {
	case frameEvent:
		ev, err := nostrevent.Decode(frame.payload)
		if err != nil {
			c.log.Debug("dropping unparsable EVENT payload", "error", err)
			return
		}
		c.deliver <- delivered{relayURL: c.url, event: ev}
	case frameNotice:
		c.log.Info("relay NOTICE", "payload", string(frame.payload))
	}
}

// publish writes an EVENT frame if currently connected; returns false
// (not an error) when no connection is live, so the pool can fan the
// publish out to whichever relays are reachable.
func (c *client) publish(ev *nostrevent.Event) (bool, error) {
	data, err := encodeEvent(ev)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return false, nil
	}
	if err := c.writeMessage(data); err != nil {
		return false, err
	}
	return true, nil
}

func (c *client) connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateConnected
}

func (c *client) writeMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return websocket.ErrCloseSent
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
