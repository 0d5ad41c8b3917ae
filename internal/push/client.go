package push

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"linguacall/pkg/logger"

	linguacall_errors "linguacall/pkg/errors"
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	}
	return "disconnected"
}

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

// Client maintains the duplex push channel and delivers call_update
// notifications to observers. Delivery is serialized on one reader
// goroutine; observers for a single event run to completion before the
// next event is read. Reconnection after transport loss uses capped
// exponential backoff and retries until Disconnect is called.
type Client struct {
	url      string
	dialer   *websocket.Dialer
	log      *logger.Logger
	minDelay time.Duration
	maxDelay time.Duration

	// onRefresh runs once per successful reconnect, before delivery
	// resumes. The channel offers no replay guarantee, so the owner
	// re-fetches active calls and metrics here instead of assuming
	// nothing was missed.
	onRefresh func()

	mu        sync.Mutex
	state     State
	conn      *websocket.Conn
	observers []Observer
	token     string
	done      chan struct{}
}

func NewClient(wsURL string, minDelay, maxDelay time.Duration, log *logger.Logger) *Client {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if maxDelay < minDelay {
		maxDelay = 30 * time.Second
	}
	return &Client{
		url:      wsURL,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:      log,
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// Subscribe registers an observer. Observers survive Disconnect; they
// simply stop being notified.
func (c *Client) Subscribe(obs Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, obs)
}

// OnReconnect registers the full-refresh hook. Must be set before Connect.
func (c *Client) OnReconnect(fn func()) {
	c.onRefresh = fn
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the channel, authenticating with token when non-empty.
// Calling while already connected (or connecting) is a no-op.
func (c *Client) Connect(token string) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.token = token
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	conn, err := c.dial()
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", linguacall_errors.ErrUnreachable, err)
	}

	c.mu.Lock()
	select {
	case <-done:
		// Disconnected while the dial was in flight.
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	default:
	}
	c.conn = conn
	c.state = StateConnected
	c.mu.Unlock()

	go c.run(conn, done)
	return nil
}

// Disconnect closes the channel and stops delivery and reconnection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisconnected {
		return
	}
	close(c.done)
	c.state = StateDisconnected
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) dial() (*websocket.Conn, error) {
	target := c.url
	if c.token != "" {
		u, err := url.Parse(c.url)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
		target = u.String()
	}
	conn, _, err := c.dialer.Dial(target, nil)
	return conn, err
}

// run owns the connection lifecycle: read until transport loss, then
// reconnect with backoff and resume, until done is closed.
func (c *Client) run(conn *websocket.Conn, done chan struct{}) {
	for {
		c.readLoop(conn, done)

		select {
		case <-done:
			return
		default:
		}

		c.mu.Lock()
		c.state = StateReconnecting
		c.conn = nil
		c.mu.Unlock()
		c.log.Warnf("push channel lost, reconnecting")

		conn = c.reconnect(done)
		if conn == nil {
			return
		}

		c.mu.Lock()
		select {
		case <-done:
			c.mu.Unlock()
			_ = conn.Close()
			return
		default:
		}
		c.conn = conn
		c.state = StateConnected
		c.mu.Unlock()
		c.log.Infof("push channel reconnected")

		// Missed events cannot be replayed; refresh before resuming.
		if c.onRefresh != nil {
			c.onRefresh()
		}
	}
}

// reconnect dials with capped exponential backoff until it succeeds or
// done closes. Failures are never surfaced to the user; the UI keeps
// running on cached state while retries continue.
func (c *Client) reconnect(done chan struct{}) *websocket.Conn {
	delay := c.minDelay
	for {
		select {
		case <-done:
			return nil
		case <-time.After(delay):
		}
		conn, err := c.dial()
		if err == nil {
			return conn
		}
		c.log.Debugf("push reconnect failed: %v", err)
		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	stopPing := make(chan struct{})
	defer close(stopPing)
	go c.pingLoop(conn, stopPing)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		c.dispatch(data, done)
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(data []byte, done chan struct{}) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Warnf("malformed push event dropped: %v", err)
		return
	}
	if env.Type != EventCallUpdate {
		c.log.Debugf("unhandled push event type %q", env.Type)
		return
	}

	// A disconnect may have raced the read; never deliver after it.
	select {
	case <-done:
		return
	default:
	}

	c.mu.Lock()
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, obs := range observers {
		obs.HandleCallUpdate(env.CallID, env.Updates)
	}
}
