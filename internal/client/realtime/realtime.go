// Package realtime maintains a persistent socket connection to the
// task-manager service and fans inbound events out to subscribers by type.
// The connection is self-healing: any closure, local or remote, schedules a
// reconnect after a fixed delay, forever, until Disconnect is called. There is
// no send buffering and no delivery guarantee across a reconnect boundary;
// within one connection epoch, delivery order matches wire arrival order.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/taskmate/taskmate/internal/common/logtrace"
	"github.com/taskmate/taskmate/pkg/types"
)

// DefaultReconnectDelay is the fixed delay between connection attempts.
// Deliberately constant: no backoff, no jitter, no attempt cap.
const DefaultReconnectDelay = 5 * time.Second

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// State is the connection state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

// String returns the state name for logs and status output.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Handler receives inbound envelopes for a subscribed event type. Handlers
// run on the read goroutine: a slow handler delays delivery of later
// messages in the same epoch.
type Handler func(env types.Envelope)

type subscription struct {
	id uint64
	fn Handler
}

// Options configures a Conn.
type Options struct {
	// ReconnectDelay overrides the fixed reconnect delay. Used by tests.
	ReconnectDelay time.Duration
	// Dialer overrides the websocket dialer.
	Dialer *websocket.Dialer
}

// Conn is a resilient realtime connection. Construct with New, then Connect.
// Instances are independent; there is no package-level singleton.
type Conn struct {
	url    string
	delay  time.Duration
	dialer *websocket.Dialer
	logger zerolog.Logger

	state atomic.Int32

	mu      sync.Mutex // guards ws, cancel, running, done
	ws      *websocket.Conn
	cancel  context.CancelFunc
	running bool
	done    chan struct{}

	writeMu sync.Mutex // serializes socket writes

	regMu    sync.Mutex // guards registry and nextID
	nextID   uint64
	registry map[string][]subscription
}

// New creates a connection for the given ws:// or wss:// endpoint.
// The connection is not opened until Connect is called.
func New(wsURL string, opts ...Options) *Conn {
	o := Options{}
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	return &Conn{
		url:      wsURL,
		delay:    o.ReconnectDelay,
		dialer:   o.Dialer,
		logger:   logtrace.Component("realtime"),
		registry: make(map[string][]subscription),
	}
}

// Connect starts the connection loop. Idempotent: calling Connect on a
// running connection is a no-op.
func (c *Conn) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true
	c.done = make(chan struct{})
	go c.run(ctx, c.done)
}

// Disconnect closes the socket and suppresses any pending reconnect. It
// returns once the connection loop has stopped. Must not be called from a
// Handler.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	ws := c.ws
	done := c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ws != nil {
		ws.Close()
	}
	if done != nil {
		<-done
	}
	c.setState(Disconnected)
}

// State returns the current connection state.
func (c *Conn) State() State {
	return State(c.state.Load())
}

// Subscribe registers a handler for an event type and returns a function that
// removes exactly that handler. Multiple handlers per type run in
// registration order; unsubscribing during dispatch is safe.
func (c *Conn) Subscribe(eventType string, fn Handler) func() {
	c.regMu.Lock()
	c.nextID++
	id := c.nextID
	c.registry[eventType] = append(c.registry[eventType], subscription{id: id, fn: fn})
	c.regMu.Unlock()

	return func() {
		c.regMu.Lock()
		defer c.regMu.Unlock()
		subs := c.registry[eventType]
		for i := range subs {
			if subs[i].id == id {
				c.registry[eventType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Send marshals data into an envelope stamped with the current time and
// writes it to the socket. Fails silently when not connected: messages are
// never queued or replayed across reconnects.
func (c *Conn) Send(eventType string, data any) {
	if c.State() != Connected {
		c.logger.Warn().Str("type", eventType).Msg("not connected, dropping outbound message")
		return
	}

	raw, err := jsonCodec.Marshal(data)
	if err != nil {
		c.logger.Error().Err(err).Str("type", eventType).Msg("failed to encode outbound data")
		return
	}
	buf, err := jsonCodec.Marshal(types.Envelope{
		Type:      eventType,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("type", eventType).Msg("failed to encode envelope")
		return
	}

	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return
	}

	c.writeMu.Lock()
	err = ws.WriteMessage(websocket.TextMessage, buf)
	c.writeMu.Unlock()
	if err != nil {
		c.logger.Error().Err(err).Str("type", eventType).Msg("socket write failed")
	}
}

// run is the connection loop: dial, read until closure, wait the fixed
// delay, repeat. Exits only when the context is canceled by Disconnect.
func (c *Conn) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	for {
		c.setState(Connecting)
		ws, err := c.dial(ctx)
		if err != nil {
			c.setState(Disconnected)
			return
		}

		c.mu.Lock()
		c.ws = ws
		c.mu.Unlock()
		c.setState(Connected)
		c.logger.Info().Str("url", c.url).Msg("connection established")

		c.readLoop(ws)

		c.setState(Disconnected)
		c.mu.Lock()
		c.ws = nil
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.delay):
		}
	}
}

// dial attempts the websocket handshake until it succeeds, spacing attempts
// by the fixed reconnect delay. Unbounded on purpose. Returns an error only
// when the context is canceled.
func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	return retry.DoWithData(func() (*websocket.Conn, error) {
		ws, resp, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil && resp != nil {
			resp.Body.Close()
		}
		return ws, err
	},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(c.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug().Uint("attempt", n+1).Err(err).Msg("dial failed, will retry")
		}),
	)
}

// readLoop delivers inbound messages until the connection drops. Read errors
// and remote closes collapse into the same path: close the socket and return,
// letting run schedule the reconnect.
func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			ws.Close()
			c.logger.Debug().Err(err).Msg("connection closed")
			return
		}

		var env types.Envelope
		if err := jsonCodec.Unmarshal(msg, &env); err != nil {
			// malformed payloads never reach listeners and never
			// take the connection down
			c.logger.Warn().Err(err).Msg("dropping malformed message")
			continue
		}
		c.dispatch(env)
	}
}

// dispatch invokes every handler registered for the envelope's type, in
// registration order. The handler list is snapshotted so unsubscribing
// mid-dispatch cannot corrupt iteration.
func (c *Conn) dispatch(env types.Envelope) {
	c.regMu.Lock()
	subs := append([]subscription(nil), c.registry[env.Type]...)
	c.regMu.Unlock()

	for _, s := range subs {
		s.fn(env)
	}
}

func (c *Conn) setState(s State) {
	c.state.Store(int32(s))
}
