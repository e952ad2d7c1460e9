// Package realtime is the Socket.IO client for the submission service's update channel.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gitlab.com/codearena.net/internal/config"
	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/realtime/codec"
	"gitlab.com/codearena.net/internal/realtime/connectionmanager"
	"gitlab.com/codearena.net/internal/realtime/defs"
	"gitlab.com/codearena.net/internal/realtime/handlers"
	"gitlab.com/codearena.net/internal/static/errs"
)

var _ primary.RealtimeChannel = (*Client)(nil)

var (
	errServerClosed    = errors.New("server closed the connection")
	errNamespaceClosed = errors.New("server disconnected the namespace")
)

// Dialer opens the websocket. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Client keeps one connection to the real-time endpoint and reconnects when it drops.
// Events are read on a single goroutine and handed to subscribers in arrival order.
type Client struct {
	url       string
	namespace string
	header    http.Header
	dialer    Dialer
	logger    primary.Logger
	notifier  primary.Notifier

	connectionMgr *connectionmanager.ConnectionManager
	handlers      map[string]primary.EventHandler

	reconnectMin      time.Duration
	reconnectMax      time.Duration
	reconnectAttempts int
	handshakeTimeout  time.Duration

	lifetime context.Context
	cancel   context.CancelFunc

	mu           sync.Mutex
	conn         *websocket.Conn
	state        domain.ConnectionState
	userID       string
	running      bool
	disposed     bool
	pingInterval time.Duration
	pingTimeout  time.Duration

	writeMu sync.Mutex
	wg      sync.WaitGroup
}

// ClientOption configures a Client
type ClientOption func(*Client)

func WithDialer(d Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithNamespace connects to a namespace other than the default one.
func WithNamespace(ns string) ClientOption {
	return func(c *Client) {
		c.namespace = ns
	}
}

// WithHeader adds headers to the websocket upgrade request.
func WithHeader(h http.Header) ClientOption {
	return func(c *Client) {
		c.header = h.Clone()
	}
}

// WithReconnect sets the backoff bounds. attempts of zero retries forever.
func WithReconnect(min, max time.Duration, attempts int) ClientOption {
	return func(c *Client) {
		c.reconnectMin = min
		c.reconnectMax = max
		c.reconnectAttempts = attempts
	}
}

func WithHandshakeTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.handshakeTimeout = d
	}
}

// WithNotifier shows server greetings on the given notifier.
func WithNotifier(n primary.Notifier) ClientOption {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithConfig applies the realtime section of the app config.
func WithConfig(cfg *config.RealtimeConfig) ClientOption {
	return func(c *Client) {
		c.url = cfg.URL
		c.reconnectMin = cfg.ReconnectMin
		c.reconnectMax = cfg.ReconnectMax
		c.reconnectAttempts = cfg.ReconnectAttempts
		c.handshakeTimeout = cfg.HandshakeTimeout
	}
}

func NewClient(rawURL string, logger primary.Logger, options ...ClientOption) *Client {
	lifetime, cancel := context.WithCancel(context.Background())
	c := &Client{
		url:              rawURL,
		header:           http.Header{},
		dialer:           websocket.DefaultDialer,
		logger:           logger,
		connectionMgr:    connectionmanager.NewConnectionManager(logger),
		reconnectMin:     time.Second,
		reconnectMax:     5 * time.Second,
		handshakeTimeout: 20 * time.Second,
		lifetime:         lifetime,
		cancel:           cancel,
		state:            domain.ConnDisconnected,
		pingInterval:     defs.DefaultPingInterval,
		pingTimeout:      defs.DefaultPingTimeout,
	}

	for _, option := range options {
		option(c)
	}
	if c.reconnectMax < c.reconnectMin {
		c.reconnectMax = c.reconnectMin
	}

	c.setupEventHandlers()
	return c
}

// setupEventHandlers registers all event handlers
func (c *Client) setupEventHandlers() {
	c.handlers = map[string]primary.EventHandler{
		defs.EventSubmissionUpdate: &handlers.SubmissionUpdateHandler{ConnectionMgr: c.connectionMgr, Logger: c.logger},
		defs.EventConnection:       &handlers.ConnectionHandler{Notifier: c.notifier, Logger: c.logger},
		defs.EventMessage:          &handlers.MessageHandler{Logger: c.logger},
	}
}

// Endpoint returns the websocket URL for the configured server address.
func (c *Client) Endpoint() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("invalid realtime url %q: %w", c.url, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported realtime url scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = defs.DefaultPath
	} else if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	q := u.Query()
	q.Set("EIO", defs.EngineVersion)
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect dials and completes the handshake. Later drops are retried in the background.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return errs.ErrDisposed
	}
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	// counted while disposed is known false, so Dispose waits for this attempt
	c.wg.Add(1)
	c.mu.Unlock()

	c.setState(domain.ConnConnecting, nil)
	conn, err := c.dial(ctx)
	if err != nil {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		c.wg.Done()
		c.setState(domain.ConnDisconnected, err)
		return err
	}
	if !c.attach(conn) {
		c.wg.Done()
		return errs.ErrDisposed
	}

	go c.run(conn)
	return nil
}

// Authenticate stores the user id and sends it now if connected. It is re-sent after every
// reconnect.
func (c *Client) Authenticate(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", errs.ErrInvalidInput)
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return errs.ErrDisposed
	}
	c.userID = userID
	connected := c.conn != nil && c.state == domain.ConnConnected
	c.mu.Unlock()

	if !connected {
		c.logger.Debug("Not connected yet, auth deferred", "userId", userID)
		return nil
	}
	return c.emit(defs.EventAuth, defs.AuthData{UserID: userID})
}

func (c *Client) Subscribe(cb primary.UpdateCallback) primary.Subscription {
	return c.connectionMgr.Updates.Add(cb)
}

// Unsubscribe removes an update callback or a state listener. Repeated calls are no-ops.
func (c *Client) Unsubscribe(sub primary.Subscription) {
	if !c.connectionMgr.Updates.Remove(sub) {
		c.connectionMgr.States.Remove(sub)
	}
}

func (c *Client) OnStateChange(l primary.StateListener) primary.Subscription {
	return c.connectionMgr.States.Add(l)
}

func (c *Client) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SendMessage emits a message event.
func (c *Client) SendMessage(payload interface{}) error {
	err := c.emit(defs.EventMessage, payload)
	if errors.Is(err, errs.ErrNotConnected) {
		c.logger.Warn("Socket not connected, cannot send message")
	}
	return err
}

// Dispose closes the connection, stops reconnecting and drops all subscribers.
func (c *Client) Dispose() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	conn := c.conn
	c.mu.Unlock()

	c.cancel()
	if conn != nil {
		c.writeMu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = conn.WriteMessage(websocket.TextMessage, []byte{defs.EngineMessage, defs.SocketDisconnect})
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = conn.Close()
	}
	c.wg.Wait()

	c.connectionMgr.Updates.Clear()
	c.connectionMgr.States.Clear()
	c.mu.Lock()
	c.state = domain.ConnDisconnected
	c.conn = nil
	c.mu.Unlock()
	c.logger.Info("Real-time client disposed")
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	endpoint, err := c.Endpoint()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.handshakeTimeout)
	defer cancel()

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, c.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", endpoint, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	if err := c.handshake(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}
	return conn, nil
}

// handshake reads the open packet and joins the namespace.
func (c *Client) handshake(conn *websocket.Conn) error {
	if err := conn.SetReadDeadline(time.Now().Add(c.handshakeTimeout)); err != nil {
		return err
	}

	p, err := readPacket(conn)
	if err != nil {
		return err
	}
	open, err := codec.DecodeOpen(p)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if open.PingInterval > 0 {
		c.pingInterval = time.Duration(open.PingInterval) * time.Millisecond
	}
	if open.PingTimeout > 0 {
		c.pingTimeout = time.Duration(open.PingTimeout) * time.Millisecond
	}
	c.mu.Unlock()

	frame, err := codec.EncodeConnect(c.namespace, nil)
	if err != nil {
		return err
	}
	if err := c.write(conn, frame); err != nil {
		return err
	}

	for {
		p, err := readPacket(conn)
		if err != nil {
			return err
		}
		switch {
		case p.Engine == defs.EnginePing:
			if err := c.write(conn, codec.Pong(p)); err != nil {
				return err
			}
		case p.Engine == defs.EngineClose:
			return errServerClosed
		case p.Engine == defs.EngineMessage && p.Socket == defs.SocketConnect:
			c.logger.Debug("Namespace joined", "sid", open.SID, "namespace", c.namespace)
			return conn.SetReadDeadline(time.Time{})
		case p.Engine == defs.EngineMessage && p.Socket == defs.SocketConnectError:
			var refusal defs.ConnectErrorData
			_ = json.Unmarshal(p.Data, &refusal)
			return fmt.Errorf("connection refused: %s", refusal.Message)
		}
	}
}

// attach makes conn current and re-authenticates. It reports false when the client was
// disposed meanwhile.
func (c *Client) attach(conn *websocket.Conn) bool {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		_ = conn.Close()
		return false
	}
	c.conn = conn
	userID := c.userID
	c.mu.Unlock()

	c.setState(domain.ConnConnected, nil)
	if userID != "" {
		if err := c.emit(defs.EventAuth, defs.AuthData{UserID: userID}); err != nil {
			c.logger.Error("Failed to authenticate real-time connection", "error", err)
		}
	}
	return true
}

func (c *Client) run(conn *websocket.Conn) {
	defer c.wg.Done()

	for {
		err := c.readLoop(conn)
		_ = conn.Close()

		c.mu.Lock()
		c.conn = nil
		disposed := c.disposed
		c.mu.Unlock()
		if disposed {
			return
		}

		c.logger.Warn("Real-time connection lost", "error", err)
		c.setState(domain.ConnDisconnected, nil)

		conn = c.reconnect()
		if conn == nil {
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return
		}
		if !c.attach(conn) {
			return
		}
	}
}

func (c *Client) reconnect() *websocket.Conn {
	for attempt := 0; c.reconnectAttempts == 0 || attempt < c.reconnectAttempts; attempt++ {
		timer := time.NewTimer(c.backoff(attempt))
		select {
		case <-c.lifetime.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		c.setState(domain.ConnConnecting, nil)
		conn, err := c.dial(c.lifetime)
		if err == nil {
			c.logger.Info("Real-time connection re-established", "attempt", attempt+1)
			return conn
		}
		if c.lifetime.Err() != nil {
			return nil
		}
		c.logger.Warn("Reconnect attempt failed", "attempt", attempt+1, "error", err)
		c.setState(domain.ConnDisconnected, err)
	}
	c.logger.Error("Giving up on real-time connection", "attempts", c.reconnectAttempts)
	return nil
}

func (c *Client) backoff(attempt int) time.Duration {
	if attempt > 16 {
		return c.reconnectMax
	}
	d := c.reconnectMin << attempt
	if d <= 0 || d > c.reconnectMax {
		return c.reconnectMax
	}
	return d
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		c.mu.Lock()
		idle := c.pingInterval + c.pingTimeout
		c.mu.Unlock()
		if err := conn.SetReadDeadline(time.Now().Add(idle)); err != nil {
			return err
		}

		p, err := readPacket(conn)
		if err != nil {
			if errors.Is(err, codec.ErrMalformedPacket) {
				c.logger.Warn("Dropping malformed packet", "error", err)
				continue
			}
			return err
		}

		switch p.Engine {
		case defs.EnginePing:
			if err := c.write(conn, codec.Pong(p)); err != nil {
				return err
			}
		case defs.EngineClose:
			return errServerClosed
		case defs.EngineMessage:
			if err := c.handleMessage(p); err != nil {
				return err
			}
		}
	}
}

func (c *Client) handleMessage(p codec.Packet) error {
	if p.Namespace != "" && p.Namespace != c.namespace {
		return nil
	}
	switch p.Socket {
	case defs.SocketDisconnect:
		return errNamespaceClosed
	case defs.SocketEvent:
		name, data, err := codec.DecodeEvent(p)
		if err != nil {
			c.logger.Warn("Dropping malformed event", "error", err)
			return nil
		}
		handler, exists := c.handlers[name]
		if !exists {
			c.logger.Debug("Unhandled event", "event", name)
			return nil
		}
		if err := handler.HandleEvent(c.lifetime, data); err != nil {
			c.logger.Error("Error handling event", "event", name, "error", err)
		}
	case defs.SocketBinaryEvent:
		c.logger.Warn("Binary events are not supported")
	}
	return nil
}

func (c *Client) emit(name string, data interface{}) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == domain.ConnConnected
	c.mu.Unlock()
	if conn == nil || !connected {
		return errs.ErrNotConnected
	}

	frame, err := codec.EncodeEvent(c.namespace, name, data)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return c.write(conn, frame)
}

func (c *Client) write(conn *websocket.Conn, frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(defs.WriteTimeout)); err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

func (c *Client) setState(state domain.ConnectionState, err error) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.mu.Unlock()

	if !changed && err == nil {
		return
	}
	c.logger.Debug("Real-time state", "state", state, "error", err)
	c.connectionMgr.DispatchState(state, err)
}

// readPacket reads one text frame. Binary frames only carry attachments, which are skipped.
func readPacket(conn *websocket.Conn) (codec.Packet, error) {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return codec.Packet{}, err
		}
		if mt != websocket.TextMessage {
			continue
		}
		return codec.Decode(data)
	}
}
