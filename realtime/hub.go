package realtime

import (
	"encoding/json"
	"errors"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"net/http"
	"sync"
	"time"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 40 * time.Second
	writeWait    = 10 * time.Second
	readLimit    = 64 * 1024

	DefaultAuthTimeout = 2 * time.Second
)

var ErrHubClosed = errors.New("realtime hub is closed")

// Authenticator resolves the token sent in an authenticate frame.
type Authenticator interface {
	Authenticate(token string) (access.Actor, error)
}

// Client is one websocket connection. actor and subscribed are guarded by Hub.mu.
type Client struct {
	ID   string
	conn *websocket.Conn

	writeMu    sync.Mutex
	actor      *access.Actor
	subscribed bool

	done      chan struct{}
	closeOnce sync.Once
}

// Hub tracks live connections and fans messages out to them. Delivery is
// at-most-once: a failed write drops the client.
type Hub struct {
	upgrader    websocket.Upgrader
	auth        Authenticator
	authTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	clients map[string]*Client
	users   map[uint]*Client
	admins  map[string]*Client
}

func NewHub(auth Authenticator, authTimeout time.Duration) *Hub {
	if authTimeout <= 0 {
		authTimeout = DefaultAuthTimeout
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		auth:        auth,
		authTimeout: authTimeout,
		clients:     make(map[string]*Client),
		users:       make(map[uint]*Client),
		admins:      make(map[string]*Client),
	}
}

// Serve upgrades the request and runs the connection until it closes. The
// connection must authenticate within the auth timeout.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return ErrHubClosed
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{ID: uuid.NewString(), conn: conn, done: make(chan struct{})}
	if !h.register(c) {
		_ = conn.Close()
		return ErrHubClosed
	}

	time.AfterFunc(h.authTimeout, func() { h.expireUnauthenticated(c) })
	go h.heartbeatLoop(c)
	h.readLoop(c)
	return nil
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.ID] = c
	metrics.SetWebsocketConnections(len(h.clients))
	logging.Log.Debugf("WS: connection %s opened", c.ID)
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		delete(h.admins, c.ID)
		if c.actor != nil && h.users[c.actor.UserID] == c {
			delete(h.users, c.actor.UserID)
		}
		metrics.SetWebsocketConnections(len(h.clients))
	}
	h.mu.Unlock()
	c.close()
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (h *Hub) expireUnauthenticated(c *Client) {
	h.mu.RLock()
	_, open := h.clients[c.ID]
	authenticated := c.actor != nil
	h.mu.RUnlock()
	if !open || authenticated {
		return
	}
	logging.Log.Warnf("WS: connection %s did not authenticate within %s", c.ID, h.authTimeout)
	_ = c.writeClose(websocket.ClosePolicyViolation, "authentication timeout")
	h.unregister(c)
}

func (h *Hub) readLoop(c *Client) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			h.unregister(c)
			return
		}
		h.handleMessage(c, payload)
	}
}

func (h *Hub) heartbeatLoop(c *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				logging.Log.Warnf("WS: heartbeat to %s failed: %v", c.ID, err)
				h.unregister(c)
				return
			}
		}
	}
}

func (h *Hub) handleMessage(c *Client, payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil || msg.Type == "" {
		h.reply(c, errorMessage("invalid message format"))
		return
	}

	switch msg.Type {
	case TypeAuthenticate:
		h.handleAuthenticate(c, msg)
	case TypeSubscribeCheckpoints:
		h.handleSubscribe(c)
	case TypeCheckpoint:
		h.handleCheckpoint(c, msg)
	case TypePing:
		h.reply(c, Message{Type: TypePong, Data: map[string]int64{"ts": time.Now().Unix()}})
	default:
		h.reply(c, errorMessage("unknown message type"))
	}
}

func (h *Hub) handleAuthenticate(c *Client, msg Message) {
	if msg.Token == "" {
		h.reply(c, errorMessage("token is required"))
		return
	}
	actor, err := h.auth.Authenticate(msg.Token)
	if err != nil {
		logging.Log.Warnf("WS: authentication of %s failed: %v", c.ID, err)
		h.reply(c, errorMessage("authentication failed"))
		return
	}

	h.mu.Lock()
	if _, open := h.clients[c.ID]; !open {
		h.mu.Unlock()
		return
	}
	if c.actor != nil && h.users[c.actor.UserID] == c {
		delete(h.users, c.actor.UserID)
	}
	c.actor = &actor
	h.users[actor.UserID] = c
	h.mu.Unlock()

	logging.Log.Infof("WS: connection %s authenticated as user %d (%s)", c.ID, actor.UserID, actor.Role)
	h.reply(c, Message{Type: TypeAuthenticated, Data: AuthenticatedData{UserID: actor.UserID, Role: actor.Role}})
}

func (h *Hub) handleSubscribe(c *Client) {
	h.mu.Lock()
	if c.actor == nil {
		h.mu.Unlock()
		h.reply(c, errorMessage("not authenticated"))
		return
	}
	if !c.actor.Role.Can(access.CapSubscribeCheckpoints) {
		h.mu.Unlock()
		h.reply(c, errorMessage("insufficient permissions"))
		return
	}
	c.subscribed = true
	h.admins[c.ID] = c
	h.mu.Unlock()

	h.reply(c, Message{Type: TypeSubscribed, Channel: ChannelCheckpoints})
}

// handleCheckpoint relays an admin's checkpoint update to the other subscribed admins.
func (h *Hub) handleCheckpoint(c *Client, msg Message) {
	h.mu.RLock()
	subscribed := c.subscribed
	h.mu.RUnlock()
	if !subscribed {
		h.reply(c, errorMessage("subscribe to checkpoints first"))
		return
	}
	h.BroadcastToOtherAdmins(Message{Type: TypeCheckpoint, TeamID: msg.TeamID, Checkpoint: msg.Checkpoint}, c.ID)
}

func (h *Hub) reply(c *Client, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logging.Log.Errorf("WS: failed to marshal %s message: %v", msg.Type, err)
		return
	}
	if err := c.write(payload); err != nil {
		h.unregister(c)
	}
}

// SendToUser delivers to the latest authenticated connection of the user; absent users are a no-op.
func (h *Hub) SendToUser(userID uint, msg Message) {
	h.mu.RLock()
	c := h.users[userID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	h.deliver([]*Client{c}, msg)
}

// SendToRole delivers to every authenticated connection holding the role.
func (h *Hub) SendToRole(role access.Role, msg Message) {
	h.deliver(h.collect(func(c *Client) bool {
		return c.actor != nil && c.actor.Role == role
	}), msg)
}

// BroadcastToAll delivers to every authenticated connection.
func (h *Hub) BroadcastToAll(msg Message) {
	h.deliver(h.collect(func(c *Client) bool {
		return c.actor != nil
	}), msg)
}

// BroadcastToOtherAdmins delivers to the subscribed admins except the originating
// connection. An empty originator excludes nobody.
func (h *Hub) BroadcastToOtherAdmins(msg Message, originatorID string) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.admins))
	for id, c := range h.admins {
		if id != originatorID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	h.deliver(targets, msg)
}

// ConnectionCount is the number of open connections, authenticated or not.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client; Serve refuses new connections afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.writeClose(websocket.CloseGoingAway, "server shutting down")
		h.unregister(c)
	}
	logging.Log.Infof("WS: hub closed, %d connections dropped", len(clients))
}

func (h *Hub) collect(match func(c *Client) bool) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var targets []*Client
	for _, c := range h.clients {
		if match(c) {
			targets = append(targets, c)
		}
	}
	return targets
}

func (h *Hub) deliver(targets []*Client, msg Message) {
	if len(targets) == 0 {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		logging.Log.Errorf("WS: failed to marshal %s message: %v", msg.Type, err)
		return
	}
	for _, c := range targets {
		if err := c.write(payload); err != nil {
			logging.Log.Debugf("WS: dropping connection %s: %v", c.ID, err)
			h.unregister(c)
		}
	}
}

func (c *Client) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Client) writePing() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait))
}

func (c *Client) writeClose(code int, reason string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
}
