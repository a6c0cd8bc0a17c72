package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/logger"
	"github.com/dmitrymomot/storyforge/pkg/broadcast"
)

// Frame types pushed to websocket clients.
const (
	FrameCommands     = "commands"
	FrameNotification = "notification"
)

// Frame is one JSON message sent to websocket clients.
type Frame struct {
	Type     string             `json:"type"`
	Commands []command.Snapshot `json:"commands,omitempty"`
	Title    string             `json:"title,omitempty"`
	Message  string             `json:"message,omitempty"`
	Level    command.Level      `json:"level,omitempty"`
}

// Hub is a Sink that pushes frames to connected websocket clients.
// It is also the http.Handler that upgrades and serves those clients.
type Hub struct {
	broadcaster *broadcast.MemoryBroadcaster[Frame]
	upgrader    websocket.Upgrader
	logger      *slog.Logger

	writeTimeout time.Duration
	pingInterval time.Duration

	mu   sync.RWMutex
	last *Frame
}

// HubOption configures a Hub.
type HubOption func(*hubOptions)

type hubOptions struct {
	clientBuffer int
	writeTimeout time.Duration
	pingInterval time.Duration
	checkOrigin  func(r *http.Request) bool
	logger       *slog.Logger
}

// WithClientBuffer sets how many frames a slow client may lag behind before
// frames are dropped for it. Default is 32.
func WithClientBuffer(size int) HubOption {
	return func(o *hubOptions) {
		if size > 0 {
			o.clientBuffer = size
		}
	}
}

// WithWriteTimeout bounds a single frame write. Default is 10s.
func WithWriteTimeout(d time.Duration) HubOption {
	return func(o *hubOptions) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}

// WithPingInterval sets the keepalive ping period. Clients that miss two
// pongs are dropped. Default is 30s.
func WithPingInterval(d time.Duration) HubOption {
	return func(o *hubOptions) {
		if d > 0 {
			o.pingInterval = d
		}
	}
}

// WithOriginCheck overrides the upgrader origin check.
func WithOriginCheck(fn func(r *http.Request) bool) HubOption {
	return func(o *hubOptions) {
		o.checkOrigin = fn
	}
}

// WithHubLogger sets the hub logger.
func WithHubLogger(log *slog.Logger) HubOption {
	return func(o *hubOptions) {
		if log != nil {
			o.logger = log
		}
	}
}

// NewHub creates a hub with no clients.
func NewHub(opts ...HubOption) *Hub {
	o := &hubOptions{
		clientBuffer: 32,
		writeTimeout: 10 * time.Second,
		pingInterval: 30 * time.Second,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(o)
	}

	return &Hub{
		broadcaster: broadcast.NewMemoryBroadcaster[Frame](o.clientBuffer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     o.checkOrigin,
		},
		logger:       o.logger,
		writeTimeout: o.writeTimeout,
		pingInterval: o.pingInterval,
	}
}

// BroadcastCommandList pushes the list to every client and remembers it for
// clients that connect later.
func (h *Hub) BroadcastCommandList(ctx context.Context, snapshots []command.Snapshot) error {
	if snapshots == nil {
		snapshots = []command.Snapshot{}
	}
	frame := Frame{Type: FrameCommands, Commands: snapshots}

	h.mu.Lock()
	h.last = &frame
	h.mu.Unlock()

	return h.broadcaster.Broadcast(ctx, broadcast.Message[Frame]{Data: frame})
}

// Notify pushes an alert to every client.
func (h *Hub) Notify(ctx context.Context, alert command.Alert) error {
	return h.broadcaster.Broadcast(ctx, broadcast.Message[Frame]{Data: Frame{
		Type:    FrameNotification,
		Title:   alert.Title,
		Message: alert.Message,
		Level:   alert.Level,
	}})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return h.broadcaster.SubscriberCount()
}

// Close disconnects every client.
func (h *Hub) Close() error {
	return h.broadcaster.Close()
}

// ServeHTTP upgrades the request and streams frames until the client goes
// away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			logger.Component("notify"),
			logger.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := h.broadcaster.Subscribe(ctx)
	defer func() { _ = sub.Close() }()

	h.logger.DebugContext(ctx, "websocket client connected",
		logger.Component("notify"),
		logger.Count("clients", h.Clients()))

	go h.readLoop(conn, cancel)

	h.mu.RLock()
	last := h.last
	h.mu.RUnlock()
	if last != nil {
		if err := h.write(conn, *last); err != nil {
			return
		}
	}

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Receive(ctx):
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(h.writeTimeout))
				return
			}
			if err := h.write(conn, msg.Data); err != nil {
				h.logger.DebugContext(ctx, "websocket write failed",
					logger.Component("notify"),
					logger.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeTimeout)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client messages so control frames are processed, and
// cancels the connection context once the client disconnects.
func (h *Hub) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	pongWait := 2 * h.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, frame Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

var _ Sink = (*Hub)(nil)
