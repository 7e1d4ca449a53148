package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/contract"
	"message-board/domain"
	"message-board/errors"
	"message-board/runtime"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients of the board are served from other origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub serves a contract.Store to websocket clients.
type Hub struct {
	log   *slog.Logger
	store contract.Store

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub(log *slog.Logger, store contract.Store) *Hub {
	return &Hub{log: log, store: store, clients: make(map[*Client]struct{})}
}

// ServeHTTP upgrades the connection and serves it until the peer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := newClient(ctx, h, conn)
	h.register(client)
	defer h.unregister(client)

	go client.pingPump(ctx)
	client.readPump(ctx)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Info("Client registered", "remote", c.conn.RemoteAddr().String(), "total", total)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()
	c.close()
	h.log.Info("Client unregistered", "remote", c.conn.RemoteAddr().String(), "total", total)
}

// Client is one websocket connection on the server side.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send *runtime.OrderedQueue[Frame]

	// A record waits for room in send at most stallTimeout, then the client is dropped.
	maxPending   int
	stallTimeout time.Duration

	mu            sync.Mutex
	subscriptions map[string]contract.Subscription
}

func newClient(ctx context.Context, hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		hub:           hub,
		conn:          conn,
		maxPending:    maxPendingFrames,
		stallTimeout:  writeWait,
		subscriptions: make(map[string]contract.Subscription),
	}
	c.send = runtime.NewOrderedQueue(hub.log, c.write).Start(ctx)
	return c
}

// readPump handles requests one at a time, so appends from one client keep their order.
func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("Websocket read failed", "error", err)
			}
			return
		}
		c.handle(ctx, frame)
	}
}

func (c *Client) handle(ctx context.Context, frame Frame) {
	switch frame.Type {
	case FrameSubscribe:
		c.subscribe(ctx, frame)
	case FrameUnsubscribe:
		c.unsubscribe(frame.ID)
		c.reply(frame.ID, nil)
	case FrameAppend:
		c.reply(frame.ID, c.hub.store.Append(ctx, frame.Namespace, frame.Fields))
	default:
		c.reply(frame.ID, fmt.Errorf("%w: %q", errors.ErrUnknownFrame, frame.Type))
	}
}

func (c *Client) subscribe(ctx context.Context, frame Frame) {
	id, namespace := frame.ID, frame.Namespace
	sub, err := c.hub.store.Subscribe(ctx, namespace, func(fields domain.Fields) {
		c.deliver(ctx, Frame{Type: FrameRecord, ID: id, Namespace: namespace, Fields: fields})
	})
	if err == nil {
		c.mu.Lock()
		c.subscriptions[id] = sub
		c.mu.Unlock()
	}
	c.reply(id, err)
}

func (c *Client) unsubscribe(id string) {
	c.mu.Lock()
	sub, ok := c.subscriptions[id]
	delete(c.subscriptions, id)
	c.mu.Unlock()
	if ok {
		_ = sub.Close()
	}
}

func (c *Client) reply(id string, err error) {
	if err != nil {
		c.send.Push(Frame{Type: FrameError, ID: id, Error: err.Error()})
		return
	}
	c.send.Push(Frame{Type: FrameAck, ID: id})
}

// deliver queues a record frame once send has room. The subscription pauses
// meanwhile, so a reader that stops reading cannot grow send without bound.
func (c *Client) deliver(ctx context.Context, frame Frame) {
	if c.send.Len() >= c.maxPending {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		stalled := time.NewTimer(c.stallTimeout)
		defer stalled.Stop()
		for c.send.Len() >= c.maxPending {
			select {
			case <-ctx.Done():
				return
			case <-stalled.C:
				c.hub.log.Warn("Dropping stalled client", "remote", c.conn.RemoteAddr().String(), "pending", c.send.Len())
				_ = c.conn.Close()
				return
			case <-ticker.C:
			}
		}
	}
	c.send.Push(frame)
}

// write is the single writer of data frames.
func (c *Client) write(frame Frame) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(frame); err != nil {
		c.hub.log.Debug("Websocket write failed", "error", err)
		_ = c.conn.Close()
	}
}

func (c *Client) pingPump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	subs := c.subscriptions
	c.subscriptions = make(map[string]contract.Subscription)
	c.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Close()
	}
	c.send.Close()
	_ = c.conn.Close()
}
