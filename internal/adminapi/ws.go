package adminapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gridnode/supervisor/internal/observer"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Admin surface is assumed to sit behind a trusted reverse proxy;
		// origin checking is the proxy's job.
		return true
	},
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

// wsSubscriber adapts a websocket connection to observer.EventSubscriber so
// it can register with the Bus alongside any other subscriber kind.
type wsSubscriber struct {
	id     string
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func newWSSubscriber(conn *websocket.Conn, logger *slog.Logger) *wsSubscriber {
	ctx, cancel := context.WithCancel(context.Background())
	return &wsSubscriber{
		id:     uuid.New().String(),
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

func (w *wsSubscriber) ID() string              { return w.id }
func (w *wsSubscriber) Context() context.Context { return w.ctx }

// Send writes an event to the client as JSON, under a write deadline.
func (w *wsSubscriber) Send(event observer.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return observer.ErrSubscriberClosed
	}
	w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.conn.WriteJSON(event)
}

// Close closes the underlying connection and cancels the subscriber context.
func (w *wsSubscriber) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.cancel()
	return w.conn.Close()
}

// ObserverWebSocketHandler upgrades a connection and subscribes it to the
// observer bus for the lifetime of the websocket, per §9's "observer push
// channel" surface. Every coarsened state change any supervisor on the node
// publishes is pushed to every connected client.
type ObserverWebSocketHandler struct {
	bus    observer.Bus
	logger *slog.Logger
}

func NewObserverWebSocketHandler(bus observer.Bus, logger *slog.Logger) *ObserverWebSocketHandler {
	return &ObserverWebSocketHandler{bus: bus, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *ObserverWebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade observer websocket connection", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	sub := newWSSubscriber(conn, h.logger)
	if err := h.bus.Subscribe(sub); err != nil {
		h.logger.Error("failed to subscribe observer websocket client", "error", err)
		conn.Close()
		return
	}
	h.logger.Info("observer websocket connection established", "subscriber_id", sub.ID(), "remote_addr", conn.RemoteAddr().String())

	go h.readPump(sub)
}

// readPump keeps the connection alive with ping/pong and detects client
// disconnects; it never expects inbound application messages.
func (h *ObserverWebSocketHandler) readPump(sub *wsSubscriber) {
	defer func() {
		h.bus.Unsubscribe(sub)
		sub.Close()
		h.logger.Debug("observer websocket connection closed", "subscriber_id", sub.ID())
	}()

	sub.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-sub.ctx.Done():
				return
			case <-ticker.C:
				sub.mu.Lock()
				closed := sub.closed
				if !closed {
					sub.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
					closed = sub.conn.WriteMessage(websocket.PingMessage, nil) != nil
				}
				sub.mu.Unlock()
				if closed {
					sub.Close()
					return
				}
			}
		}
	}()

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("observer websocket read error", "error", err, "subscriber_id", sub.ID())
			}
			return
		}
	}
}
