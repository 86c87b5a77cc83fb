// Package ws pushes order events to connected dashboards and customer
// views. The hubs are fed by store events, so there is no poll loop: a
// status change reaches the customer the moment staff commit it.
package ws

import (
	"net/http"
	"sync"
	"time"

	"chiya-order-service/internal/config"
	"chiya-order-service/internal/models"
	"chiya-order-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	Store  *store.Store
	Logger *zap.Logger
	Config config.Config

	staff    *staffHub
	tracking *trackingHub
}

func New(st *store.Store, logger *zap.Logger, cfg config.Config) *Server {
	srv := &Server{
		Store:    st,
		Logger:   logger,
		Config:   cfg,
		staff:    newStaffHub(),
		tracking: newTrackingHub(),
	}
	st.OnEvent(srv.handleEvent)
	return srv
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

func (c *client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// --- staff hub: every connected dashboard sees every order event ---

type staffHub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func newStaffHub() *staffHub {
	return &staffHub{clients: make(map[*client]struct{})}
}

func (h *staffHub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *staffHub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *staffHub) broadcast(message any) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			h.remove(c)
		}
	}
}

// --- tracking hub: customers subscribed to a single order ---

type trackingHub struct {
	mu   sync.RWMutex
	subs map[string]map[*client]struct{}
}

func newTrackingHub() *trackingHub {
	return &trackingHub{subs: make(map[string]map[*client]struct{})}
}

func (h *trackingHub) subscribe(orderID string, c *client) (unsubscribe func()) {
	h.mu.Lock()
	if h.subs[orderID] == nil {
		h.subs[orderID] = make(map[*client]struct{})
	}
	h.subs[orderID][c] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		clients := h.subs[orderID]
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.subs, orderID)
		}
		h.mu.Unlock()
	}
}

// broadcast sends to every watcher of the order; when closeAfter is set the
// connections are shut down afterwards, which ends tracking for completed
// orders.
func (h *trackingHub) broadcast(orderID string, message any, closeAfter bool) {
	h.mu.RLock()
	clientsMap := h.subs[orderID]
	clients := make([]*client, 0, len(clientsMap))
	for c := range clientsMap {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil || closeAfter {
			_ = c.conn.Close()
		}
	}

	if closeAfter {
		h.mu.Lock()
		delete(h.subs, orderID)
		h.mu.Unlock()
	}
}

// --- store event fan-out ---

func (s *Server) handleEvent(event store.Event) {
	switch event.Type {
	case store.EventOrderCreated:
		s.staff.broadcast(map[string]any{
			"type":   string(event.Type),
			"order":  event.Order,
			"sound":  event.Settings.SoundAlerts,
			"notify": event.Settings.BrowserNotifications,
		})
	case store.EventOrderStatusUpdated:
		s.staff.broadcast(map[string]any{
			"type":        string(event.Type),
			"orderId":     event.Order.ID,
			"orderNumber": event.Order.OrderNumber,
			"status":      event.Order.Status,
		})
		completed := event.Order.Status == models.StatusCompleted
		s.tracking.broadcast(event.Order.ID, map[string]any{
			"type":    string(event.Type),
			"orderId": event.Order.ID,
			"status":  event.Order.Status,
		}, completed)
	}
}

// --- HTTP endpoints ---

func (s *Server) StaffOrdersWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	s.staff.add(c)
	s.Logger.Debug("staff ws connected")

	go s.heartbeat(c)
	s.readUntilClose(c)
	s.staff.remove(c)
}

func (s *Server) OrderTrackingWS(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	order, ok := s.Store.Order(orderID)
	if !ok {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}

	// Current status first, so a reconnecting client never misses state.
	_ = c.writeJSON(map[string]any{
		"type":    "order.status",
		"orderId": order.ID,
		"status":  order.Status,
	})
	if order.Status == models.StatusCompleted {
		_ = conn.Close()
		return
	}

	unsubscribe := s.tracking.subscribe(orderID, c)
	go s.heartbeat(c)
	s.readUntilClose(c)
	unsubscribe()
}

func (s *Server) heartbeat(c *client) {
	interval := s.Config.WSHeartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := c.ping(); err != nil {
			_ = c.conn.Close()
			return
		}
	}
}

func (s *Server) readUntilClose(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			_ = c.conn.Close()
			return
		}
	}
}
