package ws

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chiya-order-service/internal/config"
	"chiya-order-service/internal/models"
	"chiya-order-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestWS(t *testing.T) (*Server, *store.Store, *httptest.Server) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	srv := New(st, zap.NewNop(), config.Config{})

	r := chi.NewRouter()
	r.Get("/ws/staff/orders", srv.StaffOrdersWS)
	r.Get("/ws/public/orders/{id}", srv.OrderTrackingWS)
	httpServer := httptest.NewServer(r)
	t.Cleanup(httpServer.Close)

	return srv, st, httpServer
}

func wsURL(httpServer *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(httpServer.URL, "http") + path
}

func dial(t *testing.T, httpServer *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(httpServer, path), nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return msg
}

// waitFor polls until cond holds; the handler goroutine registers clients
// after the handshake, so tests wait for that before triggering events.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached")
}

func (s *Server) staffClientCount() int {
	s.staff.mu.RLock()
	defer s.staff.mu.RUnlock()
	return len(s.staff.clients)
}

func (s *Server) trackingSubCount(orderID string) int {
	s.tracking.mu.RLock()
	defer s.tracking.mu.RUnlock()
	return len(s.tracking.subs[orderID])
}

func placeOrder(t *testing.T, st *store.Store) models.Order {
	t.Helper()
	item := st.AddMenuItem(models.MenuItem{
		ID:          "tea",
		Name:        "Tea",
		Price:       40,
		Category:    models.CategoryTea,
		IsAvailable: true,
	})
	st.AddToCart("sess", item)
	order, err := st.PlaceOrder("sess", 1, "")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	return order
}

func TestStaffStreamCarriesAlertFlags(t *testing.T) {
	srv, st, httpServer := newTestWS(t)
	conn := dial(t, httpServer, "/ws/staff/orders")
	waitFor(t, func() bool { return srv.staffClientCount() == 1 })

	placeOrder(t, st)
	msg := readMessage(t, conn)
	if msg["type"] != "order.created" {
		t.Fatalf("expected order.created, got %v", msg["type"])
	}
	if msg["sound"] != true || msg["notify"] != false {
		t.Fatalf("expected default sound=true notify=false, got sound=%v notify=%v", msg["sound"], msg["notify"])
	}

	// flags track the settings at emit time
	sound, notify := false, true
	st.UpdateSettings(store.SettingsPatch{SoundAlerts: &sound, BrowserNotifications: &notify})
	item, _ := st.MenuItem("tea")
	st.AddToCart("sess2", item)
	if _, err := st.PlaceOrder("sess2", 2, ""); err != nil {
		t.Fatalf("second order: %v", err)
	}
	msg = readMessage(t, conn)
	if msg["sound"] != false || msg["notify"] != true {
		t.Fatalf("expected updated flags, got sound=%v notify=%v", msg["sound"], msg["notify"])
	}
}

func TestStaffStreamBroadcastsStatusUpdates(t *testing.T) {
	srv, st, httpServer := newTestWS(t)
	order := placeOrder(t, st)

	conn := dial(t, httpServer, "/ws/staff/orders")
	waitFor(t, func() bool { return srv.staffClientCount() == 1 })

	st.UpdateOrderStatus(order.ID, models.StatusPreparing)
	msg := readMessage(t, conn)
	if msg["type"] != "order.status.updated" || msg["status"] != "preparing" || msg["orderId"] != order.ID {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestOrderTrackingStreamClosesOnCompleted(t *testing.T) {
	srv, st, httpServer := newTestWS(t)
	order := placeOrder(t, st)

	conn := dial(t, httpServer, "/ws/public/orders/"+order.ID)

	// current status arrives first, before any update happens
	msg := readMessage(t, conn)
	if msg["type"] != "order.status" || msg["status"] != "pending" {
		t.Fatalf("expected initial pending status, got %v", msg)
	}
	waitFor(t, func() bool { return srv.trackingSubCount(order.ID) == 1 })

	st.UpdateOrderStatus(order.ID, models.StatusReady)
	msg = readMessage(t, conn)
	if msg["status"] != "ready" {
		t.Fatalf("expected ready, got %v", msg)
	}

	st.UpdateOrderStatus(order.ID, models.StatusCompleted)
	msg = readMessage(t, conn)
	if msg["status"] != "completed" {
		t.Fatalf("expected completed, got %v", msg)
	}

	// completed ends the stream
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection closed after completed")
	}
	waitFor(t, func() bool { return srv.trackingSubCount(order.ID) == 0 })
}

func TestOrderTrackingCompletedOrderClosesImmediately(t *testing.T) {
	_, st, httpServer := newTestWS(t)
	order := placeOrder(t, st)
	st.UpdateOrderStatus(order.ID, models.StatusCompleted)

	conn := dial(t, httpServer, "/ws/public/orders/"+order.ID)
	msg := readMessage(t, conn)
	if msg["type"] != "order.status" || msg["status"] != "completed" {
		t.Fatalf("expected completed status, got %v", msg)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected connection closed for completed order")
	}
}

func TestOrderTrackingUnknownOrder(t *testing.T) {
	_, _, httpServer := newTestWS(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(httpServer, "/ws/public/orders/missing"), nil)
	if err == nil {
		t.Fatalf("expected handshake rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
}
