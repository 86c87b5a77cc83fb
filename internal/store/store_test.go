package store

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"chiya-order-service/internal/models"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func menuItem(id, name string, price float64) models.MenuItem {
	return models.MenuItem{
		ID:          id,
		Name:        name,
		Price:       price,
		Category:    models.CategoryTea,
		IsAvailable: true,
	}
}

func TestAddToCartMergesSameItem(t *testing.T) {
	s := newTestStore(t)
	item := s.AddMenuItem(menuItem("a", "Tea", 40))

	s.AddToCart("sess", item)
	cart := s.AddToCart("sess", item)

	if len(cart) != 1 {
		t.Fatalf("expected one line, got %d", len(cart))
	}
	if cart[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart[0].Quantity)
	}
}

func TestUpdateCartItemQuantityRemovesAtZeroOrBelow(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
	}{
		{name: "zero removes", quantity: 0},
		{name: "negative removes", quantity: -3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t)
			item := s.AddMenuItem(menuItem("a", "Tea", 40))
			s.AddToCart("sess", item)

			cart := s.UpdateCartItemQuantity("sess", "a", tc.quantity)
			if len(cart) != 0 {
				t.Fatalf("expected empty cart, got %d lines", len(cart))
			}
		})
	}
}

func TestUpdateCartItemQuantitySetsValue(t *testing.T) {
	s := newTestStore(t)
	item := s.AddMenuItem(menuItem("a", "Tea", 40))
	s.AddToCart("sess", item)

	cart := s.UpdateCartItemQuantity("sess", "a", 5)
	if cart[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart[0].Quantity)
	}
}

func TestCartsAreSessionScoped(t *testing.T) {
	s := newTestStore(t)
	item := s.AddMenuItem(menuItem("a", "Tea", 40))

	s.AddToCart("alice", item)
	if got := s.Cart("bob"); len(got) != 0 {
		t.Fatalf("expected empty cart for other session, got %d lines", len(got))
	}
}

func TestPlaceOrderCheckoutScenario(t *testing.T) {
	s := newTestStore(t)
	a := s.AddMenuItem(menuItem("a", "Tea", 40))
	b := s.AddMenuItem(menuItem("b", "Mandip Chiya", 500))

	s.AddToCart("sess", a)
	s.AddToCart("sess", a)
	s.AddToCart("sess", b)

	order, err := s.PlaceOrder("sess", 3, "")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if order.TableNumber != 3 {
		t.Fatalf("expected table 3, got %d", order.TableNumber)
	}
	if order.Total != 580 {
		t.Fatalf("expected total 580, got %v", order.Total)
	}
	if order.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.OrderNumber != 1 {
		t.Fatalf("expected order number 1, got %d", order.OrderNumber)
	}
	if len(order.Items) != 2 || order.Items[0].Quantity != 2 || order.Items[1].Quantity != 1 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if got := s.Cart("sess"); len(got) != 0 {
		t.Fatalf("expected cart cleared after checkout, got %d lines", len(got))
	}
}

func TestPlaceOrderPrependsNewest(t *testing.T) {
	s := newTestStore(t)
	item := s.AddMenuItem(menuItem("a", "Tea", 40))

	s.AddToCart("sess", item)
	first, _ := s.PlaceOrder("sess", 1, "")
	s.AddToCart("sess", item)
	second, _ := s.PlaceOrder("sess", 2, "")

	orders := s.Orders()
	if orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Fatalf("expected most-recent-first ordering")
	}
	if second.OrderNumber != first.OrderNumber+1 {
		t.Fatalf("expected sequential order numbers, got %d then %d", first.OrderNumber, second.OrderNumber)
	}
}

func TestPlaceOrderRejections(t *testing.T) {
	t.Run("shop closed", func(t *testing.T) {
		s := newTestStore(t)
		item := s.AddMenuItem(menuItem("a", "Tea", 40))
		s.AddToCart("sess", item)
		closed := false
		s.UpdateSettings(SettingsPatch{IsOpen: &closed})

		if _, err := s.PlaceOrder("sess", 1, ""); err != ErrShopClosed {
			t.Fatalf("expected ErrShopClosed, got %v", err)
		}
		if len(s.Orders()) != 0 {
			t.Fatalf("expected no order created")
		}
		if len(s.Cart("sess")) != 1 {
			t.Fatalf("expected cart untouched on rejection")
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		s := newTestStore(t)
		if _, err := s.PlaceOrder("sess", 1, ""); err != ErrEmptyCart {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("table out of range", func(t *testing.T) {
		s := newTestStore(t)
		item := s.AddMenuItem(menuItem("a", "Tea", 40))
		s.AddToCart("sess", item)

		for _, table := range []int{0, -1, 11} {
			if _, err := s.PlaceOrder("sess", table, ""); err != ErrInvalidTable {
				t.Fatalf("table %d: expected ErrInvalidTable, got %v", table, err)
			}
		}
	})
}

func TestUpdateOrderStatusAcceptsAnyTransition(t *testing.T) {
	s := newTestStore(t)
	item := s.AddMenuItem(menuItem("a", "Tea", 40))
	s.AddToCart("sess", item)
	order, _ := s.PlaceOrder("sess", 1, "")

	// pending straight to completed, then back again
	if got, ok := s.UpdateOrderStatus(order.ID, models.StatusCompleted); !ok || got.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %+v ok=%v", got, ok)
	}
	if got, ok := s.UpdateOrderStatus(order.ID, models.StatusPending); !ok || got.Status != models.StatusPending {
		t.Fatalf("expected pending again, got %+v ok=%v", got, ok)
	}

	if _, ok := s.UpdateOrderStatus("missing", models.StatusReady); ok {
		t.Fatalf("expected no-op for absent id")
	}
}

func TestAddItemToOrder(t *testing.T) {
	s := newTestStore(t)
	a := s.AddMenuItem(menuItem("a", "Tea", 40))
	b := s.AddMenuItem(menuItem("b", "Momo", 90))

	s.AddToCart("sess", a)
	order, _ := s.PlaceOrder("sess", 1, "")

	// same item: quantity merge
	merged, ok := s.AddItemToOrder(order.ID, models.CartItem{MenuItem: a, Quantity: 2})
	if !ok {
		t.Fatalf("expected order found")
	}
	if len(merged.Items) != 1 || merged.Items[0].Quantity != 3 {
		t.Fatalf("expected merged line with quantity 3, got %+v", merged.Items)
	}
	if merged.Total != 40+80 {
		t.Fatalf("expected total 120, got %v", merged.Total)
	}

	// new item: appended
	appended, _ := s.AddItemToOrder(order.ID, models.CartItem{MenuItem: b, Quantity: 1})
	if len(appended.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(appended.Items))
	}
	if appended.Total != 120+90 {
		t.Fatalf("expected total 210, got %v", appended.Total)
	}
}

func TestDeleteMenuItemKeepsOrderSnapshots(t *testing.T) {
	s := newTestStore(t)
	item := s.AddMenuItem(menuItem("a", "Tea", 40))
	s.AddToCart("sess", item)
	order, _ := s.PlaceOrder("sess", 1, "")

	if !s.DeleteMenuItem("a") {
		t.Fatalf("expected delete to succeed")
	}

	kept, _ := s.Order(order.ID)
	if len(kept.Items) != 1 || kept.Items[0].Name != "Tea" || kept.Total != 40 {
		t.Fatalf("expected order snapshot untouched, got %+v", kept)
	}
}

func TestUpdateMenuItemPatchAndNoop(t *testing.T) {
	s := newTestStore(t)
	s.AddMenuItem(menuItem("a", "Tea", 40))

	price := 45.0
	special := true
	item, ok := s.UpdateMenuItem("a", MenuItemPatch{Price: &price, IsTodaySpecial: &special})
	if !ok || item.Price != 45 || !item.IsTodaySpecial {
		t.Fatalf("unexpected update result: %+v ok=%v", item, ok)
	}
	if item.Name != "Tea" {
		t.Fatalf("unset fields must keep their value, got %q", item.Name)
	}

	if _, ok := s.UpdateMenuItem("missing", MenuItemPatch{Price: &price}); ok {
		t.Fatalf("expected no-op for absent id")
	}
}

func TestDiscountDerivation(t *testing.T) {
	s := newTestStore(t)

	original := 100.0
	item := s.AddMenuItem(models.MenuItem{
		ID:            "momo",
		Name:          "Momo",
		Price:         90,
		OriginalPrice: &original,
		Category:      models.CategorySnacks,
		IsAvailable:   true,
	})
	if item.Discount == nil || *item.Discount != 10 {
		t.Fatalf("expected 10%% discount, got %v", item.Discount)
	}

	// price raised above the original: discount disappears
	price := 120.0
	item, _ = s.UpdateMenuItem("momo", MenuItemPatch{Price: &price})
	if item.Discount != nil {
		t.Fatalf("expected no discount, got %d", *item.Discount)
	}

	// clearing the original price also clears the discount
	price = 90
	item, _ = s.UpdateMenuItem("momo", MenuItemPatch{Price: &price, OriginalPrice: &original})
	if item.Discount == nil || *item.Discount != 10 {
		t.Fatalf("expected discount back, got %v", item.Discount)
	}
	zero := 0.0
	item, _ = s.UpdateMenuItem("momo", MenuItemPatch{OriginalPrice: &zero})
	if item.OriginalPrice != nil || item.Discount != nil {
		t.Fatalf("expected original price and discount cleared, got %+v", item)
	}
}

func TestResetDailyStatsReplacesSameDate(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2026, 8, 31, 18, 0, 0, 0, time.Local) }

	item := s.AddMenuItem(menuItem("a", "Tea", 40))
	s.AddToCart("sess", item)
	order, _ := s.PlaceOrder("sess", 1, "")
	s.UpdateOrderStatus(order.ID, models.StatusCompleted)

	first := s.ResetDailyStats()
	if first.Date != "2026-08-31" || first.Revenue != 40 || first.Orders != 1 || first.CompletedOrders != 1 {
		t.Fatalf("unexpected first snapshot: %+v", first)
	}

	// another completed order, then end day again: same date, new values
	s.AddToCart("sess", item)
	second, _ := s.PlaceOrder("sess", 2, "")
	s.UpdateOrderStatus(second.ID, models.StatusCompleted)
	replaced := s.ResetDailyStats()

	history := s.AnalyticsHistory()
	if len(history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history))
	}
	if history[0].Revenue != replaced.Revenue || replaced.Revenue != 80 {
		t.Fatalf("expected second call's values, got %+v", history[0])
	}
}

func TestPlaceOrderReturnsDetachedCopy(t *testing.T) {
	s := newTestStore(t)
	item := s.AddMenuItem(menuItem("a", "Tea", 40))
	s.AddToCart("sess", item)
	s.AddToCart("sess", item)

	placed, err := s.PlaceOrder("sess", 1, "")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	// a later merge into the stored order must not reach through the value
	// handed back at checkout
	s.AddItemToOrder(placed.ID, models.CartItem{MenuItem: item, Quantity: 3})
	if placed.Items[0].Quantity != 2 {
		t.Fatalf("returned order aliases store state: quantity became %d", placed.Items[0].Quantity)
	}

	// and the other direction: mutating the returned value leaves the store alone
	placed.Items[0].Quantity = 99
	stored, _ := s.Order(placed.ID)
	if stored.Items[0].Quantity != 5 {
		t.Fatalf("store state tracked the returned value: quantity %d", stored.Items[0].Quantity)
	}
}

func TestConcurrentStatusUpdatesDeliverEventsInCommitOrder(t *testing.T) {
	s := newTestStore(t)
	item := s.AddMenuItem(menuItem("a", "Tea", 40))
	s.AddToCart("sess", item)
	order, _ := s.PlaceOrder("sess", 1, "")

	var eventsMu sync.Mutex
	var statuses []models.OrderStatus
	s.OnEvent(func(e Event) {
		if e.Type != EventOrderStatusUpdated {
			return
		}
		eventsMu.Lock()
		statuses = append(statuses, e.Order.Status)
		eventsMu.Unlock()
	})

	cycle := []models.OrderStatus{
		models.StatusPreparing, models.StatusReady, models.StatusCompleted, models.StatusPending,
	}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(status models.OrderStatus) {
			defer wg.Done()
			s.UpdateOrderStatus(order.ID, status)
		}(cycle[i%len(cycle)])
	}
	wg.Wait()

	if len(statuses) != 40 {
		t.Fatalf("expected 40 events, got %d", len(statuses))
	}
	// the last delivered event carries the status the store settled on
	final, _ := s.Order(order.ID)
	if statuses[len(statuses)-1] != final.Status {
		t.Fatalf("last event %s does not match stored status %s", statuses[len(statuses)-1], final.Status)
	}
}

func TestSeedDemoMenu(t *testing.T) {
	s := newTestStore(t)
	s.SeedDemoMenu()

	items := s.MenuItems()
	if len(items) != 3 {
		t.Fatalf("expected 3 starter items, got %d", len(items))
	}
	if items[2].Discount == nil || *items[2].Discount != 10 {
		t.Fatalf("expected derived 10%% discount on momo, got %v", items[2].Discount)
	}

	// seeding is only for an empty catalog
	s.DeleteMenuItem("1")
	s.SeedDemoMenu()
	if got := s.MenuItems(); len(got) != 2 {
		t.Fatalf("expected seed to stay a no-op, got %d items", len(got))
	}
}

func TestPlaceOrderEmitsEvent(t *testing.T) {
	s := newTestStore(t)
	var events []Event
	s.OnEvent(func(e Event) { events = append(events, e) })

	item := s.AddMenuItem(menuItem("a", "Tea", 40))
	s.AddToCart("sess", item)
	order, _ := s.PlaceOrder("sess", 1, "")
	s.UpdateOrderStatus(order.ID, models.StatusReady)

	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].Type != EventOrderCreated || events[0].Order.ID != order.ID {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if !events[0].Settings.SoundAlerts {
		t.Fatalf("expected default sound alert setting on event")
	}
	if events[1].Type != EventOrderStatusUpdated || events[1].Order.Status != models.StatusReady {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}
