// Package store is the single state container for the shop: catalog, carts,
// orders, settings and analytics history live here behind one lock. Every
// mutation is synchronous, persists a whole-state snapshot to the data file,
// and (for orders) notifies registered event listeners.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"chiya-order-service/internal/analytics"
	"chiya-order-service/internal/models"

	"go.uber.org/zap"
)

type Store struct {
	logger *zap.Logger
	path   string
	now    func() time.Time

	mu             sync.Mutex
	menuItems      []models.MenuItem
	orders         []models.Order
	settings       models.ShopSettings
	history        []models.DailyAnalytics
	lastOrderCount int64
	carts          map[string][]models.CartItem

	// emitMu is taken before mu is released so listeners observe events in
	// commit order even when mutations race.
	emitMu    sync.Mutex
	listeners []func(Event)
}

// DefaultSettings are applied on first start, before staff touch the
// settings page.
func DefaultSettings() models.ShopSettings {
	return models.ShopSettings{
		Name:                 "Dai Ko Chiya",
		Description:          "Welcome! Scan, order, enjoy.",
		IsOpen:               true,
		NumberOfTables:       10,
		SoundAlerts:          true,
		BrowserNotifications: false,
	}
}

// DemoMenu is the starter catalog seeded on an empty development install so
// the customer page is not blank on first scan.
func DemoMenu() []models.MenuItem {
	originalPrice := 100.0
	return []models.MenuItem{
		{
			ID:             "1",
			Name:           "Tea",
			Description:    "Milk",
			Price:          40,
			Category:       models.CategoryTea,
			IsAvailable:    true,
			IsTodaySpecial: true,
		},
		{
			ID:          "2",
			Name:        "Mandip Chiya",
			Description: "Boka",
			Price:       500,
			Category:    models.CategoryTea,
			IsAvailable: true,
		},
		{
			ID:             "3",
			Name:           "momo",
			Description:    "Steamed dumplings",
			Price:          90,
			OriginalPrice:  &originalPrice,
			Category:       models.CategorySnacks,
			IsAvailable:    true,
			IsTodaySpecial: true,
		},
	}
}

// SeedDemoMenu installs DemoMenu when the catalog is empty. No-op otherwise,
// so a shop that deleted the starter items does not get them back.
func (s *Store) SeedDemoMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.menuItems) > 0 {
		return
	}
	items := DemoMenu()
	for i := range items {
		deriveDiscount(&items[i])
	}
	s.menuItems = items
	s.persistLocked()
}

// Open rehydrates the store from the snapshot at path, or starts fresh with
// defaults when no snapshot exists yet.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		logger:   logger,
		path:     path,
		now:      time.Now,
		settings: DefaultSettings(),
		carts:    make(map[string][]models.CartItem),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// OnEvent registers a listener for order events. Registration happens at the
// composition root before the server starts; there is no unsubscribe.
func (s *Store) OnEvent(fn func(Event)) {
	s.listeners = append(s.listeners, fn)
}

// --- Menu catalog ---

func (s *Store) MenuItems() []models.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMenu(s.menuItems)
}

func (s *Store) MenuItem(id string) (models.MenuItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.menuItems {
		if item.ID == id {
			return item, true
		}
	}
	return models.MenuItem{}, false
}

// AddMenuItem appends the item to the catalog. Missing ids are filled in;
// duplicate ids are a caller error the store does not detect.
func (s *Store) AddMenuItem(item models.MenuItem) models.MenuItem {
	if item.ID == "" {
		item.ID = newID()
	}
	deriveDiscount(&item)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuItems = append(s.menuItems, item)
	s.persistLocked()
	return item
}

type MenuItemPatch struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	Price          *float64 `json:"price"`
	OriginalPrice  *float64 `json:"originalPrice"`
	Category       *string  `json:"category"`
	IsAvailable    *bool    `json:"isAvailable"`
	IsTodaySpecial *bool    `json:"isTodaySpecial"`
	IsBestSelling  *bool    `json:"isBestSelling"`
	IsLowestPrice  *bool    `json:"isLowestPrice"`
	ImageURL       *string  `json:"imageUrl"`
}

// UpdateMenuItem merges the set fields of patch into the matching item.
// No-op when the id is absent.
func (s *Store) UpdateMenuItem(id string, patch MenuItemPatch) (models.MenuItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menuItems {
		if s.menuItems[i].ID != id {
			continue
		}
		item := &s.menuItems[i]
		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Price != nil {
			item.Price = *patch.Price
		}
		if patch.OriginalPrice != nil {
			if *patch.OriginalPrice <= 0 {
				item.OriginalPrice = nil
			} else {
				value := *patch.OriginalPrice
				item.OriginalPrice = &value
			}
		}
		if patch.Category != nil {
			item.Category = *patch.Category
		}
		if patch.IsAvailable != nil {
			item.IsAvailable = *patch.IsAvailable
		}
		if patch.IsTodaySpecial != nil {
			item.IsTodaySpecial = *patch.IsTodaySpecial
		}
		if patch.IsBestSelling != nil {
			item.IsBestSelling = *patch.IsBestSelling
		}
		if patch.IsLowestPrice != nil {
			item.IsLowestPrice = *patch.IsLowestPrice
		}
		if patch.ImageURL != nil {
			if *patch.ImageURL == "" {
				item.ImageURL = nil
			} else {
				value := *patch.ImageURL
				item.ImageURL = &value
			}
		}
		deriveDiscount(item)
		s.persistLocked()
		return *item, true
	}
	return models.MenuItem{}, false
}

// DeleteMenuItem removes the matching item. Past orders keep their embedded
// line-item copies untouched. No-op when the id is absent.
func (s *Store) DeleteMenuItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menuItems {
		if s.menuItems[i].ID == id {
			s.menuItems = append(s.menuItems[:i], s.menuItems[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

func deriveDiscount(item *models.MenuItem) {
	if item.OriginalPrice != nil && *item.OriginalPrice > item.Price && *item.OriginalPrice > 0 {
		percent := int(math.Round((1 - item.Price / *item.OriginalPrice) * 100))
		item.Discount = &percent
		return
	}
	item.Discount = nil
}

// --- Cart (per customer session, never persisted) ---

func (s *Store) Cart(session string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCart(s.carts[session])
}

// AddToCart merges the item into the session cart: at most one line per item
// id, quantity incremented on repeat adds.
func (s *Store) AddToCart(session string, item models.MenuItem) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[session]
	for i := range cart {
		if cart[i].ID == item.ID {
			cart[i].Quantity++
			return cloneCart(cart)
		}
	}
	cart = append(cart, models.CartItem{MenuItem: item, Quantity: 1})
	s.carts[session] = cart
	return cloneCart(cart)
}

// UpdateCartItemQuantity sets the line's quantity; zero or below removes the
// line entirely.
func (s *Store) UpdateCartItemQuantity(session, id string, quantity int) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[session]
	for i := range cart {
		if cart[i].ID != id {
			continue
		}
		if quantity <= 0 {
			cart = append(cart[:i], cart[i+1:]...)
			s.carts[session] = cart
		} else {
			cart[i].Quantity = quantity
		}
		break
	}
	return cloneCart(s.carts[session])
}

func (s *Store) UpdateCartItemNotes(session, id, notes string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[session]
	for i := range cart {
		if cart[i].ID == id {
			cart[i].Notes = notes
			break
		}
	}
	return cloneCart(cart)
}

func (s *Store) RemoveFromCart(session, id string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[session]
	for i := range cart {
		if cart[i].ID == id {
			cart = append(cart[:i], cart[i+1:]...)
			s.carts[session] = cart
			break
		}
	}
	return cloneCart(s.carts[session])
}

func (s *Store) ClearCart(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, session)
}

// --- Orders ---

func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrders(s.orders)
}

func (s *Store) Order(id string) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.ID == id {
			return cloneOrder(order), true
		}
	}
	return models.Order{}, false
}

// PlaceOrder turns the session cart into a new order. Rejections happen
// before any order is created: closed shop, empty cart, table outside
// 1..numberOfTables. The new order starts pending, gets the next value of
// the monotonic order counter, and is prepended so iteration is
// most-recent-first. The cart is cleared on success.
func (s *Store) PlaceOrder(session string, tableNumber int, notes string) (models.Order, error) {
	s.mu.Lock()
	if !s.settings.IsOpen {
		s.mu.Unlock()
		return models.Order{}, ErrShopClosed
	}
	cart := s.carts[session]
	if len(cart) == 0 {
		s.mu.Unlock()
		return models.Order{}, ErrEmptyCart
	}
	if tableNumber < 1 || tableNumber > s.settings.NumberOfTables {
		s.mu.Unlock()
		return models.Order{}, ErrInvalidTable
	}

	var total float64
	for _, line := range cart {
		total += line.Price * float64(line.Quantity)
	}

	s.lastOrderCount++
	order := models.Order{
		ID:          newID(),
		OrderNumber: s.lastOrderCount,
		TableNumber: tableNumber,
		Items:       cloneCart(cart),
		Total:       total,
		Status:      models.StatusPending,
		CreatedAt:   s.now(),
		Notes:       notes,
	}
	s.orders = append([]models.Order{order}, s.orders...)
	delete(s.carts, session)
	s.persistLocked()
	event := Event{Type: EventOrderCreated, Order: cloneOrder(order), Settings: s.settings}
	s.emitMu.Lock()
	s.mu.Unlock()

	s.emit(event)
	s.emitMu.Unlock()
	return cloneOrder(order), nil
}

// UpdateOrderStatus replaces the status field directly; any target is
// accepted from any current state, completed included. No-op on absent ids.
func (s *Store) UpdateOrderStatus(id string, status models.OrderStatus) (models.Order, bool) {
	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		s.orders[i].Status = status
		s.persistLocked()
		order := cloneOrder(s.orders[i])
		event := Event{Type: EventOrderStatusUpdated, Order: order, Settings: s.settings}
		s.emitMu.Lock()
		s.mu.Unlock()
		s.emit(event)
		s.emitMu.Unlock()
		return order, true
	}
	s.mu.Unlock()
	return models.Order{}, false
}

// AddItemToOrder merges a line into an existing order (quantity bump on a
// matching item id, append otherwise) and adds the line's contribution to
// the order total. The rest of the total is not recomputed.
func (s *Store) AddItemToOrder(orderID string, item models.CartItem) (models.Order, bool) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != orderID {
			continue
		}
		order := &s.orders[i]
		merged := false
		for j := range order.Items {
			if order.Items[j].ID == item.ID {
				order.Items[j].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			order.Items = append(order.Items, item)
		}
		order.Total += item.Price * float64(item.Quantity)
		s.persistLocked()
		return cloneOrder(*order), true
	}
	return models.Order{}, false
}

// --- Settings ---

func (s *Store) Settings() models.ShopSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

type SettingsPatch struct {
	Name                 *string `json:"name"`
	Description          *string `json:"description"`
	IsOpen               *bool   `json:"isOpen"`
	NumberOfTables       *int    `json:"numberOfTables"`
	SoundAlerts          *bool   `json:"soundAlerts"`
	BrowserNotifications *bool   `json:"browserNotifications"`
}

func (s *Store) UpdateSettings(patch SettingsPatch) models.ShopSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Name != nil {
		s.settings.Name = *patch.Name
	}
	if patch.Description != nil {
		s.settings.Description = *patch.Description
	}
	if patch.IsOpen != nil {
		s.settings.IsOpen = *patch.IsOpen
	}
	if patch.NumberOfTables != nil && *patch.NumberOfTables > 0 {
		s.settings.NumberOfTables = *patch.NumberOfTables
	}
	if patch.SoundAlerts != nil {
		s.settings.SoundAlerts = *patch.SoundAlerts
	}
	if patch.BrowserNotifications != nil {
		s.settings.BrowserNotifications = *patch.BrowserNotifications
	}
	s.persistLocked()
	return s.settings
}

// --- Analytics history ---

func (s *Store) AnalyticsHistory() []models.DailyAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DailyAnalytics, len(s.history))
	copy(out, s.history)
	return out
}

// ResetDailyStats snapshots today's aggregates into history, replacing any
// existing entry for the same date. Orders themselves are left alone; this
// is the only archival mechanism in the system and is safe to re-run.
func (s *Store) ResetDailyStats() models.DailyAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := analytics.DailySnapshot(s.orders, s.now())
	replaced := false
	for i := range s.history {
		if s.history[i].Date == snapshot.Date {
			s.history[i] = snapshot
			replaced = true
			break
		}
	}
	if !replaced {
		s.history = append(s.history, snapshot)
	}
	s.persistLocked()
	return snapshot
}

// --- helpers ---

func (s *Store) emit(event Event) {
	for _, fn := range s.listeners {
		fn(event)
	}
}

func newID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

func cloneMenu(items []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, len(items))
	copy(out, items)
	return out
}

func cloneCart(cart []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(cart))
	copy(out, cart)
	return out
}

func cloneOrder(order models.Order) models.Order {
	order.Items = cloneCart(order.Items)
	return order
}

func cloneOrders(orders []models.Order) []models.Order {
	out := make([]models.Order, len(orders))
	for i, order := range orders {
		out[i] = cloneOrder(order)
	}
	return out
}
