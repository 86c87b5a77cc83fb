package models

import "time"

// MenuCategory values a catalog item can belong to.
const (
	CategoryTea    = "tea"
	CategorySnacks = "snacks"
	CategoryExtras = "extras"
)

func ValidCategory(category string) bool {
	switch category {
	case CategoryTea, CategorySnacks, CategoryExtras:
		return true
	}
	return false
}

// OrderStatus is a free-form field with four conventional values. Staff can
// move an order between any two of them; there is no transition table.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
)

func ValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted:
		return true
	}
	return false
}

type MenuItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	OriginalPrice  *float64 `json:"originalPrice,omitempty"`
	Category       string   `json:"category"`
	IsAvailable    bool     `json:"isAvailable"`
	IsTodaySpecial bool     `json:"isTodaySpecial"`
	IsBestSelling  bool     `json:"isBestSelling"`
	IsLowestPrice  bool     `json:"isLowestPrice"`
	// Discount is derived: percent off when OriginalPrice is set above Price.
	Discount *int    `json:"discount,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

// CartItem is a menu item snapshot plus a quantity. Orders embed these
// copies, so later catalog edits or deletes never reach past orders.
type CartItem struct {
	MenuItem
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

type Order struct {
	ID          string      `json:"id"`
	OrderNumber int64       `json:"orderNumber"`
	TableNumber int         `json:"tableNumber"`
	Items       []CartItem  `json:"items"`
	Total       float64     `json:"total"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	Notes       string      `json:"notes,omitempty"`
}

type ShopSettings struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	IsOpen               bool   `json:"isOpen"`
	NumberOfTables       int    `json:"numberOfTables"`
	SoundAlerts          bool   `json:"soundAlerts"`
	BrowserNotifications bool   `json:"browserNotifications"`
}

type TopItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// DailyAnalytics is one "End Day" snapshot. History holds at most one entry
// per calendar date; re-running end day overwrites that date's entry.
type DailyAnalytics struct {
	Date            string    `json:"date"`
	Revenue         float64   `json:"revenue"`
	Orders          int       `json:"orders"`
	CompletedOrders int       `json:"completedOrders"`
	TopItems        []TopItem `json:"topItems"`
}
