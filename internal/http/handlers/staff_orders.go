package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"chiya-order-service/internal/models"
	"chiya-order-service/pkg/response"

	"go.uber.org/zap"
)

// StaffOrdersList returns orders most-recent-first, optionally filtered by
// status.
func (h *Handler) StaffOrdersList(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !models.ValidStatus(status) {
		badRequest(w, "Unknown status")
		return
	}

	orders := h.Store.Orders()
	if status != "" {
		filtered := make([]models.Order, 0, len(orders))
		for _, order := range orders {
			if order.Status == status {
				filtered = append(filtered, order)
			}
		}
		orders = filtered
	}

	response.Success(w, orders)
}

func (h *Handler) StaffOrderDetail(w http.ResponseWriter, r *http.Request) {
	order, found := h.Store.Order(readPathString(r, "id"))
	if !found {
		notFound(w, "Order not found")
		return
	}
	response.Success(w, order)
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// StaffOrderUpdateStatus replaces the status outright. Any of the four
// values is accepted regardless of the current one; the board offers the
// full set and a completed order can be pulled back.
func (h *Handler) StaffOrderUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if !models.ValidStatus(body.Status) {
		badRequest(w, "Status must be pending, preparing, ready or completed")
		return
	}

	order, found := h.Store.UpdateOrderStatus(readPathString(r, "id"), body.Status)
	if !found {
		notFound(w, "Order not found")
		return
	}

	h.Logger.Info("order status updated",
		zap.Int64("orderNumber", order.OrderNumber),
		zap.String("status", string(order.Status)),
	)
	response.Success(w, order)
}

type orderAddItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// StaffOrderAddItem appends a catalog item to an already placed order, e.g.
// when a table orders another round. The order total grows by exactly the
// new line's contribution.
func (h *Handler) StaffOrderAddItem(w http.ResponseWriter, r *http.Request) {
	var body orderAddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.ItemID) == "" {
		badRequest(w, "Item id is required")
		return
	}

	item, found := h.Store.MenuItem(body.ItemID)
	if !found {
		notFound(w, "Menu item not found")
		return
	}

	quantity := body.Quantity
	if quantity < 1 {
		quantity = 1
	}
	line := models.CartItem{MenuItem: item, Quantity: quantity, Notes: body.Notes}

	order, found := h.Store.AddItemToOrder(readPathString(r, "id"), line)
	if !found {
		notFound(w, "Order not found")
		return
	}
	response.Success(w, order)
}
