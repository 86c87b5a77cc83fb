package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chiya-order-service/internal/store"
	"chiya-order-service/pkg/response"

	"go.uber.org/zap"
)

type checkoutRequest struct {
	TableNumber int    `json:"tableNumber"`
	Notes       string `json:"notes"`
}

// PublicCheckout turns the session cart into an order. Rejections (closed
// shop, empty cart, bad table) come back as 400s with a code before any
// order exists.
func (h *Handler) PublicCheckout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var body checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	order, err := h.Store.PlaceOrder(session, body.TableNumber, body.Notes)
	switch {
	case errors.Is(err, store.ErrShopClosed):
		response.Error(w, http.StatusBadRequest, "SHOP_CLOSED", "Shop is closed right now")
		return
	case errors.Is(err, store.ErrEmptyCart):
		response.Error(w, http.StatusBadRequest, "CART_EMPTY", "Cart is empty")
		return
	case errors.Is(err, store.ErrInvalidTable):
		response.Error(w, http.StatusBadRequest, "INVALID_TABLE", "Please select a valid table")
		return
	case err != nil:
		h.Logger.Error("checkout failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		return
	}

	h.Logger.Info("order placed",
		zap.Int64("orderNumber", order.OrderNumber),
		zap.Int("tableNumber", order.TableNumber),
		zap.Float64("total", order.Total),
	)
	response.Created(w, order)
}

// PublicOrderGet lets the customer view re-read their order. Live status
// updates go over the tracking websocket instead.
func (h *Handler) PublicOrderGet(w http.ResponseWriter, r *http.Request) {
	order, found := h.Store.Order(readPathString(r, "id"))
	if !found {
		notFound(w, "Order not found")
		return
	}
	response.Success(w, order)
}
