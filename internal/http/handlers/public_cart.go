package handlers

import (
	"encoding/json"
	"net/http"

	"chiya-order-service/internal/middleware"
	"chiya-order-service/internal/models"
	"chiya-order-service/pkg/response"
)

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		response.Error(w, http.StatusBadRequest, "SESSION_REQUIRED", "Customer session missing")
		return "", false
	}
	return session, true
}

func cartPayload(cart []models.CartItem) map[string]any {
	var total float64
	for _, line := range cart {
		total += line.Price * float64(line.Quantity)
	}
	return map[string]any{
		"items": cart,
		"total": total,
	}
}

func (h *Handler) CartGet(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	response.Success(w, cartPayload(h.Store.Cart(session)))
}

type cartAddRequest struct {
	ItemID string `json:"itemId"`
}

// CartAddItem puts one unit of a catalog item in the cart. A repeat add of
// the same item bumps the existing line instead of creating a second one.
func (h *Handler) CartAddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var body cartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ItemID == "" {
		badRequest(w, "Item id is required")
		return
	}

	item, found := h.Store.MenuItem(body.ItemID)
	if !found {
		notFound(w, "Menu item not found")
		return
	}
	if !item.IsAvailable {
		response.Error(w, http.StatusBadRequest, "ITEM_UNAVAILABLE", "Item is not available right now")
		return
	}

	response.Success(w, cartPayload(h.Store.AddToCart(session, item)))
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartUpdateQuantity sets a line's quantity; zero or below removes the line,
// which is how the decrement control empties a cart.
func (h *Handler) CartUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var body cartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	cart := h.Store.UpdateCartItemQuantity(session, readPathString(r, "id"), body.Quantity)
	response.Success(w, cartPayload(cart))
}

type cartNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) CartUpdateNotes(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var body cartNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	cart := h.Store.UpdateCartItemNotes(session, readPathString(r, "id"), body.Notes)
	response.Success(w, cartPayload(cart))
}

func (h *Handler) CartRemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	response.Success(w, cartPayload(h.Store.RemoveFromCart(session, readPathString(r, "id"))))
}

func (h *Handler) CartClear(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.Store.ClearCart(session)
	response.Success(w, cartPayload(nil))
}
