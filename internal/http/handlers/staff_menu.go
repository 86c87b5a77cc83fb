package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"chiya-order-service/internal/models"
	"chiya-order-service/internal/store"
	"chiya-order-service/pkg/response"
)

func (h *Handler) StaffMenuList(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.Store.MenuItems())
}

type menuItemRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          *float64 `json:"price"`
	OriginalPrice  *float64 `json:"originalPrice"`
	Category       string   `json:"category"`
	IsAvailable    *bool    `json:"isAvailable"`
	IsTodaySpecial bool     `json:"isTodaySpecial"`
	IsBestSelling  bool     `json:"isBestSelling"`
	IsLowestPrice  bool     `json:"isLowestPrice"`
}

func (h *Handler) StaffMenuCreate(w http.ResponseWriter, r *http.Request) {
	var body menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	if strings.TrimSpace(body.Name) == "" {
		badRequest(w, "Name is required")
		return
	}
	if body.Price == nil || *body.Price < 0 {
		badRequest(w, "Price must be zero or positive")
		return
	}
	if !models.ValidCategory(body.Category) {
		badRequest(w, "Category must be tea, snacks or extras")
		return
	}

	item := models.MenuItem{
		Name:           strings.TrimSpace(body.Name),
		Description:    body.Description,
		Price:          *body.Price,
		OriginalPrice:  body.OriginalPrice,
		Category:       body.Category,
		IsAvailable:    true,
		IsTodaySpecial: body.IsTodaySpecial,
		IsBestSelling:  body.IsBestSelling,
		IsLowestPrice:  body.IsLowestPrice,
	}
	if body.IsAvailable != nil {
		item.IsAvailable = *body.IsAvailable
	}

	response.Created(w, h.Store.AddMenuItem(item))
}

func (h *Handler) StaffMenuDetail(w http.ResponseWriter, r *http.Request) {
	item, found := h.Store.MenuItem(readPathString(r, "id"))
	if !found {
		notFound(w, "Menu item not found")
		return
	}
	response.Success(w, item)
}

func (h *Handler) StaffMenuUpdate(w http.ResponseWriter, r *http.Request) {
	var patch store.MenuItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	if patch.Price != nil && *patch.Price < 0 {
		badRequest(w, "Price must be zero or positive")
		return
	}
	if patch.Category != nil && !models.ValidCategory(*patch.Category) {
		badRequest(w, "Category must be tea, snacks or extras")
		return
	}

	item, found := h.Store.UpdateMenuItem(readPathString(r, "id"), patch)
	if !found {
		notFound(w, "Menu item not found")
		return
	}
	response.Success(w, item)
}

func (h *Handler) StaffMenuDelete(w http.ResponseWriter, r *http.Request) {
	if !h.Store.DeleteMenuItem(readPathString(r, "id")) {
		notFound(w, "Menu item not found")
		return
	}
	response.Success(w, map[string]any{"deleted": true})
}

// StaffMenuToggleAvailable flips availability without the client having to
// send the current value.
func (h *Handler) StaffMenuToggleAvailable(w http.ResponseWriter, r *http.Request) {
	id := readPathString(r, "id")
	item, found := h.Store.MenuItem(id)
	if !found {
		notFound(w, "Menu item not found")
		return
	}

	next := !item.IsAvailable
	updated, _ := h.Store.UpdateMenuItem(id, store.MenuItemPatch{IsAvailable: &next})
	response.Success(w, updated)
}
