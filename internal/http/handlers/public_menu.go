package handlers

import (
	"net/http"

	"chiya-order-service/internal/models"
	"chiya-order-service/pkg/response"
)

// PublicShop exposes the fields the customer page needs before ordering:
// shop identity, open/closed state and the table count the ?table= deep
// link is validated against.
func (h *Handler) PublicShop(w http.ResponseWriter, r *http.Request) {
	settings := h.Store.Settings()
	response.Success(w, map[string]any{
		"name":           settings.Name,
		"description":    settings.Description,
		"isOpen":         settings.IsOpen,
		"numberOfTables": settings.NumberOfTables,
	})
}

// PublicMenu lists the catalog. Filters are read-side projections only:
// category, availability and the promotional flags used for customer-facing
// sectioning.
func (h *Handler) PublicMenu(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" && !models.ValidCategory(category) {
		badRequest(w, "Unknown category")
		return
	}

	items := h.Store.MenuItems()
	filtered := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if category != "" && item.Category != category {
			continue
		}
		if value, ok := readBoolFlag(r, "available"); ok && item.IsAvailable != value {
			continue
		}
		if value, ok := readBoolFlag(r, "special"); ok && item.IsTodaySpecial != value {
			continue
		}
		if value, ok := readBoolFlag(r, "bestSelling"); ok && item.IsBestSelling != value {
			continue
		}
		if value, ok := readBoolFlag(r, "lowestPrice"); ok && item.IsLowestPrice != value {
			continue
		}
		filtered = append(filtered, item)
	}

	response.Success(w, filtered)
}
