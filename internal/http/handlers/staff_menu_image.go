package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"chiya-order-service/internal/store"
	"chiya-order-service/internal/utils"
	"chiya-order-service/pkg/response"

	"go.uber.org/zap"
)

const (
	menuImageMaxSide = 1280
	menuImageQuality = 82
)

// StaffMenuUploadImage accepts a multipart photo for a menu item, shrinks
// and re-encodes it, publishes it to the object store and writes the public
// URL back onto the item. A previously published image is deleted best
// effort.
func (h *Handler) StaffMenuUploadImage(w http.ResponseWriter, r *http.Request) {
	if h.Objects == nil {
		response.Error(w, http.StatusServiceUnavailable, "OBJECT_STORE_DISABLED", "Image uploads are not configured")
		return
	}

	id := readPathString(r, "id")
	item, found := h.Store.MenuItem(id)
	if !found {
		notFound(w, "Menu item not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxFileSizeBytes)
	if err := r.ParseMultipartForm(h.Config.MaxFileSizeBytes); err != nil {
		badRequest(w, "File too large or invalid multipart body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		badRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "Failed to read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = utils.DetectContentType(data)
	}
	if !utils.ValidateImageContentType(contentType) {
		badRequest(w, "Unsupported image type")
		return
	}

	encoded, err := utils.EncodeJpegFitInside(data, menuImageMaxSide, menuImageQuality)
	if err != nil {
		badRequest(w, "Could not decode image")
		return
	}

	key := fmt.Sprintf("menu/%s/%d.jpg", id, time.Now().UnixMilli())
	url, err := h.Objects.PutObject(r.Context(), key, encoded, "image/jpeg", "")
	if err != nil {
		h.Logger.Error("menu image upload failed", zap.String("itemId", id), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store image")
		return
	}

	if item.ImageURL != nil {
		if err := h.Objects.DeleteURL(r.Context(), *item.ImageURL); err != nil {
			h.Logger.Warn("stale menu image delete failed", zap.String("itemId", id), zapError(err))
		}
	}

	updated, _ := h.Store.UpdateMenuItem(id, store.MenuItemPatch{ImageURL: &url})
	response.Success(w, updated)
}
