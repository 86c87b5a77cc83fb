package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"chiya-order-service/internal/qr"
	"chiya-order-service/pkg/response"

	"go.uber.org/zap"
)

type tableInfo struct {
	TableNumber int    `json:"tableNumber"`
	DeepLink    string `json:"deepLink"`
}

func (h *Handler) StaffTablesList(w http.ResponseWriter, r *http.Request) {
	settings := h.Store.Settings()
	tables := make([]tableInfo, 0, settings.NumberOfTables)
	for n := 1; n <= settings.NumberOfTables; n++ {
		tables = append(tables, tableInfo{
			TableNumber: n,
			DeepLink:    qr.DeepLink(h.Config.ShopBaseURL, n),
		})
	}
	response.Success(w, tables)
}

// StaffTableQRCode serves one table's code as a PNG, sized via ?size=.
func (h *Handler) StaffTableQRCode(w http.ResponseWriter, r *http.Request) {
	table, ok := readPathInt(r, "table")
	if !ok || table < 1 || table > h.Store.Settings().NumberOfTables {
		badRequest(w, "Unknown table")
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	png, err := qr.TablePNG(h.Config.ShopBaseURL, table, size)
	if err != nil {
		h.Logger.Error("qr render failed", zap.Int("table", table), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="table-%d-qr.png"`, table))
	_, _ = w.Write(png)
}

// StaffTablesQRArchive bundles every table's code into one ZIP download.
func (h *Handler) StaffTablesQRArchive(w http.ResponseWriter, r *http.Request) {
	settings := h.Store.Settings()
	archive, err := qr.ArchiveZip(settings.Name, h.Config.ShopBaseURL, settings.NumberOfTables)
	if err != nil {
		h.Logger.Error("qr archive failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-qr-codes.zip"`, qr.Slug(settings.Name)))
	_, _ = w.Write(archive)
}

// StaffTablesQRSheet renders a printable A4 sheet of labeled table codes.
func (h *Handler) StaffTablesQRSheet(w http.ResponseWriter, r *http.Request) {
	settings := h.Store.Settings()
	sheet, err := qr.SheetPDF(settings.Name, h.Config.ShopBaseURL, settings.NumberOfTables)
	if err != nil {
		h.Logger.Error("qr sheet failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build sheet")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-qr-sheet.pdf"`, qr.Slug(settings.Name)))
	_, _ = w.Write(sheet)
}

// StaffTablesQRPublish pushes every table's code to the object store so the
// links can be handed to a print shop without downloading anything.
func (h *Handler) StaffTablesQRPublish(w http.ResponseWriter, r *http.Request) {
	if h.Objects == nil {
		response.Error(w, http.StatusServiceUnavailable, "OBJECT_STORE_DISABLED", "Object store is not configured")
		return
	}

	settings := h.Store.Settings()
	published := make([]map[string]any, 0, settings.NumberOfTables)
	for n := 1; n <= settings.NumberOfTables; n++ {
		png, err := qr.TablePNG(h.Config.ShopBaseURL, n, 0)
		if err != nil {
			h.Logger.Error("qr render failed", zap.Int("table", n), zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render QR code")
			return
		}

		url, err := h.Objects.PutObject(r.Context(), fmt.Sprintf("qr/table-%d.png", n), png, "image/png", "")
		if err != nil {
			h.Logger.Error("qr upload failed", zap.Int("table", n), zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload QR code")
			return
		}
		published = append(published, map[string]any{"tableNumber": n, "url": url})
	}

	response.Success(w, published)
}
