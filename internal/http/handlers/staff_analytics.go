package handlers

import (
	"net/http"
	"time"

	"chiya-order-service/internal/analytics"
	"chiya-order-service/pkg/response"

	"go.uber.org/zap"
)

func (h *Handler) StaffAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	response.Success(w, analytics.Summarize(h.Store.Orders(), time.Now()))
}

func (h *Handler) StaffAnalyticsItemSales(w http.ResponseWriter, r *http.Request) {
	response.Success(w, analytics.ItemSales(h.Store.MenuItems(), h.Store.Orders()))
}

func (h *Handler) StaffAnalyticsPeakHours(w http.ResponseWriter, r *http.Request) {
	response.Success(w, analytics.PeakHours(h.Store.Orders()))
}

// StaffAnalyticsHistory returns end-day snapshots most-recent-first for the
// dashboard's history table.
func (h *Handler) StaffAnalyticsHistory(w http.ResponseWriter, r *http.Request) {
	history := h.Store.AnalyticsHistory()
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	response.Success(w, history)
}

// StaffAnalyticsEndDay snapshots today's aggregates into history. Running it
// again the same day overwrites that date's entry, so it is safe to repeat.
func (h *Handler) StaffAnalyticsEndDay(w http.ResponseWriter, r *http.Request) {
	snapshot := h.Store.ResetDailyStats()
	h.Logger.Info("day closed",
		zap.String("date", snapshot.Date),
		zap.Float64("revenue", snapshot.Revenue),
		zap.Int("orders", snapshot.Orders),
	)
	response.Success(w, snapshot)
}
