package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"chiya-order-service/internal/config"
	"chiya-order-service/internal/http/handlers"
	"chiya-order-service/internal/middleware"
	"chiya-order-service/internal/storage"
	"chiya-order-service/internal/store"
	"chiya-order-service/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(st *store.Store, logger *zap.Logger, cfg config.Config, objects *storage.ObjectStore, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{Store: st, Logger: logger, Config: cfg, Objects: objects}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.CustomerSession())

		r.Get("/shop", h.PublicShop)
		r.Get("/menu", h.PublicMenu)

		r.Get("/cart", h.CartGet)
		r.Post("/cart/items", h.CartAddItem)
		r.Patch("/cart/items/{id}", h.CartUpdateQuantity)
		r.Put("/cart/items/{id}/notes", h.CartUpdateNotes)
		r.Delete("/cart/items/{id}", h.CartRemoveItem)
		r.Delete("/cart", h.CartClear)

		r.Post("/orders", h.PublicCheckout)
		r.Get("/orders/{id}", h.PublicOrderGet)
	})

	r.Route("/api/staff", func(r chi.Router) {
		r.Get("/menu", h.StaffMenuList)
		r.Post("/menu", h.StaffMenuCreate)
		r.Get("/menu/{id}", h.StaffMenuDetail)
		r.Put("/menu/{id}", h.StaffMenuUpdate)
		r.Delete("/menu/{id}", h.StaffMenuDelete)
		r.Patch("/menu/{id}/toggle-available", h.StaffMenuToggleAvailable)
		r.Post("/menu/{id}/image", h.StaffMenuUploadImage)

		r.Get("/orders", h.StaffOrdersList)
		r.Get("/orders/{id}", h.StaffOrderDetail)
		r.Put("/orders/{id}/status", h.StaffOrderUpdateStatus)
		r.Post("/orders/{id}/items", h.StaffOrderAddItem)

		r.Get("/settings", h.StaffSettingsGet)
		r.Put("/settings", h.StaffSettingsUpdate)

		r.Get("/analytics/summary", h.StaffAnalyticsSummary)
		r.Get("/analytics/item-sales", h.StaffAnalyticsItemSales)
		r.Get("/analytics/peak-hours", h.StaffAnalyticsPeakHours)
		r.Get("/analytics/history", h.StaffAnalyticsHistory)
		r.Post("/analytics/end-day", h.StaffAnalyticsEndDay)

		r.Get("/tables", h.StaffTablesList)
		r.Get("/tables/{table}/qr.png", h.StaffTableQRCode)
		r.Get("/tables/qr-archive.zip", h.StaffTablesQRArchive)
		r.Get("/tables/qr-sheet.pdf", h.StaffTablesQRSheet)
		r.Post("/tables/qr/publish", h.StaffTablesQRPublish)
	})

	if wsServer != nil {
		r.Get("/ws/staff/orders", wsServer.StaffOrdersWS)
		r.Get("/ws/public/orders/{id}", wsServer.OrderTrackingWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

// Hijack keeps websocket upgrades working through the logging wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
