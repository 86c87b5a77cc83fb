package handlers

import (
	"chiya-order-service/internal/config"
	"chiya-order-service/internal/storage"
	"chiya-order-service/internal/store"

	"go.uber.org/zap"
)

// Handler carries the shared dependencies of every HTTP handler. Objects is
// nil when no object store is configured; handlers needing it answer 503.
type Handler struct {
	Store   *store.Store
	Logger  *zap.Logger
	Config  config.Config
	Objects *storage.ObjectStore
}
