package store

import "chiya-order-service/internal/models"

type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusUpdated EventType = "order.status.updated"
)

// Event is delivered synchronously to listeners after the mutation commits.
// Settings is the value at emit time so consumers can honor the sound-alert
// and notification toggles without re-reading the store.
type Event struct {
	Type     EventType
	Order    models.Order
	Settings models.ShopSettings
}
