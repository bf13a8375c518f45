package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys of the events published after a unit of work commits.
const (
	EventOrderPlaced          = "order.placed"
	EventOrderStatusChanged   = "order.status_changed"
	EventPaymentStatusChanged = "order.payment_status_changed"
)

// EventPublisher delivers order events to interested consumers. Publishing happens only
// after commit and its failure never undoes the committed change.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// OrderPlacedEvent is published once an order is committed.
type OrderPlacedEvent struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       int             `json:"lines"`
	PlacedAt    time.Time       `json:"placed_at"`
}

// StatusChangedEvent is published after an order or payment status transition.
type StatusChangedEvent struct {
	OrderID   string    `json:"order_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}
