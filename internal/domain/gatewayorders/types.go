package gatewayorders

import (
	"context"
	"time"
)

const (
	StatusCreated = "created"
	StatusPaid    = "paid"
)

// Order is the server's record of an order minted at the gateway.
type Order struct {
	OrderID     string    `json:"order_id"`
	Receipt     string    `json:"receipt"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"` // created, paid
	PaymentID   *string   `json:"payment_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, o *Order) error
	// GetByOrderID returns nil, nil when the order is unknown.
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	// MarkPaid is idempotent for the same payment; it reports false when the
	// order is unknown or already paid by a different payment.
	MarkPaid(ctx context.Context, orderID, paymentID string) (bool, error)
}
