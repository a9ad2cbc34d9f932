package payments

import "time"

const DefaultCurrency = "INR"

// OrderItem is a cart line as sent by the storefront. Name and UnitPrice are
// informational; pricing is done from the catalog.
type OrderItem struct {
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	UnitPrice float64 `json:"unitPrice,omitempty"`
}

type Customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// OrderRequest asks the gateway for an order of AmountMinor (paise for INR).
type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Items       []OrderItem
	Customer    Customer
}

// GatewayOrder is the gateway-issued order the hosted checkout is opened against.
type GatewayOrder struct {
	OrderID   string    `json:"orderId"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Receipt   string    `json:"receipt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Callback is what the hosted checkout hands back after payment. It is untrusted
// until Verify says otherwise.
type Callback struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

func (c Callback) complete() bool {
	return c.PaymentID != "" && c.OrderID != "" && c.Signature != ""
}
