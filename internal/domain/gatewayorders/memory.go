package gatewayorders

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is the Store used when no database is configured.
type Memory struct {
	mu     sync.Mutex
	orders map[string]Order
}

func NewMemory() *Memory {
	return &Memory{orders: make(map[string]Order)}
}

func (m *Memory) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.orders[o.OrderID]; exists {
		return fmt.Errorf("create gateway order: %s already exists", o.OrderID)
	}
	if o.Currency == "" {
		o.Currency = "INR"
	}
	now := time.Now()
	o.Status = StatusCreated
	o.CreatedAt, o.UpdatedAt = now, now
	m.orders[o.OrderID] = *o
	return nil
}

func (m *Memory) GetByOrderID(_ context.Context, orderID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *Memory) MarkPaid(_ context.Context, orderID, paymentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return false, nil
	}
	if o.Status == StatusPaid && (o.PaymentID == nil || *o.PaymentID != paymentID) {
		return false, nil
	}
	o.Status = StatusPaid
	o.PaymentID = &paymentID
	o.UpdatedAt = time.Now()
	m.orders[orderID] = o
	return true, nil
}
