package payments

import (
	"context"
	"fmt"
)

type PaymentManager struct {
	gateways map[string]Gateway
}

func NewPaymentManager() *PaymentManager {
	return &PaymentManager{gateways: make(map[string]Gateway)}
}

func (m *PaymentManager) RegisterGateway(name string, gateway Gateway) {
	m.gateways[name] = gateway
}

func (m *PaymentManager) gateway(name string) (Gateway, error) {
	g, ok := m.gateways[name]
	if !ok {
		return nil, fmt.Errorf("gateway not registered: %s", name)
	}
	return g, nil
}

func (m *PaymentManager) CreateOrder(ctx context.Context, method string, req OrderRequest) (GatewayOrder, error) {
	g, err := m.gateway(method)
	if err != nil {
		return GatewayOrder{}, err
	}
	return g.CreateOrder(ctx, req)
}

func (m *PaymentManager) VerifyPayment(ctx context.Context, method string, cb Callback) (Verification, error) {
	g, err := m.gateway(method)
	if err != nil {
		return Verification{}, err
	}
	return g.VerifyPayment(ctx, cb)
}
