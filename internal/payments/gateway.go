package payments

import "context"

// Gateway is a payment provider able to mint orders and judge callbacks.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (GatewayOrder, error)
	VerifyPayment(ctx context.Context, cb Callback) (Verification, error)
}
