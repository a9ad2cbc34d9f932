package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rayalaseema/internal/catalog"
	"rayalaseema/internal/payments"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	Amount   decimal.Decimal      `json:"amount"`
	Currency string               `json:"currency,omitempty"`
	Items    []payments.OrderItem `json:"items,omitempty"`
	Customer payments.Customer    `json:"customer"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// OrderCreator and Verifier are the two server calls a checkout needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error)
}

type Verifier interface {
	Verify(ctx context.Context, cb payments.Callback) (payments.Verification, error)
}

// Client talks to the storefront server. It never holds the gateway secret.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15*time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error) {
	var out CreateOrderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/v1/payments/orders")
	if err != nil {
		return CreateOrderResponse{}, &payments.GatewayError{Body: err.Error()}
	}
	if resp.IsError() {
		return CreateOrderResponse{}, &payments.GatewayError{Status: resp.StatusCode(), Body: errorMessage(resp.Body())}
	}
	if out.OrderID == "" {
		return CreateOrderResponse{}, fmt.Errorf("create order: empty order id in response")
	}
	return out, nil
}

// Verify asks the server to check cb. Incomplete callbacks are rejected without a request.
func (c *Client) Verify(ctx context.Context, cb payments.Callback) (payments.Verification, error) {
	if cb.PaymentID == "" || cb.OrderID == "" || cb.Signature == "" {
		return payments.Verification{}, payments.ErrMissingFields
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(cb).
		Post("/v1/payments/verify")
	if err != nil {
		return payments.Verification{}, &payments.GatewayError{Body: err.Error()}
	}
	return payments.VerificationFromResponse(resp.StatusCode(), resp.Body(), cb)
}

func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var envelope struct {
		Data []catalog.Product `json:"data"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&envelope).
		Get("/v1/products")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &payments.GatewayError{Status: resp.StatusCode(), Body: errorMessage(resp.Body())}
	}
	return envelope.Data, nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return string(body)
}
