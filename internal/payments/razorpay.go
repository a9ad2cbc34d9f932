package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultRazorpayURL = "https://api.razorpay.com"

type RazorpayAdapter struct {
	KeyID      string
	keySecret  string
	client     *resty.Client
	verifier   *SignatureVerifier
	newBackOff func() backoff.BackOff
	logger     *zap.SugaredLogger
}

type RazorpayOption func(*RazorpayAdapter)

// WithBackOff replaces the retry policy used for order creation.
func WithBackOff(fn func() backoff.BackOff) RazorpayOption {
	return func(r *RazorpayAdapter) { r.newBackOff = fn }
}

func WithLogger(logger *zap.SugaredLogger) RazorpayOption {
	return func(r *RazorpayAdapter) { r.logger = logger }
}

func NewRazorpayAdapter(keyID, keySecret, baseURL string, opts ...RazorpayOption) *RazorpayAdapter {
	if baseURL == "" {
		baseURL = DefaultRazorpayURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")

	r := &RazorpayAdapter{
		KeyID:      keyID,
		keySecret:  keySecret,
		client:     client,
		verifier:   NewSignatureVerifier(keySecret),
		newBackOff: defaultBackOff,
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = 10 * time.Second
	return backoff.WithMaxRetries(exp, 3)
}

type razorpayOrder struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

func (r *RazorpayAdapter) CreateOrder(ctx context.Context, req OrderRequest) (GatewayOrder, error) {
	if r.KeyID == "" || r.keySecret == "" {
		return GatewayOrder{}, ErrMisconfiguredCredentials
	}
	if req.AmountMinor <= 0 {
		return GatewayOrder{}, fmt.Errorf("%w: %d minor units", ErrInvalidAmount, req.AmountMinor)
	}
	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	// Razorpay notes only take string values.
	items, _ := json.Marshal(req.Items)
	customer, _ := json.Marshal(req.Customer)

	payload := map[string]any{
		"amount":          req.AmountMinor,
		"currency":        currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
		"notes": map[string]string{
			"items":    string(items),
			"customer": string(customer),
		},
	}

	var out razorpayOrder
	operation := func() error {
		resp, err := r.client.R().
			SetContext(ctx).
			SetBasicAuth(r.KeyID, r.keySecret).
			SetBody(payload).
			Post("/v1/orders")
		if err != nil {
			gerr := &GatewayError{Body: err.Error()}
			if notSent(err) {
				return gerr
			}
			return backoff.Permanent(gerr)
		}

		// Order creation is not idempotent: only retry when the gateway cannot have created it.
		if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
			gerr := &GatewayError{Status: resp.StatusCode(), Body: string(resp.Body())}
			if gerr.Status == http.StatusTooManyRequests {
				return gerr
			}
			return backoff.Permanent(gerr)
		}

		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return backoff.Permanent(fmt.Errorf("razorpay order decode: %w body=%s", err, string(resp.Body())))
		}
		return nil
	}

	notify := func(err error, d time.Duration) {
		r.logger.Warnw("razorpay create order failed, retrying", "receipt", req.Receipt, "err", err.Error(), "next", d.String())
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(r.newBackOff(), ctx), notify); err != nil {
		return GatewayOrder{}, err
	}

	created := time.Now()
	if out.CreatedAt > 0 {
		created = time.Unix(out.CreatedAt, 0)
	}

	return GatewayOrder{
		OrderID:   out.ID,
		Amount:    out.Amount,
		Currency:  out.Currency,
		Receipt:   out.Receipt,
		CreatedAt: created,
	}, nil
}

func (r *RazorpayAdapter) VerifyPayment(ctx context.Context, cb Callback) (Verification, error) {
	return r.verifier.Verify(cb)
}

// notSent reports whether err happened before the request reached the gateway.
func notSent(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
