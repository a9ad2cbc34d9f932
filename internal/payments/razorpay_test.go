package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackOff() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
}

func TestRazorpayAdapter_CreateOrder(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "s3cr3t", pass)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","entity":"order","amount":23800,"currency":"INR","receipt":"order_rcpt_1","status":"created","created_at":1700000000}`))
	}))
	defer srv.Close()

	rp := NewRazorpayAdapter("rzp_test_key", "s3cr3t", srv.URL, WithBackOff(fastBackOff))
	order, err := rp.CreateOrder(context.Background(), OrderRequest{
		AmountMinor: 23800,
		Receipt:     "order_rcpt_1",
		Items:       []OrderItem{{ProductID: "p1", Quantity: 2}},
		Customer:    Customer{Name: "Asha", Email: "asha@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_abc", order.OrderID)
	assert.Equal(t, int64(23800), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, int64(1700000000), order.CreatedAt.Unix())

	assert.EqualValues(t, 23800, got["amount"])
	assert.Equal(t, "INR", got["currency"])
	assert.EqualValues(t, 1, got["payment_capture"])
	notes := got["notes"].(map[string]any)
	assert.Contains(t, notes["items"], `"productId":"p1"`)
	assert.Contains(t, notes["customer"], "asha@example.com")
}

func TestRazorpayAdapter_CreateOrder_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	rp := NewRazorpayAdapter("k", "s", srv.URL, WithBackOff(fastBackOff))
	_, err := rp.CreateOrder(context.Background(), OrderRequest{AmountMinor: 100})

	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusBadRequest, gerr.Status)
	assert.Contains(t, gerr.Body, "amount too small")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestRazorpayAdapter_CreateOrder_RetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id":"order_retry","amount":100,"currency":"INR"}`))
	}))
	defer srv.Close()

	rp := NewRazorpayAdapter("k", "s", srv.URL, WithBackOff(fastBackOff))
	order, err := rp.CreateOrder(context.Background(), OrderRequest{AmountMinor: 100})
	require.NoError(t, err)
	assert.Equal(t, "order_retry", order.OrderID)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestRazorpayAdapter_CreateOrder_ServerErrorIsNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusBadGateway, http.StatusServiceUnavailable} {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(status)
			_, _ = w.Write([]byte("upstream down"))
		}))

		rp := NewRazorpayAdapter("k", "s", srv.URL, WithBackOff(fastBackOff))
		_, err := rp.CreateOrder(context.Background(), OrderRequest{AmountMinor: 100})
		srv.Close()

		var gerr *GatewayError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, status, gerr.Status)
		assert.Equal(t, "upstream down", gerr.Body)
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "status %d", status)
	}
}

type countingBackOff struct {
	backoff.BackOff
	next int32
}

func (c *countingBackOff) NextBackOff() time.Duration {
	atomic.AddInt32(&c.next, 1)
	return c.BackOff.NextBackOff()
}

func TestRazorpayAdapter_CreateOrder_RetriesDialFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	counter := &countingBackOff{BackOff: fastBackOff()}
	rp := NewRazorpayAdapter("k", "s", url, WithBackOff(func() backoff.BackOff { return counter }))
	_, err := rp.CreateOrder(context.Background(), OrderRequest{AmountMinor: 100})

	var gerr *GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Zero(t, gerr.Status)
	assert.EqualValues(t, 4, atomic.LoadInt32(&counter.next))
}

func TestRazorpayAdapter_MisconfiguredCredentials(t *testing.T) {
	for _, rp := range []*RazorpayAdapter{
		NewRazorpayAdapter("", "s", "http://127.0.0.1:1"),
		NewRazorpayAdapter("k", "", "http://127.0.0.1:1"),
	} {
		_, err := rp.CreateOrder(context.Background(), OrderRequest{AmountMinor: 100})
		assert.ErrorIs(t, err, ErrMisconfiguredCredentials)
	}

	res, err := NewRazorpayAdapter("k", "", "").VerifyPayment(context.Background(), Callback{
		PaymentID: "pay_1", OrderID: "order_1", Signature: Sign("", "order_1", "pay_1"),
	})
	assert.ErrorIs(t, err, ErrMisconfiguredCredentials)
	assert.False(t, res.Verified())
}

func TestRazorpayAdapter_InvalidAmount(t *testing.T) {
	rp := NewRazorpayAdapter("k", "s", "http://127.0.0.1:1")
	_, err := rp.CreateOrder(context.Background(), OrderRequest{AmountMinor: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPaymentManager(t *testing.T) {
	m := NewPaymentManager()
	m.RegisterGateway("razorpay", NewRazorpayAdapter("k", "s3cr3t", ""))

	cb := Callback{PaymentID: "pay_1", OrderID: "order_1", Signature: Sign("s3cr3t", "order_1", "pay_1")}
	res, err := m.VerifyPayment(context.Background(), "razorpay", cb)
	require.NoError(t, err)
	assert.True(t, res.Trusted())

	_, err = m.VerifyPayment(context.Background(), "esewa", cb)
	assert.Error(t, err)
	_, err = m.CreateOrder(context.Background(), "esewa", OrderRequest{AmountMinor: 1})
	assert.Error(t, err)
}
