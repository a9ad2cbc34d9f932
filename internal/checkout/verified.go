package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rayalaseema/internal/kv"
	"rayalaseema/internal/payments"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	VerifiedPaymentKey = "rayalaseema_verified_payment"
	VerifiedTTL        = time.Hour
)

var (
	ErrNotVerified           = errors.New("payment is not verified")
	ErrUntrustedVerification = errors.New("untrusted verification is not accepted")
)

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type OrderSummary struct {
	Items       []string        `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// VerifiedPayment is what the confirmation page is allowed to show.
type VerifiedPayment struct {
	PaymentID          string          `json:"paymentId"`
	OrderID            string          `json:"orderId"`
	Signature          string          `json:"signature"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	CustomerInfo       CustomerInfo    `json:"customerInfo"`
	OrderSummary       OrderSummary    `json:"orderSummary"`
	VerifiedAt         time.Time       `json:"verifiedAt"`
	Verified           bool            `json:"verified"`
	VerificationMethod payments.Method `json:"verificationMethod"`
}

// OrderContext carries the order details stored next to a verification.
type OrderContext struct {
	Amount   decimal.Decimal
	Currency string
	Customer CustomerInfo
	Summary  OrderSummary
}

type VerifiedStore struct {
	store          kv.Store
	key            string
	ttl            time.Duration
	allowUntrusted bool
	now            func() time.Time
	logger         *zap.SugaredLogger
}

type StoreOption func(*VerifiedStore)

// AllowUntrusted lets dev-only local verifications through. Keep it off outside development.
func AllowUntrusted(on bool) StoreOption {
	return func(s *VerifiedStore) { s.allowUntrusted = on }
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *VerifiedStore) { s.now = now }
}

func WithStoreLogger(logger *zap.SugaredLogger) StoreOption {
	return func(s *VerifiedStore) { s.logger = logger }
}

func NewVerifiedStore(store kv.Store, opts ...StoreOption) *VerifiedStore {
	s := &VerifiedStore{
		store:  store,
		key:    VerifiedPaymentKey,
		ttl:    VerifiedTTL,
		now:    time.Now,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *VerifiedStore) accepts(m payments.Method) bool {
	return m == payments.MethodTrustedServer || (m == payments.MethodUntrustedLocal && s.allowUntrusted)
}

// Store overwrites any previous record.
func (s *VerifiedStore) Store(ctx context.Context, v payments.Verification, oc OrderContext) (VerifiedPayment, error) {
	if !v.Verified() {
		return VerifiedPayment{}, ErrNotVerified
	}
	if !s.accepts(v.Method()) {
		return VerifiedPayment{}, fmt.Errorf("%w: %s", ErrUntrustedVerification, v.Method())
	}

	rec := VerifiedPayment{
		PaymentID:          v.PaymentID(),
		OrderID:            v.OrderID(),
		Signature:          v.Signature(),
		Amount:             oc.Amount,
		Currency:           oc.Currency,
		CustomerInfo:       oc.Customer,
		OrderSummary:       oc.Summary,
		VerifiedAt:         s.now().UTC(),
		Verified:           true,
		VerificationMethod: v.Method(),
	}
	if rec.Currency == "" {
		rec.Currency = payments.DefaultCurrency
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return VerifiedPayment{}, err
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		return VerifiedPayment{}, fmt.Errorf("store verified payment: %w", err)
	}
	return rec, nil
}

// Read returns nil unless a fresh verified record exists. Expired or corrupt
// records are deleted on the way.
func (s *VerifiedStore) Read(ctx context.Context) *VerifiedPayment {
	raw, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warnw("reading verified payment failed", "error", err)
		}
		return nil
	}

	var rec VerifiedPayment
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warnw("discarding unreadable verified payment", "error", err)
		s.drop(ctx)
		return nil
	}
	if !rec.Verified || rec.PaymentID == "" || !s.accepts(rec.VerificationMethod) {
		return nil
	}
	if s.now().Sub(rec.VerifiedAt) > s.ttl {
		s.drop(ctx)
		return nil
	}
	return &rec
}

func (s *VerifiedStore) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.key)
}

func (s *VerifiedStore) drop(ctx context.Context) {
	if err := s.Clear(ctx); err != nil {
		s.logger.Warnw("deleting verified payment failed", "error", err)
	}
}
