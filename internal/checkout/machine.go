package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rayalaseema/internal/audit"
	"rayalaseema/internal/payments"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State int

const (
	Idle State = iota
	FormEntry
	AwaitingGatewayCallback
	Verifying
	Verified
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FormEntry:
		return "form-entry"
	case AwaitingGatewayCallback:
		return "awaiting-gateway-callback"
	case Verifying:
		return "verifying"
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrInvalidTransition      = errors.New("invalid checkout transition")
	ErrOrderInProgress        = errors.New("order creation already in progress")
	ErrVerificationInProgress = errors.New("verification already in progress")
	// ErrPaymentNotVerified is the only failure shown to the buyer.
	ErrPaymentNotVerified = errors.New("payment could not be verified, please try again")
	ErrNoConfirmation     = errors.New("no verified payment to confirm")
	// ErrCheckoutClosed means the session ended while its callback was being verified.
	ErrCheckoutClosed = errors.New("checkout was closed during verification")
)

// Machine drives one checkout. Transitions are serialized by mu, which is not
// held across calls to the server. The cart is owned by the machine while a
// checkout is open.
type Machine struct {
	mu        sync.Mutex
	state     State
	sessionID string
	creating  bool

	cart    *Cart
	pending *PendingOrder
	order   *CreateOrderResponse

	orders   OrderCreator
	verifier Verifier
	verified *VerifiedStore
	attempts *audit.Log
	currency string
	now      func() time.Time
	logger   *zap.SugaredLogger
}

type MachineOption func(*Machine)

// WithOrderCreator makes Submit create a gateway order before awaiting the callback.
func WithOrderCreator(oc OrderCreator) MachineOption {
	return func(m *Machine) { m.orders = oc }
}

func WithCurrency(currency string) MachineOption {
	return func(m *Machine) { m.currency = currency }
}

func WithClock(now func() time.Time) MachineOption {
	return func(m *Machine) { m.now = now }
}

func WithLogger(logger *zap.SugaredLogger) MachineOption {
	return func(m *Machine) { m.logger = logger }
}

func NewMachine(cart *Cart, verifier Verifier, verified *VerifiedStore, attempts *audit.Log, opts ...MachineOption) *Machine {
	m := &Machine{
		state:    Idle,
		cart:     cart,
		verifier: verifier,
		verified: verified,
		attempts: attempts,
		currency: payments.DefaultCurrency,
		now:      time.Now,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

func (m *Machine) Pending() (PendingOrder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return PendingOrder{}, false
	}
	return *m.pending, true
}

func (m *Machine) Order() (CreateOrderResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.order == nil {
		return CreateOrderResponse{}, false
	}
	return *m.order, true
}

func (m *Machine) invalid(action string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, action, m.state)
}

// Open starts a new checkout session and forgets any earlier confirmation.
func (m *Machine) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Idle, Verified, Failed:
	default:
		return m.invalid("open")
	}
	if m.cart == nil || m.cart.Len() == 0 || !m.cart.Total().IsPositive() {
		return ErrEmptyCart
	}

	if err := m.verified.Clear(ctx); err != nil {
		m.logger.Warnw("clearing verified payment failed", "error", err)
	}
	m.sessionID = uuid.NewString()
	m.pending = nil
	m.order = nil
	m.state = FormEntry
	m.logger.Infow("checkout opened", "session", m.sessionID, "items", m.cart.Len(), "total", m.cart.Total().StringFixed(2))
	return nil
}

// Submit validates the form and, when an order creator is set, creates the
// gateway order. Any error leaves the machine in FormEntry.
func (m *Machine) Submit(ctx context.Context, form CustomerForm) error {
	m.mu.Lock()
	if m.state != FormEntry {
		defer m.mu.Unlock()
		return m.invalid("submit")
	}
	if m.creating {
		m.mu.Unlock()
		return ErrOrderInProgress
	}
	preview, err := BuildPreview(m.cart, form, m.now())
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if m.orders == nil {
		m.pending = &preview
		m.state = AwaitingGatewayCallback
		m.mu.Unlock()
		return nil
	}
	m.creating = true
	session := m.sessionID
	m.mu.Unlock()

	order, err := m.orders.CreateOrder(ctx, m.orderRequest(preview))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.creating = false
	if err != nil {
		m.logger.Errorw("creating order failed", "session", session, "error", err)
		return fmt.Errorf("create order: %w", err)
	}
	if m.sessionID != session || m.state != FormEntry {
		return m.invalid("finish submit")
	}
	m.pending = &preview
	m.order = &order
	m.state = AwaitingGatewayCallback
	m.logger.Infow("order created", "session", session, "order_id", order.OrderID, "amount", order.Amount)
	return nil
}

func (m *Machine) orderRequest(p PendingOrder) CreateOrderRequest {
	req := CreateOrderRequest{
		Amount:   p.Total,
		Currency: m.currency,
		Customer: payments.Customer{Name: p.Customer.Name, Email: p.Customer.Email, Phone: p.Customer.Phone},
	}
	for _, l := range p.Items {
		req.Items = append(req.Items, payments.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.InexactFloat64(),
		})
	}
	return req
}

// Cancel returns to the form when the buyer dismisses the hosted checkout.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != AwaitingGatewayCallback {
		return m.invalid("cancel")
	}
	m.state = FormEntry
	return nil
}

// Retry re-opens the hosted checkout after a failed verification.
func (m *Machine) Retry() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Failed {
		return m.invalid("retry")
	}
	m.state = AwaitingGatewayCallback
	return nil
}

// HandleCallback verifies the gateway callback with the server. A callback that
// arrives while one is being verified is ignored.
func (m *Machine) HandleCallback(ctx context.Context, cb payments.Callback) error {
	m.mu.Lock()
	switch m.state {
	case AwaitingGatewayCallback:
	case Verifying:
		m.mu.Unlock()
		return ErrVerificationInProgress
	default:
		defer m.mu.Unlock()
		return m.invalid("gateway callback")
	}
	m.state = Verifying
	session := m.sessionID
	expectedOrder := ""
	if m.order != nil {
		expectedOrder = m.order.OrderID
	}
	m.mu.Unlock()

	var (
		res payments.Verification
		err error
	)
	if expectedOrder != "" && cb.OrderID != expectedOrder {
		err = fmt.Errorf("callback for order %q, expected %q", cb.OrderID, expectedOrder)
	} else {
		res, err = m.verifier.Verify(ctx, cb)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil && !res.Verified() {
		err = payments.ErrSignatureMismatch
	}
	if m.sessionID != session {
		m.record(ctx, cb.PaymentID, err == nil)
		m.state = Idle
		m.logger.Infow("checkout closed during verification", "session", session, "payment_id", cb.PaymentID, "verified", err == nil)
		return ErrCheckoutClosed
	}
	if err == nil {
		_, err = m.verified.Store(ctx, res, m.orderContext())
	}
	if err != nil {
		m.record(ctx, cb.PaymentID, false)
		m.state = Failed
		m.logger.Warnw("payment verification failed", "session", session, "payment_id", cb.PaymentID, "error", err)
		return ErrPaymentNotVerified
	}

	m.record(ctx, cb.PaymentID, true)
	m.cart.Clear()
	m.state = Verified
	m.logger.Infow("payment verified", "session", session, "payment_id", cb.PaymentID, "order_id", cb.OrderID, "method", res.Method())
	return nil
}

func (m *Machine) orderContext() OrderContext {
	oc := OrderContext{Currency: m.currency}
	if m.pending != nil {
		oc.Amount = m.pending.Total
		oc.Customer = CustomerInfo{
			Name:  m.pending.Customer.Name,
			Email: m.pending.Customer.Email,
			Phone: m.pending.Customer.Phone,
		}
		oc.Summary = m.pending.Summary()
	}
	if m.order != nil && m.order.Currency != "" {
		oc.Currency = m.order.Currency
	}
	return oc
}

func (m *Machine) record(ctx context.Context, paymentID string, success bool) {
	if m.attempts == nil {
		return
	}
	if err := m.attempts.Record(ctx, paymentID, success); err != nil {
		m.logger.Warnw("recording payment attempt failed", "payment_id", paymentID, "error", err)
	}
}

// Confirmation gates the confirmation page. Callers redirect home on ErrNoConfirmation.
func (m *Machine) Confirmation(ctx context.Context) (*VerifiedPayment, error) {
	rec := m.verified.Read(ctx)
	if rec == nil {
		return nil, ErrNoConfirmation
	}
	return rec, nil
}

// Logout forgets the confirmation and any checkout in progress. A verification
// still in flight is recorded but never stored.
func (m *Machine) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = ""
	m.pending = nil
	m.order = nil
	if m.state != Verifying {
		m.state = Idle
	}
	return m.verified.Clear(ctx)
}
