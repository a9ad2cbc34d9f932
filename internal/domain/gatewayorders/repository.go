package gatewayorders

import (
	"context"
	"errors"
	"fmt"

	"rayalaseema/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.q.Exec(ctx, `
CREATE TABLE IF NOT EXISTS gateway_orders (
	order_id     TEXT PRIMARY KEY,
	receipt      TEXT NOT NULL,
	amount_minor BIGINT NOT NULL CHECK (amount_minor > 0),
	currency     TEXT NOT NULL DEFAULT 'INR',
	status       TEXT NOT NULL DEFAULT 'created',
	payment_id   TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("create gateway_orders: %w", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, o *Order) error {
	if err := r.q.QueryRow(ctx, `
		INSERT INTO gateway_orders (order_id, receipt, amount_minor, currency, status)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'INR'), 'created')
		ON CONFLICT (order_id) DO NOTHING
		RETURNING currency, status, created_at, updated_at
	`, o.OrderID, o.Receipt, o.AmountMinor, o.Currency).
		Scan(&o.Currency, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("create gateway order: %s already exists", o.OrderID)
		}
		return fmt.Errorf("create gateway order: %w", err)
	}
	return nil
}

func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.q.QueryRow(ctx, `
		SELECT order_id, receipt, amount_minor, currency, status, payment_id, created_at, updated_at
		FROM gateway_orders WHERE order_id = $1
	`, orderID).Scan(
		&o.OrderID, &o.Receipt, &o.AmountMinor, &o.Currency, &o.Status, &o.PaymentID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get gateway order: %w", err)
	}
	return &o, nil
}

func (r *Repository) MarkPaid(ctx context.Context, orderID, paymentID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE gateway_orders
		   SET status = 'paid',
		       payment_id = $2,
		       updated_at = now()
		 WHERE order_id = $1
		   AND (status = 'created' OR payment_id = $2)
	`, orderID, paymentID)
	if err != nil {
		return false, fmt.Errorf("mark gateway order paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
