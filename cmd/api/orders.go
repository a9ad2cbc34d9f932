package main

import (
	"errors"
	"expvar"
	"fmt"
	"net/http"

	"rayalaseema/internal/catalog"
	"rayalaseema/internal/domain/gatewayorders"
	"rayalaseema/internal/payments"

	"github.com/shopspring/decimal"
)

var ordersCreated = expvar.NewInt("orders_created")

type createOrderPayload struct {
	Amount   decimal.Decimal      `json:"amount"`
	Currency string               `json:"currency" validate:"omitempty,len=3"`
	Items    []payments.OrderItem `json:"items" validate:"dive"`
	Customer payments.Customer    `json:"customer"`
}

type createOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// priceItems checks the client's amount against the catalog. Without items the
// amount is taken as given.
func (app *application) priceItems(payload createOrderPayload) error {
	if len(payload.Items) == 0 {
		app.logger.Warnw("order without line items, amount not checked against catalog", "amount", payload.Amount.String())
		return nil
	}

	lines := make([]catalog.Line, 0, len(payload.Items))
	for _, it := range payload.Items {
		lines = append(lines, catalog.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	total, err := app.catalog.Total(lines)
	if err != nil {
		return fmt.Errorf("%w: %v", payments.ErrInvalidAmount, err)
	}
	if !total.Equal(payload.Amount) {
		return fmt.Errorf("%w: amount %s does not match items total %s", payments.ErrInvalidAmount, payload.Amount.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

func (app *application) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var payload createOrderPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !payload.Amount.IsPositive() {
		app.badRequestResponse(w, r, payments.ErrInvalidAmount)
		return
	}
	if payload.Currency == "" {
		payload.Currency = payments.DefaultCurrency
	}

	if err := app.priceItems(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	minor, err := payments.ToMinorUnits(payload.Amount)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	receipt, err := app.receipts.Next()
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	order, err := app.payments.CreateOrder(r.Context(), gatewayRazorpay, payments.OrderRequest{
		AmountMinor: minor,
		Currency:    payload.Currency,
		Receipt:     receipt,
		Items:       payload.Items,
		Customer:    payload.Customer,
	})
	if err != nil {
		var gerr *payments.GatewayError
		switch {
		case errors.Is(err, payments.ErrInvalidAmount):
			app.badRequestResponse(w, r, err)
		case errors.As(err, &gerr):
			app.gatewayErrorResponse(w, r, gerr)
		default:
			app.internalServerError(w, r, fmt.Errorf("create order: %w", err))
		}
		return
	}

	if err := app.orders.Create(r.Context(), &gatewayorders.Order{
		OrderID:     order.OrderID,
		Receipt:     order.Receipt,
		AmountMinor: order.Amount,
		Currency:    order.Currency,
		Status:      gatewayorders.StatusCreated,
	}); err != nil {
		app.logger.Errorw("recording gateway order failed", "order_id", order.OrderID, "error", err)
	}

	ordersCreated.Add(1)
	app.logger.Infow("order created", "order_id", order.OrderID, "receipt", receipt, "amount", order.Amount, "currency", order.Currency)

	if err := writeJSON(w, http.StatusOK, createOrderResponse{
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
