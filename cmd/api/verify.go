package main

import (
	"errors"
	"expvar"
	"net/http"

	"rayalaseema/internal/payments"
)

var verifyOutcomes = expvar.NewMap("payment_verifications")

const verificationFailedMessage = "payment verification failed"

func (app *application) recordAttempt(r *http.Request, paymentID string, success bool) {
	if err := app.attempts.Record(r.Context(), paymentID, success); err != nil {
		app.logger.Warnw("recording payment attempt failed", "payment_id", paymentID, "error", err)
	}
}

// verifyPaymentHandler recomputes the callback signature with the server-held secret.
// Failures never say which part of the check failed.
func (app *application) verifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var cb payments.Callback
	if err := readJSON(w, r, &cb); err != nil {
		verifyOutcomes.Add("rejected", 1)
		app.logger.Warnw("unreadable verification request", "error", err.Error())
		writeJSON(w, http.StatusBadRequest, payments.VerifyResponse{Error: "missing payment fields"})
		return
	}

	res, err := app.payments.VerifyPayment(r.Context(), gatewayRazorpay, cb)
	switch {
	case errors.Is(err, payments.ErrMisconfiguredCredentials):
		verifyOutcomes.Add("error", 1)
		app.internalServerError(w, r, err)
		return
	case errors.Is(err, payments.ErrMissingFields):
		verifyOutcomes.Add("rejected", 1)
		app.recordAttempt(r, cb.PaymentID, false)
		app.logger.Warnw("verification request missing fields", "payment_id", cb.PaymentID, "order_id", cb.OrderID)
		writeJSON(w, http.StatusBadRequest, payments.VerifyResponse{Error: "missing payment fields"})
		return
	case err != nil || !res.Verified():
		verifyOutcomes.Add("rejected", 1)
		app.recordAttempt(r, cb.PaymentID, false)
		app.logger.Warnw("payment signature rejected", "payment_id", cb.PaymentID, "order_id", cb.OrderID)
		writeJSON(w, http.StatusBadRequest, payments.VerifyResponse{Error: verificationFailedMessage})
		return
	}

	verifyOutcomes.Add("verified", 1)
	app.recordAttempt(r, res.PaymentID(), true)

	marked, err := app.orders.MarkPaid(r.Context(), res.OrderID(), res.PaymentID())
	switch {
	case err != nil:
		app.logger.Errorw("marking order paid failed", "order_id", res.OrderID(), "error", err)
	case !marked:
		app.logger.Warnw("verified payment for unknown or already paid order", "order_id", res.OrderID(), "payment_id", res.PaymentID())
	}

	app.logger.Infow("payment verified", "payment_id", res.PaymentID(), "order_id", res.OrderID())

	if err := writeJSON(w, http.StatusOK, payments.VerifyResponse{
		Verified:  true,
		PaymentID: res.PaymentID(),
		OrderID:   res.OrderID(),
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
