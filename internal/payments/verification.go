package payments

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type Method string

const (
	// MethodTrustedServer results come from the server-side HMAC check.
	MethodTrustedServer Method = "trusted-server"
	// MethodUntrustedLocal results come from UntrustedLocalCheck and are dev-only.
	MethodUntrustedLocal Method = "untrusted-local"
)

// Verification is the outcome of judging a Callback. Its fields are unexported so a
// verified value can only be produced by SignatureVerifier, by decoding the
// server's verification reply, or by the dev-only UntrustedLocalCheck.
type Verification struct {
	paymentID string
	orderID   string
	signature string
	verified  bool
	method    Method
}

func (v Verification) PaymentID() string { return v.paymentID }
func (v Verification) OrderID() string   { return v.orderID }
func (v Verification) Signature() string { return v.signature }
func (v Verification) Verified() bool    { return v.verified }
func (v Verification) Method() Method    { return v.method }

// Trusted reports a positive server-side verification.
func (v Verification) Trusted() bool {
	return v.verified && v.method == MethodTrustedServer
}

func rejected(cb Callback, m Method) Verification {
	return Verification{paymentID: cb.PaymentID, orderID: cb.OrderID, signature: cb.Signature, method: m}
}

// VerifyResponse is the wire shape of the verification endpoint.
type VerifyResponse struct {
	Verified  bool   `json:"verified"`
	PaymentID string `json:"paymentId,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// VerificationFromResponse turns the verification endpoint's reply to cb into a
// Verification. A 200 that does not echo cb's identifiers is not trusted.
func VerificationFromResponse(status int, body []byte, cb Callback) (Verification, error) {
	switch {
	case status == http.StatusOK:
		var res VerifyResponse
		if err := json.Unmarshal(body, &res); err != nil {
			return rejected(cb, MethodTrustedServer), fmt.Errorf("decode verify response: %w", err)
		}
		if !res.Verified || res.PaymentID != cb.PaymentID || res.OrderID != cb.OrderID {
			return rejected(cb, MethodTrustedServer), ErrSignatureMismatch
		}
		return Verification{
			paymentID: cb.PaymentID,
			orderID:   cb.OrderID,
			signature: cb.Signature,
			verified:  true,
			method:    MethodTrustedServer,
		}, nil
	case status >= 400 && status < 500:
		return rejected(cb, MethodTrustedServer), ErrSignatureMismatch
	default:
		return rejected(cb, MethodTrustedServer), &GatewayError{Status: status, Body: string(body)}
	}
}

// UntrustedLocalCheck only checks the shape of the callback. It exists for local
// development without a server and must never be the sole check in production.
func UntrustedLocalCheck(cb Callback) (Verification, error) {
	if cb.PaymentID == "" {
		return rejected(cb, MethodUntrustedLocal), ErrMissingFields
	}
	if !strings.HasPrefix(cb.PaymentID, "pay_") {
		return rejected(cb, MethodUntrustedLocal), fmt.Errorf("%w: malformed payment id", ErrSignatureMismatch)
	}
	return Verification{
		paymentID: cb.PaymentID,
		orderID:   cb.OrderID,
		signature: cb.Signature,
		verified:  true,
		method:    MethodUntrustedLocal,
	}, nil
}
