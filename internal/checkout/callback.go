package checkout

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"rayalaseema/internal/payments"
)

// CallbackFromForm reads the hosted checkout's redirect fields. It does not judge them.
func CallbackFromForm(v url.Values) payments.Callback {
	return payments.Callback{
		PaymentID: strings.TrimSpace(v.Get("razorpay_payment_id")),
		OrderID:   strings.TrimSpace(v.Get("razorpay_order_id")),
		Signature: strings.TrimSpace(v.Get("razorpay_signature")),
	}
}

// CallbackFromJSON reads the handler payload the hosted checkout passes to script.
func CallbackFromJSON(raw []byte) (payments.Callback, error) {
	var cb payments.Callback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return payments.Callback{}, fmt.Errorf("decode gateway callback: %w", err)
	}
	cb.PaymentID = strings.TrimSpace(cb.PaymentID)
	cb.OrderID = strings.TrimSpace(cb.OrderID)
	cb.Signature = strings.TrimSpace(cb.Signature)
	return cb, nil
}
