package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the gateway's callback signature: hex HMAC-SHA256 over "orderID|paymentID".
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureVerifier is the server-side authority on whether a callback is genuine.
// It must only run where the shared secret lives.
type SignatureVerifier struct {
	secret string
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: secret}
}

func (s *SignatureVerifier) Verify(cb Callback) (Verification, error) {
	if !cb.complete() {
		return rejected(cb, MethodTrustedServer), ErrMissingFields
	}
	if s == nil || s.secret == "" {
		return rejected(cb, MethodTrustedServer), ErrMisconfiguredCredentials
	}

	want := Sign(s.secret, cb.OrderID, cb.PaymentID)
	if !hmac.Equal([]byte(want), []byte(cb.Signature)) {
		return rejected(cb, MethodTrustedServer), ErrSignatureMismatch
	}

	return Verification{
		paymentID: cb.PaymentID,
		orderID:   cb.OrderID,
		signature: cb.Signature,
		verified:  true,
		method:    MethodTrustedServer,
	}, nil
}
