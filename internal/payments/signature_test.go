package payments

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureVerifier_ValidSignature(t *testing.T) {
	v := NewSignatureVerifier("s3cr3t")

	for i := 0; i < 20; i++ {
		cb := Callback{
			OrderID:   fmt.Sprintf("order_%d", i),
			PaymentID: fmt.Sprintf("pay_%d", i*7),
		}
		cb.Signature = Sign("s3cr3t", cb.OrderID, cb.PaymentID)

		res, err := v.Verify(cb)
		require.NoError(t, err)
		assert.True(t, res.Verified())
		assert.True(t, res.Trusted())
		assert.Equal(t, MethodTrustedServer, res.Method())
		assert.Equal(t, cb.PaymentID, res.PaymentID())
		assert.Equal(t, cb.OrderID, res.OrderID())
	}
}

func TestSignatureVerifier_BitFlippedSignature(t *testing.T) {
	v := NewSignatureVerifier("s3cr3t")
	good := Sign("s3cr3t", "order_abc", "pay_xyz")

	for i := 0; i < len(good); i++ {
		for _, bit := range []byte{0x01, 0x02, 0x04} {
			sig := []byte(good)
			sig[i] ^= bit

			res, err := v.Verify(Callback{OrderID: "order_abc", PaymentID: "pay_xyz", Signature: string(sig)})
			assert.ErrorIs(t, err, ErrSignatureMismatch)
			assert.False(t, res.Verified(), "position %d bit %x", i, bit)
		}
	}
}

func TestSignatureVerifier_MissingSecretFailsClosed(t *testing.T) {
	cb := Callback{OrderID: "order_abc", PaymentID: "pay_xyz"}
	cb.Signature = Sign("", cb.OrderID, cb.PaymentID)

	for _, v := range []*SignatureVerifier{NewSignatureVerifier(""), nil} {
		res, err := v.Verify(cb)
		assert.ErrorIs(t, err, ErrMisconfiguredCredentials)
		assert.False(t, res.Verified())
	}
}

func TestSignatureVerifier_MissingFields(t *testing.T) {
	v := NewSignatureVerifier("s3cr3t")
	tests := []Callback{
		{OrderID: "order_abc", Signature: "x"},
		{PaymentID: "pay_xyz", Signature: "x"},
		{OrderID: "order_abc", PaymentID: "pay_xyz"},
	}
	for _, cb := range tests {
		res, err := v.Verify(cb)
		assert.ErrorIs(t, err, ErrMissingFields)
		assert.False(t, res.Verified())
	}
}

func TestSign_KnownOrderAndPayment(t *testing.T) {
	// The pipe separator is significant: swapping the ids changes the digest.
	a := Sign("s3cr3t", "order_abc", "pay_xyz")
	b := Sign("s3cr3t", "pay_xyz", "order_abc")
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Sign("s3cr3t", "order_abc", "pay_xyz"))
	assert.Equal(t, "ee21698235c31aef5bb049b86d1c00014db7de75dbe78cb4ed9ffa8e90855655", a)
}
