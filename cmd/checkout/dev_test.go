package main

import (
	"context"
	"testing"

	"rayalaseema/internal/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct {
	v   payments.Verification
	err error
}

func (s stubVerifier) Verify(context.Context, payments.Callback) (payments.Verification, error) {
	return s.v, s.err
}

func TestDevVerifier(t *testing.T) {
	ctx := context.Background()
	cb := payments.Callback{PaymentID: "pay_xyz", OrderID: "order_abc", Signature: "sig"}

	unreachable := &devVerifier{server: stubVerifier{err: &payments.GatewayError{Body: "connection refused"}}, logger: zap.NewNop().Sugar()}
	v, err := unreachable.Verify(ctx, cb)
	require.NoError(t, err)
	assert.True(t, v.Verified())
	assert.False(t, v.Trusted())
	assert.Equal(t, payments.MethodUntrustedLocal, v.Method())

	rejected := &devVerifier{server: stubVerifier{err: payments.ErrSignatureMismatch}, logger: zap.NewNop().Sugar()}
	v, err = rejected.Verify(ctx, cb)
	assert.ErrorIs(t, err, payments.ErrSignatureMismatch)
	assert.False(t, v.Verified())

	broken := &devVerifier{server: stubVerifier{err: &payments.GatewayError{Status: 500}}, logger: zap.NewNop().Sugar()}
	v, err = broken.Verify(ctx, cb)
	assert.Error(t, err)
	assert.False(t, v.Verified())
}
