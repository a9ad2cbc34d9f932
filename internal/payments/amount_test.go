package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"238", 23800},
		{"0.1", 10},
		{"19.99", 1999},
		{"1.005", 101},
		{"0.29", 29},
		{"1234567.89", 123456789},
	}
	for _, tt := range tests {
		got, err := ToMinorUnits(decimal.RequireFromString(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestToMinorUnits_Float(t *testing.T) {
	// 0.29*100 is 28.999999999999996 in float64.
	got, err := ToMinorUnits(decimal.NewFromFloat(0.29))
	require.NoError(t, err)
	assert.Equal(t, int64(29), got)

	// Repeated conversion is stable.
	for i := 0; i < 100; i++ {
		again, _ := ToMinorUnits(decimal.NewFromFloat(0.29))
		assert.Equal(t, got, again)
	}
}

func TestToMinorUnits_Invalid(t *testing.T) {
	for _, in := range []string{"0", "-1", "0.004"} {
		_, err := ToMinorUnits(decimal.RequireFromString(in))
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, FromMinorUnits(23800).Equal(decimal.NewFromInt(238)))
	assert.Equal(t, "19.99", FromMinorUnits(1999).String())
}
