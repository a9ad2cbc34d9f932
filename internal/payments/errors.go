package payments

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrMisconfiguredCredentials = errors.New("payment gateway credentials not configured")
	ErrMissingFields            = errors.New("missing payment fields")
	// ErrSignatureMismatch means "not verified", not "system broken".
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// GatewayError is a non-2xx reply from the payment gateway. Status and Body are
// the upstream values so support can see exactly what the gateway said.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error: http=%d body=%s", e.Status, e.Body)
}
