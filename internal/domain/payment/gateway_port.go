// internal/domain/payment/gateway_port.go
package payment

import "context"

// Gateway is the outbound port to the external payment provider.
//
// The adapter is stateless; it owns nothing persistent. Both operations are
// request/response collaborators of the saga coordinator.
type Gateway interface {
	// CreateIntent creates a gateway-side order for amount (minor units).
	// reference is the caller's idempotency token (the sagaId), submitted as
	// the gateway receipt so a retried call after a timeout maps to the same
	// gateway order.
	//
	// Fails with ErrInvalidAmount for amount <= 0 (non-retryable) or
	// ErrGatewayUnavailable on transport error / 5xx (retryable with the
	// same reference).
	CreateIntent(ctx context.Context, reference string, amount int, currency string) (Intent, error)

	// Verify performs the server-side signature check against the gateway's
	// shared secret (HMAC over "orderId|paymentId"). A client-reported
	// "payment succeeded" is never trusted without this check.
	//
	// Idempotent: the same inputs always yield the same boolean and no side
	// effects.
	Verify(gatewayOrderID, paymentID, signature string) bool
}
