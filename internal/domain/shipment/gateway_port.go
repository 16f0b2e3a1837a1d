// internal/domain/shipment/gateway_port.go
package shipment

import (
	"context"

	"storefront/internal/domain/pricing"
)

// Gateway is the outbound port to the external shipping provider.
type Gateway interface {
	// CreateShipment submits a carrier order built from an immutable priced
	// snapshot and a delivery address.
	//
	// The adapter derives a carrier-side idempotency token from sagaID, so a
	// retried call after a timeout cannot create two shipments for one order.
	//
	// Fails with ErrCarrierRejected (non-retryable) or ErrCarrierUnavailable
	// (retryable with the same token).
	CreateShipment(ctx context.Context, sagaID string, snap pricing.Snapshot, addr AddressSnapshot) (Record, error)
}
