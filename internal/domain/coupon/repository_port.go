// internal/domain/coupon/repository_port.go
package coupon

import (
	"context"
	"time"
)

// Repository is a persistence port for coupon versions.
//
// Storage recommendation (Firestore):
// - collection: coupons
// - docId: <code>__v<version> (append-only; versions are never rewritten)
type Repository interface {
	// ActiveAt returns the coupon version whose activation window covers t,
	// or (nil, nil) if no coupon is active (nil policy). If several windows
	// overlap, the highest version wins.
	ActiveAt(ctx context.Context, t time.Time) (*Coupon, error)

	// Put appends a coupon version.
	Put(ctx context.Context, c Coupon) error
}
