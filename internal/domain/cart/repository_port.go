// internal/domain/cart/repository_port.go
package cart

import "context"

// Repository is a persistence port for Cart.
//
// Storage recommendation (Firestore):
// - collection: users
// - docId: userId
// - field: cart (map productId -> line)
//
// Writes require an existing user document; implementations return
// ErrUserNotFound otherwise. Line writes are last-write-wins; no merge
// semantics are guaranteed under concurrent writers for the same
// (userId, productId).
type Repository interface {
	// GetCart returns the user's cart. A user with no cart field yet is
	// treated as owning an empty cart, not as an error.
	GetCart(ctx context.Context, userID string) (*Cart, error)

	// UpsertLine sets the absolute quantity for a productId and stamps
	// addedAt/updatedAt on the affected line.
	UpsertLine(ctx context.Context, userID, productID string, qty int) error

	// RemoveLine removes a productId. Removing an absent line is a no-op.
	RemoveLine(ctx context.Context, userID, productID string) error

	// ClearCart empties the cart. Idempotent.
	ClearCart(ctx context.Context, userID string) error
}
