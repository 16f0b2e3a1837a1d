// internal/domain/catalog/query_port.go
package catalog

import "context"

// Query is a read-only port over the product catalog.
//
// Storage recommendation (Firestore):
// - collection: products
// - docId: productId
type Query interface {
	// GetByID returns (nil, nil) if the product does not exist (nil policy).
	// Callers decide whether a missing product is fatal; pricing drops the
	// line with a warning.
	GetByID(ctx context.Context, productID string) (*Product, error)
}
