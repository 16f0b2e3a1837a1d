// internal/domain/saga/repository_port.go
package saga

import "context"

// Repository is the persistence port for OrderSaga and doubles as the durable
// order record store: terminal sagas are the order history.
//
// Storage recommendation (Firestore):
// - collection: sagas
// - docId: sagaId
//
// Implementations must provide a storage-level compare-and-swap on Version
// (conditional update inside a transaction) — never read-check-write in
// application code without a storage-level condition, which races.
type Repository interface {
	// Create persists a new saga. Fails with ErrSagaExists if the sagaId is
	// already taken (idempotent begin relies on this).
	Create(ctx context.Context, s *OrderSaga) error

	// Get returns (nil, nil) if the saga does not exist (nil policy).
	Get(ctx context.Context, sagaID string) (*OrderSaga, error)

	// UpdateCAS writes s iff the stored Version equals expectedVersion, then
	// bumps s.Version to expectedVersion+1. Fails with ErrStaleSaga when the
	// stored version moved on.
	UpdateCAS(ctx context.Context, s *OrderSaga, expectedVersion int64) error
}
