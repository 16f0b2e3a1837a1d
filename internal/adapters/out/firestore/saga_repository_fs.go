// internal/adapters/out/firestore/saga_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	sagadom "storefront/internal/domain/saga"
)

// SagaRepositoryFS implements saga.Repository using Firestore.
//
// Collection design:
// - collection: sagas
// - docId: sagaId ✅ (docId is the source of truth)
//
// The compare-and-swap lives inside a Firestore transaction: the stored
// version is read and compared in the same transaction that writes, so a
// losing writer aborts at the storage level instead of racing in application
// code.
type SagaRepositoryFS struct {
	Client *firestore.Client
}

func NewSagaRepositoryFS(client *firestore.Client) *SagaRepositoryFS {
	return &SagaRepositoryFS{Client: client}
}

func (r *SagaRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("sagas")
}

// Create persists a new saga, failing with ErrSagaExists if the docId is
// taken. Existence check and write share one transaction.
func (r *SagaRepositoryFS) Create(ctx context.Context, s *sagadom.OrderSaga) error {
	if r == nil || r.Client == nil {
		return errors.New("saga_repository_fs: firestore client is nil")
	}
	if s == nil {
		return errors.New("saga_repository_fs: saga is nil")
	}

	sid := strings.TrimSpace(s.SagaID)
	if sid == "" {
		return sagadom.ErrInvalidSagaID
	}

	ref := r.col().Doc(sid)

	return r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if err == nil {
			return sagadom.ErrSagaExists
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		return tx.Set(ref, s)
	})
}

// Get returns (nil, nil) if the saga does not exist (nil policy).
func (r *SagaRepositoryFS) Get(ctx context.Context, sagaID string) (*sagadom.OrderSaga, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("saga_repository_fs: firestore client is nil")
	}

	sid := strings.TrimSpace(sagaID)
	if sid == "" {
		return nil, sagadom.ErrInvalidSagaID
	}

	snap, err := r.col().Doc(sid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var s sagadom.OrderSaga
	if err := snap.DataTo(&s); err != nil {
		return nil, err
	}
	// docId is the source of truth
	s.SagaID = sid
	return &s, nil
}

// UpdateCAS writes s iff the stored version equals expectedVersion, bumping
// s.Version on success. Fails with ErrStaleSaga when the stored version moved.
func (r *SagaRepositoryFS) UpdateCAS(ctx context.Context, s *sagadom.OrderSaga, expectedVersion int64) error {
	if r == nil || r.Client == nil {
		return errors.New("saga_repository_fs: firestore client is nil")
	}
	if s == nil {
		return errors.New("saga_repository_fs: saga is nil")
	}

	sid := strings.TrimSpace(s.SagaID)
	if sid == "" {
		return sagadom.ErrInvalidSagaID
	}

	ref := r.col().Doc(sid)

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return sagadom.ErrSagaNotFound
			}
			return err
		}

		stored, err := snap.DataAt("version")
		if err != nil {
			return err
		}
		if v, ok := stored.(int64); !ok || v != expectedVersion {
			return sagadom.ErrStaleSaga
		}

		s.Version = expectedVersion + 1
		return tx.Set(ref, s)
	})
	if err != nil {
		// keep the in-memory version consistent when the write did not land
		if errors.Is(err, sagadom.ErrStaleSaga) || errors.Is(err, sagadom.ErrSagaNotFound) {
			s.Version = expectedVersion
		}
		return err
	}
	return nil
}
