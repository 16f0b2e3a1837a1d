// internal/domain/saga/entity.go
package saga

import (
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/payment"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/shipment"
)

// Mode selects the fulfillment variant.
type Mode string

const (
	ModeOnline Mode = "ONLINE"
	ModeCOD    Mode = "COD"
)

func IsValidMode(m Mode) bool { return m == ModeOnline || m == ModeCOD }

// Errors
var (
	ErrInvalidSagaID     = errors.New("saga: invalid sagaId")
	ErrInvalidUserID     = errors.New("saga: invalid userId")
	ErrInvalidMode       = errors.New("saga: invalid mode")
	ErrIllegalTransition = errors.New("saga: illegal state transition")

	// ErrStaleSaga: a version-guarded write lost the race and the winner did
	// not already cover the intended target. Indicates a concurrency bug or
	// forged client state; never silently ignored.
	ErrStaleSaga = errors.New("saga: stale version")

	// ErrAlreadyProcessed: checkout re-initiated with a terminal sagaId.
	ErrAlreadyProcessed = errors.New("saga: already processed")

	ErrSagaExists   = errors.New("saga: already exists")
	ErrSagaNotFound = errors.New("saga: not found")
)

// OrderSaga is the aggregate root of the fulfillment workflow and the only
// mutable shared resource in this core. State lives entirely in the record so
// the workflow can be resumed by any process after a crash or redeploy.
//
// Mutated exclusively by the coordinator, one step at a time; every mutation
// bumps Version (the repository enforces the compare-and-swap). Terminal
// sagas are immutable except for administrative correction.
type OrderSaga struct {
	SagaID string `json:"sagaId" firestore:"sagaId"`
	UserID string `json:"userId" firestore:"userId"`
	Mode   Mode   `json:"mode" firestore:"mode"`
	State  State  `json:"state" firestore:"state"`

	CartSnapshotID string            `json:"cartSnapshotId,omitempty" firestore:"cartSnapshotId,omitempty"`
	Snapshot       *pricing.Snapshot `json:"snapshot,omitempty" firestore:"snapshot,omitempty"`
	PaymentIntent  *payment.Intent   `json:"paymentIntent,omitempty" firestore:"paymentIntent,omitempty"`
	Shipment       *shipment.Record  `json:"shipment,omitempty" firestore:"shipment,omitempty"`

	FailureReason string `json:"failureReason,omitempty" firestore:"failureReason,omitempty"`

	// NeedsManualRefund flags the money-captured-but-not-shipped condition
	// (SHIP_FAILED after PAYMENT_VERIFIED). The refund itself is an explicit,
	// separately-triggered workflow; this core only makes the condition
	// observable and unambiguous.
	NeedsManualRefund bool `json:"needsManualRefund,omitempty" firestore:"needsManualRefund,omitempty"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`

	// Version is monotonic, for optimistic concurrency. The repository bumps
	// it on every successful compare-and-swap.
	Version int64 `json:"version" firestore:"version"`
}

// New creates a saga in CREATED state.
func New(sagaID, userID string, mode Mode, now time.Time) (*OrderSaga, error) {
	s := &OrderSaga{
		SagaID:    strings.TrimSpace(sagaID),
		UserID:    strings.TrimSpace(userID),
		Mode:      mode,
		State:     StateCreated,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Version:   1,
	}
	if s.SagaID == "" {
		return nil, ErrInvalidSagaID
	}
	if s.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if !IsValidMode(mode) {
		return nil, ErrInvalidMode
	}
	return s, nil
}

// transition guards a single step. Each caller persists the result as one
// atomic version-guarded write.
func (s *OrderSaga) transition(to State, now time.Time) error {
	if s == nil {
		return ErrInvalidSagaID
	}
	if !CanTransition(s.State, to) {
		return ErrIllegalTransition
	}
	s.State = to
	s.UpdatedAt = now.UTC()
	return nil
}

// MarkPriced attaches the immutable snapshot and advances to PRICED.
func (s *OrderSaga) MarkPriced(snap pricing.Snapshot, now time.Time) error {
	if err := s.transition(StatePriced, now); err != nil {
		return err
	}
	cp := snap
	s.Snapshot = &cp
	s.CartSnapshotID = snap.ID
	return nil
}

// MarkPriceFailed records a pricing failure (terminal).
func (s *OrderSaga) MarkPriceFailed(reason string, now time.Time) error {
	if err := s.transition(StatePriceFailed, now); err != nil {
		return err
	}
	s.FailureReason = strings.TrimSpace(reason)
	return nil
}

// MarkPaymentPending attaches the created intent (online mode only).
func (s *OrderSaga) MarkPaymentPending(intent payment.Intent, now time.Time) error {
	if s != nil && s.Mode != ModeOnline {
		return ErrIllegalTransition
	}
	if err := s.transition(StatePaymentPending, now); err != nil {
		return err
	}
	cp := intent
	s.PaymentIntent = &cp
	return nil
}

// MarkPaymentInitFailed records a gateway-unreachable failure (terminal;
// client may retry with a fresh saga).
func (s *OrderSaga) MarkPaymentInitFailed(reason string, now time.Time) error {
	if err := s.transition(StatePaymentInitFail, now); err != nil {
		return err
	}
	s.FailureReason = strings.TrimSpace(reason)
	return nil
}

// MarkPaymentVerified records a passed signature check.
func (s *OrderSaga) MarkPaymentVerified(now time.Time) error {
	if err := s.transition(StatePaymentVerified, now); err != nil {
		return err
	}
	if s.PaymentIntent != nil {
		_ = s.PaymentIntent.SetStatus(payment.StatusVerified)
	}
	return nil
}

// MarkPaymentRejected records a failed signature check or user abandonment
// (terminal).
func (s *OrderSaga) MarkPaymentRejected(reason string, now time.Time) error {
	if err := s.transition(StatePaymentRejected, now); err != nil {
		return err
	}
	s.FailureReason = strings.TrimSpace(reason)
	if s.PaymentIntent != nil {
		_ = s.PaymentIntent.SetStatus(payment.StatusFailed)
	}
	return nil
}

// MarkShipPending advances the COD variant past pricing.
func (s *OrderSaga) MarkShipPending(now time.Time) error {
	if s != nil && s.Mode != ModeCOD {
		return ErrIllegalTransition
	}
	return s.transition(StateShipPending, now)
}

// MarkShipped attaches the carrier record.
func (s *OrderSaga) MarkShipped(rec shipment.Record, now time.Time) error {
	if err := s.transition(StateShipped, now); err != nil {
		return err
	}
	cp := rec
	s.Shipment = &cp
	return nil
}

// MarkShipFailed records a carrier failure (terminal). On the online path the
// payment is already captured, so the saga is flagged for manual refund.
func (s *OrderSaga) MarkShipFailed(reason string, now time.Time) error {
	wasVerified := s != nil && s.State == StatePaymentVerified
	if err := s.transition(StateShipFailed, now); err != nil {
		return err
	}
	s.FailureReason = strings.TrimSpace(reason)
	s.NeedsManualRefund = wasVerified
	return nil
}

// MarkCompleted closes the saga after the cart has been durably cleared.
func (s *OrderSaga) MarkCompleted(now time.Time) error {
	return s.transition(StateCompleted, now)
}

// MarkCancelled abandons a non-terminal saga (administrative path).
func (s *OrderSaga) MarkCancelled(reason string, now time.Time) error {
	if err := s.transition(StateCancelled, now); err != nil {
		return err
	}
	s.FailureReason = strings.TrimSpace(reason)
	return nil
}
