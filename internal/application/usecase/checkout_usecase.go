// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	cartdom "storefront/internal/domain/cart"
	paymentdom "storefront/internal/domain/payment"
	pricingdom "storefront/internal/domain/pricing"
	sagadom "storefront/internal/domain/saga"
	shipmentdom "storefront/internal/domain/shipment"
	"storefront/internal/platform/metrics"
)

// AddressReader is an outbound port resolving the user's delivery address.
// The address book itself is owned elsewhere; the coordinator only copies the
// primary address into the shipment snapshot.
type AddressReader interface {
	// PrimaryAddress returns (nil, nil) if the user has no usable address.
	PrimaryAddress(ctx context.Context, userID string) (*shipmentdom.AddressSnapshot, error)
}

// CompletionNotifier is an outbound port fired after a saga reaches
// COMPLETED. Best effort: failures are logged and never affect saga state.
type CompletionNotifier interface {
	OrderCompleted(ctx context.Context, s *sagadom.OrderSaga) error
}

var (
	ErrCheckoutSagaRepoMissing  = errors.New("checkout: saga repository is not configured")
	ErrCheckoutPricingMissing   = errors.New("checkout: pricing usecase is not configured")
	ErrCheckoutPaymentsMissing  = errors.New("checkout: payment gateway is not configured")
	ErrCheckoutShipmentsMissing = errors.New("checkout: shipment gateway is not configured")
	ErrCheckoutUserIDEmpty      = errors.New("checkout: userId is empty")
	ErrCheckoutSagaIDEmpty      = errors.New("checkout: sagaId is empty")
	ErrCheckoutWrongMode        = errors.New("checkout: wrong payment mode for this saga")
)

// DefaultStepTimeout bounds each adapter call.
const DefaultStepTimeout = 10 * time.Second

// CheckoutUsecase is the order saga coordinator.
//
// It drives the end-to-end workflow (price -> pay -> verify -> ship ->
// commit), persists every state transition as a single version-guarded write,
// and decides compensation on partial failure. The client only ever calls
// this coordinator; the adapters are stateless collaborators.
//
// Every exposed operation is idempotent under repeated identical calls, and
// every saga step is an independent request/response unit of work: no
// long-lived goroutine per saga, so any process can resume a saga after a
// crash or redeploy.
type CheckoutUsecase struct {
	sagas     sagadom.Repository
	pricingUC *PricingUsecase
	cartRepo  cartdom.Repository
	payments  paymentdom.Gateway
	shipments shipmentdom.Gateway
	addresses AddressReader
	notifier  CompletionNotifier // optional

	obs         *metrics.CheckoutMetrics // optional
	stepTimeout time.Duration
	now         func() time.Time
	newID       func() string
}

func NewCheckoutUsecase(
	sagas sagadom.Repository,
	pricingUC *PricingUsecase,
	cartRepo cartdom.Repository,
	payments paymentdom.Gateway,
	shipments shipmentdom.Gateway,
	addresses AddressReader,
	notifier CompletionNotifier,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		sagas:       sagas,
		pricingUC:   pricingUC,
		cartRepo:    cartRepo,
		payments:    payments,
		shipments:   shipments,
		addresses:   addresses,
		notifier:    notifier,
		stepTimeout: DefaultStepTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// SetMetrics attaches transition counters (optional).
func (u *CheckoutUsecase) SetMetrics(m *metrics.CheckoutMetrics) { u.obs = m }

// SetStepTimeout overrides the per-adapter-call timeout.
func (u *CheckoutUsecase) SetStepTimeout(d time.Duration) {
	if d > 0 {
		u.stepTimeout = d
	}
}

func (u *CheckoutUsecase) deps() error {
	if u == nil || u.sagas == nil {
		return ErrCheckoutSagaRepoMissing
	}
	if u.pricingUC == nil {
		return ErrCheckoutPricingMissing
	}
	if u.payments == nil {
		return ErrCheckoutPaymentsMissing
	}
	if u.shipments == nil {
		return ErrCheckoutShipmentsMissing
	}
	return nil
}

// ------------------------------------------------------------
// Exposed operations
// ------------------------------------------------------------

// BeginCheckout starts (or idempotently re-reads) a saga for the user's
// current cart.
//
// sagaID may be empty, in which case a fresh one is generated; re-submitting
// an existing non-terminal sagaId returns the current state instead of
// creating parallel work, and a terminal sagaId is rejected with
// ErrAlreadyProcessed.
//
// Pricing failures and gateway-unreachable failures are not returned as
// errors: they land in the PRICE_FAILED / PAYMENT_INIT_FAILED terminal
// states with FailureReason set, so a retry stays tied to a fresh saga and
// the outcome is durably observable.
func (u *CheckoutUsecase) BeginCheckout(ctx context.Context, userID string, mode sagadom.Mode, sagaID string) (*sagadom.OrderSaga, error) {
	if err := u.deps(); err != nil {
		return nil, err
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCheckoutUserIDEmpty
	}
	if !sagadom.IsValidMode(mode) {
		return nil, sagadom.ErrInvalidMode
	}

	sid := strings.TrimSpace(sagaID)
	if sid == "" {
		sid = u.newID()
	}

	s, err := sagadom.New(sid, uid, mode, u.now())
	if err != nil {
		return nil, err
	}

	if err := u.sagas.Create(ctx, s); err != nil {
		if errors.Is(err, sagadom.ErrSagaExists) {
			existing, gErr := u.sagas.Get(ctx, sid)
			if gErr != nil {
				return nil, fmt.Errorf("checkout: re-read existing saga: %w", gErr)
			}
			if existing == nil {
				return nil, sagadom.ErrSagaNotFound
			}
			if existing.State.IsTerminal() {
				log.Printf("[checkout_uc] begin rejected, sagaId is terminal sagaId=%s state=%s", sid, existing.State)
				return existing, sagadom.ErrAlreadyProcessed
			}
			log.Printf("[checkout_uc] OK begin is idempotent sagaId=%s state=%s", sid, existing.State)
			return existing, nil
		}
		return nil, fmt.Errorf("checkout: create saga: %w", err)
	}

	return u.priceAndInit(ctx, s)
}

// GetSagaState returns the saga's public state. The record stores no gateway
// secrets, only identifiers.
func (u *CheckoutUsecase) GetSagaState(ctx context.Context, sagaID string) (*sagadom.OrderSaga, error) {
	if u == nil || u.sagas == nil {
		return nil, ErrCheckoutSagaRepoMissing
	}
	sid := strings.TrimSpace(sagaID)
	if sid == "" {
		return nil, ErrCheckoutSagaIDEmpty
	}
	s, err := u.sagas.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, sagadom.ErrSagaNotFound
	}
	return s, nil
}

// ConfirmOnlinePayment verifies a client-reported payment server-side and, on
// success, drives the saga through shipment and completion.
//
// The client-reported success is never trusted: the signature check against
// the gateway's shared secret is the sole source of truth. Repeating the call
// with identical arguments yields the identical final state and at most one
// shipment.
func (u *CheckoutUsecase) ConfirmOnlinePayment(ctx context.Context, sagaID, paymentID, signature string) (*sagadom.OrderSaga, error) {
	if err := u.deps(); err != nil {
		return nil, err
	}

	s, err := u.GetSagaState(ctx, sagaID)
	if err != nil {
		return nil, err
	}
	if s.Mode != sagadom.ModeOnline {
		return nil, ErrCheckoutWrongMode
	}

	switch s.State {
	case sagadom.StatePaymentPending:
		// verify below

	case sagadom.StatePaymentVerified:
		// crash happened after verify: resume shipping, never re-verify
		return u.shipAndComplete(ctx, s)

	case sagadom.StateShipped:
		// crash happened before cart clear: finish, never re-ship
		return u.completeShipped(ctx, s)

	case sagadom.StateCompleted, sagadom.StatePaymentRejected, sagadom.StateShipFailed:
		// idempotent repeat of an already-decided confirm
		return s, nil

	default:
		log.Printf("[checkout_uc] confirm rejected, illegal state sagaId=%s state=%s", s.SagaID, s.State)
		return nil, sagadom.ErrIllegalTransition
	}

	if s.PaymentIntent == nil {
		// integrity violation: PAYMENT_PENDING without an intent
		return nil, fmt.Errorf("checkout: saga %s has no payment intent: %w", s.SagaID, sagadom.ErrIllegalTransition)
	}

	if !u.payments.Verify(s.PaymentIntent.GatewayOrderID, strings.TrimSpace(paymentID), strings.TrimSpace(signature)) {
		log.Printf("[checkout_uc] WARN signature mismatch sagaId=%s gatewayOrderId=%s", s.SagaID, s.PaymentIntent.GatewayOrderID)
		u.obs.GatewayFailure("payment", "rejected")
		return u.failStep(ctx, s, func(now time.Time) error {
			return s.MarkPaymentRejected("payment signature verification failed", now)
		}, sagadom.StatePaymentRejected)
	}

	if err := u.advance(ctx, s, func(now time.Time) error {
		return s.MarkPaymentVerified(now)
	}, sagadom.StatePaymentVerified); err != nil {
		return nil, err
	}

	return u.shipAndComplete(ctx, s)
}

// ConfirmCodOrder drives the pay-on-delivery variant: PRICED -> SHIP_PENDING
// -> SHIPPED -> COMPLETED, with no online-payment states in between.
func (u *CheckoutUsecase) ConfirmCodOrder(ctx context.Context, sagaID string) (*sagadom.OrderSaga, error) {
	if err := u.deps(); err != nil {
		return nil, err
	}

	s, err := u.GetSagaState(ctx, sagaID)
	if err != nil {
		return nil, err
	}
	if s.Mode != sagadom.ModeCOD {
		return nil, ErrCheckoutWrongMode
	}

	switch s.State {
	case sagadom.StatePriced:
		if err := u.advance(ctx, s, func(now time.Time) error {
			return s.MarkShipPending(now)
		}, sagadom.StateShipPending); err != nil {
			return nil, err
		}
		return u.shipAndComplete(ctx, s)

	case sagadom.StateShipPending:
		// crash happened before the carrier call completed: resume
		return u.shipAndComplete(ctx, s)

	case sagadom.StateShipped:
		return u.completeShipped(ctx, s)

	case sagadom.StateCompleted, sagadom.StateShipFailed:
		return s, nil

	default:
		log.Printf("[checkout_uc] cod confirm rejected, illegal state sagaId=%s state=%s", s.SagaID, s.State)
		return nil, sagadom.ErrIllegalTransition
	}
}

// Resume picks up a saga found mid-flight after a crash or redeploy.
//
// Every non-terminal state is driven as far as the workflow allows: CREATED
// re-prices, PRICED (online) creates the payment intent with the original
// sagaId reference, PAYMENT_VERIFIED and SHIP_PENDING re-attempt the carrier
// call with the original idempotency token, and SHIPPED clears the cart and
// completes — the shipping adapter is never re-invoked past SHIPPED. The two
// wait states (PRICED for COD, PAYMENT_PENDING for online) and terminal
// states are returned unchanged.
func (u *CheckoutUsecase) Resume(ctx context.Context, sagaID string) (*sagadom.OrderSaga, error) {
	if err := u.deps(); err != nil {
		return nil, err
	}

	s, err := u.GetSagaState(ctx, sagaID)
	if err != nil {
		return nil, err
	}

	switch s.State {
	case sagadom.StateCreated:
		// crash happened before pricing landed
		return u.priceAndInit(ctx, s)
	case sagadom.StatePriced:
		if s.Mode == sagadom.ModeOnline {
			// crash happened before the payment intent was created
			return u.initOnlinePayment(ctx, s)
		}
		// cod waits at PRICED for ConfirmCodOrder
		return s, nil
	case sagadom.StateShipped:
		return u.completeShipped(ctx, s)
	case sagadom.StatePaymentVerified, sagadom.StateShipPending:
		return u.shipAndComplete(ctx, s)
	default:
		return s, nil
	}
}

// ------------------------------------------------------------
// Steps
// ------------------------------------------------------------

// priceAndInit runs the pricing step from CREATED and, for ONLINE sagas,
// continues into payment-intent creation. COD sagas stop at PRICED and wait
// for ConfirmCodOrder.
func (u *CheckoutUsecase) priceAndInit(ctx context.Context, s *sagadom.OrderSaga) (*sagadom.OrderSaga, error) {
	snap, pErr := u.pricingUC.Price(ctx, s.UserID)
	if pErr != nil {
		log.Printf("[checkout_uc] WARN pricing failed sagaId=%s err=%v", s.SagaID, pErr)
		return u.failStep(ctx, s, func(now time.Time) error {
			return s.MarkPriceFailed(pErr.Error(), now)
		}, sagadom.StatePriceFailed)
	}

	if err := u.advance(ctx, s, func(now time.Time) error {
		return s.MarkPriced(snap, now)
	}, sagadom.StatePriced); err != nil {
		return nil, err
	}

	if s.Mode == sagadom.ModeCOD {
		// COD stops here; ConfirmCodOrder drives SHIP_PENDING -> SHIPPED.
		return s, nil
	}

	return u.initOnlinePayment(ctx, s)
}

// initOnlinePayment creates the gateway order from PRICED, one retry with the
// same sagaId reference.
func (u *CheckoutUsecase) initOnlinePayment(ctx context.Context, s *sagadom.OrderSaga) (*sagadom.OrderSaga, error) {
	if s.Snapshot == nil {
		return nil, fmt.Errorf("checkout: saga %s has no snapshot: %w", s.SagaID, sagadom.ErrIllegalTransition)
	}

	intent, iErr := u.createIntentWithRetry(ctx, s.SagaID, s.Snapshot.Total, s.Snapshot.Currency)
	if iErr != nil {
		log.Printf("[checkout_uc] WARN payment intent failed sagaId=%s err=%v", s.SagaID, iErr)
		u.obs.GatewayFailure("payment", failureKind(iErr))
		return u.failStep(ctx, s, func(now time.Time) error {
			return s.MarkPaymentInitFailed(iErr.Error(), now)
		}, sagadom.StatePaymentInitFail)
	}

	if err := u.advance(ctx, s, func(now time.Time) error {
		return s.MarkPaymentPending(intent, now)
	}, sagadom.StatePaymentPending); err != nil {
		return nil, err
	}

	log.Printf("[checkout_uc] OK checkout started sagaId=%s state=%s total=%d", s.SagaID, s.State, s.Snapshot.Total)
	return s, nil
}

// shipAndComplete runs the carrier call from PAYMENT_VERIFIED or
// SHIP_PENDING, then finishes the saga.
func (u *CheckoutUsecase) shipAndComplete(ctx context.Context, s *sagadom.OrderSaga) (*sagadom.OrderSaga, error) {
	if s.Snapshot == nil {
		return nil, fmt.Errorf("checkout: saga %s has no snapshot: %w", s.SagaID, sagadom.ErrIllegalTransition)
	}

	var addr *shipmentdom.AddressSnapshot
	if u.addresses != nil {
		a, aErr := u.addresses.PrimaryAddress(ctx, s.UserID)
		if aErr != nil {
			return nil, fmt.Errorf("checkout: resolve address: %w", aErr)
		}
		addr = a
	}
	if addr == nil || addr.Validate() != nil {
		log.Printf("[checkout_uc] WARN no valid address sagaId=%s userId=%s", s.SagaID, s.UserID)
		return u.failStep(ctx, s, func(now time.Time) error {
			return s.MarkShipFailed("no valid delivery address", now)
		}, sagadom.StateShipFailed)
	}

	rec, shErr := u.createShipmentWithRetry(ctx, s.SagaID, *s.Snapshot, *addr)
	if shErr != nil {
		log.Printf("[checkout_uc] WARN shipment failed sagaId=%s err=%v", s.SagaID, shErr)
		u.obs.GatewayFailure("carrier", failureKind(shErr))
		return u.failStep(ctx, s, func(now time.Time) error {
			return s.MarkShipFailed(shErr.Error(), now)
		}, sagadom.StateShipFailed)
	}

	if err := u.advance(ctx, s, func(now time.Time) error {
		return s.MarkShipped(rec, now)
	}, sagadom.StateShipped); err != nil {
		return nil, err
	}

	// a lost CAS race can land s past SHIPPED: a concurrent writer already
	// shipped (its record is authoritative; ours was rejected carrier-side on
	// the duplicate token) and may have completed. Only a saga actually in
	// SHIPPED still needs the cart cleared.
	if s.State != sagadom.StateShipped {
		return s, nil
	}

	return u.completeShipped(ctx, s)
}

// completeShipped clears the cart and closes a SHIPPED saga.
//
// clearCart runs strictly after SHIPPED is durably recorded. If the clear
// fails, the saga stays in SHIPPED and remains resumable; it is never
// completed over a non-empty cart.
func (u *CheckoutUsecase) completeShipped(ctx context.Context, s *sagadom.OrderSaga) (*sagadom.OrderSaga, error) {
	if u.cartRepo != nil {
		if err := u.cartRepo.ClearCart(ctx, s.UserID); err != nil {
			log.Printf("[checkout_uc] WARN clear cart failed, saga stays SHIPPED sagaId=%s err=%v", s.SagaID, err)
			return s, nil
		}
	}

	if err := u.advance(ctx, s, func(now time.Time) error {
		return s.MarkCompleted(now)
	}, sagadom.StateCompleted); err != nil {
		return nil, err
	}

	log.Printf("[checkout_uc] OK saga completed sagaId=%s userId=%s", s.SagaID, s.UserID)

	if u.notifier != nil {
		if nErr := u.notifier.OrderCompleted(ctx, s); nErr != nil {
			log.Printf("[checkout_uc] WARN completion notify failed sagaId=%s err=%v", s.SagaID, nErr)
		}
	}
	return s, nil
}

func (u *CheckoutUsecase) createIntentWithRetry(ctx context.Context, sagaID string, amount int, currency string) (paymentdom.Intent, error) {
	intent, err := u.createIntentOnce(ctx, sagaID, amount, currency)
	if err == nil || !errors.Is(err, paymentdom.ErrGatewayUnavailable) {
		return intent, err
	}
	// the remote side may have succeeded despite the local timeout; one
	// retry with the same reference, then declare failure
	log.Printf("[checkout_uc] WARN retrying payment intent sagaId=%s err=%v", sagaID, err)
	return u.createIntentOnce(ctx, sagaID, amount, currency)
}

func (u *CheckoutUsecase) createIntentOnce(ctx context.Context, sagaID string, amount int, currency string) (paymentdom.Intent, error) {
	stepCtx, cancel := context.WithTimeout(ctx, u.stepTimeout)
	defer cancel()
	return u.payments.CreateIntent(stepCtx, sagaID, amount, currency)
}

func (u *CheckoutUsecase) createShipmentWithRetry(ctx context.Context, sagaID string, snap pricingdom.Snapshot, addr shipmentdom.AddressSnapshot) (shipmentdom.Record, error) {
	rec, err := u.createShipmentOnce(ctx, sagaID, snap, addr)
	if err == nil || !errors.Is(err, shipmentdom.ErrCarrierUnavailable) {
		return rec, err
	}
	log.Printf("[checkout_uc] WARN retrying shipment sagaId=%s err=%v", sagaID, err)
	return u.createShipmentOnce(ctx, sagaID, snap, addr)
}

func (u *CheckoutUsecase) createShipmentOnce(ctx context.Context, sagaID string, snap pricingdom.Snapshot, addr shipmentdom.AddressSnapshot) (shipmentdom.Record, error) {
	stepCtx, cancel := context.WithTimeout(ctx, u.stepTimeout)
	defer cancel()
	return u.shipments.CreateShipment(stepCtx, sagaID, snap, addr)
}

// ------------------------------------------------------------
// Version-guarded persistence
// ------------------------------------------------------------

// advance applies one state mutation and persists it as a single CAS write.
//
// A losing writer re-reads: if the saga already advanced to or past the
// intended target, the step no-ops onto the fresh record; otherwise the
// conflict surfaces as ErrStaleSaga (concurrency bug or forged client
// state — logged, never silently ignored).
func (u *CheckoutUsecase) advance(ctx context.Context, s *sagadom.OrderSaga, apply func(now time.Time) error, target sagadom.State) error {
	from := s.State
	expected := s.Version

	if err := apply(u.now()); err != nil {
		return err
	}

	if err := u.sagas.UpdateCAS(ctx, s, expected); err != nil {
		if errors.Is(err, sagadom.ErrStaleSaga) {
			fresh, gErr := u.sagas.Get(ctx, s.SagaID)
			if gErr != nil {
				return fmt.Errorf("checkout: re-read after stale write: %w", gErr)
			}
			if fresh != nil && sagadom.Reachable(target, fresh.State) {
				log.Printf("[checkout_uc] lost CAS race, already advanced sagaId=%s target=%s actual=%s",
					s.SagaID, target, fresh.State)
				*s = *fresh
				return nil
			}
			log.Printf("[checkout_uc] ERROR stale saga write sagaId=%s target=%s", s.SagaID, target)
			return sagadom.ErrStaleSaga
		}
		return fmt.Errorf("checkout: persist %s: %w", target, err)
	}

	u.obs.Transition(from.String(), target.String())
	return nil
}

// failStep persists a terminal failure transition and returns the saga; the
// failure itself is not an error to the caller, it is the recorded outcome.
func (u *CheckoutUsecase) failStep(ctx context.Context, s *sagadom.OrderSaga, apply func(now time.Time) error, target sagadom.State) (*sagadom.OrderSaga, error) {
	if err := u.advance(ctx, s, apply, target); err != nil {
		return nil, err
	}
	return s, nil
}

func failureKind(err error) string {
	if errors.Is(err, paymentdom.ErrGatewayUnavailable) || errors.Is(err, shipmentdom.ErrCarrierUnavailable) {
		return "retryable"
	}
	return "rejected"
}
