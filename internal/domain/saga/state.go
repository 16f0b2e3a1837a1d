// internal/domain/saga/state.go
package saga

// State of an order-fulfillment saga.
//
// Online flow:
//
//	CREATED -> PRICED -> PAYMENT_PENDING -> PAYMENT_VERIFIED -> SHIPPED -> COMPLETED
//
// COD flow:
//
//	CREATED -> PRICED -> SHIP_PENDING -> SHIPPED -> COMPLETED
//
// COD is a distinct variant, not a shortcut through the online-payment
// states: payment must be VERIFIED before a shipment is attempted on the
// online path, and no state may be skipped on either path.
type State string

const (
	StateCreated         State = "CREATED"
	StatePriced          State = "PRICED"
	StatePriceFailed     State = "PRICE_FAILED"
	StatePaymentPending  State = "PAYMENT_PENDING"
	StatePaymentInitFail State = "PAYMENT_INIT_FAILED"
	StatePaymentVerified State = "PAYMENT_VERIFIED"
	StatePaymentRejected State = "PAYMENT_REJECTED"
	StateShipPending     State = "SHIP_PENDING"
	StateShipped         State = "SHIPPED"
	StateShipFailed      State = "SHIP_FAILED"
	StateCompleted       State = "COMPLETED"
	StateCancelled       State = "CANCELLED"
)

// validNext holds every legal transition. Terminal states have no entry.
var validNext = map[State][]State{
	StateCreated:         {StatePriced, StatePriceFailed, StateCancelled},
	StatePriced:          {StatePaymentPending, StatePaymentInitFail, StateShipPending, StateCancelled},
	StatePaymentPending:  {StatePaymentVerified, StatePaymentRejected, StateCancelled},
	StatePaymentVerified: {StateShipped, StateShipFailed},
	StateShipPending:     {StateShipped, StateShipFailed},
	StateShipped:         {StateCompleted},
}

// IsTerminal reports whether no further transition is allowed.
func (s State) IsTerminal() bool {
	_, ok := validNext[s]
	return !ok
}

// String representation (for logging)
func (s State) String() string { return string(s) }

// CanTransition reports whether from -> to is a single legal step.
func CanTransition(from, to State) bool {
	for _, n := range validNext[from] {
		if n == to {
			return true
		}
	}
	return false
}

// Reachable reports whether to can be reached from from by zero or more legal
// steps. Used by losing CAS writers to decide between no-op (the saga already
// advanced to or past the intended target) and a real conflict.
func Reachable(from, to State) bool {
	if from == to {
		return true
	}
	seen := map[State]bool{from: true}
	stack := []State{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range validNext[cur] {
			if n == to {
				return true
			}
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}
