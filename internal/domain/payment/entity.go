// internal/domain/payment/entity.go
package payment

import (
	"errors"
	"strings"
)

// IntentStatus mirrors the gateway-side lifecycle of a payment intent.
type IntentStatus string

const (
	StatusCreated    IntentStatus = "CREATED"
	StatusAuthorized IntentStatus = "AUTHORIZED"
	StatusVerified   IntentStatus = "VERIFIED"
	StatusFailed     IntentStatus = "FAILED"
)

func IsValidStatus(s IntentStatus) bool {
	switch s {
	case StatusCreated, StatusAuthorized, StatusVerified, StatusFailed:
		return true
	}
	return false
}

// Errors
var (
	// ErrInvalidAmount: amount <= 0. Validation, non-retryable.
	ErrInvalidAmount = errors.New("payment: invalid amount")

	// ErrGatewayUnavailable: transport error / 5xx from the gateway. Retryable
	// with the same idempotency token.
	ErrGatewayUnavailable = errors.New("payment: gateway unavailable")

	ErrInvalidGatewayOrderID = errors.New("payment: invalid gatewayOrderId")
	ErrInvalidCurrency       = errors.New("payment: invalid currency")
	ErrInvalidStatus         = errors.New("payment: invalid status")
)

// Intent is the gateway-side order created for one saga. Owned exclusively by
// the saga instance that created it; never shared.
type Intent struct {
	GatewayOrderID string       `json:"gatewayOrderId" firestore:"gatewayOrderId"`
	Amount         int          `json:"amount" firestore:"amount"`
	Currency       string       `json:"currency" firestore:"currency"`
	Status         IntentStatus `json:"status" firestore:"status"`
}

// NewIntent validates and builds an intent in CREATED state.
func NewIntent(gatewayOrderID string, amount int, currency string) (Intent, error) {
	in := Intent{
		GatewayOrderID: strings.TrimSpace(gatewayOrderID),
		Amount:         amount,
		Currency:       strings.ToUpper(strings.TrimSpace(currency)),
		Status:         StatusCreated,
	}
	if err := in.validate(); err != nil {
		return Intent{}, err
	}
	return in, nil
}

// SetStatus moves the intent to next. No ordering is enforced here; the saga
// state machine owns step ordering, the intent only mirrors the gateway.
func (in *Intent) SetStatus(next IntentStatus) error {
	if !IsValidStatus(next) {
		return ErrInvalidStatus
	}
	in.Status = next
	return nil
}

func (in Intent) validate() error {
	if in.GatewayOrderID == "" {
		return ErrInvalidGatewayOrderID
	}
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if in.Currency == "" {
		return ErrInvalidCurrency
	}
	if !IsValidStatus(in.Status) {
		return ErrInvalidStatus
	}
	return nil
}
