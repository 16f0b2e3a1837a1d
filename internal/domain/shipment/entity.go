// internal/domain/shipment/entity.go
package shipment

import (
	"errors"
	"strings"
)

// Status of a shipment record.
type Status string

const (
	StatusCreated Status = "CREATED"
	StatusFailed  Status = "FAILED"
)

// Errors
var (
	// ErrCarrierRejected: the carrier refused the order (invalid pincode,
	// unsupported region). Authoritative, non-retryable; surfaced to the user.
	ErrCarrierRejected = errors.New("shipment: carrier rejected")

	// ErrCarrierUnavailable: transport error / 5xx. Retryable with the same
	// idempotency token.
	ErrCarrierUnavailable = errors.New("shipment: carrier unavailable")

	ErrInvalidAddress = errors.New("shipment: invalid address")
	ErrInvalidItems   = errors.New("shipment: invalid items")
)

// AddressSnapshot is a copy of the delivery address taken when the shipment
// is placed. Later mutation of the user's address book cannot retroactively
// alter a placed shipment.
type AddressSnapshot struct {
	Name    string `json:"name" firestore:"name"`
	Line1   string `json:"line1" firestore:"line1"`
	Line2   string `json:"line2,omitempty" firestore:"line2,omitempty"`
	City    string `json:"city" firestore:"city"`
	State   string `json:"state" firestore:"state"`
	Pincode string `json:"pincode" firestore:"pincode"`
	Phone   string `json:"phone" firestore:"phone"`
	Country string `json:"country" firestore:"country"`
}

// Validate checks the fields the carrier requires.
func (a AddressSnapshot) Validate() error {
	if strings.TrimSpace(a.Line1) == "" ||
		strings.TrimSpace(a.City) == "" ||
		strings.TrimSpace(a.State) == "" ||
		strings.TrimSpace(a.Pincode) == "" {
		return ErrInvalidAddress
	}
	return nil
}

// ItemSnapshot is a copy of one ordered line as submitted to the carrier.
type ItemSnapshot struct {
	ProductID string `json:"productId" firestore:"productId"`
	Name      string `json:"name" firestore:"name"`
	UnitPrice int    `json:"unitPrice" firestore:"unitPrice"`
	Qty       int    `json:"qty" firestore:"qty"`
}

// Record is the durable result of a carrier order. Address/Items are copies,
// not references.
type Record struct {
	ShipmentID     string `json:"shipmentId" firestore:"shipmentId"`
	CarrierOrderID string `json:"carrierOrderId" firestore:"carrierOrderId"`
	Status         Status `json:"status" firestore:"status"`

	Address AddressSnapshot `json:"address" firestore:"address"`
	Items   []ItemSnapshot  `json:"items" firestore:"items"`
}
