// internal/domain/pricing/snapshot.go
package pricing

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidSnapshotID = errors.New("pricing: invalid snapshotId")
	ErrInvalidUserID     = errors.New("pricing: invalid userId")
	ErrInvalidLines      = errors.New("pricing: invalid lines")
	ErrInvalidDiscount   = errors.New("pricing: invalid discount")
	ErrInvalidCurrency   = errors.New("pricing: invalid currency")
	ErrInvalidCreatedAt  = errors.New("pricing: invalid createdAt")
)

// Line is one priced line inside a snapshot. UnitPrice is the authoritative
// catalog price at snapshot time, in minor units (paise).
type Line struct {
	ProductID   string `json:"productId" firestore:"productId"`
	Name        string `json:"name" firestore:"name"`
	UnitPrice   int    `json:"unitPrice" firestore:"unitPrice"`
	Qty         int    `json:"qty" firestore:"qty"`
	PackageSize string `json:"packageSize,omitempty" firestore:"packageSize,omitempty"`
}

// Snapshot is an immutable priced copy of a cart, taken once at checkout and
// never re-read mid-saga. Later mutation of the cart or catalog cannot
// retroactively change it.
//
// Invariants: Total = Subtotal - Discount, Total >= 0, every UnitPrice and
// Qty > 0. CouponCode/CouponVersion record which coupon version produced
// Discount, so the amount stays reproducible after the coupon changes.
type Snapshot struct {
	ID     string `json:"snapshotId" firestore:"snapshotId"`
	UserID string `json:"userId" firestore:"userId"`

	Lines []Line `json:"lines" firestore:"lines"`

	Subtotal int    `json:"subtotal" firestore:"subtotal"`
	Discount int    `json:"discount" firestore:"discount"`
	Total    int    `json:"total" firestore:"total"`
	Currency string `json:"currency" firestore:"currency"`

	CouponCode    string `json:"couponCode,omitempty" firestore:"couponCode,omitempty"`
	CouponVersion int64  `json:"couponVersion,omitempty" firestore:"couponVersion,omitempty"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// New computes totals from lines and an optional percentage discount.
//
// discountPercent == 0 means no coupon; couponCode/couponVersion must then be
// empty/zero. The discount amount is floor(subtotal * percent / 100).
func New(
	id, userID string,
	lines []Line,
	discountPercent int,
	couponCode string,
	couponVersion int64,
	currency string,
	createdAt time.Time,
) (Snapshot, error) {
	s := Snapshot{
		ID:            strings.TrimSpace(id),
		UserID:        strings.TrimSpace(userID),
		Lines:         cloneLines(lines),
		Currency:      strings.ToUpper(strings.TrimSpace(currency)),
		CouponCode:    strings.TrimSpace(couponCode),
		CouponVersion: couponVersion,
		CreatedAt:     createdAt.UTC(),
	}

	if discountPercent < 0 || discountPercent > 100 {
		return Snapshot{}, ErrInvalidDiscount
	}
	if discountPercent > 0 && (s.CouponCode == "" || s.CouponVersion <= 0) {
		return Snapshot{}, ErrInvalidDiscount
	}
	if discountPercent == 0 && (s.CouponCode != "" || s.CouponVersion != 0) {
		return Snapshot{}, ErrInvalidDiscount
	}

	subtotal := 0
	for _, l := range s.Lines {
		subtotal += l.UnitPrice * l.Qty
	}
	s.Subtotal = subtotal
	s.Discount = subtotal * discountPercent / 100
	s.Total = s.Subtotal - s.Discount

	if err := s.validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func (s Snapshot) validate() error {
	if s.ID == "" {
		return ErrInvalidSnapshotID
	}
	if s.UserID == "" {
		return ErrInvalidUserID
	}
	if len(s.Lines) == 0 {
		return ErrInvalidLines
	}
	for _, l := range s.Lines {
		if strings.TrimSpace(l.ProductID) == "" || l.UnitPrice <= 0 || l.Qty <= 0 {
			return ErrInvalidLines
		}
	}
	if s.Currency == "" {
		return ErrInvalidCurrency
	}
	if s.Discount < 0 || s.Discount > s.Subtotal {
		return ErrInvalidDiscount
	}
	if s.Total != s.Subtotal-s.Discount || s.Total < 0 {
		return ErrInvalidDiscount
	}
	if s.CreatedAt.IsZero() {
		return ErrInvalidCreatedAt
	}
	return nil
}

func cloneLines(src []Line) []Line {
	if len(src) == 0 {
		return []Line{}
	}
	cp := make([]Line, len(src))
	copy(cp, src)
	return cp
}
