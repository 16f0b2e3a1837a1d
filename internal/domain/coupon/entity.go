// internal/domain/coupon/entity.go
package coupon

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCode     = errors.New("coupon: invalid code")
	ErrInvalidDiscount = errors.New("coupon: invalid discountPercent")
	ErrInvalidWindow   = errors.New("coupon: invalid activation window")
)

// Policy
var (
	// MaxDiscountPercent caps the percentage discount a coupon may carry.
	MaxDiscountPercent = 20
)

// Coupon is a versioned, queryable discount configuration with an explicit
// activation window.
//
// Each change to a code produces a new Version, so a pricing snapshot can
// record exactly which coupon version it applied and the discount stays
// reproducible after the coupon changes.
type Coupon struct {
	Code            string
	DiscountPercent int
	Version         int64

	ActiveFrom  time.Time
	ActiveUntil time.Time

	CreatedAt time.Time
}

// New validates and builds a coupon version.
func New(code string, discountPercent int, version int64, activeFrom, activeUntil, now time.Time) (Coupon, error) {
	c := Coupon{
		Code:            strings.ToUpper(strings.TrimSpace(code)),
		DiscountPercent: discountPercent,
		Version:         version,
		ActiveFrom:      activeFrom.UTC(),
		ActiveUntil:     activeUntil.UTC(),
		CreatedAt:       now.UTC(),
	}
	if err := c.validate(); err != nil {
		return Coupon{}, err
	}
	return c, nil
}

// IsActiveAt reports whether the coupon's activation window covers t.
func (c Coupon) IsActiveAt(t time.Time) bool {
	t = t.UTC()
	return !t.Before(c.ActiveFrom) && t.Before(c.ActiveUntil)
}

func (c Coupon) validate() error {
	if c.Code == "" {
		return ErrInvalidCode
	}
	if c.DiscountPercent <= 0 || c.DiscountPercent > MaxDiscountPercent {
		return ErrInvalidDiscount
	}
	if c.Version <= 0 {
		return ErrInvalidWindow
	}
	if c.ActiveFrom.IsZero() || c.ActiveUntil.IsZero() || !c.ActiveUntil.After(c.ActiveFrom) {
		return ErrInvalidWindow
	}
	return nil
}
