// internal/application/usecase/pricing_usecase.go
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
	catalogdom "storefront/internal/domain/catalog"
	coupondom "storefront/internal/domain/coupon"
	pricingdom "storefront/internal/domain/pricing"
)

var (
	ErrPricingCartRepoMissing = errors.New("pricing: cart repository is not configured")
	ErrPricingCatalogMissing  = errors.New("pricing: catalog query is not configured")
	ErrPricingUserIDEmpty     = errors.New("pricing: userId is empty")

	// ErrEmptyCart: no valid lines remain after dropping items whose product
	// no longer exists. Validation, no state change.
	ErrEmptyCart = errors.New("pricing: cart is empty")
)

// PricingUsecase resolves a live cart into an immutable priced snapshot.
//
// The stored cart price is advisory and is NOT trusted; each line's unit
// price is re-resolved from the catalog. At most one active coupon is
// applied (percentage, capped by the coupon entity). Missing products are
// dropped with a warning, not fatal.
type PricingUsecase struct {
	cartRepo cartdom.Repository
	catalog  catalogdom.Query
	coupons  coupondom.Repository // optional; nil disables discounts

	currency string
	now      func() time.Time
	newID    func() string
}

func NewPricingUsecase(
	cartRepo cartdom.Repository,
	catalog catalogdom.Query,
	coupons coupondom.Repository,
	currency string,
) *PricingUsecase {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" {
		cur = "INR"
	}
	return &PricingUsecase{
		cartRepo: cartRepo,
		catalog:  catalog,
		coupons:  coupons,
		currency: cur,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Price reads the live cart and produces a PricedCartSnapshot.
//
// The snapshot is deterministic for identical inputs (same cart, catalog and
// active coupon) apart from its snapshotId, which is unique per attempt so
// later steps can detect staleness.
func (u *PricingUsecase) Price(ctx context.Context, userID string) (pricingdom.Snapshot, error) {
	if u == nil || u.cartRepo == nil {
		return pricingdom.Snapshot{}, ErrPricingCartRepoMissing
	}
	if u.catalog == nil {
		return pricingdom.Snapshot{}, ErrPricingCatalogMissing
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return pricingdom.Snapshot{}, ErrPricingUserIDEmpty
	}

	c, err := u.cartRepo.GetCart(ctx, uid)
	if err != nil {
		return pricingdom.Snapshot{}, fmt.Errorf("pricing: get cart: %w", err)
	}
	if c == nil || c.IsEmpty() {
		return pricingdom.Snapshot{}, ErrEmptyCart
	}

	now := u.now().UTC()

	lines := make([]pricingdom.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		p, pErr := u.catalog.GetByID(ctx, l.ProductID)
		if pErr != nil {
			return pricingdom.Snapshot{}, fmt.Errorf("pricing: resolve product %s: %w", l.ProductID, pErr)
		}
		if p == nil {
			// dropped, not fatal
			log.Printf("[pricing_uc] WARN product missing, dropping line userId=%s productId=%s", uid, l.ProductID)
			continue
		}
		lines = append(lines, pricingdom.Line{
			ProductID:   p.ID,
			Name:        p.Name,
			UnitPrice:   p.Price,
			Qty:         l.Qty,
			PackageSize: p.PackageSize,
		})
	}
	if len(lines) == 0 {
		return pricingdom.Snapshot{}, ErrEmptyCart
	}

	discountPercent := 0
	couponCode := ""
	var couponVersion int64

	if u.coupons != nil {
		active, cErr := u.coupons.ActiveAt(ctx, now)
		if cErr != nil {
			return pricingdom.Snapshot{}, fmt.Errorf("pricing: resolve active coupon: %w", cErr)
		}
		if active != nil {
			discountPercent = active.DiscountPercent
			if discountPercent > coupondom.MaxDiscountPercent {
				// the cap holds even when a stored coupon exceeds it
				log.Printf("[pricing_uc] WARN coupon over cap, clamping code=%s version=%d percent=%d cap=%d",
					active.Code, active.Version, discountPercent, coupondom.MaxDiscountPercent)
				discountPercent = coupondom.MaxDiscountPercent
			}
			couponCode = active.Code
			couponVersion = active.Version
		}
	}

	snap, err := pricingdom.New(
		u.newID(),
		uid,
		lines,
		discountPercent,
		couponCode,
		couponVersion,
		u.currency,
		now,
	)
	if err != nil {
		return pricingdom.Snapshot{}, err
	}

	log.Printf("[pricing_uc] OK snapshot created userId=%s snapshotId=%s lines=%d subtotal=%d discount=%d total=%d",
		uid, snap.ID, len(snap.Lines), snap.Subtotal, snap.Discount, snap.Total,
	)
	return snap, nil
}
