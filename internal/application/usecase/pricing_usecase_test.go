// internal/application/usecase/pricing_usecase_test.go
package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	coupondom "storefront/internal/domain/coupon"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func seedCart(t *testing.T, repo *mockCartRepo, userID string, lines ...cartdom.Line) {
	t.Helper()
	c, err := cartdom.New(userID, lines, testNow)
	require.NoError(t, err)
	repo.Carts[userID] = c
}

func testCatalog() *mockCatalog {
	return &mockCatalog{Products: map[string]*catalogdom.Product{
		"p1": {ID: "p1", Name: "Teak Tray", Price: 900, PackageSize: "M"},
		"p2": {ID: "p2", Name: "Oak Bowl", Price: 450, PackageSize: "S"},
	}}
}

func TestPrice_ResolvesCatalogPrices(t *testing.T) {
	carts := newMockCartRepo()
	// stored cart price 1 is advisory and must be ignored
	seedCart(t, carts, "user-1",
		cartdom.Line{ProductID: "p1", Price: 1, Qty: 2},
		cartdom.Line{ProductID: "p2", Price: 1, Qty: 1},
	)

	uc := NewPricingUsecase(carts, testCatalog(), nil, "INR")

	snap, err := uc.Price(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2250, snap.Subtotal)
	assert.Equal(t, 2250, snap.Total)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 900, snap.Lines[0].UnitPrice, "unit price comes from the catalog")
	assert.NotEmpty(t, snap.ID)
}

func TestPrice_EmptyCart(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(t, carts, "user-1") // user exists, cart empty

	uc := NewPricingUsecase(carts, testCatalog(), nil, "INR")

	_, err := uc.Price(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPrice_MissingProductDropped(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(t, carts, "user-1",
		cartdom.Line{ProductID: "p1", Qty: 1},
		cartdom.Line{ProductID: "gone", Qty: 4},
	)

	uc := NewPricingUsecase(carts, testCatalog(), nil, "INR")

	snap, err := uc.Price(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "p1", snap.Lines[0].ProductID)
}

func TestPrice_AllProductsMissing(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(t, carts, "user-1", cartdom.Line{ProductID: "gone", Qty: 1})

	uc := NewPricingUsecase(carts, testCatalog(), nil, "INR")

	_, err := uc.Price(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPrice_AppliesActiveCoupon(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(t, carts, "user-1", cartdom.Line{ProductID: "p1", Qty: 2}) // 1800

	active, err := coupondom.New("WELCOME10", 10, 3, testNow.Add(-time.Hour), testNow.Add(time.Hour), testNow)
	require.NoError(t, err)

	uc := NewPricingUsecase(carts, testCatalog(), &mockCouponRepo{Active: &active}, "INR")

	snap, err := uc.Price(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1800, snap.Subtotal)
	assert.Equal(t, 180, snap.Discount)
	assert.Equal(t, 1620, snap.Total)
	assert.Equal(t, "WELCOME10", snap.CouponCode)
	assert.Equal(t, int64(3), snap.CouponVersion)
}

func TestPrice_ClampsCouponOverCap(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(t, carts, "user-1", cartdom.Line{ProductID: "p1", Qty: 2}) // 1800

	// a coupon doc written outside the entity constructor can carry any
	// percentage; the cap must hold regardless of what the repository returns
	rogue := &coupondom.Coupon{
		Code:            "MEGA90",
		DiscountPercent: 90,
		Version:         1,
		ActiveFrom:      testNow.Add(-time.Hour),
		ActiveUntil:     testNow.Add(time.Hour),
		CreatedAt:       testNow,
	}

	uc := NewPricingUsecase(carts, testCatalog(), &mockCouponRepo{Active: rogue}, "INR")

	snap, err := uc.Price(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1800, snap.Subtotal)
	assert.Equal(t, 360, snap.Discount, "90%% clamped to the %d%% cap", coupondom.MaxDiscountPercent)
	assert.Equal(t, 1440, snap.Total)
	assert.Equal(t, "MEGA90", snap.CouponCode)
}

func TestPrice_NoCouponRepoMeansNoDiscount(t *testing.T) {
	carts := newMockCartRepo()
	seedCart(t, carts, "user-1", cartdom.Line{ProductID: "p1", Qty: 1})

	uc := NewPricingUsecase(carts, testCatalog(), nil, "INR")

	snap, err := uc.Price(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, snap.Discount)
	assert.Empty(t, snap.CouponCode)
}

func TestPrice_Validation(t *testing.T) {
	uc := NewPricingUsecase(newMockCartRepo(), testCatalog(), nil, "INR")

	_, err := uc.Price(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrPricingUserIDEmpty)
}
