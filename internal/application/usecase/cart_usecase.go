// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	cartdom "storefront/internal/domain/cart"
)

var (
	ErrCartRepoMissing   = errors.New("cart_uc: cart repository is not configured")
	ErrCartUserIDEmpty   = errors.New("cart_uc: userId is empty")
	ErrCartProductEmpty  = errors.New("cart_uc: productId is empty")
	ErrCartQtyOutOfRange = errors.New("cart_uc: qty is out of range")
)

// Policy
var (
	MaxLineQty = 99
)

// CartUsecase fronts the cart store for the surrounding application.
// No pricing happens here; the cart is treated as advisory input until the
// checkout saga snapshots it.
type CartUsecase struct {
	repo cartdom.Repository
}

func NewCartUsecase(repo cartdom.Repository) *CartUsecase {
	return &CartUsecase{repo: repo}
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (*cartdom.Cart, error) {
	if u == nil || u.repo == nil {
		return nil, ErrCartRepoMissing
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrCartUserIDEmpty
	}
	return u.repo.GetCart(ctx, uid)
}

// SetLine sets the absolute quantity (not an increment) for a product.
func (u *CartUsecase) SetLine(ctx context.Context, userID, productID string, qty int) error {
	if u == nil || u.repo == nil {
		return ErrCartRepoMissing
	}
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" {
		return ErrCartUserIDEmpty
	}
	if pid == "" {
		return ErrCartProductEmpty
	}
	if qty <= 0 || qty > MaxLineQty {
		return ErrCartQtyOutOfRange
	}

	if err := u.repo.UpsertLine(ctx, uid, pid, qty); err != nil {
		return fmt.Errorf("cart_uc: upsert line: %w", err)
	}
	log.Printf("[cart_uc] OK line set userId=%s productId=%s qty=%d", uid, pid, qty)
	return nil
}

func (u *CartUsecase) RemoveLine(ctx context.Context, userID, productID string) error {
	if u == nil || u.repo == nil {
		return ErrCartRepoMissing
	}
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" {
		return ErrCartUserIDEmpty
	}
	if pid == "" {
		return ErrCartProductEmpty
	}
	if err := u.repo.RemoveLine(ctx, uid, pid); err != nil {
		return fmt.Errorf("cart_uc: remove line: %w", err)
	}
	log.Printf("[cart_uc] OK line removed userId=%s productId=%s", uid, pid)
	return nil
}
