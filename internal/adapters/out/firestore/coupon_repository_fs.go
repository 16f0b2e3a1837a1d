// internal/adapters/out/firestore/coupon_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	coupondom "storefront/internal/domain/coupon"
)

// CouponRepositoryFS implements coupon.Repository using Firestore.
//
// Collection design:
// - collection: coupons
// - docId: <code>__v<version> (append-only; a version is never rewritten)
type CouponRepositoryFS struct {
	Client *firestore.Client
}

func NewCouponRepositoryFS(client *firestore.Client) *CouponRepositoryFS {
	return &CouponRepositoryFS{Client: client}
}

func (r *CouponRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("coupons")
}

type couponDoc struct {
	Code            string    `firestore:"code"`
	DiscountPercent int       `firestore:"discountPercent"`
	Version         int64     `firestore:"version"`
	ActiveFrom      time.Time `firestore:"activeFrom"`
	ActiveUntil     time.Time `firestore:"activeUntil"`
	CreatedAt       time.Time `firestore:"createdAt"`
}

// Put appends a coupon version.
func (r *CouponRepositoryFS) Put(ctx context.Context, c coupondom.Coupon) error {
	if r == nil || r.Client == nil {
		return errors.New("coupon_repository_fs: firestore client is nil")
	}

	docID := fmt.Sprintf("%s__v%d", c.Code, c.Version)
	_, err := r.col().Doc(docID).Set(ctx, couponDoc{
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		Version:         c.Version,
		ActiveFrom:      c.ActiveFrom,
		ActiveUntil:     c.ActiveUntil,
		CreatedAt:       c.CreatedAt,
	})
	return err
}

// ActiveAt returns the coupon version whose window covers t, or (nil, nil)
// if none. Overlapping windows resolve to the highest version. The range
// query is on activeUntil only; activeFrom is filtered in code to keep the
// query single-field.
func (r *CouponRepositoryFS) ActiveAt(ctx context.Context, t time.Time) (*coupondom.Coupon, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("coupon_repository_fs: firestore client is nil")
	}

	t = t.UTC()
	docs, err := r.col().Where("activeUntil", ">", t).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	var best *coupondom.Coupon
	for _, snap := range docs {
		var d couponDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		// re-validate through the entity constructor: a doc written outside
		// this repo (legacy admin tooling) may carry an uncapped percentage
		c, cErr := coupondom.New(d.Code, d.DiscountPercent, d.Version, d.ActiveFrom, d.ActiveUntil, d.CreatedAt)
		if cErr != nil {
			log.Printf("[coupon_repository_fs] WARN skipping invalid coupon doc docId=%s err=%v", snap.Ref.ID, cErr)
			continue
		}
		if !c.IsActiveAt(t) {
			continue
		}
		if best == nil || c.Version > best.Version {
			cp := c
			best = &cp
		}
	}
	return best, nil
}
