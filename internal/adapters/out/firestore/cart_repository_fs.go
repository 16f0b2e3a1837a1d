// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "storefront/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: users
// - docId: userId ✅ (docId is the source of truth)
// - field: cart (map productId -> {name, price, qty, addedAt, updatedAt})
//
// Line writes go through a transaction so addedAt survives re-sets, but the
// semantics stay last-write-wins per line: concurrent writers for the same
// (userId, productId) are not merged.
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

type cartLineDoc struct {
	Name      string    `firestore:"name"`
	Price     int       `firestore:"price"`
	Qty       int       `firestore:"qty"`
	AddedAt   time.Time `firestore:"addedAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// GetCart returns the user's cart. A user doc with no cart field is an empty
// cart; a missing user doc is ErrUserNotFound.
func (r *CartRepositoryFS) GetCart(ctx context.Context, userID string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("cart_repository_fs: userID is empty")
	}

	snap, err := r.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, cartdom.ErrUserNotFound
		}
		return nil, err
	}

	lines, err := cartLinesFromSnapshot(snap)
	if err != nil {
		return nil, err
	}

	c := &cartdom.Cart{
		UserID:    uid,
		Lines:     lines,
		UpdatedAt: snap.UpdateTime,
	}
	return c, nil
}

// UpsertLine sets the absolute quantity for productID and stamps
// addedAt/updatedAt. Fails with ErrUserNotFound if the user does not exist.
func (r *CartRepositoryFS) UpsertLine(ctx context.Context, userID, productID string, qty int) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" || qty <= 0 {
		return cartdom.ErrInvalidLine
	}

	ref := r.col().Doc(uid)

	return r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return cartdom.ErrUserNotFound
			}
			return err
		}

		now := time.Now().UTC()
		line := cartLineDoc{Qty: qty, AddedAt: now, UpdatedAt: now}

		// preserve addedAt and the advisory name/price on re-set
		if existing, ok := lineFromData(snap.Data(), pid); ok {
			line.Name = existing.Name
			line.Price = existing.Price
			if !existing.AddedAt.IsZero() {
				line.AddedAt = existing.AddedAt
			}
		}

		return tx.Update(ref, []firestore.Update{
			{FieldPath: firestore.FieldPath{"cart", pid}, Value: line},
		})
	})
}

// RemoveLine removes productID. Removing an absent line is a no-op.
func (r *CartRepositoryFS) RemoveLine(ctx context.Context, userID, productID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" {
		return cartdom.ErrInvalidLine
	}

	_, err := r.col().Doc(uid).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"cart", pid}, Value: firestore.Delete},
	})
	if err != nil && status.Code(err) == codes.NotFound {
		return cartdom.ErrUserNotFound
	}
	return err
}

// ClearCart empties the cart field. Idempotent: a missing user doc counts as
// an already-empty cart so a completing saga never wedges on it.
func (r *CartRepositoryFS) ClearCart(ctx context.Context, userID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return errors.New("cart_repository_fs: userID is empty")
	}

	_, err := r.col().Doc(uid).Update(ctx, []firestore.Update{
		{Path: "cart", Value: map[string]any{}},
	})
	if err != nil && status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

// -----------------------------------------
// Parsing
// -----------------------------------------

// cartLinesFromSnapshot parses the cart field by hand rather than DataTo, so
// legacy docs (missing stamps, numeric types from the JS client) keep working.
func cartLinesFromSnapshot(snap *firestore.DocumentSnapshot) ([]cartdom.Line, error) {
	data := snap.Data()
	if data == nil {
		return []cartdom.Line{}, nil
	}

	raw, ok := data["cart"].(map[string]any)
	if !ok || len(raw) == 0 {
		return []cartdom.Line{}, nil
	}

	lines := make([]cartdom.Line, 0, len(raw))
	for pid := range raw {
		doc, ok := lineFromData(data, pid)
		if !ok || doc.Qty <= 0 {
			continue
		}
		lines = append(lines, cartdom.Line{
			ProductID: pid,
			Name:      doc.Name,
			Price:     doc.Price,
			Qty:       doc.Qty,
			AddedAt:   doc.AddedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func lineFromData(data map[string]any, pid string) (cartLineDoc, bool) {
	raw, ok := data["cart"].(map[string]any)
	if !ok {
		return cartLineDoc{}, false
	}
	m, ok := raw[pid].(map[string]any)
	if !ok {
		return cartLineDoc{}, false
	}

	var out cartLineDoc
	if v, ok := m["name"].(string); ok {
		out.Name = v
	}
	out.Price = asInt(m["price"])
	out.Qty = asInt(m["qty"])
	if v, ok := m["addedAt"].(time.Time); ok {
		out.AddedAt = v
	}
	if v, ok := m["updatedAt"].(time.Time); ok {
		out.UpdatedAt = v
	}
	return out, true
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
