// internal/adapters/out/firestore/user_query_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	shipmentdom "storefront/internal/domain/shipment"
)

// UserQueryFS reads checkout-relevant fields off the user document: the
// primary delivery address and the contact email. The address book itself
// (CRUD) is owned elsewhere.
//
// Collection design:
// - collection: users
// - docId: userId
// - fields: address (array of address maps), email
type UserQueryFS struct {
	Client *firestore.Client
}

func NewUserQueryFS(client *firestore.Client) *UserQueryFS {
	return &UserQueryFS{Client: client}
}

func (q *UserQueryFS) col() *firestore.CollectionRef {
	return q.Client.Collection("users")
}

// PrimaryAddress returns a copy of the first address on file, or (nil, nil)
// if the user has none (nil policy).
func (q *UserQueryFS) PrimaryAddress(ctx context.Context, userID string) (*shipmentdom.AddressSnapshot, error) {
	if q == nil || q.Client == nil {
		return nil, errors.New("user_query_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, errors.New("user_query_fs: userID is empty")
	}

	snap, err := q.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	addrs, ok := snap.Data()["address"].([]any)
	if !ok || len(addrs) == 0 {
		return nil, nil
	}
	m, ok := addrs[0].(map[string]any)
	if !ok {
		return nil, nil
	}

	getStr := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	a := &shipmentdom.AddressSnapshot{
		Name:    getStr("name"),
		Line1:   getStr("line1"),
		Line2:   getStr("line2"),
		City:    getStr("city"),
		State:   getStr("state"),
		Pincode: getStr("pincode", "zip"),
		Phone:   getStr("phone"),
		Country: getStr("country"),
	}
	if a.Country == "" {
		a.Country = "India"
	}
	return a, nil
}

// Email returns the user's contact email, or "" if not on file.
func (q *UserQueryFS) Email(ctx context.Context, userID string) (string, error) {
	if q == nil || q.Client == nil {
		return "", errors.New("user_query_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return "", errors.New("user_query_fs: userID is empty")
	}

	snap, err := q.col().Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", err
	}

	if v, ok := snap.Data()["email"].(string); ok {
		return strings.TrimSpace(v), nil
	}
	return "", nil
}
