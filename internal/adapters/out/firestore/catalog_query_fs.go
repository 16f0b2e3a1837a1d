// internal/adapters/out/firestore/catalog_query_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	catalogdom "storefront/internal/domain/catalog"
)

// CatalogQueryFS implements catalog.Query using Firestore.
//
// Collection design:
// - collection: products
// - docId: productId
type CatalogQueryFS struct {
	Client *firestore.Client
}

func NewCatalogQueryFS(client *firestore.Client) *CatalogQueryFS {
	return &CatalogQueryFS{Client: client}
}

func (q *CatalogQueryFS) col() *firestore.CollectionRef {
	return q.Client.Collection("products")
}

// GetByID returns (nil, nil) if the product does not exist (nil policy);
// pricing drops such lines with a warning instead of failing the checkout.
func (q *CatalogQueryFS) GetByID(ctx context.Context, productID string) (*catalogdom.Product, error) {
	if q == nil || q.Client == nil {
		return nil, errors.New("catalog_query_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(productID)
	if pid == "" {
		return nil, catalogdom.ErrInvalidProduct
	}

	snap, err := q.col().Doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	data := snap.Data()
	p := &catalogdom.Product{ID: pid}
	if v, ok := data["name"].(string); ok {
		p.Name = v
	}
	if v, ok := data["packageSize"].(string); ok {
		p.PackageSize = v
	}
	p.Price = asInt(data["price"])

	if p.Price <= 0 {
		// unpriced product cannot be sold; treat as absent
		return nil, nil
	}
	return p, nil
}
