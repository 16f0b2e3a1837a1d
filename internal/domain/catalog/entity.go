// internal/domain/catalog/entity.go
package catalog

import "errors"

var (
	ErrInvalidProduct = errors.New("catalog: invalid product")
)

// Product is the read model the pricing step depends on.
// The catalog itself (CRUD, images) is owned elsewhere; this package only
// defines what checkout needs: the authoritative unit price.
type Product struct {
	ID          string
	Name        string
	Price       int // minor units (paise)
	PackageSize string
}
