// internal/adapters/in/http/shop/router.go
package shop

import "net/http"

// Deps is the shopper-facing handler set.
type Deps struct {
	Cart     http.Handler
	Checkout http.Handler

	// operational endpoint, mounted without auth
	Metrics http.Handler
}

// Register registers shopper-facing routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	if deps.Cart != nil {
		mux.Handle("/shop/cart", deps.Cart)
		mux.Handle("/shop/cart/", deps.Cart)
	}

	if deps.Checkout != nil {
		mux.Handle("/shop/checkout", deps.Checkout)
		mux.Handle("/shop/checkout/", deps.Checkout)
	}

	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}
}
