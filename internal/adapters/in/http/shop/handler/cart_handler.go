// internal/adapters/in/http/shop/handler/cart_handler.go
package shopHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
)

// CartHandler serves the shopper's cart endpoints.
//
//	GET    /shop/cart        current cart
//	PUT    /shop/cart/items  set absolute qty for one product
//	DELETE /shop/cart/items  remove one product
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) http.Handler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	isItems := strings.HasSuffix(path, "/items")

	switch {
	case r.Method == http.MethodGet && !isItems:
		h.handleGet(w, r)
	case r.Method == http.MethodPut && isItems:
		h.handleSetLine(w, r)
	case r.Method == http.MethodDelete && isItems:
		h.handleRemoveLine(w, r)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := readUserID(r)
	if userID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}

	c, err := h.uc.GetCart(r.Context(), userID)
	if err != nil {
		if errors.Is(err, cartdom.ErrUserNotFound) {
			writeErr(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[shop_cart_handler] GET error userId=%s err=%v", userID, err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, c)
}

type cartLineReq struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) handleSetLine(w http.ResponseWriter, r *http.Request) {
	userID := readUserID(r)
	if userID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}

	var req cartLineReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.uc.SetLine(r.Context(), userID, req.ProductID, req.Qty); err != nil {
		h.writeCartErr(w, userID, err)
		return
	}
	h.respondCart(w, r, userID)
}

func (h *CartHandler) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	userID := readUserID(r)
	if userID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}

	var req cartLineReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.uc.RemoveLine(r.Context(), userID, req.ProductID); err != nil {
		h.writeCartErr(w, userID, err)
		return
	}
	h.respondCart(w, r, userID)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, userID string) {
	c, err := h.uc.GetCart(r.Context(), userID)
	if err != nil {
		log.Printf("[shop_cart_handler] re-read after write failed userId=%s err=%v", userID, err)
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) writeCartErr(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, usecase.ErrCartUserIDEmpty),
		errors.Is(err, usecase.ErrCartProductEmpty),
		errors.Is(err, usecase.ErrCartQtyOutOfRange),
		errors.Is(err, cartdom.ErrInvalidLine):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cartdom.ErrUserNotFound):
		writeErr(w, http.StatusNotFound, "user not found")
	default:
		log.Printf("[shop_cart_handler] write error userId=%s err=%v", userID, err)
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
