// internal/adapters/in/http/shop/handler/checkout_handler.go
package shopHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	usecase "storefront/internal/application/usecase"
	sagadom "storefront/internal/domain/saga"
)

// CheckoutHandler drives the order saga over HTTP.
//
//	POST /shop/checkout               begin (body: mode, optional sagaId)
//	GET  /shop/checkout/{id}          current saga state
//	POST /shop/checkout/{id}/payment  confirm an online payment
//	POST /shop/checkout/{id}/cod      confirm a cash-on-delivery order
//	POST /shop/checkout/{id}/resume   re-drive an interrupted saga
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) http.Handler {
	return &CheckoutHandler{uc: uc}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}

	sagaID, action := splitCheckoutPath(r.URL.Path)

	switch {
	case r.Method == http.MethodPost && sagaID == "" && action == "":
		h.handleBegin(w, r)
	case r.Method == http.MethodGet && sagaID != "" && action == "":
		h.handleGet(w, r, sagaID)
	case r.Method == http.MethodPost && sagaID != "" && action == "payment":
		h.handleConfirmPayment(w, r, sagaID)
	case r.Method == http.MethodPost && sagaID != "" && action == "cod":
		h.handleConfirmCod(w, r, sagaID)
	case r.Method == http.MethodPost && sagaID != "" && action == "resume":
		h.handleResume(w, r, sagaID)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

// splitCheckoutPath extracts ({id}, action) from the path after "/checkout".
// Both are empty for the collection root.
func splitCheckoutPath(p string) (sagaID, action string) {
	p = strings.TrimRight(p, "/")
	i := strings.Index(p, "/checkout")
	if i < 0 {
		return "", ""
	}
	rest := strings.Trim(strings.TrimPrefix(p[i:], "/checkout"), "/")
	if rest == "" {
		return "", ""
	}
	parts := strings.SplitN(rest, "/", 2)
	sagaID = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		action = strings.TrimSpace(parts[1])
	}
	return sagaID, action
}

// -------------------------
// handlers
// -------------------------

type beginCheckoutReq struct {
	Mode   string `json:"mode"`
	SagaID string `json:"sagaId"`
}

func (h *CheckoutHandler) handleBegin(w http.ResponseWriter, r *http.Request) {
	userID := readUserID(r)
	if userID == "" {
		writeErr(w, http.StatusBadRequest, "userId is required")
		return
	}

	var req beginCheckoutReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	mode := sagadom.Mode(strings.ToUpper(strings.TrimSpace(req.Mode)))
	if mode == "" {
		mode = sagadom.ModeOnline
	}

	s, err := h.uc.BeginCheckout(r.Context(), userID, mode, req.SagaID)
	if err != nil {
		h.writeSagaErr(w, s, err)
		return
	}

	log.Printf("[shop_checkout_handler] begin ok sagaId=%s state=%s userId=%s", s.SagaID, s.State, userID)
	writeJSON(w, http.StatusCreated, s)
}

func (h *CheckoutHandler) handleGet(w http.ResponseWriter, r *http.Request, sagaID string) {
	s, err := h.uc.GetSagaState(r.Context(), sagaID)
	if err != nil {
		h.writeSagaErr(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type confirmPaymentReq struct {
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

func (h *CheckoutHandler) handleConfirmPayment(w http.ResponseWriter, r *http.Request, sagaID string) {
	var req confirmPaymentReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.PaymentID) == "" || strings.TrimSpace(req.Signature) == "" {
		writeErr(w, http.StatusBadRequest, "paymentId and signature are required")
		return
	}

	s, err := h.uc.ConfirmOnlinePayment(r.Context(), sagaID, req.PaymentID, req.Signature)
	if err != nil {
		h.writeSagaErr(w, s, err)
		return
	}

	log.Printf("[shop_checkout_handler] payment confirm ok sagaId=%s state=%s", s.SagaID, s.State)
	writeJSON(w, http.StatusOK, s)
}

func (h *CheckoutHandler) handleConfirmCod(w http.ResponseWriter, r *http.Request, sagaID string) {
	s, err := h.uc.ConfirmCodOrder(r.Context(), sagaID)
	if err != nil {
		h.writeSagaErr(w, s, err)
		return
	}

	log.Printf("[shop_checkout_handler] cod confirm ok sagaId=%s state=%s", s.SagaID, s.State)
	writeJSON(w, http.StatusOK, s)
}

func (h *CheckoutHandler) handleResume(w http.ResponseWriter, r *http.Request, sagaID string) {
	s, err := h.uc.Resume(r.Context(), sagaID)
	if err != nil {
		h.writeSagaErr(w, s, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// writeSagaErr maps domain errors to HTTP. When the saga itself is known
// (idempotency conflicts) it rides along in the body so the client can see
// the current state without a second request.
func (h *CheckoutHandler) writeSagaErr(w http.ResponseWriter, s *sagadom.OrderSaga, err error) {
	switch {
	case errors.Is(err, sagadom.ErrSagaNotFound):
		writeErr(w, http.StatusNotFound, "checkout not found")

	case errors.Is(err, sagadom.ErrAlreadyProcessed):
		if s != nil {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": "already processed",
				"saga":  s,
			})
			return
		}
		writeErr(w, http.StatusConflict, "already processed")

	case errors.Is(err, sagadom.ErrStaleSaga),
		errors.Is(err, sagadom.ErrIllegalTransition),
		errors.Is(err, usecase.ErrCheckoutWrongMode):
		writeErr(w, http.StatusConflict, err.Error())

	case errors.Is(err, sagadom.ErrInvalidMode),
		errors.Is(err, usecase.ErrCheckoutUserIDEmpty),
		errors.Is(err, usecase.ErrCheckoutSagaIDEmpty):
		writeErr(w, http.StatusBadRequest, err.Error())

	default:
		log.Printf("[shop_checkout_handler] error err=%v", err)
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
