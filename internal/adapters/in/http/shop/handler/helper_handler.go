// internal/adapters/in/http/shop/handler/helper_handler.go
package shopHandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/middleware"
)

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": strings.TrimSpace(msg),
	})
}

func readJSON(r *http.Request, dst any) error {
	if dst == nil {
		return errors.New("dst is nil")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)) // 1MB
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// readUserID resolves the acting shopper. The verified token always wins;
// query/header forms only apply when the request skipped auth (local dev).
func readUserID(r *http.Request) string {
	if uid, ok := middleware.CurrentUserUID(r); ok {
		return uid
	}
	if v := strings.TrimSpace(r.URL.Query().Get("userId")); v != "" {
		return v
	}
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
