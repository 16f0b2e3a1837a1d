// internal/adapters/in/http/shop/handler/checkout_handler_test.go
package shopHandler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCheckoutPath(t *testing.T) {
	cases := []struct {
		path   string
		sagaID string
		action string
	}{
		{"/shop/checkout", "", ""},
		{"/shop/checkout/", "", ""},
		{"/shop/checkout/saga-1", "saga-1", ""},
		{"/shop/checkout/saga-1/", "saga-1", ""},
		{"/shop/checkout/saga-1/payment", "saga-1", "payment"},
		{"/shop/checkout/saga-1/cod", "saga-1", "cod"},
		{"/shop/checkout/saga-1/resume", "saga-1", "resume"},
		{"/cart", "", ""},
	}
	for _, c := range cases {
		sagaID, action := splitCheckoutPath(c.path)
		assert.Equal(t, c.sagaID, sagaID, c.path)
		assert.Equal(t, c.action, action, c.path)
	}
}

func TestReadUserID(t *testing.T) {
	r := httptest.NewRequest("GET", "/shop/cart?userId=u-query", nil)
	assert.Equal(t, "u-query", readUserID(r))

	r = httptest.NewRequest("GET", "/shop/cart", nil)
	r.Header.Set("X-User-Id", " u-header ")
	assert.Equal(t, "u-header", readUserID(r))

	r = httptest.NewRequest("GET", "/shop/cart", nil)
	assert.Equal(t, "", readUserID(r))
}
