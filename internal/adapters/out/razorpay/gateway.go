// internal/adapters/out/razorpay/gateway.go
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	paymentdom "storefront/internal/domain/payment"
)

const defaultBaseURL = "https://api.razorpay.com"

// Gateway implements payment.Gateway against the Razorpay Orders API.
//
// CreateIntent maps to POST /v1/orders; the sagaId travels as the order
// receipt, so a retried call after a timeout stays tied to the same order on
// the gateway side. Verify re-computes the checkout signature (HMAC-SHA256
// over "orderId|paymentId" with the key secret) entirely server-side.
type Gateway struct {
	client    *http.Client
	baseURL   string
	keyID     string
	keySecret string
}

// New creates the gateway adapter. baseURL may be empty (production API).
func New(baseURL, keyID, keySecret string) *Gateway {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Gateway{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   baseURL,
		keyID:     strings.TrimSpace(keyID),
		keySecret: keySecret,
	}
}

type createOrderRequest struct {
	Amount   int    `json:"amount"` // minor units (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent creates a gateway-side order.
func (g *Gateway) CreateIntent(ctx context.Context, reference string, amount int, currency string) (paymentdom.Intent, error) {
	if g == nil || g.client == nil {
		return paymentdom.Intent{}, fmt.Errorf("razorpay: gateway is not configured")
	}
	if amount <= 0 {
		return paymentdom.Intent{}, paymentdom.ErrInvalidAmount
	}

	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" {
		cur = "INR"
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: cur,
		Receipt:  strings.TrimSpace(reference),
	})
	if err != nil {
		return paymentdom.Intent{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return paymentdom.Intent{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		// transport error: the remote side may still have succeeded
		return paymentdom.Intent{}, fmt.Errorf("%w: %v", paymentdom.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return paymentdom.Intent{}, fmt.Errorf("%w: read response: %v", paymentdom.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		log.Printf("[razorpay] WARN gateway 5xx status=%d", resp.StatusCode)
		return paymentdom.Intent{}, fmt.Errorf("%w: status %d", paymentdom.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		_ = json.Unmarshal(respBody, &er)
		desc := er.Error.Description
		if desc == "" {
			desc = fmt.Sprintf("status %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(desc), "amount") {
			return paymentdom.Intent{}, fmt.Errorf("%w: %s", paymentdom.ErrInvalidAmount, desc)
		}
		return paymentdom.Intent{}, fmt.Errorf("razorpay: create order failed: %s", desc)
	}

	var out createOrderResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return paymentdom.Intent{}, fmt.Errorf("razorpay: decode response: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return paymentdom.Intent{}, fmt.Errorf("razorpay: create order returned no order id")
	}

	log.Printf("[razorpay] OK order created gatewayOrderId=%s amount=%d currency=%s", out.ID, amount, cur)
	return paymentdom.NewIntent(out.ID, amount, cur)
}

// Verify checks the hosted-checkout signature: HMAC-SHA256 over
// "orderId|paymentId" keyed with the shared secret, compared in constant
// time. Pure function of its inputs, so repeated calls are trivially
// idempotent.
func (g *Gateway) Verify(gatewayOrderID, paymentID, signature string) bool {
	if g == nil || g.keySecret == "" {
		return false
	}

	oid := strings.TrimSpace(gatewayOrderID)
	pid := strings.TrimSpace(paymentID)
	sig := strings.TrimSpace(signature)
	if oid == "" || pid == "" || sig == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(oid + "|" + pid))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(sig))
}
