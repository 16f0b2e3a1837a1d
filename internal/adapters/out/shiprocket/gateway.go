// internal/adapters/out/shiprocket/gateway.go
package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/pricing"
	shipdom "storefront/internal/domain/shipment"
)

const defaultBaseURL = "https://apiv2.shiprocket.in"

// Carrier-side constants for the standard parcel profile.
const (
	hsnCode       = 44122
	parcelLength  = 10.0 // cm
	parcelBreadth = 15.0 // cm
	parcelHeight  = 20.0 // cm
	parcelWeight  = 1.0  // kg
)

// Gateway implements shipment.Gateway against the Shiprocket adhoc order API.
//
// The carrier order_id is derived from the sagaId ("ORDER_<sagaId>"), which is
// the idempotency token: Shiprocket rejects a duplicate order_id instead of
// creating a second shipment, so a timed-out call can be retried safely.
type Gateway struct {
	client  *http.Client
	baseURL string
	token   string
}

// New creates the gateway adapter. baseURL may be empty (production API).
func New(baseURL, token string) *Gateway {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Gateway{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
	}
}

type orderItem struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Units        int    `json:"units"`
	SellingPrice string `json:"selling_price"`
	HSN          int    `json:"hsn"`
}

type createOrderRequest struct {
	OrderID           string      `json:"order_id"`
	OrderDate         string      `json:"order_date"`
	BillingName       string      `json:"billing_customer_name"`
	BillingLastName   string      `json:"billing_last_name"`
	BillingAddress    string      `json:"billing_address"`
	BillingAddress2   string      `json:"billing_address_2,omitempty"`
	BillingCity       string      `json:"billing_city"`
	BillingPincode    string      `json:"billing_pincode"`
	BillingState      string      `json:"billing_state"`
	BillingCountry    string      `json:"billing_country"`
	BillingPhone      string      `json:"billing_phone"`
	ShippingIsBilling bool        `json:"shipping_is_billing"`
	OrderItems        []orderItem `json:"order_items"`
	PaymentMethod     string      `json:"payment_method"`
	SubTotal          int         `json:"sub_total"`
	Length            float64     `json:"length"`
	Breadth           float64     `json:"breadth"`
	Height            float64     `json:"height"`
	Weight            float64     `json:"weight"`
}

type createOrderResponse struct {
	OrderID    json.Number `json:"order_id"`
	ShipmentID json.Number `json:"shipment_id"`
	Status     string      `json:"status"`
	Message    string      `json:"message"`
}

// CarrierReference builds the carrier-side order_id for a saga.
func CarrierReference(sagaID string) string {
	return "ORDER_" + strings.TrimSpace(sagaID)
}

// CreateShipment submits the carrier order.
func (g *Gateway) CreateShipment(ctx context.Context, sagaID string, snap pricing.Snapshot, addr shipdom.AddressSnapshot) (shipdom.Record, error) {
	if g == nil || g.client == nil {
		return shipdom.Record{}, fmt.Errorf("shiprocket: gateway is not configured")
	}
	if err := addr.Validate(); err != nil {
		return shipdom.Record{}, err
	}
	if len(snap.Lines) == 0 {
		return shipdom.Record{}, shipdom.ErrInvalidItems
	}

	items := make([]orderItem, 0, len(snap.Lines))
	snapItems := make([]shipdom.ItemSnapshot, 0, len(snap.Lines))
	for _, ln := range snap.Lines {
		items = append(items, orderItem{
			Name:         ln.Name,
			SKU:          ln.ProductID,
			Units:        ln.Qty,
			SellingPrice: strconv.Itoa(ln.UnitPrice),
			HSN:          hsnCode,
		})
		snapItems = append(snapItems, shipdom.ItemSnapshot{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			UnitPrice: ln.UnitPrice,
			Qty:       ln.Qty,
		})
	}

	reqBody := createOrderRequest{
		OrderID:           CarrierReference(sagaID),
		OrderDate:         time.Now().UTC().Format("2006-01-02 15:04"),
		BillingName:       addr.Name,
		BillingLastName:   "",
		BillingAddress:    addr.Line1,
		BillingAddress2:   addr.Line2,
		BillingCity:       addr.City,
		BillingPincode:    addr.Pincode,
		BillingState:      addr.State,
		BillingCountry:    addr.Country,
		BillingPhone:      addr.Phone,
		ShippingIsBilling: true,
		OrderItems:        items,
		PaymentMethod:     "Prepaid",
		SubTotal:          snap.Total,
		Length:            parcelLength,
		Breadth:           parcelBreadth,
		Height:            parcelHeight,
		Weight:            parcelWeight,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return shipdom.Record{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/external/orders/create/adhoc", bytes.NewReader(body))
	if err != nil {
		return shipdom.Record{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return shipdom.Record{}, fmt.Errorf("%w: %v", shipdom.ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return shipdom.Record{}, fmt.Errorf("%w: read response: %v", shipdom.ErrCarrierUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		log.Printf("[shiprocket] WARN carrier 5xx status=%d sagaId=%s", resp.StatusCode, sagaID)
		return shipdom.Record{}, fmt.Errorf("%w: status %d", shipdom.ErrCarrierUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var out createOrderResponse
		_ = json.Unmarshal(respBody, &out)
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		log.Printf("[shiprocket] WARN carrier rejected sagaId=%s: %s", sagaID, msg)
		return shipdom.Record{}, fmt.Errorf("%w: %s", shipdom.ErrCarrierRejected, msg)
	}

	var out createOrderResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return shipdom.Record{}, fmt.Errorf("shiprocket: decode response: %w", err)
	}
	if out.ShipmentID.String() == "" {
		return shipdom.Record{}, fmt.Errorf("%w: carrier returned no shipment id", shipdom.ErrCarrierRejected)
	}

	log.Printf("[shiprocket] OK shipment created sagaId=%s shipmentId=%s carrierOrderId=%s", sagaID, out.ShipmentID, out.OrderID)
	return shipdom.Record{
		ShipmentID:     out.ShipmentID.String(),
		CarrierOrderID: out.OrderID.String(),
		Status:         shipdom.StatusCreated,
		Address:        addr,
		Items:          snapItems,
	}, nil
}
