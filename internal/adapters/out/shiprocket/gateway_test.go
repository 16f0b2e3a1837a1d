// internal/adapters/out/shiprocket/gateway_test.go
package shiprocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/pricing"
	shipdom "storefront/internal/domain/shipment"
)

func testSnapshot() pricing.Snapshot {
	return pricing.Snapshot{
		ID:     "snap-1",
		UserID: "user-1",
		Lines: []pricing.Line{
			{ProductID: "p1", Name: "Teak Tray", UnitPrice: 900, Qty: 2},
			{ProductID: "p2", Name: "Oak Bowl", UnitPrice: 450, Qty: 1},
		},
		Subtotal: 2250,
		Total:    2250,
		Currency: "INR",
	}
}

func testAddress() shipdom.AddressSnapshot {
	return shipdom.AddressSnapshot{
		Name:    "Asha Kulkarni",
		Line1:   "12 MG Road",
		City:    "Pune",
		State:   "Maharashtra",
		Pincode: "411001",
		Phone:   "9900112233",
		Country: "India",
	}
}

func TestCreateShipment_Success(t *testing.T) {
	var got createOrderRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/external/orders/create/adhoc", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order_id":443222,"shipment_id":442136,"status":"NEW"}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "sr-token")
	rec, err := g.CreateShipment(context.Background(), "saga-1", testSnapshot(), testAddress())
	require.NoError(t, err)

	assert.Equal(t, "442136", rec.ShipmentID)
	assert.Equal(t, "443222", rec.CarrierOrderID)
	assert.Equal(t, shipdom.StatusCreated, rec.Status)
	assert.Equal(t, testAddress(), rec.Address)
	require.Len(t, rec.Items, 2)
	assert.Equal(t, "p1", rec.Items[0].ProductID)
	assert.Equal(t, 2, rec.Items[0].Qty)

	assert.Equal(t, "Bearer sr-token", gotAuth)
	assert.Equal(t, "ORDER_saga-1", got.OrderID, "sagaId is the carrier idempotency token")
	assert.Equal(t, "Pune", got.BillingCity)
	assert.Equal(t, "411001", got.BillingPincode)
	assert.True(t, got.ShippingIsBilling)
	assert.Equal(t, 2250, got.SubTotal)
	require.Len(t, got.OrderItems, 2)
	assert.Equal(t, "p1", got.OrderItems[0].SKU)
	assert.Equal(t, "900", got.OrderItems[0].SellingPrice)
	assert.Equal(t, hsnCode, got.OrderItems[0].HSN)
	assert.Equal(t, parcelLength, got.Length)
	assert.Equal(t, parcelBreadth, got.Breadth)
	assert.Equal(t, parcelHeight, got.Height)
	assert.Equal(t, parcelWeight, got.Weight)
}

func TestCreateShipment_RejectedOn4xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"order_id already exists"}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "sr-token")
	_, err := g.CreateShipment(context.Background(), "saga-1", testSnapshot(), testAddress())
	assert.ErrorIs(t, err, shipdom.ErrCarrierRejected)
	assert.Contains(t, err.Error(), "order_id already exists")
}

func TestCreateShipment_UnavailableOn5xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := New(srv.URL, "sr-token")
	_, err := g.CreateShipment(context.Background(), "saga-1", testSnapshot(), testAddress())
	assert.ErrorIs(t, err, shipdom.ErrCarrierUnavailable)
}

func TestCreateShipment_TransportErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	g := New(srv.URL, "sr-token")
	_, err := g.CreateShipment(context.Background(), "saga-1", testSnapshot(), testAddress())
	assert.ErrorIs(t, err, shipdom.ErrCarrierUnavailable)
}

func TestCreateShipment_InvalidAddressNeverHitsTheWire(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	addr := testAddress()
	addr.Pincode = ""

	g := New(srv.URL, "sr-token")
	_, err := g.CreateShipment(context.Background(), "saga-1", testSnapshot(), addr)
	assert.ErrorIs(t, err, shipdom.ErrInvalidAddress)
	assert.False(t, called)
}

func TestCreateShipment_EmptySnapshot(t *testing.T) {
	g := New("", "sr-token")
	_, err := g.CreateShipment(context.Background(), "saga-1", pricing.Snapshot{}, testAddress())
	assert.ErrorIs(t, err, shipdom.ErrInvalidItems)
}

func TestCreateShipment_MissingShipmentID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"NEW"}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "sr-token")
	_, err := g.CreateShipment(context.Background(), "saga-1", testSnapshot(), testAddress())
	assert.ErrorIs(t, err, shipdom.ErrCarrierRejected)
}

func TestCarrierReference(t *testing.T) {
	assert.Equal(t, "ORDER_saga-1", CarrierReference(" saga-1 "))
}
