// internal/application/usecase/mocks_test.go
package usecase

import (
	"context"
	"time"

	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	coupondom "storefront/internal/domain/coupon"
	paymentdom "storefront/internal/domain/payment"
	pricingdom "storefront/internal/domain/pricing"
	sagadom "storefront/internal/domain/saga"
	shipmentdom "storefront/internal/domain/shipment"
)

// ------------------------------------------------------------
// cart repository
// ------------------------------------------------------------

type mockCartRepo struct {
	Carts    map[string]*cartdom.Cart
	GetErr   error
	ClearErr error
	Cleared  []string
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{Carts: map[string]*cartdom.Cart{}}
}

func (m *mockCartRepo) GetCart(_ context.Context, userID string) (*cartdom.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.Carts[userID]
	if !ok {
		return nil, cartdom.ErrUserNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCartRepo) UpsertLine(_ context.Context, userID, productID string, qty int) error {
	c, ok := m.Carts[userID]
	if !ok {
		return cartdom.ErrUserNotFound
	}
	return c.SetLine(productID, "", 0, qty, time.Now())
}

func (m *mockCartRepo) RemoveLine(_ context.Context, userID, productID string) error {
	c, ok := m.Carts[userID]
	if !ok {
		return cartdom.ErrUserNotFound
	}
	return c.Remove(productID, time.Now())
}

func (m *mockCartRepo) ClearCart(_ context.Context, userID string) error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Cleared = append(m.Cleared, userID)
	if c, ok := m.Carts[userID]; ok {
		c.Clear(time.Now())
	}
	return nil
}

// ------------------------------------------------------------
// catalog query
// ------------------------------------------------------------

type mockCatalog struct {
	Products map[string]*catalogdom.Product
	Err      error
}

func (m *mockCatalog) GetByID(_ context.Context, productID string) (*catalogdom.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Products[productID], nil
}

// ------------------------------------------------------------
// coupon repository
// ------------------------------------------------------------

type mockCouponRepo struct {
	Active *coupondom.Coupon
	Err    error
}

func (m *mockCouponRepo) ActiveAt(_ context.Context, _ time.Time) (*coupondom.Coupon, error) {
	return m.Active, m.Err
}

func (m *mockCouponRepo) Put(_ context.Context, _ coupondom.Coupon) error {
	return nil
}

// ------------------------------------------------------------
// saga repository (in-memory, real CAS semantics)
// ------------------------------------------------------------

type mockSagaRepo struct {
	Sagas    map[string]*sagadom.OrderSaga
	CASCalls int

	// ConflictOnce makes the next UpdateCAS lose: PreConflict (the concurrent
	// winner's write) is applied to the stored record first, then the call
	// returns ErrStaleSaga.
	ConflictOnce bool
	PreConflict  func(s *sagadom.OrderSaga)
}

func newMockSagaRepo() *mockSagaRepo {
	return &mockSagaRepo{Sagas: map[string]*sagadom.OrderSaga{}}
}

func (m *mockSagaRepo) Create(_ context.Context, s *sagadom.OrderSaga) error {
	if _, ok := m.Sagas[s.SagaID]; ok {
		return sagadom.ErrSagaExists
	}
	cp := *s
	m.Sagas[s.SagaID] = &cp
	return nil
}

func (m *mockSagaRepo) Get(_ context.Context, sagaID string) (*sagadom.OrderSaga, error) {
	s, ok := m.Sagas[sagaID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockSagaRepo) UpdateCAS(_ context.Context, s *sagadom.OrderSaga, expectedVersion int64) error {
	m.CASCalls++

	cur, ok := m.Sagas[s.SagaID]
	if !ok {
		return sagadom.ErrSagaNotFound
	}

	if m.ConflictOnce {
		m.ConflictOnce = false
		if m.PreConflict != nil {
			m.PreConflict(cur)
			cur.Version++
		}
		return sagadom.ErrStaleSaga
	}

	if cur.Version != expectedVersion {
		return sagadom.ErrStaleSaga
	}

	cp := *s
	cp.Version = expectedVersion + 1
	m.Sagas[s.SagaID] = &cp
	s.Version = cp.Version
	return nil
}

// ------------------------------------------------------------
// payment gateway
// ------------------------------------------------------------

type mockPaymentGW struct {
	CreateCalls int
	Refs        []string
	FailTimes   int // first N CreateIntent calls fail retryably

	VerifyOK    bool
	VerifyCalls int
}

func (m *mockPaymentGW) CreateIntent(_ context.Context, reference string, amount int, currency string) (paymentdom.Intent, error) {
	m.CreateCalls++
	m.Refs = append(m.Refs, reference)
	if m.CreateCalls <= m.FailTimes {
		return paymentdom.Intent{}, paymentdom.ErrGatewayUnavailable
	}
	return paymentdom.NewIntent("order_"+reference, amount, currency)
}

func (m *mockPaymentGW) Verify(_, _, _ string) bool {
	m.VerifyCalls++
	return m.VerifyOK
}

// ------------------------------------------------------------
// shipment gateway
// ------------------------------------------------------------

type mockShipmentGW struct {
	CreateCalls int
	Refs        []string
	FailTimes   int   // first N calls fail retryably
	RejectErr   error // non-nil: every call fails with this
}

func (m *mockShipmentGW) CreateShipment(_ context.Context, sagaID string, snap pricingdom.Snapshot, addr shipmentdom.AddressSnapshot) (shipmentdom.Record, error) {
	m.CreateCalls++
	m.Refs = append(m.Refs, sagaID)
	if m.RejectErr != nil {
		return shipmentdom.Record{}, m.RejectErr
	}
	if m.CreateCalls <= m.FailTimes {
		return shipmentdom.Record{}, shipmentdom.ErrCarrierUnavailable
	}
	items := make([]shipmentdom.ItemSnapshot, 0, len(snap.Lines))
	for _, ln := range snap.Lines {
		items = append(items, shipmentdom.ItemSnapshot{
			ProductID: ln.ProductID, Name: ln.Name, UnitPrice: ln.UnitPrice, Qty: ln.Qty,
		})
	}
	return shipmentdom.Record{
		ShipmentID:     "sh-" + sagaID,
		CarrierOrderID: "co-" + sagaID,
		Status:         shipmentdom.StatusCreated,
		Address:        addr,
		Items:          items,
	}, nil
}

// ------------------------------------------------------------
// address reader / completion notifier
// ------------------------------------------------------------

type mockAddresses struct {
	Addr *shipmentdom.AddressSnapshot
	Err  error
}

func (m *mockAddresses) PrimaryAddress(_ context.Context, _ string) (*shipmentdom.AddressSnapshot, error) {
	return m.Addr, m.Err
}

type mockNotifier struct {
	Calls int
	Err   error
}

func (m *mockNotifier) OrderCompleted(_ context.Context, _ *sagadom.OrderSaga) error {
	m.Calls++
	return m.Err
}
