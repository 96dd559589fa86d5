package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/cart"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/order"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/payment"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/review"
)

// stubBackend fakes the storefront backend for the whole surface: cart,
// orders, payments and reviews.
type stubBackend struct {
	m           sync.Mutex
	orderStatus domain.OrderStatus
	checkStatus domain.OrderStatus
	mailed      []string
}

func (b *stubBackend) AddLine(context.Context, string, string, int) error { return nil }
func (b *stubBackend) SetLine(context.Context, string, string, int) error { return nil }
func (b *stubBackend) RemoveLine(context.Context, string, string) error   { return nil }
func (b *stubBackend) GetCart(context.Context) ([]domain.CartLine, error) {
	return []domain.CartLine{{ProductID: "P1", Size: "M", Quantity: 3}}, nil
}

func (b *stubBackend) ListOrders(context.Context) ([]api.OrderSummary, error) {
	b.m.Lock()
	defer b.m.Unlock()
	return []api.OrderSummary{{
		ID: "O1", OrderDetailID: "D1", Status: b.orderStatus,
		Amount: 20000, ShippingCost: 5000, TotalAmount: 25000,
	}}, nil
}

func (b *stubBackend) GetOrderDetail(context.Context, string) (*api.OrderDetail, error) {
	return &api.OrderDetail{
		OrderDetailID: "D1",
		Items:         []domain.OrderItem{{ProductID: "P1", Size: "M", Quantity: 2, UnitPrice: 10000}},
	}, nil
}

func (b *stubBackend) GetInvoice(context.Context, string) (*domain.Invoice, error) {
	return &domain.Invoice{Code: "INV-1", Total: 25000}, nil
}

func (b *stubBackend) CreateOrder(_ context.Context, req api.CreateOrderRequest) (*api.OrderSummary, error) {
	return &api.OrderSummary{
		ID: "O2", OrderDetailID: "D2", Status: domain.OrderStatusAwaitingPayment,
		Amount: req.Amount, ShippingCost: req.ShippingCost, TotalAmount: req.TotalAmount,
	}, nil
}

func (b *stubBackend) CreateSession(context.Context, string, int64) (*api.SessionResult, error) {
	return &api.SessionResult{Token: "tok-1", GatewayInvoiceRef: "ref-1"}, nil
}

func (b *stubBackend) CheckStatus(context.Context, string, string, time.Time) (*api.StatusResult, error) {
	b.m.Lock()
	defer b.m.Unlock()
	return &api.StatusResult{Status: b.checkStatus, PaymentStatus: "settlement"}, nil
}

func (b *stubBackend) SendInvoiceEmail(_ context.Context, orderID string) error {
	b.m.Lock()
	defer b.m.Unlock()
	b.mailed = append(b.mailed, orderID)
	return nil
}

func (b *stubBackend) ListMine(context.Context) ([]domain.Review, error) { return nil, nil }

func (b *stubBackend) ListForProduct(context.Context, string) ([]domain.Review, error) {
	return []domain.Review{{OrderID: "O1", ProductID: "P1", Rating: 5, Comment: "great"}}, nil
}
func (b *stubBackend) Create(context.Context, string, string, int, string) error {
	return nil
}

// stubCatalog resolves every product unless drained.
type stubCatalog struct {
	stale bool
}

func (c *stubCatalog) Resolve(string, string) (domain.PriceOption, bool) {
	if c.stale {
		return domain.PriceOption{}, false
	}
	return domain.PriceOption{Size: "M", UnitPrice: 10000, UnitWeight: 250}, true
}

func (c *stubCatalog) Product(string) (domain.ProductInfo, bool) {
	if c.stale {
		return domain.ProductInfo{}, false
	}
	return domain.ProductInfo{Name: "Roasted Beans", ImageURL: "/img/p1.jpg"}, true
}

type tokenStore struct {
	m     sync.Mutex
	token string
}

func (t *tokenStore) Token() string {
	t.m.Lock()
	defer t.m.Unlock()
	return t.token
}

func (t *tokenStore) SetToken(token string) {
	t.m.Lock()
	defer t.m.Unlock()
	t.token = token
}

type routerFixture struct {
	backend *stubBackend
	catalog *stubCatalog
	router  http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger := slog.Default()
	backend := &stubBackend{
		orderStatus: domain.OrderStatusAwaitingPayment,
		checkStatus: domain.OrderStatusPaymentConfirmed,
	}
	catalog := &stubCatalog{}

	cartStore := cart.NewStore(backend, catalog, logger)
	orders := order.NewRepository(backend, logger)
	gate := review.NewGate(backend, orders, logger)
	sessions := payment.NewSessionCache(payment.NewMemoryStore(), backend, logger)
	reconciler := payment.NewReconciler(backend, orders, sessions, backend, logger)

	router := NewRouter(Deps{
		Cart:           NewCartHandler(cartStore),
		Checkout:       NewCheckoutHandler(cartStore, orders, catalog),
		Orders:         NewOrdersHandler(orders),
		Payments:       NewPaymentHandler(orders, sessions, reconciler),
		Reviews:        NewReviewHandler(gate, backend),
		Tokens:         &tokenStore{},
		RequestTimeout: 5 * time.Second,
	})
	return &routerFixture{backend: backend, catalog: catalog, router: router}
}

func (f *routerFixture) request(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if authed {
		req.Header.Set("Authorization", "Bearer tok-user")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.request(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodGet, "/api/v1/cart", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Basic dXNlcg==")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "only bearer credentials are accepted")
}

func TestRequestIDHeader(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.request(t, http.MethodGet, "/health", nil, false)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCart_AddItem(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodPost, "/api/v1/cart/items",
		map[string]any{"product_id": "P1", "size": "M", "quantity": 2}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	snapshot := decodeBody[cartResponseDTO](t, rec)
	assert.Equal(t, int64(20000), snapshot.Amount)
	assert.Equal(t, 500, snapshot.Weight)
	assert.Equal(t, 2, snapshot.Count)
}

func TestCart_RefreshAdoptsBackendSnapshot(t *testing.T) {
	f := newRouterFixture(t)
	f.request(t, http.MethodPost, "/api/v1/cart/items",
		map[string]any{"product_id": "P1", "size": "M", "quantity": 9}, true)

	rec := f.request(t, http.MethodPost, "/api/v1/cart/refresh", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	snapshot := decodeBody[cartResponseDTO](t, rec)
	assert.Equal(t, 3, snapshot.Count, "the backend snapshot wins wholesale")
	assert.Equal(t, int64(30000), snapshot.Amount)
}

func TestCart_AddItemValidation(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodPost, "/api/v1/cart/items",
		map[string]any{"product_id": "", "quantity": 2}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/v1/cart/items",
		map[string]any{"product_id": "P1", "size": "M", "quantity": 100}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_QuantityZeroNeedsConfirmation(t *testing.T) {
	f := newRouterFixture(t)
	f.request(t, http.MethodPost, "/api/v1/cart/items",
		map[string]any{"product_id": "P1", "size": "M", "quantity": 2}, true)

	rec := f.request(t, http.MethodPut, "/api/v1/cart/items/P1/M",
		map[string]any{"quantity": 0}, true)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "confirm_required", decodeBody[ErrorResponse](t, rec).Code)

	rec = f.request(t, http.MethodPut, "/api/v1/cart/items/P1/M",
		map[string]any{"quantity": 0, "confirm": true}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decodeBody[cartResponseDTO](t, rec).Count)
}

func TestCart_DecrementAtOneNeedsConfirmation(t *testing.T) {
	f := newRouterFixture(t)
	f.request(t, http.MethodPost, "/api/v1/cart/items",
		map[string]any{"product_id": "P1", "size": "M", "quantity": 1}, true)

	rec := f.request(t, http.MethodPost, "/api/v1/cart/items/P1/M/decrement", nil, true)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "confirm_required", decodeBody[ErrorResponse](t, rec).Code)
}

func TestCart_RemoveUnknownLine(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.request(t, http.MethodDelete, "/api/v1/cart/items/P9/M", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout(t *testing.T) {
	f := newRouterFixture(t)
	f.request(t, http.MethodPost, "/api/v1/cart/items",
		map[string]any{"product_id": "P1", "size": "M", "quantity": 2}, true)

	rec := f.request(t, http.MethodPost, "/api/v1/checkout",
		map[string]any{"shipping_cost": 5000}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody[domain.Order](t, rec)
	assert.Equal(t, int64(20000), created.Amount)
	assert.Equal(t, int64(25000), created.TotalAmount)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Roasted Beans", created.Items[0].ProductName)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.request(t, http.MethodPost, "/api/v1/checkout",
		map[string]any{"shipping_cost": 5000}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_cart", decodeBody[ErrorResponse](t, rec).Code)
}

func TestCheckout_StaleCart(t *testing.T) {
	f := newRouterFixture(t)
	f.request(t, http.MethodPost, "/api/v1/cart/items",
		map[string]any{"product_id": "P1", "size": "M", "quantity": 2}, true)

	f.catalog.stale = true
	rec := f.request(t, http.MethodPost, "/api/v1/checkout",
		map[string]any{"shipping_cost": 0}, true)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "stale_cart", decodeBody[ErrorResponse](t, rec).Code)
}

func TestListOrders(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.request(t, http.MethodGet, "/api/v1/orders", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[struct {
		Orders []domain.Order `json:"orders"`
	}](t, rec)
	require.Len(t, body.Orders, 1)
	assert.Equal(t, "O1", body.Orders[0].ID)
	require.NotNil(t, body.Orders[0].Invoice)
	assert.Equal(t, "INV-1", body.Orders[0].Invoice.Code)
}

func TestPay_ReturnsStableSession(t *testing.T) {
	f := newRouterFixture(t)

	first := f.request(t, http.MethodPost, "/api/v1/orders/O1/pay", nil, true)
	require.Equal(t, http.StatusOK, first.Code)
	session := decodeBody[sessionResponseDTO](t, first)
	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, "ref-1", session.GatewayInvoiceRef)

	second := f.request(t, http.MethodPost, "/api/v1/orders/O1/pay", nil, true)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, session, decodeBody[sessionResponseDTO](t, second))
}

func TestPay_UnknownOrder(t *testing.T) {
	f := newRouterFixture(t)
	rec := f.request(t, http.MethodPost, "/api/v1/orders/O9/pay", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPay_NotPayableAfterConfirmation(t *testing.T) {
	f := newRouterFixture(t)
	f.backend.orderStatus = domain.OrderStatusShipped

	rec := f.request(t, http.MethodPost, "/api/v1/orders/O1/pay", nil, true)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_payable", decodeBody[ErrorResponse](t, rec).Code)
}

func TestCallback_SuccessFlow(t *testing.T) {
	f := newRouterFixture(t)

	// Warm the orders cache and mint a session, as the widget flow would.
	f.request(t, http.MethodGet, "/api/v1/orders", nil, true)
	f.request(t, http.MethodPost, "/api/v1/orders/O1/pay", nil, true)

	// The callback arrives server-to-server without the user's credential.
	rec := f.request(t, http.MethodPost, "/api/v1/payments/callback", map[string]any{
		"order_id":    "O1",
		"invoice_ref": "ref-1",
		"issued_at":   time.Now().UTC().Format(time.RFC3339),
		"outcome":     "SUCCESS",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"O1"}, f.backend.mailed)

	// The cached order moved forward, so the order is no longer payable.
	rec = f.request(t, http.MethodPost, "/api/v1/orders/O1/pay", nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCallback_Validation(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.request(t, http.MethodPost, "/api/v1/payments/callback",
		map[string]any{"order_id": "O1", "outcome": "REFUNDED"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/v1/payments/callback",
		map[string]any{"outcome": "SUCCESS"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProductReviews_Public(t *testing.T) {
	f := newRouterFixture(t)

	// No bearer credential; product reviews are display data.
	rec := f.request(t, http.MethodGet, "/api/v1/products/P1/reviews", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[struct {
		Reviews []domain.Review `json:"reviews"`
	}](t, rec)
	require.Len(t, body.Reviews, 1)
	assert.Equal(t, 5, body.Reviews[0].Rating)
}

func TestSubmitReview(t *testing.T) {
	f := newRouterFixture(t)
	f.backend.orderStatus = domain.OrderStatusCompleted

	rec := f.request(t, http.MethodPost, "/api/v1/orders/O1/reviews",
		map[string]any{"product_id": "P1", "rating": 5, "comment": "great"}, true)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// The gate closes for this pair immediately.
	rec = f.request(t, http.MethodPost, "/api/v1/orders/O1/reviews",
		map[string]any{"product_id": "P1", "rating": 4}, true)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_reviewed", decodeBody[ErrorResponse](t, rec).Code)
}

func TestSubmitReview_Preconditions(t *testing.T) {
	f := newRouterFixture(t)
	f.backend.orderStatus = domain.OrderStatusCompleted

	rec := f.request(t, http.MethodPost, "/api/v1/orders/O1/reviews",
		map[string]any{"product_id": "P1", "rating": 9}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/v1/orders/O1/reviews",
		map[string]any{"product_id": "P9", "rating": 4}, true)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "product_not_in_order", decodeBody[ErrorResponse](t, rec).Code)

	f2 := newRouterFixture(t)
	rec = f2.request(t, http.MethodPost, "/api/v1/orders/O1/reviews",
		map[string]any{"product_id": "P1", "rating": 4}, true)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "order_not_completed", decodeBody[ErrorResponse](t, rec).Code)
}
