package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// Backend is the slice of the order API this repository consumes.
type Backend interface {
	ListOrders(ctx context.Context) ([]api.OrderSummary, error)
	GetOrderDetail(ctx context.Context, orderID string) (*api.OrderDetail, error)
	GetInvoice(ctx context.Context, orderDetailID string) (*domain.Invoice, error)
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.OrderSummary, error)
}

// Repository is a read-through cache of the user's orders. A listing is
// one summaries fetch plus, per order, two dependent fetches (detail,
// then invoice-by-detail) merged into a denormalized view. The per-order
// fetches run concurrently and degrade independently: a failed detail
// fetch leaves that order summary-only, a failed invoice fetch leaves it
// without invoice fields, and neither disturbs sibling orders.
type Repository struct {
	backend Backend
	logger  *slog.Logger
	sfg     singleflight.Group // prevents concurrent refetch stampede

	mu     sync.RWMutex
	orders []domain.Order
	valid  bool

	onAuthExpired func()
}

func NewRepository(backend Backend, logger *slog.Logger) *Repository {
	return &Repository{backend: backend, logger: logger}
}

func (r *Repository) SetAuthExpiredHook(fn func()) {
	r.onAuthExpired = fn
}

// List returns the cached orders, fetching and enriching them when the
// cache is cold.
func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	if r.valid {
		cached := cloneOrders(r.orders)
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.sfg.Do("orders", func() (interface{}, error) {
		orders, err := r.fetch(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.orders = orders
		r.valid = true
		r.mu.Unlock()
		return orders, nil
	})
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) && r.onAuthExpired != nil {
			r.onAuthExpired()
		}
		return nil, err
	}
	return cloneOrders(v.([]domain.Order)), nil
}

func (r *Repository) fetch(ctx context.Context) ([]domain.Order, error) {
	summaries, err := r.backend.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]domain.Order, len(summaries))
	var wg sync.WaitGroup
	for i, sum := range summaries {
		orders[i] = domain.Order{
			ID:            sum.ID,
			OrderDetailID: sum.OrderDetailID,
			Status:        sum.Status,
			Amount:        sum.Amount,
			ShippingCost:  sum.ShippingCost,
			TotalAmount:   sum.TotalAmount,
			CreatedAt:     sum.CreatedAt,
		}

		// Each goroutine writes only its own slot; a failure degrades
		// that one order and never cancels the siblings.
		wg.Add(1)
		go func(i int, orderID string) {
			defer wg.Done()
			r.enrich(ctx, &orders[i], orderID)
		}(i, sum.ID)
	}
	wg.Wait()

	return orders, nil
}

func (r *Repository) enrich(ctx context.Context, order *domain.Order, orderID string) {
	detail, err := r.backend.GetOrderDetail(ctx, orderID)
	if err != nil {
		r.logger.Warn("order detail fetch failed, keeping summary only",
			"order_id", orderID, "error", err)
		return
	}
	order.Items = detail.Items
	if detail.OrderDetailID != "" {
		order.OrderDetailID = detail.OrderDetailID
	}

	invoice, err := r.backend.GetInvoice(ctx, order.OrderDetailID)
	if err != nil {
		r.logger.Warn("invoice fetch failed, keeping order without invoice",
			"order_id", orderID, "order_detail_id", order.OrderDetailID, "error", err)
		return
	}
	order.Invoice = invoice
}

// Get returns one cached order by id, filling the cache if needed.
func (r *Repository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	orders, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

// CheckoutInput is what the checkout flow provides: the frozen cart
// snapshot plus the externally quoted shipping cost.
type CheckoutInput struct {
	Items        []domain.OrderItem
	Amount       int64
	ShippingCost int64
}

// Create posts a new order and invalidates the cache. The idempotency key
// lets the backend drop a duplicate submission of the same checkout.
func (r *Repository) Create(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, errors.New("cannot create an order from an empty cart")
	}
	if in.ShippingCost < 0 {
		return nil, errors.New("shipping cost must not be negative")
	}

	created, err := r.backend.CreateOrder(ctx, api.CreateOrderRequest{
		IdempotencyKey: uuid.New().String(),
		Items:          in.Items,
		Amount:         in.Amount,
		ShippingCost:   in.ShippingCost,
		TotalAmount:    in.Amount + in.ShippingCost,
	})
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) && r.onAuthExpired != nil {
			r.onAuthExpired()
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	r.Invalidate()

	return &domain.Order{
		ID:            created.ID,
		OrderDetailID: created.OrderDetailID,
		Status:        created.Status,
		Items:         in.Items,
		Amount:        created.Amount,
		ShippingCost:  created.ShippingCost,
		TotalAmount:   created.TotalAmount,
		CreatedAt:     created.CreatedAt,
	}, nil
}

// ApplyStatus moves a cached order to the status the backend reported.
// Same-status is a no-op; an illegal step (a stale or reordered gateway
// event) is ignored rather than applied. Returns whether the cached copy
// changed.
func (r *Repository) ApplyStatus(orderID string, status domain.OrderStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID != orderID {
			continue
		}
		current := r.orders[i].Status
		if current == status {
			return false
		}
		if !domain.CanTransitionTo(current, status) {
			r.logger.Warn("ignoring illegal status transition",
				"order_id", orderID, "from", current, "to", status)
			return false
		}
		r.orders[i].Status = status
		return true
	}
	return false
}

// Invalidate drops the cache; the next List refetches.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.valid = false
}

// CachedOrderIDs returns the ids currently in cache without fetching.
// The logout path uses it to clear per-order payment sessions.
func (r *Repository) CachedOrderIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.orders))
	for i := range r.orders {
		ids = append(ids, r.orders[i].ID)
	}
	return ids
}

// Clear empties the cache entirely. Used by the forced-logout path.
func (r *Repository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = nil
	r.valid = false
}

func cloneOrders(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	return out
}
