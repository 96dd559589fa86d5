package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

var (
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrOrderNotCompleted = errors.New("order is not completed yet")
	ErrProductNotInOrder = errors.New("product is not part of this order")
	ErrAlreadyReviewed   = errors.New("review already exists for this order and product")
)

// Backend is the review API slice the gate consumes.
type Backend interface {
	ListMine(ctx context.Context) ([]domain.Review, error)
	Create(ctx context.Context, orderID, productID string, rating int, comment string) error
}

// OrderSource resolves orders for the completed-order precondition.
type OrderSource interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	Invalidate()
}

type reviewKey struct {
	orderID   string
	productID string
}

// Gate enforces one review per (order, product), and only for completed
// orders. Both preconditions are checked locally before any network call;
// a server-side duplicate rejection is surfaced, never retried.
type Gate struct {
	backend Backend
	orders  OrderSource
	logger  *slog.Logger

	mu       sync.Mutex
	existing map[reviewKey]struct{}
	loaded   bool

	onAuthExpired func()
}

func NewGate(backend Backend, orders OrderSource, logger *slog.Logger) *Gate {
	return &Gate{
		backend:  backend,
		orders:   orders,
		logger:   logger,
		existing: make(map[reviewKey]struct{}),
	}
}

func (g *Gate) SetAuthExpiredHook(fn func()) {
	g.onAuthExpired = fn
}

// CanReview is the pure gate predicate over the cached review set.
func (g *Gate) CanReview(order *domain.Order, productID string) bool {
	if order == nil || order.Status != domain.OrderStatusCompleted {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	_, taken := g.existing[reviewKey{orderID: order.ID, productID: productID}]
	return !taken
}

// Submit validates locally, posts the review, and refreshes both the
// review set and the orders cache so the gate closes for this pair on the
// next evaluation.
func (g *Gate) Submit(ctx context.Context, orderID, productID string, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	if err := g.ensureLoaded(ctx); err != nil {
		return err
	}

	order, err := g.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusCompleted {
		return ErrOrderNotCompleted
	}
	if !orderContains(order, productID) {
		return ErrProductNotInOrder
	}
	if !g.CanReview(order, productID) {
		return ErrAlreadyReviewed
	}

	if err := g.backend.Create(ctx, orderID, productID, rating, comment); err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			if g.onAuthExpired != nil {
				g.onAuthExpired()
			}
			return err
		case errors.Is(err, api.ErrConflict):
			// The backend already holds a review for this pair; adopt
			// that fact locally instead of retrying.
			g.markReviewed(orderID, productID)
			return fmt.Errorf("%w: %v", ErrAlreadyReviewed, err)
		default:
			return fmt.Errorf("submit review: %w", err)
		}
	}

	g.markReviewed(orderID, productID)
	g.orders.Invalidate()
	return nil
}

func (g *Gate) ensureLoaded(ctx context.Context) error {
	g.mu.Lock()
	loaded := g.loaded
	g.mu.Unlock()
	if loaded {
		return nil
	}
	return g.Refresh(ctx)
}

// Refresh refetches the user's reviews from the backend.
func (g *Gate) Refresh(ctx context.Context) error {
	reviews, err := g.backend.ListMine(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) && g.onAuthExpired != nil {
			g.onAuthExpired()
		}
		return fmt.Errorf("list own reviews: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.existing = make(map[reviewKey]struct{}, len(reviews))
	for _, r := range reviews {
		g.existing[reviewKey{orderID: r.OrderID, productID: r.ProductID}] = struct{}{}
	}
	g.loaded = true
	return nil
}

// Clear drops the cached review set. Used by the forced-logout path.
func (g *Gate) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.existing = make(map[reviewKey]struct{})
	g.loaded = false
}

func (g *Gate) markReviewed(orderID, productID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.existing[reviewKey{orderID: orderID, productID: productID}] = struct{}{}
}

func orderContains(order *domain.Order, productID string) bool {
	for _, item := range order.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
