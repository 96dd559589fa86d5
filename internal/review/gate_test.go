package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

type mockReviewBackend struct {
	m         sync.Mutex
	mine      []domain.Review
	listErr   error
	listCalls int
	created   []domain.Review
	createErr error
}

func (m *mockReviewBackend) ListMine(context.Context) ([]domain.Review, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.mine, nil
}

func (m *mockReviewBackend) Create(_ context.Context, orderID, productID string, rating int, comment string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, domain.Review{
		OrderID: orderID, ProductID: productID, Rating: rating, Comment: comment,
	})
	return nil
}

type mockOrderSource struct {
	m           sync.Mutex
	orders      map[string]*domain.Order
	invalidated int
}

func (m *mockOrderSource) Get(_ context.Context, orderID string) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	ord, ok := m.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order not found")
	}
	return ord, nil
}

func (m *mockOrderSource) Invalidate() {
	m.m.Lock()
	defer m.m.Unlock()
	m.invalidated++
}

func completedOrder() *domain.Order {
	return &domain.Order{
		ID:     "O1",
		Status: domain.OrderStatusCompleted,
		Items:  []domain.OrderItem{{ProductID: "P1", Size: "M", Quantity: 2}},
	}
}

func newGateFixture(orders ...*domain.Order) (*Gate, *mockReviewBackend, *mockOrderSource) {
	backend := &mockReviewBackend{}
	source := &mockOrderSource{orders: map[string]*domain.Order{}}
	for _, o := range orders {
		source.orders[o.ID] = o
	}
	return NewGate(backend, source, slog.Default()), backend, source
}

func TestCanReview(t *testing.T) {
	gate, _, _ := newGateFixture()

	assert.False(t, gate.CanReview(nil, "P1"))

	shipped := completedOrder()
	shipped.Status = domain.OrderStatusShipped
	assert.False(t, gate.CanReview(shipped, "P1"), "only completed orders unlock reviews")

	assert.True(t, gate.CanReview(completedOrder(), "P1"))
}

func TestSubmit_Success(t *testing.T) {
	gate, backend, source := newGateFixture(completedOrder())

	err := gate.Submit(context.Background(), "O1", "P1", 5, "lovely")
	require.NoError(t, err)

	require.Len(t, backend.created, 1)
	assert.Equal(t, 5, backend.created[0].Rating)
	assert.Equal(t, 1, source.invalidated, "orders cache refreshes after submission")

	// One-shot: the gate closes for this pair immediately.
	assert.False(t, gate.CanReview(completedOrder(), "P1"))
	err = gate.Submit(context.Background(), "O1", "P1", 4, "again")
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Len(t, backend.created, 1, "duplicate is rejected before any network call")
}

func TestSubmit_RatingValidatedBeforeNetwork(t *testing.T) {
	gate, backend, _ := newGateFixture(completedOrder())

	require.ErrorIs(t, gate.Submit(context.Background(), "O1", "P1", 0, ""), ErrInvalidRating)
	require.ErrorIs(t, gate.Submit(context.Background(), "O1", "P1", 6, ""), ErrInvalidRating)
	assert.Zero(t, backend.listCalls)
	assert.Empty(t, backend.created)
}

func TestSubmit_OrderNotCompleted(t *testing.T) {
	pending := completedOrder()
	pending.Status = domain.OrderStatusAwaitingPayment
	gate, backend, _ := newGateFixture(pending)

	require.ErrorIs(t, gate.Submit(context.Background(), "O1", "P1", 4, ""), ErrOrderNotCompleted)
	assert.Empty(t, backend.created)
}

func TestSubmit_ProductNotInOrder(t *testing.T) {
	gate, backend, _ := newGateFixture(completedOrder())

	require.ErrorIs(t, gate.Submit(context.Background(), "O1", "P9", 4, ""), ErrProductNotInOrder)
	assert.Empty(t, backend.created)
}

func TestSubmit_ExistingRemoteReviewBlocks(t *testing.T) {
	gate, backend, _ := newGateFixture(completedOrder())
	backend.mine = []domain.Review{{OrderID: "O1", ProductID: "P1", Rating: 3}}

	require.ErrorIs(t, gate.Submit(context.Background(), "O1", "P1", 4, ""), ErrAlreadyReviewed)
	assert.Empty(t, backend.created)
}

func TestSubmit_ServerConflictSurfacedNotRetried(t *testing.T) {
	gate, backend, _ := newGateFixture(completedOrder())
	backend.createErr = fmt.Errorf("%w: review exists", api.ErrConflict)

	err := gate.Submit(context.Background(), "O1", "P1", 4, "")
	require.ErrorIs(t, err, ErrAlreadyReviewed)

	// The backend's verdict is adopted locally; no second attempt happens.
	backend.createErr = nil
	err = gate.Submit(context.Background(), "O1", "P1", 4, "")
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Empty(t, backend.created)
}

func TestSubmit_UnauthorizedTriggersLogoutHook(t *testing.T) {
	gate, backend, _ := newGateFixture(completedOrder())
	backend.createErr = api.ErrUnauthorized

	var loggedOut bool
	gate.SetAuthExpiredHook(func() { loggedOut = true })

	err := gate.Submit(context.Background(), "O1", "P1", 4, "")
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.True(t, loggedOut)
}

func TestRefreshAndClear(t *testing.T) {
	gate, backend, _ := newGateFixture(completedOrder())
	backend.mine = []domain.Review{{OrderID: "O1", ProductID: "P1"}}

	require.NoError(t, gate.Refresh(context.Background()))
	assert.False(t, gate.CanReview(completedOrder(), "P1"))

	gate.Clear()
	assert.True(t, gate.CanReview(completedOrder(), "P1"),
		"logout drops the cached review set")
}
