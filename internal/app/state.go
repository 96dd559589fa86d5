package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/cart"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/order"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/payment"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/review"
)

// State is the explicit application state: the bearer credential plus the
// session-scoped caches. All mutation funnels through the owning
// components; State only coordinates login/logout across them.
type State struct {
	mu    sync.RWMutex
	token string

	cart     *cart.Store
	orders   *order.Repository
	reviews  *review.Gate
	sessions *payment.SessionCache
	logger   *slog.Logger

	loggingOut atomic.Bool
}

func NewState(cartStore *cart.Store, orders *order.Repository, reviews *review.Gate, sessions *payment.SessionCache, logger *slog.Logger) *State {
	s := &State{
		cart:     cartStore,
		orders:   orders,
		reviews:  reviews,
		sessions: sessions,
		logger:   logger,
	}

	hook := func() { s.Logout(context.Background()) }
	cartStore.SetAuthExpiredHook(hook)
	orders.SetAuthExpiredHook(hook)
	reviews.SetAuthExpiredHook(hook)
	return s
}

// Token is the api.TokenSource for all backend clients.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken installs a fresh credential, e.g. after login.
func (s *State) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.loggingOut.Store(false)
}

// Logout clears the credential and every session-scoped cache: cart,
// orders, reviews, and the payment sessions of the orders we knew about.
// A 401 anywhere triggers this; concurrent triggers collapse into one run
// so a burst of rejected calls does not stampede the teardown.
func (s *State) Logout(ctx context.Context) {
	if !s.loggingOut.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	for _, orderID := range s.orders.CachedOrderIDs() {
		if err := s.sessions.Clear(ctx, orderID); err != nil {
			s.logger.Warn("failed to clear payment session on logout",
				"order_id", orderID, "error", err)
		}
	}

	s.cart.Clear()
	s.orders.Clear()
	s.reviews.Clear()
	s.logger.Info("session invalidated, local state cleared")
}
