package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

// SessionMinter mints a fresh gateway session via the backend.
type SessionMinter interface {
	CreateSession(ctx context.Context, orderDetailID string, totalAmount int64) (*api.SessionResult, error)
}

// SessionCache hands out at most one live payment session per order.
// Reuse prevents minting a duplicate gateway invoice for the same order on
// every render or retry; Clear after any terminal outcome makes the next
// pay action start fresh instead of replaying a dead session.
type SessionCache struct {
	store  SessionStore
	minter SessionMinter
	logger *slog.Logger
	now    func() time.Time
}

func NewSessionCache(store SessionStore, minter SessionMinter, logger *slog.Logger) *SessionCache {
	return &SessionCache{
		store:  store,
		minter: minter,
		logger: logger,
		now:    time.Now,
	}
}

// GetOrCreate returns the live session for an order, minting one when
// none exists. A cached entry is returned unchanged. The token and
// gateway invoice reference are persisted as one value; reconciliation
// needs both, so one is never stored without the other.
func (c *SessionCache) GetOrCreate(ctx context.Context, order *domain.Order) (*domain.PaymentSession, error) {
	cached, err := c.store.Get(ctx, order.ID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrSessionMiss) {
		// A broken store read must not mint a duplicate gateway invoice.
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}

	minted, err := c.minter.CreateSession(ctx, order.OrderDetailID, order.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("create gateway session: %w", err)
	}

	session := &domain.PaymentSession{
		OrderID:           order.ID,
		Token:             minted.Token,
		GatewayInvoiceRef: minted.GatewayInvoiceRef,
		IssuedAt:          c.now().UTC(),
	}
	if err := c.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist payment session: %w", err)
	}

	c.logger.Info("payment session minted",
		"order_id", order.ID, "gateway_invoice_ref", session.GatewayInvoiceRef)
	return session, nil
}

// Clear removes the entry for an order. Called unconditionally after every
// terminal gateway outcome, whatever it was.
func (c *SessionCache) Clear(ctx context.Context, orderID string) error {
	return c.store.Delete(ctx, orderID)
}
