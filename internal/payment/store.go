package payment

import (
	"context"
	"errors"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

// SessionStore is the durable per-order store behind the session cache.
// It is the only durable shared resource in this core; entries are keyed
// by order id and written as a single value, so a token is never stored
// without its matching gateway invoice reference.
type SessionStore interface {
	Get(ctx context.Context, orderID string) (*domain.PaymentSession, error)
	Put(ctx context.Context, session *domain.PaymentSession) error
	Delete(ctx context.Context, orderID string) error
}

var ErrSessionMiss = errors.New("no payment session for order")
