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

var ErrUnknownOutcome = errors.New("unknown gateway outcome")

// StatusChecker is the backend's idempotent status-check endpoint.
type StatusChecker interface {
	CheckStatus(ctx context.Context, invoiceRef, orderID string, issuedAt time.Time) (*api.StatusResult, error)
}

// OrderCache receives the authoritative status for the cached order view.
type OrderCache interface {
	ApplyStatus(orderID string, status domain.OrderStatus) bool
}

// InvoiceMailer triggers the invoice email. Best-effort only.
type InvoiceMailer interface {
	SendInvoiceEmail(ctx context.Context, orderID string) error
}

// Reconciler drives the status-check protocol after gateway events and is
// the single component allowed to transition cached order status. Every
// outcome for a payment attempt, including user abandonment, ends the
// session's life; reconciliation itself only runs when the gateway
// actually reported something.
type Reconciler struct {
	payments StatusChecker
	orders   OrderCache
	sessions *SessionCache
	mailer   InvoiceMailer
	logger   *slog.Logger

	onAuthExpired func()
}

func NewReconciler(payments StatusChecker, orders OrderCache, sessions *SessionCache, mailer InvoiceMailer, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		payments: payments,
		orders:   orders,
		sessions: sessions,
		mailer:   mailer,
		logger:   logger,
	}
}

func (r *Reconciler) SetAuthExpiredHook(fn func()) {
	r.onAuthExpired = fn
}

// HandleOutcome dispatches one terminal gateway outcome. The session cache
// entry is cleared whatever happens, so a dead session is never replayed.
func (r *Reconciler) HandleOutcome(ctx context.Context, outcome domain.GatewayOutcome) error {
	if !outcome.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome.Kind)
	}
	if outcome.OrderID == "" {
		return errors.New("gateway outcome missing order id")
	}

	defer func() {
		if err := r.sessions.Clear(ctx, outcome.OrderID); err != nil {
			r.logger.Error("failed to clear payment session",
				"order_id", outcome.OrderID, "error", err)
		}
	}()

	if outcome.Kind == domain.OutcomeClosed {
		// User closed the widget; there is no gateway result to reconcile.
		r.logger.Info("payment widget abandoned", "order_id", outcome.OrderID)
		return nil
	}

	if err := r.Reconcile(ctx, outcome.OrderID, outcome.GatewayInvoiceRef, outcome.IssuedAt); err != nil {
		return err
	}

	if outcome.Kind == domain.OutcomeSuccess {
		if err := r.mailer.SendInvoiceEmail(ctx, outcome.OrderID); err != nil {
			// Never undoes the reconciliation.
			r.logger.Warn("invoice email failed", "order_id", outcome.OrderID, "error", err)
		}
	}
	return nil
}

// Reconcile asks the backend for the authoritative status and applies it
// to the cached order. The triple must be exactly the one issued at
// session creation; the backend uses it to deduplicate repeated checks.
// A transient failure leaves the cached status untouched.
func (r *Reconciler) Reconcile(ctx context.Context, orderID, invoiceRef string, issuedAt time.Time) error {
	result, err := r.payments.CheckStatus(ctx, invoiceRef, orderID, issuedAt)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) && r.onAuthExpired != nil {
			r.onAuthExpired()
		}
		return fmt.Errorf("status check for order %s: %w", orderID, err)
	}

	if !result.Status.IsValid() {
		r.logger.Warn("backend returned unknown order status",
			"order_id", orderID, "status", result.Status)
		return nil
	}

	if r.orders.ApplyStatus(orderID, result.Status) {
		r.logger.Info("order status reconciled",
			"order_id", orderID, "status", result.Status,
			"payment_status", result.PaymentStatus)
	}
	return nil
}
