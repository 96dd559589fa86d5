package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/order"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/payment"
)

type PaymentHandler struct {
	orders     *order.Repository
	sessions   *payment.SessionCache
	reconciler *payment.Reconciler
}

func NewPaymentHandler(orders *order.Repository, sessions *payment.SessionCache, reconciler *payment.Reconciler) *PaymentHandler {
	return &PaymentHandler{orders: orders, sessions: sessions, reconciler: reconciler}
}

type sessionResponseDTO struct {
	Token             string    `json:"token"`
	GatewayInvoiceRef string    `json:"gateway_invoice_ref"`
	IssuedAt          time.Time `json:"issued_at"`
}

// Pay returns the live payment session for an order, minting one when
// needed. Repeated calls without an intervening terminal outcome return
// the same token/reference pair.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	ord, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "order_not_found", err.Error())
		case errors.Is(err, api.ErrUnauthorized):
			respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
		default:
			respondError(w, http.StatusBadGateway, "remote_failure", err.Error())
		}
		return
	}
	if ord.Status != domain.OrderStatusAwaitingPayment {
		respondError(w, http.StatusConflict, "not_payable", "order is not awaiting payment")
		return
	}

	session, err := h.sessions.GetOrCreate(r.Context(), ord)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, "remote_failure", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, sessionResponseDTO{
		Token:             session.Token,
		GatewayInvoiceRef: session.GatewayInvoiceRef,
		IssuedAt:          session.IssuedAt,
	})
}

type callbackRequestDTO struct {
	OrderID    string    `json:"order_id"`
	InvoiceRef string    `json:"invoice_ref"`
	IssuedAt   time.Time `json:"issued_at"`
	Outcome    string    `json:"outcome"`
}

// Callback receives one terminal outcome from the payment widget and runs
// it through the reconciler. The same dispatch also serves the Kafka relay.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req callbackRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id is required")
		return
	}

	outcome := domain.GatewayOutcome{
		Kind:              domain.OutcomeKind(req.Outcome),
		OrderID:           req.OrderID,
		GatewayInvoiceRef: req.InvoiceRef,
		IssuedAt:          req.IssuedAt,
	}
	if !outcome.Kind.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_outcome", "outcome must be SUCCESS, PENDING, FAILED or CLOSED")
		return
	}

	if err := h.reconciler.HandleOutcome(r.Context(), outcome); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, "reconcile_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}
