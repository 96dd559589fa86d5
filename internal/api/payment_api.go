package api

import (
	"context"
	"net/http"
	"time"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

// PaymentAPI talks to the backend endpoints that front the external
// payment gateway: session minting and the idempotent status check.
type PaymentAPI struct {
	c *Client
}

func NewPaymentAPI(c *Client) *PaymentAPI {
	return &PaymentAPI{c: c}
}

type SessionResult struct {
	Token             string `json:"token"`
	GatewayInvoiceRef string `json:"gateway_invoice_ref"`
}

type createSessionRequest struct {
	OrderDetailID string `json:"order_detail_id"`
	TotalAmount   int64  `json:"total_amount"`
}

type checkStatusRequest struct {
	GatewayInvoiceRef string    `json:"gateway_invoice_ref"`
	OrderID           string    `json:"order_id"`
	SessionIssuedAt   time.Time `json:"session_issued_at"`
}

type StatusResult struct {
	Status        domain.OrderStatus `json:"status"`
	PaymentStatus string             `json:"payment_status"`
}

func (a *PaymentAPI) CreateSession(ctx context.Context, orderDetailID string, totalAmount int64) (*SessionResult, error) {
	var res SessionResult
	err := a.c.do(ctx, http.MethodPost, "/payments/sessions",
		createSessionRequest{OrderDetailID: orderDetailID, TotalAmount: totalAmount}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckStatus is the idempotent reconciliation call. The triple must be
// exactly the one handed out at session creation so the backend can
// detect duplicate checks for the same attempt.
func (a *PaymentAPI) CheckStatus(ctx context.Context, invoiceRef, orderID string, issuedAt time.Time) (*StatusResult, error) {
	var res StatusResult
	err := a.c.do(ctx, http.MethodPost, "/payments/status-check",
		checkStatusRequest{GatewayInvoiceRef: invoiceRef, OrderID: orderID, SessionIssuedAt: issuedAt}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
