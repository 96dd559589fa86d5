package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

// OrderAPI talks to the backend order service. Orders are owned by the
// backend; this client only reads summaries/details and creates new orders.
type OrderAPI struct {
	c *Client
}

func NewOrderAPI(c *Client) *OrderAPI {
	return &OrderAPI{c: c}
}

// OrderSummary is the shallow listing row. Items and invoice come from
// two dependent follow-up calls.
type OrderSummary struct {
	ID            string             `json:"id"`
	OrderDetailID string             `json:"order_detail_id"`
	Status        domain.OrderStatus `json:"status"`
	Amount        int64              `json:"amount"`
	ShippingCost  int64              `json:"shipping_cost"`
	TotalAmount   int64              `json:"total_amount"`
	CreatedAt     time.Time          `json:"created_at"`
}

type OrderDetail struct {
	OrderDetailID string             `json:"order_detail_id"`
	Items         []domain.OrderItem `json:"items"`
}

type CreateOrderRequest struct {
	IdempotencyKey string             `json:"idempotency_key"`
	Items          []domain.OrderItem `json:"items"`
	Amount         int64              `json:"amount"`
	ShippingCost   int64              `json:"shipping_cost"`
	TotalAmount    int64              `json:"total_amount"`
}

func (a *OrderAPI) ListOrders(ctx context.Context) ([]OrderSummary, error) {
	var resp struct {
		Orders []OrderSummary `json:"orders"`
	}
	if err := a.c.do(ctx, http.MethodGet, "/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (a *OrderAPI) GetOrderDetail(ctx context.Context, orderID string) (*OrderDetail, error) {
	var detail OrderDetail
	path := fmt.Sprintf("/orders/%s/detail", url.PathEscape(orderID))
	if err := a.c.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (a *OrderAPI) GetInvoice(ctx context.Context, orderDetailID string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	path := fmt.Sprintf("/invoices/%s", url.PathEscape(orderDetailID))
	if err := a.c.do(ctx, http.MethodGet, path, nil, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (a *OrderAPI) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderSummary, error) {
	var created OrderSummary
	if err := a.c.do(ctx, http.MethodPost, "/orders", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SendInvoiceEmail asks the backend to mail the invoice. Best-effort from
// the caller's point of view.
func (a *OrderAPI) SendInvoiceEmail(ctx context.Context, orderID string) error {
	path := fmt.Sprintf("/orders/%s/invoice-email", url.PathEscape(orderID))
	return a.c.do(ctx, http.MethodPost, path, nil, nil)
}
