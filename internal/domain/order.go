package domain

import "time"

// OrderItem is a line item snapshot frozen at order-creation time. It does
// not change when the catalog product later changes.
type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Size        string `json:"size"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	UnitWeight  int    `json:"unit_weight"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Order is the locally cached, refreshable view of a backend-owned order.
type Order struct {
	ID            string      `json:"id"`
	OrderDetailID string      `json:"order_detail_id"`
	Status        OrderStatus `json:"status"`
	Items         []OrderItem `json:"items"`
	Amount        int64       `json:"amount"`
	ShippingCost  int64       `json:"shipping_cost"`
	TotalAmount   int64       `json:"total_amount"`
	Invoice       *Invoice    `json:"invoice,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Invoice is a computed projection of an order plus gateway payment
// status. At most one invoice exists per order.
type Invoice struct {
	Code          string `json:"code"`
	PaymentStatus string `json:"payment_status"`
	PaymentMethod string `json:"payment_method"`
	Subtotal      int64  `json:"subtotal"`
	ShippingCost  int64  `json:"shipping_cost"`
	Total         int64  `json:"total"`
}
