package domain

import "time"

// Review holds one customer review. Uniqueness on (OrderID, ProductID) is
// enforced by the review gate before submission and by the backend on write.
type Review struct {
	OrderID   string    `json:"order_id"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
