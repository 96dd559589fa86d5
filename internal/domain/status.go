package domain

type OrderStatus string

const (
	OrderStatusAwaitingPayment  OrderStatus = "AWAITING_PAYMENT"
	OrderStatusPaymentConfirmed OrderStatus = "PAYMENT_CONFIRMED"
	OrderStatusProcessing       OrderStatus = "PROCESSING"
	OrderStatusShipped          OrderStatus = "SHIPPED"
	OrderStatusCompleted        OrderStatus = "COMPLETED"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
)

// validTransitions holds the forward edges of the order lifecycle.
// AWAITING_PAYMENT is initial; COMPLETED and CANCELLED are terminal.
// Everything past PAYMENT_CONFIRMED is driven by back-office processes;
// this core only reads those states.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusAwaitingPayment:  {OrderStatusPaymentConfirmed, OrderStatusCancelled},
	OrderStatusPaymentConfirmed: {OrderStatusProcessing},
	OrderStatusProcessing:       {OrderStatusShipped},
	OrderStatusShipped:          {OrderStatusCompleted},
}

// CanTransitionTo reports whether moving from -> to is a legal lifecycle
// step. Used to reject stale or duplicated gateway events that would
// regress an already-advanced order.
func CanTransitionTo(from, to OrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusAwaitingPayment, OrderStatusPaymentConfirmed,
		OrderStatusProcessing, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}
