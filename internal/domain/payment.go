package domain

import "time"

// PaymentSession is the credential/reference pair used to open the payment
// gateway widget for one order. At most one live session exists per order;
// it dies on any terminal gateway outcome or an explicit clear.
type PaymentSession struct {
	OrderID           string    `json:"order_id"`
	Token             string    `json:"token"`
	GatewayInvoiceRef string    `json:"gateway_invoice_ref"`
	IssuedAt          time.Time `json:"issued_at"`
}

// OutcomeKind is the terminal result the gateway widget reports for a
// single payment attempt. The four kinds are mutually exclusive.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "SUCCESS"
	OutcomePending OutcomeKind = "PENDING"
	OutcomeFailed  OutcomeKind = "FAILED"
	// OutcomeClosed means the user abandoned the widget without a
	// gateway-reported result. There is nothing to reconcile.
	OutcomeClosed OutcomeKind = "CLOSED"
)

func (k OutcomeKind) IsValid() bool {
	switch k {
	case OutcomeSuccess, OutcomePending, OutcomeFailed, OutcomeClosed:
		return true
	}
	return false
}

// GatewayOutcome carries one terminal gateway event together with the
// identifiers handed out at session creation. Reconciliation must forward
// exactly these identifiers, never values rebuilt from local state, so the
// backend can detect duplicates.
type GatewayOutcome struct {
	Kind              OutcomeKind `json:"outcome"`
	OrderID           string      `json:"order_id"`
	GatewayInvoiceRef string      `json:"invoice_ref"`
	IssuedAt          time.Time   `json:"issued_at"`
}
