package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

// OutcomeHandler receives decoded gateway outcomes. Implemented by the
// payment reconciler.
type OutcomeHandler interface {
	HandleOutcome(ctx context.Context, outcome domain.GatewayOutcome) error
}

// gatewayEvent mirrors the webhook payload the gateway relay publishes.
// issued_at is the session issuance time handed out at session creation;
// it travels with the event so reconciliation can forward the exact
// triple instead of rebuilding it from local state.
type gatewayEvent struct {
	OrderID    string    `json:"order_id"`
	InvoiceRef string    `json:"invoice_ref"`
	IssuedAt   time.Time `json:"issued_at"`
	Outcome    string    `json:"outcome"`
}

// Consumer reads gateway payment events off Kafka and dispatches them to
// the reconciler. Events can arrive duplicated or out of order; safety
// comes from the idempotent status-check triple, so the consumer itself
// just decodes and forwards.
type Consumer struct {
	handler OutcomeHandler
	reader  *kafka.Reader
	logger  *slog.Logger
}

func NewConsumer(handler OutcomeHandler, logger *slog.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "payment-gateway-events",
		GroupID:  "storefront-core",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{handler: handler, reader: reader, logger: logger}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("error closing kafka reader", "error", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Error("error reading gateway event", "error", err)
		return
	}

	if err := c.handleMessage(ctx, m.Value); err != nil {
		c.logger.Error("gateway event not processed", "error", err)
	}
}

// handleMessage decodes one event payload and dispatches it. Split out of
// the kafka read loop so it is testable without a broker.
func (c *Consumer) handleMessage(ctx context.Context, payload []byte) error {
	var event gatewayEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("parse gateway event: %w", err)
	}

	kind := domain.OutcomeKind(event.Outcome)
	if !kind.IsValid() {
		return fmt.Errorf("unknown gateway outcome %q for order %q", event.Outcome, event.OrderID)
	}

	outcome := domain.GatewayOutcome{
		Kind:              kind,
		OrderID:           event.OrderID,
		GatewayInvoiceRef: event.InvoiceRef,
		IssuedAt:          event.IssuedAt,
	}
	if err := c.handler.HandleOutcome(ctx, outcome); err != nil {
		return fmt.Errorf("dispatch outcome for order %s: %w", event.OrderID, err)
	}
	return nil
}
