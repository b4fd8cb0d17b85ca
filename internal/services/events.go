// Package services holds the ledger use cases: entry, aggregation, debt
// lifecycle, portfolio and user management. Every call acts for the user
// named by a core.Session.
package services

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// publishEvent notifies subscribers after a committed mutation. Failures
// are logged and never surface to the caller.
func publishEvent(ctx context.Context, pub EventPublisher, kind string, userID, txID int64, amount float64) {
	if pub == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping ledger event", "kind", kind)
		return
	}
	if err := pub.PublishEvent(ctx, amqp.NewLedgerEvent(kind, userID, txID, amount)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", kind,
			"transaction_id", txID,
			"error", err)
	}
}
