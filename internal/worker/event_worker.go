// Package worker follows the ledger event stream.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// TransactionReader resolves the row an event refers to.
type TransactionReader interface {
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
}

// EventWorker prints one line per ledger event, enriched with the current
// state of the referenced transaction.
type EventWorker struct {
	storage TransactionReader
	out     io.Writer

	mu     sync.Mutex
	counts map[string]int
}

func NewEventWorker(storage TransactionReader, out io.Writer) *EventWorker {
	return &EventWorker{
		storage: storage,
		out:     out,
		counts:  make(map[string]int),
	}
}

// HandleEvent returns an error only for failures worth a redelivery.
// Rows deleted since the event was published are reported, not retried.
func (w *EventWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.DebugContext(ctx, "Processing ledger event",
		"id", ev.ID,
		"kind", ev.Kind,
		"transaction_id", ev.TransactionID)

	line := fmt.Sprintf("%s %-19s user=%d tx=%d",
		ev.Timestamp.UTC().Format(time.RFC3339), ev.Kind, ev.UserID, ev.TransactionID)
	if ev.Amount != 0 {
		line += fmt.Sprintf(" amount=%.2f", ev.Amount)
	}

	if ev.Kind != amqp.KindTransactionDeleted {
		t, err := w.storage.GetTransaction(ctx, ev.UserID, ev.TransactionID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			line += " (no longer in ledger)"
		case err != nil:
			return fmt.Errorf("load transaction %d: %w", ev.TransactionID, err)
		default:
			line += fmt.Sprintf(" | %s %s %s %.2f", t.Date, t.Type, t.Category, t.Amount)
			if t.Type == core.Debt {
				line += fmt.Sprintf(" paid=%.2f repaid=%t", t.PaidAmount, t.IsRepaid)
			}
		}
	}

	if _, err := fmt.Fprintln(w.out, line); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	w.mu.Lock()
	w.counts[ev.Kind]++
	w.mu.Unlock()
	return nil
}

// KindCount is the number of events of one kind handled so far.
type KindCount struct {
	Kind  string
	Count int
}

// Stats returns handled event counts ordered by kind.
func (w *EventWorker) Stats() []KindCount {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]KindCount, 0, len(w.counts))
	for k, n := range w.counts {
		out = append(out, KindCount{Kind: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
