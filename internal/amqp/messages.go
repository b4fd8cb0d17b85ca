package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event kinds published after a committed ledger mutation.
const (
	KindTransactionCreated = "transaction.created"
	KindTransactionUpdated = "transaction.updated"
	KindTransactionDeleted = "transaction.deleted"
	KindDebtRepaid         = "debt.repaid"
	KindLoanEMIPaid        = "loan.emi_paid"
	KindRepaymentUndone    = "repayment.undone"
)

// LedgerEvent is a lightweight notification. Consumers that need the full
// row read it back from the ledger store by TransactionID.
type LedgerEvent struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	UserID        int64     `json:"user_id"`
	TransactionID int64     `json:"transaction_id"`
	Amount        float64   `json:"amount,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps a new event with a random id and the current time.
func NewLedgerEvent(kind string, userID, txID int64, amount float64) *LedgerEvent {
	return &LedgerEvent{
		ID:            uuid.NewString(),
		Kind:          kind,
		UserID:        userID,
		TransactionID: txID,
		Amount:        amount,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event published by PublishEvent.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
