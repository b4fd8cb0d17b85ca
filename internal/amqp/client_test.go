package amqp

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewLedgerEvent(t *testing.T) {
	ev := NewLedgerEvent(KindDebtRepaid, 3, 12345, 400)

	if _, err := uuid.Parse(ev.ID); err != nil {
		t.Errorf("NewLedgerEvent() ID = %q, want a uuid: %v", ev.ID, err)
	}
	if ev.Kind != KindDebtRepaid {
		t.Errorf("NewLedgerEvent() Kind = %v, want %v", ev.Kind, KindDebtRepaid)
	}
	if ev.UserID != 3 || ev.TransactionID != 12345 {
		t.Errorf("NewLedgerEvent() ids = (%d, %d), want (3, 12345)", ev.UserID, ev.TransactionID)
	}
	if time.Since(ev.Timestamp) > time.Second {
		t.Error("NewLedgerEvent() Timestamp should be recent")
	}
	if other := NewLedgerEvent(KindDebtRepaid, 3, 12345, 400); other.ID == ev.ID {
		t.Error("NewLedgerEvent() should assign distinct ids")
	}
}

func TestLedgerEvent_JSON(t *testing.T) {
	ev := &LedgerEvent{
		ID:            "0b6f1a8e-7c1e-4a53-9e0a-3f7d1c2b9a10",
		Kind:          KindLoanEMIPaid,
		UserID:        1,
		TransactionID: 99,
		Amount:        8791.59,
		Timestamp:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerEventFromJSON(data)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON() error = %v", err)
	}
	if *parsed != *ev {
		t.Errorf("LedgerEventFromJSON() = %+v, want %+v", parsed, ev)
	}
}

func TestLedgerEvent_InvalidJSON(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte(`{"transaction_id": "seven"}`)); err == nil {
		t.Error("LedgerEventFromJSON() should fail with invalid JSON")
	}
}
