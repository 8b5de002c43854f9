package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// EventType names the ledger mutation that produced an event.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
	BudgetCreated      EventType = "budget.created"
	BudgetUpdated      EventType = "budget.updated"
	BudgetDeleted      EventType = "budget.deleted"
	PotCreated         EventType = "pot.created"
	PotUpdated         EventType = "pot.updated"
	PotDeleted         EventType = "pot.deleted"
	PotDeposited       EventType = "pot.deposited"
	PotWithdrawn       EventType = "pot.withdrawn"
)

// LedgerEvent announces a committed change to an account's ledger.
// It carries identifiers only; consumers read current state from the store.
type LedgerEvent struct {
	Type      EventType `json:"type"`
	AccountID string    `json:"accountId"`
	EntityID  string    `json:"entityId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(eventType EventType, accountID, entityID string) *LedgerEvent {
	return &LedgerEvent{
		Type:      eventType,
		AccountID: accountID,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes an event and rejects ones without an account.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.AccountID == "" {
		return nil, errors.New("ledger event without account id")
	}
	return &msg, nil
}
