package amqp

import (
	"encoding/json"
	"time"

	"sothuchi/internal/core"
)

type EventKind string

const (
	EventTransactionSync   EventKind = "transaction.sync"
	EventTransactionDelete EventKind = "transaction.delete"
)

// TransactionEvent is the change notification published for every ledger
// write. Sync events carry only the id; the worker fetches the full record
// from storage. Delete events carry a snapshot because the record is already
// gone by the time the worker sees the event.
type TransactionEvent struct {
	Kind      EventKind         `json:"kind"`
	ID        string            `json:"id"`
	Snapshot  *core.Transaction `json:"snapshot,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func NewSyncEvent(id string) *TransactionEvent {
	return &TransactionEvent{
		Kind:      EventTransactionSync,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func NewDeleteEvent(tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Kind:      EventTransactionDelete,
		ID:        tx.ID,
		Snapshot:  &tx,
		Timestamp: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
