package types

import "time"

// EventType classifies ledger events.
type EventType string

const (
	EventObjectCreated     EventType = "object_created"
	EventObjectMutated     EventType = "object_mutated"
	EventObjectTransferred EventType = "object_transferred"
	EventObjectDeleted     EventType = "object_deleted"
	EventCoinBalanceChange EventType = "coin_balance_change"
)

// EventID identifies an event by its transaction and position within it.
type EventID struct {
	TxDigest TransactionDigest `json:"tx_digest"`
	EventSeq uint64            `json:"event_seq"`
}

// Event is emitted for every committed state change. Seq is the global
// position in the event log, starting at 1.
type Event struct {
	ID        EventID                `json:"id"`
	Seq       uint64                 `json:"seq"`
	Type      EventType              `json:"type"`
	Sender    Address                `json:"sender"`
	Object    *ObjectID              `json:"object,omitempty"`
	TypeTag   *TypeTag               `json:"object_type,omitempty"`
	Recipient *Owner                 `json:"recipient,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventFilter selects events for queries and subscriptions. Nil fields are
// wildcards; set fields must all match.
type EventFilter struct {
	Type     *EventType         `json:"type,omitempty"`
	Sender   *Address           `json:"sender,omitempty"`
	Object   *ObjectID          `json:"object,omitempty"`
	TxDigest *TransactionDigest `json:"tx_digest,omitempty"`
	TypeTag  *TypeTag           `json:"object_type,omitempty"`
}

// Matches reports whether an event passes the filter.
func (f *EventFilter) Matches(ev *Event) bool {
	if f == nil {
		return true
	}
	if f.Type != nil && *f.Type != ev.Type {
		return false
	}
	if f.Sender != nil && *f.Sender != ev.Sender {
		return false
	}
	if f.Object != nil && (ev.Object == nil || *f.Object != *ev.Object) {
		return false
	}
	if f.TxDigest != nil && *f.TxDigest != ev.ID.TxDigest {
		return false
	}
	if f.TypeTag != nil && (ev.TypeTag == nil || *f.TypeTag != *ev.TypeTag) {
		return false
	}
	return true
}
