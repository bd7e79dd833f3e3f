package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	AdjustmentRecorded = "adjustment.recorded"
	TransferCompleted  = "transfer.completed"
	PendingRecorded    = "pending.recorded"
	AccountCreated     = "account.created"
	AccountDeleted     = "account.deleted"
	WeeklyDigest       = "digest.weekly"
)

// Event is one ledger change announced to downstream consumers. Type doubles as
// the routing key.
type Event struct {
	Type       string    `json:"type"`
	AccountID  string    `json:"accountId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
