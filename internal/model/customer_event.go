// internal/model/customer_event.go
package model

import (
	"encoding/json"
	"time"
)

const (
	CustomerCreated = "customer.created"
	CustomerUpdated = "customer.updated"
	CustomerDeleted = "customer.deleted"
)

// CustomerEvent is published after a customer write succeeds and recorded by the worker.
type CustomerEvent struct {
	ID         int64           `db:"id" json:"-"`
	EventID    string          `db:"event_id" json:"eventId"`
	Type       string          `db:"type" json:"type"`
	CustomerID int64           `db:"customer_id" json:"customerId"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	OccurredAt time.Time       `db:"occurred_at" json:"occurredAt"`
	RecordedAt *time.Time      `db:"recorded_at" json:"recordedAt,omitempty"`
}
