// Package queue defines the messages exchanged over the broker and the
// background consumer that turns them into an audit log.
package queue

// QueueName is the durable queue carrying reservation lifecycle events.
const QueueName = "reservation.events"

// Event types published by the seat and unseat flows.
const (
	EventSeated   = "seated"
	EventFinished = "finished"
)

// ReservationEvent is published after a seat or unseat transaction
// commits.  It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type ReservationEvent struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id"`
	TableID       uint64 `json:"table_id"`
	TableName     string `json:"table_name"`
	People        uint32 `json:"people"`
	OccurredAt    string `json:"occurred_at"`
}
