package outbox_repo

import (
	"context"
	"database/sql"
	"time"
)

type OutboxStatus string

const (
	StatusPending OutboxStatus = "PENDING"
	StatusSent    OutboxStatus = "SENT"
)

// OutboxMessage is an order-lifecycle event staged in the same transaction as
// the order change it describes, and published to Kafka by the background
// processor.
type OutboxMessage struct {
	ID        string
	OrderID   string
	Topic     string
	Payload   []byte
	Status    OutboxStatus
	CreatedAt time.Time
	SentAt    *time.Time
}

type OutboxRepository interface {
	CreateMessageTx(ctx context.Context, tx *sql.Tx, msg *OutboxMessage) error
	GetUnsentMessages(ctx context.Context) ([]*OutboxMessage, error)
	MarkMessageSent(ctx context.Context, id string) error
}
