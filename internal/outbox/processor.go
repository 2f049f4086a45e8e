// Package outbox drains the transactional outbox into Kafka. Messages are
// keyed by order id so consumers see one order's events in order.
package outbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/infrastructure/kafka"
	"storefront/internal/repository/outbox_repo"
)

type Processor struct {
	repo     outbox_repo.OutboxRepository
	producer kafka.Producer
	logger   *zap.Logger
}

func NewProcessor(repo outbox_repo.OutboxRepository, producer kafka.Producer, l *zap.Logger) *Processor {
	return &Processor{repo: repo, producer: producer, logger: l}
}

// ProcessOnce publishes pending messages and marks the delivered ones sent.
// A failed publish leaves its message pending for the next tick.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	messages, err := p.repo.GetUnsentMessages(ctx)
	if err != nil {
		return fmt.Errorf("failed to get unsent outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	p.logger.Info("Processing unsent outbox messages", zap.Int("count", len(messages)))

	for _, msg := range messages {
		if err := p.producer.Produce(ctx, msg.Topic, []byte(msg.OrderID), msg.Payload); err != nil {
			p.logger.Error("Failed to publish outbox message",
				zap.String("message_id", msg.ID),
				zap.String("topic", msg.Topic),
				zap.Error(err))
			continue
		}
		if err := p.repo.MarkMessageSent(ctx, msg.ID); err != nil {
			p.logger.Error("Failed to mark outbox message as sent",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		}
	}
	return nil
}

// Run polls until ctx is cancelled.
func (p *Processor) Run(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tickCtx, cancel := context.WithTimeout(ctx, timeout)
			if err := p.ProcessOnce(tickCtx); err != nil {
				p.logger.Error("Error processing outbox", zap.Error(err))
			}
			cancel()
		}
	}
}
