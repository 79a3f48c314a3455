package events

import (
	"context"
	"log/slog"

	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/ports"
	"github.com/shravan-hub/arkavo-node/internal/platform/messaging"
)

// AuditTopic is the bus topic carrying the engine's audit trail.
const AuditTopic = "access.audit"

// Publisher forwards audit events to the platform event bus.
type Publisher struct {
	bus    *messaging.Kafka
	logger *slog.Logger
}

func NewPublisher(bus *messaging.Kafka, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		bus:    bus,
		logger: logger,
	}
}

func (p Publisher) PublishAccessAudit(ctx context.Context, event ports.AccessAuditEvent) error {
	if err := p.bus.Publish(ctx, AuditTopic, event); err != nil {
		return err
	}
	p.logger.Info("access audit event published",
		"event", "access_audit_published",
		"module", "access-control/policy-engine",
		"layer", "adapter",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
	)
	return nil
}
