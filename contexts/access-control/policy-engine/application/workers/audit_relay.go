package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/application"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/ports"
)

// AuditRelay drains pending audit events from the outbox to the event bus.
// Rows are published in mutation order; a failed publish stops the batch so
// ordering is preserved on retry.
type AuditRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.AccessAuditPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r AuditRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("access audit outbox list failed",
			"event", "access_audit_outbox_list_failed",
			"module", "access-control/policy-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.AccessAuditEvent
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			return err
		}
		if err := r.Publisher.PublishAccessAudit(ctx, event); err != nil {
			logger.Error("access audit publish failed",
				"event", "access_audit_publish_failed",
				"module", "access-control/policy-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
