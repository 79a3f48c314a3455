package ports

import (
	"context"
	"time"

	contractsv1 "github.com/shravan-hub/arkavo-node/contracts/gen/events/v1"
)

// AccessAuditEvent reuses the canonical cross-runtime envelope contract.
type AccessAuditEvent = contractsv1.Envelope

// Audit event types, one per mutating operation.
const (
	EventEntitlementGranted = "access.entitlement_granted"
	EventEntitlementRevoked = "access.entitlement_revoked"
	EventSessionCreated     = "access.session_created"
	EventSessionRevoked     = "access.session_revoked"
	EventAttributeSet       = "access.attribute_set"
	EventAttributeRemoved   = "access.attribute_removed"
	EventWriterAuthorized   = "access.writer_authorized"
	EventWriterRevoked      = "access.writer_revoked"
	EventRootUpdated        = "access.root_updated"
	EventAnchorAdded        = "access.anchor_added"
	EventAnchorRemoved      = "access.anchor_removed"
)

// AccessAuditPublisher emits audit events to the event bus adapter.
type AccessAuditPublisher interface {
	PublishAccessAudit(ctx context.Context, event AccessAuditEvent) error
}

// OutboxMessage represents a pending relay message.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}
