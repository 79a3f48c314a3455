package ports

import (
	"context"
	"time"

	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/entities"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
)

// Audit carries the identifiers every mutation persists alongside its state
// change: one outbox row holding one audit event, written atomically with the
// record mutation.
type Audit struct {
	EventID    string
	OutboxID   string
	OccurredAt time.Time
}

// PutEntitlementInput creates or overwrites an entitlement record.
type PutEntitlementInput struct {
	Audit
	Account valueobjects.Principal
	Level   entities.EntitlementLevel
}

// DeleteEntitlementInput removes an entitlement record; lookups revert to None.
type DeleteEntitlementInput struct {
	Audit
	Account valueobjects.Principal
}

// PutSessionInput creates or overwrites a session grant under its id.
type PutSessionInput struct {
	Audit
	Grant entities.SessionGrant
}

// RevokeSessionInput flips the grant's revoked flag in place.
type RevokeSessionInput struct {
	Audit
	SessionID valueobjects.SessionID
}

// PutAttributeInput creates or overwrites one namespaced claim.
type PutAttributeInput struct {
	Audit
	Record entities.AttributeRecord
}

// DeleteAttributeInput removes one claim; deleting an absent claim is a no-op.
type DeleteAttributeInput struct {
	Audit
	Account   valueobjects.Principal
	Namespace string
	Key       string
}

// WriterAuthorizationInput binds (subject, writer) delegation state. Subject
// is always the acting caller when written.
type WriterAuthorizationInput struct {
	Audit
	Subject valueobjects.Principal
	Writer  valueobjects.Principal
}

// AnchorInput mutates anchor set membership.
type AnchorInput struct {
	Audit
	Anchor valueobjects.Principal
}

// PutRootInput creates or overwrites an account's attribute commitment.
type PutRootInput struct {
	Audit
	Record entities.RootRecord
}

// Repository is the persisted state surface the host ledger provides:
// entitlements, sessions, attributes, authorized_writers, roots,
// authorized_anchors and the owner. Every mutating method appends exactly one
// pending outbox event in the same atomic write, or fails with no change.
type Repository interface {
	Owner(ctx context.Context) (valueobjects.Principal, error)

	GetEntitlement(ctx context.Context, account valueobjects.Principal) (entities.EntitlementLevel, error)
	PutEntitlement(ctx context.Context, input PutEntitlementInput) error
	DeleteEntitlement(ctx context.Context, input DeleteEntitlementInput) error

	GetSession(ctx context.Context, sessionID valueobjects.SessionID) (entities.SessionGrant, bool, error)
	PutSession(ctx context.Context, input PutSessionInput) error
	MarkSessionRevoked(ctx context.Context, input RevokeSessionInput) (entities.SessionGrant, error)

	GetAttribute(ctx context.Context, account valueobjects.Principal, namespace string, key string) (string, bool, error)
	PutAttribute(ctx context.Context, input PutAttributeInput) error
	DeleteAttribute(ctx context.Context, input DeleteAttributeInput) error

	IsWriterAuthorized(ctx context.Context, subject, writer valueobjects.Principal) (bool, error)
	PutWriterAuthorization(ctx context.Context, input WriterAuthorizationInput) error
	DeleteWriterAuthorization(ctx context.Context, input WriterAuthorizationInput) error

	IsAnchorRegistered(ctx context.Context, anchor valueobjects.Principal) (bool, error)
	PutAnchor(ctx context.Context, input AnchorInput) error
	DeleteAnchor(ctx context.Context, input AnchorInput) error

	GetRoot(ctx context.Context, account valueobjects.Principal) (valueobjects.Root, bool, error)
	PutRoot(ctx context.Context, input PutRootInput) error
}
