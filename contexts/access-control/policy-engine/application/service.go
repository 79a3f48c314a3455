package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/entities"
	domainerrors "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/errors"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/services"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/ports"
)

// Service implements every engine operation. Each mutating method runs its
// authorization guard before touching state; on a failed guard the call
// returns the domain error with zero side effects. A successful call performs
// exactly one repository mutation, which appends exactly one audit event.
type Service struct {
	Repo        ports.Repository
	Heights     ports.HeightSource
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// --- EntitlementRegistry ---

func (s Service) GrantEntitlement(
	ctx context.Context,
	caller valueobjects.Principal,
	account valueobjects.Principal,
	level entities.EntitlementLevel,
) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	audit, err := s.newAudit(ctx)
	if err != nil {
		return err
	}
	if err := s.Repo.PutEntitlement(ctx, ports.PutEntitlementInput{
		Audit:   audit,
		Account: account,
		Level:   level,
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("entitlement granted",
		"event", "access_entitlement_granted",
		"module", "access-control/policy-engine",
		"layer", "application",
		"account", account.String(),
		"level", level.String(),
	)
	return nil
}

func (s Service) RevokeEntitlement(
	ctx context.Context,
	caller valueobjects.Principal,
	account valueobjects.Principal,
) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	audit, err := s.newAudit(ctx)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteEntitlement(ctx, ports.DeleteEntitlementInput{
		Audit:   audit,
		Account: account,
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("entitlement revoked",
		"event", "access_entitlement_revoked",
		"module", "access-control/policy-engine",
		"layer", "application",
		"account", account.String(),
	)
	return nil
}

// GetEntitlement returns None for any account never granted a level.
func (s Service) GetEntitlement(
	ctx context.Context,
	account valueobjects.Principal,
) (entities.EntitlementLevel, error) {
	return s.Repo.GetEntitlement(ctx, account)
}

// HasEntitlement reports whether the account's level meets the required tier.
func (s Service) HasEntitlement(
	ctx context.Context,
	account valueobjects.Principal,
	required entities.EntitlementLevel,
) (bool, error) {
	level, err := s.Repo.GetEntitlement(ctx, account)
	if err != nil {
		return false, err
	}
	return level.AtLeast(required), nil
}

func (s Service) Owner(ctx context.Context) (valueobjects.Principal, error) {
	return s.Repo.Owner(ctx)
}

// --- SessionGrantManager ---

// CreateSession stores an owner-issued session grant under the caller-supplied
// id, overwriting any existing grant with that id. CreatedAtBlock is stamped
// from the host-supplied current height; expiry is stored but never enforced.
func (s Service) CreateSession(
	ctx context.Context,
	caller valueobjects.Principal,
	sessionID valueobjects.SessionID,
	ephPubKey valueobjects.EphPubKey,
	scopeID valueobjects.ScopeID,
	expiresAtBlock uint64,
) (entities.SessionGrant, error) {
	if err := s.requireOwner(ctx, caller); err != nil {
		return entities.SessionGrant{}, err
	}
	height, err := s.Heights.CurrentHeight(ctx)
	if err != nil {
		return entities.SessionGrant{}, err
	}
	audit, err := s.newAudit(ctx)
	if err != nil {
		return entities.SessionGrant{}, err
	}
	grant := entities.SessionGrant{
		SessionID:      sessionID,
		EphPubKey:      ephPubKey,
		ScopeID:        scopeID,
		ExpiresAtBlock: expiresAtBlock,
		CreatedAtBlock: height,
		IsRevoked:      false,
	}
	if err := s.Repo.PutSession(ctx, ports.PutSessionInput{
		Audit: audit,
		Grant: grant,
	}); err != nil {
		return entities.SessionGrant{}, err
	}
	ResolveLogger(s.Logger).Info("session grant created",
		"event", "access_session_created",
		"module", "access-control/policy-engine",
		"layer", "application",
		"session_id", sessionID.String(),
		"scope_id", scopeID.String(),
		"expires_at_block", expiresAtBlock,
		"created_at_block", height,
	)
	return grant, nil
}

func (s Service) GetSession(
	ctx context.Context,
	sessionID valueobjects.SessionID,
) (entities.SessionGrant, bool, error) {
	return s.Repo.GetSession(ctx, sessionID)
}

// RevokeSession sets the grant's revoked flag in place. The record is kept for
// auditability; a repeated revocation succeeds and sets the flag again.
func (s Service) RevokeSession(
	ctx context.Context,
	caller valueobjects.Principal,
	sessionID valueobjects.SessionID,
) (entities.SessionGrant, error) {
	if err := s.requireOwner(ctx, caller); err != nil {
		return entities.SessionGrant{}, err
	}
	audit, err := s.newAudit(ctx)
	if err != nil {
		return entities.SessionGrant{}, err
	}
	grant, err := s.Repo.MarkSessionRevoked(ctx, ports.RevokeSessionInput{
		Audit:     audit,
		SessionID: sessionID,
	})
	if err != nil {
		return entities.SessionGrant{}, err
	}
	ResolveLogger(s.Logger).Info("session grant revoked",
		"event", "access_session_revoked",
		"module", "access-control/policy-engine",
		"layer", "application",
		"session_id", sessionID.String(),
	)
	return grant, nil
}

// --- AttributeStore ---

// SetAttribute validates string bounds before the authorization check, per the
// engine contract: oversized input fails InputTooLong even for callers that
// would also fail authorization.
func (s Service) SetAttribute(
	ctx context.Context,
	caller valueobjects.Principal,
	account valueobjects.Principal,
	namespace string,
	key string,
	value string,
) error {
	if len(namespace) > entities.MaxAttributeStringLength ||
		len(key) > entities.MaxAttributeStringLength ||
		len(value) > entities.MaxAttributeStringLength {
		return domainerrors.ErrInputTooLong
	}
	if err := s.requireAttributeWrite(ctx, caller, account); err != nil {
		return err
	}
	audit, err := s.newAudit(ctx)
	if err != nil {
		return err
	}
	if err := s.Repo.PutAttribute(ctx, ports.PutAttributeInput{
		Audit: audit,
		Record: entities.AttributeRecord{
			Account:   account,
			Namespace: namespace,
			Key:       key,
			Value:     value,
		},
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("attribute set",
		"event", "access_attribute_set",
		"module", "access-control/policy-engine",
		"layer", "application",
		"account", account.String(),
		"namespace", namespace,
		"key", key,
	)
	return nil
}

// RemoveAttribute deletes the claim if present; deleting an absent claim is a
// successful no-op, not an error.
func (s Service) RemoveAttribute(
	ctx context.Context,
	caller valueobjects.Principal,
	account valueobjects.Principal,
	namespace string,
	key string,
) error {
	if err := s.requireAttributeWrite(ctx, caller, account); err != nil {
		return err
	}
	audit, err := s.newAudit(ctx)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteAttribute(ctx, ports.DeleteAttributeInput{
		Audit:     audit,
		Account:   account,
		Namespace: namespace,
		Key:       key,
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("attribute removed",
		"event", "access_attribute_removed",
		"module", "access-control/policy-engine",
		"layer", "application",
		"account", account.String(),
		"namespace", namespace,
		"key", key,
	)
	return nil
}

func (s Service) GetAttribute(
	ctx context.Context,
	account valueobjects.Principal,
	namespace string,
	key string,
) (string, bool, error) {
	return s.Repo.GetAttribute(ctx, account, namespace, key)
}

// AuthorizeWriter delegates attribute writes over the caller's own namespace.
// The subject is always the caller, never a parameter; idempotent.
func (s Service) AuthorizeWriter(
	ctx context.Context,
	caller valueobjects.Principal,
	writer valueobjects.Principal,
) error {
	audit, err := s.newAudit(ctx)
	if err != nil {
		return err
	}
	if err := s.Repo.PutWriterAuthorization(ctx, ports.WriterAuthorizationInput{
		Audit:   audit,
		Subject: caller,
		Writer:  writer,
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("writer authorized",
		"event", "access_writer_authorized",
		"module", "access-control/policy-engine",
		"layer", "application",
		"account", caller.String(),
		"writer", writer.String(),
	)
	return nil
}

// RevokeWriter removes the delegation; revoking a never-authorized writer is a
// successful no-op.
func (s Service) RevokeWriter(
	ctx context.Context,
	caller valueobjects.Principal,
	writer valueobjects.Principal,
) error {
	audit, err := s.newAudit(ctx)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteWriterAuthorization(ctx, ports.WriterAuthorizationInput{
		Audit:   audit,
		Subject: caller,
		Writer:  writer,
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("writer revoked",
		"event", "access_writer_revoked",
		"module", "access-control/policy-engine",
		"layer", "application",
		"account", caller.String(),
		"writer", writer.String(),
	)
	return nil
}

// CanWrite is the read-only mirror of the attribute write predicate, exposed
// so callers can pre-flight permission.
func (s Service) CanWrite(
	ctx context.Context,
	caller valueobjects.Principal,
	account valueobjects.Principal,
) (bool, error) {
	owner, err := s.Repo.Owner(ctx)
	if err != nil {
		return false, err
	}
	if services.IsOwner(owner, caller) || caller == account {
		return true, nil
	}
	return s.Repo.IsWriterAuthorized(ctx, account, caller)
}

// --- AttributeAnchor ---

func (s Service) SetRoot(
	ctx context.Context,
	caller valueobjects.Principal,
	account valueobjects.Principal,
	root valueobjects.Root,
) error {
	anchor, err := s.IsAuthorizedAnchor(ctx, caller)
	if err != nil {
		return err
	}
	if !anchor {
		return domainerrors.ErrNotAuthorizedAnchor
	}
	audit, err := s.newAudit(ctx)
	if err != nil {
		return err
	}
	if err := s.Repo.PutRoot(ctx, ports.PutRootInput{
		Audit: audit,
		Record: entities.RootRecord{
			Account: account,
			Root:    root,
		},
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("attribute root updated",
		"event", "access_root_updated",
		"module", "access-control/policy-engine",
		"layer", "application",
		"account", account.String(),
		"anchor", caller.String(),
	)
	return nil
}

func (s Service) GetRoot(
	ctx context.Context,
	account valueobjects.Principal,
) (valueobjects.Root, bool, error) {
	return s.Repo.GetRoot(ctx, account)
}

func (s Service) AddAnchor(
	ctx context.Context,
	caller valueobjects.Principal,
	anchor valueobjects.Principal,
) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	audit, err := s.newAudit(ctx)
	if err != nil {
		return err
	}
	if err := s.Repo.PutAnchor(ctx, ports.AnchorInput{
		Audit:  audit,
		Anchor: anchor,
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("anchor added",
		"event", "access_anchor_added",
		"module", "access-control/policy-engine",
		"layer", "application",
		"anchor", anchor.String(),
	)
	return nil
}

func (s Service) RemoveAnchor(
	ctx context.Context,
	caller valueobjects.Principal,
	anchor valueobjects.Principal,
) error {
	if err := s.requireOwner(ctx, caller); err != nil {
		return err
	}
	audit, err := s.newAudit(ctx)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteAnchor(ctx, ports.AnchorInput{
		Audit:  audit,
		Anchor: anchor,
	}); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("anchor removed",
		"event", "access_anchor_removed",
		"module", "access-control/policy-engine",
		"layer", "application",
		"anchor", anchor.String(),
	)
	return nil
}

// IsAuthorizedAnchor is true for the owner even without a registry entry.
func (s Service) IsAuthorizedAnchor(
	ctx context.Context,
	anchor valueobjects.Principal,
) (bool, error) {
	owner, err := s.Repo.Owner(ctx)
	if err != nil {
		return false, err
	}
	if services.IsOwner(owner, anchor) {
		return true, nil
	}
	return s.Repo.IsAnchorRegistered(ctx, anchor)
}

// --- guards and plumbing ---

func (s Service) requireOwner(ctx context.Context, caller valueobjects.Principal) error {
	owner, err := s.Repo.Owner(ctx)
	if err != nil {
		return err
	}
	if !services.IsOwner(owner, caller) {
		return domainerrors.ErrNotOwner
	}
	return nil
}

func (s Service) requireAttributeWrite(
	ctx context.Context,
	caller valueobjects.Principal,
	account valueobjects.Principal,
) error {
	allowed, err := s.CanWrite(ctx, caller, account)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrNotAuthorized
	}
	return nil
}

func (s Service) newAudit(ctx context.Context) (ports.Audit, error) {
	eventID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return ports.Audit{}, err
	}
	outboxID, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return ports.Audit{}, err
	}
	return ports.Audit{
		EventID:    eventID,
		OutboxID:   outboxID,
		OccurredAt: s.now(),
	}, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
