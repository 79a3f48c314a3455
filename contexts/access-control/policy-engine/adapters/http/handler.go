package httpadapter

import (
	"context"
	"log/slog"

	application "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/application"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/entities"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
	httptransport "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/transport/http"
)

// Handler maps HTTP DTOs onto engine operations. The caller principal arrives
// as a string from the transport header and is validated here, before any
// operation runs.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GrantEntitlementHandler(
	ctx context.Context,
	caller string,
	account string,
	request httptransport.GrantEntitlementRequest,
) (httptransport.EntitlementResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.EntitlementResponse{}, err
	}
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.EntitlementResponse{}, err
	}
	level, err := entities.ParseEntitlementLevel(request.Level)
	if err != nil {
		return httptransport.EntitlementResponse{}, err
	}
	if err := h.Service.GrantEntitlement(ctx, callerP, accountP, level); err != nil {
		h.logFailure("access_http_grant_entitlement_failed", err, "account", account)
		return httptransport.EntitlementResponse{}, err
	}
	return httptransport.EntitlementResponse{
		Account: accountP.String(),
		Level:   level.String(),
	}, nil
}

func (h Handler) RevokeEntitlementHandler(
	ctx context.Context,
	caller string,
	account string,
) (httptransport.EntitlementResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.EntitlementResponse{}, err
	}
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.EntitlementResponse{}, err
	}
	if err := h.Service.RevokeEntitlement(ctx, callerP, accountP); err != nil {
		h.logFailure("access_http_revoke_entitlement_failed", err, "account", account)
		return httptransport.EntitlementResponse{}, err
	}
	return httptransport.EntitlementResponse{
		Account: accountP.String(),
		Level:   entities.LevelNone.String(),
	}, nil
}

func (h Handler) GetEntitlementHandler(
	ctx context.Context,
	account string,
) (httptransport.EntitlementResponse, error) {
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.EntitlementResponse{}, err
	}
	level, err := h.Service.GetEntitlement(ctx, accountP)
	if err != nil {
		return httptransport.EntitlementResponse{}, err
	}
	return httptransport.EntitlementResponse{
		Account: accountP.String(),
		Level:   level.String(),
	}, nil
}

func (h Handler) CheckEntitlementHandler(
	ctx context.Context,
	account string,
	required string,
) (httptransport.CheckEntitlementResponse, error) {
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.CheckEntitlementResponse{}, err
	}
	requiredLevel, err := entities.ParseEntitlementLevel(required)
	if err != nil {
		return httptransport.CheckEntitlementResponse{}, err
	}
	level, err := h.Service.GetEntitlement(ctx, accountP)
	if err != nil {
		return httptransport.CheckEntitlementResponse{}, err
	}
	return httptransport.CheckEntitlementResponse{
		Account:   accountP.String(),
		Level:     level.String(),
		Required:  requiredLevel.String(),
		Satisfied: level.AtLeast(requiredLevel),
	}, nil
}

func (h Handler) OwnerHandler(ctx context.Context) (httptransport.OwnerResponse, error) {
	owner, err := h.Service.Owner(ctx)
	if err != nil {
		return httptransport.OwnerResponse{}, err
	}
	return httptransport.OwnerResponse{Owner: owner.String()}, nil
}

func (h Handler) CreateSessionHandler(
	ctx context.Context,
	caller string,
	request httptransport.CreateSessionRequest,
) (httptransport.SessionResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	sessionID, err := valueobjects.NewSessionID(request.SessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	ephPubKey, err := valueobjects.NewEphPubKey(request.EphPubKey)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	scopeID, err := valueobjects.NewScopeID(request.ScopeID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	grant, err := h.Service.CreateSession(ctx, callerP, sessionID, ephPubKey, scopeID, request.ExpiresAtBlock)
	if err != nil {
		h.logFailure("access_http_create_session_failed", err, "session_id", request.SessionID)
		return httptransport.SessionResponse{}, err
	}
	return sessionResponse(grant), nil
}

func (h Handler) GetSessionHandler(
	ctx context.Context,
	sessionID string,
) (httptransport.SessionResponse, bool, error) {
	id, err := valueobjects.NewSessionID(sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, false, err
	}
	grant, found, err := h.Service.GetSession(ctx, id)
	if err != nil || !found {
		return httptransport.SessionResponse{}, found, err
	}
	return sessionResponse(grant), true, nil
}

func (h Handler) RevokeSessionHandler(
	ctx context.Context,
	caller string,
	sessionID string,
) (httptransport.SessionResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	id, err := valueobjects.NewSessionID(sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	grant, err := h.Service.RevokeSession(ctx, callerP, id)
	if err != nil {
		h.logFailure("access_http_revoke_session_failed", err, "session_id", sessionID)
		return httptransport.SessionResponse{}, err
	}
	return sessionResponse(grant), nil
}

func (h Handler) SetAttributeHandler(
	ctx context.Context,
	caller string,
	account string,
	namespace string,
	key string,
	request httptransport.SetAttributeRequest,
) (httptransport.AttributeResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.AttributeResponse{}, err
	}
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.AttributeResponse{}, err
	}
	if err := h.Service.SetAttribute(ctx, callerP, accountP, namespace, key, request.Value); err != nil {
		h.logFailure("access_http_set_attribute_failed", err, "account", account, "namespace", namespace, "key", key)
		return httptransport.AttributeResponse{}, err
	}
	return httptransport.AttributeResponse{
		Account:   accountP.String(),
		Namespace: namespace,
		Key:       key,
		Value:     request.Value,
	}, nil
}

func (h Handler) RemoveAttributeHandler(
	ctx context.Context,
	caller string,
	account string,
	namespace string,
	key string,
) (httptransport.AttributeResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.AttributeResponse{}, err
	}
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.AttributeResponse{}, err
	}
	if err := h.Service.RemoveAttribute(ctx, callerP, accountP, namespace, key); err != nil {
		h.logFailure("access_http_remove_attribute_failed", err, "account", account, "namespace", namespace, "key", key)
		return httptransport.AttributeResponse{}, err
	}
	return httptransport.AttributeResponse{
		Account:   accountP.String(),
		Namespace: namespace,
		Key:       key,
	}, nil
}

func (h Handler) GetAttributeHandler(
	ctx context.Context,
	account string,
	namespace string,
	key string,
) (httptransport.AttributeResponse, bool, error) {
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.AttributeResponse{}, false, err
	}
	value, found, err := h.Service.GetAttribute(ctx, accountP, namespace, key)
	if err != nil || !found {
		return httptransport.AttributeResponse{}, found, err
	}
	return httptransport.AttributeResponse{
		Account:   accountP.String(),
		Namespace: namespace,
		Key:       key,
		Value:     value,
	}, true, nil
}

func (h Handler) AuthorizeWriterHandler(
	ctx context.Context,
	caller string,
	writer string,
) (httptransport.WriterResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.WriterResponse{}, err
	}
	writerP, err := valueobjects.NewPrincipal(writer)
	if err != nil {
		return httptransport.WriterResponse{}, err
	}
	if err := h.Service.AuthorizeWriter(ctx, callerP, writerP); err != nil {
		h.logFailure("access_http_authorize_writer_failed", err, "writer", writer)
		return httptransport.WriterResponse{}, err
	}
	return httptransport.WriterResponse{
		Account: callerP.String(),
		Writer:  writerP.String(),
	}, nil
}

func (h Handler) RevokeWriterHandler(
	ctx context.Context,
	caller string,
	writer string,
) (httptransport.WriterResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.WriterResponse{}, err
	}
	writerP, err := valueobjects.NewPrincipal(writer)
	if err != nil {
		return httptransport.WriterResponse{}, err
	}
	if err := h.Service.RevokeWriter(ctx, callerP, writerP); err != nil {
		h.logFailure("access_http_revoke_writer_failed", err, "writer", writer)
		return httptransport.WriterResponse{}, err
	}
	return httptransport.WriterResponse{
		Account: callerP.String(),
		Writer:  writerP.String(),
	}, nil
}

func (h Handler) CanWriteHandler(
	ctx context.Context,
	caller string,
	account string,
) (httptransport.CanWriteResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.CanWriteResponse{}, err
	}
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.CanWriteResponse{}, err
	}
	allowed, err := h.Service.CanWrite(ctx, callerP, accountP)
	if err != nil {
		return httptransport.CanWriteResponse{}, err
	}
	return httptransport.CanWriteResponse{
		Caller:   callerP.String(),
		Account:  accountP.String(),
		CanWrite: allowed,
	}, nil
}

func (h Handler) SetRootHandler(
	ctx context.Context,
	caller string,
	account string,
	request httptransport.SetRootRequest,
) (httptransport.RootResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.RootResponse{}, err
	}
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.RootResponse{}, err
	}
	root, err := valueobjects.NewRoot(request.Root)
	if err != nil {
		return httptransport.RootResponse{}, err
	}
	if err := h.Service.SetRoot(ctx, callerP, accountP, root); err != nil {
		h.logFailure("access_http_set_root_failed", err, "account", account)
		return httptransport.RootResponse{}, err
	}
	return httptransport.RootResponse{
		Account: accountP.String(),
		Root:    root.String(),
	}, nil
}

func (h Handler) GetRootHandler(
	ctx context.Context,
	account string,
) (httptransport.RootResponse, bool, error) {
	accountP, err := valueobjects.NewPrincipal(account)
	if err != nil {
		return httptransport.RootResponse{}, false, err
	}
	root, found, err := h.Service.GetRoot(ctx, accountP)
	if err != nil || !found {
		return httptransport.RootResponse{}, found, err
	}
	return httptransport.RootResponse{
		Account: accountP.String(),
		Root:    root.String(),
	}, true, nil
}

func (h Handler) AddAnchorHandler(
	ctx context.Context,
	caller string,
	anchor string,
) (httptransport.AnchorResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.AnchorResponse{}, err
	}
	anchorP, err := valueobjects.NewPrincipal(anchor)
	if err != nil {
		return httptransport.AnchorResponse{}, err
	}
	if err := h.Service.AddAnchor(ctx, callerP, anchorP); err != nil {
		h.logFailure("access_http_add_anchor_failed", err, "anchor", anchor)
		return httptransport.AnchorResponse{}, err
	}
	return httptransport.AnchorResponse{
		Anchor:     anchorP.String(),
		Authorized: true,
	}, nil
}

func (h Handler) RemoveAnchorHandler(
	ctx context.Context,
	caller string,
	anchor string,
) (httptransport.AnchorResponse, error) {
	callerP, err := valueobjects.NewPrincipal(caller)
	if err != nil {
		return httptransport.AnchorResponse{}, err
	}
	anchorP, err := valueobjects.NewPrincipal(anchor)
	if err != nil {
		return httptransport.AnchorResponse{}, err
	}
	if err := h.Service.RemoveAnchor(ctx, callerP, anchorP); err != nil {
		h.logFailure("access_http_remove_anchor_failed", err, "anchor", anchor)
		return httptransport.AnchorResponse{}, err
	}
	return httptransport.AnchorResponse{
		Anchor:     anchorP.String(),
		Authorized: false,
	}, nil
}

func (h Handler) IsAuthorizedAnchorHandler(
	ctx context.Context,
	anchor string,
) (httptransport.AnchorResponse, error) {
	anchorP, err := valueobjects.NewPrincipal(anchor)
	if err != nil {
		return httptransport.AnchorResponse{}, err
	}
	authorized, err := h.Service.IsAuthorizedAnchor(ctx, anchorP)
	if err != nil {
		return httptransport.AnchorResponse{}, err
	}
	return httptransport.AnchorResponse{
		Anchor:     anchorP.String(),
		Authorized: authorized,
	}, nil
}

func (h Handler) logFailure(event string, err error, args ...any) {
	fields := append([]any{
		"event", event,
		"module", "access-control/policy-engine",
		"layer", "transport",
		"error", err.Error(),
	}, args...)
	application.ResolveLogger(h.Logger).Error("access http operation failed", fields...)
}

func sessionResponse(grant entities.SessionGrant) httptransport.SessionResponse {
	return httptransport.SessionResponse{
		SessionID:      grant.SessionID.String(),
		EphPubKey:      grant.EphPubKey.String(),
		ScopeID:        grant.ScopeID.String(),
		ExpiresAtBlock: grant.ExpiresAtBlock,
		CreatedAtBlock: grant.CreatedAtBlock,
		IsRevoked:      grant.IsRevoked,
	}
}
