package httpserver

import (
	"errors"
	"net/http"
	"strings"

	accesserrors "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/errors"
	accesshttp "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/transport/http"
)

func writeAccessError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accesshttp.ErrorResponse{Code: code, Message: message})
}

func writeAccessDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accesserrors.ErrNotOwner),
		errors.Is(err, accesserrors.ErrNotAuthorized),
		errors.Is(err, accesserrors.ErrNotAuthorizedAnchor):
		writeAccessError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, accesserrors.ErrSessionNotFound),
		errors.Is(err, accesserrors.ErrAttributeNotFound),
		errors.Is(err, accesserrors.ErrEntitlementNotFound):
		writeAccessError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, accesserrors.ErrInputTooLong):
		writeAccessError(w, http.StatusUnprocessableEntity, "input_too_long", err.Error())
	case errors.Is(err, accesserrors.ErrInvalidPrincipal),
		errors.Is(err, accesserrors.ErrInvalidSessionID),
		errors.Is(err, accesserrors.ErrInvalidScopeID),
		errors.Is(err, accesserrors.ErrInvalidRoot),
		errors.Is(err, accesserrors.ErrInvalidEphPubKey),
		errors.Is(err, accesserrors.ErrInvalidLevel):
		writeAccessError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeAccessError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireAccessAuthorization(w http.ResponseWriter, r *http.Request) bool {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeAccessError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return false
	}
	return true
}

func requireAccessRequestID(w http.ResponseWriter, r *http.Request) bool {
	if strings.TrimSpace(r.Header.Get("X-Request-Id")) == "" {
		writeAccessError(w, http.StatusBadRequest, "missing_request_id", "X-Request-Id header is required")
		return false
	}
	return true
}

func requireAccessCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get("X-Caller-Address"))
	if caller == "" {
		writeAccessError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Address header is required")
		return "", false
	}
	return caller, true
}

func (s *Server) handleAccessOwner(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	resp, err := s.access.Handler.OwnerHandler(r.Context())
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessGrantEntitlement(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.GrantEntitlementRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.GrantEntitlementHandler(r.Context(), caller, r.PathValue("account"), req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessRevokeEntitlement(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.RevokeEntitlementHandler(r.Context(), caller, r.PathValue("account"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessGetEntitlement(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	resp, err := s.access.Handler.GetEntitlementHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessCheckEntitlement(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	required := strings.TrimSpace(r.URL.Query().Get("level"))
	if required == "" {
		writeAccessError(w, http.StatusBadRequest, "invalid_request", "level query parameter is required")
		return
	}
	resp, err := s.access.Handler.CheckEntitlementHandler(r.Context(), r.PathValue("account"), required)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessCreateSession(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.CreateSessionRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.CreateSessionHandler(r.Context(), caller, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAccessGetSession(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	resp, found, err := s.access.Handler.GetSessionHandler(r.Context(), r.PathValue("session_id"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	if !found {
		writeAccessError(w, http.StatusNotFound, "not_found", "session grant not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessRevokeSession(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.RevokeSessionHandler(r.Context(), caller, r.PathValue("session_id"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessSetAttribute(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.SetAttributeRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.SetAttributeHandler(
		r.Context(),
		caller,
		r.PathValue("account"),
		r.PathValue("namespace"),
		r.PathValue("key"),
		req,
	)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessRemoveAttribute(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.RemoveAttributeHandler(
		r.Context(),
		caller,
		r.PathValue("account"),
		r.PathValue("namespace"),
		r.PathValue("key"),
	)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessGetAttribute(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	resp, found, err := s.access.Handler.GetAttributeHandler(
		r.Context(),
		r.PathValue("account"),
		r.PathValue("namespace"),
		r.PathValue("key"),
	)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	if !found {
		writeAccessError(w, http.StatusNotFound, "not_found", "attribute not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessCanWrite(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.CanWriteHandler(r.Context(), caller, r.PathValue("account"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessAuthorizeWriter(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.AuthorizeWriterHandler(r.Context(), caller, r.PathValue("writer"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessRevokeWriter(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.RevokeWriterHandler(r.Context(), caller, r.PathValue("writer"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessSetRoot(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	var req accesshttp.SetRootRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.SetRootHandler(r.Context(), caller, r.PathValue("account"), req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessGetRoot(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	resp, found, err := s.access.Handler.GetRootHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	if !found {
		writeAccessError(w, http.StatusNotFound, "not_found", "attribute root not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessAddAnchor(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.AddAnchorHandler(r.Context(), caller, r.PathValue("anchor"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessRemoveAnchor(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	caller, ok := requireAccessCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.RemoveAnchorHandler(r.Context(), caller, r.PathValue("anchor"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessIsAuthorizedAnchor(w http.ResponseWriter, r *http.Request) {
	if !requireAccessAuthorization(w, r) || !requireAccessRequestID(w, r) {
		return
	}
	resp, err := s.access.Handler.IsAuthorizedAnchorHandler(r.Context(), r.PathValue("anchor"))
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
