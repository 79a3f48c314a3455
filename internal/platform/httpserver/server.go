package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	policyengine "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	access policyengine.Module
}

func New(access policyengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		access: access,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/access/v1/owner", s.handleAccessOwner)

	s.mux.HandleFunc("POST /api/access/v1/entitlements/{account}/grant", s.handleAccessGrantEntitlement)
	s.mux.HandleFunc("POST /api/access/v1/entitlements/{account}/revoke", s.handleAccessRevokeEntitlement)
	s.mux.HandleFunc("GET /api/access/v1/entitlements/{account}", s.handleAccessGetEntitlement)
	s.mux.HandleFunc("GET /api/access/v1/entitlements/{account}/check", s.handleAccessCheckEntitlement)

	s.mux.HandleFunc("POST /api/access/v1/sessions", s.handleAccessCreateSession)
	s.mux.HandleFunc("GET /api/access/v1/sessions/{session_id}", s.handleAccessGetSession)
	s.mux.HandleFunc("POST /api/access/v1/sessions/{session_id}/revoke", s.handleAccessRevokeSession)

	s.mux.HandleFunc("PUT /api/access/v1/accounts/{account}/attributes/{namespace}/{key}", s.handleAccessSetAttribute)
	s.mux.HandleFunc("DELETE /api/access/v1/accounts/{account}/attributes/{namespace}/{key}", s.handleAccessRemoveAttribute)
	s.mux.HandleFunc("GET /api/access/v1/accounts/{account}/attributes/{namespace}/{key}", s.handleAccessGetAttribute)
	s.mux.HandleFunc("GET /api/access/v1/accounts/{account}/can-write", s.handleAccessCanWrite)

	s.mux.HandleFunc("POST /api/access/v1/writers/{writer}/authorize", s.handleAccessAuthorizeWriter)
	s.mux.HandleFunc("POST /api/access/v1/writers/{writer}/revoke", s.handleAccessRevokeWriter)

	s.mux.HandleFunc("PUT /api/access/v1/accounts/{account}/root", s.handleAccessSetRoot)
	s.mux.HandleFunc("GET /api/access/v1/accounts/{account}/root", s.handleAccessGetRoot)

	s.mux.HandleFunc("POST /api/access/v1/anchors/{anchor}/add", s.handleAccessAddAnchor)
	s.mux.HandleFunc("POST /api/access/v1/anchors/{anchor}/remove", s.handleAccessRemoveAnchor)
	s.mux.HandleFunc("GET /api/access/v1/anchors/{anchor}", s.handleAccessIsAuthorizedAnchor)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) decodeJSON(
	w http.ResponseWriter,
	r *http.Request,
	target any,
	writeError func(http.ResponseWriter, int, string, string),
) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}
