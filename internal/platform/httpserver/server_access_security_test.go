package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	policyengine "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
)

const (
	testOwner    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testAccount  = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	testStranger = "0xcccccccccccccccccccccccccccccccccccccccc"
)

func newTestServer() *Server {
	owner, err := valueobjects.NewPrincipal(testOwner)
	if err != nil {
		panic(err)
	}
	return New(policyengine.NewInMemoryModule(owner, slog.Default()), slog.Default(), ":0")
}

func TestAccessGrantEntitlementRequiresAuthorization(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"level":"premium"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/access/v1/entitlements/"+testAccount+"/grant", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", "req-acc-1")
	req.Header.Set("X-Caller-Address", testOwner)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAccessGrantEntitlementRequiresCallerHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"level":"premium"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/access/v1/entitlements/"+testAccount+"/grant", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-Request-Id", "req-acc-2")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAccessGrantEntitlementRejectsNonOwner(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"level":"vip"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/access/v1/entitlements/"+testAccount+"/grant", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-Request-Id", "req-acc-3")
	req.Header.Set("X-Caller-Address", testStranger)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAccessEntitlementGrantCheckFlow(t *testing.T) {
	server := newTestServer()

	grantReq := httptest.NewRequest(http.MethodPost, "/api/access/v1/entitlements/"+testAccount+"/grant", bytes.NewReader([]byte(`{"level":"premium"}`)))
	grantReq.Header.Set("Content-Type", "application/json")
	grantReq.Header.Set("Authorization", "Bearer token")
	grantReq.Header.Set("X-Request-Id", "req-acc-4a")
	grantReq.Header.Set("X-Caller-Address", testOwner)
	grantRR := httptest.NewRecorder()
	server.mux.ServeHTTP(grantRR, grantReq)
	if grantRR.Code != http.StatusOK {
		t.Fatalf("expected 200 grant, got %d body=%s", grantRR.Code, grantRR.Body.String())
	}

	checkReq := httptest.NewRequest(http.MethodGet, "/api/access/v1/entitlements/"+testAccount+"/check?level=basic", nil)
	checkReq.Header.Set("Authorization", "Bearer token")
	checkReq.Header.Set("X-Request-Id", "req-acc-4b")
	checkRR := httptest.NewRecorder()
	server.mux.ServeHTTP(checkRR, checkReq)
	if checkRR.Code != http.StatusOK {
		t.Fatalf("expected 200 check, got %d body=%s", checkRR.Code, checkRR.Body.String())
	}
	var check struct {
		Satisfied bool   `json:"satisfied"`
		Level     string `json:"level"`
	}
	if err := json.Unmarshal(checkRR.Body.Bytes(), &check); err != nil {
		t.Fatalf("decode check response: %v", err)
	}
	if !check.Satisfied || check.Level != "premium" {
		t.Fatalf("expected premium satisfying basic, got %+v", check)
	}

	vipReq := httptest.NewRequest(http.MethodGet, "/api/access/v1/entitlements/"+testAccount+"/check?level=vip", nil)
	vipReq.Header.Set("Authorization", "Bearer token")
	vipReq.Header.Set("X-Request-Id", "req-acc-4c")
	vipRR := httptest.NewRecorder()
	server.mux.ServeHTTP(vipRR, vipReq)
	var vip struct {
		Satisfied bool `json:"satisfied"`
	}
	if err := json.Unmarshal(vipRR.Body.Bytes(), &vip); err != nil {
		t.Fatalf("decode vip check response: %v", err)
	}
	if vip.Satisfied {
		t.Fatalf("premium must not satisfy vip: %s", vipRR.Body.String())
	}
}

func TestAccessRejectsMalformedPrincipal(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/access/v1/entitlements/not-an-address", nil)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-Request-Id", "req-acc-5")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAccessSetAttributeRejectsOversizedValue(t *testing.T) {
	server := newTestServer()
	payload, err := json.Marshal(map[string]string{"value": strings.Repeat("x", 257)})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/api/access/v1/accounts/"+testAccount+"/attributes/core/tier", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-Request-Id", "req-acc-6")
	req.Header.Set("X-Caller-Address", testAccount)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAccessSessionLifecycleOverHTTP(t *testing.T) {
	server := newTestServer()
	sessionID := "0x" + strings.Repeat("11", 32)
	scopeID := "0x" + strings.Repeat("22", 32)
	body, err := json.Marshal(map[string]any{
		"session_id":       sessionID,
		"eph_pub_key":      "0x02" + strings.Repeat("ab", 32),
		"scope_id":         scopeID,
		"expires_at_block": 900,
	})
	if err != nil {
		t.Fatalf("marshal session request: %v", err)
	}

	createReq := httptest.NewRequest(http.MethodPost, "/api/access/v1/sessions", bytes.NewReader(body))
	createReq.Header.Set("Content-Type", "application/json")
	createReq.Header.Set("Authorization", "Bearer token")
	createReq.Header.Set("X-Request-Id", "req-acc-7a")
	createReq.Header.Set("X-Caller-Address", testOwner)
	createRR := httptest.NewRecorder()
	server.mux.ServeHTTP(createRR, createReq)
	if createRR.Code != http.StatusCreated {
		t.Fatalf("expected 201 create, got %d body=%s", createRR.Code, createRR.Body.String())
	}

	strangerRevoke := httptest.NewRequest(http.MethodPost, "/api/access/v1/sessions/"+sessionID+"/revoke", nil)
	strangerRevoke.Header.Set("Authorization", "Bearer token")
	strangerRevoke.Header.Set("X-Request-Id", "req-acc-7b")
	strangerRevoke.Header.Set("X-Caller-Address", testStranger)
	strangerRR := httptest.NewRecorder()
	server.mux.ServeHTTP(strangerRR, strangerRevoke)
	if strangerRR.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for stranger revoke, got %d body=%s", strangerRR.Code, strangerRR.Body.String())
	}

	ownerRevoke := httptest.NewRequest(http.MethodPost, "/api/access/v1/sessions/"+sessionID+"/revoke", nil)
	ownerRevoke.Header.Set("Authorization", "Bearer token")
	ownerRevoke.Header.Set("X-Request-Id", "req-acc-7c")
	ownerRevoke.Header.Set("X-Caller-Address", testOwner)
	revokeRR := httptest.NewRecorder()
	server.mux.ServeHTTP(revokeRR, ownerRevoke)
	if revokeRR.Code != http.StatusOK {
		t.Fatalf("expected 200 revoke, got %d body=%s", revokeRR.Code, revokeRR.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/access/v1/sessions/"+sessionID, nil)
	getReq.Header.Set("Authorization", "Bearer token")
	getReq.Header.Set("X-Request-Id", "req-acc-7d")
	getRR := httptest.NewRecorder()
	server.mux.ServeHTTP(getRR, getReq)
	if getRR.Code != http.StatusOK {
		t.Fatalf("expected 200 get, got %d body=%s", getRR.Code, getRR.Body.String())
	}
	var session struct {
		IsRevoked bool `json:"is_revoked"`
	}
	if err := json.Unmarshal(getRR.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	if !session.IsRevoked {
		t.Fatalf("expected revoked session, got %s", getRR.Body.String())
	}
}

func TestAccessUnknownSessionReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/access/v1/sessions/0x"+strings.Repeat("99", 32), nil)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-Request-Id", "req-acc-8")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}
