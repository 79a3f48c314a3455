package httptransport

// ErrorResponse is the uniform error body for the access-control routes.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GrantEntitlementRequest struct {
	Level string `json:"level"`
}

type EntitlementResponse struct {
	Account string `json:"account"`
	Level   string `json:"level"`
}

type CheckEntitlementResponse struct {
	Account   string `json:"account"`
	Level     string `json:"level"`
	Required  string `json:"required"`
	Satisfied bool   `json:"satisfied"`
}

type OwnerResponse struct {
	Owner string `json:"owner"`
}

type CreateSessionRequest struct {
	SessionID      string `json:"session_id"`
	EphPubKey      string `json:"eph_pub_key"`
	ScopeID        string `json:"scope_id"`
	ExpiresAtBlock uint64 `json:"expires_at_block"`
}

type SessionResponse struct {
	SessionID      string `json:"session_id"`
	EphPubKey      string `json:"eph_pub_key"`
	ScopeID        string `json:"scope_id"`
	ExpiresAtBlock uint64 `json:"expires_at_block"`
	CreatedAtBlock uint64 `json:"created_at_block"`
	IsRevoked      bool   `json:"is_revoked"`
}

type SetAttributeRequest struct {
	Value string `json:"value"`
}

type AttributeResponse struct {
	Account   string `json:"account"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

type WriterResponse struct {
	Account string `json:"account"`
	Writer  string `json:"writer"`
}

type CanWriteResponse struct {
	Caller   string `json:"caller"`
	Account  string `json:"account"`
	CanWrite bool   `json:"can_write"`
}

type SetRootRequest struct {
	Root string `json:"root"`
}

type RootResponse struct {
	Account string `json:"account"`
	Root    string `json:"root"`
}

type AnchorResponse struct {
	Anchor     string `json:"anchor"`
	Authorized bool   `json:"authorized"`
}
