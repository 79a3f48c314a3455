package entities

import "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"

// SessionGrant is an owner-issued, time-bounded delegated-access capability.
// ExpiresAtBlock is advisory metadata for the consuming verifier; the engine
// never enforces it. IsRevoked only ever transitions false to true.
type SessionGrant struct {
	SessionID      valueobjects.SessionID
	EphPubKey      valueobjects.EphPubKey
	ScopeID        valueobjects.ScopeID
	ExpiresAtBlock uint64
	CreatedAtBlock uint64
	IsRevoked      bool
}
