package valueobjects

import (
	"strings"

	domainerrors "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/errors"
)

// SessionID is the opaque 32-byte session grant key, caller-supplied
// (typically a hash) and trusted to be fresh.
type SessionID string

// ScopeID identifies the 32-byte resource scope a session grant is bound to.
type ScopeID string

// Root is a 32-byte commitment (Merkle root) over a principal's off-ledger
// attribute set.
type Root string

// EphPubKey is the ephemeral public key bound to a session grant. The engine
// stores it verbatim; the expected 33-byte compressed-point shape is validated
// by whichever component consumes the grant, not here.
type EphPubKey string

func NewSessionID(v string) (SessionID, error) {
	normalized := strings.ToLower(strings.TrimSpace(v))
	if !isHexBytes(normalized, 32) {
		return "", domainerrors.ErrInvalidSessionID
	}
	return SessionID(normalized), nil
}

func NewScopeID(v string) (ScopeID, error) {
	normalized := strings.ToLower(strings.TrimSpace(v))
	if !isHexBytes(normalized, 32) {
		return "", domainerrors.ErrInvalidScopeID
	}
	return ScopeID(normalized), nil
}

func NewRoot(v string) (Root, error) {
	normalized := strings.ToLower(strings.TrimSpace(v))
	if !isHexBytes(normalized, 32) {
		return "", domainerrors.ErrInvalidRoot
	}
	return Root(normalized), nil
}

func NewEphPubKey(v string) (EphPubKey, error) {
	normalized := strings.ToLower(strings.TrimSpace(v))
	if !strings.HasPrefix(normalized, "0x") || len(normalized) == 2 {
		return "", domainerrors.ErrInvalidEphPubKey
	}
	if len(normalized)%2 != 0 {
		return "", domainerrors.ErrInvalidEphPubKey
	}
	for _, r := range normalized[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return "", domainerrors.ErrInvalidEphPubKey
		}
	}
	return EphPubKey(normalized), nil
}

func (s SessionID) String() string { return string(s) }
func (s ScopeID) String() string   { return string(s) }
func (r Root) String() string      { return string(r) }
func (k EphPubKey) String() string { return string(k) }
