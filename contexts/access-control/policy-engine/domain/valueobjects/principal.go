package valueobjects

import (
	"strings"

	domainerrors "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/errors"
)

// Principal is an opaque 20-byte ledger account address in 0x-prefixed hex.
// Principals are immutable and compared by equality only.
type Principal string

func NewPrincipal(v string) (Principal, error) {
	normalized := strings.ToLower(strings.TrimSpace(v))
	if !isHexBytes(normalized, 20) {
		return "", domainerrors.ErrInvalidPrincipal
	}
	return Principal(normalized), nil
}

func (p Principal) String() string {
	return string(p)
}

func isHexBytes(v string, byteLen int) bool {
	if !strings.HasPrefix(v, "0x") {
		return false
	}
	digits := v[2:]
	if len(digits) != byteLen*2 {
		return false
	}
	for _, r := range digits {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
