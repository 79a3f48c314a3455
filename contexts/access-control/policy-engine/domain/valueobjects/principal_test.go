package valueobjects

import (
	"errors"
	"strings"
	"testing"

	domainerrors "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/errors"
)

func TestNewPrincipalNormalizes(t *testing.T) {
	principal, err := NewPrincipal("  0xABCDEFabcdef0123456789abcdef0123456789AB ")
	if err != nil {
		t.Fatalf("expected valid principal, got %v", err)
	}
	if principal.String() != "0xabcdefabcdef0123456789abcdef0123456789ab" {
		t.Fatalf("expected lowercased address, got %s", principal)
	}
}

func TestNewPrincipalRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{
		"",
		"abcdefabcdef0123456789abcdef0123456789ab",
		"0x1234",
		"0x" + strings.Repeat("zz", 20),
		"0x" + strings.Repeat("ab", 32),
	} {
		if _, err := NewPrincipal(input); !errors.Is(err, domainerrors.ErrInvalidPrincipal) {
			t.Fatalf("input %q: expected ErrInvalidPrincipal, got %v", input, err)
		}
	}
}

func TestIdentifierConstructorsEnforceWidth(t *testing.T) {
	valid32 := "0x" + strings.Repeat("ab", 32)

	if _, err := NewSessionID(valid32); err != nil {
		t.Fatalf("expected valid session id: %v", err)
	}
	if _, err := NewSessionID("0x" + strings.Repeat("ab", 20)); !errors.Is(err, domainerrors.ErrInvalidSessionID) {
		t.Fatalf("expected ErrInvalidSessionID, got %v", err)
	}
	if _, err := NewScopeID("0xab"); !errors.Is(err, domainerrors.ErrInvalidScopeID) {
		t.Fatalf("expected ErrInvalidScopeID, got %v", err)
	}
	if _, err := NewRoot(strings.Repeat("ab", 33)); !errors.Is(err, domainerrors.ErrInvalidRoot) {
		t.Fatalf("expected ErrInvalidRoot, got %v", err)
	}
}

func TestNewEphPubKeyAcceptsAnyEvenHexPayload(t *testing.T) {
	// Key shape is not validated here; only hex well-formedness is.
	for _, input := range []string{
		"0x02" + strings.Repeat("ab", 32),
		"0x" + strings.Repeat("cd", 48),
		"0xff",
	} {
		if _, err := NewEphPubKey(input); err != nil {
			t.Fatalf("input %q: expected valid key, got %v", input, err)
		}
	}
	for _, input := range []string{"", "0x", "0xabc", "0xzz", "ff00"} {
		if _, err := NewEphPubKey(input); !errors.Is(err, domainerrors.ErrInvalidEphPubKey) {
			t.Fatalf("input %q: expected ErrInvalidEphPubKey, got %v", input, err)
		}
	}
}
