package services

import (
	"testing"

	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
)

const (
	policyOwner   = valueobjects.Principal("0x1111111111111111111111111111111111111111")
	policySubject = valueobjects.Principal("0x2222222222222222222222222222222222222222")
	policyOther   = valueobjects.Principal("0x3333333333333333333333333333333333333333")
)

func TestCanWriteAttribute(t *testing.T) {
	cases := []struct {
		name             string
		caller           valueobjects.Principal
		writerAuthorized bool
		want             bool
	}{
		{"owner always writes", policyOwner, false, true},
		{"subject writes own namespace", policySubject, false, true},
		{"stranger denied", policyOther, false, false},
		{"delegated writer allowed", policyOther, true, true},
	}
	for _, tc := range cases {
		got := CanWriteAttribute(policyOwner, tc.caller, policySubject, tc.writerAuthorized)
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsAuthorizedAnchor(t *testing.T) {
	if !IsAuthorizedAnchor(policyOwner, policyOwner, false) {
		t.Fatalf("owner must be an implicit anchor")
	}
	if IsAuthorizedAnchor(policyOwner, policyOther, false) {
		t.Fatalf("unregistered principal must not be an anchor")
	}
	if !IsAuthorizedAnchor(policyOwner, policyOther, true) {
		t.Fatalf("registered principal must be an anchor")
	}
}

func TestIsOwnerIsExactEquality(t *testing.T) {
	if !IsOwner(policyOwner, policyOwner) {
		t.Fatalf("owner must match itself")
	}
	if IsOwner(policyOwner, policyOther) {
		t.Fatalf("non-owner must not match")
	}
}
