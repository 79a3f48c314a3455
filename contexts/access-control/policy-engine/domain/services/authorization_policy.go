package services

import "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"

// IsOwner reports whether the caller is the registry owner.
func IsOwner(owner, caller valueobjects.Principal) bool {
	return caller == owner
}

// CanWriteAttribute evaluates the attribute write predicate: the owner, the
// subject itself, or a writer the subject has delegated to.
func CanWriteAttribute(owner, caller, subject valueobjects.Principal, writerAuthorized bool) bool {
	if IsOwner(owner, caller) {
		return true
	}
	if caller == subject {
		return true
	}
	return writerAuthorized
}

// IsAuthorizedAnchor evaluates the root write predicate. The owner is always
// a valid anchor without an explicit registration.
func IsAuthorizedAnchor(owner, caller valueobjects.Principal, registered bool) bool {
	if IsOwner(owner, caller) {
		return true
	}
	return registered
}
