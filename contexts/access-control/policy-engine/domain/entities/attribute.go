package entities

import "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"

// MaxAttributeStringLength bounds namespace, key and value byte lengths.
// Oversized inputs are rejected before any authorization check or mutation.
const MaxAttributeStringLength = 256

// AttributeRecord is one namespaced ABAC claim about an account.
type AttributeRecord struct {
	Account   valueobjects.Principal
	Namespace string
	Key       string
	Value     string
}
