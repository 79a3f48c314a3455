package entities

import "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"

// RootRecord is the per-account 32-byte commitment summarizing the account's
// off-ledger attribute set. Only created or overwritten, never deleted.
type RootRecord struct {
	Account valueobjects.Principal
	Root    valueobjects.Root
}
