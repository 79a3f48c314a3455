package ports

import (
	"context"
	"time"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// HeightSource supplies the host ledger's current block height, an opaque
// monotonically non-decreasing counter. It is the only temporal signal the
// engine reads; wall-clock time is never used in a decision.
type HeightSource interface {
	CurrentHeight(ctx context.Context) (uint64, error)
}

// IDGenerator abstracts UUID generation for audit event and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
