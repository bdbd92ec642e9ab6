package ports

import "context"

const (
	LedgerInProgress = "in_progress"
	LedgerCompleted  = "completed"
)

// LedgerEntry is the stored state of an idempotency key.
type LedgerEntry struct {
	Key      string
	State    string
	Response []byte
}

// SubmissionLedger deduplicates order submissions by idempotency key.
type SubmissionLedger interface {
	// Reserve claims key. It returns nil when the claim succeeded, or the
	// existing entry when the key was seen before.
	Reserve(ctx context.Context, key string) (*LedgerEntry, error)

	// Complete stores the response for replay.
	Complete(ctx context.Context, key string, response []byte) error

	// Release forgets a key so the client may retry it.
	Release(ctx context.Context, key string) error
}
