package idempotency

import (
	"context"

	"orderflow/internal/core/ports"
)

// NoopLedger accepts every key. Used when no idempotency table is configured.
type NoopLedger struct{}

func (NoopLedger) Reserve(context.Context, string) (*ports.LedgerEntry, error) { return nil, nil }

func (NoopLedger) Complete(context.Context, string, []byte) error { return nil }

func (NoopLedger) Release(context.Context, string) error { return nil }
