package outbox

import (
	"context"
	"time"
)

// EventDocument is one persisted outbox row, claimed and published at most
// once per delivery attempt.
type EventDocument struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
	Attempts   int
}

// Store is the durable queue behind the worker. Claim hands out one
// pending document and locks it to the worker so concurrent workers never
// double-publish.
type Store interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error
}
