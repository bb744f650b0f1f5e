package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "innkeep/internal/app/outbox"
	infraoutbox "innkeep/internal/infra/outbox"
)

// Outbox buffers event records and hands them to an optional durable store
// on flush. Without a store it degrades to a drop-on-flush sink for tests.
type Outbox struct {
	Store *OutboxStore

	mu      sync.Mutex
	records []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()
	if o.Store == nil {
		return nil
	}
	for _, rec := range pending {
		o.Store.Append(infraoutbox.EventDocument{
			ID:         rec.ID,
			Name:       rec.Name,
			Payload:    rec.Payload,
			OccurredAt: rec.OccurredAt,
			Aggregate:  rec.Aggregate,
			Headers:    rec.Headers,
		})
	}
	return nil
}

// Pending returns buffered, unflushed records. Test helper.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)

type storedDoc struct {
	doc     infraoutbox.EventDocument
	claimed bool
	sent    bool
	retryAt time.Time
}

// OutboxStore is the in-memory durable queue behind the worker.
type OutboxStore struct {
	mu    sync.Mutex
	items []*storedDoc
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{}
}

func (s *OutboxStore) Append(doc infraoutbox.EventDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, &storedDoc{doc: doc})
}

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, item := range s.items {
		if item.sent || item.claimed {
			continue
		}
		if !item.retryAt.IsZero() && now.Before(item.retryAt) {
			continue
		}
		item.claimed = true
		doc := item.doc
		doc.Attempts = item.doc.Attempts
		return &doc, nil
	}
	return nil, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.doc.ID == id {
			item.sent = true
			item.claimed = false
		}
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.doc.ID == id {
			item.claimed = false
			item.retryAt = retryAt
			item.doc.Attempts++
		}
	}
	return nil
}

var _ infraoutbox.Store = (*OutboxStore)(nil)
