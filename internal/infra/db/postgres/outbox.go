package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	appoutbox "innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	infraoutbox "innkeep/internal/infra/outbox"
)

const (
	outboxPending = "PENDING"
	outboxSent    = "SENT"
)

// Outbox persists event records into the outbox_events table. When the
// context carries an open unit of work the insert joins its transaction,
// so events commit or roll back together with the state change that
// produced them.
type Outbox struct {
	DB *gorm.DB
}

func NewOutbox(db *gorm.DB) *Outbox {
	return &Outbox{DB: db}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	headers, err := json.Marshal(record.Headers)
	if err != nil {
		return err
	}
	m := outboxModel{
		ID:         record.ID,
		Name:       record.Name,
		Payload:    datatypes.JSON(record.Payload),
		Headers:    datatypes.JSON(headers),
		Aggregate:  record.Aggregate,
		OccurredAt: record.OccurredAt,
		Status:     outboxPending,
	}
	return o.handle(ctx).Create(&m).Error
}

// Flush is a no-op: rows land during Add and commit with the surrounding
// transaction. The interface exists for buffering implementations.
func (o *Outbox) Flush(ctx context.Context) error { return nil }

func (o *Outbox) handle(ctx context.Context) *gorm.DB {
	if unit, ok := uow.FromContext(ctx); ok {
		if pg, ok := unit.(*Unit); ok {
			return pg.Tx().WithContext(ctx)
		}
	}
	return o.DB.WithContext(ctx)
}

var _ appoutbox.Outbox = (*Outbox)(nil)

// OutboxStore serves the publisher worker over the same table. Claim uses
// a row-locking update so concurrent workers never pick the same event.
type OutboxStore struct {
	DB *gorm.DB
}

func NewOutboxStore(db *gorm.DB) *OutboxStore {
	return &OutboxStore{DB: db}
}

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	var m outboxModel
	now := time.Now().UTC()
	err := s.DB.WithContext(ctx).Raw(
		`UPDATE outbox_events SET claimed_by = ?, updated_at = ?
		 WHERE id = (
			SELECT id FROM outbox_events
			WHERE status = ? AND (retry_at IS NULL OR retry_at <= ?)
			ORDER BY occurred_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		workerID, now, outboxPending, now,
	).Scan(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || m.ID == "" {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var headers map[string]string
	_ = json.Unmarshal(m.Headers, &headers)
	return &infraoutbox.EventDocument{
		ID:         m.ID,
		Name:       m.Name,
		Payload:    []byte(m.Payload),
		OccurredAt: m.OccurredAt,
		Aggregate:  m.Aggregate,
		Headers:    headers,
		Attempts:   m.Attempts,
	}, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     outboxSent,
			"claimed_by": "",
		}).Error
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	return s.DB.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"claimed_by": "",
			"retry_at":   retryAt,
			"last_error": reason,
			"attempts":   gorm.Expr("attempts + 1"),
		}).Error
}

var _ infraoutbox.Store = (*OutboxStore)(nil)
