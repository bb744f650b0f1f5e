package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"innkeep/internal/app/middleware"
)

type idempotencyModel struct {
	Key        string `gorm:"primaryKey"`
	Payload    []byte
	Error      string
	OccurredAt time.Time `gorm:"index"`
}

func (idempotencyModel) TableName() string { return "idempotency_records" }

// IdempotencyStore keeps command results in Postgres so retried commands
// replay the stored outcome even across process restarts. Records older
// than TTL are ignored and eventually purged.
type IdempotencyStore struct {
	DB  *gorm.DB
	TTL time.Duration
}

func NewIdempotencyStore(db *gorm.DB, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{DB: db, TTL: ttl}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var m idempotencyModel
	err := s.DB.WithContext(ctx).First(&m, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	if s.TTL > 0 && time.Since(m.OccurredAt) > s.TTL {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return middleware.IdempotencyRecord{
		Key:        m.Key,
		Payload:    m.Payload,
		Error:      m.Error,
		OccurredAt: m.OccurredAt,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	m := idempotencyModel{
		Key:        rec.Key,
		Payload:    rec.Payload,
		Error:      rec.Error,
		OccurredAt: rec.OccurredAt,
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&m).Error
}

// Purge drops expired records; the worker loop calls it periodically.
func (s *IdempotencyStore) Purge(ctx context.Context) error {
	if s.TTL <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-s.TTL)
	return s.DB.WithContext(ctx).
		Where("occurred_at < ?", cutoff).
		Delete(&idempotencyModel{}).Error
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
