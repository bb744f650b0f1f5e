package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainuser "innkeep/internal/domain/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainuser.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromUserModel(m), nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).First(&m, "email = ?", strings.ToLower(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainuser.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromUserModel(m), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&userModel{}).
		Where("email = ? AND id <> ?", u.Email, string(u.ID)).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return domainuser.ErrEmailAlreadyUsed
	}
	m, err := toUserModel(u)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

var _ domainuser.Repository = (*UserRepository)(nil)
