package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/marcus/code-playground/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	existing, err := r.GetByEmail(ctx, user.Email)
	if err == nil {
		// Known email: refresh the provider-owned fields only. Nickname and
		// id stay exactly as persisted.
		updates := map[string]interface{}{
			"avatar_url": user.AvatarURL,
			"profile":    user.Profile,
			"updated_at": time.Now(),
		}
		if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return nil, err
		}
		existing.AvatarURL = user.AvatarURL
		existing.Profile = user.Profile
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(user)
	if result.Error != nil {
		// A concurrent first login for the same account can land on the
		// primary-key constraint instead of the email one; either way the
		// row exists now, so fall back to reading it.
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return r.GetByEmail(ctx, user.Email)
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return r.GetByEmail(ctx, user.Email)
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateNickname(ctx context.Context, id string, nickname string) (*domain.User, error) {
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"nickname":   nickname,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
