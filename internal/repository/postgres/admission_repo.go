package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/code-playground/internal/domain"
	"gorm.io/gorm"
)

type admissionRepository struct {
	db *gorm.DB
}

func NewAdmissionRepository(db *gorm.DB) *admissionRepository {
	return &admissionRepository{db: db}
}

func (r *admissionRepository) IsAdmitted(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.AdmittedEmail{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *admissionRepository) Add(ctx context.Context, entry *domain.AdmittedEmail) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now()
	}
	err := r.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyAdmitted
	}
	return err
}

func (r *admissionRepository) Remove(ctx context.Context, email string) error {
	// Removing an absent email is not an error.
	return r.db.WithContext(ctx).Delete(&domain.AdmittedEmail{}, "email = ?", email).Error
}

func (r *admissionRepository) List(ctx context.Context) ([]*domain.AdmittedEmail, error) {
	var entries []*domain.AdmittedEmail
	err := r.db.WithContext(ctx).Order("added_at DESC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *admissionRepository) SeedIfEmpty(ctx context.Context, email string) error {
	// Single conditional insert: the emptiness check and the write happen in
	// one statement. If two startups still race past it, both insert the
	// same seed email and the unique index collapses the loser.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO admitted_emails (id, email, added_at)
		 SELECT ?, ?, ? WHERE NOT EXISTS (SELECT 1 FROM admitted_emails)`,
		uuid.New(), email, time.Now(),
	)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil
		}
		return result.Error
	}
	return nil
}
