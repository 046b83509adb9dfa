package repository

import (
	"context"

	"github.com/marcus/code-playground/internal/domain"
)

type UserRepository interface {
	// Upsert returns the existing row for user.Email with its persisted id
	// and nickname, refreshing only the avatar and raw profile, or creates
	// the row if the email has never been seen. Safe under concurrent calls
	// for the same new email.
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateNickname(ctx context.Context, id string, nickname string) (*domain.User, error)
}

type AdmissionRepository interface {
	IsAdmitted(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, entry *domain.AdmittedEmail) error
	Remove(ctx context.Context, email string) error
	List(ctx context.Context) ([]*domain.AdmittedEmail, error)
	// SeedIfEmpty inserts the seed entry only when the table holds no rows,
	// as a single conditional statement so concurrent startups cannot
	// produce duplicate seeds.
	SeedIfEmpty(ctx context.Context, email string) error
}

type Repositories struct {
	User      UserRepository
	Admission AdmissionRepository
}
