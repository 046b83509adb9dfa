package service

import (
	"context"
	"strings"

	"github.com/marcus/code-playground/internal/domain"
	"github.com/marcus/code-playground/internal/repository"
)

// NormalizeEmail is applied to every email before it touches the admission
// list or the user directory, so membership checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type AdmissionService struct {
	repo repository.AdmissionRepository
}

func NewAdmissionService(repo repository.AdmissionRepository) *AdmissionService {
	return &AdmissionService{repo: repo}
}

func (s *AdmissionService) IsAdmitted(ctx context.Context, email string) (bool, error) {
	return s.repo.IsAdmitted(ctx, NormalizeEmail(email))
}

func (s *AdmissionService) Admit(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return domain.ErrEmptyEmail
	}
	return s.repo.Add(ctx, &domain.AdmittedEmail{Email: email})
}

// Revoke is idempotent; revoking an absent email succeeds.
func (s *AdmissionService) Revoke(ctx context.Context, email string) error {
	return s.repo.Remove(ctx, NormalizeEmail(email))
}

// List returns entries newest first.
func (s *AdmissionService) List(ctx context.Context) ([]*domain.AdmittedEmail, error) {
	return s.repo.List(ctx)
}

// Bootstrap guarantees the allow-list is never empty after startup by
// inserting the operator-designated seed when the table has no rows.
func (s *AdmissionService) Bootstrap(ctx context.Context, seedEmail string) error {
	seedEmail = NormalizeEmail(seedEmail)
	if seedEmail == "" {
		return domain.ErrEmptyEmail
	}
	return s.repo.SeedIfEmpty(ctx, seedEmail)
}
