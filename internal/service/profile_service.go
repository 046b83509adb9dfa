package service

import (
	"context"
	"errors"
	"strings"

	"github.com/marcus/code-playground/internal/domain"
	"github.com/marcus/code-playground/internal/repository"
	"gorm.io/gorm"
)

type ProfileService struct {
	userRepo repository.UserRepository
}

func NewProfileService(userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

func (s *ProfileService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateNickname changes the user-owned display name. Sessions issued before
// the change keep the old nickname in their claims until re-issuance.
func (s *ProfileService) UpdateNickname(ctx context.Context, userID string, nickname string) (*domain.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, domain.ErrEmptyNickname
	}

	user, err := s.userRepo.UpdateNickname(ctx, userID, nickname)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
