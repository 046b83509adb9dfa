package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marcus/code-playground/internal/config"
	"github.com/marcus/code-playground/internal/domain"
	"github.com/marcus/code-playground/internal/oauth"
	"github.com/marcus/code-playground/internal/repository"
	"gorm.io/datatypes"
)

var ErrInvalidToken = errors.New("invalid token")

// AdmissionDeniedError names the email that failed the allow-list check so
// the callback page can show it.
type AdmissionDeniedError struct {
	Email string
}

func (e *AdmissionDeniedError) Error() string {
	return fmt.Sprintf("email %s is not admitted", e.Email)
}

func (e *AdmissionDeniedError) Unwrap() error {
	return domain.ErrNotAdmitted
}

// IdentityExchanger resolves an authorization code into a provider-verified
// identity.
type IdentityExchanger interface {
	AuthCodeURL() (string, error)
	Exchange(ctx context.Context, code string) (*oauth.Identity, error)
}

type AuthService struct {
	exchanger     IdentityExchanger
	userRepo      repository.UserRepository
	admissionRepo repository.AdmissionRepository
	cfg           *config.Config
}

func NewAuthService(exchanger IdentityExchanger, userRepo repository.UserRepository, admissionRepo repository.AdmissionRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		exchanger:     exchanger,
		userRepo:      userRepo,
		admissionRepo: admissionRepo,
		cfg:           cfg,
	}
}

// LoginURL returns the provider consent URL the popup should navigate to.
func (s *AuthService) LoginURL() (string, error) {
	return s.exchanger.AuthCodeURL()
}

// LoginWithCode runs the full login: resolve the code into a verified
// identity, check admission, upsert the user and mint a session token.
// Denied emails come back as *AdmissionDeniedError; provider failures keep
// their oauth error type.
func (s *AuthService) LoginWithCode(ctx context.Context, code string) (*domain.User, string, error) {
	identity, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, "", err
	}

	email := NormalizeEmail(identity.Email)

	admitted, err := s.admissionRepo.IsAdmitted(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if !admitted {
		return nil, "", &AdmissionDeniedError{Email: email}
	}

	user, err := s.userRepo.Upsert(ctx, &domain.User{
		ID:        identity.ProviderID,
		Email:     email,
		Nickname:  identity.Handle,
		AvatarURL: identity.AvatarURL,
		Profile:   datatypes.JSON(identity.Raw),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// SessionClaims snapshot the user at issuance time. They are not refreshed
// until the next login.
type SessionClaims struct {
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
	jwt.RegisteredClaims
}

func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email:     user.Email,
		Nickname:  user.Nickname,
		AvatarURL: user.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.SessionTTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken checks signature and expiry only; it never re-queries the
// user store.
func (s *AuthService) ValidateToken(tokenString string) (*domain.Identity, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &domain.Identity{
		ID:        claims.Subject,
		Email:     claims.Email,
		Nickname:  claims.Nickname,
		AvatarURL: claims.AvatarURL,
	}, nil
}

func (s *AuthService) SessionTTL() time.Duration {
	return time.Duration(s.cfg.SessionTTLHours) * time.Hour
}
