package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/code-playground/internal/domain"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	id        string
	email     string
	nickname  string
	avatarURL string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		id:        fmt.Sprintf("gh-%s", suffix),
		email:     fmt.Sprintf("user_%s@example.com", suffix),
		nickname:  fmt.Sprintf("testuser_%s", suffix),
		avatarURL: "https://avatars.test/default.png",
	}
}

func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.id = id
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithNickname(nickname string) *UserBuilder {
	b.nickname = nickname
	return b
}

// Build creates the user in the database
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:        b.id,
		Email:     strings.ToLower(b.email),
		Nickname:  b.nickname,
		AvatarURL: b.avatarURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// AdmitEmail inserts an allow-list row directly, lowercased the way the
// service layer writes them.
func AdmitEmail(t *testing.T, db *gorm.DB, email string) *domain.AdmittedEmail {
	t.Helper()

	entry := &domain.AdmittedEmail{
		ID:      uuid.New(),
		Email:   strings.ToLower(strings.TrimSpace(email)),
		AddedAt: time.Now(),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to admit email %s: %v", email, err)
	}
	return entry
}
