package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User is the durable identity record. ID is the provider's stable account
// id and never changes after the first login. Nickname is initialized from
// the provider handle but is user-owned afterwards: later logins must not
// overwrite it.
type User struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Nickname  string         `json:"nickname" gorm:"not null"`
	AvatarURL string         `json:"avatarUrl"`
	Profile   datatypes.JSON `json:"-"` // raw provider profile, refreshed at login
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// AdmittedEmail is an allow-list entry. Email is the key; it is stored
// lowercased.
type AdmittedEmail struct {
	ID      uuid.UUID `json:"-" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email   string    `json:"email" gorm:"uniqueIndex;not null"`
	AddedAt time.Time `json:"addedAt"`
}

// Identity is the trusted view of a validated session credential. Its fields
// are a snapshot of the User at issuance time, not a live read.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
}
