package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Username     *string   `json:"username" gorm:"uniqueIndex"`
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio"`
	// ShowEmail and ShowValues control what the public collection view exposes.
	ShowEmail  bool      `json:"show_email" gorm:"not null"`
	ShowValues bool      `json:"show_values" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PublicName returns the name shown on a shared collection.
func (u *User) PublicName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return ""
}
