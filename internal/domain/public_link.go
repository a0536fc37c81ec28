package domain

import (
	"time"

	"github.com/google/uuid"
)

// PublicCollectionLink grants read-only access to one user's collection to
// anyone holding PublicID.
type PublicCollectionLink struct {
	ID        uuid.UUID `json:"-" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;uniqueIndex;not null"`
	PublicID  string    `json:"public_id" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
