package repository

import (
	"context"
	"time"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	CreateMany(ctx context.Context, items []*domain.Item) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Item, error)
	GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Item, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// ApplyMerge saves base and deletes removed in a single transaction.
	ApplyMerge(ctx context.Context, base *domain.Item, removed []uuid.UUID) error
}

type PublicLinkRepository interface {
	// Upsert creates the user's link or rotates its public id.
	Upsert(ctx context.Context, link *domain.PublicCollectionLink) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PublicCollectionLink, error)
	GetByPublicID(ctx context.Context, publicID string) (*domain.PublicCollectionLink, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type PasswordResetRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	// Redeem marks token used and stores the new password hash atomically.
	Redeem(ctx context.Context, token string, now time.Time, passwordHash string) error
}

type PriceSnapshotRepository interface {
	Create(ctx context.Context, snapshot *domain.PriceSnapshot) error
	ListRecent(ctx context.Context, limit int) ([]*domain.PriceSnapshot, error)
}

type Repositories struct {
	User          UserRepository
	Item          ItemRepository
	PublicLink    PublicLinkRepository
	PasswordReset PasswordResetRepository
	PriceSnapshot PriceSnapshotRepository
}
