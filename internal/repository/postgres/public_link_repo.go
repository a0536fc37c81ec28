package postgres

import (
	"context"
	"errors"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type publicLinkRepository struct {
	db *gorm.DB
}

func NewPublicLinkRepository(db *gorm.DB) *publicLinkRepository {
	return &publicLinkRepository{db: db}
}

func (r *publicLinkRepository) Upsert(ctx context.Context, link *domain.PublicCollectionLink) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"public_id", "created_at"}),
		}).
		Create(link).Error
	if err != nil {
		return err
	}
	stored, err := r.GetByUserID(ctx, link.UserID)
	if err != nil {
		return err
	}
	*link = *stored
	return nil
}

func (r *publicLinkRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.PublicCollectionLink, error) {
	var link domain.PublicCollectionLink
	err := r.db.WithContext(ctx).First(&link, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *publicLinkRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.PublicCollectionLink, error) {
	var link domain.PublicCollectionLink
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&link, "public_id = ?", publicID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *publicLinkRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.PublicCollectionLink{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}
