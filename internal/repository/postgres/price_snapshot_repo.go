package postgres

import (
	"context"

	"github.com/dom/coinshelf/internal/domain"
	"gorm.io/gorm"
)

type priceSnapshotRepository struct {
	db *gorm.DB
}

func NewPriceSnapshotRepository(db *gorm.DB) *priceSnapshotRepository {
	return &priceSnapshotRepository{db: db}
}

func (r *priceSnapshotRepository) Create(ctx context.Context, snapshot *domain.PriceSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// ListRecent returns the newest snapshots first.
func (r *priceSnapshotRepository) ListRecent(ctx context.Context, limit int) ([]*domain.PriceSnapshot, error) {
	var snapshots []*domain.PriceSnapshot
	err := r.db.WithContext(ctx).
		Order("fetched_at DESC").
		Limit(limit).
		Find(&snapshots).Error
	return snapshots, err
}
