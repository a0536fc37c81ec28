package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dom/coinshelf/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *passwordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *passwordResetRepository) Redeem(ctx context.Context, token string, now time.Time, passwordHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset domain.PasswordResetToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reset, "token = ?", token).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrInvalidResetToken
			}
			return err
		}
		if !reset.Usable(now) {
			return domain.ErrInvalidResetToken
		}

		if err := updatePassword(tx, reset.UserID, passwordHash); err != nil {
			return err
		}
		return tx.Model(&reset).Update("used", true).Error
	})
}
