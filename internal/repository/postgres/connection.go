package postgres

import (
	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table the repositories use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&itemRow{},
		&domain.PublicCollectionLink{},
		&domain.PasswordResetToken{},
		&domain.PriceSnapshot{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:          NewUserRepository(db),
		Item:          NewItemRepository(db),
		PublicLink:    NewPublicLinkRepository(db),
		PasswordReset: NewPasswordResetRepository(db),
		PriceSnapshot: NewPriceSnapshotRepository(db),
	}
}
