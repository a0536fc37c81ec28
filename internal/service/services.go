package service

import (
	"context"

	"github.com/dom/coinshelf/internal/catalog"
	"github.com/dom/coinshelf/internal/config"
	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/mail"
	"github.com/dom/coinshelf/internal/repository"
	"github.com/dom/coinshelf/internal/storage"
	"github.com/google/uuid"
)

// MetalPriceSource returns a quote and never fails.
type MetalPriceSource interface {
	GetMetalPrices(ctx context.Context) domain.MetalPrices
}

type CatalogSearcher interface {
	Search(ctx context.Context, q string, category domain.Category) ([]catalog.Result, error)
}

type ImageUploader interface {
	PresignImageUpload(ctx context.Context, userID, itemID uuid.UUID, contentType string) (*storage.Upload, error)
}

// External bundles the collaborators that talk to third-party services.
type External struct {
	Mailer  mail.Mailer
	Prices  MetalPriceSource
	Catalog CatalogSearcher
	Images  ImageUploader
}

type Services struct {
	Auth       *AuthService
	Password   *PasswordService
	Item       *ItemService
	PublicLink *PublicLinkService
	Profile    *ProfileService
	Price      *PriceService
	Catalog    *CatalogService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, ext External) *Services {
	price := NewPriceService(ext.Prices, repos.PriceSnapshot)
	return &Services{
		Auth:       NewAuthService(repos.User, ext.Mailer, cfg),
		Password:   NewPasswordService(repos.User, repos.PasswordReset, ext.Mailer, cfg),
		Item:       NewItemService(repos.Item, price, ext.Images),
		PublicLink: NewPublicLinkService(repos.PublicLink, repos.Item),
		Profile:    NewProfileService(repos.User),
		Price:      price,
		Catalog:    NewCatalogService(ext.Catalog),
	}
}
