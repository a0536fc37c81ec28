package service

import (
	"context"
	"time"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/repository"
	"github.com/google/uuid"
)

type PublicLinkService struct {
	linkRepo repository.PublicLinkRepository
	itemRepo repository.ItemRepository
}

func NewPublicLinkService(linkRepo repository.PublicLinkRepository, itemRepo repository.ItemRepository) *PublicLinkService {
	return &PublicLinkService{linkRepo: linkRepo, itemRepo: itemRepo}
}

// Create issues a new public id for the user's collection. Any previous id
// stops working.
func (s *PublicLinkService) Create(ctx context.Context, userID uuid.UUID) (*domain.PublicCollectionLink, error) {
	link := &domain.PublicCollectionLink{
		ID:        uuid.New(),
		UserID:    userID,
		PublicID:  uuid.NewString(),
		CreatedAt: time.Now(),
	}
	if err := s.linkRepo.Upsert(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *PublicLinkService) Get(ctx context.Context, userID uuid.UUID) (*domain.PublicCollectionLink, error) {
	return s.linkRepo.GetByUserID(ctx, userID)
}

func (s *PublicLinkService) Revoke(ctx context.Context, userID uuid.UUID) error {
	return s.linkRepo.DeleteByUserID(ctx, userID)
}

type PublicOwner struct {
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

type PublicCollection struct {
	Owner      PublicOwner    `json:"owner"`
	ShowValues bool           `json:"show_values"`
	Items      []*domain.Item `json:"items"`
}

// View returns the collection behind publicID with the owner's visibility
// settings applied.
func (s *PublicLinkService) View(ctx context.Context, publicID string) (*PublicCollection, error) {
	link, err := s.linkRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	owner := link.User
	if owner == nil {
		return nil, domain.ErrLinkNotFound
	}

	items, err := s.itemRepo.ListByUser(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if !owner.ShowValues {
		for _, item := range items {
			item.Value = nil
		}
	}

	view := &PublicCollection{
		Owner:      PublicOwner{DisplayName: owner.PublicName()},
		ShowValues: owner.ShowValues,
		Items:      items,
	}
	if owner.Username != nil {
		view.Owner.Username = *owner.Username
	}
	if owner.ShowEmail {
		view.Owner.Email = owner.Email
	}
	return view, nil
}
