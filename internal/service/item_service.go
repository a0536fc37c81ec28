package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/logger"
	"github.com/dom/coinshelf/internal/repository"
	"github.com/dom/coinshelf/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ItemService struct {
	itemRepo repository.ItemRepository
	prices   *PriceService
	images   ImageUploader
}

func NewItemService(itemRepo repository.ItemRepository, prices *PriceService, images ImageUploader) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		prices:   prices,
		images:   images,
	}
}

// ItemInput is the client supplied part of an item. Region and historical
// flag are always derived and cannot be set.
type ItemInput struct {
	Category      string
	Country       string
	Year          *int
	Denomination  string
	Value         *float64
	Quantity      *int
	Notes         string
	ReferenceURL  string
	ImageURL      string
	WeightGrams   *float64
	PurityPercent *float64
}

// buildItem validates input and returns a classified item owned by userID.
func buildItem(userID uuid.UUID, input ItemInput) (*domain.Item, error) {
	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	details, err := domain.NewItemDetails(category, sanitizeText(input.Denomination), input.WeightGrams, input.PurityPercent)
	if err != nil {
		return nil, err
	}

	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if input.Value != nil && *input.Value < 0 {
		return nil, domain.Invalidf("value must not be negative")
	}
	year := input.Year
	if year != nil && *year == 0 {
		year = nil
	}

	item := &domain.Item{
		UserID:       userID,
		Country:      sanitizeText(input.Country),
		Year:         year,
		Value:        input.Value,
		Quantity:     quantity,
		Notes:        sanitizeText(input.Notes),
		ReferenceURL: strings.TrimSpace(input.ReferenceURL),
		ImageURL:     strings.TrimSpace(input.ImageURL),
		Details:      details,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.Classify()
	return item, nil
}

func (s *ItemService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Item, error) {
	return s.itemRepo.ListByUser(ctx, userID)
}

func (s *ItemService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Item, error) {
	return s.itemRepo.GetByID(ctx, userID, id)
}

func (s *ItemService) Create(ctx context.Context, userID uuid.UUID, input ItemInput) (*domain.Item, error) {
	item, err := buildItem(userID, input)
	if err != nil {
		return nil, err
	}
	item.ID = uuid.New()
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// ItemPatch is a partial update. Nil fields keep the stored value.
type ItemPatch struct {
	Category      *string
	Country       *string
	Year          *int
	Denomination  *string
	Value         *float64
	Quantity      *int
	Notes         *string
	ReferenceURL  *string
	ImageURL      *string
	WeightGrams   *float64
	PurityPercent *float64
}

// inputFromItem returns the input that would rebuild item unchanged.
func inputFromItem(item *domain.Item) ItemInput {
	quantity := item.Quantity
	input := ItemInput{
		Category:     string(item.Category()),
		Country:      item.Country,
		Year:         item.Year,
		Denomination: item.Denomination(),
		Value:        item.Value,
		Quantity:     &quantity,
		Notes:        item.Notes,
		ReferenceURL: item.ReferenceURL,
		ImageURL:     item.ImageURL,
	}
	if b, ok := item.Bullion(); ok {
		weight, purity := b.WeightGrams, b.PurityPercent
		input.WeightGrams = &weight
		input.PurityPercent = &purity
	}
	return input
}

func (p ItemPatch) apply(input ItemInput) ItemInput {
	if p.Category != nil {
		input.Category = *p.Category
	}
	if p.Country != nil {
		input.Country = *p.Country
	}
	if p.Year != nil {
		input.Year = p.Year
	}
	if p.Denomination != nil {
		input.Denomination = *p.Denomination
	}
	if p.Value != nil {
		input.Value = p.Value
	}
	if p.Quantity != nil {
		input.Quantity = p.Quantity
	}
	if p.Notes != nil {
		input.Notes = *p.Notes
	}
	if p.ReferenceURL != nil {
		input.ReferenceURL = *p.ReferenceURL
	}
	if p.ImageURL != nil {
		input.ImageURL = *p.ImageURL
	}
	if p.WeightGrams != nil {
		input.WeightGrams = p.WeightGrams
	}
	if p.PurityPercent != nil {
		input.PurityPercent = p.PurityPercent
	}
	return input
}

// Update applies patch over the stored item and reclassifies it.
func (s *ItemService) Update(ctx context.Context, userID, id uuid.UUID, patch ItemPatch) (*domain.Item, error) {
	existing, err := s.itemRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	item, err := buildItem(userID, patch.apply(inputFromItem(existing)))
	if err != nil {
		return nil, err
	}
	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.itemRepo.Delete(ctx, userID, id)
}

type BulkError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type BulkResult struct {
	Added  int            `json:"added"`
	Items  []*domain.Item `json:"-"`
	Errors []BulkError    `json:"errors"`
}

// BulkUpload validates every entry and inserts the valid ones. Entries
// without a category are coins and entries without an image get the
// placeholder.
func (s *ItemService) BulkUpload(ctx context.Context, userID uuid.UUID, inputs []ItemInput) (*BulkResult, error) {
	result := &BulkResult{Errors: []BulkError{}}
	var valid []*domain.Item
	for i, input := range inputs {
		item, err := buildItem(userID, input)
		if err != nil {
			result.Errors = append(result.Errors, BulkError{Index: i, Message: bulkMessage(err)})
			continue
		}
		item.ID = uuid.New()
		if domain.IsPlaceholderImage(item.ImageURL) {
			item.ImageURL = domain.PlaceholderImage
		}
		valid = append(valid, item)
	}

	if err := s.itemRepo.CreateMany(ctx, valid); err != nil {
		return nil, fmt.Errorf("bulk insert: %w", err)
	}
	result.Added = len(valid)
	result.Items = valid

	logger.Log.Info("bulk upload",
		zap.String("user_id", userID.String()),
		zap.Int("added", result.Added),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

func bulkMessage(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
}

func (s *ItemService) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.itemRepo.DeleteAllByUser(ctx, userID)
}

func (s *ItemService) Duplicates(ctx context.Context, userID uuid.UUID) ([]domain.DuplicateGroup, error) {
	items, err := s.itemRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	values := make([]domain.Item, len(items))
	for i, item := range items {
		values[i] = *item
	}
	return domain.FindDuplicates(values), nil
}

// Merge folds the listed items into the first one. Repeated ids are
// collapsed; at least two distinct ids owned by userID are required.
func (s *ItemService) Merge(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*domain.Item, error) {
	distinct := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	if len(distinct) < 2 {
		return nil, domain.Invalidf("at least two distinct items are required to merge")
	}

	items, err := s.itemRepo.GetByIDs(ctx, userID, distinct)
	if err != nil {
		return nil, err
	}
	values := make([]domain.Item, len(items))
	for i, item := range items {
		values[i] = *item
	}

	merged, removed := domain.MergeItems(values)
	if err := s.itemRepo.ApplyMerge(ctx, &merged, removed); err != nil {
		// Ownership was checked above, so a row missing now is an internal failure.
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, fmt.Errorf("merge items: %v", err)
		}
		return nil, fmt.Errorf("merge items: %w", err)
	}

	logger.Log.Info("items merged",
		zap.String("user_id", userID.String()),
		zap.String("base_id", merged.ID.String()),
		zap.Int("removed", len(removed)),
	)
	return &merged, nil
}

// RequestImageUpload presigns an upload for the item's image and points the
// item at the object's public URL.
func (s *ItemService) RequestImageUpload(ctx context.Context, userID, itemID uuid.UUID, contentType string) (*storage.Upload, *domain.Item, error) {
	if s.images == nil {
		return nil, nil, domain.ErrStorageUnavailable
	}
	item, err := s.itemRepo.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, nil, err
	}

	upload, err := s.images.PresignImageUpload(ctx, userID, itemID, contentType)
	if err != nil {
		return nil, nil, err
	}

	item.ImageURL = upload.PublicURL
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, nil, err
	}
	return upload, item, nil
}
