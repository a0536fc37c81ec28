package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// itemRow is the flattened storage form of domain.Item.
type itemRow struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null"`
	Category      string    `gorm:"not null"`
	Country       string    `gorm:"not null"`
	Year          *int
	Denomination  string
	Value         *float64 `gorm:"type:numeric(12,2)"`
	Quantity      int      `gorm:"not null;default:1;check:chk_items_quantity,quantity >= 1"`
	Notes         string
	ReferenceURL  string
	ImageURL      string
	Region        string `gorm:"index"`
	IsHistorical  bool   `gorm:"not null"`
	WeightGrams   *float64
	PurityPercent *float64 `gorm:"check:chk_items_purity,purity_percent >= 0 AND purity_percent <= 100"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User *domain.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (itemRow) TableName() string { return "items" }

func toItemRow(item *domain.Item) *itemRow {
	row := &itemRow{
		ID:           item.ID,
		UserID:       item.UserID,
		Category:     string(item.Category()),
		Country:      item.Country,
		Year:         item.Year,
		Denomination: item.Denomination(),
		Value:        item.Value,
		Quantity:     item.Quantity,
		Notes:        item.Notes,
		ReferenceURL: item.ReferenceURL,
		ImageURL:     item.ImageURL,
		Region:       item.Region,
		IsHistorical: item.IsHistorical,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
	if b, ok := item.Bullion(); ok {
		weight, purity := b.WeightGrams, b.PurityPercent
		row.WeightGrams = &weight
		row.PurityPercent = &purity
	}
	return row
}

func (row *itemRow) toDomain() (*domain.Item, error) {
	details, err := domain.NewItemDetails(domain.Category(row.Category), row.Denomination, row.WeightGrams, row.PurityPercent)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", row.ID, err)
	}
	return &domain.Item{
		ID:           row.ID,
		UserID:       row.UserID,
		Country:      row.Country,
		Year:         row.Year,
		Value:        row.Value,
		Quantity:     row.Quantity,
		Notes:        row.Notes,
		ReferenceURL: row.ReferenceURL,
		ImageURL:     row.ImageURL,
		Region:       row.Region,
		IsHistorical: row.IsHistorical,
		Details:      details,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func rowsToDomain(rows []itemRow) ([]*domain.Item, error) {
	items := make([]*domain.Item, 0, len(rows))
	for i := range rows {
		item, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *itemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	row := toItemRow(item)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	item.ID, item.CreatedAt, item.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *itemRepository) CreateMany(ctx context.Context, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]*itemRow, len(items))
	for i, item := range items {
		rows[i] = toItemRow(item)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return err
	}
	for i, row := range rows {
		items[i].ID, items[i].CreatedAt, items[i].UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	}
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Item, error) {
	var row itemRow
	err := r.db.WithContext(ctx).First(&row, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return row.toDomain()
}

// GetByIDs returns the caller's items in the order of ids. Any id that is
// missing or owned by someone else yields ErrItemNotFound.
func (r *itemRepository) GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Item, error) {
	var rows []itemRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*itemRow, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
		}
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *itemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Item, error) {
	var rows []itemRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rowsToDomain(rows)
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	return updateItem(r.db.WithContext(ctx), item)
}

func updateItem(tx *gorm.DB, item *domain.Item) error {
	row := toItemRow(item)
	result := tx.Model(row).
		Where("user_id = ?", row.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	item.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return deleteItem(r.db.WithContext(ctx), userID, id)
}

func deleteItem(tx *gorm.DB, userID, id uuid.UUID) error {
	result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&itemRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *itemRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&itemRow{})
	return result.RowsAffected, result.Error
}

func (r *itemRepository) ApplyMerge(ctx context.Context, base *domain.Item, removed []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateItem(tx, base); err != nil {
			return fmt.Errorf("update merged item: %w", err)
		}
		for _, id := range removed {
			if err := deleteItem(tx, base.UserID, id); err != nil {
				return fmt.Errorf("delete merged item %s: %w", id, err)
			}
		}
		return nil
	})
}
