package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the kind of collectible an item is.
type Category string

const (
	CategoryCoin          Category = "coin"
	CategoryBanknote      Category = "banknote"
	CategoryBullionGold   Category = "bullion_gold"
	CategoryBullionSilver Category = "bullion_silver"
)

// AllCategories contains all valid categories in display order
var AllCategories = []Category{CategoryCoin, CategoryBanknote, CategoryBullionGold, CategoryBullionSilver}

// IsBullion reports whether the category carries weight and purity.
func (c Category) IsBullion() bool {
	return c == CategoryBullionGold || c == CategoryBullionSilver
}

// ParseCategory accepts the canonical names as well as the labels older
// clients send ("Coin", "Gold Bullion", "bullion-silver", ...).
func ParseCategory(s string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "", "coin", "coins":
		return CategoryCoin, nil
	case "banknote", "banknotes", "note":
		return CategoryBanknote, nil
	case "bullion_gold", "gold_bullion", "gold":
		return CategoryBullionGold, nil
	case "bullion_silver", "silver_bullion", "silver":
		return CategoryBullionSilver, nil
	}
	return "", Invalidf("unknown category %q", s)
}

type Metal string

const (
	MetalGold   Metal = "gold"
	MetalSilver Metal = "silver"
)

// ItemDetails is the category specific part of an item. It is implemented by
// NumismaticDetails and BullionDetails only.
type ItemDetails interface {
	Category() Category
	Denomination() string
	validate() error
}

// NumismaticDetails describes coins and banknotes.
type NumismaticDetails struct {
	Kind              Category
	DenominationLabel string
}

func (d NumismaticDetails) Category() Category   { return d.Kind }
func (d NumismaticDetails) Denomination() string { return d.DenominationLabel }

func (d NumismaticDetails) validate() error {
	if d.Kind != CategoryCoin && d.Kind != CategoryBanknote {
		return Invalidf("category %q is not numismatic", d.Kind)
	}
	if strings.TrimSpace(d.DenominationLabel) == "" {
		return Invalidf("denomination is required")
	}
	return nil
}

// BullionDetails describes gold and silver bullion. Bullion has no denomination.
type BullionDetails struct {
	Metal         Metal
	WeightGrams   float64
	PurityPercent float64
}

func (d BullionDetails) Category() Category {
	if d.Metal == MetalSilver {
		return CategoryBullionSilver
	}
	return CategoryBullionGold
}

func (d BullionDetails) Denomination() string { return "" }

// FineWeightGrams is the weight of pure metal in the piece.
func (d BullionDetails) FineWeightGrams() float64 {
	return d.WeightGrams * d.PurityPercent / 100
}

func (d BullionDetails) validate() error {
	if d.Metal != MetalGold && d.Metal != MetalSilver {
		return Invalidf("unknown metal %q", d.Metal)
	}
	if d.WeightGrams < 0 {
		return Invalidf("weight_grams must not be negative")
	}
	if d.PurityPercent < 0 || d.PurityPercent > 100 {
		return Invalidf("purity_percent must be between 0 and 100")
	}
	return nil
}

// NewItemDetails builds the variant matching category. Denomination is
// ignored for bullion and weight/purity are ignored for coins and banknotes.
func NewItemDetails(category Category, denomination string, weightGrams, purityPercent *float64) (ItemDetails, error) {
	var details ItemDetails
	switch category {
	case CategoryCoin, CategoryBanknote:
		details = NumismaticDetails{Kind: category, DenominationLabel: strings.TrimSpace(denomination)}
	case CategoryBullionGold, CategoryBullionSilver:
		metal := MetalGold
		if category == CategoryBullionSilver {
			metal = MetalSilver
		}
		b := BullionDetails{Metal: metal}
		if weightGrams != nil {
			b.WeightGrams = *weightGrams
		}
		if purityPercent != nil {
			b.PurityPercent = *purityPercent
		}
		details = b
	default:
		return nil, Invalidf("unknown category %q", category)
	}
	if err := details.validate(); err != nil {
		return nil, err
	}
	return details, nil
}

// PlaceholderImage is stored for items imported without an image.
const PlaceholderImage = "https://placehold.co/300x300/1f2937/d1d5db?text=No+Image"

// IsPlaceholderImage reports whether ref is empty or a generated placeholder.
func IsPlaceholderImage(ref string) bool {
	ref = strings.TrimSpace(ref)
	return ref == "" || strings.Contains(ref, "placehold.co")
}

type Item struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Country      string
	Year         *int
	Value        *float64
	Quantity     int
	Notes        string
	ReferenceURL string
	ImageURL     string
	Region       string
	IsHistorical bool
	Details      ItemDetails
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (i *Item) Category() Category {
	if i.Details == nil {
		return ""
	}
	return i.Details.Category()
}

func (i *Item) Denomination() string {
	if i.Details == nil {
		return ""
	}
	return i.Details.Denomination()
}

// Bullion returns the bullion payload when the item is bullion.
func (i *Item) Bullion() (BullionDetails, bool) {
	b, ok := i.Details.(BullionDetails)
	return b, ok
}

// Classify recomputes the derived region and historical flag from the
// item's country and year, overwriting whatever was there.
func (i *Item) Classify() {
	c := Classify(i.Country, i.Year)
	i.Region = c.Region
	i.IsHistorical = c.IsHistorical
}

// Validate checks the invariants every stored item must satisfy.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Country) == "" {
		return Invalidf("country is required")
	}
	if i.Quantity < 1 {
		return Invalidf("quantity must be at least 1")
	}
	if i.Details == nil {
		return Invalidf("category is required")
	}
	return i.Details.validate()
}
