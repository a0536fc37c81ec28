package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TroyOunceGrams converts per-gram quotes to per-troy-ounce.
const TroyOunceGrams = 31.1035

const PriceSourceFallback = "fallback"

// MetalPrices is a quote for gold and silver in USD and ZAR per troy ounce.
type MetalPrices struct {
	GoldUSDPerOz   float64         `json:"gold_usd_per_oz"`
	SilverUSDPerOz float64         `json:"silver_usd_per_oz"`
	GoldZARPerOz   float64         `json:"gold_zar_per_oz"`
	SilverZARPerOz float64         `json:"silver_zar_per_oz"`
	Timestamp      time.Time       `json:"timestamp"`
	Source         string          `json:"source"`
	Note           string          `json:"note,omitempty"`
	Attempts       []SourceAttempt `json:"-"`
}

// Valid reports whether both metal prices are strictly positive.
func (p *MetalPrices) Valid() bool {
	return p != nil && p.GoldUSDPerOz > 0 && p.SilverUSDPerOz > 0
}

// SourceAttempt records the outcome of one price source during a lookup.
type SourceAttempt struct {
	Source   string `json:"source"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// PriceSnapshot is a persisted successful quote.
type PriceSnapshot struct {
	ID             uuid.UUID                           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GoldUSDPerOz   float64                             `json:"gold_usd_per_oz" gorm:"column:gold_usd_per_oz;not null"`
	SilverUSDPerOz float64                             `json:"silver_usd_per_oz" gorm:"column:silver_usd_per_oz;not null"`
	GoldZARPerOz   float64                             `json:"gold_zar_per_oz" gorm:"column:gold_zar_per_oz;not null"`
	SilverZARPerOz float64                             `json:"silver_zar_per_oz" gorm:"column:silver_zar_per_oz;not null"`
	Source         string                              `json:"source" gorm:"not null"`
	FetchedAt      time.Time                           `json:"fetched_at" gorm:"index;not null"`
	Attempts       datatypes.JSONType[[]SourceAttempt] `json:"attempts"`
}

func NewPriceSnapshot(p MetalPrices) *PriceSnapshot {
	return &PriceSnapshot{
		ID:             uuid.New(),
		GoldUSDPerOz:   p.GoldUSDPerOz,
		SilverUSDPerOz: p.SilverUSDPerOz,
		GoldZARPerOz:   p.GoldZARPerOz,
		SilverZARPerOz: p.SilverZARPerOz,
		Source:         p.Source,
		FetchedAt:      p.Timestamp,
		Attempts:       datatypes.NewJSONType(p.Attempts),
	}
}
