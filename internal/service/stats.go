package service

import (
	"context"
	"math"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/google/uuid"
)

type BullionStats struct {
	GoldFineGrams   float64 `json:"gold_fine_grams"`
	SilverFineGrams float64 `json:"silver_fine_grams"`
	GoldMeltUSD     float64 `json:"gold_melt_usd"`
	SilverMeltUSD   float64 `json:"silver_melt_usd"`
	GoldMeltZAR     float64 `json:"gold_melt_zar"`
	SilverMeltZAR   float64 `json:"silver_melt_zar"`
	PriceSource     string  `json:"price_source,omitempty"`
}

// CollectionStats summarises a collection. Counts are by quantity, not by
// record.
type CollectionStats struct {
	Records         int                     `json:"records"`
	TotalQuantity   int                     `json:"total_quantity"`
	TotalValue      float64                 `json:"total_value"`
	HistoricalCount int                     `json:"historical_count"`
	ByRegion        map[string]int          `json:"by_region"`
	ByCountry       map[string]int          `json:"by_country"`
	ByCategory      map[domain.Category]int `json:"by_category"`
	Bullion         BullionStats            `json:"bullion"`
}

// ComputeStats aggregates items. prices is only consulted when the
// collection holds bullion and may be nil otherwise.
func ComputeStats(items []*domain.Item, prices func() domain.MetalPrices) *CollectionStats {
	stats := &CollectionStats{
		ByRegion:   map[string]int{},
		ByCountry:  map[string]int{},
		ByCategory: map[domain.Category]int{},
	}

	for _, item := range items {
		stats.Records++
		stats.TotalQuantity += item.Quantity
		if item.Value != nil {
			stats.TotalValue += *item.Value * float64(item.Quantity)
		}
		if item.IsHistorical {
			stats.HistoricalCount += item.Quantity
		}
		stats.ByRegion[item.Region] += item.Quantity
		if country := domain.MapCountry(item.Country); country != "" {
			stats.ByCountry[country] += item.Quantity
		}
		stats.ByCategory[item.Category()] += item.Quantity

		if b, ok := item.Bullion(); ok {
			fine := b.FineWeightGrams() * float64(item.Quantity)
			if b.Metal == domain.MetalSilver {
				stats.Bullion.SilverFineGrams += fine
			} else {
				stats.Bullion.GoldFineGrams += fine
			}
		}
	}

	if (stats.Bullion.GoldFineGrams > 0 || stats.Bullion.SilverFineGrams > 0) && prices != nil {
		p := prices()
		goldOz := stats.Bullion.GoldFineGrams / domain.TroyOunceGrams
		silverOz := stats.Bullion.SilverFineGrams / domain.TroyOunceGrams
		stats.Bullion.GoldMeltUSD = round2(goldOz * p.GoldUSDPerOz)
		stats.Bullion.SilverMeltUSD = round2(silverOz * p.SilverUSDPerOz)
		stats.Bullion.GoldMeltZAR = round2(goldOz * p.GoldZARPerOz)
		stats.Bullion.SilverMeltZAR = round2(silverOz * p.SilverZARPerOz)
		stats.Bullion.PriceSource = p.Source
	}

	stats.TotalValue = round2(stats.TotalValue)
	stats.Bullion.GoldFineGrams = round2(stats.Bullion.GoldFineGrams)
	stats.Bullion.SilverFineGrams = round2(stats.Bullion.SilverFineGrams)
	return stats
}

func (s *ItemService) Stats(ctx context.Context, userID uuid.UUID) (*CollectionStats, error) {
	items, err := s.itemRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var prices func() domain.MetalPrices
	if s.prices != nil {
		prices = func() domain.MetalPrices { return s.prices.GetMetalPrices(ctx) }
	}
	return ComputeStats(items, prices), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
