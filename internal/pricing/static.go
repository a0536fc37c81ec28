package pricing

import (
	"context"

	"github.com/dom/coinshelf/internal/domain"
)

// Static prices served when every live source fails.
const (
	FallbackGoldUSD   = 2300.00
	FallbackSilverUSD = 29.50
	FallbackGoldZAR   = 42550.00
	FallbackSilverZAR = 545.75

	fallbackNote = "Using fallback prices - all APIs unavailable"
)

type StaticSource struct{}

func (StaticSource) Name() string { return domain.PriceSourceFallback }

func (StaticSource) Fetch(context.Context) (*domain.MetalPrices, error) {
	return &domain.MetalPrices{
		GoldUSDPerOz:   FallbackGoldUSD,
		SilverUSDPerOz: FallbackSilverUSD,
		GoldZARPerOz:   FallbackGoldZAR,
		SilverZARPerOz: FallbackSilverZAR,
		Note:           fallbackNote,
	}, nil
}
