package pricing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/logger"
	"go.uber.org/zap"
)

const DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoSource quotes gold and silver per gram. A failed ZAR lookup falls
// back to a fixed rate instead of failing the source.
type CoinGeckoSource struct {
	client     *http.Client
	baseURL    string
	defaultZAR float64
}

func NewCoinGeckoSource(client *http.Client, baseURL string, defaultZAR float64) *CoinGeckoSource {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoBaseURL
	}
	return &CoinGeckoSource{client: client, baseURL: strings.TrimRight(baseURL, "/"), defaultZAR: defaultZAR}
}

func (s *CoinGeckoSource) Name() string { return "CoinGecko" }

type simplePrice map[string]map[string]float64

func (s *CoinGeckoSource) zarRate(ctx context.Context) float64 {
	var prices simplePrice
	if err := getJSON(ctx, s.client, s.baseURL+"/simple/price?ids=usd-coin&vs_currencies=zar", &prices); err != nil {
		logger.Log.Warn("coingecko zar rate unavailable", zap.Error(err), zap.Float64("default", s.defaultZAR))
		return s.defaultZAR
	}
	if rate := prices["usd-coin"]["zar"]; rate > 0 {
		return rate
	}
	return s.defaultZAR
}

func (s *CoinGeckoSource) Fetch(ctx context.Context) (*domain.MetalPrices, error) {
	usdZAR := s.zarRate(ctx)

	var prices simplePrice
	if err := getJSON(ctx, s.client, s.baseURL+"/simple/price?ids=gold,silver&vs_currencies=usd", &prices); err != nil {
		return nil, err
	}
	goldPerGram := prices["gold"]["usd"]
	silverPerGram := prices["silver"]["usd"]
	if goldPerGram <= 0 || silverPerGram <= 0 {
		return nil, fmt.Errorf("coingecko returned zero prices")
	}

	return withZAR(goldPerGram*domain.TroyOunceGrams, silverPerGram*domain.TroyOunceGrams, usdZAR), nil
}
