package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dom/coinshelf/internal/domain"
)

const (
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

	yahooGold   = "GC=F"
	yahooSilver = "SI=F"
	yahooUSDZAR = "USDZAR=X"
)

// YahooSource reads futures and FX quotes from the Yahoo Finance chart API.
// All three quotes are required.
type YahooSource struct {
	client  *http.Client
	baseURL string
}

func NewYahooSource(client *http.Client, baseURL string) *YahooSource {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooSource{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *YahooSource) Name() string { return "Yahoo Finance" }

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

func (s *YahooSource) quote(ctx context.Context, symbol string) (float64, error) {
	var chart yahooChart
	if err := getJSON(ctx, s.client, s.baseURL+"/"+url.PathEscape(symbol), &chart); err != nil {
		return 0, err
	}
	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("%s: no chart result", symbol)
	}
	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("%s: no market price", symbol)
	}
	return price, nil
}

func (s *YahooSource) Fetch(ctx context.Context) (*domain.MetalPrices, error) {
	gold, err := s.quote(ctx, yahooGold)
	if err != nil {
		return nil, err
	}
	silver, err := s.quote(ctx, yahooSilver)
	if err != nil {
		return nil, err
	}
	usdZAR, err := s.quote(ctx, yahooUSDZAR)
	if err != nil {
		return nil, err
	}
	return withZAR(gold, silver, usdZAR), nil
}
