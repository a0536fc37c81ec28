package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dom/coinshelf/internal/domain"
)

const DefaultAlphaVantageBaseURL = "https://www.alphavantage.co/query"

// ReliableSource uses the Alpha Vantage exchange rate endpoint, which quotes
// XAU and XAG as currencies. It needs an API key.
type ReliableSource struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewReliableSource(client *http.Client, baseURL, apiKey string) *ReliableSource {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageBaseURL
	}
	return &ReliableSource{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

func (s *ReliableSource) Name() string { return "reliable_apis" }

type alphaVantageRate struct {
	Rate struct {
		ExchangeRate string `json:"5. Exchange Rate"`
	} `json:"Realtime Currency Exchange Rate"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

func (s *ReliableSource) rate(ctx context.Context, from, to string) (float64, error) {
	q := url.Values{}
	q.Set("function", "CURRENCY_EXCHANGE_RATE")
	q.Set("from_currency", from)
	q.Set("to_currency", to)
	q.Set("apikey", s.apiKey)

	var resp alphaVantageRate
	if err := getJSON(ctx, s.client, s.baseURL+"?"+q.Encode(), &resp); err != nil {
		return 0, err
	}
	if resp.ErrorMessage != "" {
		return 0, fmt.Errorf("%s/%s: %s", from, to, resp.ErrorMessage)
	}
	if resp.Rate.ExchangeRate == "" {
		// Rate limited responses carry only a Note.
		return 0, fmt.Errorf("%s/%s: no exchange rate (%s)", from, to, resp.Note)
	}
	rate, err := strconv.ParseFloat(resp.Rate.ExchangeRate, 64)
	if err != nil {
		return 0, fmt.Errorf("%s/%s: %w", from, to, err)
	}
	return rate, nil
}

func (s *ReliableSource) Fetch(ctx context.Context) (*domain.MetalPrices, error) {
	gold, err := s.rate(ctx, "XAU", "USD")
	if err != nil {
		return nil, err
	}
	silver, err := s.rate(ctx, "XAG", "USD")
	if err != nil {
		return nil, err
	}
	usdZAR, err := s.rate(ctx, "USD", "ZAR")
	if err != nil {
		return nil, err
	}
	return withZAR(gold, silver, usdZAR), nil
}
