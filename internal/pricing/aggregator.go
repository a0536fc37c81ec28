package pricing

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/dom/coinshelf/internal/config"
	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/logger"
	"github.com/dom/coinshelf/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const DefaultSourceTimeout = 10 * time.Second

// Aggregator walks its sources in order and returns the first valid quote.
// The static source always ends the chain, so a quote is always returned.
type Aggregator struct {
	sources  []Source
	timeout  time.Duration
	attempts *prometheus.CounterVec
	now      func() time.Time
}

// NewAggregator builds the chain. attempts may be nil.
func NewAggregator(timeout time.Duration, attempts *prometheus.CounterVec, sources ...Source) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	chain := make([]Source, 0, len(sources)+1)
	chain = append(chain, sources...)
	chain = append(chain, StaticSource{})
	return &Aggregator{
		sources:  chain,
		timeout:  timeout,
		attempts: attempts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewDefaultAggregator wires the production providers from configuration.
func NewDefaultAggregator(cfg *config.Config, m *metrics.Metrics) *Aggregator {
	client := &http.Client{Timeout: cfg.PriceSourceTimeout}

	sources := []Source{NewYahooSource(client, "")}
	if cfg.AlphaVantageAPIKey != "" {
		sources = append(sources, NewReliableSource(client, "", cfg.AlphaVantageAPIKey))
	}
	sources = append(sources, NewCoinGeckoSource(client, "", cfg.DefaultUSDZARRate))

	var attempts *prometheus.CounterVec
	if m != nil {
		attempts = m.PriceFetches
	}
	return NewAggregator(cfg.PriceSourceTimeout, attempts, sources...)
}

func (a *Aggregator) GetMetalPrices(ctx context.Context) domain.MetalPrices {
	var log []domain.SourceAttempt
	for _, src := range a.sources {
		start := time.Now()
		prices, outcome, err := a.attempt(ctx, src)
		entry := domain.SourceAttempt{Source: src.Name(), Duration: time.Since(start).Round(time.Millisecond).String()}
		if a.attempts != nil {
			a.attempts.WithLabelValues(src.Name(), outcome).Inc()
		}
		if err != nil {
			entry.Error = err.Error()
			log = append(log, entry)
			logger.Log.Warn("price source failed",
				zap.String("source", src.Name()),
				zap.String("outcome", outcome),
				zap.Error(err),
			)
			continue
		}
		log = append(log, entry)

		result := *prices
		result.GoldUSDPerOz = round2(result.GoldUSDPerOz)
		result.SilverUSDPerOz = round2(result.SilverUSDPerOz)
		result.GoldZARPerOz = round2(result.GoldZARPerOz)
		result.SilverZARPerOz = round2(result.SilverZARPerOz)
		result.Source = src.Name()
		if result.Timestamp.IsZero() {
			result.Timestamp = a.now()
		}
		result.Attempts = log
		return result
	}

	// Unreachable while StaticSource ends the chain.
	p, _ := StaticSource{}.Fetch(ctx)
	p.Source = domain.PriceSourceFallback
	p.Timestamp = a.now()
	p.Attempts = log
	return *p
}

// attempt runs one source under its own deadline. Panics and invalid quotes
// are reported as errors.
func (a *Aggregator) attempt(ctx context.Context, src Source) (prices *domain.MetalPrices, outcome string, err error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			prices, outcome, err = nil, metrics.OutcomePanic, fmt.Errorf("panic: %v", r)
		}
	}()

	prices, err = src.Fetch(ctx)
	if err != nil {
		return nil, metrics.OutcomeError, err
	}
	if !prices.Valid() {
		return nil, metrics.OutcomeInvalid, fmt.Errorf("gold and silver prices must be positive")
	}
	return prices, metrics.OutcomeSuccess, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
