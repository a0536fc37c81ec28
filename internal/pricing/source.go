// Package pricing fetches live gold and silver quotes from a chain of
// providers and falls back to static prices when all of them fail.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dom/coinshelf/internal/domain"
)

// Source is one provider in the fallback chain.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*domain.MetalPrices, error)
}

const userAgent = "Mozilla/5.0 (compatible; CoinShelf/1.0; +https://mycoinshelf.com)"

// getJSON issues a GET request and decodes a 200 response body into out.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", url, err)
	}
	return nil
}

func withZAR(goldUSD, silverUSD, usdZAR float64) *domain.MetalPrices {
	return &domain.MetalPrices{
		GoldUSDPerOz:   goldUSD,
		SilverUSDPerOz: silverUSD,
		GoldZARPerOz:   goldUSD * usdZAR,
		SilverZARPerOz: silverUSD * usdZAR,
	}
}
