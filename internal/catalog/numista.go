// Package catalog looks up coin and banknote types in the Numista catalogue.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dom/coinshelf/internal/domain"
)

const DefaultBaseURL = "https://api.numista.com/v3"

const maxResults = 50

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type Issuer struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Result struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Category         string  `json:"category"`
	Issuer           Issuer  `json:"issuer"`
	MinYear          int     `json:"min_year,omitempty"`
	MaxYear          int     `json:"max_year,omitempty"`
	ObverseThumbnail string  `json:"obverse_thumbnail,omitempty"`
	ReverseThumbnail string  `json:"reverse_thumbnail,omitempty"`
	URL              string  `json:"url"`
	Score            float64 `json:"score"`
}

type searchResponse struct {
	Count int      `json:"count"`
	Types []Result `json:"types"`
}

// Search queries the catalogue and returns matches ranked by relevance to q.
// category is an item category and may be empty.
func (c *Client) Search(ctx context.Context, q string, category domain.Category) ([]Result, error) {
	if !c.Enabled() {
		return nil, domain.ErrCatalogUnavailable
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domain.Invalidf("query is required")
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("lang", "en")
	params.Set("count", fmt.Sprint(maxResults))
	if cat := numistaCategory(category); cat != "" {
		params.Set("category", cat)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/types?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Numista-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrCatalogUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrCatalogUpstream, err)
	}

	for i := range out.Types {
		out.Types[i].URL = fmt.Sprintf("https://en.numista.com/catalogue/pieces%d.html", out.Types[i].ID)
	}
	return Rank(q, out.Types), nil
}

func numistaCategory(c domain.Category) string {
	switch c {
	case domain.CategoryBanknote:
		return "banknote"
	case domain.CategoryCoin, domain.CategoryBullionGold, domain.CategoryBullionSilver:
		return "coin"
	}
	return ""
}
