package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Response types matching backend

type Item struct {
	ID            string   `json:"id"`
	Category      string   `json:"category"`
	Country       string   `json:"country"`
	Year          *int     `json:"year"`
	Denomination  string   `json:"denomination"`
	Value         *float64 `json:"value"`
	Quantity      int      `json:"quantity"`
	Notes         string   `json:"notes"`
	Region        string   `json:"region"`
	IsHistorical  bool     `json:"is_historical"`
	WeightGrams   *float64 `json:"weight_grams"`
	PurityPercent *float64 `json:"purity_percent"`
}

type BulkError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type BulkUploadResult struct {
	Added  int         `json:"added"`
	Errors []BulkError `json:"errors"`
}

type DuplicateGroup struct {
	Key struct {
		Country      string `json:"country"`
		Year         string `json:"year"`
		Denomination string `json:"denomination"`
	} `json:"key"`
	Count int    `json:"count"`
	Items []Item `json:"items"`
}

type MetalPrices struct {
	GoldUSDPerOz   float64   `json:"gold_usd_per_oz"`
	SilverUSDPerOz float64   `json:"silver_usd_per_oz"`
	GoldZARPerOz   float64   `json:"gold_zar_per_oz"`
	SilverZARPerOz float64   `json:"silver_zar_per_oz"`
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`
	Note           string    `json:"note"`
}

type Stats struct {
	Records         int            `json:"records"`
	TotalQuantity   int            `json:"total_quantity"`
	TotalValue      float64        `json:"total_value"`
	HistoricalCount int            `json:"historical_count"`
	ByRegion        map[string]int `json:"by_region"`
	ByCategory      map[string]int `json:"by_category"`
	Bullion         struct {
		GoldFineGrams   float64 `json:"gold_fine_grams"`
		SilverFineGrams float64 `json:"silver_fine_grams"`
		GoldMeltUSD     float64 `json:"gold_melt_usd"`
		SilverMeltUSD   float64 `json:"silver_melt_usd"`
		PriceSource     string  `json:"price_source"`
	} `json:"bullion"`
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

// Login stores the bearer token used by later calls
func (c *APIClient) Login(email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(http.MethodPost, "/login", body, &resp, http.StatusOK); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	c.token = resp.Token
	return nil
}

// BulkUpload sends raw item objects. A 400 with per-item errors is returned
// as a result, not an error.
func (c *APIClient) BulkUpload(items []json.RawMessage) (*BulkUploadResult, error) {
	var result BulkUploadResult
	err := c.do(http.MethodPost, "/items/bulk_upload", items, &result, http.StatusOK, http.StatusBadRequest)
	if err != nil {
		return nil, fmt.Errorf("bulk upload failed: %w", err)
	}
	return &result, nil
}

func (c *APIClient) Duplicates() ([]DuplicateGroup, error) {
	var groups []DuplicateGroup
	if err := c.do(http.MethodGet, "/items/duplicates", nil, &groups, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list duplicates failed: %w", err)
	}
	return groups, nil
}

// Merge folds ids into the first one and returns the merged item
func (c *APIClient) Merge(ids []string) (*Item, error) {
	var item Item
	body := map[string][]string{"item_ids": ids}
	if err := c.do(http.MethodPost, "/items/merge", body, &item, http.StatusOK); err != nil {
		return nil, fmt.Errorf("merge failed: %w", err)
	}
	return &item, nil
}

func (c *APIClient) MetalPrices() (*MetalPrices, error) {
	var prices MetalPrices
	if err := c.do(http.MethodGet, "/prices/metals", nil, &prices, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get prices failed: %w", err)
	}
	return &prices, nil
}

func (c *APIClient) Stats() (*Stats, error) {
	var stats Stats
	if err := c.do(http.MethodGet, "/items/stats", nil, &stats, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get stats failed: %w", err)
	}
	return &stats, nil
}

// HTTP helpers

func (c *APIClient) do(method, path string, body, out interface{}, okStatus ...int) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !statusIn(resp.StatusCode, okStatus) {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(bodyBytes))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusIn(status int, allowed []int) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
