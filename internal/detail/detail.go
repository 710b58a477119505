// Package detail fetches the detailed work item listings that exports are
// joined against.
package detail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bryan-cox/metricsledger/internal/model"
)

// DetailedPath is the detailed-metrics endpoint, relative to the API base URL.
const DetailedPath = "/metrics/detailed"

// ErrMissingToken is returned before any request is made when no bearer
// token is configured.
var ErrMissingToken = errors.New("no API token configured; set METRICS_API_TOKEN or api.token")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("detailed metrics API returned status %d", e.StatusCode)
}

// apiResponse represents the response from the detailed metrics API.
type apiResponse struct {
	Data *[]model.DetailRecord `json:"data"`
}

// Client fetches detail records over HTTP.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient returns a Client. A zero timeout leaves requests bounded only by
// the caller's context.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// FetchDetails requests the detail records for the given date and period.
func (c *Client) FetchDetails(ctx context.Context, date time.Time, period model.Period) ([]model.DetailRecord, error) {
	if c.Token == "" {
		return nil, ErrMissingToken
	}

	query := url.Values{}
	query.Set("date", model.FormatDate(date))
	query.Set("period", string(period))
	apiURL := fmt.Sprintf("%s%s?%s", c.BaseURL, DetailedPath, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set authorization header
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch detailed metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Data == nil {
		return nil, errors.New("failed to decode response: missing data array")
	}
	return *apiResp.Data, nil
}

// FileSource serves detail records from a local JSON file shaped like the API
// response. It is used for offline exports.
type FileSource struct {
	Path string
}

// FetchDetails ignores date and period; the file is assumed to hold the
// listing for the requested export.
func (f FileSource) FetchDetails(_ context.Context, _ time.Time, _ model.Period) ([]model.DetailRecord, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read details file: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse details JSON: %w", err)
	}
	if apiResp.Data == nil {
		return nil, fmt.Errorf("details file %s has no data array", f.Path)
	}
	return *apiResp.Data, nil
}
