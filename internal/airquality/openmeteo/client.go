// Package openmeteo provides a client for the Open-Meteo air-quality API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ecoroute/ecoroute/internal/airquality"
	"github.com/ecoroute/ecoroute/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the Open-Meteo air-quality API.
	DefaultBaseURL = "https://air-quality-api.open-meteo.com"

	// ProviderName identifies this provider.
	ProviderName = "openmeteo"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use.
	// If nil, a resilient client without retries is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 5s).
	Timeout time.Duration

	// Registry receives health updates for the default HTTP client. Optional.
	Registry *resilience.Registry
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an Open-Meteo air-quality API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

var _ airquality.Provider = (*Client)(nil)

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout > 0 {
			rc.Timeout = cfg.Timeout
		} else {
			rc.Timeout = 5 * time.Second
		}
		rc.Registry = cfg.Registry
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// airQualityResponse is the subset of the API response we read.
// us_aqi stays raw so a null or non-numeric value can be told apart from zero.
type airQualityResponse struct {
	Current *struct {
		Time  string          `json:"time"`
		USAQI json.RawMessage `json:"us_aqi"`
	} `json:"current"`
}

// CurrentAQI fetches the current US AQI at a point.
func (c *Client) CurrentAQI(ctx context.Context, p airquality.Point) (*airquality.Reading, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	q.Set("current", "us_aqi")

	reqURL := c.baseURL + "/v1/air-quality?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch air quality: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from air-quality endpoint: %w", resp.StatusCode, airquality.ErrUnavailable)
	}

	var result airQualityResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode air-quality response: %w", err)
	}
	if result.Current == nil {
		return nil, fmt.Errorf("response has no current block: %w", airquality.ErrUnavailable)
	}

	var aqi float64
	if err := json.Unmarshal(result.Current.USAQI, &aqi); err != nil || string(result.Current.USAQI) == "null" {
		return nil, fmt.Errorf("us_aqi is missing or not a number: %w", airquality.ErrUnavailable)
	}

	return &airquality.Reading{
		AQI:       aqi,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}, nil
}
