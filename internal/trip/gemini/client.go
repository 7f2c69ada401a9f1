// Package gemini implements trip.Planner on top of the Gemini generateContent API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/ecoroute/ecoroute/internal/provider/resilience"
	"github.com/ecoroute/ecoroute/internal/trip"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// ProviderName identifies this provider.
	ProviderName = "gemini"
)

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("gemini API key is not set")

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("no data received from the planner")
)

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the model name (default: DefaultModel).
	Model string

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string

	// HTTPClient is the HTTP client handed to the SDK.
	// If nil, a client backed by a resilience.Client is created.
	HTTPClient *http.Client

	// Timeout for a single planning call (default: 60s).
	Timeout time.Duration

	// Registry receives health updates for the default HTTP client. Optional.
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client plans trips by asking the model for structured JSON.
type Client struct {
	models *genai.Models
	model  string
	logger zerolog.Logger
}

var _ trip.Planner = (*Client)(nil)

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Timeout = timeout
		rc.Registry = cfg.Registry
		rc.Breaker.OnStateChange = resilience.LogStateChanges(cfg.Logger)
		httpClient = &http.Client{Transport: resilience.NewClient(rc)}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		models: client.Models,
		model:  model,
		logger: cfg.Logger,
	}, nil
}

// Plan asks the model for route estimates and decodes its answer.
func (c *Client) Plan(ctx context.Context, req trip.Request) (*trip.Result, error) {
	start := time.Now()

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(BuildPrompt(req)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	result, err := trip.Decode([]byte(text))
	if err != nil {
		c.logger.Warn().Err(err).Str("model", c.model).Msg("planner returned an invalid payload")
		return nil, err
	}

	c.logger.Debug().
		Str("model", c.model).
		Dur("latency", time.Since(start)).
		Bool("feasible", result.Feasible).
		Int("routes", len(result.Routes)).
		Msg("planner response decoded")

	return result, nil
}
