package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without calling out while a circuit is open or
// its half-open probes are used up.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ServerError marks a 5xx response. It counts against the circuit and is
// retried, but the response itself still reaches the caller.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Name labels the breaker, its log lines and its registry entry.
	Name string
	// Timeout bounds each attempt.
	Timeout time.Duration
	// Retries is the number of extra attempts after a 5xx or transport
	// error. Zero sends every request once.
	Retries uint64
	// InitialInterval and MaxInterval shape the exponential backoff between attempts.
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Breaker         BreakerConfig
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// Registry, when set, registers the client and records every outcome.
	Registry *Registry
}

// DefaultClientConfig returns a 10s timeout, no retries and the default breaker.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Breaker:         DefaultBreakerConfig(),
	}
}

// Client sends requests through a circuit breaker. It is both a Doer and an
// http.RoundTripper, so it can sit under SDK clients.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

var _ http.RoundTripper = (*Client)(nil)

// NewClient builds a Client and registers it with cfg.Registry.
func NewClient(cfg ClientConfig) *Client {
	def := DefaultClientConfig(cfg.Name)
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		breaker: newBreaker[*http.Response](cfg.Name, cfg.Breaker), //nolint:bodyclose // type parameter
	}
	if cfg.Registry != nil {
		cfg.Registry.Register(cfg.Name, c)
	}
	return c
}

// Name returns the client name.
func (c *Client) Name() string { return c.cfg.Name }

// CircuitBreakerState returns the current circuit state.
func (c *Client) CircuitBreakerState() gobreaker.State { return c.breaker.State() }

// CircuitBreakerCounts returns the breaker's current counts.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts { return c.breaker.Counts() }

// RoundTrip implements http.RoundTripper.
func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	return c.Do(req)
}

// Do sends req, retrying 5xx responses and transport errors up to Retries
// times. When every attempt ends in a 5xx, the last response is returned
// with a nil error so the caller can read its status and body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var (
		last    *http.Response
		attempt int
	)
	operation := func() error {
		attempt++
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			return c.send(ctx, req, attempt)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		if resp != nil {
			discard(last)
			last = resp
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.cfg.Retries), ctx))
	c.report(err)

	var serverErr *ServerError
	switch {
	case err == nil:
		return last, nil
	case errors.As(err, &serverErr) && last != nil:
		return last, nil
	default:
		discard(last)
		return nil, err
	}
}

func (c *Client) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	return bo
}

// send performs one attempt. Retries get a fresh copy of the body.
func (c *Client) send(ctx context.Context, req *http.Request, attempt int) (*http.Response, error) {
	out := req.Clone(ctx)
	if attempt > 1 && req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, backoff.Permanent(fmt.Errorf("%s %s: request body cannot be replayed", req.Method, req.URL.Path))
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rewind request body: %w", err))
		}
		out.Body = body
	}

	resp, err := c.http.Do(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return resp, &ServerError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) report(err error) {
	switch {
	case c.cfg.Registry == nil, errors.Is(err, context.Canceled):
	case err == nil:
		c.cfg.Registry.RecordSuccess(c.cfg.Name)
	default:
		c.cfg.Registry.RecordFailure(c.cfg.Name, err)
	}
}

func discard(resp *http.Response) {
	if resp == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // connection reuse only
	_ = resp.Body.Close()
}
