// Package oracle provides the scoring-oracle client used by the
// settlement pipeline. It abstracts multiple AI providers (OpenAI,
// Anthropic, Google) behind a common interface: every provider is asked
// to call a forced submit_scores function, and the raw function
// arguments flow back through a shared parser that tolerates providers
// answering in free text instead.
//
// Cross-cutting concerns such as retries, timeouts, rate limiting, and
// metrics are layered on through a middleware chain:
//
//	client, err := oracle.NewClient("openai", oracle.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o-mini",
//	    Middleware: []oracle.Middleware{
//	        oracle.RetryMiddleware(2, time.Second, 10*time.Second),
//	        oracle.TimeoutMiddleware(30 * time.Second),
//	    },
//	})
package oracle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/ahrav/votechain/internal/domain"
	"github.com/ahrav/votechain/internal/ports"
)

// Request is the provider-neutral scoring request. System carries the
// judge persona, Prompt the full evidence dossier.
type Request struct {
	System string
	Prompt string
}

// Response is the provider-neutral scoring response. ToolArguments
// holds the raw JSON arguments of the submit_scores call when the
// provider honored the forced function; Content holds whatever free
// text came back and serves as the fallback parse source.
type Response struct {
	ToolArguments string
	Content       string
}

// CoreScorer is the minimal interface a provider must implement.
// Middleware wraps any conforming implementation.
type CoreScorer interface {
	// DoRequest sends a scoring request to the provider.
	DoRequest(ctx context.Context, req Request) (Response, error)

	// GetModel returns the currently configured model name.
	GetModel() string
}

// Middleware wraps a CoreScorer to add cross-cutting functionality
// without modifying provider logic.
type Middleware func(CoreScorer) CoreScorer

// ClientConfig holds all configuration for creating an oracle client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model selects the provider's model. Empty picks the provider
	// default.
	Model string

	// BaseURL overrides the provider's default endpoint. Used for
	// proxies and compatible self-hosted backends.
	BaseURL string

	// Timeout bounds individual provider requests. Zero means no
	// per-request timeout.
	Timeout time.Duration

	// Middleware is applied in order, first entry outermost.
	Middleware []Middleware
}

// ProviderFactory creates a CoreScorer from configuration.
type ProviderFactory func(ClientConfig) (CoreScorer, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a provider under a type name.
// Providers self-register from init; custom scorers may be added the
// same way.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}

// Client implements ports.OracleClient over a middleware-wrapped
// CoreScorer.
type Client struct {
	core CoreScorer
}

// NewClient assembles the middleware chain around the named provider
// and returns a ready-to-use oracle client.
func NewClient(providerType string, config ClientConfig) (ports.OracleClient, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown oracle provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	// Apply middleware in reverse order so the first entry is outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	return &Client{core: core}, nil
}

// NewClientFromCore wraps an existing CoreScorer without the registry.
// Intended for tests and custom provider implementations.
func NewClientFromCore(core CoreScorer) ports.OracleClient {
	return &Client{core: core}
}

// ScoreCandidates asks the provider to score the evidence bundles
// against the room's criteria. Transport failures are returned as
// errors; responses that come back but cannot be parsed are reported
// through the Unparseable flag so the caller can fall back.
func (c *Client) ScoreCandidates(
	ctx context.Context, criteria string, bundles []domain.EvidenceBundle,
) (domain.OracleResponse, error) {
	req := Request{
		System: judgeSystemPrompt,
		Prompt: buildPrompt(criteria, bundles),
	}

	resp, err := c.core.DoRequest(ctx, req)
	if err != nil {
		return domain.OracleResponse{}, err
	}

	parsed := parseResponse(resp)
	parsed.Model = c.core.GetModel()
	return parsed, nil
}

// GetModel returns the model name of the underlying provider.
func (c *Client) GetModel() string { return c.core.GetModel() }

// RateLimitMiddleware enforces a token-bucket rate limit on provider
// calls. limit is requests per second; burst allows short spikes above
// the sustained rate.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next CoreScorer) CoreScorer {
		return &rateLimitedScorer{next: next, limiter: limiter}
	}
}

type rateLimitedScorer struct {
	next    CoreScorer
	limiter *rate.Limiter
}

func (r *rateLimitedScorer) DoRequest(ctx context.Context, req Request) (Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.DoRequest(ctx, req)
}

func (r *rateLimitedScorer) GetModel() string { return r.next.GetModel() }
