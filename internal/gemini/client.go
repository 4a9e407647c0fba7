// Package gemini is the gateway's client for the Google generative AI
// service. Every operation is read-through cached: a hit never touches the
// network and a miss issues exactly one outbound call.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/af-corp/shetkari-gateway/internal/cache"
	"github.com/af-corp/shetkari-gateway/internal/config"
	"github.com/af-corp/shetkari-gateway/internal/prompt"
	"github.com/af-corp/shetkari-gateway/internal/telemetry"
	"github.com/af-corp/shetkari-gateway/internal/types"
)

const tracerName = "github.com/af-corp/shetkari-gateway/internal/gemini"

// Generator is the subset of the genai models service the client uses.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options carries the client's collaborators. Zero values are usable.
type Options struct {
	Cache   *cache.Cache
	Models  func() *config.ModelsConfig
	Metrics *telemetry.Metrics
	Logger  *slog.Logger
	// Timeout bounds each outbound call; zero means no limit.
	Timeout time.Duration
}

type Client struct {
	gen     Generator
	cache   *cache.Cache
	models  func() *config.ModelsConfig
	metrics *telemetry.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	timeout time.Duration
}

// New wraps gen. A nil gen yields a client whose operations all fail with
// ErrNotConfigured.
func New(gen Generator, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Models == nil {
		opts.Models = config.DefaultModels
	}
	return &Client{
		gen:     gen,
		cache:   opts.Cache,
		models:  opts.Models,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		tracer:  otel.Tracer(tracerName),
		timeout: opts.Timeout,
	}
}

// NewFromConfig builds the genai SDK client when an API key is configured.
func NewFromConfig(ctx context.Context, cfg config.GeminiConfig, opts Options) (*Client, error) {
	if cfg.APIKey == "" {
		return New(nil, opts), nil
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return New(gc.Models, opts), nil
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool {
	return c.gen != nil
}

// CropSuggestions returns a weather forecast and suggested crops for the
// farmer's location, soil colour and season.
func (c *Client) CropSuggestions(ctx context.Context, rc types.RequestContext) (*types.CropSuggestionResult, error) {
	const kind = types.KindCropSuggestions
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	key := cache.SuggestionsKey(rc)
	var cached types.CropSuggestionResult
	if c.cache.LookupJSON(ctx, string(kind), key, &cached) {
		return &cached, nil
	}

	resp, err := c.generate(ctx, kind, genai.Text(prompt.Suggestions(rc)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   prompt.SuggestionsSchema(),
	})
	if err != nil {
		return nil, err
	}

	result, err := parseSuggestions(resp.Text())
	if err != nil {
		return nil, err
	}
	c.cache.StoreJSON(ctx, key, result)
	return result, nil
}

// CropDetails returns Markdown guidance grounded with nearby shop locations.
// Partial responses degrade to empty fields rather than failing.
func (c *Client) CropDetails(ctx context.Context, rc types.RequestContext) (*types.CropDetailResult, error) {
	const kind = types.KindCropDetails
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	key := cache.DetailsKey(rc)
	var cached types.CropDetailResult
	if c.cache.LookupJSON(ctx, string(kind), key, &cached) {
		return &cached, nil
	}

	tools, toolConfig := prompt.DetailsTools(rc)
	resp, err := c.generate(ctx, kind, genai.Text(prompt.Details(rc)), &genai.GenerateContentConfig{
		Tools:      tools,
		ToolConfig: toolConfig,
	})
	if err != nil {
		return nil, err
	}

	result := &types.CropDetailResult{
		Markdown: resp.Text(),
		MapLinks: mapLinks(resp),
	}
	c.cache.StoreJSON(ctx, key, result)
	return result, nil
}

// PriceTrends returns the estimated monthly price series for rc.Query.
func (c *Client) PriceTrends(ctx context.Context, rc types.RequestContext) (types.PriceTrendResult, error) {
	const kind = types.KindPriceTrends
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	key := cache.PriceTrendsKey(rc)
	var cached types.PriceTrendResult
	if c.cache.LookupJSON(ctx, string(kind), key, &cached) {
		return cached, nil
	}

	resp, err := c.generate(ctx, kind, genai.Text(prompt.PriceTrend(rc)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   prompt.PriceTrendSchema(),
	})
	if err != nil {
		return nil, err
	}

	result, err := parsePriceTrends(resp.Text())
	if err != nil {
		return nil, err
	}
	c.cache.StoreJSON(ctx, key, result)
	return result, nil
}

// GenerateCropImage returns a data URL photograph of subject. The boolean is
// false when the service produced no image; that case is not cached.
func (c *Client) GenerateCropImage(ctx context.Context, subject string, aspect types.AspectRatio) (string, bool, error) {
	if aspect == "" {
		aspect = types.DefaultAspectRatio
	}
	return c.generateImage(ctx, types.KindCropImage, cache.ImageKey(subject, aspect), prompt.CropImage(subject), aspect)
}

// GenerateLogo returns the application logo as a square data URL.
func (c *Client) GenerateLogo(ctx context.Context) (string, bool, error) {
	return c.generateImage(ctx, types.KindLogo, cache.LogoKey, prompt.Logo(), types.Aspect1x1)
}

func (c *Client) generateImage(ctx context.Context, kind types.RequestKind, key, text string, aspect types.AspectRatio) (string, bool, error) {
	if !c.Configured() {
		return "", false, ErrNotConfigured
	}

	if url, ok := c.cache.LookupString(ctx, string(kind), key); ok {
		return url, true, nil
	}

	resp, err := c.generate(ctx, kind, genai.Text(text), &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: string(aspect)},
	})
	if err != nil {
		return "", false, err
	}

	url, ok := firstImage(resp)
	if !ok {
		c.logger.Warn("AI service returned no image", "kind", kind, "key", key)
		return "", false, nil
	}
	c.cache.StoreString(ctx, key, url)
	return url, true, nil
}

// generate issues the single outbound call for a cache miss.
func (c *Client) generate(ctx context.Context, kind types.RequestKind, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	model := c.models().ModelFor(kind)

	ctx, span := c.tracer.Start(ctx, "gemini."+string(kind), trace.WithAttributes(
		attribute.String("gen_ai.request.model", model),
		attribute.String("shetkari.request_kind", string(kind)),
	))
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, model, contents, cfg)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.recordUpstream(kind, "error")
		c.logger.Error("AI service call failed",
			"kind", kind,
			"model", model,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, &ServiceError{Kind: kind, Msg: "generate content", Err: err}
	}

	c.recordUpstream(kind, "ok")
	c.logger.Debug("AI service call completed",
		"kind", kind,
		"model", model,
		"duration_ms", duration.Milliseconds(),
	)
	return resp, nil
}

func (c *Client) recordUpstream(kind types.RequestKind, status string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamCall(string(kind), status)
	}
}
