// Package gemini implements domain.ContentGenerator on the Google GenAI SDK.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/fairyhunter13/career-readiness/internal/adapter/ai"
	"github.com/fairyhunter13/career-readiness/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/career-readiness/internal/adapter/observability"
	"github.com/fairyhunter13/career-readiness/internal/config"
	"github.com/fairyhunter13/career-readiness/internal/domain"
)

const (
	provider     = "gemini"
	defaultModel = "gemini-2.0-flash"

	breakerFailures = 5
	breakerCooldown = 30 * time.Second
)

var errEmptyResponse = errors.New("gemini api returned empty response")

// Models is the subset of *genai.Models the generator calls.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ Models = (*genai.Models)(nil)

// schemas are the response schemas callers may request by name.
var schemas = map[string]*genai.Schema{
	domain.SchemaQuickTestQuestion: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question":      {Type: genai.TypeString},
			"options":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"correctAnswer": {Type: genai.TypeString},
			"explanation":   {Type: genai.TypeString},
		},
		Required: []string{"question", "options", "correctAnswer", "explanation"},
	},
}

// Generator asks Gemini for JSON matching a named schema and decodes it.
// Calls are retried with exponential backoff inside a circuit breaker.
type Generator struct {
	models          Models
	model           string
	maxPromptTokens int
	newBackoff      func() backoff.BackOff
	breaker         *observability.CircuitBreaker
	counter         *tokencount.Counter
	cleaner         *ai.ResponseCleaner
}

var _ domain.ContentGenerator = (*Generator)(nil)

// New creates a Generator for the Gemini API backend. The HTTP transport is
// instrumented with otelhttp.
func New(ctx context.Context, cfg config.Config) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		return nil, errors.New("op=gemini.New: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: %w", err)
	}
	return NewWithModels(client.Models, cfg), nil
}

// NewWithModels builds a Generator around any Models implementation.
func NewWithModels(m Models, cfg config.Config) *Generator {
	model := strings.TrimSpace(cfg.GeminiModel)
	if model == "" {
		model = defaultModel
	}
	maxElapsed, initial, maxInterval, multiplier := cfg.GetAIBackoffConfig()
	return &Generator{
		models:          m,
		model:           model,
		maxPromptTokens: cfg.AIMaxPromptTokens,
		newBackoff: func() backoff.BackOff {
			expo := backoff.NewExponentialBackOff()
			expo.MaxElapsedTime = maxElapsed
			expo.InitialInterval = initial
			expo.MaxInterval = maxInterval
			expo.Multiplier = multiplier
			return expo
		},
		breaker: observability.NewCircuitBreaker(provider, breakerFailures, breakerCooldown),
		counter: tokencount.NewCounter(),
		cleaner: ai.NewResponseCleaner(),
	}
}

// Model returns the configured model id.
func (g *Generator) Model() string { return g.model }

// GenerateJSON sends prompt, decodes the JSON answer into out and, when out
// has a Validate method, rejects answers that fail it. Malformed answers are
// retried like transient failures. On error out may hold a partial decode.
func (g *Generator) GenerateJSON(ctx context.Context, prompt, schemaName string, out any) error {
	schema, ok := schemas[schemaName]
	if !ok {
		return fmt.Errorf("%w: unknown schema %q", domain.ErrInvalidArgument, schemaName)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("%w: prompt must not be empty", domain.ErrInvalidArgument)
	}
	tokens := g.counter.EstimateTokens(prompt, g.model)
	if g.maxPromptTokens > 0 && tokens > g.maxPromptTokens {
		return fmt.Errorf("%w: prompt has %d tokens, limit is %d", domain.ErrInvalidArgument, tokens, g.maxPromptTokens)
	}

	ctx, span := otel.Tracer("ai.gemini").Start(ctx, "gemini.GenerateJSON")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.model", g.model),
		attribute.String("ai.schema", schemaName),
		attribute.Int("ai.prompt_tokens", tokens),
	)

	lg := observability.LoggerFromContext(ctx)
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr[float32](0.7),
	}

	attempt := 0
	start := time.Now()
	err := g.breaker.Call(func() error {
		op := func() error {
			attempt++
			text, err := g.generateOnce(ctx, prompt, cfg)
			if err != nil {
				lg.Warn("gemini attempt failed", slog.Int("attempt", attempt), slog.String("schema", schemaName), slog.Any("error", err))
				return err
			}
			return g.decode(text, out)
		}
		return backoff.Retry(op, backoff.WithContext(g.newBackoff(), ctx))
	}, countsAsSuccess)
	observability.ObserveAIRequest(provider, schemaName, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		lg.Error("gemini generate failed", slog.String("schema", schemaName), slog.Int("attempts", attempt), slog.Any("error", err))
		return classify(ctx, err)
	}
	lg.Info("gemini generate ok", slog.String("schema", schemaName), slog.Int("attempts", attempt), slog.Int("prompt_tokens", tokens))
	return nil
}

func (g *Generator) generateOnce(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		if ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		if code, ok := apiErrorCode(err); ok {
			switch {
			case code == http.StatusTooManyRequests:
				return "", fmt.Errorf("%w: %v", domain.ErrUpstreamRateLimit, err)
			case code >= 400 && code < 500:
				return "", backoff.Permanent(fmt.Errorf("gemini status %d: %w", code, err))
			}
		}
		return "", err
	}
	if resp == nil {
		return "", errEmptyResponse
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			b.WriteString(part.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func (g *Generator) decode(text string, out any) error {
	cleaned, err := g.cleaner.CleanAndValidateJSON(text)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
	}
	if v, ok := out.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			if errors.Is(err, domain.ErrSchemaInvalid) {
				return err
			}
			return fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err)
		}
	}
	return nil
}

// countsAsSuccess keeps malformed answers and caller cancellation from
// opening the breaker; only provider failures count.
func countsAsSuccess(err error) bool {
	return errors.Is(err, domain.ErrSchemaInvalid) || errors.Is(err, context.Canceled)
}

func apiErrorCode(err error) (int, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v.Code, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return p.Code, true
	}
	return 0, false
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrSchemaInvalid), errors.Is(err, domain.ErrUpstreamRateLimit):
		return fmt.Errorf("op=gemini.generate: %w", err)
	case errors.Is(err, observability.ErrCircuitOpen):
		return fmt.Errorf("op=gemini.generate: %w: %v", domain.ErrUpstreamTimeout, err)
	case errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		return fmt.Errorf("op=gemini.generate: %w: %v", domain.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("op=gemini.generate: %w: %v", domain.ErrUpstreamTimeout, err)
}
