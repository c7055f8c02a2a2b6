package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/upb/semantic-retrieval/internal/observability"
	"github.com/upb/semantic-retrieval/services"
	"github.com/upb/semantic-retrieval/services/providers"
	"go.uber.org/zap"
)

// Source records which path produced a vector.
type Source string

const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
)

// Mode selects the provider endpoint used on the primary path.
type Mode string

const (
	// ModeChat asks a chat model to print the vector as a JSON array.
	ModeChat Mode = "chat"
	// ModeEmbeddings calls the typed embeddings endpoint.
	ModeEmbeddings Mode = "embeddings"
)

const (
	systemPromptTemplate = "You are an embedding generator. Respond with ONLY a JSON array of exactly %d " +
		"floating point numbers between -1 and 1 that represents the semantic embedding of the user's text. " +
		"Do not include any explanatory text, code fences or keys."
	userPromptTemplate = "Generate a %d-dimensional semantic embedding for the following text:\n\n%s"
)

// Config controls the orchestrator.
type Config struct {
	Model      string
	Mode       Mode
	Dimensions int
	// Timeout bounds a single provider call. Zero means no extra bound.
	Timeout time.Duration
}

// Result is a normalized vector plus where it came from.
type Result struct {
	Vector Vector
	Source Source
	// FallbackReason is the recovered error when Source is SourceFallback.
	FallbackReason error
}

// Orchestrator produces embeddings from the provider, falling back to
// HashEmbed when the provider fails or answers with something unusable.
type Orchestrator struct {
	provider providers.Provider
	config   Config
	logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator. A nil provider means every call
// uses the hash fallback.
func NewOrchestrator(provider providers.Provider, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeChat
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		provider: provider,
		config:   cfg,
		logger:   logger,
	}
}

// Dimensions returns the width of every vector Embed produces.
func (o *Orchestrator) Dimensions() int {
	return o.config.Dimensions
}

// Embed returns a vector of exactly Dimensions() components for text.
// Provider and parse failures are recovered with the hash fallback. The only
// error returned is the parent context's, when the caller has gone away.
func (o *Orchestrator) Embed(ctx context.Context, text string) (*Result, error) {
	if o.provider == nil {
		return o.fallback(ctx, text, nil), nil
	}

	raw, err := o.fromProvider(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return o.fallback(ctx, text, err), nil
	}

	return &Result{
		Vector: Normalize(raw, o.config.Dimensions),
		Source: SourceProvider,
	}, nil
}

func (o *Orchestrator) fromProvider(ctx context.Context, text string) (Vector, error) {
	callCtx := ctx
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	if o.config.Mode == ModeEmbeddings {
		return o.viaEmbeddings(callCtx, text)
	}
	return o.viaChat(callCtx, text)
}

func (o *Orchestrator) viaChat(ctx context.Context, text string) (Vector, error) {
	resp, err := o.provider.ChatCompletion(ctx, &providers.ChatRequest{
		Model: o.config.Model,
		Messages: []providers.Message{
			{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, o.config.Dimensions)},
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, o.config.Dimensions, text)},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, services.WrapEmbeddingProvider("chat completion failed", err)
	}

	vec, err := ExtractVector(resp.Content())
	if err != nil {
		return nil, services.WrapParse("could not read vector from completion", err)
	}
	return vec, nil
}

func (o *Orchestrator) viaEmbeddings(ctx context.Context, text string) (Vector, error) {
	resp, err := o.provider.CreateEmbedding(ctx, &providers.EmbeddingRequest{
		Model:      o.config.Model,
		Input:      text,
		Dimensions: o.config.Dimensions,
	})
	if err != nil {
		return nil, services.WrapEmbeddingProvider("embeddings request failed", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, services.WrapParse("embeddings response was empty", ErrNoVector)
	}

	vec := make(Vector, len(resp.Embedding))
	for i, f := range resp.Embedding {
		v := float32(f)
		if !isFinite(v) {
			return nil, services.WrapParse("embeddings response was not finite",
				fmt.Errorf("%w: element %d is not finite", ErrMalformedVector, i))
		}
		vec[i] = v
	}
	return vec, nil
}

func (o *Orchestrator) fallback(ctx context.Context, text string, reason error) *Result {
	if reason != nil {
		kind := services.GetErrorType(reason).Kind()
		var provErr *providers.ProviderError
		fields := []zap.Field{
			zap.String("kind", kind),
			zap.Error(reason),
		}
		if errors.As(reason, &provErr) && provErr.StatusCode != 0 {
			fields = append(fields, zap.Int("provider_status", provErr.StatusCode))
		}
		observability.LoggerFromContext(ctx, o.logger).Warn("embedding provider unusable, using hash fallback", fields...)
	}

	return &Result{
		Vector:         HashEmbed(text, o.config.Dimensions),
		Source:         SourceFallback,
		FallbackReason: reason,
	}
}
