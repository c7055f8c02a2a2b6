package retrieval

import (
	"github.com/upb/semantic-retrieval/services/search"
)

// Request is a validated-on-entry retrieval query
type Request struct {
	Query     string
	TopK      int
	Threshold float64
	// ScopeID limits results to one knowledge base; nil or empty searches all.
	ScopeID *string
}

// Response is returned to HTTP callers as-is
type Response struct {
	Documents           []search.DocumentMatch `json:"documents"`
	Query               string                 `json:"query"`
	EmbeddingDimensions int                    `json:"embeddingDimensions"`
	EmbeddingSource     string                 `json:"embeddingSource"`
}

// Options bound and default the request parameters.
type Options struct {
	DefaultTopK      int
	MaxTopK          int
	DefaultThreshold float64
	// LogQueryChars is the number of runes of the redacted query kept in logs.
	LogQueryChars int
}

// DefaultOptions returns the limits used when none are configured
func DefaultOptions() Options {
	return Options{
		DefaultTopK:      5,
		MaxTopK:          100,
		DefaultThreshold: 0.7,
		LogQueryChars:    50,
	}
}
