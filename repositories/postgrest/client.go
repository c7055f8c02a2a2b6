// Package postgrest calls match_documents through a Supabase-style PostgREST
// endpoint (POST /rest/v1/rpc/{function}).
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/semantic-retrieval/config"
	"github.com/upb/semantic-retrieval/services/search"
	"go.uber.org/zap"
)

// maxErrorBodyBytes caps how much of an error body is kept on the error value
const maxErrorBodyBytes = 512

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("postgrest returned status %d: %s", e.StatusCode, e.Body)
}

// Client implements search.Store over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	schema     string
	function   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a PostgREST client. A schema-qualified function name
// ("kb.match_chunks") is called with the matching Content-Profile header.
func NewClient(cfg config.PostgRESTConfig, function string, timeout time.Duration, logger *zap.Logger) *Client {
	schema := ""
	if i := strings.LastIndex(function, "."); i >= 0 {
		schema, function = function[:i], function[i+1:]
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		apiKey:   cfg.APIKey,
		schema:   schema,
		function: function,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type rpcRequest struct {
	QueryEmbedding string  `json:"query_embedding"`
	MatchThreshold float64 `json:"match_threshold"`
	MatchCount     int     `json:"match_count"`
	FilterScopeID  *string `json:"filter_scope_id"`
}

type rpcRow struct {
	ID         json.RawMessage `json:"id"`
	Content    string          `json:"content"`
	Similarity float64         `json:"similarity"`
	Metadata   search.Metadata `json:"metadata"`
}

// MatchDocuments implements search.Store
func (c *Client) MatchDocuments(ctx context.Context, params search.MatchParams) ([]search.DocumentMatch, error) {
	body, err := json.Marshal(rpcRequest{
		QueryEmbedding: params.QueryEmbedding.String(),
		MatchThreshold: params.MatchThreshold,
		MatchCount:     params.MatchCount,
		FilterScopeID:  params.FilterScopeID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/rpc/"+c.function, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create rpc request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	if c.schema != "" {
		req.Header.Set("Content-Profile", c.schema)
	}

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var rows []rpcRow
	if err := json.Unmarshal(respBody, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode rpc response: %w", err)
	}

	matches := make([]search.DocumentMatch, 0, len(rows))
	for _, row := range rows {
		if row.Metadata == nil {
			row.Metadata = search.Metadata{}
		}
		matches = append(matches, search.DocumentMatch{
			ID:         rawID(row.ID),
			Content:    row.Content,
			Similarity: row.Similarity,
			Metadata:   row.Metadata,
		})
	}

	c.logger.Debug("rpc returned rows", zap.String("function", c.function), zap.Int("count", len(matches)))
	return matches, nil
}

// HealthCheck verifies the REST endpoint accepts the service key.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/v1/", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	c.setHeaders(req)

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("postgrest health check failed: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.schema != "" {
		req.Header.Set("Accept-Profile", c.schema)
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rpc response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBodyBytes {
			body = body[:maxErrorBodyBytes]
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// rawID renders a JSON id as text; string ids are unquoted, numeric ids kept as written.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// Close releases idle keep-alive connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
