// Package gateway wraps every network call to the SocialFlow backend.
//
// The gateway attaches the current access token, normalizes all transport and
// server failures into *api.Error, and on an authorization failure triggers
// exactly one token refresh before retrying the request exactly once. No
// error ever escapes as a raw transport error and nothing panics across the
// boundary: callers branch on the returned *api.Error only.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/socialflow/socialflow/internal/api"
	"github.com/socialflow/socialflow/internal/token"
)

// Gateway dispatches authenticated requests to the backend.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     *token.Manager
	metrics    *Metrics
	logger     *slog.Logger
}

// New creates a Gateway. metrics may be nil to disable recording; logger may
// be nil to use the default.
func New(baseURL string, tokens *token.Manager, httpClient *http.Client, metrics *Metrics, logger *slog.Logger) *Gateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		metrics:    metrics,
		logger:     logger,
	}
}

// Do performs one logical API request.
//
// The request walks a fixed pipeline: attach the bearer token when one is
// held (unauthenticated calls proceed and fail server-side), dispatch, and on
// a 401 run one token refresh — on refresh success the request is re-sent
// exactly once with the new token; on refresh failure the 401 is surfaced.
// Further 401s on the retried request are surfaced, never re-refreshed.
//
// On success the response body is unmarshaled into out (ignored when out is
// nil). The returned error is always nil or *api.Error.
func (g *Gateway) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	apiErr := g.dispatch(ctx, method, path, query, body, out)
	if apiErr == nil {
		return nil
	}
	if apiErr.Status != http.StatusUnauthorized || credentialEndpoint(path) {
		return apiErr
	}

	ok := g.tokens.Refresh(ctx)
	if g.metrics != nil {
		outcome := "ok"
		if !ok {
			outcome = "failed"
		}
		g.metrics.TokenRefreshes.WithLabelValues(outcome).Inc()
	}
	if !ok {
		// Refresh failed: the session is gone, surface the original 401.
		return apiErr
	}

	if g.metrics != nil {
		g.metrics.RetriesTotal.Inc()
	}
	g.logger.Debug("retrying request after token refresh", "method", method, "path", path)

	if apiErr := g.dispatch(ctx, method, path, query, body, out); apiErr != nil {
		return apiErr
	}
	return nil
}

// credentialEndpoint reports whether a 401 from this path is a credential
// failure rather than an expired session. Refreshing and retrying these would
// loop a bad login back through the token manager for nothing.
func credentialEndpoint(path string) bool {
	switch path {
	case "/api/v1/auth/login", "/api/v1/auth/register", "/api/v1/auth/refresh":
		return true
	}
	return false
}

// dispatch sends one HTTP request and normalizes the outcome.
func (g *Gateway) dispatch(ctx context.Context, method, path string, query url.Values, body, out any) *api.Error {
	start := time.Now()
	apiErr := g.send(ctx, method, path, query, body, out)
	if g.metrics != nil {
		status := "ok"
		if apiErr != nil {
			status = "error"
		}
		g.metrics.RequestsTotal.WithLabelValues(method, status).Inc()
		g.metrics.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
	return apiErr
}

func (g *Gateway) send(ctx context.Context, method, path string, query url.Values, body, out any) *api.Error {
	reqURL := g.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			g.logger.Error("failed to marshal request body", "method", method, "path", path, "error", err)
			return api.TransportError()
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		g.logger.Error("failed to create request", "method", method, "path", path, "error", err)
		return api.TransportError()
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := g.tokens.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn("request failed before reaching server", "method", method, "path", path, "error", err)
		return api.TransportError()
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		g.logger.Warn("failed to read response body", "method", method, "path", path, "error", err)
		return api.TransportError()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return api.ParseError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			g.logger.Warn("failed to decode response body", "method", method, "path", path, "error", err)
			return &api.Error{Status: resp.StatusCode, Detail: fmt.Sprintf("malformed response: %v", err)}
		}
	}

	return nil
}
