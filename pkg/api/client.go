// Package api provides the StudentStore REST client with envelope decoding,
// bearer-token auth, error classification, and observability.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for API client operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentstore_api_requests_total",
		Help: "Total StudentStore API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studentstore_api_request_duration_seconds",
		Help:    "StudentStore API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentstore_api_errors_total",
		Help: "Total StudentStore API errors by class",
	}, []string{"class"})
)

// TokenSource supplies the bearer token for authenticated endpoints.
// It abstracts wherever the host application keeps the session token.
type TokenSource func() (string, error)

// StaticToken returns a TokenSource that always yields the given token.
func StaticToken(token string) TokenSource {
	return func() (string, error) { return token, nil }
}

// Client is the StudentStore API client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the StudentStore API (e.g. "https://api.studentstore.example")
	BaseURL string

	// TokenSource supplies bearer tokens for authenticated endpoints.
	// May be nil for public-only use.
	TokenSource TokenSource

	// UserAgent header sent with every request
	UserAgent string

	// Timeout for each request
	Timeout time.Duration

	// Retry configuration for the upload-auth path
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "storefront-client/0.1.0",
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new StudentStore API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	logger := log.With().Str("component", "api-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// ListPosts fetches one page of the posts feed.
func (c *Client) ListPosts(ctx context.Context, page, limit int, sort string) (*PostPage, error) {
	query := url.Values{
		"page":  []string{strconv.Itoa(page)},
		"limit": []string{strconv.Itoa(limit)},
	}
	if sort != "" {
		query.Set("sort", sort)
	}

	var result PostPage
	if err := c.do(ctx, http.MethodGet, "/api/posts", query, nil, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CategoryProducts fetches one page of a category's product listing.
func (c *Client) CategoryProducts(ctx context.Context, categoryID string, page, limit int, sort string) (*ProductPage, error) {
	query := url.Values{
		"page":  []string{strconv.Itoa(page)},
		"limit": []string{strconv.Itoa(limit)},
	}
	if sort != "" {
		query.Set("sort", sort)
	}

	path := "/api/public/categories/" + url.PathEscape(categoryID) + "/products"
	var result ProductPage
	if err := c.do(ctx, http.MethodGet, path, query, nil, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// React places, removes, or switches the user's reaction on a post.
// Requires an auth token; its absence halts the call before any request.
func (c *Client) React(ctx context.Context, postID string, kind ReactionType) (*ReactionResult, error) {
	body := map[string]string{"reactionType": string(kind)}

	path := "/api/posts/" + url.PathEscape(postID) + "/reaction"
	var result ReactionResult
	if err := c.do(ctx, http.MethodPost, path, nil, body, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendChatMessage sends a message to the chat assistant.
func (c *Client) SendChatMessage(ctx context.Context, message, sessionID string, history []ChatTurn) (*ChatReply, error) {
	body := map[string]any{
		"message":     message,
		"sessionId":   sessionID,
		"chatHistory": history,
	}

	var result ChatReply
	if err := c.do(ctx, http.MethodPost, "/api/chat/message", nil, body, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUploadAuth fetches media upload signature parameters.
// This is the one path with automatic retry: bounded exponential backoff
// on 429 responses.
func (c *Client) GetUploadAuth(ctx context.Context) (*UploadAuth, error) {
	var result UploadAuth

	err := retryWithBackoff(ctx, c.config.Retry, func() error {
		return c.do(ctx, http.MethodGet, "/api/imagekit/auth", nil, nil, false, &result)
	}, func(err error) ErrorClass {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.Class
		}
		return ErrorClassNetwork
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProfile fetches the signed-in user's account data.
// Requires an auth token.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var result Profile
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, nil, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListWishlist fetches the ids of the user's saved products.
// Requires an auth token.
func (c *Client) ListWishlist(ctx context.Context) ([]string, error) {
	var result struct {
		ProductIDs []string `json:"product_ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/wishlist", nil, nil, true, &result); err != nil {
		return nil, err
	}
	return result.ProductIDs, nil
}

// AddWishlistItem saves a product to the user's wishlist. Idempotent.
// Requires an auth token.
func (c *Client) AddWishlistItem(ctx context.Context, productID string) error {
	path := "/api/wishlist/" + url.PathEscape(productID)
	return c.do(ctx, http.MethodPost, path, nil, nil, true, nil)
}

// RemoveWishlistItem removes a product from the user's wishlist.
// Requires an auth token.
func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) error {
	path := "/api/wishlist/" + url.PathEscape(productID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, true, nil)
}

// DeletePost removes a post through the admin API. Requires an auth token.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	path := "/api/admin/posts/" + url.PathEscape(postID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, true, nil)
}

// DeleteProduct removes a product through the admin API. Requires an auth token.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	path := "/api/admin/products/" + url.PathEscape(productID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, true, nil)
}

// do performs one request against the StudentStore API: builds the URL,
// attaches auth when required, decodes the envelope, and classifies errors.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, authed bool, out any) error {
	endpoint := metricEndpoint(path)

	startTime := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Auth precondition: checked before any request is sent
	var token string
	if authed {
		if c.config.TokenSource == nil {
			return ErrMissingToken
		}
		var err error
		token, err = c.config.TokenSource()
		if err != nil {
			return fmt.Errorf("token source: %w", err)
		}
		if token == "" {
			return ErrMissingToken
		}
	}

	requestURL := strings.TrimRight(c.config.BaseURL, "/") + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		apiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return &APIError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return &APIError{Class: ErrorClassNetwork, Message: "read response", Err: err}
	}

	if resp.StatusCode >= 400 {
		class := classify(resp.StatusCode)
		apiErrorsTotal.WithLabelValues(string(class)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("API request error")

		return &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    envelopeMessage(raw, resp.Status),
		}
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassServer,
			Message:    "malformed response envelope",
			Err:        err,
		}
	}

	// Business errors ride on 200 responses with status != "success"
	if envelope.Status != "success" {
		apiErrorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassClient,
			Message:    envelope.Message,
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// envelopeMessage extracts the server's business message from an error
// body, falling back to the HTTP status line.
func envelopeMessage(raw []byte, fallback string) string {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return fallback
}

// metricEndpoint collapses path parameters so metric cardinality stays
// bounded (e.g. /api/posts/42/reaction -> /api/posts/:id/reaction).
func metricEndpoint(path string) string {
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		switch segments[i-1] {
		case "posts", "categories", "products", "wishlist":
			if segments[i] != "" && segments[i] != "products" && segments[i] != "reaction" {
				segments[i] = ":id"
			}
		}
	}
	return strings.Join(segments, "/")
}
