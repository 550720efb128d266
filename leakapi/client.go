// Package leakapi is the HTTP client for the leak intelligence API. Every
// call is a single authenticated GET.
package leakapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-kaduu/core"
	glog "github.com/goliatone/go-logger/glog"
)

type Client struct {
	baseURL   string
	nodeName  string
	config    core.Config
	transport core.TransportAdapter
	tokens    core.TokenProvider
	logger    core.Logger
}

type ClientOption func(*Client)

func WithLogger(logger core.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(cfg core.Config, transport core.TransportAdapter, tokens core.TokenProvider, opts ...ClientOption) (*Client, error) {
	if transport == nil {
		return nil, core.NewInternalError("leakapi: transport is required")
	}
	if tokens == nil {
		return nil, core.NewInternalError("leakapi: token provider is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if baseURL == "" {
		baseURL = core.DefaultAPIURL
	}
	client := &Client{
		baseURL:   baseURL,
		nodeName:  cfg.NodeName,
		config:    cfg,
		transport: transport,
		tokens:    tokens,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	client.logger = glog.Ensure(client.logger)
	return client, nil
}

func (c *Client) Browse(ctx context.Context, req core.BrowseRequest) ([]byte, error) {
	return c.Fetch(ctx, req)
}

func (c *Client) Search(ctx context.Context, req core.SearchRequest) ([]byte, error) {
	return c.Fetch(ctx, req)
}

func (c *Client) Get(ctx context.Context, req core.GetRequest) ([]byte, error) {
	return c.Fetch(ctx, req)
}

// Fetch validates req and issues exactly one GET for it.
func (c *Client) Fetch(ctx context.Context, req core.OperationRequest) ([]byte, error) {
	if req == nil {
		return nil, core.NewValidationError("operation", "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := map[string]string{}
	for key, values := range req.QueryParams() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}
	return c.get(ctx, string(req.Operation()), req.Path(), query)
}

// Stats calls the statistics endpoint used to verify credentials.
func (c *Client) Stats(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "stats", core.PathStats, nil)
}

func (c *Client) get(ctx context.Context, operation string, path string, query map[string]string) ([]byte, error) {
	if c == nil {
		return nil, core.NewInternalError("leakapi: client is nil")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{
		"operation": operation,
		"node":      c.nodeName,
		"path":      path,
	}
	res, err := c.transport.Do(ctx, core.TransportRequest{
		Method: http.MethodGet,
		URL:    c.baseURL + path,
		Query:  query,
		Headers: map[string]string{
			"Authorization": authorizationHeader(token),
			"Accept":        "application/json",
		},
		Timeout:              c.config.Timeout,
		MaxResponseBodyBytes: c.config.MaxResponseBodyBytes,
	})
	if err != nil {
		return nil, core.NewAPIError(err, fmt.Sprintf("%s request failed", operation), 0, metadata)
	}

	if res.StatusCode == http.StatusUnauthorized {
		if invalidateErr := c.tokens.Invalidate(ctx); invalidateErr != nil {
			c.logger.Warn("token invalidation failed", "error", core.ErrorMessage(invalidateErr))
		}
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		metadata["body"] = truncate(string(res.Body))
		return nil, core.NewAPIError(nil, fmt.Sprintf("leak api returned %d for %s", res.StatusCode, operation), res.StatusCode, metadata)
	}
	return res.Body, nil
}

func authorizationHeader(token core.TokenData) string {
	tokenType := strings.TrimSpace(token.TokenType)
	if tokenType == "" || strings.EqualFold(tokenType, "bearer") {
		tokenType = "Bearer"
	}
	return tokenType + " " + token.AccessToken
}

const maxErrorBody = 512

func truncate(body string) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= maxErrorBody {
		return body
	}
	return string(runes[:maxErrorBody]) + "..."
}

var _ core.LeakAPI = (*Client)(nil)
