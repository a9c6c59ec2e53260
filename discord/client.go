// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package discord

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

	"github.com/chubbcord/chubbcord/lib/netutil"
)

// DefaultRequestTimeout bounds every API request when the caller does
// not supply its own HTTP client.
const DefaultRequestTimeout = 5 * time.Second

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// APIBaseURL is the base URL of the Discord HTTP API
	// (e.g., "https://discord.com/api/v9").
	APIBaseURL string
	// LookupBaseURL is the base URL of the public username lookup
	// service (e.g., "https://discordlookup.mesalytic.moe").
	LookupBaseURL string
	// HTTPClient is used for all requests. If nil, a client with
	// DefaultRequestTimeout is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is an unauthenticated Discord client.
// It holds the API base URLs and HTTP transport, shared across Sessions.
type Client struct {
	baseURL       string
	lookupBaseURL string
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient creates a new unauthenticated Discord client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.APIBaseURL == "" {
		return nil, fmt.Errorf("discord: APIBaseURL is required")
	}
	if config.LookupBaseURL == "" {
		return nil, fmt.Errorf("discord: LookupBaseURL is required")
	}

	// Validate the URL structure. We store the string form (with
	// trailing slash stripped) and build request URLs by direct
	// concatenation, sidestepping url.URL.String() re-encoding of
	// path segments that contain IDs.
	if _, err := url.Parse(config.APIBaseURL); err != nil {
		return nil, fmt.Errorf("discord: invalid APIBaseURL %q: %w", config.APIBaseURL, err)
	}
	if _, err := url.Parse(config.LookupBaseURL); err != nil {
		return nil, fmt.Errorf("discord: invalid LookupBaseURL %q: %w", config.LookupBaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:       strings.TrimRight(config.APIBaseURL, "/"),
		lookupBaseURL: strings.TrimRight(config.LookupBaseURL, "/"),
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Login authenticates with email and password and returns an
// authenticated session for the account.
func (c *Client) Login(ctx context.Context, email, password string) (*APISession, error) {
	if email == "" {
		return nil, fmt.Errorf("discord: email is required for login")
	}
	if password == "" {
		return nil, fmt.Errorf("discord: password is required for login")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/auth/login", "", loginRequest{
		Login:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("discord: login failed: %w", err)
	}

	var authResponse AuthResponse
	if err := json.Unmarshal(body, &authResponse); err != nil {
		return nil, fmt.Errorf("discord: failed to parse login response: %w", err)
	}
	if authResponse.Token == "" {
		return nil, fmt.Errorf("discord: login response missing token")
	}

	return c.SessionFromToken(authResponse.UserID, authResponse.Token), nil
}

// SessionFromToken creates a session from an existing token without
// logging in. userID may be empty; [APISession.WhoAmI] resolves and
// caches it on first use.
func (c *Client) SessionFromToken(userID, token string) *APISession {
	return &APISession{
		client: c,
		userID: userID,
		token:  token,
	}
}

// doRequest performs an HTTP request against the API base URL and
// returns the response body. On 2xx, returns the body. On 4xx/5xx,
// returns the body alongside a *APIError.
// token may be empty for unauthenticated endpoints.
// query may be nil for endpoints without query parameters.
func (c *Client) doRequest(ctx context.Context, method, path string, token string, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("discord: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to create request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		// User tokens are sent bare, without a Bearer prefix.
		request.Header.Set("Authorization", token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("discord: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return responseBody, decodeAPIError(response.StatusCode, responseBody)
}

// doRequestRaw performs an HTTP request with a raw body against an
// absolute URL (for attachment storage upload and download). The
// storage endpoints live outside the API base URL.
func (c *Client) doRequestRaw(ctx context.Context, method, requestURL string, token string, contentType string, body io.Reader) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to create request: %w", err)
	}

	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		request.Header.Set("Authorization", token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("discord: request to %s %s failed: %w", method, requestURL, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	return nil, decodeAPIError(response.StatusCode, responseBody)
}

// decodeAPIError turns an error response body into a *APIError. Error
// bodies are usually JSON, but the lookup service and the storage
// endpoints return plain text, so fall back to the raw body as the
// message.
func decodeAPIError(statusCode int, responseBody []byte) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(responseBody, &apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(responseBody))
	}
	apiErr.StatusCode = statusCode
	return &apiErr
}
