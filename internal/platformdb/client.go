// Package database provides a PostgREST (Supabase-style) client used as an
// alternate, durable backing for the AI subsystem's embeddings, operation
// log, and feedback records — the same tables internal/store/memory mirrors
// in-process for tests and the default wiring.
package database

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/config"
)

// Client wraps the Supabase/PostgREST REST API client.
type Client struct {
	url        string
	serviceKey string
	restPrefix string
	httpClient *http.Client
}

// Config holds database configuration.
type Config struct {
	URL        string
	ServiceKey string
	RestPrefix string
}

// NewClient creates a new PostgREST client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = os.Getenv("DATABASE_URL")
	}

	key := cfg.ServiceKey
	if key == "" {
		key = os.Getenv("DATABASE_SERVICE_KEY")
	}

	isDev := !config.IsProduction()
	allowInsecure := strings.EqualFold(os.Getenv("DATABASE_ALLOW_INSECURE"), "true")
	if allowInsecure && !isDev {
		return nil, fmt.Errorf("DATABASE_ALLOW_INSECURE is only supported outside production")
	}

	usingMockURL := false
	if baseURL == "" {
		if !isDev {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		baseURL = "http://localhost:54321" // mock PostgREST endpoint for local/dev
		usingMockURL = true
	}

	if key == "" && !usingMockURL && !isDev {
		return nil, fmt.Errorf("DATABASE_SERVICE_KEY is required")
	}

	normalizedURL, err := normalizeBaseURL(baseURL, !allowInsecure && !isDev)
	if err != nil {
		return nil, fmt.Errorf("DATABASE_URL must be a valid URL: %w", err)
	}
	baseURL = normalizedURL

	restPrefix := strings.TrimRight(strings.TrimSpace(cfg.RestPrefix), "/")
	if restPrefix == "" {
		restPrefix = "/rest/v1"
	}
	if restPrefix != "" && !strings.HasPrefix(restPrefix, "/") {
		restPrefix = "/" + restPrefix
	}

	return &Client{
		url:        baseURL,
		serviceKey: key,
		restPrefix: restPrefix,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: defaultTransportWithMinTLS12(),
		},
	}, nil
}

// normalizeBaseURL trims, validates, and optionally enforces https on a base
// URL used for service-to-service calls.
func normalizeBaseURL(raw string, requireHTTPS bool) (string, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(raw), "/")
	if baseURL == "" {
		return "", fmt.Errorf("base URL is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("base URL must be a valid URL")
	}
	if parsed.User != nil {
		return "", fmt.Errorf("base URL must not include user info")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("base URL scheme must be http or https")
	}
	if requireHTTPS && parsed.Scheme != "https" {
		return "", fmt.Errorf("base URL must use https in production (set DATABASE_ALLOW_INSECURE=true for dev/test)")
	}

	return baseURL, nil
}

// defaultTransportWithMinTLS12 clones http.DefaultTransport (when possible)
// and enforces a TLS 1.2+ floor for outbound calls.
func defaultTransportWithMinTLS12() http.RoundTripper {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport
	}

	cloned := base.Clone()
	if cloned.TLSClientConfig != nil {
		cloned.TLSClientConfig = cloned.TLSClientConfig.Clone()
		if cloned.TLSClientConfig.MinVersion < tls.VersionTLS12 {
			cloned.TLSClientConfig.MinVersion = tls.VersionTLS12
		}
	} else {
		cloned.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return cloned
}

const (
	maxResponseBytes  = 8 << 20  // 8 MiB
	maxErrorBodyBytes = 32 << 10 // 32 KiB
)

// readAllWithLimit reads up to limit+1 bytes from r, reporting whether the
// body was truncated at limit.
func readAllWithLimit(r io.Reader, limit int64) (body []byte, truncated bool, err error) {
	limited := io.LimitReader(r, limit+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, false, err
	}
	if int64(len(b)) > limit {
		return b[:limit], true, nil
	}
	return b, false, nil
}

// request makes an HTTP request to the PostgREST API.
func (c *Client) request(ctx context.Context, method, table string, body interface{}, query string) ([]byte, error) {
	var target string
	if c.restPrefix == "" {
		target = fmt.Sprintf("%s/%s", c.url, table)
	} else {
		target = fmt.Sprintf("%s%s/%s", c.url, c.restPrefix, table)
	}
	if query != "" {
		target += "?" + query
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	prefer := "return=representation"
	if method == http.MethodPost && strings.Contains(query, "on_conflict=") {
		prefer = "return=representation,resolution=merge-duplicates"
	}
	req.Header.Set("Prefer", prefer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, truncated, readErr := readAllWithLimit(resp.Body, maxErrorBodyBytes)
		if readErr != nil {
			return nil, fmt.Errorf("read error response: %w", readErr)
		}
		msg := strings.TrimSpace(string(respBody))
		if truncated {
			msg += "...(truncated)"
		}
		return nil, fmt.Errorf("postgrest API error %d: %s", resp.StatusCode, msg)
	}

	respBody, truncated, err := readAllWithLimit(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if truncated {
		return nil, fmt.Errorf("response exceeds %d byte limit", maxResponseBytes)
	}

	return respBody, nil
}

// Insert inserts a record into the specified table.
func (c *Client) Insert(ctx context.Context, table string, data interface{}) ([]byte, error) {
	return c.request(ctx, http.MethodPost, table, data, "")
}

// Update updates records in the specified table matching the query.
func (c *Client) Update(ctx context.Context, table string, data interface{}, query string) ([]byte, error) {
	return c.request(ctx, http.MethodPatch, table, data, query)
}

// Select retrieves records from the specified table.
func (c *Client) Select(ctx context.Context, table string, query string) ([]byte, error) {
	return c.request(ctx, http.MethodGet, table, nil, query)
}

// Delete removes records from the specified table matching the query.
func (c *Client) Delete(ctx context.Context, table string, query string) ([]byte, error) {
	return c.request(ctx, http.MethodDelete, table, nil, query)
}

// Upsert inserts or updates a record in the specified table.
func (c *Client) Upsert(ctx context.Context, table string, data interface{}, onConflict string) ([]byte, error) {
	query := ""
	if onConflict != "" {
		query = "on_conflict=" + onConflict
	}
	return c.request(ctx, http.MethodPost, table, data, query)
}
