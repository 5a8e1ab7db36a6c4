// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the single shared HTTP client used by every
// adapter in a pipeline run: short per-request timeout, no automatic
// retry, shared proxy agents, and an interactive bypass path for
// bot-detection responses.
package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paperpipe/pkg/types"
)

// DefaultTimeout bounds each individual request. Chains as a whole are
// unbounded; only single calls time out.
const DefaultTimeout = 5 * time.Second

// robotMarkers are body substrings that identify a bot-detection
// challenge page even when the status code is 200.
var robotMarkers = []string{
	"prove you're not a robot",
	"verify you are human",
}

// Bypasser re-fetches a URL through an out-of-band interactive channel
// (a hidden browser window) when a source blocks automated requests.
type Bypasser interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client wraps http.Client with the pipeline's fetch conventions. The
// zero value is not usable; construct with New.
type Client struct {
	http      *http.Client
	userAgent string
	bypass    Bypasser
}

// New builds a Client from the HTTP configuration. Proxy agents are
// constructed once here and reused across all adapters in the run; the
// transport keeps connections alive with a bounded pool.
func New(cfg types.HTTPConfig, bypass Bypasser) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy:               proxyFunc(cfg),
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		http:      &http.Client{Timeout: timeout, Transport: transport},
		userAgent: cfg.UserAgent,
		bypass:    bypass,
	}
}

// HTTP exposes the underlying client for callers that stream large
// downloads themselves.
func (c *Client) HTTP() *http.Client {
	return c.http
}

// Get fetches url and returns the response body. See do for the
// bot-detection handling.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, headers, nil)
}

// Post sends body to url and returns the response body.
func (c *Client) Post(ctx context.Context, rawURL string, headers map[string]string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, rawURL, headers, body)
}

// do performs a single request with no retry. On HTTP 403/429, or when
// the body matches a robot-challenge marker, it delegates to the bypass
// collaborator and substitutes that body; the failure only surfaces when
// no bypasser is configured or the bypass itself fails.
func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", rawURL, err)
	}

	if blocked(resp.StatusCode, data) {
		if c.bypass == nil {
			return nil, fmt.Errorf("%s blocked with HTTP %d and no bypass configured", rawURL, resp.StatusCode)
		}
		sub, err := c.bypass.Fetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("bypass fetch for %s: %w", rawURL, err)
		}
		return sub, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned HTTP %d", rawURL, resp.StatusCode)
	}
	return data, nil
}

// blocked reports whether the response looks like a bot-detection wall.
func blocked(status int, body []byte) bool {
	if status == http.StatusForbidden || status == http.StatusTooManyRequests {
		return true
	}
	lower := strings.ToLower(string(body))
	for _, m := range robotMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// proxyFunc selects the configured proxy per request scheme. With no
// proxies configured it falls back to the environment.
func proxyFunc(cfg types.HTTPConfig) func(*http.Request) (*url.URL, error) {
	if cfg.HTTPProxy == "" && cfg.HTTPSProxy == "" {
		return http.ProxyFromEnvironment
	}

	httpProxy, _ := url.Parse(cfg.HTTPProxy)
	httpsProxy, _ := url.Parse(cfg.HTTPSProxy)

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != nil && httpsProxy.Host != "" {
			return httpsProxy, nil
		}
		if httpProxy != nil && httpProxy.Host != "" {
			return httpProxy, nil
		}
		return nil, nil
	}
}
