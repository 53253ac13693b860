// Package fetch downloads recordings from remote stores over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jang1563/worship-vocal-ai/internal/core/ports"
)

const (
	defaultMaxBytes = 50 << 20
	defaultTimeout  = 30 * time.Second
)

// ErrTooLarge indicates a recording exceeded the configured size limit.
var ErrTooLarge = errors.New("fetch: recording too large")

// Config controls the HTTP client. ClientID, ClientSecret and TokenURL
// enable OAuth2 client-credentials auth against protected stores.
type Config struct {
	Timeout      time.Duration
	MaxBytes     int64
	MaxRetries   int
	BaseBackoff  time.Duration
	AllowedHosts []string

	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Client implements ports.AudioFetcher.
type Client struct {
	httpClient   *http.Client
	maxBytes     int64
	maxRetries   int
	baseBackoff  time.Duration
	allowedHosts map[string]bool
	logger       *zap.Logger
}

// compile-time interface assertion
var _ ports.AudioFetcher = (*Client)(nil)

// NewClient builds a fetch client from cfg.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
		httpClient = cc.Client(ctx)
		httpClient.Timeout = cfg.Timeout
	}

	var allowed map[string]bool
	if len(cfg.AllowedHosts) > 0 {
		allowed = make(map[string]bool, len(cfg.AllowedHosts))
		for _, h := range cfg.AllowedHosts {
			allowed[strings.ToLower(strings.TrimSpace(h))] = true
		}
	}

	return &Client{
		httpClient:   httpClient,
		maxBytes:     cfg.MaxBytes,
		maxRetries:   cfg.MaxRetries,
		baseBackoff:  cfg.BaseBackoff,
		allowedHosts: allowed,
		logger:       logger,
	}
}

// Fetch downloads rawURL, retrying throttled and failed requests.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := c.validate(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: %s: status %d", u.Redacted(), resp.StatusCode)
	}
	if resp.ContentLength > c.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, c.maxBytes)
	}
	return data, nil
}

func (c *Client) validate(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("fetch: url has no host")
	}
	if c.allowedHosts != nil && !c.allowedHosts[strings.ToLower(u.Hostname())] {
		return nil, fmt.Errorf("fetch: host %q is not allowed", u.Hostname())
	}
	return u, nil
}
