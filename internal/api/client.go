package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"relayping/internal/model"
)

// DefaultURL serves every Mullvad relay as one JSON array.
const DefaultURL = "https://api.mullvad.net/www/relays/all/"

// DefaultTimeout bounds a whole directory request.
const DefaultTimeout = 10 * time.Second

// Client fetches the relay directory, egressing through a random proxy
// from its pool on every request.
type Client struct {
	url     string
	proxies []string
	timeout time.Duration
	intn    func(n int) int
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithProxies sets the egress proxy pool. An empty pool connects directly.
func WithProxies(proxies []string) Option {
	return func(c *Client) { c.proxies = append([]string(nil), proxies...) }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRand replaces the proxy picker; intn must behave like rand.IntN.
func WithRand(intn func(n int) int) Option {
	return func(c *Client) { c.intn = intn }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client for the directory at url.
func NewClient(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:     url,
		timeout: DefaultTimeout,
		intn:    rand.IntN,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Relays downloads and decodes the full relay list.
func (c *Client) Relays(ctx context.Context) ([]model.Relay, error) {
	proxyURL := c.pickProxy()
	hc, err := newHTTPClient(proxyURL, c.timeout)
	if err != nil {
		return nil, err
	}
	c.log.Debug("fetching relay directory", zap.String("url", c.url), zap.String("proxy", proxyURL))

	var relays []model.Relay
	if err := getJSON(ctx, hc, c.url, &relays); err != nil {
		return nil, err
	}
	return relays, nil
}

func (c *Client) pickProxy() string {
	if len(c.proxies) == 0 {
		return ""
	}
	return c.proxies[c.intn(len(c.proxies))]
}

func getJSON(ctx context.Context, hc *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("request failed: %s: %s", res.Status, msg)
		}
		return fmt.Errorf("request failed: %s", res.Status)
	}

	decoder := json.NewDecoder(res.Body)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode relays: %w", err)
	}
	return nil
}
