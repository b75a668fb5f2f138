package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/fantasylab/fantasy-lab/internal/store"
)

// DefaultRateLimit keeps refreshes polite towards the upstream stats host.
var DefaultRateLimit = rate.Every(2 * time.Second)

type Client struct {
	HTTP         *http.Client
	Store        *store.JSONStore
	UserAgent    string
	PrettyWrite  bool
	UseCache     bool
	DisableWrite bool

	limiter *rate.Limiter
}

func NewClient(st *store.JSONStore, limit rate.Limit) *Client {
	if limit == 0 {
		limit = DefaultRateLimit
	}
	return &Client{
		HTTP:        &http.Client{Timeout: 20 * time.Second},
		Store:       st,
		UserAgent:   "fantasy-lab/1.0",
		PrettyWrite: true,
		UseCache:    true,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

// FetchRaw downloads url and writes the body to relPath.
// Returns raw bytes (from cache or network). validate, when non-nil, runs
// before anything is written so a bad upstream payload never replaces a good
// local file.
func (c *Client) FetchRaw(ctx context.Context, url, relPath string, force bool, validate func([]byte) error) ([]byte, error) {
	if !force && c.UseCache && c.Store.Exists(relPath) {
		return c.Store.ReadRaw(relPath)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s failed: %d body=%s", url, resp.StatusCode, string(body))
	}

	if validate != nil {
		if err := validate(body); err != nil {
			return nil, fmt.Errorf("GET %s: %w", url, err)
		}
	}

	if !c.DisableWrite {
		if err := c.Store.WriteRaw(relPath, body, c.PrettyWrite); err != nil {
			return nil, err
		}
	}
	return body, nil
}
