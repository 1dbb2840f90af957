package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config holds configuration for the remote catalog API.
type Config struct {
	// ProductsURL is the base URL of the products collection endpoint.
	ProductsURL string `mapstructure:"products_url" default:""`
	// ProductsToken is the bearer token for the products endpoint.
	ProductsToken string `mapstructure:"products_token" default:""`
	// OffersURL is the base URL of the offers collection endpoint.
	OffersURL string `mapstructure:"offers_url" default:""`
	// OffersToken is the bearer token for the offers endpoint.
	OffersToken string `mapstructure:"offers_token" default:""`
	// PageSize is the number of records requested per page.
	PageSize int `mapstructure:"page_size" default:"50"`
	// PageCooldownMS is the pause between page requests in milliseconds.
	PageCooldownMS int `mapstructure:"page_cooldown_ms" default:"1000"`
	// MaxPages is the safety ceiling on pages walked per collection.
	// A remote that keeps signalling a next page beyond it is treated
	// as unavailable.
	MaxPages int `mapstructure:"max_pages" default:"500"`
	// TimeoutSeconds is the per-request HTTP timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
}

// FetchError reports that a collection could not be retrieved this cycle.
// The engine must be able to tell "unavailable" apart from "legitimately
// empty", so fetch failures carry a dedicated type instead of an empty list.
type FetchError struct {
	Collection Collection
	Page       int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s page %d: %v", e.Collection, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client retrieves remote collections page by page.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a remote API client.
func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		log:  log,
	}
}

// FetchAll walks every page of a collection and returns the complete,
// materialized record list. On any transport or protocol failure it returns
// a *FetchError and no items: a partial list would make the engine conclude
// "record absent, nothing to do" for records it never saw.
func (c *Client) FetchAll(ctx context.Context, collection Collection) ([]Item, error) {
	endpoint, token, err := c.endpointFor(collection)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}

	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	maxPages := c.cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 500
	}

	var all []Item
	for page := 1; ; page++ {
		env, err := c.fetchPage(ctx, endpoint, token, pageSize, page)
		if err != nil {
			return nil, &FetchError{Collection: collection, Page: page, Err: err}
		}
		all = append(all, env.Data...)

		c.log.Info("Page processed",
			zap.String("collection", string(collection)),
			zap.Int("page", page),
			zap.Int("records", len(env.Data)),
		)

		// The marker decides termination, not the record count: an empty
		// page with a marker present is not terminal.
		if env.NextPageURL == "" {
			break
		}
		if page >= maxPages {
			return nil, &FetchError{
				Collection: collection,
				Page:       page,
				Err:        fmt.Errorf("page ceiling %d exceeded, remote keeps signalling a next page", maxPages),
			}
		}
		if err := c.cooldown(ctx); err != nil {
			return nil, &FetchError{Collection: collection, Page: page, Err: err}
		}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint, token string, pageSize, page int) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

func (c *Client) endpointFor(collection Collection) (url, token string, err error) {
	switch collection {
	case CollectionProducts:
		url, token = c.cfg.ProductsURL, c.cfg.ProductsToken
	case CollectionOffers:
		url, token = c.cfg.OffersURL, c.cfg.OffersToken
	default:
		return "", "", fmt.Errorf("unknown collection %q", collection)
	}
	if url == "" {
		return "", "", fmt.Errorf("no endpoint configured for %s", collection)
	}
	return url, token, nil
}

// cooldown pauses between page requests to respect remote rate limits.
func (c *Client) cooldown(ctx context.Context) error {
	if c.cfg.PageCooldownMS <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(c.cfg.PageCooldownMS) * time.Millisecond):
		return nil
	}
}
