package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

const defaultBaseURL = "https://api.local-link.app"

// maxBodyBytes caps response bodies read from the marketplace API.
const maxBodyBytes = 8 * 1024 * 1024

// Client performs marketplace API operations: full collection fetches and
// server-side free-text search.
type Client interface {
	Collection(ctx context.Context, kind model.Kind) ([]model.Entity, error)
	Search(ctx context.Context, kind model.Kind, query string, limit int) ([]model.Entity, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit sets the request rate limit in requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a marketplace API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// collectionPath maps a kind to its fetch endpoint.
func collectionPath(kind model.Kind) (string, error) {
	switch kind {
	case model.KindProducts:
		return "/products", nil
	case model.KindArtisans:
		return "/artisans", nil
	case model.KindServices:
		return "/marketplace/services", nil
	default:
		return "", eris.Errorf("api: unknown kind %q", kind)
	}
}

// Collection implements Client.
func (c *httpClient) Collection(ctx context.Context, kind model.Kind) ([]model.Entity, error) {
	path, err := collectionPath(kind)
	if err != nil {
		return nil, err
	}
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	entities, err := decodeEntities(body)
	if err != nil {
		return nil, eris.Wrapf(err, "api: decode %s collection", kind)
	}
	zap.L().Debug("collection fetched",
		zap.String("kind", string(kind)),
		zap.Int("entities", len(entities)),
	)
	return entities, nil
}

// Search implements Client.
func (c *httpClient) Search(ctx context.Context, kind model.Kind, query string, limit int) ([]model.Entity, error) {
	if limit <= 0 {
		limit = 50
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", string(kind))
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/search?"+q.Encode())
	if err != nil {
		return nil, err
	}
	entities, err := decodeEntities(body)
	if err != nil {
		return nil, eris.Wrap(err, "api: decode search response")
	}
	return entities, nil
}

func (c *httpClient) get(ctx context.Context, path string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "api: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "api: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "api: GET %s", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "api: read %s response", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.New(fmt.Sprintf("api: GET %s returned %d", path, resp.StatusCode))
	}
	return body, nil
}

// decodeEntities accepts either a bare entity array or an envelope keyed by
// kind ({"products": [...]}, {"artisans": [...]}, ...).
func decodeEntities(body []byte) ([]model.Entity, error) {
	var arr []model.Entity
	if err := json.Unmarshal(body, &arr); err == nil {
		return arr, nil
	}

	var envelope struct {
		Products []model.Entity `json:"products"`
		Artisans []model.Entity `json:"artisans"`
		Services []model.Entity `json:"services"`
		Results  []model.Entity `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	for _, candidate := range [][]model.Entity{
		envelope.Products, envelope.Artisans, envelope.Services, envelope.Results,
	} {
		if candidate != nil {
			return candidate, nil
		}
	}
	return nil, nil
}
