package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://places.local-link.app/v1"

// Place is a resolved location: the canonical display string plus its
// coordinates. This is the only output the browse engine consumes.
type Place struct {
	Formatted string  `json:"formatted"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Resolver turns free-text location input into resolved places. The
// underlying provider session is established lazily exactly once per
// resolver; every caller observes the same outcome, including failure.
type Resolver struct {
	apiKey  string
	baseURL string
	http    *http.Client

	loadOnce sync.Once
	loadErr  error
}

// Option configures the resolver.
type Option func(*Resolver)

// WithBaseURL overrides the default provider base URL.
func WithBaseURL(u string) Option {
	return func(r *Resolver) { r.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) { r.http = hc }
}

// New creates a Resolver.
func New(apiKey string, opts ...Option) *Resolver {
	r := &Resolver{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

var (
	sharedMu sync.Mutex
	shared   = map[string]*Resolver{}
)

// Shared returns the process-wide resolver for the provider URL the
// options select, creating it on first use. Every location input in the
// process funnels through the same resolver so the provider session is
// established once.
func Shared(apiKey string, opts ...Option) *Resolver {
	probe := New(apiKey, opts...)

	sharedMu.Lock()
	defer sharedMu.Unlock()
	if r, ok := shared[probe.baseURL]; ok {
		return r
	}
	shared[probe.baseURL] = probe
	return probe
}

// EnsureLoaded performs the one-time provider handshake. Safe to call from
// any number of callers; only the first does work.
func (r *Resolver) EnsureLoaded(ctx context.Context) error {
	r.loadOnce.Do(func() {
		r.loadErr = r.handshake(ctx)
		if r.loadErr != nil {
			zap.L().Warn("places provider unavailable", zap.Error(r.loadErr))
		}
	})
	return r.loadErr
}

func (r *Resolver) handshake(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/status", nil)
	if err != nil {
		return eris.Wrap(err, "places: create handshake request")
	}
	req.Header.Set("X-Api-Key", r.apiKey)

	resp, err := r.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: handshake")
	}
	defer resp.Body.Close() //nolint:errcheck
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("places: handshake returned %d", resp.StatusCode)
	}
	return nil
}

// Resolve looks up a free-text location. Returns nil, nil when nothing
// matches.
func (r *Resolver) Resolve(ctx context.Context, text string) (*Place, error) {
	if text == "" {
		return nil, nil
	}
	if err := r.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", text)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/resolve?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create resolve request")
	}
	req.Header.Set("X-Api-Key", r.apiKey)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "places: resolve %q", text)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("places: resolve returned %d", resp.StatusCode)
	}

	var payload struct {
		Places []Place `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, eris.Wrap(err, "places: decode resolve response")
	}
	if len(payload.Places) == 0 {
		return nil, nil
	}
	return &payload.Places[0], nil
}
