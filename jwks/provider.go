package jwks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/lestrrat-go/httpcc"
	"golang.org/x/sync/singleflight"

	"github.com/idtoken-dev/go-idtoken/internal/oidc"
)

// Key set endpoints of the supported providers.
const (
	// GoogleSignInCertsURL serves the keys Google Sign-In ID tokens are
	// signed with.
	GoogleSignInCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

	// FirebaseCertsURL serves the keys Firebase Authentication ID tokens
	// are signed with.
	FirebaseCertsURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

// maxResponseBytes bounds how much of a key set response body is read.
const maxResponseBytes = 1 << 20

// Cached deadlines derived from Cache-Control max-age are clamped into this
// range.
const (
	minCacheTTL = time.Second
	maxCacheTTL = 24 * time.Hour
)

var (
	// ErrKeyNotFound reports that the key set was available but holds no key
	// under the requested id. It is distinct from FetchError: the lookup
	// worked, the key does not exist.
	ErrKeyNotFound = errors.New("key not found in key set")

	// ErrFetchFailed is matched by every FetchError.
	ErrFetchFailed = errors.New("key set fetch failed")
)

// FetchError reports a failed key set retrieval: transport errors, non-200
// responses and undecodable bodies.
type FetchError struct {
	Endpoint   string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching key set from %s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("fetching key set from %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }
func (e *FetchError) Unwrap() error        { return e.Err }

// KeyProvider supplies verification keys by id.
//
// GetKey returns ErrKeyNotFound when the key set is available but has no key
// under kid, and an error matching ErrFetchFailed when the set could not be
// obtained. Implementations must be safe for concurrent use.
type KeyProvider interface {
	GetKey(ctx context.Context, kid string) (Key, error)
}

// Provider fetches the key set on every lookup and keeps nothing between
// calls. It is the no-cache companion of CachingProvider for callers that
// value freshness over latency.
type Provider struct {
	endpoint     string
	issuerURL    *url.URL
	client       *http.Client
	fetchTimeout time.Duration

	resolveMu sync.Mutex
	resolved  string
}

// NewProvider builds a Provider. One of WithEndpoint or WithIssuerURL is
// required; with both set the endpoint wins and no discovery happens.
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	cfg, err := newProviderConfig(opts)
	if err != nil {
		return nil, err
	}
	return cfg.newProvider(), nil
}

// GetKey implements KeyProvider by fetching the key set anew.
func (p *Provider) GetKey(ctx context.Context, kid string) (Key, error) {
	endpoint, err := p.resolveEndpoint(ctx)
	if err != nil {
		return Key{}, err
	}
	set, _, err := fetchKeySet(ctx, p.client, endpoint)
	if err != nil {
		return Key{}, err
	}
	return lookupKey(set, kid)
}

// resolveEndpoint returns the configured endpoint, discovering it from the
// issuer's well-known configuration on first use. A failed discovery is
// retried on the next call.
func (p *Provider) resolveEndpoint(ctx context.Context) (string, error) {
	if p.endpoint != "" {
		return p.endpoint, nil
	}

	p.resolveMu.Lock()
	defer p.resolveMu.Unlock()
	if p.resolved != "" {
		return p.resolved, nil
	}

	wk, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, p.client, *p.issuerURL)
	if err != nil {
		return "", &FetchError{Endpoint: p.issuerURL.String(), Err: err}
	}
	p.resolved = wk.JWKSURI
	return p.resolved, nil
}

// CachingProvider is a KeyProvider that caches the fetched key set until a
// freshness deadline derived from the response's Cache-Control max-age
// directive, falling back to a configurable TTL when the directive is absent
// or unparseable.
//
// The cache is fail-closed: once the deadline passes, the stale set is never
// served. If the refetch fails the cache is dropped and the lookup reports
// the fetch error. Concurrent lookups that observe a stale cache share one
// in-flight fetch; the cache lock is never held across the network call.
type CachingProvider struct {
	*Provider
	fallbackTTL time.Duration
	clock       Clock

	mu       sync.RWMutex
	cached   *Set
	deadline time.Time

	group singleflight.Group
}

// NewCachingProvider builds a CachingProvider. One of WithEndpoint or
// WithIssuerURL is required.
func NewCachingProvider(opts ...ProviderOption) (*CachingProvider, error) {
	cfg, err := newProviderConfig(opts)
	if err != nil {
		return nil, err
	}
	return &CachingProvider{
		Provider:    cfg.newProvider(),
		fallbackTTL: cfg.fallbackTTL,
		clock:       cfg.clock,
	}, nil
}

// GetKey implements KeyProvider.
//
// A fresh cache answers lookups directly, including negative ones: a kid
// absent from a fresh set returns ErrKeyNotFound without refetching. Empty
// or stale caches trigger a fetch; callers waiting on a shared fetch abandon
// the wait when ctx is done, while the fetch itself runs to completion on
// its own deadline so a cancelled caller cannot poison the cache.
func (c *CachingProvider) GetKey(ctx context.Context, kid string) (Key, error) {
	c.mu.RLock()
	set := c.cached
	fresh := set != nil && c.clock.Now().Before(c.deadline)
	c.mu.RUnlock()

	if fresh {
		return lookupKey(set, kid)
	}

	ch := c.group.DoChan("refresh", func() (interface{}, error) {
		return c.refresh()
	})

	select {
	case <-ctx.Done():
		return Key{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Key{}, res.Err
		}
		return lookupKey(res.Val.(*Set), kid)
	}
}

// Invalidate drops the cached key set. The next lookup fetches anew.
func (c *CachingProvider) Invalidate() {
	c.drop()
}

func (c *CachingProvider) refresh() (*Set, error) {
	// A previous flight may have refreshed the cache while this caller was
	// queuing behind the singleflight group.
	c.mu.RLock()
	if c.cached != nil && c.clock.Now().Before(c.deadline) {
		set := c.cached
		c.mu.RUnlock()
		return set, nil
	}
	c.mu.RUnlock()

	fctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	defer cancel()

	endpoint, err := c.resolveEndpoint(fctx)
	if err != nil {
		c.drop()
		return nil, err
	}

	set, header, err := fetchKeySet(fctx, c.client, endpoint)
	if err != nil {
		c.drop()
		return nil, err
	}

	// A present max-age always sets the deadline, clamped into bounds; a
	// zero lifetime means the floor, not the fallback. The fallback TTL is
	// reserved for responses that carry no usable directive at all.
	ttl := c.fallbackTTL
	if maxAge, ok := responseMaxAge(header); ok {
		ttl = clampTTL(maxAge)
	}

	c.mu.Lock()
	c.cached = set
	c.deadline = c.clock.Now().Add(ttl)
	c.mu.Unlock()
	return set, nil
}

func (c *CachingProvider) drop() {
	c.mu.Lock()
	c.cached = nil
	c.deadline = time.Time{}
	c.mu.Unlock()
}

// StaticProvider serves a fixed key set: handy in tests and in deployments
// where keys are distributed out of band.
type StaticProvider struct {
	set *Set
}

// NewStaticProvider builds a provider over a fixed set. A nil set behaves
// like an empty one: every lookup reports ErrKeyNotFound.
func NewStaticProvider(set *Set) *StaticProvider {
	if set == nil {
		set = NewSet()
	}
	return &StaticProvider{set: set}
}

// GetKey implements KeyProvider.
func (s *StaticProvider) GetKey(ctx context.Context, kid string) (Key, error) {
	return lookupKey(s.set, kid)
}

func lookupKey(set *Set, kid string) (Key, error) {
	key, ok := set.Key(kid)
	if !ok {
		return Key{}, ErrKeyNotFound
	}
	return key, nil
}

func fetchKeySet(ctx context.Context, client *http.Client, endpoint string) (*Set, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, &FetchError{Endpoint: endpoint, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &FetchError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, &FetchError{Endpoint: endpoint, Err: err}
	}

	set, err := ParseSet(body)
	if err != nil {
		return nil, nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	return set, resp.Header, nil
}

// responseMaxAge reports the Cache-Control max-age directive of a response.
// ok is false when the directive is absent or the header cannot be parsed;
// a present "max-age=0" is (0, true), which callers must treat differently
// from no directive at all.
func responseMaxAge(h http.Header) (time.Duration, bool) {
	cc := h.Get("Cache-Control")
	if cc == "" {
		return 0, false
	}
	directives, err := httpcc.ParseResponse(cc)
	if err != nil {
		return 0, false
	}
	maxAge, ok := directives.MaxAge()
	if !ok {
		return 0, false
	}
	return time.Duration(maxAge) * time.Second, true
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl < minCacheTTL {
		return minCacheTTL
	}
	if ttl > maxCacheTTL {
		return maxCacheTTL
	}
	return ttl
}
