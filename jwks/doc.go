/*
Package jwks fetches, caches and serves the JSON Web Key sets identity
providers sign their tokens with.

Keys are looked up by key id through the KeyProvider interface. Three
implementations cover the usual deployments:

Provider: fetches the key set on every lookup

  - No state between calls
  - Every lookup pays a network round trip
  - Use for: tests, one-shot tools, callers with their own caching

CachingProvider: caches the set until a freshness deadline

  - Deadline derived from the response's Cache-Control max-age directive
  - Fallback TTL (default 1 minute) when the directive is absent
  - Fail-closed: a stale set is never served, not even when refetching fails
  - Concurrent lookups share one in-flight fetch
  - Use for: production verification paths

StaticProvider: serves a fixed set

  - No fetching at all
  - Use for: tests and out-of-band key distribution

# Basic usage

	provider, err := jwks.NewCachingProvider(
	    jwks.WithEndpoint(jwks.GoogleSignInCertsURL),
	)
	if err != nil {
	    log.Fatal(err)
	}

	key, err := provider.GetKey(ctx, kid)
	if errors.Is(err, jwks.ErrKeyNotFound) {
	    // The set is available and has no such key.
	}
	if errors.Is(err, jwks.ErrFetchFailed) {
	    // The set could not be obtained at all.
	}

# Custom issuers

Providers for issuers without a fixed endpoint can discover it through the
OIDC well-known configuration:

	issuerURL, _ := url.Parse("https://issuer.example.com/")
	provider, err := jwks.NewCachingProvider(
	    jwks.WithIssuerURL(issuerURL),
	)

Discovery runs lazily on the first lookup and is retried on failure.

# Freshness

The caching provider trusts the upstream's own cache directive: a response
with Cache-Control "max-age=3600" is served from memory for an hour (clamped
into [1s, 24h]). Once the deadline passes the next lookup refetches; if that
fetch fails the cached set is dropped and the error is reported rather than
serving keys of unknown freshness.

Lookups against a fresh cache never fetch, including lookups of a key id the
set does not contain; those return ErrKeyNotFound immediately. Callers that
know a rotation happened can force the next lookup to refetch with
Invalidate.
*/
package jwks
