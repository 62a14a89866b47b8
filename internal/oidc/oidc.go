// Package oidc resolves the JWKS endpoint of an OpenID Connect issuer from
// its .well-known/openid-configuration document.
package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

// WellKnownEndpoints holds the fields of the discovery document used here.
type WellKnownEndpoints struct {
	JWKSURI string `json:"jwks_uri"`
}

// GetWellKnownEndpointsFromIssuerURL fetches the discovery document of the
// passed in issuer URL and returns the endpoints it advertises.
func GetWellKnownEndpointsFromIssuerURL(ctx context.Context, client *http.Client, issuerURL url.URL) (*WellKnownEndpoints, error) {
	issuerURL.Path = path.Join(issuerURL.Path, ".well-known/openid-configuration")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuerURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request to get well known endpoints: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not get well known endpoints from url %s: %w", issuerURL.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not get well known endpoints from url %s: unexpected status %d", issuerURL.String(), resp.StatusCode)
	}

	var wkEndpoints WellKnownEndpoints
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&wkEndpoints); err != nil {
		return nil, fmt.Errorf("could not decode json body when getting well known endpoints: %w", err)
	}

	if wkEndpoints.JWKSURI == "" {
		return nil, fmt.Errorf("well known endpoints from url %s did not advertise a jwks_uri", issuerURL.String())
	}

	return &wkEndpoints, nil
}
