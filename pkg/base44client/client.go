// Package base44client provides the main entry point for creating Base44
// API clients.
package base44client

import (
	"strings"

	"github.com/fivetwenty-io/base44-client/internal/client"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// New creates a client from the given configuration. AppID is required;
// every other field falls back to a default (server URL
// "https://base44.app", environment "prod", 30s timeout, no auth
// requirement, debug off).
func New(config *base44.Config) (base44.Client, error) {
	if config == nil {
		return nil, base44.ErrConfigRequired
	}

	normalized := *config
	normalized.ServerURL = normalizeServerURL(normalized.ServerURL)

	return client.New(&normalized)
}

// normalizeServerURL trims a trailing slash and defaults to https when no
// scheme is present. An empty URL is left for the client defaults.
func normalizeServerURL(serverURL string) string {
	if serverURL == "" {
		return ""
	}

	serverURL = strings.TrimSuffix(serverURL, "/")

	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		serverURL = "https://" + serverURL
	}

	return serverURL
}

// NewWithToken creates a client for an app with a pre-supplied access token.
func NewWithToken(appID, token string) (base44.Client, error) {
	return New(&base44.Config{AppID: appID, Token: token})
}

// NewWithServerURL creates a client for an app against a specific server,
// e.g. a self-hosted or staging deployment.
func NewWithServerURL(appID, serverURL string) (base44.Client, error) {
	return New(&base44.Config{AppID: appID, ServerURL: serverURL})
}
