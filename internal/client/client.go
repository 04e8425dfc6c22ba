// Package client implements the base44.Client interface: configuration
// resolution, transport wiring, token auto-discovery, the startup auth
// probe, and the entity/integration/auth modules.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/base44-client/internal/auth"
	"github.com/fivetwenty-io/base44-client/internal/constants"
	"github.com/fivetwenty-io/base44-client/internal/http"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// Client implements base44.Client.
type Client struct {
	config     base44.Config
	httpClient *http.Client
	tokenStore *auth.TokenStore
	logger     base44.Logger

	entities     *EntitiesClient
	integrations *IntegrationsClient
	authClient   *AuthClient
	probe        *ProbeHandle
}

// New creates a client from the given configuration. Defaults are applied
// here; the resolved snapshot is what GetConfig returns from then on.
func New(config *base44.Config) (*Client, error) {
	if config == nil {
		return nil, base44.ErrConfigRequired
	}

	if config.AppID == "" {
		validationErr := base44.NewValidationError("appId is required")
		validationErr.Err = base44.ErrAppIDRequired

		return nil, validationErr
	}

	resolved := resolveConfig(config)

	client := &Client{
		config: resolved,
		logger: resolved.Logger,
	}

	client.httpClient = http.NewClient(resolved.ServerURL+constants.APIPathPrefix, client.transportOptions()...)
	client.tokenStore = auth.NewTokenStore(
		resolved.Storage, resolved.PageContext, resolved.Logger,
		resolved.TokenStorageKey, resolved.TokenURLParam,
	)

	client.authClient = newAuthClient(client)
	client.entities = newEntitiesClient(client.httpClient, resolved.AppID)
	client.integrations = newIntegrationsClient(client.httpClient, resolved.AppID)

	client.discoverToken()
	client.scheduleStartupProbe()

	return client, nil
}

// resolveConfig fills in defaults without touching the caller's struct.
func resolveConfig(config *base44.Config) base44.Config {
	resolved := *config

	if resolved.ServerURL == "" {
		resolved.ServerURL = constants.DefaultServerURL
	}

	if resolved.Environment == "" {
		resolved.Environment = constants.DefaultEnvironment
	}

	if resolved.Timeout <= 0 {
		resolved.Timeout = constants.DefaultHTTPTimeout
	}

	if resolved.UserAgent == "" {
		resolved.UserAgent = "base44-client-go/" + constants.SDKVersion
	}

	return resolved
}

func (c *Client) transportOptions() []http.Option {
	opts := []http.Option{
		http.WithTimeout(c.config.Timeout),
		http.WithUserAgent(c.config.UserAgent),
		http.WithDefaultHeader(constants.HeaderAppID, c.config.AppID),
		http.WithDefaultHeader(constants.HeaderEnviron, c.config.Environment),
		http.WithDefaultHeader(constants.HeaderSDKVersion, constants.SDKVersion),
	}

	if c.config.Logger != nil {
		opts = append(opts, http.WithLogger(c.config.Logger))
	}

	if c.config.Debug {
		opts = append(opts, http.WithDebug(true))
	}

	if c.config.PageContext != nil {
		opts = append(opts, http.WithOriginURLFunc(c.config.PageContext.CurrentURL))
	}

	if c.config.RequiresAuth {
		opts = append(opts, http.WithAuthRequiredHandler(func(int) {
			c.scheduleGuardRedirect()
		}))
	}

	if c.config.RetryMax > 0 {
		waitMin := constants.DefaultRetryWaitMin
		if c.config.RetryWaitMin > 0 {
			waitMin = c.config.RetryWaitMin
		}

		waitMax := constants.DefaultRetryWaitMax
		if c.config.RetryWaitMax > 0 {
			waitMax = c.config.RetryWaitMax
		}

		opts = append(opts, http.WithRetryConfig(c.config.RetryMax, waitMin, waitMax))
	}

	return opts
}

// discoverToken attaches the configured token, or one found in the page URL
// or the persisted store.
func (c *Client) discoverToken() {
	token := c.config.Token
	if token == "" {
		token = c.tokenStore.Read(nil)
	}

	if token != "" {
		c.authClient.SetToken(token, true)
	}
}

// scheduleStartupProbe defers the authentication probe to its own goroutine
// so New returns before any network traffic. On a negative or erroring
// probe the client initiates login with the current page as return target.
func (c *Client) scheduleStartupProbe() {
	if !c.config.RequiresAuth || c.config.DisableAutoLogin || c.config.PageContext == nil {
		return
	}

	c.probe = newProbeHandle(c.config.Timeout)

	go c.probe.run(func(ctx context.Context) {
		if c.authClient.IsAuthenticated(ctx) {
			return
		}

		err := c.authClient.Login(c.config.PageContext.CurrentURL(), nil)
		if err != nil && c.logger != nil {
			c.logger.Error("auto-login failed", map[string]interface{}{"error": err.Error()})
		}
	})
}

// scheduleGuardRedirect reacts to a 403 by deferring a redirect to the
// login page. It fires for every guarded response, independently of the
// startup probe.
func (c *Client) scheduleGuardRedirect() {
	if c.config.PageContext == nil {
		return
	}

	if c.logger != nil {
		c.logger.Info("authentication required, redirecting to login", nil)
	}

	page := c.config.PageContext

	time.AfterFunc(constants.GuardRedirectDelay, func() {
		page.Navigate(c.authClient.loginURL(page.CurrentURL(), nil))
	})
}

// StartupProbe returns the handle of the scheduled authentication probe, or
// nil when none was scheduled. Tests use it to await or cancel the probe.
func (c *Client) StartupProbe() *ProbeHandle {
	return c.probe
}

// Entities implements base44.Client.
func (c *Client) Entities() base44.EntitiesClient {
	return c.entities
}

// Integrations implements base44.Client.
func (c *Client) Integrations() base44.IntegrationsClient {
	return c.integrations
}

// Auth implements base44.Client.
func (c *Client) Auth() base44.AuthClient {
	return c.authClient
}

// SetToken implements base44.Client; it persists by default.
func (c *Client) SetToken(token string) {
	c.authClient.SetToken(token, true)
}

// ClearToken implements base44.Client.
func (c *Client) ClearToken() {
	c.authClient.ClearToken()
}

// GetConfig implements base44.Client.
func (c *Client) GetConfig() base44.Config {
	return c.config
}

// IsConnected probes the health endpoint and reduces any failure to false.
func (c *Client) IsConnected(ctx context.Context) bool {
	_, err := c.httpClient.Get(ctx, constants.HealthPath, nil)

	return err == nil
}

// HTTPClient exposes the transport to the facade package for advanced use.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// appPath prefixes a path with the per-app API root.
func appPath(appID, suffix string) string {
	return fmt.Sprintf("/apps/%s%s", appID, suffix)
}
