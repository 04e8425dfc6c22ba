package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/fivetwenty-io/base44-client/internal/auth"
	"github.com/fivetwenty-io/base44-client/internal/constants"
	"github.com/fivetwenty-io/base44-client/internal/http"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// AuthClient implements base44.AuthClient. At most one token is active at a
// time; SetToken overwrites, never merges, and keeps the transport and the
// persisted store consistent.
type AuthClient struct {
	httpClient *http.Client
	tokenStore *auth.TokenStore
	page       base44.PageContext
	logger     base44.Logger
	appID      string
	serverURL  string
}

func newAuthClient(c *Client) *AuthClient {
	return &AuthClient{
		httpClient: c.httpClient,
		tokenStore: c.tokenStore,
		page:       c.config.PageContext,
		logger:     c.config.Logger,
		appID:      c.config.AppID,
		serverURL:  c.config.ServerURL,
	}
}

func (a *AuthClient) mePath() string {
	return appPath(a.appID, "/entities/User/me")
}

// Me implements base44.AuthClient.Me.
func (a *AuthClient) Me(ctx context.Context) (*base44.User, error) {
	resp, err := a.httpClient.Get(ctx, a.mePath(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching identity: %w", err)
	}

	var user base44.User

	err = json.Unmarshal(resp.Body, &user)
	if err != nil {
		return nil, fmt.Errorf("parsing identity response: %w", err)
	}

	return &user, nil
}

// UpdateMe implements base44.AuthClient.UpdateMe.
func (a *AuthClient) UpdateMe(ctx context.Context, patch map[string]interface{}) (*base44.User, error) {
	resp, err := a.httpClient.Put(ctx, a.mePath(), patch)
	if err != nil {
		return nil, fmt.Errorf("updating identity: %w", err)
	}

	var user base44.User

	err = json.Unmarshal(resp.Body, &user)
	if err != nil {
		return nil, fmt.Errorf("parsing identity response: %w", err)
	}

	return &user, nil
}

// IsAuthenticated implements base44.AuthClient.IsAuthenticated. Any failure
// of the identity fetch, including a transport failure, reports false.
func (a *AuthClient) IsAuthenticated(ctx context.Context) bool {
	_, err := a.Me(ctx)

	return err == nil
}

// loginURL builds the login page URL with the redirect target and state.
func (a *AuthClient) loginURL(fromURL string, opts *base44.LoginOptions) string {
	params := url.Values{}
	params.Set("from_url", fromURL)
	params.Set("app_id", a.appID)

	if opts != nil && opts.State != "" {
		params.Set("state", opts.State)
	}

	return a.serverURL + constants.LoginPath + "?" + params.Encode()
}

// Login implements base44.AuthClient.Login.
func (a *AuthClient) Login(nextURL string, opts *base44.LoginOptions) error {
	if a.page == nil {
		return base44.ErrPageContextRequired
	}

	if nextURL == "" {
		nextURL = a.page.CurrentURL()
	}

	loginURL := a.loginURL(nextURL, opts)

	if opts != nil && opts.Popup {
		popup := a.page.OpenPopup(loginURL, constants.PopupWindowName, constants.PopupWindowFeatures)
		if popup == nil {
			return base44.ErrPopupBlocked
		}

		go a.watchPopup(popup)

		return nil
	}

	a.page.Navigate(loginURL)

	return nil
}

// watchPopup polls until the login popup closes, then reloads the page when
// a token arrived. The ticker is stopped exactly once, when the popup
// closes. Result delivery is best-effort: nothing guarantees the popup
// actually completed a login before closing.
func (a *AuthClient) watchPopup(popup base44.Popup) {
	ticker := time.NewTicker(constants.PopupPollInterval)
	defer ticker.Stop()

	for range ticker.C {
		if !popup.Closed() {
			continue
		}

		if a.tokenStore.IsValid() {
			a.page.Reload()
		}

		return
	}
}

// Logout implements base44.AuthClient.Logout. The server-side logout call
// is best-effort; its failure is logged, never raised.
func (a *AuthClient) Logout(ctx context.Context, redirectURL string) error {
	a.ClearToken()

	_, err := a.httpClient.Post(ctx, appPath(a.appID, "/auth/logout"), nil)
	if err != nil && a.logger != nil {
		a.logger.Warn("logout endpoint error", map[string]interface{}{"error": err.Error()})
	}

	if redirectURL != "" && a.page != nil {
		a.page.Navigate(redirectURL)
	}

	return nil
}

// SetToken implements base44.AuthClient.SetToken.
func (a *AuthClient) SetToken(token string, persist bool) {
	if token == "" {
		return
	}

	a.httpClient.SetToken(token)

	if persist {
		a.tokenStore.Save(token)
	}
}

// ClearToken implements base44.AuthClient.ClearToken.
func (a *AuthClient) ClearToken() {
	a.httpClient.ClearToken()
	a.tokenStore.Remove()
}

// refreshResponse is the refresh endpoint's envelope.
type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// RefreshToken implements base44.AuthClient.RefreshToken. A failed refresh
// clears the current token before reporting the failure, so no stale token
// stays attached.
func (a *AuthClient) RefreshToken(ctx context.Context) (string, error) {
	resp, err := a.httpClient.Post(ctx, appPath(a.appID, "/auth/refresh"), nil)
	if err != nil {
		a.ClearToken()

		return "", fmt.Errorf("refreshing token: %w", err)
	}

	var refreshed refreshResponse

	err = json.Unmarshal(resp.Body, &refreshed)
	if err != nil {
		a.ClearToken()

		return "", fmt.Errorf("parsing refresh response: %w", err)
	}

	if refreshed.AccessToken == "" {
		a.ClearToken()

		return "", base44.ErrNoTokenInRefresh
	}

	a.SetToken(refreshed.AccessToken, true)

	return refreshed.AccessToken, nil
}

// GetAccessToken implements base44.AuthClient.GetAccessToken.
func (a *AuthClient) GetAccessToken() string {
	return a.httpClient.Token()
}

// IsTokenExpiringSoon implements base44.AuthClient.IsTokenExpiringSoon.
func (a *AuthClient) IsTokenExpiringSoon(within time.Duration) bool {
	return auth.IsTokenExpiringSoon(a.httpClient.Token(), within)
}
