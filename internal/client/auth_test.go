package client_test

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/base44-client/internal/auth"
	"github.com/fivetwenty-io/base44-client/internal/client"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

func newTestClient(t *testing.T, server *httptest.Server, config *base44.Config) *client.Client {
	t.Helper()

	if config == nil {
		config = &base44.Config{}
	}

	if config.AppID == "" {
		config.AppID = "app1"
	}

	if server != nil {
		config.ServerURL = server.URL
	}

	c, err := client.New(config)
	require.NoError(t, err)

	return c
}

func TestAuthMe(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodGet, r.Method)
		assert.Equal(t, "/api/apps/app1/entities/User/me", r.URL.Path)

		_, _ = w.Write([]byte(`{"id":"u1","email":"dev@example.com","name":"Dev","role":"admin"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	user, err := c.Auth().Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "dev@example.com", user.Email)
	assert.Equal(t, "admin", user.Role)
}

func TestAuthUpdateMe(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPut, r.Method)
		assert.Equal(t, "/api/apps/app1/entities/User/me", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"New Name"}`, string(body))

		_, _ = w.Write([]byte(`{"id":"u1","name":"New Name"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	user, err := c.Auth().UpdateMe(context.Background(), map[string]interface{}{"name": "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
}

func TestAuthIsAuthenticated(t *testing.T) {
	var status int

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":"u1"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, nil)

	status = nethttp.StatusOK
	assert.True(t, c.Auth().IsAuthenticated(context.Background()))

	status = nethttp.StatusUnauthorized
	assert.False(t, c.Auth().IsAuthenticated(context.Background()))
}

func TestAuthLoginNavigates(t *testing.T) {
	page := &testPage{currentURL: "https://app.example.com/current"}

	c := newTestClient(t, nil, &base44.Config{
		ServerURL:   "https://base44.app",
		PageContext: page,
	})

	require.NoError(t, c.Auth().Login("/dash", &base44.LoginOptions{State: "xyz"}))

	navigated := page.navigatedTo()
	require.Len(t, navigated, 1)

	parsed, err := url.Parse(navigated[0])
	require.NoError(t, err)
	assert.Equal(t, "/login", parsed.Path)
	assert.Equal(t, "/dash", parsed.Query().Get("from_url"))
	assert.Equal(t, "app1", parsed.Query().Get("app_id"))
	assert.Equal(t, "xyz", parsed.Query().Get("state"))
}

func TestAuthLoginDefaultsToCurrentURL(t *testing.T) {
	page := &testPage{currentURL: "https://app.example.com/current"}

	c := newTestClient(t, nil, &base44.Config{PageContext: page})

	require.NoError(t, c.Auth().Login("", nil))

	navigated := page.navigatedTo()
	require.Len(t, navigated, 1)

	parsed, err := url.Parse(navigated[0])
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/current", parsed.Query().Get("from_url"))
	assert.Empty(t, parsed.Query().Get("state"))
}

func TestAuthLoginWithoutPageContext(t *testing.T) {
	c := newTestClient(t, nil, nil)

	err := c.Auth().Login("/dash", nil)
	require.ErrorIs(t, err, base44.ErrPageContextRequired)
}

func TestAuthLoginPopupBlocked(t *testing.T) {
	page := &testPage{currentURL: "https://app.example.com/", popup: nil}

	c := newTestClient(t, nil, &base44.Config{PageContext: page})

	err := c.Auth().Login("", &base44.LoginOptions{Popup: true})
	require.ErrorIs(t, err, base44.ErrPopupBlocked)
}

func TestAuthLoginPopupReloadsOnToken(t *testing.T) {
	popup := &testPopup{}
	storage := auth.NewMemoryStorage()
	page := &testPage{currentURL: "https://app.example.com/", popup: popup}

	c := newTestClient(t, nil, &base44.Config{PageContext: page, Storage: storage})

	require.NoError(t, c.Auth().Login("", &base44.LoginOptions{Popup: true}))
	require.Len(t, page.popupURLs, 1)
	assert.Contains(t, page.popupURLs[0], "/login?")

	// Simulate the popup delivering a token and closing.
	storage.Set("base44_access_token", "popup-token")
	popup.close()

	require.Eventually(t, func() bool {
		return page.reloadCount() == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestAuthLogout(t *testing.T) {
	var (
		gotPath string
		gotAuth string
	)

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	storage := auth.NewMemoryStorage()
	page := &testPage{currentURL: "https://app.example.com/"}

	c := newTestClient(t, server, &base44.Config{
		Token:       "tok",
		Storage:     storage,
		PageContext: page,
	})

	require.NoError(t, c.Auth().Logout(context.Background(), "https://goodbye.example.com"))

	assert.Equal(t, "/api/apps/app1/auth/logout", gotPath)

	// The token is cleared before the server call goes out.
	assert.Empty(t, gotAuth)
	assert.Empty(t, c.Auth().GetAccessToken())

	_, ok := storage.Get("base44_access_token")
	assert.False(t, ok)

	navigated := page.navigatedTo()
	require.Len(t, navigated, 1)
	assert.Equal(t, "https://goodbye.example.com", navigated[0])
}

func TestAuthLogoutSurvivesServerError(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server, &base44.Config{Token: "tok"})

	require.NoError(t, c.Auth().Logout(context.Background(), ""))
	assert.Empty(t, c.Auth().GetAccessToken())
}

func TestAuthSetTokenIgnoresEmpty(t *testing.T) {
	c := newTestClient(t, nil, &base44.Config{Token: "tok"})

	c.Auth().SetToken("", true)
	assert.Equal(t, "tok", c.Auth().GetAccessToken())
}

func TestAuthSetTokenWithoutPersist(t *testing.T) {
	storage := auth.NewMemoryStorage()

	c := newTestClient(t, nil, &base44.Config{Storage: storage})

	c.Auth().SetToken("ephemeral", false)
	assert.Equal(t, "ephemeral", c.Auth().GetAccessToken())

	_, ok := storage.Get("base44_access_token")
	assert.False(t, ok)
}

func TestAuthRefreshToken(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPost, r.Method)
		assert.Equal(t, "/api/apps/app1/auth/refresh", r.URL.Path)

		_, _ = w.Write([]byte(`{"accessToken":"fresh-token"}`))
	}))
	defer server.Close()

	storage := auth.NewMemoryStorage()

	c := newTestClient(t, server, &base44.Config{Token: "old-token", Storage: storage})

	token, err := c.Auth().RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, "fresh-token", c.Auth().GetAccessToken())

	persisted, ok := storage.Get("base44_access_token")
	require.True(t, ok)
	assert.Equal(t, "fresh-token", persisted)
}

func TestAuthRefreshTokenFailureClearsToken(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"session expired"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, &base44.Config{Token: "old-token"})

	_, err := c.Auth().RefreshToken(context.Background())
	require.Error(t, err)
	assert.Empty(t, c.Auth().GetAccessToken())
}

func TestAuthRefreshTokenMissingToken(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, &base44.Config{Token: "old-token"})

	_, err := c.Auth().RefreshToken(context.Background())
	require.ErrorIs(t, err, base44.ErrNoTokenInRefresh)
	assert.Empty(t, c.Auth().GetAccessToken())
}

func TestAuthIsTokenExpiringSoon(t *testing.T) {
	// Opaque tokens never report an expiry.
	c := newTestClient(t, nil, &base44.Config{Token: "opaque-token"})
	assert.False(t, c.Auth().IsTokenExpiringSoon(5*time.Minute))

	// No token at all.
	c = newTestClient(t, nil, nil)
	assert.False(t, c.Auth().IsTokenExpiringSoon(5*time.Minute))
}

func TestAuthGetAccessToken(t *testing.T) {
	c := newTestClient(t, nil, &base44.Config{Token: strings.Repeat("t", 8)})
	assert.Equal(t, strings.Repeat("t", 8), c.Auth().GetAccessToken())
}
