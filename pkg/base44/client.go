package base44

import (
	"context"
	"encoding/json"
	"time"
)

// EntityClient performs the operations of one named entity collection. All
// URLs are rooted at /apps/{appId}/entities/{name}.
type EntityClient interface {
	List(ctx context.Context, opts *ListOptions) ([]Entity, error)
	Filter(ctx context.Context, query QueryFilter, opts *ListOptions) ([]Entity, error)
	Get(ctx context.Context, id string) (Entity, error)
	Create(ctx context.Context, data Entity) (Entity, error)
	Update(ctx context.Context, id string, data Entity) (Entity, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, query QueryFilter) (int, error)
	BulkCreate(ctx context.Context, records []Entity) (*BulkResult, error)
	BulkUpdate(ctx context.Context, updates []BulkUpdate) (*BulkResult, error)
	Import(ctx context.Context, file FileUpload, opts *ImportOptions) (*ImportResult, error)
	Export(ctx context.Context, query QueryFilter, format string) ([]byte, error)
	Count(ctx context.Context, query QueryFilter) (int, error)
	// Exists returns false exactly when the probe fails with a 404; any other
	// failure is returned as an error.
	Exists(ctx context.Context, id string) (bool, error)
}

// EntitiesClient synthesizes an EntityClient for any collection name. There
// is no registry of valid names: unknown names surface as server 404s at
// call time, never as client-side validation.
type EntitiesClient interface {
	Entity(name string) EntityClient
}

// IntegrationEndpoint invokes one integration endpoint. The payload must be
// a named-parameter mapping (Payload or map[string]interface{}); a raw
// string is rejected before any request is made. Payloads containing
// FileUpload values are sent as multipart form data.
type IntegrationEndpoint func(ctx context.Context, payload interface{}) (json.RawMessage, error)

// IntegrationPackage dispatches endpoint calls within one package.
type IntegrationPackage interface {
	Endpoint(name string) IntegrationEndpoint
	Invoke(ctx context.Context, endpoint string, payload interface{}) (json.RawMessage, error)
}

// IntegrationsClient synthesizes packages by name; the literal "Core"
// package routes to the built-in endpoints, any other name to installable
// package endpoints. As with entities, no name is validated client-side.
type IntegrationsClient interface {
	Package(name string) IntegrationPackage
}

// AuthClient manages the identity and access-token lifecycle.
type AuthClient interface {
	// Me fetches the current identity. Never cached; failures propagate.
	Me(ctx context.Context) (*User, error)
	// UpdateMe applies a partial update to the current identity.
	UpdateMe(ctx context.Context, patch map[string]interface{}) (*User, error)
	// IsAuthenticated probes Me and reduces any failure to false. This
	// deliberately conflates "not logged in" with "server unreachable"; it is
	// a convenience, not a true auth check.
	IsAuthenticated(ctx context.Context) bool
	// Login starts the redirect-based login flow. It requires a page context
	// and fails otherwise. With Popup set it opens a login popup and polls
	// until it closes; delivery of the result is best-effort only.
	Login(nextURL string, opts *LoginOptions) error
	// Logout clears the token everywhere, makes a best-effort server logout
	// call (failures logged, not raised), and navigates to redirectURL when a
	// page context exists. It always succeeds.
	Logout(ctx context.Context, redirectURL string) error
	// SetToken attaches the token to the transport and, when persist is
	// true, writes it to the token store. Empty tokens are ignored.
	SetToken(token string, persist bool)
	// ClearToken detaches the token and removes it from the token store.
	ClearToken()
	// RefreshToken obtains a new token. On success the new token is attached
	// and returned; on any failure the current token is cleared first, so a
	// failed refresh never leaves a stale token attached.
	RefreshToken(ctx context.Context) (string, error)
	// GetAccessToken returns the currently attached token, or "".
	GetAccessToken() string
	// IsTokenExpiringSoon reports whether the attached token is a JWT whose
	// expiry falls within the given window. Opaque tokens report false.
	IsTokenExpiringSoon(within time.Duration) bool
}

// LoginOptions tunes the login redirect.
type LoginOptions struct {
	// State is an opaque value round-tripped through the login page.
	State string
	// Popup opens the login page in a popup window instead of navigating.
	Popup bool
}

// Client is the composed SDK surface.
type Client interface {
	Entities() EntitiesClient
	Integrations() IntegrationsClient
	Auth() AuthClient

	// SetToken and ClearToken pass through to the auth module.
	SetToken(token string)
	ClearToken()

	// GetConfig returns the resolved, post-default configuration snapshot.
	GetConfig() Config
	// IsConnected probes the health endpoint, reducing any failure to false.
	IsConnected(ctx context.Context) bool
}

// Logger is the structured logging interface consumed by the SDK. A nil
// logger silences all output.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config describes a client. It is read once at creation; the resolved
// snapshot returned by GetConfig never changes afterward.
type Config struct {
	// ServerURL is the platform base URL. Default "https://base44.app"; the
	// API itself is served under "/api" below it.
	ServerURL string
	// AppID identifies the application. Required.
	AppID string
	// Environment tags every request ("prod" by default).
	Environment string
	// Token is an optional pre-supplied access token.
	Token string
	// RequiresAuth schedules a deferred authentication probe after creation
	// and arms the transport-level 403 login redirect.
	RequiresAuth bool
	// Timeout is the per-request timeout. Default 30s.
	Timeout time.Duration
	// Debug logs every request, response, and error. Errors are logged even
	// without it.
	Debug bool

	// Logger receives structured log output. Optional.
	Logger Logger
	// Storage persists the access token between processes. Optional; without
	// it tokens live only in memory.
	Storage Storage
	// PageContext supplies URL and navigation capabilities. Optional; login
	// is the only operation that inherently requires it.
	PageContext PageContext

	// TokenStorageKey overrides the storage key ("base44_access_token").
	TokenStorageKey string
	// TokenURLParam overrides the URL parameter a login hop embeds the token
	// under ("access_token").
	TokenURLParam string
	// DisableAutoLogin skips the startup auth probe even when RequiresAuth
	// is set; useful in tests.
	DisableAutoLogin bool

	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// RetryMax enables transport retries for transient failures. The SDK
	// default is 0: failures surface once, immediately.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries when RetryMax > 0.
	RetryWaitMax time.Duration
}
