package constants

import "time"

// Platform defaults.
const (
	// DefaultServerURL is the platform base URL.
	DefaultServerURL = "https://base44.app"

	// DefaultEnvironment tags requests when none is configured.
	DefaultEnvironment = "prod"

	// APIPathPrefix is appended to the server URL to form the API base.
	APIPathPrefix = "/api"

	// LoginPath is the browser-rendered login page below the server URL.
	LoginPath = "/login"

	// HealthPath is the connectivity probe endpoint.
	HealthPath = "/health"

	// SDKVersion is reported in the X-SDK-Version header.
	SDKVersion = "1.0.0"
)

// Header names attached to every request.
const (
	HeaderAppID      = "X-App-Id"
	HeaderEnviron    = "X-Environment"
	HeaderSDKVersion = "X-SDK-Version"
	HeaderOriginURL  = "X-Origin-URL"
)

// Token discovery.
const (
	// TokenStorageKey is the default persisted-store key for the token.
	TokenStorageKey = "base44_access_token"

	// TokenURLParam is the query parameter a login redirect embeds the
	// token under.
	TokenURLParam = "access_token"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations like the health probe.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. The SDK itself never retries; these bound what callers may
// opt into through Config.RetryMax.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Login flow.
const (
	// PopupPollInterval is how often the popup-login watcher checks whether
	// the popup has closed.
	PopupPollInterval = 1 * time.Second

	// PopupWindowFeatures is the feature string passed to OpenPopup.
	PopupWindowFeatures = "width=500,height=600,scrollbars=yes,resizable=yes"

	// PopupWindowName names the login popup window.
	PopupWindowName = "base44-login"

	// GuardRedirectDelay defers the transport-triggered login redirect so
	// the failing call unwinds to its caller first.
	GuardRedirectDelay = 100 * time.Millisecond
)

// File and directory permissions for the file-backed token store.
const (
	// StoreDirPerm is the permission for token store directories.
	StoreDirPerm = 0700

	// StoreFilePerm is the permission for token store files.
	StoreFilePerm = 0600
)
