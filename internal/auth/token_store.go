package auth

import (
	"net/url"
	"strings"

	"github.com/fivetwenty-io/base44-client/internal/constants"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// TokenStore discovers and persists the access token. Discovery checks the
// page URL first, since a token embedded as a query parameter is the
// freshest hand-off after a login redirect, and falls back to the persisted
// store for returning visits. It never fails: storage or URL trouble
// degrades to "absent" with a logged warning.
type TokenStore struct {
	storage base44.Storage
	page    base44.PageContext
	logger  base44.Logger
	key     string
	param   string
}

// NewTokenStore builds a store over the given capabilities; storage and
// page may each be nil. Empty key and param select the defaults.
func NewTokenStore(storage base44.Storage, page base44.PageContext, logger base44.Logger, key, param string) *TokenStore {
	if key == "" {
		key = constants.TokenStorageKey
	}

	if param == "" {
		param = constants.TokenURLParam
	}

	return &TokenStore{storage: storage, page: page, logger: logger, key: key, param: param}
}

// ReadOptions tunes a single Read.
type ReadOptions struct {
	// SkipSave leaves a URL-discovered token out of the persisted store.
	SkipSave bool
	// KeepInURL leaves the token parameter visible in the page URL.
	KeepInURL bool
}

// Read returns the current token, or "" when absent.
func (s *TokenStore) Read(opts *ReadOptions) string {
	if opts == nil {
		opts = &ReadOptions{}
	}

	if token := s.readFromURL(opts); token != "" {
		return token
	}

	if s.storage == nil {
		return ""
	}

	token, _ := s.storage.Get(s.key)

	return token
}

// readFromURL pulls the token parameter out of the page URL, persisting and
// stripping it per opts.
func (s *TokenStore) readFromURL(opts *ReadOptions) string {
	if s.page == nil {
		return ""
	}

	current := s.page.CurrentURL()
	if current == "" {
		return ""
	}

	parsed, err := url.Parse(current)
	if err != nil {
		s.warn("unparseable page URL", map[string]interface{}{"error": err.Error()})

		return ""
	}

	query := parsed.Query()

	token := query.Get(s.param)
	if token == "" {
		return ""
	}

	if !opts.SkipSave {
		s.Save(token)
	}

	if !opts.KeepInURL {
		query.Del(s.param)
		parsed.RawQuery = query.Encode()
		s.page.ReplaceURL(parsed.String())
	}

	return token
}

// Save writes the token to the persisted store. It reports false when the
// token is empty or no persistence context exists.
func (s *TokenStore) Save(token string) bool {
	if s.storage == nil || token == "" {
		return false
	}

	ok := s.storage.Set(s.key, token)
	if !ok {
		s.warn("failed to persist token", nil)
	}

	return ok
}

// Remove deletes the token from the persisted store; false without one.
func (s *TokenStore) Remove() bool {
	if s.storage == nil {
		return false
	}

	return s.storage.Remove(s.key)
}

// IsValid reports whether Read yields a non-empty token.
func (s *TokenStore) IsValid() bool {
	return strings.TrimSpace(s.Read(nil)) != ""
}

func (s *TokenStore) warn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
