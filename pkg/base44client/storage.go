package base44client

import (
	"github.com/fivetwenty-io/base44-client/internal/auth"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// NewMemoryStorage returns a process-local token store. Tokens do not
// survive restarts; useful for tests and short-lived processes.
func NewMemoryStorage() base44.Storage {
	return auth.NewMemoryStorage()
}

// NewFileStorage returns a token store persisted as a JSON file under dir,
// written atomically with owner-only permissions.
func NewFileStorage(dir string) base44.Storage {
	return auth.NewFileStorage(dir)
}

// NewKeyringStorage returns a token store backed by the system keychain.
// Use KeyringAvailable to probe for keychain support first; on hosts
// without one every operation degrades to absent/false.
func NewKeyringStorage() base44.Storage {
	return auth.NewKeyringStorage()
}

// KeyringAvailable reports whether the system keychain accepts writes.
func KeyringAvailable() bool {
	return auth.Available()
}
